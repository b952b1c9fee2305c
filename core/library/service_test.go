package library_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/core/library"
	inmemdb "github.com/mkadlec/libris/storage/database/inmem"
	testutil "github.com/mkadlec/libris/tests"
)

func TestMain(m *testing.M) {
	core.InitValidators()
	os.Exit(m.Run())
}

type fixtures struct {
	db     *inmemdb.DB
	store  *inmemdb.Store
	events *library.Events
	member library.Member
	book   library.Book
}

func setup(t *testing.T) fixtures {
	t.Helper()

	db := inmemdb.NewDB()
	store := inmemdb.NewStore(db)
	return fixtures{
		db:     db,
		store:  store,
		events: library.NewEvents(),
		member: testutil.CreateMember(t, store, "Jana", "jana@test.cz"),
		book:   testutil.CreateBook(t, store, "Babička", "Božena Němcová"),
	}
}

func date(t time.Time) library.Date { return library.NewDate(t) }

func TestLoanService_Checkout(t *testing.T) {
	fx := setup(t)
	svc := library.NewLoanService(fx.store, fx.events)
	ctx := context.Background()

	var created []library.Loan
	fx.events.OnLoanCreated(func(_ context.Context, ln library.Loan) {
		created = append(created, ln)
	})

	due := date(time.Now().UTC().AddDate(0, 1, 0))

	t.Run("ok", func(t *testing.T) {
		ln, err := svc.Checkout(ctx, library.NewLoan{
			MemberID: fx.member.ID,
			BookID:   fx.book.ID,
			DueDate:  due,
		})
		if err != nil {
			t.Fatalf("Checkout() failed: %v", err)
		}
		if ln.ID == "" {
			t.Error("loan should get an id")
		}
		if ln.FromDate.IsZero() {
			t.Error("from date should default to now")
		}
		if ln.Returned {
			t.Error("fresh loan should be outstanding")
		}
		if len(created) != 1 || created[0].ID != ln.ID {
			t.Errorf("loan-created events = %+v", created)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		if _, err := svc.Checkout(ctx, library.NewLoan{}); err == nil {
			t.Error("Checkout() expected validation error")
		}
	})

	t.Run("due date before checkout", func(t *testing.T) {
		_, err := svc.Checkout(ctx, library.NewLoan{
			MemberID: fx.member.ID,
			BookID:   fx.book.ID,
			FromDate: date(time.Now().UTC()),
			DueDate:  date(time.Now().UTC().AddDate(0, 0, -7)),
		})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("Checkout() error = %v, want validation error", err)
		}
	})

	t.Run("malformed due date", func(t *testing.T) {
		_, err := svc.Checkout(ctx, library.NewLoan{
			MemberID: fx.member.ID,
			BookID:   fx.book.ID,
			DueDate:  "next tuesday",
		})
		var vErr *core.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("Checkout() error = %v, want validation error", err)
		}
	})
}

func TestLoanService_Return(t *testing.T) {
	fx := setup(t)
	svc := library.NewLoanService(fx.store, fx.events)
	ctx := context.Background()

	ln := testutil.CreateLoan(t, fx.store, fx.member.ID, fx.book.ID, date(time.Now().UTC().AddDate(0, 1, 0)), false)

	returned, err := svc.Return(ctx, ln.ID)
	if err != nil {
		t.Fatalf("Return() failed: %v", err)
	}
	if !returned.Returned {
		t.Error("loan should be flagged returned")
	}

	// the flag flips exactly once
	if _, err = svc.Return(ctx, ln.ID); !errors.Is(err, library.ErrLoanReturned) {
		t.Errorf("second Return() error = %v, want ErrLoanReturned", err)
	}

	if _, err = svc.Return(ctx, "nope"); !errors.Is(err, library.ErrLoanNotFound) {
		t.Errorf("Return() error = %v, want ErrLoanNotFound", err)
	}
}

func TestLoanService_Extend(t *testing.T) {
	fx := setup(t)
	svc := library.NewLoanService(fx.store, fx.events)
	ctx := context.Background()

	due := date(time.Now().UTC().AddDate(0, 1, 0))
	ln := testutil.CreateLoan(t, fx.store, fx.member.ID, fx.book.ID, due, false)

	newDue := date(time.Now().UTC().AddDate(0, 2, 0))
	extended, err := svc.Extend(ctx, ln.ID, newDue)
	if err != nil {
		t.Fatalf("Extend() failed: %v", err)
	}
	if extended.DueDate != newDue {
		t.Errorf("DueDate = %s, want %s", extended.DueDate, newDue)
	}

	if _, err = svc.Extend(ctx, ln.ID, date(time.Now().UTC().AddDate(-1, 0, 0))); err == nil {
		t.Error("Extend() into the past should fail")
	}

	returned := testutil.CreateLoan(t, fx.store, fx.member.ID, fx.book.ID, due, true)
	if _, err = svc.Extend(ctx, returned.ID, newDue); !errors.Is(err, library.ErrLoanReturned) {
		t.Errorf("Extend() error = %v, want ErrLoanReturned", err)
	}
}

func TestReservationService(t *testing.T) {
	fx := setup(t)
	svc := library.NewReservationService(fx.store, fx.events)
	ctx := context.Background()

	var updates int
	fx.events.OnReservationUpdated(func(_ context.Context, _, _ library.Reservation) {
		updates++
	})

	res, err := svc.Reserve(ctx, library.NewReservation{MemberID: fx.member.ID, BookID: fx.book.ID})
	if err != nil {
		t.Fatalf("Reserve() failed: %v", err)
	}
	if !res.Active || res.Ready || res.Notified {
		t.Errorf("fresh reservation = %+v", res)
	}

	res, err = svc.MarkReady(ctx, res.ID)
	if err != nil {
		t.Fatalf("MarkReady() failed: %v", err)
	}
	if !res.Ready {
		t.Error("reservation should be ready")
	}
	if updates != 1 {
		t.Errorf("reservation-updated events = %d, want 1", updates)
	}

	// the event fires again on every successful update
	if _, err = svc.MarkReady(ctx, res.ID); err != nil {
		t.Fatalf("second MarkReady() failed: %v", err)
	}
	if updates != 2 {
		t.Errorf("reservation-updated events = %d, want 2", updates)
	}

	res, err = svc.Fulfill(ctx, res.ID)
	if err != nil {
		t.Fatalf("Fulfill() failed: %v", err)
	}
	if res.Active {
		t.Error("fulfilled reservation should be closed")
	}

	if _, err = svc.Cancel(ctx, res.ID); !errors.Is(err, library.ErrReservationClosed) {
		t.Errorf("Cancel() error = %v, want ErrReservationClosed", err)
	}
	if _, err = svc.MarkReady(ctx, res.ID); !errors.Is(err, library.ErrReservationClosed) {
		t.Errorf("MarkReady() error = %v, want ErrReservationClosed", err)
	}
}

func TestReviewService_Add(t *testing.T) {
	fx := setup(t)
	svc := library.NewReviewService(fx.store, fx.events)
	ctx := context.Background()

	var fired int
	fx.events.OnReviewCreated(func(_ context.Context, _ library.Review) { fired++ })

	rv, err := svc.Add(ctx, library.NewReview{
		MemberID: fx.member.ID,
		BookID:   fx.book.ID,
		Rating:   5,
		Comment:  "  krásná kniha  ",
	})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if rv.Comment != "krásná kniha" {
		t.Errorf("Comment = %q", rv.Comment)
	}
	if fired != 1 {
		t.Errorf("review-created events = %d, want 1", fired)
	}

	if _, err = svc.Add(ctx, library.NewReview{MemberID: fx.member.ID, BookID: fx.book.ID, Rating: 6}); err == nil {
		t.Error("Add() rating out of range should fail")
	}
}

func TestRequestService_Add(t *testing.T) {
	fx := setup(t)
	svc := library.NewRequestService(fx.store, fx.events)
	ctx := context.Background()

	var fired int
	fx.events.OnRequestCreated(func(_ context.Context, _ library.Request) { fired++ })

	rq, err := svc.Add(ctx, library.NewRequest{MemberID: fx.member.ID, Title: "Saturnin"})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if rq.Title != "Saturnin" {
		t.Errorf("Title = %q", rq.Title)
	}
	if fired != 1 {
		t.Errorf("request-created events = %d, want 1", fired)
	}

	if _, err = svc.Add(ctx, library.NewRequest{MemberID: fx.member.ID}); err == nil {
		t.Error("Add() without a title should fail")
	}
}
