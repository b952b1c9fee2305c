package notify

import (
	"context"
	"testing"
	"time"

	"github.com/mkadlec/libris/core/library"
)

func Test_HandleLoanCreated(t *testing.T) {
	jana := testMember("m1", "Jana", "jana@test.cz")
	book := testBook("b1", "Babička")

	t.Run("confirms a fresh checkout", func(t *testing.T) {
		store := &fakeStore{
			members: map[string]library.Member{"m1": jana},
			books:   map[string]library.Book{"b1": book},
		}
		svc, mailer, _ := newTestService(store, 100)

		svc.HandleLoanCreated(context.Background(), library.Loan{
			ID:       "l1",
			MemberID: "m1",
			BookID:   "b1",
			FromDate: library.NewDate(time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)),
			DueDate:  library.NewDate(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
		})

		if len(mailer.sent) != 1 {
			t.Fatalf("sent = %d, want 1", len(mailer.sent))
		}
		msg := mailer.sent[0]
		if msg.Subject != "Potvrzení o výpůjčce knihy" {
			t.Errorf("Subject = %q", msg.Subject)
		}
		if msg.TemplateName != "loan_confirmation" {
			t.Errorf("TemplateName = %q", msg.TemplateName)
		}
		data, ok := msg.TemplateData.(loanConfirmationData)
		if !ok {
			t.Fatalf("TemplateData = %T", msg.TemplateData)
		}
		if data.FromDate != "2.2 2026" || data.DueDate != "2.3 2026" {
			t.Errorf("TemplateData = %+v", data)
		}
	})

	t.Run("invalid dates only log", func(t *testing.T) {
		store := &fakeStore{
			members: map[string]library.Member{"m1": jana},
			books:   map[string]library.Book{"b1": book},
		}
		svc, mailer, logger := newTestService(store, 100)

		svc.HandleLoanCreated(context.Background(), library.Loan{
			ID: "l1", MemberID: "m1", BookID: "b1", FromDate: "yesterday", DueDate: "tomorrow",
		})

		if !logger.hasError(`loan l1: invalid from date "yesterday"`) {
			t.Errorf("expected invalid date log, got %q", logger.errs)
		}
		if len(mailer.sent) != 0 {
			t.Errorf("sent = %d, want 0", len(mailer.sent))
		}
	})
}

func Test_notifyStaff(t *testing.T) {
	t.Run("sends the fixed notice to the staff address", func(t *testing.T) {
		store := &fakeStore{staffEmail: "staff@library.cz"}
		svc, mailer, _ := newTestService(store, 100)

		svc.notifyStaff(context.Background(), staffNewRequest)

		if len(mailer.sent) != 1 {
			t.Fatalf("sent = %d, want 1", len(mailer.sent))
		}
		msg := mailer.sent[0]
		if !mailer.sentTo("staff@library.cz") {
			t.Errorf("To = %+v", msg.To)
		}
		if msg.Subject != "Nový požadavek byl přidán" {
			t.Errorf("Subject = %q", msg.Subject)
		}
		if msg.TemplateName != "staff_notice" {
			t.Errorf("TemplateName = %q", msg.TemplateName)
		}
	})

	t.Run("missing staff address only logs at info level", func(t *testing.T) {
		store := &fakeStore{}
		svc, mailer, logger := newTestService(store, 100)

		svc.notifyStaff(context.Background(), staffNewReview)

		if !logger.hasInfo("no staff notification address configured") {
			t.Errorf("expected info log, got %q", logger.infos)
		}
		if len(logger.errs) != 0 {
			t.Errorf("unexpected error logs %q", logger.errs)
		}
		if len(mailer.sent) != 0 {
			t.Errorf("sent = %d, want 0", len(mailer.sent))
		}
	})
}

// Register wires the notifier into the record lifecycle: marking a
// reservation ready through the service fires the pickup notice without
// any goroutine in between.
func Test_Register(t *testing.T) {
	jana := testMember("m1", "Jana", "jana@test.cz")
	book := testBook("b1", "Babička")

	res := library.Reservation{ID: "r1", MemberID: "m1", BookID: "b1", Active: true}
	store := &fakeStore{
		members:      map[string]library.Member{"m1": jana},
		books:        map[string]library.Book{"b1": book},
		reservations: map[string]*library.Reservation{"r1": &res},
		staffEmail:   "staff@library.cz",
	}
	svc, mailer, _ := newTestService(store, 100)

	events := library.NewEvents()
	svc.Register(events)

	repo := &eventRepo{res: res}
	resSvc := library.NewReservationService(repo, events)

	if _, err := resSvc.MarkReady(context.Background(), "r1"); err != nil {
		t.Fatalf("MarkReady() failed: %v", err)
	}

	if !mailer.sentTo("jana@test.cz") {
		t.Errorf("expected pickup notice, sent = %+v", mailer.sent)
	}
	if !store.reservations["r1"].Notified {
		t.Error("notified flag should be set")
	}
}

// eventRepo is the minimal reservation repository the event wiring test
// needs.
type eventRepo struct {
	res library.Reservation
}

func (r *eventRepo) CreateReservation(_ context.Context, res library.Reservation) (library.Reservation, error) {
	return res, nil
}

func (r *eventRepo) GetReservationByID(_ context.Context, id string) (library.Reservation, error) {
	if id != r.res.ID {
		return library.Reservation{}, library.ErrReservationNotFound
	}
	return r.res, nil
}

func (r *eventRepo) FilterReservations(_ context.Context, _ library.ReservationFilter, _, _ int) ([]library.Reservation, error) {
	return nil, nil
}

func (r *eventRepo) UpdateReservation(_ context.Context, res library.Reservation) (library.Reservation, error) {
	r.res = res
	return res, nil
}

func (r *eventRepo) SetReservationNotified(_ context.Context, id string, notified bool) error {
	r.res.Notified = notified
	return nil
}

func (r *eventRepo) ExpandReservation(_ context.Context, _ *library.Reservation) error {
	return nil
}
