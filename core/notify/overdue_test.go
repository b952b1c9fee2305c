package notify

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/mkadlec/libris/core/library"
)

func Test_CheckOverdueLoans(t *testing.T) {
	now := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	due := library.NewDate(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	jana := testMember("m1", "Jana", "jana@test.cz")
	petr := testMember("m2", "Petr", "petr@test.cz")
	book := testBook("b1", "Babička")

	t.Run("filters unreturned loans past due", func(t *testing.T) {
		setNow(t, now)
		store := &fakeStore{
			loans:   []library.Loan{{ID: "l1", MemberID: "m1", BookID: "b1", DueDate: due}},
			members: map[string]library.Member{"m1": jana},
			books:   map[string]library.Book{"b1": book},
		}
		svc, mailer, _ := newTestService(store, 100)

		if err := svc.CheckOverdueLoans(context.Background()); err != nil {
			t.Fatalf("CheckOverdueLoans() failed: %v", err)
		}

		if store.lastFilter.Returned == nil || *store.lastFilter.Returned {
			t.Error("filter should select unreturned loans")
		}
		if want := library.NewDate(now); store.lastFilter.DueBefore != want {
			t.Errorf("filter.DueBefore = %s, want %s", store.lastFilter.DueBefore, want)
		}

		if len(mailer.sent) != 1 {
			t.Fatalf("sent = %d, want 1", len(mailer.sent))
		}
		msg := mailer.sent[0]
		if msg.Subject != "Nevrácená kniha" {
			t.Errorf("Subject = %q", msg.Subject)
		}
		if msg.TemplateName != "loan_overdue" {
			t.Errorf("TemplateName = %q", msg.TemplateName)
		}
		data, ok := msg.TemplateData.(overdueData)
		if !ok {
			t.Fatalf("TemplateData = %T", msg.TemplateData)
		}
		if data.BookTitle != "Babička" || data.DueDate != "5.1 2026" {
			t.Errorf("TemplateData = %+v", data)
		}
	})

	t.Run("missing member or book is skipped at info level", func(t *testing.T) {
		setNow(t, now)
		store := &fakeStore{
			loans: []library.Loan{
				{ID: "l1", MemberID: "gone", BookID: "b1", DueDate: due},
				{ID: "l2", MemberID: "m2", BookID: "b1", DueDate: due},
			},
			members: map[string]library.Member{"m2": petr},
			books:   map[string]library.Book{"b1": book},
		}
		svc, mailer, logger := newTestService(store, 100)

		if err := svc.CheckOverdueLoans(context.Background()); err != nil {
			t.Fatalf("CheckOverdueLoans() failed: %v", err)
		}
		if !logger.hasInfo("skipping loan l1: missing member or book") {
			t.Errorf("expected skip log, got infos %q", logger.infos)
		}
		if len(logger.errs) != 0 {
			t.Errorf("unexpected error logs %q", logger.errs)
		}
		if !mailer.sentTo("petr@test.cz") || mailer.sentTo("jana@test.cz") {
			t.Errorf("sent = %+v", mailer.sent)
		}
	})

	t.Run("invalid due date is skipped with an error log", func(t *testing.T) {
		setNow(t, now)
		store := &fakeStore{
			loans: []library.Loan{
				{ID: "l1", MemberID: "m1", BookID: "b1", DueDate: "soon"},
				{ID: "l2", MemberID: "m2", BookID: "b1", DueDate: due},
			},
			members: map[string]library.Member{"m1": jana, "m2": petr},
			books:   map[string]library.Book{"b1": book},
		}
		svc, mailer, logger := newTestService(store, 100)

		if err := svc.CheckOverdueLoans(context.Background()); err != nil {
			t.Fatalf("CheckOverdueLoans() failed: %v", err)
		}
		if !logger.hasError(`loan l1: invalid due date "soon"`) {
			t.Errorf("expected invalid date log, got %q", logger.errs)
		}
		if mailer.sentTo("jana@test.cz") {
			t.Error("loan with invalid date should not be mailed")
		}
		if !mailer.sentTo("petr@test.cz") {
			t.Error("valid sibling loan should still be mailed")
		}
	})

	t.Run("dispatch failure does not abort the scan", func(t *testing.T) {
		setNow(t, now)
		store := &fakeStore{
			loans: []library.Loan{
				{ID: "l1", MemberID: "m1", BookID: "b1", DueDate: due},
				{ID: "l2", MemberID: "m2", BookID: "b1", DueDate: due},
			},
			members: map[string]library.Member{"m1": jana, "m2": petr},
			books:   map[string]library.Book{"b1": book},
		}
		svc, mailer, logger := newTestService(store, 100)
		mailer.failFor = map[string]error{"jana@test.cz": errors.New("smtp timeout")}

		if err := svc.CheckOverdueLoans(context.Background()); err != nil {
			t.Fatalf("CheckOverdueLoans() failed: %v", err)
		}
		if !logger.hasError("sending notice for loan l1") {
			t.Errorf("expected dispatch failure log, got %q", logger.errs)
		}
		if !mailer.sentTo("petr@test.cz") {
			t.Error("scan should continue past a failed send")
		}
	})

	t.Run("store failure on expansion is logged and skipped", func(t *testing.T) {
		setNow(t, now)
		store := &fakeStore{
			loans:     []library.Loan{{ID: "l1", MemberID: "m1", BookID: "b1", DueDate: due}},
			expandErr: errors.New("connection reset"),
		}
		svc, mailer, logger := newTestService(store, 100)

		if err := svc.CheckOverdueLoans(context.Background()); err != nil {
			t.Fatalf("CheckOverdueLoans() failed: %v", err)
		}
		if !logger.hasError("expanding loan l1") {
			t.Errorf("expected expansion failure log, got %q", logger.errs)
		}
		if len(mailer.sent) != 0 {
			t.Errorf("sent = %d, want 0", len(mailer.sent))
		}
	})
}
