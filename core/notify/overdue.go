package notify

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/core/library"
)

const overdueJob = "overdue check"

type overdueData struct {
	BookTitle string
	DueDate   string
}

// CheckOverdueLoans mails every member holding a loan whose due date has
// passed. It carries no idempotency flag, so an outstanding loan is
// reminded again on every run.
func (svc *Service) CheckOverdueLoans(ctx context.Context) error {
	now := nowFunc().UTC()
	outstanding := false
	f := library.LoanFilter{
		Returned:  &outstanding,
		DueBefore: library.NewDate(now),
	}

	return svc.scanLoans(ctx, f, overdueJob+": no unreturned loans past due", svc.sendOverdueNotice)
}

func (svc *Service) sendOverdueNotice(ctx context.Context, ln library.Loan) {
	if !svc.expandLoan(ctx, &ln, overdueJob) {
		return
	}

	due, err := ln.DueDate.Time()
	if err != nil {
		svc.logger.Error(fmt.Sprintf("%s: loan %s: invalid due date %q", overdueJob, ln.ID, ln.DueDate), err)
		return
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: ln.Member.Email}},
		Subject:      "Nevrácená kniha",
		TemplateName: "loan_overdue",
		TemplateData: overdueData{
			BookTitle: ln.Book.Title,
			DueDate:   library.HumanDate(due),
		},
	}
	if err = svc.mail.SendMessage(ctx, msg); err != nil {
		svc.logger.Error(fmt.Sprintf("%s: sending notice for loan %s: %v", overdueJob, ln.ID, err), err)
		return
	}

	svc.logger.Info(fmt.Sprintf("%s: notice sent to %s <%s> for %q, due %s",
		overdueJob, ln.Member.Name, ln.Member.Email, ln.Book.Title, due.Format("2006-01-02")))
}
