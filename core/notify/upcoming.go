package notify

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/core/library"
)

const upcomingJob = "upcoming due check"

type upcomingDueData struct {
	BookTitle string
	DueDate   string
}

// CheckUpcomingDueLoans mails every member whose outstanding loan falls
// due on the day UpcomingDueDays from now, scanning the whole of that
// day's window.
func (svc *Service) CheckUpcomingDueLoans(ctx context.Context) error {
	day := nowFunc().AddDate(0, 0, svc.conf.Notify.UpcomingDueDays)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Millisecond)

	outstanding := false
	f := library.LoanFilter{
		Returned: &outstanding,
		DueFrom:  library.NewDate(start),
		DueTo:    library.NewDate(end),
	}

	return svc.scanLoans(ctx, f, upcomingJob+": no loans due soon", svc.sendUpcomingDueNotice)
}

func (svc *Service) sendUpcomingDueNotice(ctx context.Context, ln library.Loan) {
	if !svc.expandLoan(ctx, &ln, upcomingJob) {
		return
	}

	due, err := ln.DueDate.Time()
	if err != nil {
		svc.logger.Error(fmt.Sprintf("%s: loan %s: invalid due date %q", upcomingJob, ln.ID, ln.DueDate), err)
		return
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: ln.Member.Email}},
		Subject:      "Blíží se termín vrácení knihy",
		TemplateName: "loan_upcoming_due",
		TemplateData: upcomingDueData{
			BookTitle: ln.Book.Title,
			DueDate:   library.HumanDate(due),
		},
	}
	if err = svc.mail.SendMessage(ctx, msg); err != nil {
		svc.logger.Error(fmt.Sprintf("%s: sending notice for loan %s: %v", upcomingJob, ln.ID, err), err)
		return
	}

	svc.logger.Info(fmt.Sprintf("%s: notice sent to %s <%s> for %q",
		upcomingJob, ln.Member.Name, ln.Member.Email, ln.Book.Title))
}
