package notify

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/core/library"
)

const checkoutJob = "checkout confirmation"

type loanConfirmationData struct {
	BookTitle string
	FromDate  string
	DueDate   string
}

// HandleLoanCreated confirms a fresh checkout by mail. Failures are
// logged only — the checkout itself already succeeded.
func (svc *Service) HandleLoanCreated(ctx context.Context, ln library.Loan) {
	if !svc.expandLoan(ctx, &ln, checkoutJob) {
		return
	}

	from, err := ln.FromDate.Time()
	if err != nil {
		svc.logger.Error(fmt.Sprintf("%s: loan %s: invalid from date %q", checkoutJob, ln.ID, ln.FromDate), err)
		return
	}
	due, err := ln.DueDate.Time()
	if err != nil {
		svc.logger.Error(fmt.Sprintf("%s: loan %s: invalid due date %q", checkoutJob, ln.ID, ln.DueDate), err)
		return
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: ln.Member.Email}},
		Subject:      "Potvrzení o výpůjčce knihy",
		TemplateName: "loan_confirmation",
		TemplateData: loanConfirmationData{
			BookTitle: ln.Book.Title,
			FromDate:  library.HumanDate(from),
			DueDate:   library.HumanDate(due),
		},
	}
	if err = svc.mail.SendMessage(ctx, msg); err != nil {
		svc.logger.Error(fmt.Sprintf("%s: sending confirmation for loan %s: %v", checkoutJob, ln.ID, err), err)
		return
	}

	svc.logger.Info(fmt.Sprintf("%s: confirmation sent to <%s>", checkoutJob, ln.Member.Email))
}

// staffNotice is one of the fixed heads-up mails sent to the configured
// staff address when a reader submits something new.
type staffNotice struct {
	job     string
	subject string
	line    string
}

var (
	staffNewRequest = staffNotice{
		job:     "new request notice",
		subject: "Nový požadavek byl přidán",
		line:    "byl vytvořen nový požadavek v systému.",
	}
	staffNewReview = staffNotice{
		job:     "new review notice",
		subject: "Nová recenze byla přidána",
		line:    "byla vytvořena nová recenze v systému.",
	}
	staffNewReservation = staffNotice{
		job:     "new reservation notice",
		subject: "Nová rezervace byla přidána",
		line:    "byla vytvořena nová rezervace v systému.",
	}
)

type staffNoticeData struct {
	Line string
}

func (svc *Service) notifyStaff(ctx context.Context, n staffNotice) {
	addr, err := svc.store.StaffEmail(ctx)
	if err != nil {
		if errors.Is(err, library.ErrNoStaffEmail) {
			svc.logger.Info(fmt.Sprintf("%s: no staff notification address configured", n.job))
		} else {
			svc.logger.Error(fmt.Sprintf("%s: looking up staff notification address: %v", n.job, err), err)
		}
		return
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: addr}},
		Subject:      n.subject,
		TemplateName: "staff_notice",
		TemplateData: staffNoticeData{Line: n.line},
	}
	if err = svc.mail.SendMessage(ctx, msg); err != nil {
		svc.logger.Error(fmt.Sprintf("%s: sending notice: %v", n.job, err), err)
		return
	}

	svc.logger.Info(fmt.Sprintf("%s: notice sent to <%s>", n.job, addr))
}
