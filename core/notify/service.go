// Package notify implements the library's notification jobs: recurring
// paginated scans over loans (overdue and upcoming-due reminders) and
// record-lifecycle handlers (pickup notices, checkout confirmations,
// staff notices).
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/core/library"
)

var nowFunc = time.Now // mockable

// Store is the slice of the record store the notifier needs: paginated
// loan queries, relation expansion, the reservation notified flag and the
// staff notification address.
type Store interface {
	FilterLoans(ctx context.Context, f library.LoanFilter, limit, offset int) ([]library.Loan, error)
	ExpandLoan(ctx context.Context, ln *library.Loan) error
	ExpandReservation(ctx context.Context, res *library.Reservation) error
	SetReservationNotified(ctx context.Context, id string, notified bool) error
	StaffEmail(ctx context.Context) (string, error)
}

type Service struct {
	store  Store
	mail   core.EmailService
	logger core.Logger
	conf   *core.Config
}

func NewService(store Store, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		store:  store,
		mail:   mailSvc,
		logger: logger,
		conf:   conf,
	}
}

// Register subscribes the notifier to the record-lifecycle events it
// reacts to.
func (svc *Service) Register(events *library.Events) {
	events.OnReservationUpdated(svc.HandleReservationUpdated)
	events.OnLoanCreated(svc.HandleLoanCreated)
	events.OnReservationCreated(func(ctx context.Context, _ library.Reservation) {
		svc.notifyStaff(ctx, staffNewReservation)
	})
	events.OnReviewCreated(func(ctx context.Context, _ library.Review) {
		svc.notifyStaff(ctx, staffNewReview)
	})
	events.OnRequestCreated(func(ctx context.Context, _ library.Request) {
		svc.notifyStaff(ctx, staffNewRequest)
	})
}

// scanLoans pages through loans matching f and hands each one to process.
// Pages are fetched at offsets 0, P, 2P, ... under the same filter; an
// empty page logs noMatchMsg and ends the scan, a short page is the last
// one. Only a page-fetch failure aborts the run — process must swallow
// its own per-record failures.
func (svc *Service) scanLoans(
	ctx context.Context,
	f library.LoanFilter,
	noMatchMsg string,
	process func(ctx context.Context, ln library.Loan),
) error {
	size := svc.conf.Notify.PageSize
	for offset := 0; ; offset += size {
		page, err := svc.store.FilterLoans(ctx, f, size, offset)
		if err != nil {
			return errors.Wrap(err, "fetching loans page")
		}
		if len(page) == 0 {
			svc.logger.Info(noMatchMsg)
			return nil
		}

		for _, ln := range page {
			process(ctx, ln)
		}

		if len(page) < size {
			return nil
		}
	}
}

// expandLoan resolves the loan's member and book. Reports whether both
// came back: a deleted relation is an expected steady-state condition and
// only logged at info level.
func (svc *Service) expandLoan(ctx context.Context, ln *library.Loan, job string) bool {
	if err := svc.store.ExpandLoan(ctx, ln); err != nil {
		svc.logger.Error(fmt.Sprintf("%s: expanding loan %s: %v", job, ln.ID, err), err)
		return false
	}
	if ln.Member == nil || ln.Book == nil {
		svc.logger.Info(fmt.Sprintf("%s: skipping loan %s: missing member or book", job, ln.ID))
		return false
	}
	return true
}
