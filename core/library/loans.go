package library

import (
	"context"
	"time"

	"github.com/mkadlec/libris/core"
)

type NewLoan struct {
	MemberID string `json:"member" validate:"required"`
	BookID   string `json:"book" validate:"required"`
	FromDate Date   `json:"from_date"`
	DueDate  Date   `json:"to_date" validate:"required"`
}

type LoanService struct {
	repo   LoanRepository
	events *Events
}

func NewLoanService(repo LoanRepository, events *Events) *LoanService {
	return &LoanService{repo: repo, events: events}
}

// Checkout creates an outstanding loan and fires the loan-created event.
func (svc *LoanService) Checkout(ctx context.Context, nl NewLoan) (Loan, error) {
	if err := core.Validate.Struct(nl); err != nil {
		return Loan{}, err
	}

	now := time.Now().UTC()
	if nl.FromDate.IsZero() {
		nl.FromDate = NewDate(now)
	}
	if err := validDates(nl.FromDate, nl.DueDate); err != nil {
		return Loan{}, err
	}

	ln := Loan{
		MemberID:  nl.MemberID,
		BookID:    nl.BookID,
		FromDate:  nl.FromDate,
		DueDate:   nl.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ln, err := svc.repo.CreateLoan(ctx, ln)
	if err != nil {
		return Loan{}, err
	}

	svc.events.emitLoanCreated(ctx, ln)
	return ln, nil
}

// Return flips the returned flag. It flips exactly once: a second call
// fails with ErrLoanReturned.
func (svc *LoanService) Return(ctx context.Context, id string) (Loan, error) {
	ln, err := svc.repo.GetLoanByID(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	if ln.Returned {
		return Loan{}, ErrLoanReturned
	}

	ln.Returned = true
	ln.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLoan(ctx, ln)
}

// Extend moves the due date of an outstanding loan.
func (svc *LoanService) Extend(ctx context.Context, id string, due Date) (Loan, error) {
	ln, err := svc.repo.GetLoanByID(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	if ln.Returned {
		return Loan{}, ErrLoanReturned
	}
	if err = validDates(ln.FromDate, due); err != nil {
		return Loan{}, err
	}

	ln.DueDate = due
	ln.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLoan(ctx, ln)
}

func (svc *LoanService) GetByID(ctx context.Context, id string) (Loan, error) {
	return svc.repo.GetLoanByID(ctx, id)
}

func (svc *LoanService) Filter(ctx context.Context, f LoanFilter, limit, offset int) ([]Loan, error) {
	return svc.repo.FilterLoans(ctx, f, limit, offset)
}

func validDates(from, due Date) error {
	fromT, err := from.Time()
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "from_date", Error: err.Error()})
	}
	dueT, err := due.Time()
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "to_date", Error: err.Error()})
	}
	if dueT.Before(fromT) {
		return core.NewValidationError(
			errInvalidPeriod,
			core.FieldError{Field: "to_date", Error: errInvalidPeriod.Error()},
		)
	}
	return nil
}
