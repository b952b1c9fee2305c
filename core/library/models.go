package library

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrLoanNotFound        = errors.New("loan not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrNoStaffEmail        = errors.New("staff notification address not configured")
	ErrLoanReturned        = errors.New("loan already returned")
	ErrReservationClosed   = errors.New("reservation no longer active")

	errInvalidPeriod = errors.New("due date precedes checkout date")
)

// wire format for date fields (PocketBase convention), plus the formats
// older records were imported with.
const dateLayout = "2006-01-02 15:04:05.000Z"

var dateLayouts = []string{dateLayout, time.RFC3339, "2006-01-02"}

// Date is a date field as stored on a record. The store compares Dates as
// raw strings; parsing only happens at the point of use, so a malformed
// value surfaces there instead of poisoning whole queries.
type Date string

func NewDate(t time.Time) Date {
	return Date(t.UTC().Format(dateLayout))
}

func (d Date) IsZero() bool { return d == "" }

func (d Date) Time() (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, string(d)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid date %q", string(d))
}

// HumanDate formats t the way the library writes dates: day.month year,
// no leading zeros.
func HumanDate(t time.Time) string {
	return t.Format("2.1 2006")
}

type (
	Member struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Book struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Author    string    `json:"author"`
		Copies    int       `json:"copies"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Loan struct {
		ID       string `json:"id"`
		MemberID string `json:"member"`
		BookID   string `json:"book"`
		FromDate Date   `json:"from_date"`
		DueDate  Date   `json:"to_date"`
		Returned bool   `json:"returned"`

		// expanded relations; nil when unresolvable (deleted member/book)
		Member *Member `json:"-"`
		Book   *Book   `json:"-"`

		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Reservation struct {
		ID       string `json:"id"`
		MemberID string `json:"member"`
		BookID   string `json:"book"`
		Active   bool   `json:"active"`
		Ready    bool   `json:"ready"`
		Notified bool   `json:"notified"`

		Member *Member `json:"-"`
		Book   *Book   `json:"-"`

		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Review struct {
		ID        string    `json:"id"`
		MemberID  string    `json:"member"`
		BookID    string    `json:"book"`
		Rating    int       `json:"rating"`
		Comment   string    `json:"comment"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Request is an acquisition request: a member asking the library to
	// stock a title it does not carry.
	Request struct {
		ID        string    `json:"id"`
		MemberID  string    `json:"member"`
		Title     string    `json:"title"`
		Author    string    `json:"author"`
		CreatedAt time.Time `json:"created_at"`
	}

	// LoanFilter applies AND over its set fields. Date bounds compare the
	// stored string values (the wire format is lexicographically ordered).
	LoanFilter struct {
		Returned  *bool
		DueBefore Date // exclusive
		DueFrom   Date // inclusive
		DueTo     Date // inclusive
	}

	ReservationFilter struct {
		Active   *bool
		Ready    *bool
		Notified *bool
	}
)

type (
	// LoanRepository is the persistence capability LoanService and the
	// notifier depend on. FilterLoans pages matches ordered by due date
	// (oldest first), then id.
	LoanRepository interface {
		CreateLoan(ctx context.Context, ln Loan) (Loan, error)
		GetLoanByID(ctx context.Context, id string) (Loan, error)
		FilterLoans(ctx context.Context, f LoanFilter, limit, offset int) ([]Loan, error)
		UpdateLoan(ctx context.Context, ln Loan) (Loan, error)
		// ExpandLoan resolves ln.Member and ln.Book in place. A deleted
		// relation is left nil; only store failures return an error.
		ExpandLoan(ctx context.Context, ln *Loan) error
	}

	ReservationRepository interface {
		CreateReservation(ctx context.Context, res Reservation) (Reservation, error)
		GetReservationByID(ctx context.Context, id string) (Reservation, error)
		FilterReservations(ctx context.Context, f ReservationFilter, limit, offset int) ([]Reservation, error)
		UpdateReservation(ctx context.Context, res Reservation) (Reservation, error)
		// SetReservationNotified persists just the notified flag.
		SetReservationNotified(ctx context.Context, id string, notified bool) error
		ExpandReservation(ctx context.Context, res *Reservation) error
	}

	// CatalogRepository covers members, books, reader submissions and the
	// staff notification address.
	CatalogRepository interface {
		CreateMember(ctx context.Context, m Member) (Member, error)
		GetMemberByID(ctx context.Context, id string) (Member, error)
		CreateBook(ctx context.Context, b Book) (Book, error)
		GetBookByID(ctx context.Context, id string) (Book, error)
		CreateReview(ctx context.Context, rv Review) (Review, error)
		CreateRequest(ctx context.Context, rq Request) (Request, error)
		// StaffEmail returns the configured staff notification address,
		// or ErrNoStaffEmail when none is set.
		StaffEmail(ctx context.Context) (string, error)
	}
)
