package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mkadlec/libris/core/library"
)

type loanRow struct {
	ID        string      `db:"id"`
	MemberID  null.String `db:"member_id"`
	BookID    null.String `db:"book_id"`
	FromDate  string      `db:"from_date"`
	DueDate   string      `db:"due_date"`
	Returned  bool        `db:"returned"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r loanRow) toLoan() library.Loan {
	return library.Loan{
		ID:        r.ID,
		MemberID:  r.MemberID.String,
		BookID:    r.BookID.String,
		FromDate:  library.Date(r.FromDate),
		DueDate:   library.Date(r.DueDate),
		Returned:  r.Returned,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type loanRepository struct {
	db *sqlx.DB
}

var _ library.LoanRepository = (*loanRepository)(nil)

func NewLoanRepository(db *sqlx.DB) *loanRepository {
	return &loanRepository{db: db}
}

func (repo loanRepository) CreateLoan(ctx context.Context, ln library.Loan) (library.Loan, error) {
	if ln.ID == "" {
		ln.ID = uuid.NewString()
	}

	const q = `INSERT INTO loan (id, member_id, book_id, from_date, due_date, returned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, q,
		ln.ID,
		null.NewString(ln.MemberID, ln.MemberID != ""),
		null.NewString(ln.BookID, ln.BookID != ""),
		string(ln.FromDate),
		string(ln.DueDate),
		ln.Returned,
		ln.CreatedAt,
		ln.UpdatedAt,
	)
	if err != nil {
		return library.Loan{}, errors.Wrap(err, "creating loan")
	}
	return ln, nil
}

func (repo loanRepository) GetLoanByID(ctx context.Context, id string) (library.Loan, error) {
	const q = `SELECT id, member_id, book_id, from_date, due_date, returned, created_at, updated_at
		FROM loan WHERE id = $1`

	var row loanRow
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return library.Loan{}, library.ErrLoanNotFound
		}
		return library.Loan{}, errors.Wrap(err, "getting loan")
	}
	return row.toLoan(), nil
}

func (repo loanRepository) FilterLoans(ctx context.Context, f library.LoanFilter, limit, offset int) ([]library.Loan, error) {
	q := `SELECT id, member_id, book_id, from_date, due_date, returned, created_at, updated_at FROM loan`

	var conds []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Returned != nil {
		add("returned = $%d", *f.Returned)
	}
	if !f.DueBefore.IsZero() {
		add("due_date < $%d", string(f.DueBefore))
	}
	if !f.DueFrom.IsZero() {
		add("due_date >= $%d", string(f.DueFrom))
	}
	if !f.DueTo.IsZero() {
		add("due_date <= $%d", string(f.DueTo))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	q += " ORDER BY due_date, id"
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	var rows []loanRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering loans")
	}

	loans := make([]library.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, row.toLoan())
	}
	return loans, nil
}

func (repo loanRepository) UpdateLoan(ctx context.Context, ln library.Loan) (library.Loan, error) {
	const q = `UPDATE loan SET from_date = $1, due_date = $2, returned = $3, updated_at = $4 WHERE id = $5`

	res, err := repo.db.ExecContext(ctx, q,
		string(ln.FromDate), string(ln.DueDate), ln.Returned, ln.UpdatedAt, ln.ID)
	if err != nil {
		return library.Loan{}, errors.Wrap(err, "updating loan")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return library.Loan{}, library.ErrLoanNotFound
	}
	return ln, nil
}

func (repo loanRepository) ExpandLoan(ctx context.Context, ln *library.Loan) error {
	if ln.MemberID != "" {
		m, err := getMember(ctx, repo.db, ln.MemberID)
		switch {
		case errors.Is(err, library.ErrMemberNotFound):
			// deleted member; leave nil
		case err != nil:
			return err
		default:
			ln.Member = &m
		}
	}
	if ln.BookID != "" {
		b, err := getBook(ctx, repo.db, ln.BookID)
		switch {
		case errors.Is(err, library.ErrBookNotFound):
		case err != nil:
			return err
		default:
			ln.Book = &b
		}
	}
	return nil
}
