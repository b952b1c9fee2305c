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

type reservationRow struct {
	ID        string      `db:"id"`
	MemberID  null.String `db:"member_id"`
	BookID    null.String `db:"book_id"`
	Active    bool        `db:"active"`
	Ready     bool        `db:"ready"`
	Notified  bool        `db:"notified"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r reservationRow) toReservation() library.Reservation {
	return library.Reservation{
		ID:        r.ID,
		MemberID:  r.MemberID.String,
		BookID:    r.BookID.String,
		Active:    r.Active,
		Ready:     r.Ready,
		Notified:  r.Notified,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type reservationRepository struct {
	db *sqlx.DB
}

var _ library.ReservationRepository = (*reservationRepository)(nil)

func NewReservationRepository(db *sqlx.DB) *reservationRepository {
	return &reservationRepository{db: db}
}

func (repo reservationRepository) CreateReservation(ctx context.Context, res library.Reservation) (library.Reservation, error) {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}

	const q = `INSERT INTO reservation (id, member_id, book_id, active, ready, notified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, q,
		res.ID,
		null.NewString(res.MemberID, res.MemberID != ""),
		null.NewString(res.BookID, res.BookID != ""),
		res.Active,
		res.Ready,
		res.Notified,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		return library.Reservation{}, errors.Wrap(err, "creating reservation")
	}
	return res, nil
}

func (repo reservationRepository) GetReservationByID(ctx context.Context, id string) (library.Reservation, error) {
	const q = `SELECT id, member_id, book_id, active, ready, notified, created_at, updated_at
		FROM reservation WHERE id = $1`

	var row reservationRow
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return library.Reservation{}, library.ErrReservationNotFound
		}
		return library.Reservation{}, errors.Wrap(err, "getting reservation")
	}
	return row.toReservation(), nil
}

func (repo reservationRepository) FilterReservations(ctx context.Context, f library.ReservationFilter, limit, offset int) ([]library.Reservation, error) {
	q := `SELECT id, member_id, book_id, active, ready, notified, created_at, updated_at FROM reservation`

	var conds []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Active != nil {
		add("active = $%d", *f.Active)
	}
	if f.Ready != nil {
		add("ready = $%d", *f.Ready)
	}
	if f.Notified != nil {
		add("notified = $%d", *f.Notified)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	q += " ORDER BY created_at, id"
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	var rows []reservationRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering reservations")
	}

	reservations := make([]library.Reservation, 0, len(rows))
	for _, row := range rows {
		reservations = append(reservations, row.toReservation())
	}
	return reservations, nil
}

func (repo reservationRepository) UpdateReservation(ctx context.Context, res library.Reservation) (library.Reservation, error) {
	const q = `UPDATE reservation SET active = $1, ready = $2, notified = $3, updated_at = $4 WHERE id = $5`

	r, err := repo.db.ExecContext(ctx, q, res.Active, res.Ready, res.Notified, res.UpdatedAt, res.ID)
	if err != nil {
		return library.Reservation{}, errors.Wrap(err, "updating reservation")
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return library.Reservation{}, library.ErrReservationNotFound
	}
	return res, nil
}

func (repo reservationRepository) SetReservationNotified(ctx context.Context, id string, notified bool) error {
	const q = `UPDATE reservation SET notified = $1, updated_at = $2 WHERE id = $3`

	r, err := repo.db.ExecContext(ctx, q, notified, time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "marking reservation notified")
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return library.ErrReservationNotFound
	}
	return nil
}

func (repo reservationRepository) ExpandReservation(ctx context.Context, res *library.Reservation) error {
	if res.MemberID != "" {
		m, err := getMember(ctx, repo.db, res.MemberID)
		switch {
		case errors.Is(err, library.ErrMemberNotFound):
		case err != nil:
			return err
		default:
			res.Member = &m
		}
	}
	if res.BookID != "" {
		b, err := getBook(ctx, repo.db, res.BookID)
		switch {
		case errors.Is(err, library.ErrBookNotFound):
		case err != nil:
			return err
		default:
			res.Book = &b
		}
	}
	return nil
}
