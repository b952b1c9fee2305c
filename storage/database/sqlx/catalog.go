package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mkadlec/libris/core/library"
)

// id of the single notification_mail row, kept from the original schema
const staffMailID = "1"

type memberRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type bookRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Author    string    `db:"author"`
	Copies    int       `db:"copies"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func getMember(ctx context.Context, db *sqlx.DB, id string) (library.Member, error) {
	const q = `SELECT id, name, email, created_at, updated_at FROM member WHERE id = $1`

	var row memberRow
	if err := db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return library.Member{}, library.ErrMemberNotFound
		}
		return library.Member{}, errors.Wrap(err, "getting member")
	}
	return library.Member(row), nil
}

func getBook(ctx context.Context, db *sqlx.DB, id string) (library.Book, error) {
	const q = `SELECT id, title, author, copies, created_at, updated_at FROM book WHERE id = $1`

	var row bookRow
	if err := db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return library.Book{}, library.ErrBookNotFound
		}
		return library.Book{}, errors.Wrap(err, "getting book")
	}
	return library.Book(row), nil
}

type catalogRepository struct {
	db *sqlx.DB
}

var _ library.CatalogRepository = (*catalogRepository)(nil)

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo catalogRepository) CreateMember(ctx context.Context, m library.Member) (library.Member, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	const q = `INSERT INTO member (id, name, email, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := repo.db.ExecContext(ctx, q, m.ID, m.Name, m.Email, m.CreatedAt, m.UpdatedAt); err != nil {
		return library.Member{}, errors.Wrap(err, "creating member")
	}
	return m, nil
}

func (repo catalogRepository) GetMemberByID(ctx context.Context, id string) (library.Member, error) {
	return getMember(ctx, repo.db, id)
}

func (repo catalogRepository) CreateBook(ctx context.Context, b library.Book) (library.Book, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	const q = `INSERT INTO book (id, title, author, copies, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := repo.db.ExecContext(ctx, q, b.ID, b.Title, b.Author, b.Copies, b.CreatedAt, b.UpdatedAt); err != nil {
		return library.Book{}, errors.Wrap(err, "creating book")
	}
	return b, nil
}

func (repo catalogRepository) GetBookByID(ctx context.Context, id string) (library.Book, error) {
	return getBook(ctx, repo.db, id)
}

func (repo catalogRepository) CreateReview(ctx context.Context, rv library.Review) (library.Review, error) {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}

	const q = `INSERT INTO review (id, member_id, book_id, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q,
		rv.ID,
		null.NewString(rv.MemberID, rv.MemberID != ""),
		null.NewString(rv.BookID, rv.BookID != ""),
		rv.Rating,
		rv.Comment,
		rv.CreatedAt,
	)
	if err != nil {
		return library.Review{}, errors.Wrap(err, "creating review")
	}
	return rv, nil
}

func (repo catalogRepository) CreateRequest(ctx context.Context, rq library.Request) (library.Request, error) {
	if rq.ID == "" {
		rq.ID = uuid.NewString()
	}

	const q = `INSERT INTO request (id, member_id, title, author, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.db.ExecContext(ctx, q,
		rq.ID,
		null.NewString(rq.MemberID, rq.MemberID != ""),
		rq.Title,
		rq.Author,
		rq.CreatedAt,
	)
	if err != nil {
		return library.Request{}, errors.Wrap(err, "creating request")
	}
	return rq, nil
}

func (repo catalogRepository) StaffEmail(ctx context.Context) (string, error) {
	const q = `SELECT email FROM notification_mail WHERE id = $1`

	var email string
	if err := repo.db.GetContext(ctx, &email, q, staffMailID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", library.ErrNoStaffEmail
		}
		return "", errors.Wrap(err, "getting staff notification address")
	}
	return email, nil
}

// SetStaffEmail upserts the staff notification address.
func (repo catalogRepository) SetStaffEmail(ctx context.Context, email string) error {
	const q = `INSERT INTO notification_mail (id, email) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email`
	if _, err := repo.db.ExecContext(ctx, q, staffMailID, email); err != nil {
		return errors.Wrap(err, "setting staff notification address")
	}
	return nil
}
