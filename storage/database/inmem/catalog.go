package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkadlec/libris/core/library"
)

type catalogRepository struct {
	db *DB
}

var _ library.CatalogRepository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateMember(ctx context.Context, m library.Member) (library.Member, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	cp := m
	repo.db.members[m.ID] = &cp
	return m, nil
}

func (repo *catalogRepository) GetMemberByID(ctx context.Context, id string) (library.Member, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	m, ok := repo.db.members[id]
	if !ok {
		return library.Member{}, library.ErrMemberNotFound
	}
	return *m, nil
}

func (repo *catalogRepository) CreateBook(ctx context.Context, b library.Book) (library.Book, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	cp := b
	repo.db.books[b.ID] = &cp
	return b, nil
}

func (repo *catalogRepository) GetBookByID(ctx context.Context, id string) (library.Book, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	b, ok := repo.db.books[id]
	if !ok {
		return library.Book{}, library.ErrBookNotFound
	}
	return *b, nil
}

func (repo *catalogRepository) CreateReview(ctx context.Context, rv library.Review) (library.Review, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	cp := rv
	repo.db.reviews[rv.ID] = &cp
	return rv, nil
}

func (repo *catalogRepository) CreateRequest(ctx context.Context, rq library.Request) (library.Request, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if rq.ID == "" {
		rq.ID = uuid.NewString()
	}
	cp := rq
	repo.db.requests[rq.ID] = &cp
	return rq, nil
}

func (repo *catalogRepository) StaffEmail(ctx context.Context) (string, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if repo.db.staffEmail == "" {
		return "", library.ErrNoStaffEmail
	}
	return repo.db.staffEmail, nil
}

func (repo *catalogRepository) SetStaffEmail(ctx context.Context, email string) error {
	repo.db.SetStaffEmail(email)
	return nil
}
