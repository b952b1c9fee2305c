package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/mkadlec/libris/core/library"
)

type reservationRepository struct {
	db *DB
}

var _ library.ReservationRepository = (*reservationRepository)(nil)

func NewReservationRepository(db *DB) *reservationRepository {
	return &reservationRepository{db: db}
}

func (repo *reservationRepository) CreateReservation(ctx context.Context, res library.Reservation) (library.Reservation, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	stored := res
	stored.Member, stored.Book = nil, nil
	repo.db.reservations[res.ID] = &stored
	return res, nil
}

func (repo *reservationRepository) GetReservationByID(ctx context.Context, id string) (library.Reservation, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	res, ok := repo.db.reservations[id]
	if !ok {
		return library.Reservation{}, library.ErrReservationNotFound
	}
	return *res, nil
}

func (repo *reservationRepository) FilterReservations(ctx context.Context, f library.ReservationFilter, limit, offset int) ([]library.Reservation, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var matches []library.Reservation
	for _, res := range repo.db.reservations {
		if f.Active != nil && res.Active != *f.Active {
			continue
		}
		if f.Ready != nil && res.Ready != *f.Ready {
			continue
		}
		if f.Notified != nil && res.Notified != *f.Notified {
			continue
		}
		matches = append(matches, *res)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return page(matches, limit, offset), nil
}

func (repo *reservationRepository) UpdateReservation(ctx context.Context, res library.Reservation) (library.Reservation, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.reservations[res.ID]; !ok {
		return library.Reservation{}, library.ErrReservationNotFound
	}
	stored := res
	stored.Member, stored.Book = nil, nil
	repo.db.reservations[res.ID] = &stored
	return res, nil
}

func (repo *reservationRepository) SetReservationNotified(ctx context.Context, id string, notified bool) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	res, ok := repo.db.reservations[id]
	if !ok {
		return library.ErrReservationNotFound
	}
	res.Notified = notified
	return nil
}

func (repo *reservationRepository) ExpandReservation(ctx context.Context, res *library.Reservation) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.members[res.MemberID]; ok {
		cp := *m
		res.Member = &cp
	}
	if b, ok := repo.db.books[res.BookID]; ok {
		cp := *b
		res.Book = &cp
	}
	return nil
}
