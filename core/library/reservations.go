package library

import (
	"context"
	"time"

	"github.com/mkadlec/libris/core"
)

type NewReservation struct {
	MemberID string `json:"member" validate:"required"`
	BookID   string `json:"book" validate:"required"`
}

type ReservationService struct {
	repo   ReservationRepository
	events *Events
}

func NewReservationService(repo ReservationRepository, events *Events) *ReservationService {
	return &ReservationService{repo: repo, events: events}
}

// Reserve creates an active, not-yet-ready reservation and fires the
// reservation-created event.
func (svc *ReservationService) Reserve(ctx context.Context, nr NewReservation) (Reservation, error) {
	if err := core.Validate.Struct(nr); err != nil {
		return Reservation{}, err
	}

	now := time.Now().UTC()
	res := Reservation{
		MemberID:  nr.MemberID,
		BookID:    nr.BookID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := svc.repo.CreateReservation(ctx, res)
	if err != nil {
		return Reservation{}, err
	}

	svc.events.emitReservationCreated(ctx, res)
	return res, nil
}

// MarkReady flags the reserved copy as available for pickup and fires the
// reservation-updated event. The event fires on every successful update;
// the notified flag is what keeps the pickup notice from repeating.
func (svc *ReservationService) MarkReady(ctx context.Context, id string) (Reservation, error) {
	res, err := svc.repo.GetReservationByID(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	if !res.Active {
		return Reservation{}, ErrReservationClosed
	}

	old := res
	res.Ready = true
	res.UpdatedAt = time.Now().UTC()
	res, err = svc.repo.UpdateReservation(ctx, res)
	if err != nil {
		return Reservation{}, err
	}

	svc.events.emitReservationUpdated(ctx, old, res)
	return res, nil
}

// Cancel deactivates a reservation.
func (svc *ReservationService) Cancel(ctx context.Context, id string) (Reservation, error) {
	return svc.deactivate(ctx, id)
}

// Fulfill closes a reservation once the member picked the copy up.
func (svc *ReservationService) Fulfill(ctx context.Context, id string) (Reservation, error) {
	return svc.deactivate(ctx, id)
}

func (svc *ReservationService) deactivate(ctx context.Context, id string) (Reservation, error) {
	res, err := svc.repo.GetReservationByID(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	if !res.Active {
		return Reservation{}, ErrReservationClosed
	}

	old := res
	res.Active = false
	res.UpdatedAt = time.Now().UTC()
	res, err = svc.repo.UpdateReservation(ctx, res)
	if err != nil {
		return Reservation{}, err
	}

	svc.events.emitReservationUpdated(ctx, old, res)
	return res, nil
}

func (svc *ReservationService) GetByID(ctx context.Context, id string) (Reservation, error) {
	return svc.repo.GetReservationByID(ctx, id)
}

func (svc *ReservationService) Filter(ctx context.Context, f ReservationFilter, limit, offset int) ([]Reservation, error) {
	return svc.repo.FilterReservations(ctx, f, limit, offset)
}
