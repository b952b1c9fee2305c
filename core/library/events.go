package library

import (
	"context"
	"sync"
)

// Events is the record-lifecycle hub. Services emit an event after the
// write that caused it succeeds; handlers run synchronously, in
// registration order, on the emitting goroutine. Handlers must not fail
// the operation — they get no error return.
type Events struct {
	mu sync.RWMutex

	loanCreated        []func(ctx context.Context, ln Loan)
	reservationCreated []func(ctx context.Context, res Reservation)
	reservationUpdated []func(ctx context.Context, old, updated Reservation)
	reviewCreated      []func(ctx context.Context, rv Review)
	requestCreated     []func(ctx context.Context, rq Request)
}

func NewEvents() *Events {
	return &Events{}
}

func (e *Events) OnLoanCreated(fn func(ctx context.Context, ln Loan)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loanCreated = append(e.loanCreated, fn)
}

func (e *Events) OnReservationCreated(fn func(ctx context.Context, res Reservation)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reservationCreated = append(e.reservationCreated, fn)
}

// OnReservationUpdated handlers receive both the pre-update and the
// persisted record.
func (e *Events) OnReservationUpdated(fn func(ctx context.Context, old, updated Reservation)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reservationUpdated = append(e.reservationUpdated, fn)
}

func (e *Events) OnReviewCreated(fn func(ctx context.Context, rv Review)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reviewCreated = append(e.reviewCreated, fn)
}

func (e *Events) OnRequestCreated(fn func(ctx context.Context, rq Request)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requestCreated = append(e.requestCreated, fn)
}

func (e *Events) emitLoanCreated(ctx context.Context, ln Loan) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, fn := range e.loanCreated {
		fn(ctx, ln)
	}
}

func (e *Events) emitReservationCreated(ctx context.Context, res Reservation) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, fn := range e.reservationCreated {
		fn(ctx, res)
	}
}

func (e *Events) emitReservationUpdated(ctx context.Context, old, updated Reservation) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, fn := range e.reservationUpdated {
		fn(ctx, old, updated)
	}
}

func (e *Events) emitReviewCreated(ctx context.Context, rv Review) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, fn := range e.reviewCreated {
		fn(ctx, rv)
	}
}

func (e *Events) emitRequestCreated(ctx context.Context, rq Request) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, fn := range e.requestCreated {
		fn(ctx, rq)
	}
}
