package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
)

// Store bundles the repositories behind one value for consumers that cut
// across them, like the notifier.
type Store struct {
	*loanRepository
	*reservationRepository
	*catalogRepository
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		loanRepository:        NewLoanRepository(db),
		reservationRepository: NewReservationRepository(db),
		catalogRepository:     NewCatalogRepository(db),
	}
}
