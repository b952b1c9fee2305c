package inmemdb

// Store bundles the repositories behind one value, mirroring the SQL
// implementation.
type Store struct {
	*loanRepository
	*reservationRepository
	*catalogRepository
}

func NewStore(db *DB) *Store {
	return &Store{
		loanRepository:        NewLoanRepository(db),
		reservationRepository: NewReservationRepository(db),
		catalogRepository:     NewCatalogRepository(db),
	}
}
