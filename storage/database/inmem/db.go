// Package inmemdb holds in-memory implementations of the library
// repositories, for tests and local development.
package inmemdb

import (
	"sync"

	"github.com/mkadlec/libris/core/library"
)

type DB struct {
	mu sync.RWMutex

	members      map[string]*library.Member
	books        map[string]*library.Book
	loans        map[string]*library.Loan
	reservations map[string]*library.Reservation
	reviews      map[string]*library.Review
	requests     map[string]*library.Request

	staffEmail string
}

func NewDB() *DB {
	return &DB{
		members:      make(map[string]*library.Member),
		books:        make(map[string]*library.Book),
		loans:        make(map[string]*library.Loan),
		reservations: make(map[string]*library.Reservation),
		reviews:      make(map[string]*library.Review),
		requests:     make(map[string]*library.Request),
	}
}

func (db *DB) SetStaffEmail(email string) {
	db.mu.Lock()
	db.staffEmail = email
	db.mu.Unlock()
}

// DeleteMember removes a member, leaving loans and reservations pointing
// at it dangling (expansion then comes up empty, like the real store).
func (db *DB) DeleteMember(id string) {
	db.mu.Lock()
	delete(db.members, id)
	db.mu.Unlock()
}

func (db *DB) DeleteBook(id string) {
	db.mu.Lock()
	delete(db.books, id)
	db.mu.Unlock()
}
