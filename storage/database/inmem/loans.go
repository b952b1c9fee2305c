package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/mkadlec/libris/core/library"
)

type loanRepository struct {
	db *DB
}

var _ library.LoanRepository = (*loanRepository)(nil)

func NewLoanRepository(db *DB) *loanRepository {
	return &loanRepository{db: db}
}

func (repo *loanRepository) CreateLoan(ctx context.Context, ln library.Loan) (library.Loan, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if ln.ID == "" {
		ln.ID = uuid.NewString()
	}
	stored := ln
	stored.Member, stored.Book = nil, nil
	repo.db.loans[ln.ID] = &stored
	return ln, nil
}

func (repo *loanRepository) GetLoanByID(ctx context.Context, id string) (library.Loan, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	ln, ok := repo.db.loans[id]
	if !ok {
		return library.Loan{}, library.ErrLoanNotFound
	}
	return *ln, nil
}

func (repo *loanRepository) FilterLoans(ctx context.Context, f library.LoanFilter, limit, offset int) ([]library.Loan, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var matches []library.Loan
	for _, ln := range repo.db.loans {
		if !matchLoan(ln, f) {
			continue
		}
		matches = append(matches, *ln)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DueDate != matches[j].DueDate {
			return matches[i].DueDate < matches[j].DueDate
		}
		return matches[i].ID < matches[j].ID
	})
	return page(matches, limit, offset), nil
}

func matchLoan(ln *library.Loan, f library.LoanFilter) bool {
	if f.Returned != nil && ln.Returned != *f.Returned {
		return false
	}
	if !f.DueBefore.IsZero() && ln.DueDate >= f.DueBefore {
		return false
	}
	if !f.DueFrom.IsZero() && ln.DueDate < f.DueFrom {
		return false
	}
	if !f.DueTo.IsZero() && ln.DueDate > f.DueTo {
		return false
	}
	return true
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (repo *loanRepository) UpdateLoan(ctx context.Context, ln library.Loan) (library.Loan, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.loans[ln.ID]; !ok {
		return library.Loan{}, library.ErrLoanNotFound
	}
	stored := ln
	stored.Member, stored.Book = nil, nil
	repo.db.loans[ln.ID] = &stored
	return ln, nil
}

func (repo *loanRepository) ExpandLoan(ctx context.Context, ln *library.Loan) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if m, ok := repo.db.members[ln.MemberID]; ok {
		cp := *m
		ln.Member = &cp
	}
	if b, ok := repo.db.books[ln.BookID]; ok {
		cp := *b
		ln.Book = &cp
	}
	return nil
}
