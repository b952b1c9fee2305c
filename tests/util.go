package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/mkadlec/libris/core/library"
)

func CreateMember(t *testing.T, repo library.CatalogRepository, name, email string) library.Member {
	t.Helper()

	now := time.Now().UTC()
	m, err := repo.CreateMember(context.Background(), library.Member{
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	return m
}

func CreateBook(t *testing.T, repo library.CatalogRepository, title, author string) library.Book {
	t.Helper()

	now := time.Now().UTC()
	b, err := repo.CreateBook(context.Background(), library.Book{
		Title:     title,
		Author:    author,
		Copies:    1,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateBook() failed: %v", err)
	}
	return b
}

func CreateLoan(
	t *testing.T,
	repo library.LoanRepository,
	memberID, bookID string,
	due library.Date,
	returned bool,
) library.Loan {
	t.Helper()

	now := time.Now().UTC()
	ln, err := repo.CreateLoan(context.Background(), library.Loan{
		MemberID:  memberID,
		BookID:    bookID,
		FromDate:  library.NewDate(now),
		DueDate:   due,
		Returned:  returned,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateLoan() failed: %v", err)
	}
	return ln
}

func CreateReservation(
	t *testing.T,
	repo library.ReservationRepository,
	memberID, bookID string,
	active, ready, notified bool,
) library.Reservation {
	t.Helper()

	now := time.Now().UTC()
	res, err := repo.CreateReservation(context.Background(), library.Reservation{
		MemberID:  memberID,
		BookID:    bookID,
		Active:    active,
		Ready:     ready,
		Notified:  notified,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateReservation() failed: %v", err)
	}
	return res
}
