package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/core/library"
)

// fakeStore pages over a fixed loan slice and resolves relations from
// maps, recording every call for assertions.
type fakeStore struct {
	loans        []library.Loan
	members      map[string]library.Member
	books        map[string]library.Book
	reservations map[string]*library.Reservation
	staffEmail   string

	fetchErr     error
	expandErr    error
	notifiedErr  error
	staffErr     error

	fetches    int
	lastFilter library.LoanFilter
}

func (s *fakeStore) FilterLoans(_ context.Context, f library.LoanFilter, limit, offset int) ([]library.Loan, error) {
	s.fetches++
	s.lastFilter = f
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if offset >= len(s.loans) {
		return nil, nil
	}
	page := s.loans[offset:]
	if len(page) > limit {
		page = page[:limit]
	}
	return page, nil
}

func (s *fakeStore) ExpandLoan(_ context.Context, ln *library.Loan) error {
	if s.expandErr != nil {
		return s.expandErr
	}
	if m, ok := s.members[ln.MemberID]; ok {
		ln.Member = &m
	}
	if b, ok := s.books[ln.BookID]; ok {
		ln.Book = &b
	}
	return nil
}

func (s *fakeStore) ExpandReservation(_ context.Context, res *library.Reservation) error {
	if s.expandErr != nil {
		return s.expandErr
	}
	if m, ok := s.members[res.MemberID]; ok {
		res.Member = &m
	}
	if b, ok := s.books[res.BookID]; ok {
		res.Book = &b
	}
	return nil
}

func (s *fakeStore) SetReservationNotified(_ context.Context, id string, notified bool) error {
	if s.notifiedErr != nil {
		return s.notifiedErr
	}
	res, ok := s.reservations[id]
	if !ok {
		return library.ErrReservationNotFound
	}
	res.Notified = notified
	return nil
}

func (s *fakeStore) StaffEmail(_ context.Context) (string, error) {
	if s.staffErr != nil {
		return "", s.staffErr
	}
	if s.staffEmail == "" {
		return "", library.ErrNoStaffEmail
	}
	return s.staffEmail, nil
}

// mailRecorder records dispatched messages; sends to addresses in
// failFor fail instead.
type mailRecorder struct {
	sent    []core.EmailMessage
	failFor map[string]error
}

func (m *mailRecorder) SendMessage(_ context.Context, msg *core.EmailMessage) error {
	for _, to := range msg.To {
		if err, ok := m.failFor[to.Address]; ok {
			return err
		}
	}
	m.sent = append(m.sent, *msg)
	return nil
}

func (m *mailRecorder) sentTo(addr string) bool {
	for _, msg := range m.sent {
		for _, to := range msg.To {
			if to.Address == addr {
				return true
			}
		}
	}
	return false
}

// logRecorder captures log lines per level.
type logRecorder struct {
	mu    sync.Mutex
	infos []string
	errs  []string
}

func (l *logRecorder) Debug(msg string, args ...interface{}) {}
func (l *logRecorder) Warn(msg string, args ...interface{})  {}

func (l *logRecorder) Info(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *logRecorder) Error(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

func (l *logRecorder) Fatal(msg string, args ...interface{}) {
	l.Error(msg, args...)
}

func (l *logRecorder) hasInfo(substr string) bool  { return containsSubstr(l.infos, substr) }
func (l *logRecorder) hasError(substr string) bool { return containsSubstr(l.errs, substr) }

func containsSubstr(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func testConf(pageSize int) *core.Config {
	return &core.Config{
		AppName: "Libris",
		Notify:  core.NotifyConfig{PageSize: pageSize, UpcomingDueDays: 3},
	}
}

func newTestService(store *fakeStore, pageSize int) (*Service, *mailRecorder, *logRecorder) {
	mailer := &mailRecorder{}
	logger := &logRecorder{}
	return NewService(store, mailer, logger, testConf(pageSize)), mailer, logger
}

func setNow(t *testing.T, now time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = time.Now })
}

func testMember(id, name, email string) library.Member {
	return library.Member{ID: id, Name: name, Email: email}
}

func testBook(id, title string) library.Book {
	return library.Book{ID: id, Title: title, Author: "A. Author"}
}

func Test_scanLoans_pagination(t *testing.T) {
	member := testMember("m1", "Jana", "jana@test.cz")
	book := testBook("b1", "Babička")
	due := library.NewDate(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))

	makeLoans := func(n int) []library.Loan {
		loans := make([]library.Loan, 0, n)
		for i := 0; i < n; i++ {
			loans = append(loans, library.Loan{
				ID: "l" + string(rune('a'+i)), MemberID: "m1", BookID: "b1", DueDate: due,
			})
		}
		return loans
	}

	tests := []struct {
		name        string
		loans       int
		pageSize    int
		wantFetches int
		wantSent    int
		wantNoMatch bool
	}{
		{name: "no matches", loans: 0, pageSize: 2, wantFetches: 1, wantSent: 0, wantNoMatch: true},
		{name: "single short page", loans: 1, pageSize: 2, wantFetches: 1, wantSent: 1},
		{name: "short last page", loans: 3, pageSize: 2, wantFetches: 2, wantSent: 3},
		{name: "exact multiple ends on empty page", loans: 4, pageSize: 2, wantFetches: 3, wantSent: 4, wantNoMatch: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setNow(t, time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC))

			store := &fakeStore{
				loans:   makeLoans(tt.loans),
				members: map[string]library.Member{"m1": member},
				books:   map[string]library.Book{"b1": book},
			}
			svc, mailer, logger := newTestService(store, tt.pageSize)

			if err := svc.CheckOverdueLoans(context.Background()); err != nil {
				t.Fatalf("CheckOverdueLoans() failed: %v", err)
			}
			if store.fetches != tt.wantFetches {
				t.Errorf("fetches = %d, want %d", store.fetches, tt.wantFetches)
			}
			if len(mailer.sent) != tt.wantSent {
				t.Errorf("sent = %d, want %d", len(mailer.sent), tt.wantSent)
			}
			if got := logger.hasInfo("no unreturned loans past due"); got != tt.wantNoMatch {
				t.Errorf("no-match log = %t, want %t", got, tt.wantNoMatch)
			}
		})
	}
}

func Test_scanLoans_fetchErrorAborts(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("connection refused")}
	svc, mailer, _ := newTestService(store, 2)

	err := svc.CheckOverdueLoans(context.Background())
	if err == nil {
		t.Fatal("CheckOverdueLoans() expected error")
	}
	if !strings.Contains(err.Error(), "fetching loans page") {
		t.Errorf("error = %v, want page-fetch wrap", err)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(mailer.sent))
	}
}
