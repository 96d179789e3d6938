// internal/circulation/implementation_test.go
package circulation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libris/internal/availability"
	"libris/internal/loans"
	"libris/internal/reservations"
	"libris/internal/users"
)

type fixture struct {
	svc       Service
	res       reservations.Service
	loans     loans.Service
	books     *availability.MemoryStore
	bookID    uuid.UUID
	librarian uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	books := availability.NewMemoryStore()
	bookID := uuid.New()
	require.NoError(t, books.AddBook(ctx, &availability.Book{ID: bookID, Title: "War and Peace"}))

	userStore := users.NewMemoryStore()
	userSvc := users.NewService(userStore, log)
	librarian, err := userSvc.Register(ctx, "desk@example.com", "Desk Librarian", "SecurePass123!", users.RoleLibrarian)
	require.NoError(t, err)

	resSvc := reservations.NewService(reservations.NewMemoryStore(), books, log)
	loanSvc := loans.NewService(loans.NewMemoryStore(), books, resSvc, userSvc, log)
	svc := NewService(loanSvc, resSvc, log)

	return &fixture{svc: svc, res: resSvc, loans: loanSvc, books: books, bookID: bookID, librarian: librarian.ID}
}

func (f *fixture) bookStatus(t *testing.T) availability.Status {
	t.Helper()
	status, err := f.books.GetStatus(context.Background(), f.bookID)
	require.NoError(t, err)
	return status
}

// Two users queue for the same book; the head borrows, and returning the loan
// hands the book to the second reservation.
func TestReservationHandoff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := uuid.New(), uuid.New()

	r1, err := f.svc.CreateReservation(ctx, f.bookID, u1)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusReady, r1.Status)
	assert.Equal(t, 1, r1.QueuePosition)
	assert.Equal(t, availability.StatusReserved, f.bookStatus(t))

	r2, err := f.svc.CreateReservation(ctx, f.bookID, u2)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusPending, r2.Status)
	assert.Equal(t, 2, r2.QueuePosition)

	loan, err := f.svc.BorrowBook(ctx, f.bookID, u1, f.librarian, "")
	require.NoError(t, err)
	assert.Equal(t, loans.StatusActive, loan.Status)
	assert.Equal(t, availability.StatusBorrowed, f.bookStatus(t))

	completed, err := f.res.GetReservation(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusCompleted, completed.Status)

	_, err = f.svc.ReturnBook(ctx, loan.ID, f.librarian)
	require.NoError(t, err)

	promoted, err := f.res.GetReservation(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusReady, promoted.Status)
	assert.Equal(t, 1, promoted.QueuePosition)
	assert.Equal(t, availability.StatusReserved, f.bookStatus(t))
}

func TestReserveCancelRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, availability.StatusReserved, f.bookStatus(t))

	_, err = f.svc.CancelReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, availability.StatusAvailable, f.bookStatus(t))

	active, err := f.svc.GetActiveBookReservations(ctx, f.bookID)
	require.NoError(t, err)
	assert.Empty(t, active)

	again, err := f.svc.CancelReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusCancelled, again.Status)
}

func TestExpireReservationThroughFacade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	expired, err := f.svc.ExpireReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusExpired, expired.Status)
	assert.Equal(t, availability.StatusAvailable, f.bookStatus(t))
}

func TestUnknownIDsSurfaceNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ReturnBook(ctx, uuid.New(), f.librarian)
	assert.ErrorIs(t, err, loans.ErrLoanNotFound)

	_, err = f.svc.CancelReservation(ctx, uuid.New())
	assert.ErrorIs(t, err, reservations.ErrReservationNotFound)
}

// Concurrent borrow attempts on the same book must produce exactly one loan.
func TestConcurrentBorrowSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.BorrowBook(ctx, f.bookID, uuid.New(), f.librarian, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, loans.ErrBookNotAvailable)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, availability.StatusBorrowed, f.bookStatus(t))

	open, err := f.loans.GetAllActiveLoans(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

// Concurrent reservations from distinct users must all land on distinct,
// contiguous queue positions.
func TestConcurrentReservationsKeepQueueContiguous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 12
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	active, err := f.svc.GetActiveBookReservations(ctx, f.bookID)
	require.NoError(t, err)
	require.Len(t, active, attempts)
	for i, r := range active {
		assert.Equal(t, i+1, r.QueuePosition)
	}
	assert.Equal(t, reservations.StatusReady, active[0].Status)
}

func TestSweeperExpiresStaleReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := zap.NewNop()

	// build a reservation service whose clock sits past the hold window
	past := time.Now().Add(-reservations.HoldWindow - time.Hour)
	resStore := reservations.NewMemoryStore()
	resSvc := reservations.NewService(resStore, f.books, log, reservations.WithClock(func() time.Time { return past }))
	loanSvc := f.loans
	svc := NewService(loanSvc, resSvc, log)

	r, err := svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	sweeper := NewSweeper(svc, resSvc, loanSvc, time.Minute, log)
	sweeper.Sweep(ctx)

	expired, err := resSvc.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusExpired, expired.Status)
	assert.Equal(t, availability.StatusAvailable, f.bookStatus(t))
}
