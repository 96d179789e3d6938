// internal/reservations/implementation_test.go
package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libris/internal/availability"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    Service
	store  *MemoryStore
	books  *availability.MemoryStore
	bookID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	books := availability.NewMemoryStore()
	bookID := uuid.New()
	require.NoError(t, books.AddBook(context.Background(), &availability.Book{
		ID:    bookID,
		Title: "The Master and Margarita",
	}))

	store := NewMemoryStore()
	svc := NewService(store, books, zap.NewNop(), WithClock(func() time.Time { return testNow }))
	return &fixture{svc: svc, store: store, books: books, bookID: bookID}
}

func (f *fixture) bookStatus(t *testing.T) availability.Status {
	t.Helper()
	status, err := f.books.GetStatus(context.Background(), f.bookID)
	require.NoError(t, err)
	return status
}

func TestCreateReservationOnAvailableBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, StatusReady, r.Status)
	assert.Equal(t, 1, r.QueuePosition)
	assert.Equal(t, testNow, r.ReservedAt)
	assert.Equal(t, testNow.Add(HoldWindow), r.ExpiresAt)
	assert.Equal(t, availability.StatusReserved, f.bookStatus(t))
}

func TestCreateReservationQueuesBehindHead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	r2, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, r2.Status)
	assert.Equal(t, 2, r2.QueuePosition)
}

func TestCreateReservationDuplicateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.CreateReservation(ctx, f.bookID, userID)
	require.NoError(t, err)

	_, err = f.svc.CreateReservation(ctx, f.bookID, userID)
	assert.ErrorIs(t, err, ErrAlreadyReserved)
}

func TestCreateReservationLostBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.books.SetStatus(ctx, f.bookID, availability.StatusLost))

	_, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	assert.ErrorIs(t, err, ErrBookNotAvailable)
}

func TestCreateReservationUnknownBook(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateReservation(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, availability.ErrBookNotFound)
}

func TestCancelReadyPromotesNextPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)
	r2, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	cancelled, err := f.svc.CancelReservation(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	promoted, err := f.svc.GetReservation(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, promoted.Status)
	assert.Equal(t, 1, promoted.QueuePosition)
	assert.Equal(t, availability.StatusReserved, f.bookStatus(t))
}

func TestCancelLastReservationFreesBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.CancelReservation(ctx, r.ID)
	require.NoError(t, err)

	assert.Equal(t, availability.StatusAvailable, f.bookStatus(t))
	active, err := f.svc.GetActiveBookReservations(ctx, f.bookID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCancelPendingShiftsQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)
	r2, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)
	r3, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.CancelReservation(ctx, r2.ID)
	require.NoError(t, err)

	head, err := f.svc.GetReservation(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, head.Status)
	assert.Equal(t, 1, head.QueuePosition)

	tail, err := f.svc.GetReservation(ctx, r3.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tail.Status)
	assert.Equal(t, 2, tail.QueuePosition)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.CancelReservation(ctx, r.ID)
	require.NoError(t, err)

	again, err := f.svc.CancelReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
}

func TestCancelCompletedFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	r, err := f.svc.CreateReservation(ctx, f.bookID, userID)
	require.NoError(t, err)
	_, err = f.svc.CompleteReservation(ctx, f.bookID, userID)
	require.NoError(t, err)

	_, err = f.svc.CancelReservation(ctx, r.ID)
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestCancelUnknownReservation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CancelReservation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestExpireReadyPromotesNextPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r1, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)
	r2, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	expired, err := f.svc.ExpireReservation(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, expired.Status)

	promoted, err := f.svc.GetReservation(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, promoted.Status)
	assert.Equal(t, 1, promoted.QueuePosition)

	// expiring again is a no-op
	again, err := f.svc.ExpireReservation(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, again.Status)
}

func TestCompleteReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.CreateReservation(ctx, f.bookID, userID)
	require.NoError(t, err)
	r2, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	completed, err := f.svc.CompleteReservation(ctx, f.bookID, userID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)

	// book status is the loan coordinator's concern
	assert.Equal(t, availability.StatusReserved, f.bookStatus(t))

	shifted, err := f.svc.GetReservation(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, shifted.QueuePosition)
	assert.Equal(t, StatusPending, shifted.Status)
}

func TestCompleteReservationRequiresReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pendingUser := uuid.New()

	_, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)
	_, err = f.svc.CreateReservation(ctx, f.bookID, pendingUser)
	require.NoError(t, err)

	_, err = f.svc.CompleteReservation(ctx, f.bookID, pendingUser)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = f.svc.CompleteReservation(ctx, f.bookID, uuid.New())
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestProcessReturnedBookPromotesHead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.books.SetStatus(ctx, f.bookID, availability.StatusBorrowed))

	r1, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r1.Status)

	handedOff, err := f.svc.ProcessReturnedBook(ctx, f.bookID)
	require.NoError(t, err)
	assert.True(t, handedOff)

	promoted, err := f.svc.GetReservation(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, promoted.Status)
	assert.Equal(t, availability.StatusReserved, f.bookStatus(t))
}

func TestProcessReturnedBookEmptyQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.books.SetStatus(ctx, f.bookID, availability.StatusBorrowed))

	handedOff, err := f.svc.ProcessReturnedBook(ctx, f.bookID)
	require.NoError(t, err)
	assert.False(t, handedOff)
}

func TestIsBookReservedForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	reserved, err := f.svc.IsBookReservedForUser(ctx, f.bookID, userID)
	require.NoError(t, err)
	assert.False(t, reserved)

	_, err = f.svc.CreateReservation(ctx, f.bookID, userID)
	require.NoError(t, err)

	reserved, err = f.svc.IsBookReservedForUser(ctx, f.bookID, userID)
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestExpiredReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateReservation(ctx, f.bookID, uuid.New())
	require.NoError(t, err)

	stale, err := f.svc.ExpiredReservations(ctx, testNow.Add(HoldWindow+time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, r.ID, stale[0].ID)

	fresh, err := f.svc.ExpiredReservations(ctx, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, fresh)
}
