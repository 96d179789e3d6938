// internal/reservations/implementation.go
package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"libris/internal/availability"
)

// service implements the Service interface.
type service struct {
	store Store
	books availability.Store
	log   *zap.Logger
	now   func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a new reservation queue manager.
func NewService(store Store, books availability.Store, log *zap.Logger, opts ...Option) Service {
	s := &service{
		store: store,
		books: books,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReservation places the user at the tail of the book's hold queue. If
// the book is currently available the reservation starts READY and the book
// is flagged RESERVED.
func (s *service) CreateReservation(ctx context.Context, bookID, userID uuid.UUID) (*Reservation, error) {
	status, err := s.books.GetStatus(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book status: %w", err)
	}
	if status == availability.StatusLost {
		return nil, fmt.Errorf("%w: book is lost", ErrBookNotAvailable)
	}

	if _, err := s.store.FindActiveByBookAndUser(ctx, bookID, userID); err == nil {
		return nil, ErrAlreadyReserved
	} else if err != ErrReservationNotFound {
		return nil, fmt.Errorf("failed to check existing reservation: %w", err)
	}

	count, err := s.store.CountActiveByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active reservations: %w", err)
	}

	now := s.now()
	reservation := &Reservation{
		ID:            uuid.New(),
		BookID:        bookID,
		UserID:        userID,
		Status:        StatusPending,
		QueuePosition: count + 1,
		ReservedAt:    now,
		ExpiresAt:     now.Add(HoldWindow),
		UpdatedAt:     now,
	}

	if status == availability.StatusAvailable {
		reservation.Status = StatusReady
		if err := s.books.SetStatus(ctx, bookID, availability.StatusReserved); err != nil {
			return nil, fmt.Errorf("failed to set book status: %w", err)
		}
	}

	if err := s.store.Save(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	s.log.Info("reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("book_id", bookID.String()),
		zap.String("status", string(reservation.Status)),
		zap.Int("queue_position", reservation.QueuePosition),
	)
	return reservation, nil
}

// CancelReservation removes a reservation from the queue. Cancelling an
// already cancelled reservation is a no-op.
func (s *service) CancelReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error) {
	reservation, err := s.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status == StatusCancelled {
		return reservation, nil
	}
	return s.deactivate(ctx, reservation, StatusCancelled)
}

// ExpireReservation marks a reservation expired. Expiring an already expired
// reservation is a no-op.
func (s *service) ExpireReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error) {
	reservation, err := s.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status == StatusExpired {
		return reservation, nil
	}
	return s.deactivate(ctx, reservation, StatusExpired)
}

// deactivate moves an active reservation to a terminal state, hands the book
// onward if the reservation was READY, and renumbers the remaining queue.
func (s *service) deactivate(ctx context.Context, reservation *Reservation, target Status) (*Reservation, error) {
	if !reservation.Status.Active() {
		return nil, fmt.Errorf("%w: reservation is %s", ErrIllegalState, reservation.Status)
	}

	if reservation.Status == StatusReady {
		promoted, err := s.promoteNext(ctx, reservation.BookID, reservation.ID)
		if err != nil {
			return nil, err
		}
		if !promoted {
			if err := s.books.SetStatus(ctx, reservation.BookID, availability.StatusAvailable); err != nil {
				return nil, fmt.Errorf("failed to set book status: %w", err)
			}
		}
	}

	reservation.Status = target
	reservation.QueuePosition = 0
	reservation.UpdatedAt = s.now()
	if err := s.store.Save(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	if err := s.renumberQueue(ctx, reservation.BookID); err != nil {
		return nil, err
	}

	s.log.Info("reservation deactivated",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("book_id", reservation.BookID.String()),
		zap.String("status", string(target)),
	)
	return reservation, nil
}

// CompleteReservation converts the user's READY reservation into a pickup.
// Book status is left alone; the loan coordinator flips it to BORROWED.
func (s *service) CompleteReservation(ctx context.Context, bookID, userID uuid.UUID) (*Reservation, error) {
	reservation, err := s.store.FindActiveByBookAndUser(ctx, bookID, userID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != StatusReady {
		return nil, ErrReservationNotFound
	}

	reservation.Status = StatusCompleted
	reservation.QueuePosition = 0
	reservation.UpdatedAt = s.now()
	if err := s.store.Save(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	if err := s.renumberQueue(ctx, bookID); err != nil {
		return nil, err
	}

	s.log.Info("reservation completed",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("book_id", bookID.String()),
	)
	return reservation, nil
}

// ProcessReturnedBook promotes the head pending reservation after a loan
// closes. Returns false when the queue is empty, in which case the caller
// frees the book.
func (s *service) ProcessReturnedBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	return s.promoteNext(ctx, bookID, uuid.Nil)
}

// promoteNext moves the first PENDING reservation for the book to READY and
// flags the book RESERVED. skip is excluded from consideration so a
// reservation being deactivated never promotes itself.
func (s *service) promoteNext(ctx context.Context, bookID, skip uuid.UUID) (bool, error) {
	active, err := s.store.FindActiveByBook(ctx, bookID)
	if err != nil {
		return false, fmt.Errorf("failed to load active reservations: %w", err)
	}

	for _, r := range active {
		if r.ID == skip || r.Status != StatusPending {
			continue
		}
		r.Status = StatusReady
		r.UpdatedAt = s.now()
		if err := s.store.Save(ctx, r); err != nil {
			return false, fmt.Errorf("failed to save reservation: %w", err)
		}
		if err := s.books.SetStatus(ctx, bookID, availability.StatusReserved); err != nil {
			return false, fmt.Errorf("failed to set book status: %w", err)
		}
		s.log.Info("reservation promoted",
			zap.String("reservation_id", r.ID.String()),
			zap.String("book_id", bookID.String()),
		)
		return true, nil
	}
	return false, nil
}

// renumberQueue rewrites the active queue positions into a contiguous 1..N
// sequence, preserving relative order.
func (s *service) renumberQueue(ctx context.Context, bookID uuid.UUID) error {
	active, err := s.store.FindActiveByBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("failed to load active reservations: %w", err)
	}
	for i, r := range active {
		if r.QueuePosition == i+1 {
			continue
		}
		r.QueuePosition = i + 1
		r.UpdatedAt = s.now()
		if err := s.store.Save(ctx, r); err != nil {
			return fmt.Errorf("failed to save reservation: %w", err)
		}
	}
	return nil
}

func (s *service) GetReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error) {
	return s.store.FindByID(ctx, reservationID)
}

func (s *service) GetBookReservations(ctx context.Context, bookID uuid.UUID) ([]*Reservation, error) {
	return s.store.FindByBook(ctx, bookID)
}

func (s *service) GetActiveBookReservations(ctx context.Context, bookID uuid.UUID) ([]*Reservation, error) {
	return s.store.FindActiveByBook(ctx, bookID)
}

func (s *service) GetUserReservations(ctx context.Context, userID uuid.UUID) ([]*Reservation, error) {
	return s.store.FindByUser(ctx, userID)
}

func (s *service) GetActiveUserReservations(ctx context.Context, userID uuid.UUID) ([]*Reservation, error) {
	return s.store.FindActiveByUser(ctx, userID)
}

func (s *service) IsBookReservedForUser(ctx context.Context, bookID, userID uuid.UUID) (bool, error) {
	_, err := s.store.FindActiveByBookAndUser(ctx, bookID, userID)
	if err == ErrReservationNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check reservation: %w", err)
	}
	return true, nil
}

func (s *service) CountActiveReservations(ctx context.Context, bookID uuid.UUID) (int, error) {
	return s.store.CountActiveByBook(ctx, bookID)
}

func (s *service) ExpiredReservations(ctx context.Context, asOf time.Time) ([]*Reservation, error) {
	return s.store.FindActiveExpiredBefore(ctx, asOf)
}
