// internal/reservations/store.go
package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrReservationNotFound is returned when no matching reservation exists.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrAlreadyReserved is returned when the user already holds an active
	// reservation for the book.
	ErrAlreadyReserved = errors.New("user already has an active reservation for this book")
	// ErrBookNotAvailable is returned when the book cannot be reserved.
	ErrBookNotAvailable = errors.New("book is not available for reservation")
	// ErrIllegalState is returned when the reservation's current status does
	// not permit the requested transition.
	ErrIllegalState = errors.New("operation not allowed in current reservation state")
)

// Store persists reservations. FindActiveByBook returns PENDING and READY
// reservations ordered by queue position.
type Store interface {
	Save(ctx context.Context, r *Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	FindByBook(ctx context.Context, bookID uuid.UUID) ([]*Reservation, error)
	FindActiveByBook(ctx context.Context, bookID uuid.UUID) ([]*Reservation, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Reservation, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Reservation, error)
	FindActiveByBookAndUser(ctx context.Context, bookID, userID uuid.UUID) (*Reservation, error)
	FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]*Reservation, error)
	CountActiveByBook(ctx context.Context, bookID uuid.UUID) (int, error)
}
