// internal/reservations/service.go
package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service owns the per-book hold queue: it creates, cancels, completes and
// expires reservations and keeps queue positions contiguous.
type Service interface {
	CreateReservation(ctx context.Context, bookID, userID uuid.UUID) (*Reservation, error)
	CancelReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error)
	CompleteReservation(ctx context.Context, bookID, userID uuid.UUID) (*Reservation, error)
	ExpireReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error)

	// ProcessReturnedBook promotes the head pending reservation when a loan
	// closes. It reports whether the book was handed to a reservation.
	ProcessReturnedBook(ctx context.Context, bookID uuid.UUID) (bool, error)

	GetReservation(ctx context.Context, reservationID uuid.UUID) (*Reservation, error)
	GetBookReservations(ctx context.Context, bookID uuid.UUID) ([]*Reservation, error)
	GetActiveBookReservations(ctx context.Context, bookID uuid.UUID) ([]*Reservation, error)
	GetUserReservations(ctx context.Context, userID uuid.UUID) ([]*Reservation, error)
	GetActiveUserReservations(ctx context.Context, userID uuid.UUID) ([]*Reservation, error)
	IsBookReservedForUser(ctx context.Context, bookID, userID uuid.UUID) (bool, error)
	CountActiveReservations(ctx context.Context, bookID uuid.UUID) (int, error)
	ExpiredReservations(ctx context.Context, asOf time.Time) ([]*Reservation, error)
}
