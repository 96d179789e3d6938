// internal/reservations/domain.go
package reservations

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReady     Status = "READY"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
)

// Active reports whether the reservation still occupies a queue slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusReady
}

// HoldWindow is how long a reservation is held before it expires.
const HoldWindow = 30 * 24 * time.Hour

// Reservation is one user's place in a book's hold queue. QueuePosition is
// 1-based and only meaningful while the reservation is active.
type Reservation struct {
	ID            uuid.UUID `json:"id"`
	BookID        uuid.UUID `json:"book_id"`
	UserID        uuid.UUID `json:"user_id"`
	Status        Status    `json:"status"`
	QueuePosition int       `json:"queue_position,omitempty"`
	ReservedAt    time.Time `json:"reserved_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
