// internal/availability/domain.go
package availability

import (
	"time"

	"github.com/google/uuid"
)

// Status is the circulation status of a book copy.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusBorrowed  Status = "BORROWED"
	StatusReserved  Status = "RESERVED"
	StatusLost      Status = "LOST"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusReserved, StatusLost:
		return true
	}
	return false
}

// Book represents a single circulating copy.
type Book struct {
	ID        uuid.UUID `json:"id"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
