// internal/loans/domain.go
package loans

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a loan.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusOverdue  Status = "OVERDUE"
	StatusReturned Status = "RETURNED"
	StatusLost     Status = "LOST"
)

// Open reports whether the loan still holds the book.
func (s Status) Open() bool {
	return s == StatusActive || s == StatusOverdue
}

const (
	// LoanPeriod is the initial lending window.
	LoanPeriod = 7 * 24 * time.Hour
	// ExtensionPeriod is added to the due date per extension.
	ExtensionPeriod = 30 * 24 * time.Hour
)

// Loan represents a book checked out to a user by a librarian.
type Loan struct {
	ID                   uuid.UUID `json:"id"`
	BookID               uuid.UUID `json:"book_id"`
	UserID               uuid.UUID `json:"user_id"`
	Status               Status    `json:"status"`
	LendingLibrarianID   uuid.UUID `json:"lending_librarian_id"`
	ReturningLibrarianID uuid.UUID `json:"returning_librarian_id,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	BorrowedAt           time.Time `json:"borrowed_at"`
	DueDate              time.Time `json:"due_date"`
	ReturnedAt           time.Time `json:"returned_at,omitempty"`
	ExtendedCount        int       `json:"extended_count"`
}
