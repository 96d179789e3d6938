// internal/loans/store.go
package loans

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrLoanNotFound is returned when no loan matches the given id.
	ErrLoanNotFound = errors.New("loan not found")
	// ErrNotAuthorized is returned when the acting user lacks the
	// librarian or admin role.
	ErrNotAuthorized = errors.New("librarian or admin role required")
	// ErrBookNotAvailable is returned when the book cannot be borrowed in
	// its current status.
	ErrBookNotAvailable = errors.New("book is not available for borrowing")
	// ErrIllegalState is returned when the loan's current status does not
	// permit the requested transition.
	ErrIllegalState = errors.New("operation not allowed in current loan state")
)

// Store persists loans.
type Store interface {
	Save(ctx context.Context, loan *Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	FindOpen(ctx context.Context) ([]*Loan, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Loan, error)
	FindOpenByUser(ctx context.Context, userID uuid.UUID) ([]*Loan, error)
	FindOpenDueBefore(ctx context.Context, cutoff time.Time) ([]*Loan, error)
}

// RoleChecker is the membership collaborator guarding loan mutations.
type RoleChecker interface {
	IsLibrarianOrAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}
