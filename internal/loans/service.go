// internal/loans/service.go
package loans

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service creates and closes loans, respecting reservation priority when a
// book changes hands.
type Service interface {
	BorrowBook(ctx context.Context, bookID, userID, librarianID uuid.UUID, notes string) (*Loan, error)
	ReturnBook(ctx context.Context, loanID, librarianID uuid.UUID) (*Loan, error)
	ExtendLoan(ctx context.Context, loanID, librarianID uuid.UUID) (*Loan, error)
	MarkBookAsLost(ctx context.Context, loanID uuid.UUID, notes string, librarianID uuid.UUID) (*Loan, error)

	GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error)
	GetAllActiveLoans(ctx context.Context) ([]*Loan, error)
	GetUserLoans(ctx context.Context, userID uuid.UUID) ([]*Loan, error)
	GetActiveUserLoans(ctx context.Context, userID uuid.UUID) ([]*Loan, error)

	// MarkOverdueLoans flips open loans past their due date to OVERDUE and
	// returns how many were flipped.
	MarkOverdueLoans(ctx context.Context, asOf time.Time) (int, error)
}
