// internal/circulation/service.go
package circulation

import (
	"context"

	"github.com/google/uuid"

	"libris/internal/loans"
	"libris/internal/reservations"
)

// Service is the entry point used by the API layer. Every operation runs as
// one atomic unit against the book, loan and reservation state for its book.
type Service interface {
	BorrowBook(ctx context.Context, bookID, userID, librarianID uuid.UUID, notes string) (*loans.Loan, error)
	ReturnBook(ctx context.Context, loanID, librarianID uuid.UUID) (*loans.Loan, error)
	ExtendLoan(ctx context.Context, loanID, librarianID uuid.UUID) (*loans.Loan, error)
	MarkBookAsLost(ctx context.Context, loanID uuid.UUID, notes string, librarianID uuid.UUID) (*loans.Loan, error)

	CreateReservation(ctx context.Context, bookID, userID uuid.UUID) (*reservations.Reservation, error)
	CancelReservation(ctx context.Context, reservationID uuid.UUID) (*reservations.Reservation, error)
	CompleteReservation(ctx context.Context, bookID, userID uuid.UUID) (*reservations.Reservation, error)
	ExpireReservation(ctx context.Context, reservationID uuid.UUID) (*reservations.Reservation, error)

	GetAllActiveLoans(ctx context.Context) ([]*loans.Loan, error)
	GetUserLoans(ctx context.Context, userID uuid.UUID) ([]*loans.Loan, error)
	GetActiveUserLoans(ctx context.Context, userID uuid.UUID) ([]*loans.Loan, error)
	GetBookReservations(ctx context.Context, bookID uuid.UUID) ([]*reservations.Reservation, error)
	GetActiveBookReservations(ctx context.Context, bookID uuid.UUID) ([]*reservations.Reservation, error)
	GetUserReservations(ctx context.Context, userID uuid.UUID) ([]*reservations.Reservation, error)
}
