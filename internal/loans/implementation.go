// internal/loans/implementation.go
package loans

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"libris/internal/availability"
	"libris/internal/reservations"
)

// service implements the Service interface.
type service struct {
	store        Store
	books        availability.Store
	reservations reservations.Service
	roles        RoleChecker
	log          *zap.Logger
	now          func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a new loan coordinator.
func NewService(store Store, books availability.Store, res reservations.Service, roles RoleChecker, log *zap.Logger, opts ...Option) Service {
	s := &service{
		store:        store,
		books:        books,
		reservations: res,
		roles:        roles,
		log:          log,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) gate(ctx context.Context, librarianID uuid.UUID) error {
	ok, err := s.roles.IsLibrarianOrAdmin(ctx, librarianID)
	if err != nil {
		return fmt.Errorf("failed to check librarian role: %w", err)
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// BorrowBook checks a book out to a user. A RESERVED book may only go to the
// user whose reservation is active; their reservation is completed as part of
// the borrow.
func (s *service) BorrowBook(ctx context.Context, bookID, userID, librarianID uuid.UUID, notes string) (*Loan, error) {
	if err := s.gate(ctx, librarianID); err != nil {
		return nil, err
	}

	status, err := s.books.GetStatus(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get book status: %w", err)
	}

	switch status {
	case availability.StatusAvailable:
		// free to borrow
	case availability.StatusReserved:
		reserved, err := s.reservations.IsBookReservedForUser(ctx, bookID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check reservation: %w", err)
		}
		if !reserved {
			return nil, fmt.Errorf("%w: reserved for another user", ErrBookNotAvailable)
		}
		if _, err := s.reservations.CompleteReservation(ctx, bookID, userID); err != nil {
			return nil, fmt.Errorf("failed to complete reservation: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: book is %s", ErrBookNotAvailable, status)
	}

	now := s.now()
	loan := &Loan{
		ID:                 uuid.New(),
		BookID:             bookID,
		UserID:             userID,
		Status:             StatusActive,
		LendingLibrarianID: librarianID,
		Notes:              notes,
		BorrowedAt:         now,
		DueDate:            now.Add(LoanPeriod),
	}

	if err := s.store.Save(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	if err := s.books.SetStatus(ctx, bookID, availability.StatusBorrowed); err != nil {
		return nil, fmt.Errorf("failed to set book status: %w", err)
	}

	s.log.Info("book borrowed",
		zap.String("loan_id", loan.ID.String()),
		zap.String("book_id", bookID.String()),
		zap.String("user_id", userID.String()),
		zap.Time("due_date", loan.DueDate),
	)
	return loan, nil
}

// ReturnBook closes a loan and hands the book to the next reservation in the
// queue, or frees it when the queue is empty. Returning an already returned
// loan is a no-op.
func (s *service) ReturnBook(ctx context.Context, loanID, librarianID uuid.UUID) (*Loan, error) {
	if err := s.gate(ctx, librarianID); err != nil {
		return nil, err
	}

	loan, err := s.store.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status == StatusReturned {
		return loan, nil
	}
	if !loan.Status.Open() {
		return nil, fmt.Errorf("%w: loan is %s", ErrIllegalState, loan.Status)
	}

	loan.Status = StatusReturned
	loan.ReturnedAt = s.now()
	loan.ReturningLibrarianID = librarianID
	if err := s.store.Save(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	handedOff, err := s.reservations.ProcessReturnedBook(ctx, loan.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to process returned book: %w", err)
	}
	if !handedOff {
		if err := s.books.SetStatus(ctx, loan.BookID, availability.StatusAvailable); err != nil {
			return nil, fmt.Errorf("failed to set book status: %w", err)
		}
	}

	s.log.Info("book returned",
		zap.String("loan_id", loan.ID.String()),
		zap.String("book_id", loan.BookID.String()),
		zap.Bool("handed_to_reservation", handedOff),
	)
	return loan, nil
}

// ExtendLoan pushes the due date forward and reopens an overdue loan when the
// new due date lands in the future.
func (s *service) ExtendLoan(ctx context.Context, loanID, librarianID uuid.UUID) (*Loan, error) {
	if err := s.gate(ctx, librarianID); err != nil {
		return nil, err
	}

	loan, err := s.store.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.Open() {
		return nil, fmt.Errorf("%w: loan is %s", ErrIllegalState, loan.Status)
	}

	loan.DueDate = loan.DueDate.Add(ExtensionPeriod)
	loan.ExtendedCount++
	if loan.Status == StatusOverdue && loan.DueDate.After(s.now()) {
		loan.Status = StatusActive
	}
	if err := s.store.Save(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	s.log.Info("loan extended",
		zap.String("loan_id", loan.ID.String()),
		zap.Time("due_date", loan.DueDate),
		zap.Int("extended_count", loan.ExtendedCount),
	)
	return loan, nil
}

// MarkBookAsLost closes the loan as LOST and retires the book copy.
func (s *service) MarkBookAsLost(ctx context.Context, loanID uuid.UUID, notes string, librarianID uuid.UUID) (*Loan, error) {
	if err := s.gate(ctx, librarianID); err != nil {
		return nil, err
	}

	loan, err := s.store.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Status.Open() {
		return nil, fmt.Errorf("%w: loan is %s", ErrIllegalState, loan.Status)
	}

	loan.Status = StatusLost
	if notes != "" {
		loan.Notes = notes
	}
	if err := s.store.Save(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	if err := s.books.SetStatus(ctx, loan.BookID, availability.StatusLost); err != nil {
		return nil, fmt.Errorf("failed to set book status: %w", err)
	}

	s.log.Warn("book marked as lost",
		zap.String("loan_id", loan.ID.String()),
		zap.String("book_id", loan.BookID.String()),
	)
	return loan, nil
}

func (s *service) GetLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	return s.store.FindByID(ctx, loanID)
}

func (s *service) GetAllActiveLoans(ctx context.Context) ([]*Loan, error) {
	return s.store.FindOpen(ctx)
}

func (s *service) GetUserLoans(ctx context.Context, userID uuid.UUID) ([]*Loan, error) {
	return s.store.FindByUser(ctx, userID)
}

func (s *service) GetActiveUserLoans(ctx context.Context, userID uuid.UUID) ([]*Loan, error) {
	return s.store.FindOpenByUser(ctx, userID)
}

func (s *service) MarkOverdueLoans(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.store.FindOpenDueBefore(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to load due loans: %w", err)
	}

	flipped := 0
	for _, loan := range due {
		if loan.Status != StatusActive {
			continue
		}
		loan.Status = StatusOverdue
		if err := s.store.Save(ctx, loan); err != nil {
			return flipped, fmt.Errorf("failed to save loan: %w", err)
		}
		flipped++
	}
	if flipped > 0 {
		s.log.Info("loans marked overdue", zap.Int("count", flipped))
	}
	return flipped, nil
}
