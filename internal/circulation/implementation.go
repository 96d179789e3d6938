// internal/circulation/implementation.go
package circulation

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"libris/internal/loans"
	"libris/internal/reservations"
)

// service implements the Service interface. It owns no business rules of its
// own: it serializes same-book operations and delegates to the loan
// coordinator and the reservation queue manager.
type service struct {
	loans        loans.Service
	reservations reservations.Service
	locks        *bookLocks
	tracer       trace.Tracer
	log          *zap.Logger
}

// NewService creates the circulation facade.
func NewService(loanSvc loans.Service, resSvc reservations.Service, log *zap.Logger) Service {
	return &service{
		loans:        loanSvc,
		reservations: resSvc,
		locks:        newBookLocks(),
		tracer:       otel.Tracer("libris/circulation"),
		log:          log,
	}
}

func (s *service) span(ctx context.Context, name string, bookID uuid.UUID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name,
		trace.WithAttributes(attribute.String("book.id", bookID.String())),
	)
}

func (s *service) BorrowBook(ctx context.Context, bookID, userID, librarianID uuid.UUID, notes string) (*loans.Loan, error) {
	ctx, span := s.span(ctx, "circulation.borrow", bookID)
	defer span.End()

	lock := s.locks.get(bookID)
	lock.Lock()
	defer lock.Unlock()

	return s.loans.BorrowBook(ctx, bookID, userID, librarianID, notes)
}

func (s *service) ReturnBook(ctx context.Context, loanID, librarianID uuid.UUID) (*loans.Loan, error) {
	loan, err := s.loans.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	ctx, span := s.span(ctx, "circulation.return", loan.BookID)
	defer span.End()

	lock := s.locks.get(loan.BookID)
	lock.Lock()
	defer lock.Unlock()

	return s.loans.ReturnBook(ctx, loanID, librarianID)
}

func (s *service) ExtendLoan(ctx context.Context, loanID, librarianID uuid.UUID) (*loans.Loan, error) {
	loan, err := s.loans.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	ctx, span := s.span(ctx, "circulation.extend", loan.BookID)
	defer span.End()

	lock := s.locks.get(loan.BookID)
	lock.Lock()
	defer lock.Unlock()

	return s.loans.ExtendLoan(ctx, loanID, librarianID)
}

func (s *service) MarkBookAsLost(ctx context.Context, loanID uuid.UUID, notes string, librarianID uuid.UUID) (*loans.Loan, error) {
	loan, err := s.loans.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	ctx, span := s.span(ctx, "circulation.mark_lost", loan.BookID)
	defer span.End()

	lock := s.locks.get(loan.BookID)
	lock.Lock()
	defer lock.Unlock()

	return s.loans.MarkBookAsLost(ctx, loanID, notes, librarianID)
}

func (s *service) CreateReservation(ctx context.Context, bookID, userID uuid.UUID) (*reservations.Reservation, error) {
	ctx, span := s.span(ctx, "circulation.reserve", bookID)
	defer span.End()

	lock := s.locks.get(bookID)
	lock.Lock()
	defer lock.Unlock()

	return s.reservations.CreateReservation(ctx, bookID, userID)
}

func (s *service) CancelReservation(ctx context.Context, reservationID uuid.UUID) (*reservations.Reservation, error) {
	reservation, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	ctx, span := s.span(ctx, "circulation.cancel_reservation", reservation.BookID)
	defer span.End()

	lock := s.locks.get(reservation.BookID)
	lock.Lock()
	defer lock.Unlock()

	return s.reservations.CancelReservation(ctx, reservationID)
}

func (s *service) CompleteReservation(ctx context.Context, bookID, userID uuid.UUID) (*reservations.Reservation, error) {
	ctx, span := s.span(ctx, "circulation.complete_reservation", bookID)
	defer span.End()

	lock := s.locks.get(bookID)
	lock.Lock()
	defer lock.Unlock()

	return s.reservations.CompleteReservation(ctx, bookID, userID)
}

func (s *service) ExpireReservation(ctx context.Context, reservationID uuid.UUID) (*reservations.Reservation, error) {
	reservation, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	ctx, span := s.span(ctx, "circulation.expire_reservation", reservation.BookID)
	defer span.End()

	lock := s.locks.get(reservation.BookID)
	lock.Lock()
	defer lock.Unlock()

	return s.reservations.ExpireReservation(ctx, reservationID)
}

func (s *service) GetAllActiveLoans(ctx context.Context) ([]*loans.Loan, error) {
	return s.loans.GetAllActiveLoans(ctx)
}

func (s *service) GetUserLoans(ctx context.Context, userID uuid.UUID) ([]*loans.Loan, error) {
	return s.loans.GetUserLoans(ctx, userID)
}

func (s *service) GetActiveUserLoans(ctx context.Context, userID uuid.UUID) ([]*loans.Loan, error) {
	return s.loans.GetActiveUserLoans(ctx, userID)
}

func (s *service) GetBookReservations(ctx context.Context, bookID uuid.UUID) ([]*reservations.Reservation, error) {
	return s.reservations.GetBookReservations(ctx, bookID)
}

func (s *service) GetActiveBookReservations(ctx context.Context, bookID uuid.UUID) ([]*reservations.Reservation, error) {
	return s.reservations.GetActiveBookReservations(ctx, bookID)
}

func (s *service) GetUserReservations(ctx context.Context, userID uuid.UUID) ([]*reservations.Reservation, error) {
	return s.reservations.GetUserReservations(ctx, userID)
}
