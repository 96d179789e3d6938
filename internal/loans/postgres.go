// internal/loans/postgres.go
package loans

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists loans in the loans table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const loanColumns = `id, book_id, user_id, status, lending_librarian_id, returning_librarian_id, notes, borrowed_at, due_date, returned_at, extended_count`

func (s *PostgresStore) Save(ctx context.Context, loan *Loan) error {
	query := `
		INSERT INTO loans (id, book_id, user_id, status, lending_librarian_id, returning_librarian_id, notes, borrowed_at, due_date, returned_at, extended_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    returning_librarian_id = EXCLUDED.returning_librarian_id,
		    notes = EXCLUDED.notes,
		    due_date = EXCLUDED.due_date,
		    returned_at = EXCLUDED.returned_at,
		    extended_count = EXCLUDED.extended_count
	`
	returningLibrarian := nullUUID(loan.ReturningLibrarianID)
	returnedAt := nullTime(loan.ReturnedAt)
	_, err := s.db.ExecContext(ctx, query,
		loan.ID, loan.BookID, loan.UserID, loan.Status, loan.LendingLibrarianID,
		returningLibrarian, loan.Notes, loan.BorrowedAt, loan.DueDate, returnedAt, loan.ExtendedCount)
	if err != nil {
		return fmt.Errorf("failed to save loan: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Loan, error) {
	query := fmt.Sprintf(`SELECT %s FROM loans WHERE id = $1`, loanColumns)
	loan, err := scanLoan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

func (s *PostgresStore) FindOpen(ctx context.Context) ([]*Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE status IN ('ACTIVE', 'OVERDUE')
		ORDER BY borrowed_at
	`, loanColumns)
	return s.query(ctx, query)
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID uuid.UUID) ([]*Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE user_id = $1
		ORDER BY borrowed_at
	`, loanColumns)
	return s.query(ctx, query, userID)
}

func (s *PostgresStore) FindOpenByUser(ctx context.Context, userID uuid.UUID) ([]*Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE user_id = $1 AND status IN ('ACTIVE', 'OVERDUE')
		ORDER BY borrowed_at
	`, loanColumns)
	return s.query(ctx, query, userID)
}

func (s *PostgresStore) FindOpenDueBefore(ctx context.Context, cutoff time.Time) ([]*Loan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM loans
		WHERE status IN ('ACTIVE', 'OVERDUE') AND due_date < $1
		ORDER BY due_date
	`, loanColumns)
	return s.query(ctx, query, cutoff)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...interface{}) ([]*Loan, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []*Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLoan(row rowScanner) (*Loan, error) {
	loan := &Loan{}
	var returningLibrarian uuid.NullUUID
	var returnedAt sql.NullTime
	err := row.Scan(
		&loan.ID, &loan.BookID, &loan.UserID, &loan.Status, &loan.LendingLibrarianID,
		&returningLibrarian, &loan.Notes, &loan.BorrowedAt, &loan.DueDate, &returnedAt, &loan.ExtendedCount)
	if err != nil {
		return nil, err
	}
	if returningLibrarian.Valid {
		loan.ReturningLibrarianID = returningLibrarian.UUID
	}
	if returnedAt.Valid {
		loan.ReturnedAt = returnedAt.Time
	}
	return loan, nil
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
