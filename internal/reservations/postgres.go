// internal/reservations/postgres.go
package reservations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists reservations in the reservations table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const reservationColumns = `id, book_id, user_id, status, queue_position, reserved_at, expires_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, r *Reservation) error {
	query := `
		INSERT INTO reservations (id, book_id, user_id, status, queue_position, reserved_at, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    queue_position = EXCLUDED.queue_position,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.BookID, r.UserID, r.Status, r.QueuePosition, r.ReservedAt, r.ExpiresAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reservations WHERE id = $1`, reservationColumns)
	r, err := s.scanOne(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) FindByBook(ctx context.Context, bookID uuid.UUID) ([]*Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reservations
		WHERE book_id = $1
		ORDER BY reserved_at
	`, reservationColumns)
	return s.query(ctx, query, bookID)
}

func (s *PostgresStore) FindActiveByBook(ctx context.Context, bookID uuid.UUID) ([]*Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reservations
		WHERE book_id = $1 AND status IN ('PENDING', 'READY')
		ORDER BY queue_position
	`, reservationColumns)
	return s.query(ctx, query, bookID)
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID uuid.UUID) ([]*Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reservations
		WHERE user_id = $1
		ORDER BY reserved_at
	`, reservationColumns)
	return s.query(ctx, query, userID)
}

func (s *PostgresStore) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reservations
		WHERE user_id = $1 AND status IN ('PENDING', 'READY')
		ORDER BY reserved_at
	`, reservationColumns)
	return s.query(ctx, query, userID)
}

func (s *PostgresStore) FindActiveByBookAndUser(ctx context.Context, bookID, userID uuid.UUID) (*Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reservations
		WHERE book_id = $1 AND user_id = $2 AND status IN ('PENDING', 'READY')
		ORDER BY queue_position
		LIMIT 1
	`, reservationColumns)
	r, err := s.scanOne(s.db.QueryRowContext(ctx, query, bookID, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]*Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reservations
		WHERE status IN ('PENDING', 'READY') AND expires_at < $1
		ORDER BY expires_at
	`, reservationColumns)
	return s.query(ctx, query, cutoff)
}

func (s *PostgresStore) CountActiveByBook(ctx context.Context, bookID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE book_id = $1 AND status IN ('PENDING', 'READY')
	`, bookID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active reservations: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...interface{}) ([]*Reservation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*Reservation
	for rows.Next() {
		r := &Reservation{}
		if err := rows.Scan(&r.ID, &r.BookID, &r.UserID, &r.Status, &r.QueuePosition, &r.ReservedAt, &r.ExpiresAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *PostgresStore) scanOne(row rowScanner) (*Reservation, error) {
	r := &Reservation{}
	err := row.Scan(&r.ID, &r.BookID, &r.UserID, &r.Status, &r.QueuePosition, &r.ReservedAt, &r.ExpiresAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}
