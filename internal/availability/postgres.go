// internal/availability/postgres.go
package availability

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists books in the books table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) AddBook(ctx context.Context, book *Book) error {
	if book.Status == "" {
		book.Status = StatusAvailable
	}
	query := `
		INSERT INTO books (id, isbn, title, author, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, book.ID, book.ISBN, book.Title, book.Author, book.Status)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	query := `
		SELECT id, isbn, title, author, status, created_at, updated_at
		FROM books
		WHERE id = $1
	`
	book := &Book{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&book.ID,
		&book.ISBN,
		&book.Title,
		&book.Author,
		&book.Status,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

func (s *PostgresStore) GetStatus(ctx context.Context, id uuid.UUID) (Status, error) {
	var status Status
	err := s.db.QueryRowContext(ctx, `SELECT status FROM books WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrBookNotFound
		}
		return "", fmt.Errorf("failed to get book status: %w", err)
	}
	return status, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `
		UPDATE books
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to set book status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check book existence: %w", err)
	}
	return exists, nil
}
