// internal/users/postgres.go
package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists users in the users and credentials tables.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, user *User, credential *Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userQuery := `
		INSERT INTO users (id, email, name, role, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, role = EXCLUDED.role, status = EXCLUDED.status
	`
	if _, err := tx.ExecContext(ctx, userQuery, user.ID, user.Email, user.Name, user.Role, user.Status); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	if credential != nil {
		credQuery := `
			INSERT INTO credentials (user_id, password_hash, salt)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE
			SET password_hash = EXCLUDED.password_hash, salt = EXCLUDED.salt
		`
		if _, err := tx.ExecContext(ctx, credQuery, credential.UserID, credential.PasswordHash, credential.Salt); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, `WHERE email = $1`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg interface{}) (*User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, name, role, status, created_at
		FROM users
		%s
	`, where)
	user := &User{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) FindCredential(ctx context.Context, userID uuid.UUID) (*Credential, error) {
	query := `
		SELECT user_id, password_hash, salt
		FROM credentials
		WHERE user_id = $1
	`
	credential := &Credential{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&credential.UserID,
		&credential.PasswordHash,
		&credential.Salt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return credential, nil
}
