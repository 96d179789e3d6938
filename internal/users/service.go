// internal/users/service.go
package users

import (
	"context"

	"github.com/google/uuid"
)

// Service manages library users and answers role checks for the loan
// coordinator.
type Service interface {
	Register(ctx context.Context, email, name, password string, role Role) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	IsLibrarianOrAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}
