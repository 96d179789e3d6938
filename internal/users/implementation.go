// internal/users/implementation.go
package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// service implements the Service interface.
type service struct {
	store   Store
	log     *zap.Logger
	limiter *rate.Limiter
}

// NewService creates a new user service. Authentication attempts are
// rate-limited across the process.
func NewService(store Store, log *zap.Logger) Service {
	return &service{
		store:   store,
		log:     log,
		limiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

// Register creates a new user with the given role.
func (s *service) Register(ctx context.Context, email, name, password string, role Role) (*User, error) {
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if err != ErrUserNotFound {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if role == "" {
		role = RoleMember
	}

	hash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Role:      role,
		Status:    "active",
		CreatedAt: time.Now(),
	}
	credential := &Credential{
		UserID:       user.ID,
		PasswordHash: hash,
		Salt:         salt,
	}

	if err := s.store.Save(ctx, user, credential); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Authenticate verifies a user's credentials and returns the user.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	credential, err := s.store.FindCredential(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	ok, err := verifyPassword(password, credential.Salt, credential.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by id.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.FindByID(ctx, id)
}

// IsLibrarianOrAdmin implements the role gate consumed by the loan
// coordinator.
func (s *service) IsLibrarianOrAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if err == ErrUserNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return user.Role.CanCirculate(), nil
}
