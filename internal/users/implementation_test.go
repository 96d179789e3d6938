// internal/users/implementation_test.go
package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	return NewService(NewMemoryStore(), zap.NewNop())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "reader@example.com", "Reader", "SecurePass123!", "")
	require.NoError(t, err)
	assert.Equal(t, RoleMember, user.Role)

	authed, err := svc.Authenticate(ctx, "reader@example.com", "SecurePass123!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = svc.Authenticate(ctx, "reader@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "reader@example.com", "Reader", "SecurePass123!", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "reader@example.com", "Other Reader", "OtherPass456!", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestIsLibrarianOrAdmin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	member, err := svc.Register(ctx, "member@example.com", "Member", "pw1234567", RoleMember)
	require.NoError(t, err)
	librarian, err := svc.Register(ctx, "librarian@example.com", "Librarian", "pw1234567", RoleLibrarian)
	require.NoError(t, err)
	admin, err := svc.Register(ctx, "admin@example.com", "Admin", "pw1234567", RoleAdmin)
	require.NoError(t, err)

	ok, err := svc.IsLibrarianOrAdmin(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsLibrarianOrAdmin(ctx, librarian.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsLibrarianOrAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsLibrarianOrAdmin(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, salt, err := hashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := verifyPassword("correct horse battery staple", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("incorrect horse", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}
