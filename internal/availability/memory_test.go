// internal/availability/memory_test.go
package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	bookID := uuid.New()

	require.NoError(t, store.AddBook(ctx, &Book{ID: bookID, Title: "Pride and Prejudice", ISBN: "9780141439518"}))

	status, err := store.GetStatus(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, status)

	require.NoError(t, store.SetStatus(ctx, bookID, StatusBorrowed))
	book, err := store.GetBook(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, StatusBorrowed, book.Status)

	exists, err := store.Exists(ctx, bookID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryStoreUnknownBook(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	unknown := uuid.New()

	_, err := store.GetStatus(ctx, unknown)
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = store.GetBook(ctx, unknown)
	assert.ErrorIs(t, err, ErrBookNotFound)

	err = store.SetStatus(ctx, unknown, StatusLost)
	assert.ErrorIs(t, err, ErrBookNotFound)

	exists, err := store.Exists(ctx, unknown)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusAvailable.Valid())
	assert.True(t, StatusLost.Valid())
	assert.False(t, Status("MISPLACED").Valid())
}
