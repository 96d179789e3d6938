// internal/availability/store.go
package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrBookNotFound is returned when a book id is unknown to the store.
var ErrBookNotFound = errors.New("book not found")

// Store holds each book's current circulation status.
type Store interface {
	AddBook(ctx context.Context, book *Book) error
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	GetStatus(ctx context.Context, id uuid.UUID) (Status, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
