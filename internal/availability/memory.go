// internal/availability/memory.go
package availability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and single-node dev setups.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[uuid.UUID]*Book
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[uuid.UUID]*Book)}
}

func (m *MemoryStore) AddBook(_ context.Context, book *Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if book.Status == "" {
		book.Status = StatusAvailable
	}
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	clone := *book
	m.books[book.ID] = &clone
	return nil
}

func (m *MemoryStore) GetBook(_ context.Context, id uuid.UUID) (*Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	clone := *book
	return &clone, nil
}

func (m *MemoryStore) GetStatus(_ context.Context, id uuid.UUID) (Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return "", ErrBookNotFound
	}
	return book.Status, nil
}

func (m *MemoryStore) SetStatus(_ context.Context, id uuid.UUID, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[id]
	if !ok {
		return ErrBookNotFound
	}
	book.Status = status
	book.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.books[id]
	return ok, nil
}
