// internal/reservations/memory.go
package reservations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and single-node dev setups.
type MemoryStore struct {
	mu           sync.RWMutex
	reservations map[uuid.UUID]*Reservation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reservations: make(map[uuid.UUID]*Reservation)}
}

func (m *MemoryStore) Save(_ context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *r
	m.reservations[r.ID] = &clone
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *MemoryStore) FindByBook(_ context.Context, bookID uuid.UUID) ([]*Reservation, error) {
	return m.filter(func(r *Reservation) bool {
		return r.BookID == bookID
	}, byReservedAt), nil
}

func (m *MemoryStore) FindActiveByBook(_ context.Context, bookID uuid.UUID) ([]*Reservation, error) {
	return m.filter(func(r *Reservation) bool {
		return r.BookID == bookID && r.Status.Active()
	}, byQueuePosition), nil
}

func (m *MemoryStore) FindByUser(_ context.Context, userID uuid.UUID) ([]*Reservation, error) {
	return m.filter(func(r *Reservation) bool {
		return r.UserID == userID
	}, byReservedAt), nil
}

func (m *MemoryStore) FindActiveByUser(_ context.Context, userID uuid.UUID) ([]*Reservation, error) {
	return m.filter(func(r *Reservation) bool {
		return r.UserID == userID && r.Status.Active()
	}, byReservedAt), nil
}

func (m *MemoryStore) FindActiveByBookAndUser(_ context.Context, bookID, userID uuid.UUID) (*Reservation, error) {
	matches := m.filter(func(r *Reservation) bool {
		return r.BookID == bookID && r.UserID == userID && r.Status.Active()
	}, byQueuePosition)
	if len(matches) == 0 {
		return nil, ErrReservationNotFound
	}
	return matches[0], nil
}

func (m *MemoryStore) FindActiveExpiredBefore(_ context.Context, cutoff time.Time) ([]*Reservation, error) {
	return m.filter(func(r *Reservation) bool {
		return r.Status.Active() && r.ExpiresAt.Before(cutoff)
	}, byReservedAt), nil
}

func (m *MemoryStore) CountActiveByBook(_ context.Context, bookID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, r := range m.reservations {
		if r.BookID == bookID && r.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) filter(keep func(*Reservation) bool, less func(a, b *Reservation) bool) []*Reservation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []*Reservation
	for _, r := range m.reservations {
		if keep(r) {
			clone := *r
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return less(matches[i], matches[j]) })
	return matches
}

func byQueuePosition(a, b *Reservation) bool {
	return a.QueuePosition < b.QueuePosition
}

func byReservedAt(a, b *Reservation) bool {
	if a.ReservedAt.Equal(b.ReservedAt) {
		return a.ID.String() < b.ID.String()
	}
	return a.ReservedAt.Before(b.ReservedAt)
}
