// internal/loans/memory.go
package loans

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and single-node dev setups.
type MemoryStore struct {
	mu    sync.RWMutex
	loans map[uuid.UUID]*Loan
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{loans: make(map[uuid.UUID]*Loan)}
}

func (m *MemoryStore) Save(_ context.Context, loan *Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *loan
	m.loans[loan.ID] = &clone
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	loan, ok := m.loans[id]
	if !ok {
		return nil, ErrLoanNotFound
	}
	clone := *loan
	return &clone, nil
}

func (m *MemoryStore) FindOpen(_ context.Context) ([]*Loan, error) {
	return m.filter(func(l *Loan) bool {
		return l.Status.Open()
	}), nil
}

func (m *MemoryStore) FindByUser(_ context.Context, userID uuid.UUID) ([]*Loan, error) {
	return m.filter(func(l *Loan) bool {
		return l.UserID == userID
	}), nil
}

func (m *MemoryStore) FindOpenByUser(_ context.Context, userID uuid.UUID) ([]*Loan, error) {
	return m.filter(func(l *Loan) bool {
		return l.UserID == userID && l.Status.Open()
	}), nil
}

func (m *MemoryStore) FindOpenDueBefore(_ context.Context, cutoff time.Time) ([]*Loan, error) {
	return m.filter(func(l *Loan) bool {
		return l.Status.Open() && l.DueDate.Before(cutoff)
	}), nil
}

func (m *MemoryStore) filter(keep func(*Loan) bool) []*Loan {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []*Loan
	for _, l := range m.loans {
		if keep(l) {
			clone := *l
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].BorrowedAt.Equal(matches[j].BorrowedAt) {
			return matches[i].ID.String() < matches[j].ID.String()
		}
		return matches[i].BorrowedAt.Before(matches[j].BorrowedAt)
	})
	return matches
}
