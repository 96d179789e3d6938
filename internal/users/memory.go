// internal/users/memory.go
package users

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and single-node dev setups.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]*User
	byEmail     map[string]uuid.UUID
	credentials map[uuid.UUID]*Credential
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[uuid.UUID]*User),
		byEmail:     make(map[string]uuid.UUID),
		credentials: make(map[uuid.UUID]*Credential),
	}
}

func (m *MemoryStore) Save(_ context.Context, user *User, credential *Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byEmail[user.Email]; ok && existing != user.ID {
		return ErrEmailTaken
	}

	userClone := *user
	m.users[user.ID] = &userClone
	m.byEmail[user.Email] = user.ID
	if credential != nil {
		credClone := *credential
		m.credentials[user.ID] = &credClone
	}
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *m.users[id]
	return &clone, nil
}

func (m *MemoryStore) FindCredential(_ context.Context, userID uuid.UUID) (*Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	credential, ok := m.credentials[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *credential
	return &clone, nil
}
