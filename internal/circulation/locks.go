// internal/circulation/locks.go
package circulation

import (
	"sync"

	"github.com/google/uuid"
)

// bookLocks hands out one mutex per book id so operations on the same book
// serialize while different books proceed in parallel.
type bookLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newBookLocks() *bookLocks {
	return &bookLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (b *bookLocks) get(bookID uuid.UUID) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	lock, ok := b.locks[bookID]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[bookID] = lock
	}
	return lock
}
