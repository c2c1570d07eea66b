// Package cache holds the per-item locks that serialize stock mutations.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	stockapp "github.com/labstock/backend/internal/application/stock"
)

type lockEntry struct {
	sem     chan struct{}
	waiters int
}

// InMemoryItemLocker serializes mutations of the same item within one process.
// Entries are reference counted and dropped when no goroutine holds or waits on them.
type InMemoryItemLocker struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*lockEntry
}

// NewInMemoryItemLocker creates an empty locker.
func NewInMemoryItemLocker() *InMemoryItemLocker {
	return &InMemoryItemLocker{entries: make(map[uuid.UUID]*lockEntry)}
}

// Lock blocks until itemID is free or ctx is done.
func (l *InMemoryItemLocker) Lock(ctx context.Context, itemID uuid.UUID) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[itemID]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[itemID] = e
	}
	e.waiters++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(itemID, e, false)
		return nil, fmt.Errorf("lock item %s: %w", itemID, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(itemID, e, true) })
	}, nil
}

func (l *InMemoryItemLocker) release(itemID uuid.UUID, e *lockEntry, held bool) {
	if held {
		<-e.sem
	}
	l.mu.Lock()
	e.waiters--
	if e.waiters == 0 {
		delete(l.entries, itemID)
	}
	l.mu.Unlock()
}

// Len returns the number of items currently held or awaited.
func (l *InMemoryItemLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

var _ stockapp.ItemLocker = (*InMemoryItemLocker)(nil)
