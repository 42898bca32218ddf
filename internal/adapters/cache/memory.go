package cache

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Memory is an in-process TTL cache with lazy expiry: expired entries are
// removed when read, there is no background sweep. It is created once at
// startup and injected into resolvers; its lifecycle is the process lifetime.
type Memory[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	nowFn func() time.Time
}

func NewMemory[T any]() *Memory[T] {
	return NewMemoryWithClock[T](func() time.Time { return time.Now().UTC() })
}

// NewMemoryWithClock injects the clock so tests can simulate expiry.
func NewMemoryWithClock[T any](nowFn func() time.Time) *Memory[T] {
	return &Memory[T]{
		items: make(map[string]entry[T]),
		nowFn: nowFn,
	}
}

func (m *Memory[T]) Get(_ context.Context, key string) (T, bool, error) {
	var zero T
	m.mu.RLock()
	it, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return zero, false, nil
	}
	if !m.nowFn().Before(it.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have refreshed
		// the entry between the read and this cleanup.
		if cur, still := m.items[key]; still && cur.expiresAt.Equal(it.expiresAt) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return zero, false, nil
	}
	return it.value, true, nil
}

func (m *Memory[T]) Put(_ context.Context, key string, value T, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	m.items[key] = entry[T]{value: value, expiresAt: m.nowFn().Add(ttl)}
	m.mu.Unlock()
	return nil
}
