package ratelimit

import (
	"context"
	"sync"
	"time"
)

// CounterStore is the shared counter backend for windowed rate limiting.
// IncrementAndGet must be atomic from the caller's perspective: two
// concurrent calls for the same key must observe distinct counts.
type CounterStore interface {
	// IncrementAndGet bumps the counter for key within its current fixed
	// window and returns the post-increment count plus the time remaining
	// until the window resets. A fresh window starts at count 1.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

type windowCounter struct {
	count       int64
	windowStart time.Time
}

// MemoryStore is an in-process CounterStore backed by a map. It backs tests
// and single-instance deployments; multi-instance deployments use the
// Redis store so all replicas share one counter space.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter

	// now is swappable in tests
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory counter store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*windowCounter),
		now:      time.Now,
	}
}

// IncrementAndGet implements CounterStore
func (s *MemoryStore) IncrementAndGet(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	c, exists := s.counters[key]
	if !exists || now.Sub(c.windowStart) >= window {
		c = &windowCounter{windowStart: now}
		s.counters[key] = c
	}

	c.count++
	resetIn := window - now.Sub(c.windowStart)
	return c.count, resetIn, nil
}

// Prune drops counters whose window expired before cutoff, bounding memory
// for identities that stopped calling
func (s *MemoryStore) Prune(window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, c := range s.counters {
		if now.Sub(c.windowStart) >= window {
			delete(s.counters, key)
			removed++
		}
	}
	return removed
}
