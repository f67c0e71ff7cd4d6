// Package cache provides best-effort acceleration for the admin order list
// view. Entries are keyed by the exact filter tuple and expire within a
// bounded TTL; every order write invalidates the whole cache, so staleness
// is limited to the TTL window in the worst case.
package cache

import (
	"context"
	"sync"
	"time"

	"ordena.org/internal/order"
)

const defaultTTL = 30 * time.Second

type entry struct {
	orders    []order.Order
	expiresAt time.Time
}

// Memory is an in-process TTL cache.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) MemoryOption {
	return func(m *Memory) {
		if fn != nil {
			m.now = fn
		}
	}
}

// NewMemory creates an empty in-process cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		ttl:     defaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ order.ListCache = (*Memory)(nil)

func (m *Memory) Get(ctx context.Context, key string) ([]order.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	out := make([]order.Order, len(e.orders))
	copy(out, e.orders)
	return out, true
}

func (m *Memory) Set(ctx context.Context, key string, orders []order.Order) {
	stored := make([]order.Order, len(orders))
	copy(stored, orders)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{orders: stored, expiresAt: m.now().Add(m.ttl)}
}

func (m *Memory) Invalidate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}
