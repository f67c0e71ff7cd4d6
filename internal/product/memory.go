package product

import (
	"context"
	"sort"
	"sync"
)

// InMemory keeps the catalog in process memory. Used by tests and as the
// fallback when no database is configured.
type InMemory struct {
	mu       sync.RWMutex
	products map[string]Product
}

var _ Repository = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{products: make(map[string]Product)}
}

func (m *InMemory) List(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *InMemory) FindByID(ctx context.Context, id string) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *InMemory) Create(ctx context.Context, p Product) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return p, nil
}

func (m *InMemory) Update(ctx context.Context, p Product) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return Product{}, ErrNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *InMemory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}
