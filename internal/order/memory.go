package order

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Repository with in-process concurrency safety.
type InMemory struct {
	mu     sync.RWMutex
	orders map[string]*Order
}

// NewInMemory creates an empty in-memory repository.
func NewInMemory() *InMemory {
	return &InMemory{orders: make(map[string]*Order)}
}

var _ Repository = (*InMemory)(nil)

func (s *InMemory) FindByID(ctx context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return cloneOrder(*o), nil
}

func (s *InMemory) Create(ctx context.Context, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneOrder(o)
	s.orders[o.ID] = &stored
	return cloneOrder(stored), nil
}

func (s *InMemory) List(ctx context.Context, f ListFilter) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Order
	for _, o := range s.orders {
		if f.Matches(*o) {
			out = append(out, cloneOrder(*o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Mutate(ctx context.Context, id string, fn func(*Order) error) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	work := cloneOrder(*o)
	if err := fn(&work); err != nil {
		return Order{}, err
	}
	s.orders[id] = &work
	return cloneOrder(work), nil
}

func cloneOrder(o Order) Order {
	if len(o.Items) > 0 {
		items := make([]LineItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}
