package product

import (
	"context"
	"time"

	"ordena.org/internal/ids"
)

// Service applies validation around the catalog repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source (used by tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, d Draft) (Product, error) {
	if err := d.Validate(); err != nil {
		return Product{}, err
	}
	now := s.now().UTC()
	return s.repo.Create(ctx, Product{
		ID:        ids.New(),
		Name:      d.Name,
		Price:     d.Price,
		Quantity:  d.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) Update(ctx context.Context, id string, d Draft) (Product, error) {
	if err := d.Validate(); err != nil {
		return Product{}, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	existing.Name = d.Name
	existing.Price = d.Price
	existing.Quantity = d.Quantity
	existing.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, existing)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
