package order

import (
	"context"
	"fmt"
	"time"

	"ordena.org/internal/authz"
	"ordena.org/internal/ids"
	"ordena.org/internal/obs"
	"ordena.org/internal/token"
)

// Audit actions emitted after successful mutations.
const (
	AuditCreateOrder = "CREATE_ORDER"
	AuditUpdateOrder = "UPDATE_ORDER"
	AuditDeleteOrder = "DELETE_ORDER"
)

// Service coordinates every order operation: token verification, role
// resolution, record lookup, the authorization check, execution and audit
// emission, in that order. A failure at any stage short-circuits the rest.
type Service struct {
	codec  *token.Codec
	repo   Repository
	owners OwnerResolver
	audit  AuditRecorder
	cache  ListCache
	now    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithListCache attaches the best-effort list cache.
func WithListCache(c ListCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithAudit attaches the audit recorder.
func WithAudit(a AuditRecorder) ServiceOption {
	return func(s *Service) { s.audit = a }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the coordinator.
func NewService(codec *token.Codec, repo Repository, owners OwnerResolver, opts ...ServiceOption) (*Service, error) {
	if codec == nil {
		return nil, fmt.Errorf("%w: token codec is required", ErrInvalidInput)
	}
	if repo == nil {
		return nil, fmt.Errorf("%w: repository is required", ErrInvalidInput)
	}
	if owners == nil {
		return nil, fmt.Errorf("%w: owner resolver is required", ErrInvalidInput)
	}
	s := &Service{codec: codec, repo: repo, owners: owners, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// authenticate verifies the bearer token and builds the per-request identity
// from its claims. The identity is discarded after the request.
func (s *Service) authenticate(bearer string) (authz.Identity, error) {
	claims, err := s.codec.Verify(bearer)
	if err != nil {
		return authz.Identity{}, err
	}
	authorities, err := token.ExtractRoles(claims)
	if err != nil {
		return authz.Identity{}, err
	}
	firstname, _ := token.ExtractString(claims, "firstname")
	return authz.NewIdentity(token.ExtractSubject(claims), firstname, authorities), nil
}

func (s *Service) decide(id authz.Identity, op authz.Operation, res authz.Resource) error {
	d := authz.Decide(id, op, res)
	obs.AuthzDecision(string(op), d.Allowed)
	return d.Err()
}

// ListOrders returns the admin-only filtered view of non-deleted orders.
// The cache is consulted only after the admin decision passed, because
// entries carry no identity dimension.
func (s *Service) ListOrders(ctx context.Context, bearer string, f ListFilter) ([]Order, error) {
	identity, err := s.authenticate(bearer)
	if err != nil {
		return nil, err
	}
	if err := s.decide(identity, authz.OpListOrders, authz.Resource{}); err != nil {
		return nil, err
	}

	key := f.Key()
	if s.cache != nil {
		if orders, ok := s.cache.Get(ctx, key); ok {
			obs.CacheLookup(true)
			return orders, nil
		}
		obs.CacheLookup(false)
	}

	orders, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, orders)
	}
	return orders, nil
}

// GetOrder returns a single record. Soft-deleted records remain fetchable by
// id; only list views hide them.
func (s *Service) GetOrder(ctx context.Context, bearer, id string) (Order, error) {
	identity, err := s.authenticate(bearer)
	if err != nil {
		return Order{}, err
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := s.decide(identity, authz.OpGetOrder, authz.Resource{OwnerDisplayName: rec.CustomerName}); err != nil {
		return Order{}, err
	}
	return rec, nil
}

// CreateOrder persists a new record whose owner attribute is the display
// name resolved by the user directory for the supplied firstname, forwarding
// the caller's own bearer token.
func (s *Service) CreateOrder(ctx context.Context, bearer string, draft Draft, firstname string) (Order, error) {
	identity, err := s.authenticate(bearer)
	if err != nil {
		return Order{}, err
	}
	if err := s.decide(identity, authz.OpCreateOrder, authz.Resource{}); err != nil {
		return Order{}, err
	}
	if err := draft.Validate(); err != nil {
		return Order{}, err
	}

	owner, err := s.owners.ResolveByDisplayName(ctx, bearer, firstname)
	if err != nil {
		return Order{}, err
	}

	now := s.now().UTC()
	rec := Order{
		ID:           ids.New(),
		CustomerName: owner,
		Status:       draft.Status,
		TotalPrice:   draft.TotalPrice,
		Items:        draft.Items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	saved, err := s.repo.Create(ctx, rec)
	if err != nil {
		return Order{}, err
	}
	s.invalidateCache(ctx)
	s.emitAudit(ctx, AuditCreateOrder, owner, "order created with id "+saved.ID)
	return saved, nil
}

// UpdateOrder overwrites status, line items, total price and the re-resolved
// owner attribute. The ownership check runs against the fresh record both
// before the directory call and again under the record lock.
func (s *Service) UpdateOrder(ctx context.Context, bearer, id string, patch Draft, firstname string) (Order, error) {
	identity, err := s.authenticate(bearer)
	if err != nil {
		return Order{}, err
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := s.decide(identity, authz.OpUpdateOrder, authz.Resource{OwnerDisplayName: rec.CustomerName}); err != nil {
		return Order{}, err
	}
	if err := patch.Validate(); err != nil {
		return Order{}, err
	}

	owner, err := s.owners.ResolveByDisplayName(ctx, bearer, firstname)
	if err != nil {
		return Order{}, err
	}

	now := s.now().UTC()
	saved, err := s.repo.Mutate(ctx, id, func(o *Order) error {
		d := authz.Decide(identity, authz.OpUpdateOrder, authz.Resource{OwnerDisplayName: o.CustomerName})
		if err := d.Err(); err != nil {
			return err
		}
		o.Status = patch.Status
		o.Items = patch.Items
		o.TotalPrice = patch.TotalPrice
		o.CustomerName = owner
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.invalidateCache(ctx)
	s.emitAudit(ctx, AuditUpdateOrder, identity.DisplayName, "order updated with id "+saved.ID)
	return saved, nil
}

// DeleteOrder flags the record as deleted. The flag is one-way and the
// operation is idempotent at the state level: a second call finds the
// already-deleted record by id and succeeds again.
func (s *Service) DeleteOrder(ctx context.Context, bearer, id string) error {
	identity, err := s.authenticate(bearer)
	if err != nil {
		return err
	}
	if err := s.decide(identity, authz.OpDeleteOrder, authz.Resource{}); err != nil {
		return err
	}

	now := s.now().UTC()
	if _, err := s.repo.Mutate(ctx, id, func(o *Order) error {
		o.Deleted = true
		o.UpdatedAt = now
		return nil
	}); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	s.emitAudit(ctx, AuditDeleteOrder, identity.Subject, "order deleted with id "+id)
	return nil
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// emitAudit records the event best-effort: a failed write never fails the
// primary operation, but is surfaced to the log and the failure counter.
func (s *Service) emitAudit(ctx context.Context, action, actor, details string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, action, actor, details); err != nil {
		obs.AuditFailure()
		obs.LogEntry(map[string]any{
			"ts":     s.now().UTC().Format(time.RFC3339Nano),
			"level":  "error",
			"msg":    "audit record failed",
			"action": action,
			"error":  err.Error(),
		})
	}
}
