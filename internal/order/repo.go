package order

import "context"

// Repository is the persistence boundary. The store is treated as
// synchronous and strongly consistent.
type Repository interface {
	// FindByID returns the record regardless of its soft-delete flag.
	FindByID(ctx context.Context, id string) (Order, error)
	// Create persists a new record.
	Create(ctx context.Context, o Order) (Order, error)
	// List returns non-deleted records matching the filter.
	List(ctx context.Context, f ListFilter) ([]Order, error)
	// Mutate applies fn to the latest version of the record as a single
	// atomic read-modify-write unit with respect to concurrent writers on
	// the same id. An error from fn aborts the mutation.
	Mutate(ctx context.Context, id string, fn func(*Order) error) (Order, error)
}

// ListCache is best-effort acceleration for the admin list view. Entries are
// keyed by the exact filter tuple and must be invalidated on every write.
type ListCache interface {
	Get(ctx context.Context, key string) ([]Order, bool)
	Set(ctx context.Context, key string, orders []Order)
	Invalidate(ctx context.Context)
}

// OwnerResolver resolves a firstname to the canonical display name stored as
// the order's owner attribute, forwarding the caller's bearer token.
type OwnerResolver interface {
	ResolveByDisplayName(ctx context.Context, bearer, firstname string) (string, error)
}

// AuditRecorder persists audit events. Recording is best-effort from the
// coordinator's perspective.
type AuditRecorder interface {
	Record(ctx context.Context, action, actor, details string) error
}
