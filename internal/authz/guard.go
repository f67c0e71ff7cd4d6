// Package authz makes per-operation access decisions from a token-derived
// identity. Decisions are pure functions of (identity, operation, resource)
// with no hidden state.
package authz

import (
	"errors"

	"ordena.org/internal/rbac"
)

// ErrAccessDenied indicates the identity may not perform the operation.
var ErrAccessDenied = errors.New("authz: access denied")

// Operation names a guarded order operation.
type Operation string

const (
	OpListOrders  Operation = "list_orders"
	OpGetOrder    Operation = "get_order"
	OpCreateOrder Operation = "create_order"
	OpUpdateOrder Operation = "update_order"
	OpDeleteOrder Operation = "delete_order"
)

// Identity is the caller as asserted by a verified token. It is constructed
// fresh per request and never trusted from a request body.
type Identity struct {
	Subject     string
	DisplayName string

	authorities map[string]struct{}
}

// NewIdentity builds an identity from the verified subject, display name and
// authority list.
func NewIdentity(subject, displayName string, authorities []string) Identity {
	set := make(map[string]struct{}, len(authorities))
	for _, a := range authorities {
		set[a] = struct{}{}
	}
	return Identity{Subject: subject, DisplayName: displayName, authorities: set}
}

// HasAuthority reports whether the identity carries the authority string.
func (i Identity) HasAuthority(authority string) bool {
	_, ok := i.authorities[authority]
	return ok
}

// HasRole reports whether the identity carries the ROLE_-prefixed authority
// for the role.
func (i Identity) HasRole(role rbac.Role) bool {
	return i.HasAuthority(rbac.RolePrefix + string(role))
}

// Resource describes the target record's ownership attribute, for operations
// that check it.
type Resource struct {
	OwnerDisplayName string
}

// Decision is the ephemeral outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Err converts a denial into ErrAccessDenied; allowed decisions return nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return ErrAccessDenied
}

// Decide evaluates the access rules for the operation. Rules are evaluated
// in order and the first match wins.
func Decide(id Identity, op Operation, res Resource) Decision {
	switch op {
	case OpListOrders:
		if id.HasRole(rbac.RoleAdmin) || id.HasAuthority(string(rbac.PermAdminRead)) {
			return allow()
		}
		return deny("only admins can view all orders")

	case OpGetOrder:
		if id.HasRole(rbac.RoleAdmin) {
			return allow()
		}
		if id.DisplayName != "" && id.DisplayName == res.OwnerDisplayName {
			return allow()
		}
		return deny("not your order")

	case OpCreateOrder:
		if id.HasRole(rbac.RoleUser) || id.HasRole(rbac.RoleAdmin) {
			return allow()
		}
		return deny("only users or admins can create orders")

	case OpUpdateOrder:
		if id.HasRole(rbac.RoleAdmin) {
			return allow()
		}
		if id.DisplayName != "" && id.DisplayName == res.OwnerDisplayName {
			return allow()
		}
		return deny("not your order")

	case OpDeleteOrder:
		if id.HasRole(rbac.RoleAdmin) || id.HasAuthority(string(rbac.PermAdminDelete)) {
			return allow()
		}
		return deny("only admins can delete orders")

	default:
		return deny("unknown operation")
	}
}
