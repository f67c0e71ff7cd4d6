// Package rbac defines the closed role and permission sets and their
// authority-string serialization embedded into token payloads.
package rbac

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownRole indicates a role value outside the closed enumeration.
var ErrUnknownRole = errors.New("rbac: unknown role")

// Role is a coarse identity classification.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// RolePrefix is prepended to a role name when it is serialized as an
// authority string.
const RolePrefix = "ROLE_"

// Permission is a fine-grained capability string.
type Permission string

const (
	PermUserRead    Permission = "user:read"
	PermUserCreate  Permission = "user:create"
	PermUserUpdate  Permission = "user:update"
	PermAdminRead   Permission = "admin:read"
	PermAdminCreate Permission = "admin:create"
	PermAdminUpdate Permission = "admin:update"
	PermAdminDelete Permission = "admin:delete"
)

// rolePermissions is the static role→permission mapping. ADMIN carries every
// USER permission plus the admin-only set. Immutable after process start.
var rolePermissions = map[Role][]Permission{
	RoleUser: {
		PermUserRead,
		PermUserCreate,
		PermUserUpdate,
	},
	RoleAdmin: {
		PermUserRead,
		PermUserCreate,
		PermUserUpdate,
		PermAdminRead,
		PermAdminCreate,
		PermAdminUpdate,
		PermAdminDelete,
	},
}

// PermissionsFor returns the permission set for a role. The enumeration is
// closed, so the error path is unreachable for values produced by ParseRole.
func PermissionsFor(role Role) ([]Permission, error) {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out, nil
}

// AuthoritiesFor returns the authority strings for a role: the sorted
// permission strings followed by "ROLE_" + name. The order carries no
// authorization semantics but is stable so token payloads are reproducible.
func AuthoritiesFor(role Role) ([]string, error) {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	out := make([]string, 0, len(perms)+1)
	for _, p := range perms {
		out = append(out, string(p))
	}
	sort.Strings(out)
	out = append(out, RolePrefix+string(role))
	return out, nil
}

// ParseRole maps a name (with or without the ROLE_ prefix) onto the closed
// role set.
func ParseRole(name string) (Role, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, RolePrefix)
	role := Role(name)
	if _, ok := rolePermissions[role]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRole, name)
	}
	return role, nil
}
