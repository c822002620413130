// Package authz implements the organization-scoped role-hierarchy
// authorization engine: the role hierarchy model, effective-role
// resolution, the request-time decision procedure and the guard applied
// to role grant/revoke operations.
package authz

import (
	"time"

	"github.com/google/uuid"
)

// RoleScope controls whether a role applies everywhere or only inside
// the organization it was assigned in.
type RoleScope string

const (
	// ScopeGlobal marks a role valid across every organization without
	// a per-organization assignment row.
	ScopeGlobal RoleScope = "global"
	// ScopeOrganization marks a role valid only within the organization
	// it is assigned in.
	ScopeOrganization RoleScope = "organization"
)

// Role is an immutable capability level. Lower Level means more
// privileged. Roles are provisioned at migration/seed time and are
// static at runtime.
type Role struct {
	ID    int64
	Name  string
	Level int
	Scope RoleScope
}

// Assignment links a user to a role, optionally within one
// organization. A nil OrganizationID means the assignment is global,
// which is only valid for the global-scope role.
type Assignment struct {
	UserID         uuid.UUID
	RoleName       string
	OrganizationID *uuid.UUID
	GrantedBy      *uuid.UUID
	CreatedAt      time.Time
}

// Request carries everything the decision procedure needs for one
// protected operation. It is built per request and discarded after the
// decision.
type Request struct {
	// CallerID is nil when no authenticated caller is present.
	CallerID *uuid.UUID
	// OrganizationID is nil for operations with no tenant scope.
	OrganizationID *uuid.UUID
	// RequiredRoles is the set of role names any one of which
	// suffices. Empty means the operation declared no restriction.
	RequiredRoles []string
}

// Decision is the outcome of the decision procedure.
type Decision int

const (
	// Deny is the zero value so that any failure path defaults closed.
	Deny Decision = iota
	// Allow grants the operation.
	Allow
)

// Allowed reports whether the decision grants the operation.
func (d Decision) Allowed() bool { return d == Allow }

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// RoleSet is the effective role set resolved for a caller in a given
// organization context.
type RoleSet map[string]struct{}

// NewRoleSet builds a RoleSet from role names.
func NewRoleSet(names ...string) RoleSet {
	set := make(RoleSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Contains reports whether the set holds the named role.
func (s RoleSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the role names in the set. Order is unspecified.
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	return names
}
