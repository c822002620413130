package authz

import (
	"errors"
	"fmt"
	"strings"
)

// Hierarchy is the single source of truth for "more privileged than"
// semantics. It is built once from the roles catalog and is immutable
// afterwards; the SQL policy functions installed by the migrations
// encode the same comparison against the same table.
type Hierarchy struct {
	byName map[string]Role
	super  string
}

// NewHierarchy validates the role catalog and builds the hierarchy.
// The catalog must contain unique names, unique levels and exactly one
// global-scope role, and that role must carry the minimum level so the
// super-role bypass is well defined.
func NewHierarchy(roles []Role) (*Hierarchy, error) {
	if len(roles) == 0 {
		return nil, errors.New("authz: empty role catalog")
	}
	byName := make(map[string]Role, len(roles))
	byLevel := make(map[int]string, len(roles))
	var super string
	minLevel := 0
	for i, role := range roles {
		name := strings.TrimSpace(role.Name)
		if name == "" {
			return nil, errors.New("authz: role with empty name")
		}
		if _, ok := byName[name]; ok {
			return nil, fmt.Errorf("authz: duplicate role name %q", name)
		}
		if other, ok := byLevel[role.Level]; ok {
			return nil, fmt.Errorf("authz: roles %q and %q share level %d", other, name, role.Level)
		}
		switch role.Scope {
		case ScopeGlobal:
			if super != "" {
				return nil, fmt.Errorf("authz: multiple global roles (%q, %q)", super, name)
			}
			super = name
		case ScopeOrganization:
		default:
			return nil, fmt.Errorf("authz: role %q has invalid scope %q", name, role.Scope)
		}
		role.Name = name
		byName[name] = role
		byLevel[role.Level] = name
		if i == 0 || role.Level < minLevel {
			minLevel = role.Level
		}
	}
	if super == "" {
		return nil, errors.New("authz: no global role in catalog")
	}
	if byName[super].Level != minLevel {
		return nil, fmt.Errorf("authz: global role %q is not the minimum level", super)
	}
	return &Hierarchy{byName: byName, super: super}, nil
}

// LevelOf returns the hierarchy level of the named role. Lower is more
// privileged.
func (h *Hierarchy) LevelOf(name string) (int, error) {
	role, ok := h.byName[name]
	if !ok {
		return 0, &UnknownRoleError{Name: name}
	}
	return role.Level, nil
}

// Satisfies reports whether a held role is sufficient for a required
// role: equal or more privileged. Equality is satisfaction.
func (h *Hierarchy) Satisfies(held, required string) (bool, error) {
	heldLevel, err := h.LevelOf(held)
	if err != nil {
		return false, err
	}
	requiredLevel, err := h.LevelOf(required)
	if err != nil {
		return false, err
	}
	return heldLevel <= requiredLevel, nil
}

// IsGlobal reports whether the named role applies across every
// organization.
func (h *Hierarchy) IsGlobal(name string) (bool, error) {
	role, ok := h.byName[name]
	if !ok {
		return false, &UnknownRoleError{Name: name}
	}
	return role.Scope == ScopeGlobal, nil
}

// Super returns the name of the unique minimum-level global role.
func (h *Hierarchy) Super() string { return h.super }

// Roles returns the catalog the hierarchy was built from.
func (h *Hierarchy) Roles() []Role {
	roles := make([]Role, 0, len(h.byName))
	for _, role := range h.byName {
		roles = append(roles, role)
	}
	return roles
}

// Validate checks that every supplied role name is registered. Used at
// startup to fail fast on operation registrations that reference roles
// missing from the catalog.
func (h *Hierarchy) Validate(names ...string) error {
	for _, name := range names {
		if _, ok := h.byName[name]; !ok {
			return &UnknownRoleError{Name: name}
		}
	}
	return nil
}
