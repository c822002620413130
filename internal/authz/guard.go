package authz

import (
	"context"

	"github.com/google/uuid"
)

// Guard validates role grant and revoke operations against the
// hierarchy: nobody may hand out a role at least as privileged as their
// own best role, except the global super-role holder.
type Guard struct {
	hierarchy *Hierarchy
	resolver  *Resolver
}

// NewGuard constructs a Guard.
func NewGuard(hierarchy *Hierarchy, resolver *Resolver) *Guard {
	return &Guard{hierarchy: hierarchy, resolver: resolver}
}

// CanAssign reports whether the assigner may grant targetRole within
// the supplied organization context. Returns nil when allowed,
// ErrInsufficientPrivilege when the hierarchy rule is violated, an
// UnknownRoleError when targetRole is not registered, and a
// ResolutionError when the assigner's roles cannot be resolved.
func (g *Guard) CanAssign(ctx context.Context, assignerID uuid.UUID, orgID *uuid.UUID, targetRole string) error {
	targetLevel, err := g.hierarchy.LevelOf(targetRole)
	if err != nil {
		return err
	}

	effective, err := g.resolver.Resolve(ctx, assignerID, orgID)
	if err != nil {
		return err
	}

	if effective.Contains(g.hierarchy.Super()) {
		return nil
	}

	best, ok := g.bestLevel(effective)
	if !ok {
		return ErrInsufficientPrivilege
	}
	// Strictly less privileged than the assigner's best role. Lateral
	// grants (equal level) are rejected.
	if best < targetLevel {
		return nil
	}
	return ErrInsufficientPrivilege
}

// CanRevoke applies the identical rule as CanAssign: what you could
// not grant, you may not revoke.
func (g *Guard) CanRevoke(ctx context.Context, assignerID uuid.UUID, orgID *uuid.UUID, targetRole string) error {
	return g.CanAssign(ctx, assignerID, orgID, targetRole)
}

// bestLevel returns the minimum (most privileged) level among the
// effective roles. Roles missing from the hierarchy are skipped; they
// cannot contribute privilege they do not have.
func (g *Guard) bestLevel(effective RoleSet) (int, bool) {
	best := 0
	found := false
	for name := range effective {
		level, err := g.hierarchy.LevelOf(name)
		if err != nil {
			continue
		}
		if !found || level < best {
			best = level
			found = true
		}
	}
	return best, found
}
