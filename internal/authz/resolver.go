package authz

import (
	"context"

	"github.com/google/uuid"
)

// AssignmentReader is the storage contract the resolver depends on.
// Implementations must return global assignments always and
// organization-scoped assignments only when orgID matches; a nil orgID
// must return global assignments only.
type AssignmentReader interface {
	FindAssignments(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) ([]Assignment, error)
}

// Resolver computes a caller's effective role set for a given
// organization context.
type Resolver struct {
	store AssignmentReader
}

// NewResolver constructs a Resolver.
func NewResolver(store AssignmentReader) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the effective role set for the user in the supplied
// organization context: all global roles the user holds, plus the
// organization-scoped roles assigned in the matching organization.
// Without an organization context only global roles are returned, so
// scoped roles never leak across tenant boundaries.
//
// The result is never nil; an empty set is a valid, common state.
// Storage failures are wrapped in ResolutionError so callers can fail
// closed.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) (RoleSet, error) {
	if cached, ok := cachedRoles(ctx, userID, orgID); ok {
		return cached, nil
	}
	assignments, err := r.store.FindAssignments(ctx, userID, orgID)
	if err != nil {
		return nil, &ResolutionError{Err: err}
	}
	set := make(RoleSet, len(assignments))
	for _, a := range assignments {
		set[a.RoleName] = struct{}{}
	}
	storeCachedRoles(ctx, userID, orgID, set)
	return set, nil
}
