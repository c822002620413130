package authz

import (
	"context"
	"log/slog"
)

// Engine is the request-time decision procedure. It is stateless
// between requests; concurrent Decide calls are independent.
type Engine struct {
	hierarchy *Hierarchy
	resolver  *Resolver
	logger    *slog.Logger
}

// NewEngine constructs the decision engine.
func NewEngine(hierarchy *Hierarchy, resolver *Resolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{hierarchy: hierarchy, resolver: resolver, logger: logger}
}

// Hierarchy exposes the hierarchy model the engine decides against.
func (e *Engine) Hierarchy() *Hierarchy { return e.hierarchy }

// Decide evaluates the request against the hierarchy and the caller's
// effective roles.
//
// The only externally visible effect is the Decision. Errors are
// returned alongside Deny so the boundary can log them, but no error
// path ever yields Allow: a resolution failure, an unknown role in the
// requirement and a cancelled context all fail closed.
func (e *Engine) Decide(ctx context.Context, req Request) (Decision, error) {
	if len(req.RequiredRoles) == 0 {
		return Allow, nil
	}
	if req.CallerID == nil {
		return Deny, nil
	}
	if err := ctx.Err(); err != nil {
		return Deny, err
	}

	effective, err := e.resolver.Resolve(ctx, *req.CallerID, req.OrganizationID)
	if err != nil {
		e.logger.Warn("authorization resolution failed",
			slog.String("caller", req.CallerID.String()),
			slog.Any("error", err))
		return Deny, err
	}

	// A holder of the unique minimum-level global role bypasses the
	// organization-context requirement entirely.
	if effective.Contains(e.hierarchy.Super()) {
		return Allow, nil
	}

	// Organization-scoped roles are meaningless without a tenant
	// context: a non-super caller with no context can never satisfy a
	// non-trivial requirement.
	if req.OrganizationID == nil {
		return Deny, nil
	}

	for held := range effective {
		if _, err := e.hierarchy.LevelOf(held); err != nil {
			// Assignment rows referencing roles dropped from the
			// catalog contribute no privilege, in either direction;
			// the SQL mirror joins them away the same way.
			e.logger.Warn("ignoring assignment of unknown role",
				slog.String("caller", req.CallerID.String()),
				slog.String("held", held))
			continue
		}
		for _, required := range req.RequiredRoles {
			ok, err := e.hierarchy.Satisfies(held, required)
			if err != nil {
				// An unknown required role is a configuration defect;
				// surface it as Deny rather than guessing.
				e.logger.Error("authorization requirement misconfigured",
					slog.String("held", held),
					slog.String("required", required),
					slog.Any("error", err))
				return Deny, err
			}
			if ok {
				return Allow, nil
			}
		}
	}
	return Deny, nil
}
