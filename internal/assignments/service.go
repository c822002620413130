package assignments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/shared"
)

// RepositoryPort defines data access methods for assignments.
type RepositoryPort interface {
	authz.AssignmentReader
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Record, error)
	Insert(ctx context.Context, g Grant) error
	Delete(ctx context.Context, rev Revocation) error
}

// Auditor records grant/revoke actions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops cached role resolutions after a mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Service applies the assignment guard and persists grants and
// revocations.
type Service struct {
	repo        RepositoryPort
	guard       *authz.Guard
	hierarchy   *authz.Hierarchy
	audit       Auditor
	invalidator CacheInvalidator
	logger      *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, guard *authz.Guard, hierarchy *authz.Hierarchy, audit Auditor, invalidator CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, guard: guard, hierarchy: hierarchy, audit: audit, invalidator: invalidator, logger: logger}
}

// ListByOrganization lists assignments for administration.
func (s *Service) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Record, error) {
	return s.repo.ListByOrganization(ctx, orgID)
}

// Resolve exposes effective assignments for the given context.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) ([]authz.Assignment, error) {
	return s.repo.FindAssignments(ctx, userID, orgID)
}

// Grant validates and persists a role grant. A duplicate grant of the
// identical tuple is idempotent success. Errors: UnknownRoleError for
// unregistered roles, ErrInsufficientPrivilege from the guard, and
// scope violations for mismatched organization context.
func (s *Service) Grant(ctx context.Context, g Grant) error {
	if err := s.validateScope(g.RoleName, g.OrganizationID); err != nil {
		return err
	}
	if err := s.guard.CanAssign(ctx, g.GrantedBy, g.OrganizationID, g.RoleName); err != nil {
		return err
	}

	if err := s.repo.Insert(ctx, g); err != nil {
		if errors.Is(err, authz.ErrDuplicateAssignment) {
			// The tuple is the whole identity of an assignment, so an
			// existing row is always semantically identical.
			return nil
		}
		return err
	}

	s.invalidate(ctx, g.UserID)
	s.record(ctx, g.GrantedBy, "role.grant", g.UserID, g.RoleName, g.OrganizationID)
	return nil
}

// Revoke validates and removes a role grant under the identical guard
// rule as Grant.
func (s *Service) Revoke(ctx context.Context, rev Revocation) error {
	if err := s.validateScope(rev.RoleName, rev.OrganizationID); err != nil {
		return err
	}
	if err := s.guard.CanRevoke(ctx, rev.RevokedBy, rev.OrganizationID, rev.RoleName); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, rev); err != nil {
		return err
	}

	s.invalidate(ctx, rev.UserID)
	s.record(ctx, rev.RevokedBy, "role.revoke", rev.UserID, rev.RoleName, rev.OrganizationID)
	return nil
}

// validateScope rejects global grants of organization-scoped roles and
// scoped grants of the global role.
func (s *Service) validateScope(roleName string, orgID *uuid.UUID) error {
	global, err := s.hierarchy.IsGlobal(roleName)
	if err != nil {
		return err
	}
	if global && orgID != nil {
		return fmt.Errorf("assignments: role %s is global and cannot be organization-scoped", roleName)
	}
	if !global && orgID == nil {
		return fmt.Errorf("assignments: role %s requires an organization", roleName)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("assignment cache invalidation failed",
			slog.String("user", userID.String()),
			slog.Any("error", err))
	}
}

func (s *Service) record(ctx context.Context, actor uuid.UUID, action string, target uuid.UUID, roleName string, orgID *uuid.UUID) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:        &actor,
		OrganizationID: orgID,
		Action:         action,
		Entity:         "role_assignment",
		EntityID:       target.String(),
		Meta:           map[string]any{"role": roleName},
	}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
