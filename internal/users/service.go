package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/pulso-hq/pulso/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListMembers(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Member, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error)
}

// Service handles user management logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListMembers returns one page of organization members.
func (s *Service) ListMembers(ctx context.Context, orgID uuid.UUID, page, perPage int) ([]Member, shared.Pagination, error) {
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	members, total, err := s.repo.ListMembers(ctx, orgID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return members, shared.NewPagination(page, perPage, total), nil
}

// GetUser returns one account, restricted to members of the given
// organization context.
func (s *Service) GetUser(ctx context.Context, orgID *uuid.UUID, id uuid.UUID) (User, error) {
	if err := s.requireMembership(ctx, orgID, id); err != nil {
		return User{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// Deactivate disables an account. Sessions already issued keep working
// until they expire; authorization failure, not authentication, is the
// enforcement for disabled users holding stale sessions.
func (s *Service) Deactivate(ctx context.Context, orgID *uuid.UUID, id uuid.UUID) error {
	if err := s.requireMembership(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, false)
}

// Activate re-enables an account.
func (s *Service) Activate(ctx context.Context, orgID *uuid.UUID, id uuid.UUID) error {
	if err := s.requireMembership(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, true)
}

// requireMembership confines org-scoped callers to accounts holding an
// assignment in their organization. Non-members read as not found. A
// nil org context only ever reaches here for the global super-role, so
// it means no tenant restriction.
func (s *Service) requireMembership(ctx context.Context, orgID *uuid.UUID, userID uuid.UUID) error {
	if orgID == nil {
		return nil
	}
	member, err := s.repo.IsMember(ctx, userID, *orgID)
	if err != nil {
		return err
	}
	if !member {
		return shared.ErrNotFound
	}
	return nil
}
