package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pulso-hq/pulso/internal/authz"
)

// ErrDuplicateRole indicates a name or level collision in the catalog.
var ErrDuplicateRole = errors.New("roles: duplicate name or level")

// RepositoryPort defines data access methods for the catalog.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetByName(ctx context.Context, name string) (Role, error)
	CreateRole(ctx context.Context, name string, level int, scope string) (Role, error)
}

// Service handles role catalog logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns the catalog ordered by privilege.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// CreateRole provisions a new catalog row after normalising the name.
func (s *Service) CreateRole(ctx context.Context, name string, level int, scope string) (Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Role{}, errors.New("roles: role name required")
	}
	if scope != string(authz.ScopeGlobal) && scope != string(authz.ScopeOrganization) {
		return Role{}, fmt.Errorf("roles: invalid scope %q", scope)
	}
	return s.repo.CreateRole(ctx, name, level, scope)
}

// LoadHierarchy reads the catalog and builds the immutable hierarchy
// the engine decides against. Called once at startup; a catalog that
// fails hierarchy validation is a fatal configuration defect.
func (s *Service) LoadHierarchy(ctx context.Context) (*authz.Hierarchy, error) {
	rows, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("roles: load catalog: %w", err)
	}
	catalog := make([]authz.Role, len(rows))
	for i, row := range rows {
		catalog[i] = authz.Role{
			ID:    row.ID,
			Name:  row.Name,
			Level: row.Level,
			Scope: authz.RoleScope(row.Scope),
		}
	}
	return authz.NewHierarchy(catalog)
}
