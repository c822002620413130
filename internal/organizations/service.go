package organizations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RepositoryPort defines data access methods for organizations.
type RepositoryPort interface {
	List(ctx context.Context) ([]Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (Organization, error)
	Create(ctx context.Context, name string) (Organization, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
}

// Service handles organization management.
type Service struct {
	repo     RepositoryPort
	collator *collate.Collator
}

// NewService builds Service instance. Listings collate in Spanish so
// accented names sort where users expect them.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, collator: collate.New(language.Spanish, collate.IgnoreCase)}
}

// List returns all organizations in collated name order.
func (s *Service) List(ctx context.Context) ([]Organization, error) {
	orgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orgs, func(i, j int) bool {
		return s.collator.CompareString(orgs[i].Name, orgs[j].Name) < 0
	})
	return orgs, nil
}

// Get returns one organization.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Organization, error) {
	return s.repo.GetByID(ctx, id)
}

// Create provisions a new tenant.
func (s *Service) Create(ctx context.Context, name string) (Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Organization{}, fmt.Errorf("organization name required")
	}
	return s.repo.Create(ctx, name)
}

// Rename updates a tenant name.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("organization name required")
	}
	return s.repo.Rename(ctx, id, name)
}
