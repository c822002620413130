package organizations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulso-hq/pulso/internal/shared"
)

type stubRepo struct {
	orgs    []Organization
	created []string
	renamed map[uuid.UUID]string
}

func (s *stubRepo) List(ctx context.Context) ([]Organization, error) {
	return s.orgs, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (Organization, error) {
	for _, org := range s.orgs {
		if org.ID == id {
			return org, nil
		}
	}
	return Organization{}, shared.ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, name string) (Organization, error) {
	for _, org := range s.orgs {
		if org.Name == name {
			return Organization{}, shared.ErrDuplicate
		}
	}
	org := Organization{ID: uuid.New(), Name: name}
	s.created = append(s.created, name)
	return org, nil
}

func (s *stubRepo) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if s.renamed == nil {
		s.renamed = make(map[uuid.UUID]string)
	}
	s.renamed[id] = name
	return nil
}

func TestListCollatesSpanishNames(t *testing.T) {
	repo := &stubRepo{orgs: []Organization{
		{ID: uuid.New(), Name: "Zafiro"},
		{ID: uuid.New(), Name: "ánima"},
		{ID: uuid.New(), Name: "Equipo Norte"},
	}}
	svc := NewService(repo)

	orgs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 3)

	// Plain byte ordering would push "ánima" after "Zafiro".
	assert.Equal(t, "ánima", orgs[0].Name)
	assert.Equal(t, "Equipo Norte", orgs[1].Name)
	assert.Equal(t, "Zafiro", orgs[2].Name)
}

func TestCreateTrimsAndValidatesName(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	org, err := svc.Create(context.Background(), "  Equipo Sur  ")
	require.NoError(t, err)
	assert.Equal(t, "Equipo Sur", org.Name)

	_, err = svc.Create(context.Background(), "   ")
	assert.Error(t, err)
}

func TestCreateDuplicateName(t *testing.T) {
	repo := &stubRepo{orgs: []Organization{{ID: uuid.New(), Name: "Equipo Norte"}}}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "Equipo Norte")
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestRename(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	id := uuid.New()

	require.NoError(t, svc.Rename(context.Background(), id, " Equipo Este "))
	assert.Equal(t, "Equipo Este", repo.renamed[id])

	assert.Error(t, svc.Rename(context.Background(), id, ""))
}
