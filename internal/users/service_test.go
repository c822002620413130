package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulso-hq/pulso/internal/shared"
)

type stubRepo struct {
	members    []Member
	total      int
	gotLimit   int
	gotOffset  int
	active     map[uuid.UUID]bool
	membership map[uuid.UUID]uuid.UUID
}

func (s *stubRepo) ListMembers(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Member, int, error) {
	s.gotLimit = limit
	s.gotOffset = offset
	return s.members, s.total, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	for _, m := range s.members {
		if m.ID == id {
			return m.User, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (s *stubRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if s.active == nil {
		s.active = make(map[uuid.UUID]bool)
	}
	s.active[id] = active
	return nil
}

func (s *stubRepo) IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	return s.membership[userID] == orgID, nil
}

func TestListMembersPagination(t *testing.T) {
	repo := &stubRepo{
		members: []Member{{User: User{ID: uuid.New(), Name: "Ana"}, Roles: []string{"gestor"}}},
		total:   45,
	}
	svc := NewService(repo)

	members, pagination, err := svc.ListMembers(context.Background(), uuid.New(), 2, 20)
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Equal(t, 20, repo.gotLimit)
	assert.Equal(t, 20, repo.gotOffset)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 45, pagination.Total)
}

func TestListMembersClampsPageInputs(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	_, pagination, err := svc.ListMembers(context.Background(), uuid.New(), -3, 10_000)
	require.NoError(t, err)
	assert.Equal(t, 20, repo.gotLimit)
	assert.Equal(t, 0, repo.gotOffset)
	assert.Equal(t, 1, pagination.Page)
}

func TestActivateDeactivateMember(t *testing.T) {
	org := uuid.New()
	id := uuid.New()
	repo := &stubRepo{membership: map[uuid.UUID]uuid.UUID{id: org}}
	svc := NewService(repo)

	require.NoError(t, svc.Deactivate(context.Background(), &org, id))
	assert.False(t, repo.active[id])

	require.NoError(t, svc.Activate(context.Background(), &org, id))
	assert.True(t, repo.active[id])
}

func TestDeactivateForeignMemberNotFound(t *testing.T) {
	org := uuid.New()
	other := uuid.New()
	id := uuid.New()
	repo := &stubRepo{membership: map[uuid.UUID]uuid.UUID{id: other}}
	svc := NewService(repo)

	err := svc.Deactivate(context.Background(), &org, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, touched := repo.active[id]
	assert.False(t, touched)
}

func TestSetActiveWithoutOrgSkipsMembershipCheck(t *testing.T) {
	// A nil org context only passes the gate for the global super-role.
	id := uuid.New()
	repo := &stubRepo{}
	svc := NewService(repo)

	require.NoError(t, svc.Deactivate(context.Background(), nil, id))
	assert.False(t, repo.active[id])
}

func TestGetUserOutsideOrgNotFound(t *testing.T) {
	org := uuid.New()
	svc := NewService(&stubRepo{})
	_, err := svc.GetUser(context.Background(), &org, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetUserNotFound(t *testing.T) {
	svc := NewService(&stubRepo{})
	_, err := svc.GetUser(context.Background(), nil, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
