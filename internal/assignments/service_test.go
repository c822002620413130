package assignments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/shared"
	"github.com/pulso-hq/pulso/internal/testing/testlog"
)

type stubRepo struct {
	assignments []authz.Assignment
	inserted    []Grant
	deleted     []Revocation
	insertErr   error
}

func (s *stubRepo) FindAssignments(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) ([]authz.Assignment, error) {
	var out []authz.Assignment
	for _, a := range s.assignments {
		if a.UserID != userID {
			continue
		}
		if a.OrganizationID == nil {
			out = append(out, a)
			continue
		}
		if orgID != nil && *a.OrganizationID == *orgID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubRepo) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Record, error) {
	return nil, nil
}

func (s *stubRepo) Insert(ctx context.Context, g Grant) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, g)
	s.assignments = append(s.assignments, authz.Assignment{
		UserID:         g.UserID,
		RoleName:       g.RoleName,
		OrganizationID: g.OrganizationID,
	})
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, rev Revocation) error {
	s.deleted = append(s.deleted, rev)
	kept := s.assignments[:0]
	for _, a := range s.assignments {
		match := a.UserID == rev.UserID && a.RoleName == rev.RoleName &&
			sameOrg(a.OrganizationID, rev.OrganizationID)
		if !match {
			kept = append(kept, a)
		}
	}
	s.assignments = kept
	return nil
}

func sameOrg(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type stubInvalidator struct {
	users []uuid.UUID
}

func (s *stubInvalidator) Invalidate(ctx context.Context, userID uuid.UUID) error {
	s.users = append(s.users, userID)
	return nil
}

type stubAuditor struct {
	logs []shared.AuditLog
}

func (s *stubAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func testHierarchy(t *testing.T) *authz.Hierarchy {
	t.Helper()
	h, err := authz.NewHierarchy([]authz.Role{
		{ID: 1, Name: "super_admin", Level: 0, Scope: authz.ScopeGlobal},
		{ID: 2, Name: "admin", Level: 100, Scope: authz.ScopeOrganization},
		{ID: 3, Name: "gestor", Level: 200, Scope: authz.ScopeOrganization},
		{ID: 4, Name: "colaborador", Level: 300, Scope: authz.ScopeOrganization},
	})
	require.NoError(t, err)
	return h
}

func newTestService(t *testing.T, repo *stubRepo) (*Service, *stubInvalidator, *stubAuditor) {
	t.Helper()
	h := testHierarchy(t)
	guard := authz.NewGuard(h, authz.NewResolver(repo))
	inv := &stubInvalidator{}
	aud := &stubAuditor{}
	return NewService(repo, guard, h, aud, inv, testlog.Discard()), inv, aud
}

func TestGrantByAdminInvalidatesAndAudits(t *testing.T) {
	org := uuid.New()
	admin := uuid.New()
	target := uuid.New()
	repo := &stubRepo{assignments: []authz.Assignment{
		{UserID: admin, RoleName: "admin", OrganizationID: &org},
	}}
	svc, inv, aud := newTestService(t, repo)

	err := svc.Grant(context.Background(), Grant{
		UserID: target, RoleName: "gestor", OrganizationID: &org, GrantedBy: admin,
	})
	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, []uuid.UUID{target}, inv.users)
	require.Len(t, aud.logs, 1)
	assert.Equal(t, "role.grant", aud.logs[0].Action)
	assert.Equal(t, target.String(), aud.logs[0].EntityID)
	require.NotNil(t, aud.logs[0].OrganizationID)
	assert.Equal(t, org, *aud.logs[0].OrganizationID)
}

func TestGrantLateralIsRejected(t *testing.T) {
	org := uuid.New()
	admin := uuid.New()
	repo := &stubRepo{assignments: []authz.Assignment{
		{UserID: admin, RoleName: "admin", OrganizationID: &org},
	}}
	svc, inv, _ := newTestService(t, repo)

	err := svc.Grant(context.Background(), Grant{
		UserID: uuid.New(), RoleName: "admin", OrganizationID: &org, GrantedBy: admin,
	})
	assert.ErrorIs(t, err, authz.ErrInsufficientPrivilege)
	assert.Empty(t, repo.inserted)
	assert.Empty(t, inv.users)
}

func TestGrantGlobalRoleRejectsOrganizationScope(t *testing.T) {
	org := uuid.New()
	super := uuid.New()
	repo := &stubRepo{assignments: []authz.Assignment{
		{UserID: super, RoleName: "super_admin"},
	}}
	svc, _, _ := newTestService(t, repo)

	err := svc.Grant(context.Background(), Grant{
		UserID: uuid.New(), RoleName: "super_admin", OrganizationID: &org, GrantedBy: super,
	})
	assert.Error(t, err)
	assert.Empty(t, repo.inserted)
}

func TestGrantScopedRoleRequiresOrganization(t *testing.T) {
	super := uuid.New()
	repo := &stubRepo{assignments: []authz.Assignment{
		{UserID: super, RoleName: "super_admin"},
	}}
	svc, _, _ := newTestService(t, repo)

	err := svc.Grant(context.Background(), Grant{
		UserID: uuid.New(), RoleName: "gestor", GrantedBy: super,
	})
	assert.Error(t, err)
	assert.Empty(t, repo.inserted)
}

func TestGrantDuplicateIsIdempotent(t *testing.T) {
	org := uuid.New()
	admin := uuid.New()
	repo := &stubRepo{
		assignments: []authz.Assignment{
			{UserID: admin, RoleName: "admin", OrganizationID: &org},
		},
		insertErr: authz.ErrDuplicateAssignment,
	}
	svc, inv, aud := newTestService(t, repo)

	err := svc.Grant(context.Background(), Grant{
		UserID: uuid.New(), RoleName: "colaborador", OrganizationID: &org, GrantedBy: admin,
	})
	require.NoError(t, err)
	assert.Empty(t, inv.users)
	assert.Empty(t, aud.logs)
}

func TestGrantUnknownRole(t *testing.T) {
	org := uuid.New()
	svc, _, _ := newTestService(t, &stubRepo{})

	err := svc.Grant(context.Background(), Grant{
		UserID: uuid.New(), RoleName: "director", OrganizationID: &org, GrantedBy: uuid.New(),
	})
	var unknown *authz.UnknownRoleError
	assert.ErrorAs(t, err, &unknown)
}

func TestRevokeAppliesSameGuardRule(t *testing.T) {
	org := uuid.New()
	gestor := uuid.New()
	target := uuid.New()
	repo := &stubRepo{assignments: []authz.Assignment{
		{UserID: gestor, RoleName: "gestor", OrganizationID: &org},
		{UserID: target, RoleName: "admin", OrganizationID: &org},
	}}
	svc, _, _ := newTestService(t, repo)

	err := svc.Revoke(context.Background(), Revocation{
		UserID: target, RoleName: "admin", OrganizationID: &org, RevokedBy: gestor,
	})
	assert.ErrorIs(t, err, authz.ErrInsufficientPrivilege)
	assert.Empty(t, repo.deleted)
}

func TestGrantRevokeRoundTrip(t *testing.T) {
	org := uuid.New()
	admin := uuid.New()
	target := uuid.New()
	repo := &stubRepo{assignments: []authz.Assignment{
		{UserID: admin, RoleName: "admin", OrganizationID: &org},
	}}
	h := testHierarchy(t)
	engine := authz.NewEngine(h, authz.NewResolver(repo), testlog.Discard())
	svc, _, _ := newTestService(t, repo)

	req := authz.Request{
		CallerID:       &target,
		OrganizationID: &org,
		RequiredRoles:  []string{"gestor"},
	}
	decision, err := engine.Decide(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed())

	require.NoError(t, svc.Grant(context.Background(), Grant{
		UserID: target, RoleName: "gestor", OrganizationID: &org, GrantedBy: admin,
	}))
	decision, err = engine.Decide(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, decision.Allowed())

	require.NoError(t, svc.Revoke(context.Background(), Revocation{
		UserID: target, RoleName: "gestor", OrganizationID: &org, RevokedBy: admin,
	}))
	decision, err = engine.Decide(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, decision.Allowed())
}

func TestRevokeByAdminInvalidatesCache(t *testing.T) {
	org := uuid.New()
	admin := uuid.New()
	target := uuid.New()
	repo := &stubRepo{assignments: []authz.Assignment{
		{UserID: admin, RoleName: "admin", OrganizationID: &org},
	}}
	svc, inv, aud := newTestService(t, repo)

	err := svc.Revoke(context.Background(), Revocation{
		UserID: target, RoleName: "colaborador", OrganizationID: &org, RevokedBy: admin,
	})
	require.NoError(t, err)
	require.Len(t, repo.deleted, 1)
	assert.Equal(t, []uuid.UUID{target}, inv.users)
	require.Len(t, aud.logs, 1)
	assert.Equal(t, "role.revoke", aud.logs[0].Action)
}
