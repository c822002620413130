package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T, store AssignmentReader) *Guard {
	t.Helper()
	return NewGuard(testHierarchy(t), NewResolver(store))
}

func TestCanAssignCeiling(t *testing.T) {
	assigner := uuid.New()
	acme := uuid.New()
	store := &stubStore{assignments: map[uuid.UUID][]Assignment{
		assigner: {{UserID: assigner, RoleName: "admin", OrganizationID: orgRef(acme)}},
	}}
	guard := newTestGuard(t, store)

	// Level 100 may hand out strictly less privileged roles.
	assert.NoError(t, guard.CanAssign(context.Background(), assigner, orgRef(acme), "gestor"))
	assert.NoError(t, guard.CanAssign(context.Background(), assigner, orgRef(acme), "colaborador"))

	// Lateral grants are rejected, as are upward ones.
	assert.ErrorIs(t, guard.CanAssign(context.Background(), assigner, orgRef(acme), "admin"), ErrInsufficientPrivilege)
	assert.ErrorIs(t, guard.CanAssign(context.Background(), assigner, orgRef(acme), "super_admin"), ErrInsufficientPrivilege)
}

func TestCanAssignOutsideOwnOrganization(t *testing.T) {
	assigner := uuid.New()
	acme := uuid.New()
	beta := uuid.New()
	store := &stubStore{assignments: map[uuid.UUID][]Assignment{
		assigner: {{UserID: assigner, RoleName: "admin", OrganizationID: orgRef(acme)}},
	}}
	guard := newTestGuard(t, store)

	// Privilege in acme buys nothing in beta or globally.
	assert.ErrorIs(t, guard.CanAssign(context.Background(), assigner, orgRef(beta), "colaborador"), ErrInsufficientPrivilege)
	assert.ErrorIs(t, guard.CanAssign(context.Background(), assigner, nil, "colaborador"), ErrInsufficientPrivilege)
}

func TestCanAssignSuperBypass(t *testing.T) {
	super := uuid.New()
	acme := uuid.New()
	store := &stubStore{assignments: map[uuid.UUID][]Assignment{
		super: {{UserID: super, RoleName: "super_admin"}},
	}}
	guard := newTestGuard(t, store)

	assert.NoError(t, guard.CanAssign(context.Background(), super, orgRef(acme), "admin"))
	assert.NoError(t, guard.CanAssign(context.Background(), super, nil, "super_admin"))
}

func TestCanAssignUnknownTargetRole(t *testing.T) {
	guard := newTestGuard(t, &stubStore{})

	err := guard.CanAssign(context.Background(), uuid.New(), nil, "ghost")
	var unknown *UnknownRoleError
	require.ErrorAs(t, err, &unknown)
}

func TestCanAssignNoRolesAtAll(t *testing.T) {
	guard := newTestGuard(t, &stubStore{})

	err := guard.CanAssign(context.Background(), uuid.New(), nil, "colaborador")
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)
}

func TestCanAssignResolutionFailure(t *testing.T) {
	guard := newTestGuard(t, &stubStore{err: errors.New("storage down")})

	err := guard.CanAssign(context.Background(), uuid.New(), nil, "colaborador")
	var resolution *ResolutionError
	require.ErrorAs(t, err, &resolution)
}

func TestCanRevokeMirrorsCanAssign(t *testing.T) {
	assigner := uuid.New()
	acme := uuid.New()
	store := &stubStore{assignments: map[uuid.UUID][]Assignment{
		assigner: {{UserID: assigner, RoleName: "gestor", OrganizationID: orgRef(acme)}},
	}}
	guard := newTestGuard(t, store)

	assert.NoError(t, guard.CanRevoke(context.Background(), assigner, orgRef(acme), "colaborador"))
	assert.ErrorIs(t, guard.CanRevoke(context.Background(), assigner, orgRef(acme), "gestor"), ErrInsufficientPrivilege)
	assert.ErrorIs(t, guard.CanRevoke(context.Background(), assigner, orgRef(acme), "admin"), ErrInsufficientPrivilege)
}
