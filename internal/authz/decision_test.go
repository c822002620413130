package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, store AssignmentReader) *Engine {
	t.Helper()
	return NewEngine(testHierarchy(t), NewResolver(store), nil)
}

func callerRef(id uuid.UUID) *uuid.UUID { return &id }

func TestDecideEmptyRequirementAlwaysAllows(t *testing.T) {
	engine := newTestEngine(t, &stubStore{})

	decision, err := engine.Decide(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)

	// Even with no caller at all.
	decision, err = engine.Decide(context.Background(), Request{CallerID: nil, RequiredRoles: nil})
	require.NoError(t, err)
	assert.True(t, decision.Allowed())
}

func TestDecideNoCallerDenies(t *testing.T) {
	engine := newTestEngine(t, &stubStore{})

	decision, err := engine.Decide(context.Background(), Request{
		RequiredRoles: []string{"colaborador"},
	})
	require.NoError(t, err)
	assert.Equal(t, Deny, decision)
}

func TestDecideHierarchyDisjunction(t *testing.T) {
	user := uuid.New()
	acme := uuid.New()
	other := uuid.New()
	store := &stubStore{assignments: map[uuid.UUID][]Assignment{
		user: {{UserID: user, RoleName: "admin", OrganizationID: orgRef(acme)}},
	}}
	engine := newTestEngine(t, store)

	// admin (100) satisfies gestor (200) inside the matching org.
	decision, err := engine.Decide(context.Background(), Request{
		CallerID:       callerRef(user),
		OrganizationID: orgRef(acme),
		RequiredRoles:  []string{"gestor"},
	})
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)

	// Same requirement in a different org denies.
	decision, err = engine.Decide(context.Background(), Request{
		CallerID:       callerRef(user),
		OrganizationID: orgRef(other),
		RequiredRoles:  []string{"gestor"},
	})
	require.NoError(t, err)
	assert.Equal(t, Deny, decision)

	// And with no org context at all.
	decision, err = engine.Decide(context.Background(), Request{
		CallerID:      callerRef(user),
		RequiredRoles: []string{"gestor"},
	})
	require.NoError(t, err)
	assert.Equal(t, Deny, decision)

	// Any required role may be satisfied by any held role.
	decision, err = engine.Decide(context.Background(), Request{
		CallerID:       callerRef(user),
		OrganizationID: orgRef(acme),
		RequiredRoles:  []string{"super_admin", "colaborador"},
	})
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)

	// A less privileged holder cannot satisfy a stricter requirement.
	decision, err = engine.Decide(context.Background(), Request{
		CallerID:       callerRef(user),
		OrganizationID: orgRef(acme),
		RequiredRoles:  []string{"super_admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, Deny, decision)
}

func TestDecideIgnoresAssignmentsOfUnknownRoles(t *testing.T) {
	user := uuid.New()
	acme := uuid.New()
	// A stale row referencing a role dropped from the catalog must not
	// change the outcome for the roles that remain, whichever order
	// the set iterates in.
	store := &stubStore{assignments: map[uuid.UUID][]Assignment{
		user: {
			{UserID: user, RoleName: "ghost", OrganizationID: orgRef(acme)},
			{UserID: user, RoleName: "admin", OrganizationID: orgRef(acme)},
		},
	}}
	engine := newTestEngine(t, store)

	for range [8]struct{}{} {
		decision, err := engine.Decide(context.Background(), Request{
			CallerID:       callerRef(user),
			OrganizationID: orgRef(acme),
			RequiredRoles:  []string{"gestor"},
		})
		require.NoError(t, err)
		assert.Equal(t, Allow, decision)
	}

	// Holding only the stale role is no privilege at all.
	ghost := uuid.New()
	store.assignments[ghost] = []Assignment{
		{UserID: ghost, RoleName: "ghost", OrganizationID: orgRef(acme)},
	}
	decision, err := engine.Decide(context.Background(), Request{
		CallerID:       callerRef(ghost),
		OrganizationID: orgRef(acme),
		RequiredRoles:  []string{"colaborador"},
	})
	require.NoError(t, err)
	assert.Equal(t, Deny, decision)
}

func TestDecideGlobalBypass(t *testing.T) {
	user := uuid.New()
	acme := uuid.New()
	store := &stubStore{assignments: map[uuid.UUID][]Assignment{
		user: {{UserID: user, RoleName: "super_admin"}},
	}}
	engine := newTestEngine(t, store)

	// With an organization context.
	decision, err := engine.Decide(context.Background(), Request{
		CallerID:       callerRef(user),
		OrganizationID: orgRef(acme),
		RequiredRoles:  []string{"admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)

	// And without one: the super role bypasses the tenant requirement.
	decision, err = engine.Decide(context.Background(), Request{
		CallerID:      callerRef(user),
		RequiredRoles: []string{"admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)
}

func TestDecideMonotonicity(t *testing.T) {
	// If a role at some level is allowed, every more privileged role
	// must be allowed for the same requirement.
	acme := uuid.New()
	ladder := []string{"colaborador", "gestor", "admin"}
	for i, allowedRole := range ladder {
		for _, required := range ladder {
			user := uuid.New()
			store := &stubStore{assignments: map[uuid.UUID][]Assignment{
				user: {{UserID: user, RoleName: allowedRole, OrganizationID: orgRef(acme)}},
			}}
			engine := newTestEngine(t, store)
			decision, err := engine.Decide(context.Background(), Request{
				CallerID:       callerRef(user),
				OrganizationID: orgRef(acme),
				RequiredRoles:  []string{required},
			})
			require.NoError(t, err)
			if !decision.Allowed() {
				continue
			}
			for _, stronger := range ladder[i+1:] {
				strongUser := uuid.New()
				strongStore := &stubStore{assignments: map[uuid.UUID][]Assignment{
					strongUser: {{UserID: strongUser, RoleName: stronger, OrganizationID: orgRef(acme)}},
				}}
				strongEngine := newTestEngine(t, strongStore)
				strongDecision, err := strongEngine.Decide(context.Background(), Request{
					CallerID:       callerRef(strongUser),
					OrganizationID: orgRef(acme),
					RequiredRoles:  []string{required},
				})
				require.NoError(t, err)
				assert.True(t, strongDecision.Allowed(),
					"%s allowed for %s but %s was not", allowedRole, required, stronger)
			}
		}
	}
}

func TestDecideResolutionFailureFailsClosed(t *testing.T) {
	engine := newTestEngine(t, &stubStore{err: errors.New("storage timeout")})

	decision, err := engine.Decide(context.Background(), Request{
		CallerID:      callerRef(uuid.New()),
		RequiredRoles: []string{"colaborador"},
	})
	var resolution *ResolutionError
	require.ErrorAs(t, err, &resolution)
	assert.Equal(t, Deny, decision)
}

func TestDecideCancelledContextDenies(t *testing.T) {
	user := uuid.New()
	store := &stubStore{assignments: map[uuid.UUID][]Assignment{
		user: {{UserID: user, RoleName: "super_admin"}},
	}}
	engine := newTestEngine(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	decision, err := engine.Decide(ctx, Request{
		CallerID:      callerRef(user),
		RequiredRoles: []string{"admin"},
	})
	require.Error(t, err)
	assert.Equal(t, Deny, decision)
}

func TestDecideUnknownRequiredRoleDenies(t *testing.T) {
	user := uuid.New()
	acme := uuid.New()
	store := &stubStore{assignments: map[uuid.UUID][]Assignment{
		user: {{UserID: user, RoleName: "admin", OrganizationID: orgRef(acme)}},
	}}
	engine := newTestEngine(t, store)

	decision, err := engine.Decide(context.Background(), Request{
		CallerID:       callerRef(user),
		OrganizationID: orgRef(acme),
		RequiredRoles:  []string{"ghost"},
	})
	require.Error(t, err)
	assert.Equal(t, Deny, decision)
}
