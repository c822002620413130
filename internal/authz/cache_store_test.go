package authz

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCacheClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedStoreServesFromCache(t *testing.T) {
	world := newConformanceWorld()
	store := &stubStore{assignments: world.assignments()}
	_, client := newCacheClient(t)
	cached := NewCachedStore(store, client, time.Minute)
	ctx := context.Background()

	first, err := cached.FindAssignments(ctx, world.adminAcme, orgRef(world.acme))
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, store.calls)

	second, err := cached.FindAssignments(ctx, world.adminAcme, orgRef(world.acme))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.calls, "second read must not reach the inner store")
}

func TestCachedStoreKeysAreScopePartitioned(t *testing.T) {
	world := newConformanceWorld()
	store := &stubStore{assignments: world.assignments()}
	_, client := newCacheClient(t)
	cached := NewCachedStore(store, client, time.Minute)
	ctx := context.Background()

	inAcme, err := cached.FindAssignments(ctx, world.adminAcme, orgRef(world.acme))
	require.NoError(t, err)
	require.Len(t, inAcme, 1)

	// The beta lookup must miss the acme entry and return nothing.
	inBeta, err := cached.FindAssignments(ctx, world.adminAcme, orgRef(world.beta))
	require.NoError(t, err)
	assert.Empty(t, inBeta)
	assert.Equal(t, 2, store.calls)
}

func TestCachedStoreCorruptEntryIsAMiss(t *testing.T) {
	world := newConformanceWorld()
	store := &stubStore{assignments: world.assignments()}
	mr, client := newCacheClient(t)
	cached := NewCachedStore(store, client, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set(redisRolesKey(world.adminAcme, orgRef(world.acme)), "not json"))

	assignments, err := cached.FindAssignments(ctx, world.adminAcme, orgRef(world.acme))
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "admin", assignments[0].RoleName)
	assert.Equal(t, 1, store.calls)
}

func TestCachedStoreNilClientPassesThrough(t *testing.T) {
	world := newConformanceWorld()
	store := &stubStore{assignments: world.assignments()}
	cached := NewCachedStore(store, nil, time.Minute)

	assignments, err := cached.FindAssignments(context.Background(), world.gestorAcme, orgRef(world.acme))
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestCachedStoreZeroTTLDisablesCaching(t *testing.T) {
	world := newConformanceWorld()
	store := &stubStore{assignments: world.assignments()}
	mr, client := newCacheClient(t)
	cached := NewCachedStore(store, client, 0)
	ctx := context.Background()

	_, err := cached.FindAssignments(ctx, world.adminAcme, orgRef(world.acme))
	require.NoError(t, err)
	_, err = cached.FindAssignments(ctx, world.adminAcme, orgRef(world.acme))
	require.NoError(t, err)

	// Both reads reach the inner store and nothing is written to
	// Redis, rather than an unexpiring SET.
	assert.Equal(t, 2, store.calls)
	assert.False(t, mr.Exists(redisRolesKey(world.adminAcme, orgRef(world.acme))))
}

func TestInvalidatorDropsUserEntries(t *testing.T) {
	world := newConformanceWorld()
	store := &stubStore{assignments: world.assignments()}
	mr, client := newCacheClient(t)
	cached := NewCachedStore(store, client, time.Minute)
	ctx := context.Background()

	_, err := cached.FindAssignments(ctx, world.adminAcme, orgRef(world.acme))
	require.NoError(t, err)
	_, err = cached.FindAssignments(ctx, world.adminAcme, nil)
	require.NoError(t, err)
	_, err = cached.FindAssignments(ctx, world.gestorAcme, orgRef(world.acme))
	require.NoError(t, err)

	require.NoError(t, NewInvalidator(client).Invalidate(ctx, world.adminAcme))

	assert.False(t, mr.Exists(redisRolesKey(world.adminAcme, orgRef(world.acme))))
	assert.False(t, mr.Exists(redisRolesKey(world.adminAcme, nil)))
	assert.True(t, mr.Exists(redisRolesKey(world.gestorAcme, orgRef(world.acme))),
		"other users keep their cache entries")
}

func TestInvalidatorNilClientIsNoop(t *testing.T) {
	world := newConformanceWorld()
	require.NoError(t, NewInvalidator(nil).Invalidate(context.Background(), world.adminAcme))

	var inv *Invalidator
	require.NoError(t, inv.Invalidate(context.Background(), world.adminAcme))
}
