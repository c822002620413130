package authz

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type resolutionCacheKey struct{}

// resolutionCache memoizes resolved role sets for the lifetime of one
// request. It must never outlive the request: caching across requests
// would open stale-privilege windows, so cross-request reuse is only
// done through the Redis-backed cache below, which is invalidated on
// every assignment mutation.
type resolutionCache struct {
	mu    sync.Mutex
	roles map[string]RoleSet
}

// WithResolutionCache installs a request-scoped resolution cache on the
// context. Installed once per request by the middleware stack.
func WithResolutionCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, resolutionCacheKey{}, &resolutionCache{roles: make(map[string]RoleSet)})
}

func cacheKey(userID uuid.UUID, orgID *uuid.UUID) string {
	if orgID == nil {
		return userID.String()
	}
	return userID.String() + "/" + orgID.String()
}

func cachedRoles(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) (RoleSet, bool) {
	cache, _ := ctx.Value(resolutionCacheKey{}).(*resolutionCache)
	if cache == nil {
		return nil, false
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	set, ok := cache.roles[cacheKey(userID, orgID)]
	return set, ok
}

func storeCachedRoles(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID, set RoleSet) {
	cache, _ := ctx.Value(resolutionCacheKey{}).(*resolutionCache)
	if cache == nil {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.roles[cacheKey(userID, orgID)] = set
}

// Invalidator clears cached resolutions for a user after an assignment
// mutation. The assignments service calls it on every grant and revoke
// so that no cache layer can serve privileges the storage no longer
// holds.
type Invalidator struct {
	client *redis.Client
}

// NewInvalidator constructs an Invalidator. A nil client disables the
// cross-request layer entirely, which is always safe.
func NewInvalidator(client *redis.Client) *Invalidator {
	return &Invalidator{client: client}
}

const invalidationChannel = "authz:assignments:changed"

// Invalidate publishes the mutation signal and drops any cached
// resolutions for the user.
func (i *Invalidator) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if i == nil || i.client == nil {
		return nil
	}
	keys, err := i.client.Keys(ctx, "authz:roles:"+userID.String()+"*").Result()
	if err == nil && len(keys) > 0 {
		_ = i.client.Del(ctx, keys...).Err()
	}
	return i.client.Publish(ctx, invalidationChannel, userID.String()).Err()
}
