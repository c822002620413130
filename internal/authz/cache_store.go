package authz

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CachedStore wraps an AssignmentReader with a short-lived Redis cache.
// It only exists because the assignments service invalidates the cache
// on every grant and revoke through Invalidator; without that signal a
// cross-request cache would be a stale-privilege window.
type CachedStore struct {
	inner  AssignmentReader
	client *redis.Client
	ttl    time.Duration
}

// NewCachedStore constructs a CachedStore. A nil client or a
// non-positive TTL degrades to the inner store untouched; a TTL of zero
// must never turn into an unexpiring cache entry.
func NewCachedStore(inner AssignmentReader, client *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		client = nil
	}
	return &CachedStore{inner: inner, client: client, ttl: ttl}
}

func redisRolesKey(userID uuid.UUID, orgID *uuid.UUID) string {
	if orgID == nil {
		return "authz:roles:" + userID.String()
	}
	return "authz:roles:" + userID.String() + "/" + orgID.String()
}

// FindAssignments serves from Redis when possible and falls back to the
// inner store. Cache failures are treated as misses; a cache error must
// never turn into a resolution error, and never into extra privileges.
func (s *CachedStore) FindAssignments(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) ([]Assignment, error) {
	if s.client == nil {
		return s.inner.FindAssignments(ctx, userID, orgID)
	}
	key := redisRolesKey(userID, orgID)
	if payload, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var assignments []Assignment
		if err := json.Unmarshal(payload, &assignments); err == nil {
			return assignments, nil
		}
		_ = s.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		// Caller cancellation must propagate, not be retried against
		// the inner store.
		return nil, ctx.Err()
	}
	assignments, err := s.inner.FindAssignments(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(assignments); err == nil {
		_ = s.client.Set(ctx, key, payload, s.ttl).Err()
	}
	return assignments, nil
}

var _ AssignmentReader = (*CachedStore)(nil)
