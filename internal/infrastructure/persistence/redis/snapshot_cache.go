package redis

import (
	"context"
	"errors"

	"github.com/ailearn-hub/learning-progress-hub/internal/application/query"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
	"github.com/ailearn-hub/learning-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT CACHE
// Caches the assembled stats dashboard view per session. Mutating commands
// invalidate eagerly; the TTL bounds staleness if an invalidation is missed.
// Implements query.StatsCache and command.SnapshotInvalidator.
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotCache caches stats views in Redis.
type SnapshotCache struct {
	cache *Cache
	log   *logger.Logger
}

// NewSnapshotCache creates a new SnapshotCache.
func NewSnapshotCache(cache *Cache, log *logger.Logger) *SnapshotCache {
	return &SnapshotCache{
		cache: cache,
		log:   log.With(logger.Component("redis.snapshot_cache")),
	}
}

// Get returns the cached view, or shared.ErrSnapshotNotFound on miss.
func (c *SnapshotCache) Get(ctx context.Context, sessionID shared.SessionID) (*query.StatsDTO, error) {
	var dto query.StatsDTO
	err := c.cache.Get(ctx, StatsKey(sessionID.String()), &dto)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrSnapshotNotFound
		}
		// A broken cache read degrades to a store read, it never fails the query.
		c.log.Warn("stats cache read failed", logger.SessionID(sessionID.String()), logger.Err(err))
		return nil, shared.ErrSnapshotNotFound
	}
	return &dto, nil
}

// Set stores the view with the default stats TTL.
func (c *SnapshotCache) Set(ctx context.Context, sessionID shared.SessionID, stats *query.StatsDTO) error {
	return c.cache.Set(ctx, StatsKey(sessionID.String()), stats, TTLStatsCache)
}

// Invalidate drops the cached view for a session.
func (c *SnapshotCache) Invalidate(ctx context.Context, sessionID shared.SessionID) error {
	return c.cache.Delete(ctx, StatsKey(sessionID.String()))
}
