// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMPUTE STATS
// Every mutating operation triggers a full recomputation of the session's
// snapshot - there is no incremental update path. The recompute re-reads all
// of the session's records, derives fresh totals, carries over the monotone
// fields from the prior snapshot, and persists the result.
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotInvalidator drops any cached stats view for a session. Implemented
// by the Redis snapshot cache; a nil invalidator is a no-op.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, sessionID shared.SessionID) error
}

// RecomputeStatsHandler rebuilds and persists a session's stats snapshot.
type RecomputeStatsHandler struct {
	store      progress.Store
	aggregator *progress.Aggregator
	cache      SnapshotInvalidator
	events     shared.EventPublisher
}

// NewRecomputeStatsHandler creates a new RecomputeStatsHandler.
// cache and events may be nil.
func NewRecomputeStatsHandler(
	store progress.Store,
	aggregator *progress.Aggregator,
	cache SnapshotInvalidator,
	events shared.EventPublisher,
) *RecomputeStatsHandler {
	return &RecomputeStatsHandler{
		store:      store,
		aggregator: aggregator,
		cache:      cache,
		events:     events,
	}
}

// Handle recomputes the snapshot from raw records and persists it.
func (h *RecomputeStatsHandler) Handle(ctx context.Context, sessionID shared.SessionID) (*progress.StatsSnapshot, error) {
	if sessionID.IsEmpty() {
		return nil, shared.ErrSessionEmpty
	}

	records, err := h.store.List(ctx, sessionID, progress.Filter{})
	if err != nil {
		return nil, fmt.Errorf("recompute_stats: failed to list records: %w", err)
	}

	var prior *progress.StatsSnapshot
	for _, r := range records {
		if r.Key.Kind == progress.KindStats && r.Stats != nil {
			prior = r.Stats
			break
		}
	}

	snapshot := h.aggregator.Recompute(records, prior)

	if err := h.store.Put(ctx, progress.NewStatsRecord(sessionID, snapshot)); err != nil {
		return nil, fmt.Errorf("recompute_stats: failed to persist snapshot: %w", err)
	}

	if h.cache != nil {
		// A stale cached view is tolerable; a failed invalidation is not fatal.
		_ = h.cache.Invalidate(ctx, sessionID)
	}

	if h.events != nil {
		_ = h.events.Publish(shared.NewStatsRecomputedEvent(
			sessionID.String(),
			snapshot.TotalLearned,
			snapshot.TotalTermSets,
			snapshot.Streak,
			snapshot.MaxStreak,
		))
	}

	return snapshot, nil
}
