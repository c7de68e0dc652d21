package command

import (
	"context"
	"fmt"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET STATS COMMAND
// Overwrites the session's snapshot with client-supplied values, as-is. This
// is the import/restore path: no recomputation, no merging with the prior
// snapshot. The next mutating operation will recompute and carry over only
// the monotone fields of whatever was written here.
// ══════════════════════════════════════════════════════════════════════════════

// SetStatsCommand contains a full snapshot to store verbatim.
type SetStatsCommand struct {
	// SessionID - the learner.
	SessionID string

	// Snapshot - the snapshot to store. Required.
	Snapshot *progress.StatsSnapshot
}

// Validate validates the command.
func (c SetStatsCommand) Validate() (shared.SessionID, error) {
	sessionID, err := shared.NewSessionID(c.SessionID)
	if err != nil {
		return "", err
	}
	if c.Snapshot == nil {
		return "", shared.NewDomainError("progress", "SetStats", shared.ErrMalformedData, "snapshot is required")
	}
	return sessionID, nil
}

// SetStatsHandler handles SetStatsCommand.
type SetStatsHandler struct {
	store  progress.Store
	cache  SnapshotInvalidator
	events shared.EventPublisher
}

// NewSetStatsHandler creates a new handler. cache and events may be nil.
func NewSetStatsHandler(
	store progress.Store,
	cache SnapshotInvalidator,
	events shared.EventPublisher,
) *SetStatsHandler {
	return &SetStatsHandler{
		store:  store,
		cache:  cache,
		events: events,
	}
}

// Handle stores the snapshot verbatim and drops any cached view of it.
func (h *SetStatsHandler) Handle(ctx context.Context, cmd SetStatsCommand) (*progress.StatsSnapshot, error) {
	sessionID, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	snapshot := cmd.Snapshot.Clone()
	if snapshot.Achievements == nil {
		snapshot.Achievements = []string{}
	}

	if err := h.store.Put(ctx, progress.NewStatsRecord(sessionID, snapshot)); err != nil {
		return nil, fmt.Errorf("set_stats: failed to persist snapshot: %w", err)
	}

	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, sessionID)
	}

	if h.events != nil {
		_ = h.events.Publish(shared.NewStatsImportedEvent(
			sessionID.String(), snapshot.TotalLearned, snapshot.TotalTermSets,
		))
	}

	return snapshot, nil
}
