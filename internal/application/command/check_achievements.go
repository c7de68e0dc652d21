package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/achievement"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK ACHIEVEMENTS COMMAND
// Evaluates the badge rule table against the session's current snapshot and
// persists any unlocks. Write-through: the achievements endpoint and the quiz
// flow share this handler. Evaluation is idempotent - a second pass over
// unchanged stats unlocks nothing.
// ══════════════════════════════════════════════════════════════════════════════

// CheckAchievementsCommand identifies the session to evaluate.
type CheckAchievementsCommand struct {
	// SessionID - the learner.
	SessionID string
}

// CheckAchievementsResult contains the evaluation outcome.
type CheckAchievementsResult struct {
	// Achievements - all unlocked badge IDs, in unlock order.
	Achievements []string

	// NewAchievements - badges unlocked by this evaluation.
	NewAchievements []string

	// Snapshot - the snapshot the evaluation ran against, unlocks included.
	Snapshot *progress.StatsSnapshot
}

// CheckAchievementsHandler handles CheckAchievementsCommand.
type CheckAchievementsHandler struct {
	store     progress.Store
	engine    *achievement.Engine
	recompute *RecomputeStatsHandler
	cache     SnapshotInvalidator
	events    shared.EventPublisher
}

// NewCheckAchievementsHandler creates a new handler. cache and events may be nil.
func NewCheckAchievementsHandler(
	store progress.Store,
	engine *achievement.Engine,
	recompute *RecomputeStatsHandler,
	cache SnapshotInvalidator,
	events shared.EventPublisher,
) *CheckAchievementsHandler {
	return &CheckAchievementsHandler{
		store:     store,
		engine:    engine,
		recompute: recompute,
		cache:     cache,
		events:    events,
	}
}

// Handle evaluates the rule table and persists any newly unlocked badges.
func (h *CheckAchievementsHandler) Handle(ctx context.Context, cmd CheckAchievementsCommand) (*CheckAchievementsResult, error) {
	sessionID, err := shared.NewSessionID(cmd.SessionID)
	if err != nil {
		return nil, err
	}

	snapshot, err := h.loadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	all, unlocked := h.engine.Evaluate(snapshot)

	if len(unlocked) > 0 {
		if err := h.store.Put(ctx, progress.NewStatsRecord(sessionID, snapshot)); err != nil {
			return nil, fmt.Errorf("check_achievements: failed to persist unlocks: %w", err)
		}
		if h.cache != nil {
			_ = h.cache.Invalidate(ctx, sessionID)
		}
		if h.events != nil {
			for _, id := range unlocked {
				_ = h.events.Publish(shared.NewAchievementUnlockedEvent(sessionID.String(), id))
			}
		}
	}

	return &CheckAchievementsResult{
		Achievements:    all,
		NewAchievements: unlocked,
		Snapshot:        snapshot,
	}, nil
}

// loadSnapshot returns the stored snapshot, recomputing it when the session
// has no snapshot record yet.
func (h *CheckAchievementsHandler) loadSnapshot(ctx context.Context, sessionID shared.SessionID) (*progress.StatsSnapshot, error) {
	record, err := h.store.Get(ctx, sessionID, progress.StatsKey())
	if err == nil && record.Stats != nil {
		return record.Stats, nil
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("check_achievements: failed to load snapshot: %w", err)
	}
	return h.recompute.Handle(ctx, sessionID)
}
