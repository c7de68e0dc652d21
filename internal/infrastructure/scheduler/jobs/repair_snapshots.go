// Package jobs contains the scheduled background jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/ailearn-hub/learning-progress-hub/internal/application/command"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPAIR SNAPSHOTS JOB
// Walks every known session and recomputes its stats snapshot from raw
// records. Snapshots are derived data, so recomputation is always safe; the
// job exists to heal drift from crashed writes or manual imports. Per-session
// failures are counted and logged, never abort the sweep.
// ══════════════════════════════════════════════════════════════════════════════

// RepairSnapshotsJob recomputes every session's stats snapshot.
type RepairSnapshotsJob struct {
	store     progress.Store
	recompute *command.RecomputeStatsHandler
	log       *logger.Logger
}

// NewRepairSnapshotsJob creates a new RepairSnapshotsJob.
func NewRepairSnapshotsJob(
	store progress.Store,
	recompute *command.RecomputeStatsHandler,
	log *logger.Logger,
) *RepairSnapshotsJob {
	return &RepairSnapshotsJob{
		store:     store,
		recompute: recompute,
		log:       log.With(logger.Component("jobs.repair_snapshots")),
	}
}

// Name implements scheduler.Job.
func (j *RepairSnapshotsJob) Name() string {
	return "repair_snapshots"
}

// Description implements scheduler.Job.
func (j *RepairSnapshotsJob) Description() string {
	return "Recomputes every session's stats snapshot from raw progress records"
}

// Run implements scheduler.Job.
func (j *RepairSnapshotsJob) Run(ctx context.Context) error {
	sessions, err := j.store.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("repair_snapshots: failed to list sessions: %w", err)
	}

	var failed int
	for _, sessionID := range sessions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := j.recompute.Handle(ctx, sessionID); err != nil {
			failed++
			j.log.Warn("snapshot repair failed for session",
				logger.SessionID(sessionID.String()),
				logger.Err(err),
			)
		}
	}

	j.log.Info("snapshot repair sweep finished",
		logger.Int("sessions", len(sessions)),
		logger.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("repair_snapshots: %d of %d sessions failed", failed, len(sessions))
	}
	return nil
}
