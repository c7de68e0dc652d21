package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailearn-hub/learning-progress-hub/internal/application/command"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
	"github.com/ailearn-hub/learning-progress-hub/internal/infrastructure/persistence/memory"
	"github.com/ailearn-hub/learning-progress-hub/pkg/logger"
)

func TestRepairSnapshotsJob_RebuildsEverySession(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	today, err := shared.ParseDate("2024-07-20")
	require.NoError(t, err)

	for _, session := range []shared.SessionID{"learner-1", "learner-2"} {
		daily := progress.NewDailyRecord(session, today)
		daily.AddIndex(0)
		require.NoError(t, store.Put(ctx, daily))
	}

	recompute := command.NewRecomputeStatsHandler(store, progress.NewAggregator(), nil, nil)
	job := NewRepairSnapshotsJob(store, recompute, logger.Default())

	assert.Equal(t, "repair_snapshots", job.Name())
	require.NoError(t, job.Run(ctx))

	for _, session := range []shared.SessionID{"learner-1", "learner-2"} {
		record, err := store.Get(ctx, session, progress.StatsKey())
		require.NoError(t, err)
		require.NotNil(t, record.Stats)
		assert.Equal(t, 1, record.Stats.TotalLearned)
	}
}

func TestRepairSnapshotsJob_EmptyStore(t *testing.T) {
	store := memory.NewRecordStore()
	recompute := command.NewRecomputeStatsHandler(store, progress.NewAggregator(), nil, nil)
	job := NewRepairSnapshotsJob(store, recompute, logger.Default())

	assert.NoError(t, job.Run(context.Background()))
}

func TestRepairSnapshotsJob_CancelledContext(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, progress.NewDailyRecord("learner-1", progress.SystemClock{}.Today())))

	recompute := command.NewRecomputeStatsHandler(store, progress.NewAggregator(), nil, nil)
	job := NewRepairSnapshotsJob(store, recompute, logger.Default())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, job.Run(cancelled), context.Canceled)
}
