package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/achievement"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
	"github.com/ailearn-hub/learning-progress-hub/internal/infrastructure/persistence/memory"
)

// fakeInvalidator records cache invalidations.
type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(_ context.Context, _ shared.SessionID) error {
	f.calls++
	return nil
}

type fixture struct {
	store       *memory.RecordStore
	clock       progress.FixedClock
	invalidator *fakeInvalidator

	recompute         *RecomputeStatsHandler
	recordContent     *RecordContentLearnedHandler
	recordTerm        *RecordTermLearnedHandler
	recordQuiz        *RecordQuizResultHandler
	checkAchievements *CheckAchievementsHandler
	setStats          *SetStatsHandler
}

func newFixture(t *testing.T, today string) *fixture {
	t.Helper()
	date, err := shared.ParseDate(today)
	require.NoError(t, err)

	f := &fixture{
		store:       memory.NewRecordStore(),
		clock:       progress.FixedClock{Date: date},
		invalidator: &fakeInvalidator{},
	}

	f.recompute = NewRecomputeStatsHandler(f.store, progress.NewAggregator(), f.invalidator, nil)
	f.checkAchievements = NewCheckAchievementsHandler(f.store, achievement.NewEngine(), f.recompute, f.invalidator, nil)
	f.recordContent = NewRecordContentLearnedHandler(f.store, f.recompute, nil)
	f.recordTerm = NewRecordTermLearnedHandler(f.store, f.recompute, nil)
	f.recordQuiz = NewRecordQuizResultHandler(f.store, f.clock, f.recompute, f.checkAchievements, nil)
	f.setStats = NewSetStatsHandler(f.store, f.invalidator, nil)
	return f
}

// ─────────────────────────────────────────────────────────────────────────────
// RecordContentLearned
// ─────────────────────────────────────────────────────────────────────────────

func TestRecordContent_FirstTime(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	result, err := f.recordContent.Handle(ctx, RecordContentLearnedCommand{
		SessionID: "learner-1", Date: "2024-07-20", ItemIndex: 0,
	})
	require.NoError(t, err)

	assert.True(t, result.FirstTime)
	assert.Equal(t, 1, result.Snapshot.TotalLearned)
	assert.Equal(t, 1, result.Snapshot.Streak)
	assert.Equal(t, "2024-07-20", result.Snapshot.LastLearnedDate.String())
}

func TestRecordContent_DuplicateIsNoOp(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()
	cmd := RecordContentLearnedCommand{SessionID: "learner-1", Date: "2024-07-20", ItemIndex: 3}

	first, err := f.recordContent.Handle(ctx, cmd)
	require.NoError(t, err)
	second, err := f.recordContent.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.True(t, first.FirstTime)
	assert.False(t, second.FirstTime)
	assert.Equal(t, 1, second.Snapshot.TotalLearned)
}

func TestRecordContent_Validation(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	_, err := f.recordContent.Handle(ctx, RecordContentLearnedCommand{SessionID: "", Date: "2024-07-20"})
	assert.True(t, shared.IsValidation(err))

	_, err = f.recordContent.Handle(ctx, RecordContentLearnedCommand{SessionID: "learner-1", Date: "20/07/2024"})
	assert.True(t, shared.IsValidation(err))

	_, err = f.recordContent.Handle(ctx, RecordContentLearnedCommand{SessionID: "learner-1", Date: "2024-07-20", ItemIndex: -1})
	assert.ErrorIs(t, err, shared.ErrNegativeIndex)
}

func TestRecordContent_RecomputesSnapshotOnEveryWrite(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.recordContent.Handle(ctx, RecordContentLearnedCommand{
			SessionID: "learner-1", Date: "2024-07-20", ItemIndex: i,
		})
		require.NoError(t, err)
	}

	record, err := f.store.Get(ctx, "learner-1", progress.StatsKey())
	require.NoError(t, err)
	require.NotNil(t, record.Stats)
	assert.Equal(t, 3, record.Stats.TotalLearned)
	assert.Equal(t, 3, f.invalidator.calls)
}

// ─────────────────────────────────────────────────────────────────────────────
// RecordTermLearned
// ─────────────────────────────────────────────────────────────────────────────

func TestRecordTerm_FirstTimeAndDuplicate(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()
	cmd := RecordTermLearnedCommand{
		SessionID: "learner-1", Date: "2024-07-20", ContentIndex: 0, Term: "goroutine",
	}

	first, err := f.recordTerm.Handle(ctx, cmd)
	require.NoError(t, err)
	second, err := f.recordTerm.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.True(t, first.FirstTime)
	assert.False(t, second.FirstTime)
	assert.Equal(t, 1, second.Snapshot.TotalTermSets)
}

func TestRecordTerm_TermSetsCountContentIndices(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	for _, term := range []string{"goroutine", "channel", "mutex"} {
		_, err := f.recordTerm.Handle(ctx, RecordTermLearnedCommand{
			SessionID: "learner-1", Date: "2024-07-20", ContentIndex: 0, Term: term,
		})
		require.NoError(t, err)
	}
	result, err := f.recordTerm.Handle(ctx, RecordTermLearnedCommand{
		SessionID: "learner-1", Date: "2024-07-20", ContentIndex: 1, Term: "select",
	})
	require.NoError(t, err)

	// Three terms on index 0 and one on index 1 make two term sets.
	assert.Equal(t, 2, result.Snapshot.TotalTermSets)
}

func TestRecordTerm_EmptyTermRejected(t *testing.T) {
	f := newFixture(t, "2024-07-20")

	_, err := f.recordTerm.Handle(context.Background(), RecordTermLearnedCommand{
		SessionID: "learner-1", Date: "2024-07-20", ContentIndex: 0, Term: "   ",
	})
	assert.ErrorIs(t, err, shared.ErrEmptyTerm)
}

// ─────────────────────────────────────────────────────────────────────────────
// RecordQuizResult
// ─────────────────────────────────────────────────────────────────────────────

func TestRecordQuiz_SequenceNumbering(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	first, err := f.recordQuiz.Handle(ctx, RecordQuizResultCommand{SessionID: "learner-1", Correct: 3, Total: 5})
	require.NoError(t, err)
	second, err := f.recordQuiz.Handle(ctx, RecordQuizResultCommand{SessionID: "learner-1", Correct: 4, Total: 5})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, 2, second.Sequence)
	assert.Equal(t, "2024-07-20", first.Date.String())
	assert.Equal(t, 60, first.Score)
	assert.Equal(t, 80, second.Score)
}

func TestRecordQuiz_UnlocksAchievements(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	result, err := f.recordQuiz.Handle(ctx, RecordQuizResultCommand{SessionID: "learner-1", Correct: 10, Total: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"quiz_beginner", "quiz_master", "perfect_quiz"}, result.NewAchievements)
	assert.Equal(t, 100, result.Snapshot.LastQuizScore)

	// A second, weaker attempt unlocks nothing new and removes nothing.
	result, err = f.recordQuiz.Handle(ctx, RecordQuizResultCommand{SessionID: "learner-1", Correct: 0, Total: 10})
	require.NoError(t, err)
	assert.Empty(t, result.NewAchievements)
	assert.Contains(t, result.Snapshot.Achievements, "perfect_quiz")
}

func TestRecordQuiz_CumulativeTotals(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	_, err := f.recordQuiz.Handle(ctx, RecordQuizResultCommand{SessionID: "learner-1", Correct: 8, Total: 10})
	require.NoError(t, err)
	result, err := f.recordQuiz.Handle(ctx, RecordQuizResultCommand{SessionID: "learner-1", Correct: 5, Total: 10})
	require.NoError(t, err)

	assert.Equal(t, 13, result.Snapshot.TotalQuizCorrect)
	assert.Equal(t, 20, result.Snapshot.TotalQuizQuestions)
	assert.Equal(t, 65, result.Snapshot.CumulativeQuizScore)
	assert.Equal(t, 50, result.Snapshot.LastQuizScore)
}

func TestRecordQuiz_Validation(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	_, err := f.recordQuiz.Handle(ctx, RecordQuizResultCommand{SessionID: "learner-1", Correct: -1, Total: 5})
	assert.True(t, shared.IsValidation(err))

	_, err = f.recordQuiz.Handle(ctx, RecordQuizResultCommand{SessionID: "learner-1", Correct: 6, Total: 5})
	assert.True(t, shared.IsValidation(err))

	// Zero total is a legal attempt that scores 0.
	result, err := f.recordQuiz.Handle(ctx, RecordQuizResultCommand{SessionID: "learner-1", Correct: 0, Total: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
}

// ─────────────────────────────────────────────────────────────────────────────
// CheckAchievements
// ─────────────────────────────────────────────────────────────────────────────

func TestCheckAchievements_RecomputesWhenNoSnapshot(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	// Seed raw records without ever writing a snapshot.
	daily := progress.NewDailyRecord("learner-1", f.clock.Today())
	daily.AddIndex(0)
	require.NoError(t, f.store.Put(ctx, daily))

	result, err := f.checkAchievements.Handle(ctx, CheckAchievementsCommand{SessionID: "learner-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first_learn"}, result.NewAchievements)
	assert.Equal(t, 1, result.Snapshot.TotalLearned)
}

func TestCheckAchievements_PersistsUnlocks(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	_, err := f.recordContent.Handle(ctx, RecordContentLearnedCommand{
		SessionID: "learner-1", Date: "2024-07-20", ItemIndex: 0,
	})
	require.NoError(t, err)

	_, err = f.checkAchievements.Handle(ctx, CheckAchievementsCommand{SessionID: "learner-1"})
	require.NoError(t, err)

	record, err := f.store.Get(ctx, "learner-1", progress.StatsKey())
	require.NoError(t, err)
	assert.Contains(t, record.Stats.Achievements, "first_learn")
}

func TestCheckAchievements_Idempotent(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	_, err := f.recordContent.Handle(ctx, RecordContentLearnedCommand{
		SessionID: "learner-1", Date: "2024-07-20", ItemIndex: 0,
	})
	require.NoError(t, err)

	first, err := f.checkAchievements.Handle(ctx, CheckAchievementsCommand{SessionID: "learner-1"})
	require.NoError(t, err)
	second, err := f.checkAchievements.Handle(ctx, CheckAchievementsCommand{SessionID: "learner-1"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.NewAchievements)
	assert.Empty(t, second.NewAchievements)
	assert.Equal(t, first.Achievements, second.Achievements)
}

// ─────────────────────────────────────────────────────────────────────────────
// SetStats
// ─────────────────────────────────────────────────────────────────────────────

func TestSetStats_StoresVerbatim(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	snapshot := progress.NewStatsSnapshot()
	snapshot.TotalLearned = 42
	snapshot.Streak = 7
	snapshot.MaxStreak = 7

	stored, err := f.setStats.Handle(ctx, SetStatsCommand{SessionID: "learner-1", Snapshot: snapshot})
	require.NoError(t, err)
	assert.Equal(t, 42, stored.TotalLearned)

	record, err := f.store.Get(ctx, "learner-1", progress.StatsKey())
	require.NoError(t, err)
	assert.Equal(t, 42, record.Stats.TotalLearned)
	assert.Equal(t, 7, record.Stats.Streak)
	assert.Equal(t, 1, f.invalidator.calls)
}

func TestSetStats_NilSnapshotRejected(t *testing.T) {
	f := newFixture(t, "2024-07-20")

	_, err := f.setStats.Handle(context.Background(), SetStatsCommand{SessionID: "learner-1", Snapshot: nil})
	assert.True(t, shared.IsMalformedData(err))
}

func TestSetStats_NextRecomputeCarriesMonotoneFieldsOnly(t *testing.T) {
	f := newFixture(t, "2024-07-20")
	ctx := context.Background()

	imported := progress.NewStatsSnapshot()
	imported.TotalLearned = 99
	imported.MaxStreak = 30
	imported.AddAchievement("first_50")
	_, err := f.setStats.Handle(ctx, SetStatsCommand{SessionID: "learner-1", Snapshot: imported})
	require.NoError(t, err)

	// The next write rebuilds counts from raw records; only achievements and
	// max streak survive the import.
	result, err := f.recordContent.Handle(ctx, RecordContentLearnedCommand{
		SessionID: "learner-1", Date: "2024-07-20", ItemIndex: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Snapshot.TotalLearned)
	assert.Equal(t, 30, result.Snapshot.MaxStreak)
	assert.Contains(t, result.Snapshot.Achievements, "first_50")
}

// ─────────────────────────────────────────────────────────────────────────────
// RecomputeStats
// ─────────────────────────────────────────────────────────────────────────────

func TestRecompute_EmptySessionID(t *testing.T) {
	f := newFixture(t, "2024-07-20")

	_, err := f.recompute.Handle(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrSessionEmpty)
}

func TestRecompute_EmptySessionYieldsZeroSnapshot(t *testing.T) {
	f := newFixture(t, "2024-07-20")

	snapshot, err := f.recompute.Handle(context.Background(), "learner-1")
	require.NoError(t, err)

	assert.Equal(t, 0, snapshot.TotalLearned)
	assert.Equal(t, 0, snapshot.Streak)
	assert.Empty(t, snapshot.Achievements)
}
