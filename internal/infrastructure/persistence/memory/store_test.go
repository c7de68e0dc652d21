package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

func day(t *testing.T, s string) shared.Date {
	t.Helper()
	d, err := shared.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestRecordStore_PutGet(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	record := progress.NewDailyRecord("learner-1", day(t, "2024-07-20"))
	record.AddIndex(1)
	require.NoError(t, store.Put(ctx, record))

	got, err := store.Get(ctx, "learner-1", progress.DailyKey(day(t, "2024-07-20")))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got.Indices)
}

func TestRecordStore_GetNotFound(t *testing.T) {
	store := NewRecordStore()

	_, err := store.Get(context.Background(), "learner-1", progress.StatsKey())
	assert.ErrorIs(t, err, shared.ErrRecordNotFound)
	assert.True(t, shared.IsNotFound(err))
}

func TestRecordStore_PutReplacesByKey(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	d := day(t, "2024-07-20")

	first := progress.NewDailyRecord("learner-1", d)
	first.AddIndex(1)
	require.NoError(t, store.Put(ctx, first))

	second := progress.NewDailyRecord("learner-1", d)
	second.AddIndex(1)
	second.AddIndex(2)
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx, "learner-1", progress.DailyKey(d))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got.Indices)
	assert.Equal(t, 1, store.Len())
}

func TestRecordStore_ListFilters(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	daily := progress.NewDailyRecord("learner-1", day(t, "2024-07-20"))
	daily.AddIndex(0)
	require.NoError(t, store.Put(ctx, daily))
	require.NoError(t, store.Put(ctx, progress.NewQuizRecord("learner-1", day(t, "2024-07-20"), 1, 3, 5)))
	require.NoError(t, store.Put(ctx, progress.NewQuizRecord("learner-1", day(t, "2024-07-19"), 1, 4, 5)))

	all, err := store.List(ctx, "learner-1", progress.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	quizzes, err := store.List(ctx, "learner-1", progress.Filter{Kind: progress.KindQuiz})
	require.NoError(t, err)
	assert.Len(t, quizzes, 2)

	todayQuizzes, err := store.List(ctx, "learner-1", progress.Filter{Kind: progress.KindQuiz, Date: day(t, "2024-07-20")})
	require.NoError(t, err)
	assert.Len(t, todayQuizzes, 1)
}

func TestRecordStore_MutatingResultsDoesNotCorruptStore(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()
	d := day(t, "2024-07-20")

	record := progress.NewDailyRecord("learner-1", d)
	record.AddIndex(1)
	require.NoError(t, store.Put(ctx, record))

	// Mutating what Put received and what Get returned must not leak in.
	record.AddIndex(99)
	got, err := store.Get(ctx, "learner-1", progress.DailyKey(d))
	require.NoError(t, err)
	got.AddIndex(98)

	fresh, err := store.Get(ctx, "learner-1", progress.DailyKey(d))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, fresh.Indices)
}

func TestRecordStore_Sessions(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, progress.NewDailyRecord("b-learner", day(t, "2024-07-20"))))
	require.NoError(t, store.Put(ctx, progress.NewDailyRecord("a-learner", day(t, "2024-07-20"))))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []shared.SessionID{"a-learner", "b-learner"}, sessions)
}
