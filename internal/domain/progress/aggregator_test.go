package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

func date(t *testing.T, s string) shared.Date {
	t.Helper()
	d, err := shared.ParseDate(s)
	require.NoError(t, err)
	return d
}

func dailyRecord(t *testing.T, day string, indices ...int) *Record {
	t.Helper()
	r := NewDailyRecord("learner-1", date(t, day))
	for _, i := range indices {
		r.AddIndex(i)
	}
	return r
}

func termsRecord(t *testing.T, day string, contentIndex int, terms ...string) *Record {
	t.Helper()
	r := NewTermsRecord("learner-1", date(t, day), shared.ContentIndex(contentIndex))
	for _, term := range terms {
		r.AddTerm(term)
	}
	return r
}

func TestRecompute_Totals(t *testing.T) {
	agg := NewAggregator()
	records := []*Record{
		dailyRecord(t, "2024-07-18", 0, 1),
		dailyRecord(t, "2024-07-19", 2),
		termsRecord(t, "2024-07-18", 0, "goroutine", "channel"),
		termsRecord(t, "2024-07-19", 0, "mutex"),
		termsRecord(t, "2024-07-19", 2, "select"),
	}

	snapshot := agg.Recompute(records, nil)

	assert.Equal(t, 3, snapshot.TotalLearned)
	// Term sets count distinct content indices, not term names: indices 0 and 2.
	assert.Equal(t, 2, snapshot.TotalTermSets)
	assert.Equal(t, "2024-07-19", snapshot.LastLearnedDate.String())
}

func TestRecompute_StreakConsecutiveDays(t *testing.T) {
	agg := NewAggregator()
	records := []*Record{
		dailyRecord(t, "2024-07-18", 0),
		dailyRecord(t, "2024-07-19", 1),
		dailyRecord(t, "2024-07-20", 2),
	}

	snapshot := agg.Recompute(records, nil)

	assert.Equal(t, 3, snapshot.Streak)
	assert.Equal(t, 3, snapshot.MaxStreak)
}

func TestRecompute_StreakBrokenByGap(t *testing.T) {
	agg := NewAggregator()
	records := []*Record{
		dailyRecord(t, "2024-07-15", 0),
		dailyRecord(t, "2024-07-16", 1),
		// gap on the 17th
		dailyRecord(t, "2024-07-18", 2),
	}

	snapshot := agg.Recompute(records, nil)

	// The streak walks back from the most recent learning day and stops at
	// the first missing one.
	assert.Equal(t, 1, snapshot.Streak)
}

func TestRecompute_MaxStreakCarriesOver(t *testing.T) {
	agg := NewAggregator()
	prior := NewStatsSnapshot()
	prior.MaxStreak = 9

	snapshot := agg.Recompute([]*Record{dailyRecord(t, "2024-07-18", 0)}, prior)

	assert.Equal(t, 1, snapshot.Streak)
	assert.Equal(t, 9, snapshot.MaxStreak)
}

func TestRecompute_AchievementsCarryOver(t *testing.T) {
	agg := NewAggregator()
	prior := NewStatsSnapshot()
	prior.AddAchievement("first_learn")
	prior.AddAchievement("beginner")

	snapshot := agg.Recompute(nil, prior)

	assert.Equal(t, []string{"first_learn", "beginner"}, snapshot.Achievements)
	assert.Equal(t, 0, snapshot.TotalLearned)
}

func TestRecompute_QuizAggregation(t *testing.T) {
	agg := NewAggregator()
	records := []*Record{
		NewQuizRecord("learner-1", date(t, "2024-07-18"), 1, 8, 10),
		NewQuizRecord("learner-1", date(t, "2024-07-19"), 1, 5, 10),
		NewQuizRecord("learner-1", date(t, "2024-07-19"), 2, 13, 20),
	}

	snapshot := agg.Recompute(records, nil)

	assert.Equal(t, 26, snapshot.TotalQuizCorrect)
	assert.Equal(t, 40, snapshot.TotalQuizQuestions)
	assert.Equal(t, 65, snapshot.CumulativeQuizScore)
	// Last quiz is ordered by (date, sequence): 13/20 on the 19th.
	assert.Equal(t, 65, snapshot.LastQuizScore)
}

func TestRecompute_EmptyRecordsCountZero(t *testing.T) {
	agg := NewAggregator()
	records := []*Record{
		NewDailyRecord("learner-1", date(t, "2024-07-18")), // no indices
		NewTermsRecord("learner-1", date(t, "2024-07-18"), 0),
		{SessionID: "learner-1", Key: QuizKey(date(t, "2024-07-18"), 1)}, // nil quiz payload
	}

	snapshot := agg.Recompute(records, nil)

	assert.Equal(t, 0, snapshot.TotalLearned)
	assert.Equal(t, 0, snapshot.TotalTermSets)
	assert.Equal(t, 0, snapshot.Streak)
	assert.True(t, snapshot.LastLearnedDate.IsZero())
}

func TestRecompute_Deterministic(t *testing.T) {
	agg := NewAggregator()
	records := []*Record{
		dailyRecord(t, "2024-07-18", 0, 1, 2),
		termsRecord(t, "2024-07-18", 1, "map", "slice"),
		NewQuizRecord("learner-1", date(t, "2024-07-18"), 1, 9, 10),
	}

	first := agg.Recompute(records, nil)
	second := agg.Recompute(records, first)
	third := agg.Recompute(records, second)

	assert.Equal(t, first.TotalLearned, third.TotalLearned)
	assert.Equal(t, first.TotalTermSets, third.TotalTermSets)
	assert.Equal(t, first.Streak, third.Streak)
	assert.Equal(t, first.CumulativeQuizScore, third.CumulativeQuizScore)
}

func TestDayStats_TermCountVsTermSetCount(t *testing.T) {
	agg := NewAggregator()
	records := []*Record{
		termsRecord(t, "2024-07-18", 0, "goroutine", "channel"),
		termsRecord(t, "2024-07-18", 1, "channel", "mutex"),
		termsRecord(t, "2024-07-19", 0, "defer"),
	}

	day := agg.DayStats(records, date(t, "2024-07-18"))

	// Unique term names unioned across content items: goroutine, channel, mutex.
	assert.Equal(t, 3, day.TermCount)
	// Distinct content indices with terms: 0 and 1.
	assert.Equal(t, 2, day.TermSetCount)
}

func TestDayStats_QuizRollup(t *testing.T) {
	agg := NewAggregator()
	records := []*Record{
		NewQuizRecord("learner-1", date(t, "2024-07-18"), 1, 3, 5),
		NewQuizRecord("learner-1", date(t, "2024-07-18"), 2, 10, 15),
		NewQuizRecord("learner-1", date(t, "2024-07-19"), 1, 0, 10),
	}

	day := agg.DayStats(records, date(t, "2024-07-18"))

	assert.Equal(t, 13, day.QuizCorrect)
	assert.Equal(t, 20, day.QuizTotal)
	assert.Equal(t, 65, day.QuizScore)
}

func TestRangeStats_AscendingInclusive(t *testing.T) {
	agg := NewAggregator()
	records := []*Record{
		dailyRecord(t, "2024-07-18", 0),
		dailyRecord(t, "2024-07-20", 1, 2),
	}

	days, err := agg.RangeStats(records, date(t, "2024-07-18"), date(t, "2024-07-20"))
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, "2024-07-18", days[0].Date.String())
	assert.Equal(t, 1, days[0].ContentCount)

	// Day without records yields a zero row, not a hole.
	assert.Equal(t, "2024-07-19", days[1].Date.String())
	assert.Equal(t, 0, days[1].ContentCount)

	assert.Equal(t, "2024-07-20", days[2].Date.String())
	assert.Equal(t, 2, days[2].ContentCount)
}

func TestRangeStats_SingleDay(t *testing.T) {
	agg := NewAggregator()

	days, err := agg.RangeStats(nil, date(t, "2024-07-18"), date(t, "2024-07-18"))
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestRangeStats_InvalidRange(t *testing.T) {
	agg := NewAggregator()

	_, err := agg.RangeStats(nil, date(t, "2024-07-20"), date(t, "2024-07-18"))
	assert.ErrorIs(t, err, shared.ErrInvalidRange)
}
