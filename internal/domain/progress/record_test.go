package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

func TestRecordKey_String(t *testing.T) {
	d := date(t, "2024-07-20")

	assert.Equal(t, "daily:2024-07-20", DailyKey(d).String())
	assert.Equal(t, "terms:2024-07-20:2", TermsKey(d, 2).String())
	assert.Equal(t, "quiz:2024-07-20:3", QuizKey(d, 3).String())
	assert.Equal(t, "stats", StatsKey().String())
}

func TestRecordKey_Validate(t *testing.T) {
	d := date(t, "2024-07-20")

	assert.NoError(t, DailyKey(d).Validate())
	assert.NoError(t, TermsKey(d, 0).Validate())
	assert.NoError(t, QuizKey(d, 1).Validate())
	assert.NoError(t, StatsKey().Validate())

	assert.Error(t, DailyKey(shared.Date{}).Validate())
	assert.Error(t, QuizKey(d, 0).Validate())
	assert.Error(t, RecordKey{Kind: "bogus", Date: d}.Validate())
	assert.True(t, shared.IsValidation(RecordKey{Kind: "bogus", Date: d}.Validate()))
}

func TestRecord_AddIndexIdempotent(t *testing.T) {
	r := NewDailyRecord("learner-1", date(t, "2024-07-20"))

	assert.True(t, r.AddIndex(5))
	assert.True(t, r.AddIndex(7))
	assert.False(t, r.AddIndex(5)) // already present
	assert.Equal(t, []int{5, 7}, r.Indices)
	assert.True(t, r.HasIndex(7))
	assert.False(t, r.HasIndex(9))
}

func TestRecord_AddTermIdempotent(t *testing.T) {
	r := NewTermsRecord("learner-1", date(t, "2024-07-20"), 0)

	assert.True(t, r.AddTerm("goroutine"))
	assert.False(t, r.AddTerm("goroutine"))
	assert.True(t, r.AddTerm("channel"))
	assert.Equal(t, []string{"goroutine", "channel"}, r.Terms)
}

func TestNewQuizResult_Score(t *testing.T) {
	assert.Equal(t, 65, NewQuizResult(13, 20).Score)
	assert.Equal(t, 100, NewQuizResult(10, 10).Score)
	assert.Equal(t, 0, NewQuizResult(0, 0).Score) // zero total guards division
}

func TestRecord_IsEmpty(t *testing.T) {
	d := date(t, "2024-07-20")

	assert.True(t, NewDailyRecord("learner-1", d).IsEmpty())
	assert.True(t, NewTermsRecord("learner-1", d, 0).IsEmpty())
	assert.False(t, NewQuizRecord("learner-1", d, 1, 3, 5).IsEmpty())

	daily := NewDailyRecord("learner-1", d)
	daily.AddIndex(0)
	assert.False(t, daily.IsEmpty())
}

func TestRecord_CloneIsDeep(t *testing.T) {
	r := NewDailyRecord("learner-1", date(t, "2024-07-20"))
	r.AddIndex(1)

	clone := r.Clone()
	clone.AddIndex(2)

	assert.Equal(t, []int{1}, r.Indices)
	assert.Equal(t, []int{1, 2}, clone.Indices)
}

func TestStatsSnapshot_AddAchievement(t *testing.T) {
	s := NewStatsSnapshot()

	assert.True(t, s.AddAchievement("first_learn"))
	assert.False(t, s.AddAchievement("first_learn"))
	assert.True(t, s.HasAchievement("first_learn"))
	assert.False(t, s.HasAchievement("beginner"))
}

func TestStatsSnapshot_CarryOverKeepsMonotoneFields(t *testing.T) {
	prior := NewStatsSnapshot()
	prior.MaxStreak = 14
	prior.AddAchievement("week_streak")

	s := NewStatsSnapshot()
	s.Streak = 2
	s.MaxStreak = 2
	s.CarryOver(prior)

	assert.Equal(t, 14, s.MaxStreak)
	assert.True(t, s.HasAchievement("week_streak"))
	assert.Equal(t, 2, s.Streak)

	// nil prior is a no-op
	fresh := NewStatsSnapshot()
	fresh.CarryOver(nil)
	assert.Equal(t, 0, fresh.MaxStreak)
}
