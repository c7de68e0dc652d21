package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
)

func TestEvaluate_FirstLearn(t *testing.T) {
	engine := NewEngine()
	snapshot := progress.NewStatsSnapshot()
	snapshot.TotalLearned = 1

	all, unlocked := engine.Evaluate(snapshot)

	assert.Equal(t, []string{"first_learn"}, unlocked)
	assert.Equal(t, []string{"first_learn"}, all)
}

func TestEvaluate_ContentTiersUnlockInOrder(t *testing.T) {
	engine := NewEngine()
	snapshot := progress.NewStatsSnapshot()
	snapshot.TotalLearned = 10

	_, unlocked := engine.Evaluate(snapshot)

	assert.Equal(t, []string{"first_learn", "beginner", "learner", "first_10"}, unlocked)
}

func TestEvaluate_Idempotent(t *testing.T) {
	engine := NewEngine()
	snapshot := progress.NewStatsSnapshot()
	snapshot.TotalLearned = 5
	snapshot.Streak = 3

	_, first := engine.Evaluate(snapshot)
	assert.NotEmpty(t, first)

	all, second := engine.Evaluate(snapshot)
	assert.Empty(t, second)
	assert.Equal(t, []string{"first_learn", "beginner", "learner", "three_day_streak"}, all)
}

func TestEvaluate_StreakTiers(t *testing.T) {
	engine := NewEngine()
	snapshot := progress.NewStatsSnapshot()
	snapshot.Streak = 7

	_, unlocked := engine.Evaluate(snapshot)

	assert.Equal(t, []string{"three_day_streak", "week_streak"}, unlocked)
}

func TestEvaluate_QuizTiersUseLastScore(t *testing.T) {
	engine := NewEngine()

	snapshot := progress.NewStatsSnapshot()
	snapshot.LastQuizScore = 80
	_, unlocked := engine.Evaluate(snapshot)
	assert.Equal(t, []string{"quiz_beginner", "quiz_master"}, unlocked)

	perfect := progress.NewStatsSnapshot()
	perfect.LastQuizScore = 100
	_, unlocked = engine.Evaluate(perfect)
	assert.Equal(t, []string{"quiz_beginner", "quiz_master", "perfect_quiz"}, unlocked)

	// 59 is below every quiz tier
	low := progress.NewStatsSnapshot()
	low.LastQuizScore = 59
	_, unlocked = engine.Evaluate(low)
	assert.Empty(t, unlocked)
}

func TestEvaluate_TermTiers(t *testing.T) {
	engine := NewEngine()
	snapshot := progress.NewStatsSnapshot()
	snapshot.TotalTermSets = 10

	_, unlocked := engine.Evaluate(snapshot)

	assert.Equal(t, []string{"first_term", "term_collector", "term_master"}, unlocked)
}

func TestEvaluate_EarlierBadgesNeverRemoved(t *testing.T) {
	engine := NewEngine()
	snapshot := progress.NewStatsSnapshot()
	snapshot.Streak = 3
	engine.Evaluate(snapshot)

	// Streak later drops; the badge stays.
	snapshot.Streak = 0
	all, unlocked := engine.Evaluate(snapshot)

	assert.Empty(t, unlocked)
	assert.Contains(t, all, "three_day_streak")
}

func TestEvaluate_CustomRuleTable(t *testing.T) {
	engine := NewEngineWithRules([]Rule{
		{StatContentLearned, 2, "custom_badge"},
	})
	snapshot := progress.NewStatsSnapshot()
	snapshot.TotalLearned = 2

	all, unlocked := engine.Evaluate(snapshot)

	assert.Equal(t, []string{"custom_badge"}, unlocked)
	assert.Equal(t, []string{"custom_badge"}, all)
}

func TestRules_TableShape(t *testing.T) {
	rules := Rules()
	assert.Len(t, rules, 15)

	seen := make(map[string]bool)
	for _, r := range rules {
		assert.False(t, seen[r.ID], "duplicate rule id %s", r.ID)
		seen[r.ID] = true
		assert.Positive(t, r.Threshold)
	}
}
