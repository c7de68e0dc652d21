// Package achievement contains the badge rule table and the engine that
// evaluates it against a session's stats snapshot. Rules are declarative
// (stat, threshold, id) triples evaluated in a fixed order, so adding a tier
// never touches control flow.
package achievement

import (
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
)

// ══════════════════════════════════════════════════════════════════════════════
// RULE TABLE
// ══════════════════════════════════════════════════════════════════════════════

// Stat identifies which snapshot field a rule thresholds on.
type Stat string

const (
	// StatContentLearned - total content items learned.
	StatContentLearned Stat = "content_learned"

	// StatTermSets - total term sets learned.
	StatTermSets Stat = "term_sets"

	// StatStreak - current streak in days.
	StatStreak Stat = "streak"

	// StatQuizScore - last quiz attempt's percentage score.
	StatQuizScore Stat = "quiz_score"
)

// Rule unlocks one badge when a snapshot stat meets or exceeds its threshold.
type Rule struct {
	// Stat - the snapshot field to threshold on.
	Stat Stat

	// Threshold - minimum value that unlocks the badge.
	Threshold int

	// ID - the badge identifier recorded in the snapshot.
	ID string
}

// Rules returns the full rule table in evaluation order: content tiers, then
// term tiers, then streak tiers, then quiz-score tiers. Order is part of the
// contract - it fixes the unlock order of badges earned in the same pass.
func Rules() []Rule {
	return []Rule{
		// Content tiers
		{StatContentLearned, 1, "first_learn"},
		{StatContentLearned, 3, "beginner"},
		{StatContentLearned, 5, "learner"},
		{StatContentLearned, 10, "first_10"},
		{StatContentLearned, 20, "knowledge_seeker"},
		{StatContentLearned, 50, "first_50"},

		// Term tiers
		{StatTermSets, 1, "first_term"},
		{StatTermSets, 5, "term_collector"},
		{StatTermSets, 10, "term_master"},

		// Streak tiers
		{StatStreak, 3, "three_day_streak"},
		{StatStreak, 7, "week_streak"},
		{StatStreak, 14, "two_week_streak"},

		// Quiz tiers
		{StatQuizScore, 60, "quiz_beginner"},
		{StatQuizScore, 80, "quiz_master"},
		{StatQuizScore, 100, "perfect_quiz"},
	}
}

// statValue extracts the rule's stat from a snapshot.
func statValue(stat Stat, snapshot *progress.StatsSnapshot) int {
	switch stat {
	case StatContentLearned:
		return snapshot.TotalLearned
	case StatTermSets:
		return snapshot.TotalTermSets
	case StatStreak:
		return snapshot.Streak
	case StatQuizScore:
		return snapshot.LastQuizScore
	default:
		return 0
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENGINE
// ══════════════════════════════════════════════════════════════════════════════

// Engine evaluates the rule table against stats snapshots.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with the default rule table.
func NewEngine() *Engine {
	return &Engine{rules: Rules()}
}

// NewEngineWithRules creates an engine with a custom rule table.
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Evaluate appends every newly earned badge to the snapshot's achievement
// list and returns the full list plus the badges unlocked by this pass.
// Idempotent: a second pass over unchanged stats unlocks nothing, and badges
// already present are never removed or reordered.
func (e *Engine) Evaluate(snapshot *progress.StatsSnapshot) (all []string, unlocked []string) {
	for _, rule := range e.rules {
		if statValue(rule.Stat, snapshot) < rule.Threshold {
			continue
		}
		if snapshot.AddAchievement(rule.ID) {
			unlocked = append(unlocked, rule.ID)
		}
	}
	return snapshot.Achievements, unlocked
}
