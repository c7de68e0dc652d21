package progress

import (
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// StatsSnapshot is the cached aggregate for one session. It is always a pure
// function of the session's other records plus two monotone carry-overs
// (MaxStreak and Achievements); it can be rebuilt by full recomputation at
// any time and is never a source of truth.
type StatsSnapshot struct {
	// TotalLearned - content items learned across all days.
	TotalLearned int `json:"total_learned"`

	// TotalTermSets - distinct content indices with at least one learned
	// term. Term completion is tracked at content-item granularity, not by
	// counting individual term names.
	TotalTermSets int `json:"total_terms_learned"`

	// Streak - consecutive learning days ending at the most recent one.
	Streak int `json:"streak_days"`

	// MaxStreak - best streak ever observed. Never decreases.
	MaxStreak int `json:"max_streak"`

	// LastLearnedDate - most recent day with content learned.
	LastLearnedDate shared.Date `json:"last_learned_date,omitempty"`

	// LastQuizScore - percentage score of the most recent quiz attempt.
	LastQuizScore int `json:"quiz_score"`

	// TotalQuizCorrect - correct answers across all quiz attempts.
	TotalQuizCorrect int `json:"total_quiz_correct"`

	// TotalQuizQuestions - questions asked across all quiz attempts.
	TotalQuizQuestions int `json:"total_quiz_questions"`

	// CumulativeQuizScore - floor(100*TotalQuizCorrect/TotalQuizQuestions).
	CumulativeQuizScore int `json:"cumulative_quiz_score"`

	// Achievements - unlocked achievement IDs in unlock order. Append-only.
	Achievements []string `json:"achievements"`
}

// NewStatsSnapshot returns an empty snapshot.
func NewStatsSnapshot() *StatsSnapshot {
	return &StatsSnapshot{Achievements: []string{}}
}

// HasAchievement reports whether the achievement is already unlocked.
func (s *StatsSnapshot) HasAchievement(id string) bool {
	for _, a := range s.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// AddAchievement appends an achievement ID if not already present.
// Returns false when it was already unlocked.
func (s *StatsSnapshot) AddAchievement(id string) bool {
	if s.HasAchievement(id) {
		return false
	}
	s.Achievements = append(s.Achievements, id)
	return true
}

// CarryOver merges the monotone fields of a prior snapshot: achievements are
// never lost and MaxStreak never decreases, even after a gap resets the
// current streak.
func (s *StatsSnapshot) CarryOver(prior *StatsSnapshot) {
	if prior == nil {
		return
	}
	if prior.MaxStreak > s.MaxStreak {
		s.MaxStreak = prior.MaxStreak
	}
	for _, id := range prior.Achievements {
		s.AddAchievement(id)
	}
}

// Clone creates a deep copy of the snapshot.
func (s *StatsSnapshot) Clone() *StatsSnapshot {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Achievements = append([]string(nil), s.Achievements...)
	return &clone
}
