package progress

import (
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS AGGREGATOR
// Derives the stats snapshot and per-day rollups from raw records. All
// functions are pure: they never touch the store, so recomputation is safe to
// run repeatedly and costs O(records for the session) per call.
// ══════════════════════════════════════════════════════════════════════════════

// Aggregator recomputes derived totals from raw progress records.
type Aggregator struct{}

// NewAggregator creates a stats aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Recompute derives a fresh snapshot from the session's records. The streak
// counts back from the most recent learning date, so no reference day is
// needed. The prior snapshot contributes only its monotone fields
// (achievements, max streak); everything else is rebuilt from scratch. Empty
// and malformed records count as zero and never abort the computation.
func (a *Aggregator) Recompute(records []*Record, prior *StatsSnapshot) *StatsSnapshot {
	snapshot := NewStatsSnapshot()

	termSets := make(map[int]bool)
	learnedDates := make(map[string]shared.Date)
	var lastQuiz *Record

	for _, r := range records {
		switch r.Key.Kind {
		case KindDaily:
			if len(r.Indices) == 0 {
				continue
			}
			snapshot.TotalLearned += len(r.Indices)
			learnedDates[r.Key.Date.String()] = r.Key.Date
		case KindTerms:
			if len(r.Terms) == 0 {
				continue
			}
			termSets[r.Key.ContentIndex.Int()] = true
		case KindQuiz:
			if r.Quiz == nil {
				continue
			}
			snapshot.TotalQuizCorrect += r.Quiz.Correct
			snapshot.TotalQuizQuestions += r.Quiz.Total
			if lastQuiz == nil || quizAfter(r, lastQuiz) {
				lastQuiz = r
			}
		}
	}

	snapshot.TotalTermSets = len(termSets)
	snapshot.CumulativeQuizScore = shared.PercentOf(snapshot.TotalQuizCorrect, snapshot.TotalQuizQuestions).Int()

	if lastQuiz != nil {
		snapshot.LastQuizScore = lastQuiz.Quiz.Score
	}

	snapshot.Streak, snapshot.LastLearnedDate = a.streak(learnedDates)
	snapshot.MaxStreak = snapshot.Streak

	snapshot.CarryOver(prior)
	return snapshot
}

// quizAfter reports whether attempt a was recorded after attempt b,
// ordered by (date, sequence).
func quizAfter(a, b *Record) bool {
	if a.Key.Date.Equal(b.Key.Date) {
		return a.Key.Sequence > b.Key.Sequence
	}
	return a.Key.Date.After(b.Key.Date)
}

// streak counts consecutive learning days ending at the most recent one.
// Walking backwards from the latest date, the streak is the run of present
// days before the first missing one.
func (a *Aggregator) streak(learnedDates map[string]shared.Date) (int, shared.Date) {
	if len(learnedDates) == 0 {
		return 0, shared.Date{}
	}

	var last shared.Date
	for _, d := range learnedDates {
		if last.IsZero() || d.After(last) {
			last = d
		}
	}

	count := 0
	for cursor := last; ; cursor = cursor.Prev() {
		if _, ok := learnedDates[cursor.String()]; !ok {
			break
		}
		count++
	}

	return count, last
}

// ══════════════════════════════════════════════════════════════════════════════
// PER-DAY ROLLUPS
// ══════════════════════════════════════════════════════════════════════════════

// DayStats is one day's activity rollup.
type DayStats struct {
	// Date - the calendar day.
	Date shared.Date `json:"date"`

	// ContentCount - content items learned that day.
	ContentCount int `json:"content_count"`

	// TermCount - unique term names learned that day, unioned across all
	// content items. Note the asymmetry with the session-level aggregate,
	// which counts distinct content indices instead; both views are exposed.
	TermCount int `json:"term_count"`

	// TermSetCount - distinct content indices with terms learned that day
	// (the session-aggregate definition restricted to one day).
	TermSetCount int `json:"term_set_count"`

	// QuizScore - floor(100*QuizCorrect/QuizTotal) over the day's attempts.
	QuizScore int `json:"quiz_score"`

	// QuizCorrect - correct answers summed over the day's attempts.
	QuizCorrect int `json:"quiz_correct"`

	// QuizTotal - questions asked summed over the day's attempts.
	QuizTotal int `json:"quiz_total"`
}

// DayStats computes the rollup for a single calendar day.
func (a *Aggregator) DayStats(records []*Record, date shared.Date) DayStats {
	stats := DayStats{Date: date}
	termNames := make(map[string]bool)
	termSets := make(map[int]bool)

	for _, r := range records {
		if !r.Key.Date.Equal(date) {
			continue
		}
		switch r.Key.Kind {
		case KindDaily:
			stats.ContentCount += len(r.Indices)
		case KindTerms:
			if len(r.Terms) == 0 {
				continue
			}
			termSets[r.Key.ContentIndex.Int()] = true
			for _, t := range r.Terms {
				termNames[t] = true
			}
		case KindQuiz:
			if r.Quiz == nil {
				continue
			}
			stats.QuizCorrect += r.Quiz.Correct
			stats.QuizTotal += r.Quiz.Total
		}
	}

	stats.TermCount = len(termNames)
	stats.TermSetCount = len(termSets)
	stats.QuizScore = shared.PercentOf(stats.QuizCorrect, stats.QuizTotal).Int()
	return stats
}

// RangeStats computes per-day rollups for every day in the inclusive range,
// in ascending order. Days without records produce zero rows.
func (a *Aggregator) RangeStats(records []*Record, start, end shared.Date) ([]DayStats, error) {
	if start.After(end) {
		return nil, shared.ErrInvalidRange
	}

	var days []DayStats
	for cursor := start; !cursor.After(end); cursor = cursor.Next() {
		days = append(days, a.DayStats(records, cursor))
	}
	return days, nil
}
