// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ALL PROGRESS QUERY
// Returns the session's full raw record set grouped by kind: per-day learned
// indices, per-(day, content item) term sets, quiz attempts, and the current
// stats snapshot. This is the export/debug view - nothing is derived here.
// ══════════════════════════════════════════════════════════════════════════════

// GetAllProgressQuery contains the query parameters.
type GetAllProgressQuery struct {
	// SessionID - the learner.
	SessionID string
}

// DailyRecordDTO - one day's learned content indices.
type DailyRecordDTO struct {
	// Date - the calendar day.
	Date string `json:"date"`

	// Indices - learned content indices, in recording order.
	Indices []int `json:"indices"`
}

// TermRecordDTO - the terms learned for one (day, content item) pair.
type TermRecordDTO struct {
	// Date - the calendar day.
	Date string `json:"date"`

	// ContentIndex - the content item the terms belong to.
	ContentIndex int `json:"content_index"`

	// Terms - learned term names, in recording order.
	Terms []string `json:"terms"`
}

// QuizAttemptDTO - one quiz attempt.
type QuizAttemptDTO struct {
	// Date - the day the attempt was filed under.
	Date string `json:"date"`

	// Sequence - the attempt's number within the day, starting at 1.
	Sequence int `json:"sequence"`

	// Correct - correct answers.
	Correct int `json:"correct"`

	// Total - questions asked.
	Total int `json:"total"`

	// Score - floor(100*Correct/Total).
	Score int `json:"score"`
}

// GetAllProgressResult contains the query result.
type GetAllProgressResult struct {
	// SessionID - the learner.
	SessionID string `json:"session_id"`

	// Daily - per-day learned indices, ascending by date.
	Daily []DailyRecordDTO `json:"daily"`

	// Terms - per-(day, content item) term sets, ascending by (date, index).
	Terms []TermRecordDTO `json:"terms"`

	// Quizzes - quiz attempts, ascending by (date, sequence).
	Quizzes []QuizAttemptDTO `json:"quizzes"`

	// Stats - the current snapshot, nil when the session has none yet.
	Stats *progress.StatsSnapshot `json:"stats,omitempty"`
}

// GetAllProgressHandler handles GetAllProgressQuery.
type GetAllProgressHandler struct {
	store progress.Store
}

// NewGetAllProgressHandler creates a new handler.
func NewGetAllProgressHandler(store progress.Store) *GetAllProgressHandler {
	return &GetAllProgressHandler{store: store}
}

// Handle executes the query. A session with no records yields empty slices,
// not an error.
func (h *GetAllProgressHandler) Handle(ctx context.Context, query GetAllProgressQuery) (*GetAllProgressResult, error) {
	sessionID, err := shared.NewSessionID(query.SessionID)
	if err != nil {
		return nil, err
	}

	records, err := h.store.List(ctx, sessionID, progress.Filter{})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			records = nil
		} else {
			return nil, fmt.Errorf("get_progress: failed to list records: %w", err)
		}
	}

	result := &GetAllProgressResult{
		SessionID: sessionID.String(),
		Daily:     []DailyRecordDTO{},
		Terms:     []TermRecordDTO{},
		Quizzes:   []QuizAttemptDTO{},
	}

	for _, r := range records {
		switch r.Key.Kind {
		case progress.KindDaily:
			result.Daily = append(result.Daily, DailyRecordDTO{
				Date:    r.Key.Date.String(),
				Indices: append([]int(nil), r.Indices...),
			})
		case progress.KindTerms:
			result.Terms = append(result.Terms, TermRecordDTO{
				Date:         r.Key.Date.String(),
				ContentIndex: r.Key.ContentIndex.Int(),
				Terms:        append([]string(nil), r.Terms...),
			})
		case progress.KindQuiz:
			if r.Quiz == nil {
				continue
			}
			result.Quizzes = append(result.Quizzes, QuizAttemptDTO{
				Date:     r.Key.Date.String(),
				Sequence: r.Key.Sequence,
				Correct:  r.Quiz.Correct,
				Total:    r.Quiz.Total,
				Score:    r.Quiz.Score,
			})
		case progress.KindStats:
			if r.Stats != nil {
				result.Stats = r.Stats.Clone()
			}
		}
	}

	sort.Slice(result.Daily, func(i, j int) bool {
		return result.Daily[i].Date < result.Daily[j].Date
	})
	sort.Slice(result.Terms, func(i, j int) bool {
		if result.Terms[i].Date != result.Terms[j].Date {
			return result.Terms[i].Date < result.Terms[j].Date
		}
		return result.Terms[i].ContentIndex < result.Terms[j].ContentIndex
	})
	sort.Slice(result.Quizzes, func(i, j int) bool {
		if result.Quizzes[i].Date != result.Quizzes[j].Date {
			return result.Quizzes[i].Date < result.Quizzes[j].Date
		}
		return result.Quizzes[i].Sequence < result.Quizzes[j].Sequence
	})

	return result, nil
}
