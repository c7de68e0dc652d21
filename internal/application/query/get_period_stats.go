package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PERIOD STATS QUERY
// Per-day rollups over an inclusive date range, one row per day including
// days with no activity. The row count is always end-start+1, so charts can
// render the range without gap handling.
// ══════════════════════════════════════════════════════════════════════════════

// GetPeriodStatsQuery contains the query parameters.
type GetPeriodStatsQuery struct {
	// SessionID - the learner.
	SessionID string

	// StartDate - first day of the range, YYYY-MM-DD.
	StartDate string

	// EndDate - last day of the range, YYYY-MM-DD.
	EndDate string
}

// Validate validates the query and resolves the typed fields.
func (q GetPeriodStatsQuery) Validate() (shared.SessionID, shared.Date, shared.Date, error) {
	sessionID, err := shared.NewSessionID(q.SessionID)
	if err != nil {
		return "", shared.Date{}, shared.Date{}, err
	}
	start, err := shared.ParseDate(q.StartDate)
	if err != nil {
		return "", shared.Date{}, shared.Date{}, err
	}
	end, err := shared.ParseDate(q.EndDate)
	if err != nil {
		return "", shared.Date{}, shared.Date{}, err
	}
	if start.After(end) {
		return "", shared.Date{}, shared.Date{}, shared.ErrInvalidRange
	}
	return sessionID, start, end, nil
}

// GetPeriodStatsResult contains the query result.
type GetPeriodStatsResult struct {
	// SessionID - the learner.
	SessionID string `json:"session_id"`

	// StartDate - first day of the range.
	StartDate string `json:"start_date"`

	// EndDate - last day of the range.
	EndDate string `json:"end_date"`

	// Days - one rollup per day, ascending. Never empty for a valid range.
	Days []progress.DayStats `json:"days"`

	// TotalContent - content items learned over the range.
	TotalContent int `json:"total_content"`

	// TotalTerms - unique-per-day term names summed over the range.
	TotalTerms int `json:"total_terms"`

	// ActiveDays - days with any recorded activity.
	ActiveDays int `json:"active_days"`
}

// GetPeriodStatsHandler handles GetPeriodStatsQuery.
type GetPeriodStatsHandler struct {
	store      progress.Store
	aggregator *progress.Aggregator
}

// NewGetPeriodStatsHandler creates a new handler.
func NewGetPeriodStatsHandler(store progress.Store, aggregator *progress.Aggregator) *GetPeriodStatsHandler {
	return &GetPeriodStatsHandler{store: store, aggregator: aggregator}
}

// Handle executes the query.
func (h *GetPeriodStatsHandler) Handle(ctx context.Context, query GetPeriodStatsQuery) (*GetPeriodStatsResult, error) {
	sessionID, start, end, err := query.Validate()
	if err != nil {
		return nil, err
	}

	records, err := h.store.List(ctx, sessionID, progress.Filter{})
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("get_period_stats: failed to list records: %w", err)
	}

	days, err := h.aggregator.RangeStats(records, start, end)
	if err != nil {
		return nil, err
	}

	result := &GetPeriodStatsResult{
		SessionID: sessionID.String(),
		StartDate: start.String(),
		EndDate:   end.String(),
		Days:      days,
	}

	for _, day := range days {
		result.TotalContent += day.ContentCount
		result.TotalTerms += day.TermCount
		if day.ContentCount > 0 || day.TermCount > 0 || day.QuizTotal > 0 {
			result.ActiveDays++
		}
	}

	return result, nil
}
