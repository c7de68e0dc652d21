package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATS QUERY
// The dashboard view: the stored snapshot enriched with live today-values and
// catalog completion percentages. Served read-through from the snapshot
// cache; a cache miss falls back to store + aggregator and repopulates.
// ══════════════════════════════════════════════════════════════════════════════

// StatsCache is a read-through cache for the dashboard view. Implementations
// must return shared.ErrSnapshotNotFound on miss.
type StatsCache interface {
	// Get returns the cached view, or shared.ErrSnapshotNotFound.
	Get(ctx context.Context, sessionID shared.SessionID) (*StatsDTO, error)

	// Set stores the view.
	Set(ctx context.Context, sessionID shared.SessionID, stats *StatsDTO) error
}

// Catalog describes the sizes of the learning catalog the percentages are
// computed against.
type Catalog struct {
	// ContentTotal - number of content items in the catalog.
	ContentTotal int

	// TermSetTotal - number of term sets in the catalog.
	TermSetTotal int
}

// GetStatsQuery contains the query parameters.
type GetStatsQuery struct {
	// SessionID - the learner.
	SessionID string
}

// StatsDTO - the dashboard view.
type StatsDTO struct {
	// SessionID - the learner.
	SessionID string `json:"session_id"`

	// TotalLearned - content items learned across all days.
	TotalLearned int `json:"total_learned"`

	// TotalTermSets - distinct content indices with learned terms.
	TotalTermSets int `json:"total_terms_learned"`

	// Streak - consecutive learning days ending at the most recent one.
	Streak int `json:"streak_days"`

	// MaxStreak - best streak ever observed.
	MaxStreak int `json:"max_streak"`

	// LastLearnedDate - most recent day with content learned, empty if none.
	LastLearnedDate string `json:"last_learned_date,omitempty"`

	// LastQuizScore - percentage score of the most recent quiz attempt.
	LastQuizScore int `json:"quiz_score"`

	// CumulativeQuizScore - percentage over all attempts combined.
	CumulativeQuizScore int `json:"cumulative_quiz_score"`

	// TotalQuizCorrect - correct answers across all attempts.
	TotalQuizCorrect int `json:"total_quiz_correct"`

	// TotalQuizQuestions - questions asked across all attempts.
	TotalQuizQuestions int `json:"total_quiz_questions"`

	// Achievements - unlocked achievement IDs in unlock order.
	Achievements []string `json:"achievements"`

	// TodayLearned - content items learned today.
	TodayLearned int `json:"today_learned"`

	// TodayTermSets - content items with terms learned today.
	TodayTermSets int `json:"today_term_sets"`

	// TodayQuizScore - percentage over today's quiz attempts.
	TodayQuizScore int `json:"today_quiz_score"`

	// ContentTotal - catalog size the content percentage is computed against.
	ContentTotal int `json:"content_total"`

	// TermSetTotal - catalog size the term percentage is computed against.
	TermSetTotal int `json:"term_set_total"`

	// ContentPercent - floor(100*TotalLearned/ContentTotal).
	ContentPercent int `json:"content_percent"`

	// TermSetPercent - floor(100*TotalTermSets/TermSetTotal).
	TermSetPercent int `json:"term_set_percent"`
}

// GetStatsHandler handles GetStatsQuery.
type GetStatsHandler struct {
	store      progress.Store
	aggregator *progress.Aggregator
	clock      progress.Clock
	cache      StatsCache
	catalog    Catalog
}

// NewGetStatsHandler creates a new handler. cache may be nil.
func NewGetStatsHandler(
	store progress.Store,
	aggregator *progress.Aggregator,
	clock progress.Clock,
	cache StatsCache,
	catalog Catalog,
) *GetStatsHandler {
	return &GetStatsHandler{
		store:      store,
		aggregator: aggregator,
		clock:      clock,
		cache:      cache,
		catalog:    catalog,
	}
}

// Handle executes the query. A session with no records yields an all-zero
// view, not an error.
func (h *GetStatsHandler) Handle(ctx context.Context, query GetStatsQuery) (*StatsDTO, error) {
	sessionID, err := shared.NewSessionID(query.SessionID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, sessionID); err == nil {
			return cached, nil
		}
	}

	records, err := h.store.List(ctx, sessionID, progress.Filter{})
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("get_stats: failed to list records: %w", err)
	}

	today := h.clock.Today()

	snapshot := h.snapshotFrom(records)
	todayStats := h.aggregator.DayStats(records, today)

	dto := &StatsDTO{
		SessionID:           sessionID.String(),
		TotalLearned:        snapshot.TotalLearned,
		TotalTermSets:       snapshot.TotalTermSets,
		Streak:              snapshot.Streak,
		MaxStreak:           snapshot.MaxStreak,
		LastQuizScore:       snapshot.LastQuizScore,
		CumulativeQuizScore: snapshot.CumulativeQuizScore,
		TotalQuizCorrect:    snapshot.TotalQuizCorrect,
		TotalQuizQuestions:  snapshot.TotalQuizQuestions,
		Achievements:        append([]string{}, snapshot.Achievements...),
		TodayLearned:        todayStats.ContentCount,
		TodayTermSets:       todayStats.TermSetCount,
		TodayQuizScore:      todayStats.QuizScore,
		ContentTotal:        h.catalog.ContentTotal,
		TermSetTotal:        h.catalog.TermSetTotal,
		ContentPercent:      shared.PercentOf(snapshot.TotalLearned, h.catalog.ContentTotal).Int(),
		TermSetPercent:      shared.PercentOf(snapshot.TotalTermSets, h.catalog.TermSetTotal).Int(),
	}
	if !snapshot.LastLearnedDate.IsZero() {
		dto.LastLearnedDate = snapshot.LastLearnedDate.String()
	}

	if h.cache != nil {
		// Best effort: a failed cache write must not fail the read.
		_ = h.cache.Set(ctx, sessionID, dto)
	}

	return dto, nil
}

// snapshotFrom returns the stored snapshot when present, otherwise derives
// one on the fly without persisting it.
func (h *GetStatsHandler) snapshotFrom(records []*progress.Record) *progress.StatsSnapshot {
	for _, r := range records {
		if r.Key.Kind == progress.KindStats && r.Stats != nil {
			return r.Stats
		}
	}
	return h.aggregator.Recompute(records, nil)
}
