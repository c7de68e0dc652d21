package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD TERM LEARNED COMMAND
// Merges one learned term name into the (day, content item) term record.
// Term-set completion is counted at content-item granularity by the session
// aggregate; the stored term names feed the per-day period view.
// ══════════════════════════════════════════════════════════════════════════════

// RecordTermLearnedCommand contains the data to record a learned term.
type RecordTermLearnedCommand struct {
	// SessionID - the learner.
	SessionID string

	// Date - calendar day in YYYY-MM-DD form.
	Date string

	// ContentIndex - content item the term belongs to. Non-negative.
	ContentIndex int

	// Term - the term name. Required.
	Term string
}

// Validate validates the command and resolves the typed fields.
func (c RecordTermLearnedCommand) Validate() (shared.SessionID, shared.Date, shared.ContentIndex, string, error) {
	sessionID, err := shared.NewSessionID(c.SessionID)
	if err != nil {
		return "", shared.Date{}, 0, "", err
	}
	date, err := shared.ParseDate(c.Date)
	if err != nil {
		return "", shared.Date{}, 0, "", err
	}
	index, err := shared.NewContentIndex(c.ContentIndex)
	if err != nil {
		return "", shared.Date{}, 0, "", err
	}
	term := strings.TrimSpace(c.Term)
	if term == "" {
		return "", shared.Date{}, 0, "", shared.ErrEmptyTerm
	}
	return sessionID, date, index, term, nil
}

// RecordTermLearnedResult contains the result of the command.
type RecordTermLearnedResult struct {
	// FirstTime - false when the term was already in the record's set.
	FirstTime bool

	// Snapshot - the recomputed stats snapshot.
	Snapshot *progress.StatsSnapshot
}

// RecordTermLearnedHandler handles RecordTermLearnedCommand.
type RecordTermLearnedHandler struct {
	store     progress.Store
	recompute *RecomputeStatsHandler
	events    shared.EventPublisher
}

// NewRecordTermLearnedHandler creates a new handler. events may be nil.
func NewRecordTermLearnedHandler(
	store progress.Store,
	recompute *RecomputeStatsHandler,
	events shared.EventPublisher,
) *RecordTermLearnedHandler {
	return &RecordTermLearnedHandler{
		store:     store,
		recompute: recompute,
		events:    events,
	}
}

// Handle merges the term into its record, persists it, and triggers a full
// stats recomputation.
func (h *RecordTermLearnedHandler) Handle(ctx context.Context, cmd RecordTermLearnedCommand) (*RecordTermLearnedResult, error) {
	sessionID, date, index, term, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	record, err := h.store.Get(ctx, sessionID, progress.TermsKey(date, index))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("record_term: failed to load record: %w", err)
		}
		record = progress.NewTermsRecord(sessionID, date, index)
	}

	firstTime := record.AddTerm(term)

	if err := h.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("record_term: failed to persist record: %w", err)
	}

	snapshot, err := h.recompute.Handle(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if h.events != nil {
		_ = h.events.Publish(shared.NewTermLearnedEvent(
			sessionID.String(), date.String(), index.Int(), term, firstTime,
		))
	}

	return &RecordTermLearnedResult{
		FirstTime: firstTime,
		Snapshot:  snapshot,
	}, nil
}
