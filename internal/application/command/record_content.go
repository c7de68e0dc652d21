package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD CONTENT LEARNED COMMAND
// Merges one learned content index into the day's record. Idempotent:
// re-recording an already-present index never increases any count.
// ══════════════════════════════════════════════════════════════════════════════

// RecordContentLearnedCommand contains the data to record a learned content item.
type RecordContentLearnedCommand struct {
	// SessionID - the learner.
	SessionID string

	// Date - calendar day in YYYY-MM-DD form.
	Date string

	// ItemIndex - index of the learned content item. Non-negative.
	ItemIndex int
}

// Validate validates the command and resolves the typed fields.
func (c RecordContentLearnedCommand) Validate() (shared.SessionID, shared.Date, shared.ContentIndex, error) {
	sessionID, err := shared.NewSessionID(c.SessionID)
	if err != nil {
		return "", shared.Date{}, 0, err
	}
	date, err := shared.ParseDate(c.Date)
	if err != nil {
		return "", shared.Date{}, 0, err
	}
	index, err := shared.NewContentIndex(c.ItemIndex)
	if err != nil {
		return "", shared.Date{}, 0, err
	}
	return sessionID, date, index, nil
}

// RecordContentLearnedResult contains the result of the command.
type RecordContentLearnedResult struct {
	// FirstTime - false when the index was already in the day's set.
	FirstTime bool

	// Snapshot - the recomputed stats snapshot.
	Snapshot *progress.StatsSnapshot
}

// RecordContentLearnedHandler handles RecordContentLearnedCommand.
type RecordContentLearnedHandler struct {
	store     progress.Store
	recompute *RecomputeStatsHandler
	events    shared.EventPublisher
}

// NewRecordContentLearnedHandler creates a new handler. events may be nil.
func NewRecordContentLearnedHandler(
	store progress.Store,
	recompute *RecomputeStatsHandler,
	events shared.EventPublisher,
) *RecordContentLearnedHandler {
	return &RecordContentLearnedHandler{
		store:     store,
		recompute: recompute,
		events:    events,
	}
}

// Handle merges the index into the day's record, persists it, and triggers a
// full stats recomputation.
func (h *RecordContentLearnedHandler) Handle(ctx context.Context, cmd RecordContentLearnedCommand) (*RecordContentLearnedResult, error) {
	sessionID, date, index, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	record, err := h.store.Get(ctx, sessionID, progress.DailyKey(date))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("record_content: failed to load record: %w", err)
		}
		record = progress.NewDailyRecord(sessionID, date)
	}

	firstTime := record.AddIndex(index.Int())

	if err := h.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("record_content: failed to persist record: %w", err)
	}

	snapshot, err := h.recompute.Handle(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if h.events != nil {
		_ = h.events.Publish(shared.NewContentLearnedEvent(
			sessionID.String(), date.String(), index.Int(), firstTime,
		))
	}

	return &RecordContentLearnedResult{
		FirstTime: firstTime,
		Snapshot:  snapshot,
	}, nil
}
