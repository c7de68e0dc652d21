package command

import (
	"context"
	"fmt"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD QUIZ RESULT COMMAND
// Stores one quiz attempt under today's date. Attempts are numbered per day
// by counting the existing quiz records, starting at 1. Recording triggers a
// full stats recomputation followed by achievement evaluation.
// ══════════════════════════════════════════════════════════════════════════════

// RecordQuizResultCommand contains one quiz attempt.
type RecordQuizResultCommand struct {
	// SessionID - the learner.
	SessionID string

	// Correct - number of correct answers.
	Correct int

	// Total - number of questions asked. A zero total scores 0.
	Total int
}

// Validate validates the command.
func (c RecordQuizResultCommand) Validate() (shared.SessionID, error) {
	sessionID, err := shared.NewSessionID(c.SessionID)
	if err != nil {
		return "", err
	}
	if c.Correct < 0 || c.Total < 0 {
		return "", shared.NewDomainError("progress", "RecordQuiz", shared.ErrNegativeValue, "correct and total must be non-negative")
	}
	if c.Correct > c.Total {
		return "", shared.NewDomainError("progress", "RecordQuiz", shared.ErrValueOutOfRange, "correct cannot exceed total")
	}
	return sessionID, nil
}

// RecordQuizResultResult contains the result of the command.
type RecordQuizResultResult struct {
	// Date - the day the attempt was filed under.
	Date shared.Date

	// Sequence - the attempt's number within the day.
	Sequence int

	// Score - the attempt's percentage score.
	Score int

	// Snapshot - the recomputed stats snapshot, achievements included.
	Snapshot *progress.StatsSnapshot

	// NewAchievements - badges unlocked by this attempt.
	NewAchievements []string
}

// RecordQuizResultHandler handles RecordQuizResultCommand.
type RecordQuizResultHandler struct {
	store        progress.Store
	clock        progress.Clock
	recompute    *RecomputeStatsHandler
	achievements *CheckAchievementsHandler
	events       shared.EventPublisher
}

// NewRecordQuizResultHandler creates a new handler. events may be nil.
func NewRecordQuizResultHandler(
	store progress.Store,
	clock progress.Clock,
	recompute *RecomputeStatsHandler,
	achievements *CheckAchievementsHandler,
	events shared.EventPublisher,
) *RecordQuizResultHandler {
	return &RecordQuizResultHandler{
		store:        store,
		clock:        clock,
		recompute:    recompute,
		achievements: achievements,
		events:       events,
	}
}

// Handle stores the attempt, recomputes stats, and evaluates achievements.
func (h *RecordQuizResultHandler) Handle(ctx context.Context, cmd RecordQuizResultCommand) (*RecordQuizResultResult, error) {
	sessionID, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	today := h.clock.Today()

	// Sequence numbers are assigned per (session, day) by counting what is
	// already stored. Concurrent attempts for the same session may race here;
	// callers needing strict numbering must serialize per-session writes.
	existing, err := h.store.List(ctx, sessionID, progress.Filter{Kind: progress.KindQuiz, Date: today})
	if err != nil {
		return nil, fmt.Errorf("record_quiz: failed to count attempts: %w", err)
	}
	sequence := len(existing) + 1

	record := progress.NewQuizRecord(sessionID, today, sequence, cmd.Correct, cmd.Total)
	if err := h.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("record_quiz: failed to persist attempt: %w", err)
	}

	if _, err := h.recompute.Handle(ctx, sessionID); err != nil {
		return nil, err
	}

	unlocked, err := h.achievements.Handle(ctx, CheckAchievementsCommand{SessionID: cmd.SessionID})
	if err != nil {
		return nil, err
	}

	if h.events != nil {
		_ = h.events.Publish(shared.NewQuizSubmittedEvent(
			sessionID.String(), today.String(), sequence, cmd.Correct, cmd.Total, record.Quiz.Score,
		))
	}

	return &RecordQuizResultResult{
		Date:            today,
		Sequence:        sequence,
		Score:           record.Quiz.Score,
		Snapshot:        unlocked.Snapshot,
		NewAchievements: unlocked.NewAchievements,
	}, nil
}
