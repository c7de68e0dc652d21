// Package progress contains the domain model of the learning-progress engine:
// progress records, the stats snapshot, and the pure aggregation logic that
// derives the snapshot from raw records. This package has no dependencies
// outside the domain layer.
package progress

import (
	"fmt"
	"time"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD KEYS
// ══════════════════════════════════════════════════════════════════════════════

// RecordKind discriminates the variants stored in the progress table.
// It replaces prefix-encoded string keys with an explicit tag, so no record
// is ever classified by parsing its key.
type RecordKind string

const (
	// KindDaily holds the set of content indices learned on one calendar day.
	KindDaily RecordKind = "daily"

	// KindTerms holds the set of term names learned for one content item on
	// one calendar day.
	KindTerms RecordKind = "terms"

	// KindQuiz holds one quiz attempt. Attempts are numbered per day,
	// starting at 1.
	KindQuiz RecordKind = "quiz"

	// KindStats holds the cached stats snapshot. Singleton per session.
	KindStats RecordKind = "stats"
)

// IsValid checks that the kind is one of the known variants.
func (k RecordKind) IsValid() bool {
	switch k {
	case KindDaily, KindTerms, KindQuiz, KindStats:
		return true
	default:
		return false
	}
}

// RecordKey identifies one record within a session. Exactly one record exists
// per (session, key); writes merge into the existing payload.
type RecordKey struct {
	// Kind - the record variant.
	Kind RecordKind

	// Date - calendar day. Used by daily, terms, and quiz records.
	Date shared.Date

	// ContentIndex - content item the term group belongs to. Terms only.
	ContentIndex shared.ContentIndex

	// Sequence - quiz attempt number within the day, starting at 1. Quiz only.
	Sequence int
}

// DailyKey returns the key of a day's content-progress record.
func DailyKey(date shared.Date) RecordKey {
	return RecordKey{Kind: KindDaily, Date: date}
}

// TermsKey returns the key of a term-progress record.
func TermsKey(date shared.Date, contentIndex shared.ContentIndex) RecordKey {
	return RecordKey{Kind: KindTerms, Date: date, ContentIndex: contentIndex}
}

// QuizKey returns the key of one quiz attempt.
func QuizKey(date shared.Date, sequence int) RecordKey {
	return RecordKey{Kind: KindQuiz, Date: date, Sequence: sequence}
}

// StatsKey returns the singleton snapshot key.
func StatsKey() RecordKey {
	return RecordKey{Kind: KindStats}
}

// Validate checks structural invariants of the key.
func (k RecordKey) Validate() error {
	if !k.Kind.IsValid() {
		return shared.NewDomainError("progress", "ValidateKey", shared.ErrInvalidInput, "unknown record kind")
	}
	switch k.Kind {
	case KindStats:
		return nil
	case KindQuiz:
		if k.Sequence < 1 {
			return shared.NewDomainError("progress", "ValidateKey", shared.ErrValueOutOfRange, "quiz sequence must be >= 1")
		}
	case KindTerms:
		if !k.ContentIndex.IsValid() {
			return shared.ErrNegativeIndex
		}
	}
	if k.Date.IsZero() {
		return shared.NewDomainError("progress", "ValidateKey", shared.ErrEmptyValue, "date is required")
	}
	return nil
}

// String returns a human-readable form of the key, used for logging and as
// the storage key of the in-memory store.
func (k RecordKey) String() string {
	switch k.Kind {
	case KindDaily:
		return fmt.Sprintf("daily:%s", k.Date)
	case KindTerms:
		return fmt.Sprintf("terms:%s:%d", k.Date, k.ContentIndex.Int())
	case KindQuiz:
		return fmt.Sprintf("quiz:%s:%d", k.Date, k.Sequence)
	case KindStats:
		return "stats"
	default:
		return string(k.Kind)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORDS
// ══════════════════════════════════════════════════════════════════════════════

// QuizResult is the payload of one quiz attempt.
type QuizResult struct {
	// Correct - number of correct answers.
	Correct int `json:"correct"`

	// Total - number of questions asked.
	Total int `json:"total"`

	// Score - floor(100*Correct/Total), 0 when Total is 0.
	Score int `json:"score"`
}

// NewQuizResult computes the attempt's percentage score.
func NewQuizResult(correct, total int) QuizResult {
	return QuizResult{
		Correct: correct,
		Total:   total,
		Score:   shared.PercentOf(correct, total).Int(),
	}
}

// Record is the fundamental stored entity: a tagged union keyed by
// (session, key). Exactly one of the payload fields is set, matching Key.Kind.
// Records are created on first event of their kind, merged in place
// thereafter, and never deleted by this engine.
type Record struct {
	// SessionID - the learner this record belongs to.
	SessionID shared.SessionID

	// Key - variant discriminator plus structured key fields.
	Key RecordKey

	// Indices - learned content indices. Daily payload. Insertion-ordered set.
	Indices []int

	// Terms - learned term names. Terms payload. Insertion-ordered set.
	Terms []string

	// Quiz - one quiz attempt. Quiz payload.
	Quiz *QuizResult

	// Stats - cached aggregate. Stats payload.
	Stats *StatsSnapshot

	// CreatedAt - when the record was first written.
	CreatedAt time.Time

	// UpdatedAt - when the record was last merged into.
	UpdatedAt time.Time
}

// NewDailyRecord creates an empty content-progress record for one day.
func NewDailyRecord(sessionID shared.SessionID, date shared.Date) *Record {
	now := time.Now().UTC()
	return &Record{
		SessionID: sessionID,
		Key:       DailyKey(date),
		Indices:   []int{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTermsRecord creates an empty term-progress record for one content item
// on one day.
func NewTermsRecord(sessionID shared.SessionID, date shared.Date, contentIndex shared.ContentIndex) *Record {
	now := time.Now().UTC()
	return &Record{
		SessionID: sessionID,
		Key:       TermsKey(date, contentIndex),
		Terms:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewQuizRecord creates the record of one quiz attempt.
func NewQuizRecord(sessionID shared.SessionID, date shared.Date, sequence, correct, total int) *Record {
	now := time.Now().UTC()
	result := NewQuizResult(correct, total)
	return &Record{
		SessionID: sessionID,
		Key:       QuizKey(date, sequence),
		Quiz:      &result,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewStatsRecord wraps a snapshot in its singleton record.
func NewStatsRecord(sessionID shared.SessionID, snapshot *StatsSnapshot) *Record {
	now := time.Now().UTC()
	return &Record{
		SessionID: sessionID,
		Key:       StatsKey(),
		Stats:     snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasIndex reports whether the daily record already contains the index.
func (r *Record) HasIndex(index int) bool {
	for _, i := range r.Indices {
		if i == index {
			return true
		}
	}
	return false
}

// AddIndex merges a content index into the daily set. Returns false when the
// index was already present; re-recording is a no-op for counting purposes.
func (r *Record) AddIndex(index int) bool {
	if r.HasIndex(index) {
		return false
	}
	r.Indices = append(r.Indices, index)
	r.UpdatedAt = time.Now().UTC()
	return true
}

// HasTerm reports whether the terms record already contains the term.
func (r *Record) HasTerm(term string) bool {
	for _, t := range r.Terms {
		if t == term {
			return true
		}
	}
	return false
}

// AddTerm merges a term name into the terms set. Returns false when the term
// was already present.
func (r *Record) AddTerm(term string) bool {
	if r.HasTerm(term) {
		return false
	}
	r.Terms = append(r.Terms, term)
	r.UpdatedAt = time.Now().UTC()
	return true
}

// IsEmpty reports whether the record carries no countable payload.
// Malformed stored payloads decode to empty records and are skipped by
// aggregation rather than failing it.
func (r *Record) IsEmpty() bool {
	switch r.Key.Kind {
	case KindDaily:
		return len(r.Indices) == 0
	case KindTerms:
		return len(r.Terms) == 0
	case KindQuiz:
		return r.Quiz == nil
	case KindStats:
		return r.Stats == nil
	default:
		return true
	}
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Indices != nil {
		clone.Indices = append([]int(nil), r.Indices...)
	}
	if r.Terms != nil {
		clone.Terms = append([]string(nil), r.Terms...)
	}
	if r.Quiz != nil {
		quiz := *r.Quiz
		clone.Quiz = &quiz
	}
	if r.Stats != nil {
		clone.Stats = r.Stats.Clone()
	}
	return &clone
}
