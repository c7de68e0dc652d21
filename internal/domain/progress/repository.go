package progress

import (
	"context"
	"time"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE CONTRACT
// ══════════════════════════════════════════════════════════════════════════════

// Filter selects records of a session by kind and optionally by date.
// The zero filter matches everything.
type Filter struct {
	// Kind - restrict to one record variant. Empty matches all kinds.
	Kind RecordKind

	// Date - restrict to one calendar day. Zero matches all dates.
	Date shared.Date
}

// Matches reports whether a key passes the filter.
func (f Filter) Matches(key RecordKey) bool {
	if f.Kind != "" && key.Kind != f.Kind {
		return false
	}
	if !f.Date.IsZero() && !key.Date.Equal(f.Date) {
		return false
	}
	return true
}

// Store is the persistence contract consumed by the engine: a single
// heterogeneous table keyed by (session, record key). Implementations must
// treat Put as an upsert, so read-merge-write callers always converge on one
// record per key. No cross-operation locking is provided; concurrent writers
// for the same session must serialize externally.
type Store interface {
	// Get returns one record, or shared.ErrRecordNotFound.
	Get(ctx context.Context, sessionID shared.SessionID, key RecordKey) (*Record, error)

	// Put inserts or replaces one record.
	Put(ctx context.Context, record *Record) error

	// List returns the session's records matching the filter, in no
	// particular order.
	List(ctx context.Context, sessionID shared.SessionID, filter Filter) ([]*Record, error)

	// Sessions returns the distinct session IDs present in the store.
	// Used by the snapshot-repair job.
	Sessions(ctx context.Context) ([]shared.SessionID, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CLOCK
// ══════════════════════════════════════════════════════════════════════════════

// Clock supplies "today". Injected so quiz recording and today-rollups are
// testable without touching the wall clock.
type Clock interface {
	Today() shared.Date
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Today returns the current UTC calendar day.
func (SystemClock) Today() shared.Date {
	return shared.DateOf(time.Now())
}

// FixedClock always returns the same day. Test helper.
type FixedClock struct {
	Date shared.Date
}

// Today returns the fixed day.
func (c FixedClock) Today() shared.Date {
	return c.Date
}
