// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// SessionID
// ═══════════════════════════════════════════════════════════════════════════

// SessionID is the opaque identifier of a learner. It is the unit of all
// progress tracking; no other session metadata is owned by this service.
type SessionID string

// IsValid checks that the session ID is non-empty.
func (s SessionID) IsValid() bool {
	return strings.TrimSpace(string(s)) != ""
}

// String returns the string representation.
func (s SessionID) String() string {
	return string(s)
}

// IsEmpty returns true if the session ID is empty.
func (s SessionID) IsEmpty() bool {
	return string(s) == ""
}

// NewSessionID validates and creates a SessionID.
func NewSessionID(id string) (SessionID, error) {
	s := SessionID(id)
	if !s.IsValid() {
		return "", ErrSessionEmpty
	}
	return s, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Date (calendar day, YYYY-MM-DD)
// ═══════════════════════════════════════════════════════════════════════════

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date represents a calendar day with no time-of-day component.
type Date struct {
	t time.Time
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, WrapError("progress", "ParseDate", ErrInvalidFormat, "date must be YYYY-MM-DD", err)
	}
	return Date{t: t.UTC()}, nil
}

// DateOf truncates a time to its calendar day in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{t: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// String returns the YYYY-MM-DD representation.
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// Time returns the underlying midnight-UTC time. Used by persistence.
func (d Date) Time() time.Time {
	return d.t
}

// IsZero returns true for the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Prev returns the previous calendar day.
func (d Date) Prev() Date {
	return Date{t: d.t.AddDate(0, 0, -1)}
}

// Next returns the next calendar day.
func (d Date) Next() Date {
	return Date{t: d.t.AddDate(0, 0, 1)}
}

// Before reports whether d is before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is after other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether d and other are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// MarshalText implements encoding.TextMarshaler.
// The zero Date serializes as an empty string.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ContentIndex
// ═══════════════════════════════════════════════════════════════════════════

// ContentIndex identifies one content item in the learning catalog.
type ContentIndex int

// IsValid checks that the index is non-negative.
func (c ContentIndex) IsValid() bool {
	return c >= 0
}

// Int returns the int representation.
func (c ContentIndex) Int() int {
	return int(c)
}

// NewContentIndex validates and creates a ContentIndex.
func NewContentIndex(i int) (ContentIndex, error) {
	c := ContentIndex(i)
	if !c.IsValid() {
		return 0, ErrNegativeIndex
	}
	return c, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Percent
// ═══════════════════════════════════════════════════════════════════════════

// Percent is an integer percentage computed with truncating division.
type Percent int

// PercentOf computes floor(100*part/total). A zero total yields 0 rather than
// an error; quiz aggregation relies on this guard.
func PercentOf(part, total int) Percent {
	if total <= 0 {
		return 0
	}
	return Percent(100 * part / total)
}

// Int returns the int representation.
func (p Percent) Int() int {
	return int(p)
}
