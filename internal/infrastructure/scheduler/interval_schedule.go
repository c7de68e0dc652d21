package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule fires a fixed duration after each run. It is the only
// schedule the progress engine needs: the snapshot repair sweep has no
// calendar alignment requirement, it just has to keep happening.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a schedule firing every interval. Non-positive
// intervals are clamped to one minute so a zero-valued config cannot produce
// a busy loop.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	if interval <= 0 {
		interval = time.Minute
	}
	return &IntervalSchedule{
		Interval: interval,
	}
}

// Next returns the first firing time after t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String renders the schedule in the cron-style "@every" notation used in
// scheduler logs.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}
