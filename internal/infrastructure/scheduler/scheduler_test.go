package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs int
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counts its runs" }
func (j *countingJob) Run(context.Context) error {
	j.runs++
	return nil
}

func TestIntervalSchedule_Next(t *testing.T) {
	schedule := NewIntervalSchedule(10 * time.Minute)
	now := time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(10*time.Minute), schedule.Next(now))
	assert.Equal(t, "@every 10m0s", schedule.String())
}

func TestIntervalSchedule_ClampsNonPositiveInterval(t *testing.T) {
	assert.Equal(t, time.Minute, NewIntervalSchedule(0).Interval)
	assert.Equal(t, time.Minute, NewIntervalSchedule(-time.Hour).Interval)
}

func TestScheduler_RegisterAndUnregister(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &countingJob{name: "counter"}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Minute)))
	assert.ErrorIs(t, s.Register(job, NewIntervalSchedule(time.Minute)), ErrJobAlreadyExists)

	require.NoError(t, s.Unregister("counter"))
	assert.ErrorIs(t, s.Unregister("counter"), ErrJobNotFound)
}

func TestScheduler_RegisterValidation(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&countingJob{name: "counter"}, nil), ErrNilSchedule)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(ctx), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestScheduler_EnableDisable(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	require.NoError(t, s.Register(&countingJob{name: "counter"}, NewIntervalSchedule(time.Minute)))

	require.NoError(t, s.DisableJob("counter"))
	require.NoError(t, s.EnableJob("counter"))
	assert.ErrorIs(t, s.EnableJob("missing"), ErrJobNotFound)
}
