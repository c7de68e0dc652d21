package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	attempts := 0
	boom := errors.New("bad credentials")
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return Permanent(boom)
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	assert.Equal(t, boom, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_NonRetryableByDefault(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("plain")
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetryIfOverridesDefault(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("plain")
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond),
		WithRetryIf(func(error) bool { return true }))

	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, func(context.Context) error {
		attempts++
		cancel()
		return Retryable(errors.New("transient"))
	}, WithMaxAttempts(5), WithInitialDelay(time.Minute))

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoWithData(t *testing.T) {
	attempts := 0
	value, err := DoWithData(context.Background(), func(context.Context) (int, error) {
		attempts++
		if attempts < 2 {
			return 0, Retryable(errors.New("transient"))
		}
		return 42, nil
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestCalculateDelay_CappedAtMax(t *testing.T) {
	r := New(
		WithInitialDelay(time.Second),
		WithMaxDelay(2*time.Second),
		WithMultiplier(10),
		WithJitter(0),
	)

	assert.Equal(t, time.Second, r.calculateDelay(1))
	assert.Equal(t, 2*time.Second, r.calculateDelay(2))
	assert.Equal(t, 2*time.Second, r.calculateDelay(5))
}
