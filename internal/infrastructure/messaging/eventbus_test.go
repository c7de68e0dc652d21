package messaging

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestEventBus_SubscribeAndPublish(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var received atomic.Int32
	err := bus.Subscribe(shared.EventContentLearned, func(e shared.Event) error {
		received.Add(1)
		assert.Equal(t, "learner-1", e.AggregateID())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(shared.NewContentLearnedEvent("learner-1", "2024-07-20", 0, true)))
	assert.Equal(t, int32(1), received.Load())
}

func TestEventBus_SubscribeAllSeesEveryType(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var count atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		count.Add(1)
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewContentLearnedEvent("learner-1", "2024-07-20", 0, true)))
	require.NoError(t, bus.Publish(shared.NewAchievementUnlockedEvent("learner-1", "first_learn")))

	assert.Equal(t, int32(2), count.Load())
}

func TestEventBus_HandlerFailureNeverPropagates(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventContentLearned, func(shared.Event) error {
		return errors.New("handler exploded")
	}))

	// Publishing succeeds even when every handler fails.
	assert.NoError(t, bus.Publish(shared.NewContentLearnedEvent("learner-1", "2024-07-20", 0, true)))
}

func TestEventBus_PublishAfterClose(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewContentLearnedEvent("learner-1", "2024-07-20", 0, true))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestEventBus_Metrics(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventContentLearned, func(shared.Event) error { return nil }))
	require.NoError(t, bus.Publish(shared.NewContentLearnedEvent("learner-1", "2024-07-20", 0, true)))
	require.NoError(t, bus.Publish(shared.NewContentLearnedEvent("learner-1", "2024-07-20", 1, true)))

	snapshot := bus.Metrics().Snapshot()
	assert.Equal(t, int64(2), snapshot.TotalPublished)
	assert.Equal(t, int64(2), snapshot.TotalHandlerExecs)
	assert.Equal(t, 1.0, snapshot.HandlerSuccessRate)
}
