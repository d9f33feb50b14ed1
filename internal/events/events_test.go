package events

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := NewEventBus(DefaultEventBusConfig(), zap.NewNop())

	var received int64
	handler := NewEventHandlerFunc("test_handler", func(ctx context.Context, event Event) error {
		atomic.AddInt64(&received, 1)
		assert.Equal(t, EventTypeAchievementUnlocked, event.GetEventType())
		return nil
	})
	require.NoError(t, bus.Subscribe(EventTypeAchievementUnlocked, handler))

	event := NewAchievementUnlockedEvent(1, "teammates", 7, 2, 150)
	require.NoError(t, bus.Publish(context.Background(), event))

	assert.Equal(t, int64(1), atomic.LoadInt64(&received))
}

func TestPublishAsyncProcessedByWorkers(t *testing.T) {
	bus := NewEventBus(DefaultEventBusConfig(), zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	defer bus.Stop(context.Background())

	done := make(chan struct{})
	handler := NewEventHandlerFunc("async_handler", func(ctx context.Context, event Event) error {
		close(done)
		return nil
	})
	require.NoError(t, bus.Subscribe(EventTypeAchievementLevelUp, handler))

	event := NewAchievementLevelUpEvent(1, "habits", 3, 4, 1200)
	require.NoError(t, bus.PublishAsync(context.Background(), event))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not processed in time")
	}
}

func TestPublishNilEvent(t *testing.T) {
	bus := NewEventBus(DefaultEventBusConfig(), zap.NewNop())
	assert.Error(t, bus.Publish(context.Background(), nil))
	assert.Error(t, bus.PublishAsync(context.Background(), nil))
}

func TestSubscribeValidation(t *testing.T) {
	bus := NewEventBus(DefaultEventBusConfig(), zap.NewNop())

	assert.Error(t, bus.Subscribe("", NewEventHandlerFunc("h", nil)))
	assert.Error(t, bus.Subscribe(EventTypeAchievementUnlocked, nil))
}

func TestStatsCountConcurrentPublishes(t *testing.T) {
	bus := NewEventBus(DefaultEventBusConfig(), zap.NewNop())
	require.NoError(t, bus.Subscribe(EventTypeAchievementUnlocked, NewEventHandlerFunc("noop", func(ctx context.Context, event Event) error {
		return nil
	})))

	const publishers = 8
	const perPublisher = 25

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				event := NewAchievementUnlockedEvent(1, "habits", 3, 2, 150)
				assert.NoError(t, bus.Publish(context.Background(), event))
			}
		}()
	}
	wg.Wait()

	stats := bus.Stats()
	assert.Equal(t, int64(publishers*perPublisher), stats.EventsPublished)
	assert.Zero(t, stats.EventsFailed)
}

func TestAchievementEventMetadata(t *testing.T) {
	event := NewAchievementUnlockedEvent(42, "sociability", 0, 3, 700)

	assert.Equal(t, EventTypeAchievementUnlocked, event.GetEventType())
	require.NotNil(t, event.GetUserID())
	assert.Equal(t, int64(42), *event.GetUserID())
	assert.NotEmpty(t, event.GetEventID())
	assert.Equal(t, 3, event.Level)
}
