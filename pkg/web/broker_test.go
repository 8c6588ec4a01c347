package web

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/pkg/channels/gochannel"
	"github.com/inkwell-ai/inkwell/pkg/eventbus"
	"github.com/inkwell-ai/inkwell/pkg/events"
)

func TestProgressBroker_RoutesBySession(t *testing.T) {
	broker := NewProgressBroker(slog.Default())

	streamA, cancelA := broker.Subscribe("session-a")
	defer cancelA()

	streamB, cancelB := broker.Subscribe("session-b")
	defer cancelB()

	broker.broadcast("session-a", sessionEvent{Type: events.IterationStartedEvent})

	select {
	case event := <-streamA:
		assert.Equal(t, events.IterationStartedEvent, event.Type)
	case <-time.After(time.Second):
		t.Fatal("expected event on session-a stream")
	}

	select {
	case <-streamB:
		t.Fatal("session-b must not receive session-a events")
	default:
	}
}

func TestProgressBroker_CancelClosesStream(t *testing.T) {
	broker := NewProgressBroker(slog.Default())

	stream, cancel := broker.Subscribe("session-a")
	cancel()

	_, open := <-stream
	assert.False(t, open)

	// broadcasting after cancel must not panic or block
	broker.broadcast("session-a", sessionEvent{Type: events.DraftUpdatedEvent})
}

func TestProgressBroker_SlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	broker := NewProgressBroker(slog.Default())

	_, cancel := broker.Subscribe("session-a")
	defer cancel()

	// more events than the stream buffer holds; broadcast must return
	done := make(chan struct{})

	go func() {
		for range 200 {
			broker.broadcast("session-a", sessionEvent{Type: events.DraftUpdatedEvent})
		}

		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow consumer")
	}
}

func TestProgressBroker_AttachReceivesBusEvents(t *testing.T) {
	broker := NewProgressBroker(slog.Default())

	pub, sub := gochannel.CreateTestChannel(watermill.NewSlogLogger(slog.Default()))
	bus := eventbus.NewWatermillEventBus(pub, sub)

	require.NoError(t, broker.Attach(t.Context(), bus))

	stream, cancel := broker.Subscribe("session-a")
	defer cancel()

	err := bus.Publish(t.Context(), "session-a", events.StageStarted{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.StageStartedEvent,
			SessionID: "session-a",
		},
		Stage:   "style_extracted",
		Message: "Analyzing writing samples",
	})
	require.NoError(t, err)

	select {
	case event := <-stream:
		assert.Equal(t, events.StageStartedEvent, event.Type)

		started, ok := event.Payload.(*events.StageStarted)
		require.True(t, ok)
		assert.Equal(t, "session-a", started.SessionID)
		assert.Equal(t, "Analyzing writing samples", started.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the published event to reach the stream")
	}
}
