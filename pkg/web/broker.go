package web

import (
	"context"
	"log/slog"
	"sync"

	"github.com/inkwell-ai/inkwell/pkg/eventbus"
	"github.com/inkwell-ai/inkwell/pkg/events"
)

// sessionEvent is what any workflow progress event looks like to the stream:
// a type tag plus the already-typed payload.
type sessionEvent struct {
	Type    events.EventType
	Payload any
}

type sessionAware interface {
	GetSessionID() string
}

// ProgressBroker fans workflow progress events out to per-session stream
// subscribers. It holds the single bus subscription for the API process;
// individual SSE connections come and go underneath it.
type ProgressBroker struct {
	logger *slog.Logger

	mu      sync.Mutex
	streams map[string][]chan sessionEvent
}

func NewProgressBroker(logger *slog.Logger) *ProgressBroker {
	return &ProgressBroker{
		logger:  logger,
		streams: make(map[string][]chan sessionEvent),
	}
}

// Attach registers the broker on the bus for every progress event type and
// starts consuming.
func (b *ProgressBroker) Attach(ctx context.Context, bus eventbus.EventBus) error {
	for _, eventType := range []events.EventType{
		events.StageStartedEvent,
		events.StageCompletedEvent,
		events.IterationStartedEvent,
		events.DraftUpdatedEvent,
		events.ReviewCompletedEvent,
		events.FeedbackRequiredEvent,
		events.WorkflowCompletedEventType,
		events.WorkflowFailedEventType,
		events.IllustrationProgressEvent,
	} {
		b.register(bus, eventType)
	}

	return bus.Subscribe(ctx)
}

func (b *ProgressBroker) register(bus eventbus.EventBus, eventType events.EventType) {
	bus.Handle(eventType, func(_ context.Context, event any) error {
		aware, ok := event.(sessionAware)
		if !ok {
			return nil
		}

		b.broadcast(aware.GetSessionID(), sessionEvent{Type: eventType, Payload: event})

		return nil
	})
}

// Subscribe opens a stream for one session. The returned cancel function
// must be called when the consumer disconnects.
func (b *ProgressBroker) Subscribe(sessionID string) (<-chan sessionEvent, func()) {
	stream := make(chan sessionEvent, 64)

	b.mu.Lock()
	b.streams[sessionID] = append(b.streams[sessionID], stream)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subscribers := b.streams[sessionID]
		for i, subscriber := range subscribers {
			if subscriber == stream {
				b.streams[sessionID] = append(subscribers[:i], subscribers[i+1:]...)

				close(stream)

				break
			}
		}

		if len(b.streams[sessionID]) == 0 {
			delete(b.streams, sessionID)
		}
	}

	return stream, cancel
}

// broadcast never blocks the workflow: a slow consumer drops events instead
// of stalling the run.
func (b *ProgressBroker) broadcast(sessionID string, event sessionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, stream := range b.streams[sessionID] {
		select {
		case stream <- event:
		default:
			b.logger.Warn("Dropping progress event for slow stream consumer",
				"session_id", sessionID, "event_type", event.Type)
		}
	}
}
