package main

import (
	"context"
	"fmt"

	"github.com/inkwell-ai/inkwell/pkg/eventbus"
	"github.com/inkwell-ai/inkwell/pkg/events"
)

// attachDisplay prints workflow progress to stdout as events arrive.
func attachDisplay(ctx context.Context, bus eventbus.EventBus) error {
	bus.Handle(events.StageStartedEvent, func(_ context.Context, event any) error {
		if e, ok := event.(*events.StageStarted); ok && e.Message != "" {
			fmt.Printf("==> %s\n", e.Message)
		}

		return nil
	})

	bus.Handle(events.IterationStartedEvent, func(_ context.Context, event any) error {
		if e, ok := event.(*events.IterationStarted); ok {
			if e.MaxIterations > 0 {
				fmt.Printf("==> Iteration %d of %d\n", e.Iteration, e.MaxIterations)
			} else {
				fmt.Printf("==> Iteration %d\n", e.Iteration)
			}
		}

		return nil
	})

	bus.Handle(events.DraftUpdatedEvent, func(_ context.Context, event any) error {
		if e, ok := event.(*events.DraftUpdated); ok {
			fmt.Printf("    Draft updated (%d words)\n", e.WordCount)
		}

		return nil
	})

	bus.Handle(events.ReviewCompletedEvent, func(_ context.Context, event any) error {
		if e, ok := event.(*events.ReviewCompleted); ok {
			fmt.Printf("    Review done: %d source issue(s), %d style issue(s)\n",
				e.SourceIssues, e.StyleIssues)
		}

		return nil
	})

	bus.Handle(events.IllustrationProgressEvent, func(_ context.Context, event any) error {
		if e, ok := event.(*events.IllustrationProgress); ok {
			fmt.Printf("    %s\n", e.Message)
		}

		return nil
	})

	return bus.Subscribe(ctx)
}
