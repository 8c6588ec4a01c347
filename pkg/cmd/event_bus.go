package cmd

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/inkwell-ai/inkwell/pkg/channels/gochannel"
	"github.com/inkwell-ai/inkwell/pkg/eventbus"
)

// NewEventBus builds the in-process progress bus.
func NewEventBus(logger *slog.Logger) eventbus.EventBus {
	pub, sub := gochannel.CreateChannel(watermill.NewSlogLogger(logger))

	return eventbus.NewWatermillEventBus(pub, sub)
}
