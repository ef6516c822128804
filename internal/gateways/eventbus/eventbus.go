package eventbus

import (
	"log/slog"

	"github.com/quintans/tvshelf/internal/app"
	"github.com/quintans/tvshelf/internal/lib/bus"
)

type EventBus struct {
	bus *bus.Bus
}

func New(bus *bus.Bus) *EventBus {
	return &EventBus{
		bus: bus,
	}
}

func (e *EventBus) Publish(msg app.Message) {
	slog.Debug("publishing", "kind", msg.Kind())
	e.bus.Publish(msg)
}
