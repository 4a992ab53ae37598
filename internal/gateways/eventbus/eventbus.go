package eventbus

import (
	"github.com/streamkit/popcorn/internal/app"
	"github.com/streamkit/popcorn/internal/lib/bus"
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
	e.bus.Publish(msg)
}
