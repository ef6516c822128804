package bus

import (
	"sync"
)

type Message interface {
	Kind() string
}

type Bus struct {
	handlers      map[string]map[uint64]func(Message)
	nextHandlerID uint64
	mu            sync.Mutex
}

func New() *Bus {
	return &Bus{
		handlers:      make(map[string]map[uint64]func(Message)),
		nextHandlerID: 0,
	}
}

// Listen registers handler for every message of kind T and returns a function that removes it.
func Listen[T Message](bus *Bus, handler func(T)) func() {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	var zero T
	kind := zero.Kind()
	if bus.handlers[kind] == nil {
		bus.handlers[kind] = make(map[uint64]func(Message))
	}

	id := bus.nextHandlerID
	bus.nextHandlerID++

	bus.handlers[kind][id] = func(m Message) {
		handler(m.(T))
	}

	return func() {
		bus.unregister(kind, id)
	}
}

func (b *Bus) unregister(kind string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.handlers[kind]; ok {
		delete(handlers, id)
		if len(handlers) == 0 {
			delete(b.handlers, kind)
		}
	}
}

func (b *Bus) Publish(m Message) {
	b.mu.Lock()
	handlers := make([]func(Message), 0, len(b.handlers[m.Kind()]))
	for _, h := range b.handlers[m.Kind()] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(m)
	}
}
