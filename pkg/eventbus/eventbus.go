// Package eventbus is a small in-process publish/subscribe bus. An instance
// is injected into the services that mutate schedules or follow-ups, so
// tests can assert emitted events without process-wide state.
package eventbus

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Event is anything the engine announces after mutating state.
type Event interface {
	Name() string
}

// Listener handles one event. Errors are logged, never propagated to the
// publisher.
type Listener func(ctx context.Context, event Event) error

type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		logger:    logger,
	}
}

func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish dispatches the event to every subscriber of its name. Dispatch is
// synchronous: by the time Publish returns, listeners have run, which keeps
// cache invalidation ordered with the mutation that triggered it.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	listeners := b.listeners[event.Name()]
	b.mu.RUnlock()

	for _, l := range listeners {
		if err := l(ctx, event); err != nil {
			b.logger.Error("event listener failed",
				zap.String("event", event.Name()),
				zap.Error(err),
			)
		}
	}
}
