// Package messaging implements the in-process event bus connecting the write
// side (unit completion) to read-model maintenance (leaderboard cache).
package messaging

import (
	"fmt"
	"sync"

	"github.com/naluwan/wsa/internal/domain/shared"
	"github.com/naluwan/wsa/pkg/logger"
)

// EventBus is a synchronous in-process publish/subscribe dispatcher.
// Handlers run on the publishing goroutine; a panicking handler is recovered
// and logged so event delivery never fails a committed operation.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[shared.EventType][]shared.EventHandler
	log      *logger.Logger
}

// NewEventBus creates an empty EventBus.
func NewEventBus(log *logger.Logger) *EventBus {
	if log == nil {
		log = logger.Default()
	}
	return &EventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		log:      log,
	}
}

// Subscribe registers a handler for an event type.
func (b *EventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches the event to all handlers subscribed to its type.
func (b *EventBus) Publish(event shared.Event) error {
	if event == nil {
		return fmt.Errorf("eventbus: cannot publish nil event")
	}

	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(event, handler)
	}
	return nil
}

func (b *EventBus) dispatch(event shared.Event, handler shared.EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				logger.String("event_type", string(event.EventType())),
				logger.String("aggregate_id", event.AggregateID()),
				logger.Any("panic", r),
			)
		}
	}()
	handler(event)
}
