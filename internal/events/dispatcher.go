package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher. Handler
// failures never propagate to the publisher; side effects driven by
// events are best-effort.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish synchronously invokes handlers for the given event, filling in
// id and timestamp when absent.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
