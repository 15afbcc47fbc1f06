package event

import (
	"context"
	"sync"

	"github.com/stockbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus implements EventBus with synchronous in-memory pub/sub.
// Handlers run inline on the publishing goroutine; a failing or panicking
// handler is logged and never fails the publishing operation.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler // event type -> handlers, "" for all-events handlers
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
}

// Publish publishes events to all registered handlers synchronously
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types. With no explicit
// types, the handler's own EventTypes() decides; an empty result subscribes
// it to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.handlers[""] = append(b.handlers[""], handler)
		return
	}
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
}

// Unsubscribe removes a handler from all subscriptions
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for eventType, handlers := range b.handlers {
		kept := handlers[:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		b.handlers[eventType] = kept
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]shared.EventHandler, 0, len(b.handlers[eventType])+len(b.handlers[""]))
	out = append(out, b.handlers[eventType]...)
	out = append(out, b.handlers[""]...)
	return out
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
