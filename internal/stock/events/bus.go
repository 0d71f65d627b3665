package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/labstock/labstock-backend/pkg/logger"
)

// Handler receives published events
type Handler func(ctx context.Context, ev Event) error

// Subscription identifies one registered handler
type Subscription struct {
	kind Kind
	id   uint64
}

// Kind returns the event kind the subscription listens to
func (s Subscription) Kind() Kind { return s.kind }

type entry struct {
	id      uint64
	handler Handler
}

// Bus is an in-process publish/subscribe dispatcher.
// Publish is synchronous: handlers run on the caller's goroutine in
// subscription order, and a failing or panicking handler is logged and skipped.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[Kind][]entry
	logger   *logger.Logger
}

// NewBus creates an empty bus
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}
	return &Bus{
		handlers: make(map[Kind][]entry),
		logger:   log,
	}
}

// Subscribe registers handler for kind
func (b *Bus) Subscribe(kind Kind, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[kind] = append(b.handlers[kind], entry{id: b.nextID, handler: handler})
	return Subscription{kind: kind, id: b.nextID}
}

// Unsubscribe removes a handler; it reports false if it was not registered
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[sub.kind]
	for i, e := range entries {
		if e.id == sub.id {
			// copy so snapshots taken by in-flight publishes stay intact
			next := make([]entry, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			b.handlers[sub.kind] = next
			return true
		}
	}
	return false
}

// Publish delivers ev to every current handler of its kind
func (b *Bus) Publish(ctx context.Context, ev Event) {
	if b == nil || ev == nil {
		return
	}

	b.mu.RLock()
	entries := b.handlers[ev.Kind()]
	b.mu.RUnlock()

	for _, e := range entries {
		if err := b.dispatch(ctx, e.handler, ev); err != nil {
			b.logger.Error().
				Err(err).
				Str("event", ev.Kind().String()).
				Uint64("subscription", e.id).
				Msg("event handler failed")
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, handler Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, ev)
}

// On subscribes a handler typed to one event payload
func On[E Event](b *Bus, fn func(context.Context, E) error) Subscription {
	var zero E
	return b.Subscribe(zero.Kind(), func(ctx context.Context, ev Event) error {
		typed, ok := ev.(E)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", ev, zero.Kind())
		}
		return fn(ctx, typed)
	})
}
