package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/labstock/labstock-backend/pkg/logger"
)

// DefaultRelayBuffer is the queue size used when none is configured
const DefaultRelayBuffer = 256

// Publisher sends a payload to the message broker
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

type queued struct {
	ctx context.Context
	ev  Event
}

// Relay forwards every bus event to the broker under its kind name.
// Events are queued and sent by a single worker, so a slow or unreachable
// broker never holds up the bus. A full queue drops the event.
type Relay struct {
	publisher Publisher
	logger    *logger.Logger
	subs      []Subscription

	queue   chan queued
	done    chan struct{}
	start   sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewRelay creates a relay for publisher holding at most buffer pending events
func NewRelay(publisher Publisher, buffer int, log *logger.Logger) *Relay {
	if log == nil {
		log = logger.Nop()
	}
	if buffer <= 0 {
		buffer = DefaultRelayBuffer
	}
	return &Relay{
		publisher: publisher,
		logger:    log,
		queue:     make(chan queued, buffer),
		done:      make(chan struct{}),
	}
}

// Attach subscribes the relay to every kind on bus and starts the worker
func (r *Relay) Attach(bus *Bus) {
	r.start.Do(func() { go r.run() })
	for _, kind := range Kinds() {
		r.subs = append(r.subs, bus.Subscribe(kind, r.forward))
	}
	r.logger.Info().Int("kinds", len(r.subs)).Int("buffer", cap(r.queue)).Msg("event relay attached")
}

// Detach removes the relay from bus and stops accepting events.
// Events already queued are still sent; Drain waits for them.
func (r *Relay) Detach(bus *Bus) {
	for _, sub := range r.subs {
		bus.Unsubscribe(sub)
	}
	r.subs = nil

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
}

// Drain waits until the worker has sent every queued event or ctx is done.
// Call it after Detach.
func (r *Relay) Drain(ctx context.Context) error {
	r.start.Do(func() { go r.run() })
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn().Int("pending", len(r.queue)).Msg("event relay drain interrupted")
		return ctx.Err()
	}
}

// Dropped reports how many events were discarded because the queue was full
func (r *Relay) Dropped() int64 {
	return r.dropped.Load()
}

func (r *Relay) forward(ctx context.Context, ev Event) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil
	}

	select {
	case r.queue <- queued{ctx: context.WithoutCancel(ctx), ev: ev}:
	default:
		r.dropped.Add(1)
		r.logger.Warn().Str("kind", ev.Kind().String()).Msg("event relay queue full, event dropped")
	}
	return nil
}

func (r *Relay) run() {
	defer close(r.done)
	for item := range r.queue {
		kind := item.ev.Kind().String()
		if err := r.publisher.Publish(item.ctx, kind, item.ev); err != nil {
			r.logger.Error().Err(err).Str("kind", kind).Msg("failed to relay event")
		}
	}
}
