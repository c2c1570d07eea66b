// Package event carries stock domain events from the services to their
// handlers: notification email, metrics, logging and the Kafka fan-out.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/labstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish after Stop in async mode.
var ErrBusStopped = errors.New("event bus stopped")

// InMemoryEventBus dispatches events to subscribed handlers in-process.
// Without WithAsyncDispatch every handler runs on the publishing goroutine.
// A failing or panicking handler is logged and never affects the others.
type InMemoryEventBus struct {
	subs    *subscriptions
	logger  *zap.Logger
	workers int
	queue   chan shared.DomainEvent
	running atomic.Bool
	stopped atomic.Bool
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

// BusOption configures an InMemoryEventBus.
type BusOption func(*InMemoryEventBus)

// WithAsyncDispatch hands events to a pool of workers reading a buffered queue.
func WithAsyncDispatch(workers, buffer int) BusOption {
	return func(b *InMemoryEventBus) {
		if workers < 1 {
			workers = 1
		}
		if buffer < 0 {
			buffer = 0
		}
		b.workers = workers
		b.queue = make(chan shared.DomainEvent, buffer)
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		subs:   newSubscriptions(),
		logger: logger.Named("event_bus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers events in order. In async mode it only enqueues them and
// blocks while the queue is full or until ctx is done.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.queue == nil || !b.running.Load() {
		if b.stopped.Load() && b.queue != nil {
			return ErrBusStopped
		}
		for _, e := range events {
			b.dispatch(ctx, e)
		}
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped.Load() {
		return ErrBusStopped
	}
	for _, e := range events {
		select {
		case b.queue <- e:
		case <-ctx.Done():
			return fmt.Errorf("enqueue %s: %w", e.EventType(), ctx.Err())
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, or for handler.EventTypes() when none are given.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.subs.add(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes handler from every event type.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.subs.remove(handler)
}

// HandlerCount returns the number of registrations.
func (b *InMemoryEventBus) HandlerCount() int {
	return b.subs.count()
}

// Start launches the dispatch workers in async mode.
func (b *InMemoryEventBus) Start(_ context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.work()
	}
	b.logger.Info("event bus started", zap.Int("workers", b.workers))
	return nil
}

// Stop drains queued events and waits for the workers, or returns when ctx is done.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return nil
	}
	b.mu.Lock()
	b.stopped.Store(true)
	if b.queue != nil {
		close(b.queue)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus stop: %w", ctx.Err())
	}
}

func (b *InMemoryEventBus) work() {
	defer b.wg.Done()
	for e := range b.queue {
		b.dispatch(context.Background(), e)
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, e shared.DomainEvent) {
	for _, h := range b.subs.handlersFor(e.EventType()) {
		if err := b.safeHandle(ctx, h, e); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", e.EventType()),
				zap.String("event_id", e.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

func (b *InMemoryEventBus) safeHandle(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
