// Package messaging implements the in-process event bus for the
// admissions portal. Events are advisory: they fire after the store
// transaction commits and drive cache invalidation and logging, never
// the lifecycle invariants themselves.
package messaging

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/campus-hub/admissions-hub/internal/domain/shared"
)

// ErrEventBusClosed is returned when publishing or subscribing on a
// closed bus.
var ErrEventBusClosed = errors.New("messaging: event bus is closed")

// InMemoryEventBusConfig configures an InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode dispatches handlers on a bounded worker pool instead of
	// inline on the publisher's goroutine.
	AsyncMode bool

	// WorkerPoolSize bounds concurrent async handlers.
	WorkerPoolSize int

	// Logger receives subscription and handler-failure logs.
	Logger *slog.Logger

	// EnableMetrics turns on per-event-type counters.
	EnableMetrics bool
}

// DefaultInMemoryEventBusConfig returns async dispatch with ten workers
// and metrics on.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 10,
		EnableMetrics:  true,
	}
}

// InMemoryEventBus implements shared.EventBus for a single service
// instance. Handler errors are logged, never returned to publishers.
type InMemoryEventBus struct {
	async   bool
	slots   chan struct{}
	logger  *slog.Logger
	metrics *EventBusMetrics

	mu       sync.RWMutex
	byType   map[shared.EventType][]shared.EventHandler
	catchAll []shared.EventHandler
	closed   bool

	wg sync.WaitGroup
}

// NewInMemoryEventBus creates a bus from the given config.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	bus := &InMemoryEventBus{
		async:  config.AsyncMode,
		slots:  make(chan struct{}, config.WorkerPoolSize),
		logger: config.Logger,
		byType: make(map[shared.EventType][]shared.EventHandler),
	}
	if config.EnableMetrics {
		bus.metrics = NewEventBusMetrics()
	}
	return bus
}

// Subscribe registers a handler for one event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}

	b.byType[eventType] = append(b.byType[eventType], handler)
	b.logger.Debug("subscribed handler", "event_type", eventType)
	return nil
}

// SubscribeAll registers a handler for every event.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}

	b.catchAll = append(b.catchAll, handler)
	b.logger.Debug("subscribed global handler")
	return nil
}

// Publish delivers the event to every matching handler. Delivery order
// across handlers is unspecified in async mode.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := append([]shared.EventHandler{}, b.byType[event.EventType()]...)
	handlers = append(handlers, b.catchAll...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}
	if b.metrics != nil {
		b.metrics.RecordPublish(event.EventType())
	}

	for _, handler := range handlers {
		if b.async {
			b.dispatchAsync(event, handler)
		} else {
			b.run(event, handler)
		}
	}
	return nil
}

// dispatchAsync hands the event to a pooled goroutine. An event
// accepted by Publish is always delivered; Close waits for the pool to
// drain rather than cancelling queued work.
func (b *InMemoryEventBus) dispatchAsync(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		b.slots <- struct{}{}
		defer func() { <-b.slots }()

		b.run(event, handler)
	}()
}

func (b *InMemoryEventBus) run(event shared.Event, handler shared.EventHandler) {
	start := time.Now()
	err := handler(event)
	elapsed := time.Since(start)

	if b.metrics != nil {
		b.metrics.RecordHandlerExecution(event.EventType(), elapsed, err == nil)
	}
	if err != nil {
		b.logger.Error("event handler failed",
			"event_type", event.EventType(),
			"duration", elapsed,
			"error", err,
		)
	}
}

// Close stops accepting events and waits for in-flight handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("event bus closed")
	return nil
}

// Metrics returns the bus counters, or nil when disabled.
func (b *InMemoryEventBus) Metrics() *EventBusMetrics {
	return b.metrics
}

// EventBusMetrics counts publishes and handler outcomes per event type.
type EventBusMetrics struct {
	mu              sync.RWMutex
	publishCounts   map[shared.EventType]int64
	handlerCounts   map[shared.EventType]int64
	handlerFailures map[shared.EventType]int64
	totalDuration   map[shared.EventType]time.Duration
}

// NewEventBusMetrics creates an empty counter set.
func NewEventBusMetrics() *EventBusMetrics {
	return &EventBusMetrics{
		publishCounts:   make(map[shared.EventType]int64),
		handlerCounts:   make(map[shared.EventType]int64),
		handlerFailures: make(map[shared.EventType]int64),
		totalDuration:   make(map[shared.EventType]time.Duration),
	}
}

// RecordPublish counts one published event.
func (m *EventBusMetrics) RecordPublish(eventType shared.EventType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishCounts[eventType]++
}

// RecordHandlerExecution counts one handler run.
func (m *EventBusMetrics) RecordHandlerExecution(eventType shared.EventType, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlerCounts[eventType]++
	m.totalDuration[eventType] += duration
	if !success {
		m.handlerFailures[eventType]++
	}
}

// EventBusMetricsSnapshot is a point-in-time copy of the counters.
type EventBusMetricsSnapshot struct {
	PublishCounts   map[shared.EventType]int64
	HandlerCounts   map[shared.EventType]int64
	HandlerFailures map[shared.EventType]int64
}

// Snapshot copies the current counters.
func (m *EventBusMetrics) Snapshot() EventBusMetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := EventBusMetricsSnapshot{
		PublishCounts:   make(map[shared.EventType]int64, len(m.publishCounts)),
		HandlerCounts:   make(map[shared.EventType]int64, len(m.handlerCounts)),
		HandlerFailures: make(map[shared.EventType]int64, len(m.handlerFailures)),
	}
	for k, v := range m.publishCounts {
		snap.PublishCounts[k] = v
	}
	for k, v := range m.handlerCounts {
		snap.HandlerCounts[k] = v
	}
	for k, v := range m.handlerFailures {
		snap.HandlerFailures[k] = v
	}
	return snap
}
