package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
)

// ErrSkipped is returned by a sink that had nothing to deliver for an event.
var ErrSkipped = errors.New("notification skipped")

// Sink delivers one transition event somewhere.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev domain.TransitionOccurred) error
}

// DeliveryRecorder observes sink outcomes and events lost to back-pressure.
type DeliveryRecorder interface {
	RecordNotification(sink, outcome string)
	RecordDroppedEvent()
}

type noopRecorder struct{}

func (noopRecorder) RecordNotification(string, string) {}
func (noopRecorder) RecordDroppedEvent()               {}

// Dispatcher fans transition events out to sinks on a background goroutine.
// Publish never blocks: when the queue is full the event is dropped and logged.
type Dispatcher struct {
	logger      *slog.Logger
	recorder    DeliveryRecorder
	sinks       []Sink
	sinkTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan domain.TransitionOccurred
	done   chan struct{}
	start  sync.Once
}

// DispatcherOption customises a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecorder reports delivery outcomes to r.
func WithRecorder(r DeliveryRecorder) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithSinkTimeout bounds each sink delivery.
func WithSinkTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sinkTimeout = timeout
		}
	}
}

// NewDispatcher creates a dispatcher with a queue of queueSize events.
// Call Start to begin delivering.
func NewDispatcher(logger *slog.Logger, queueSize int, sinks []Sink, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		logger:      logger.With(slog.String("component", "notifications")),
		recorder:    noopRecorder{},
		sinks:       sinks,
		sinkTimeout: 10 * time.Second,
		queue:       make(chan domain.TransitionOccurred, queueSize),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the delivery goroutine. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		go d.run()
	})
}

// Publish enqueues ev for delivery. It is safe for concurrent use and returns immediately.
func (d *Dispatcher) Publish(ctx context.Context, ev domain.TransitionOccurred) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.WarnContext(ctx, "Dispatcher closed, dropping transition event", slog.String("request_id", ev.RequestID))
		d.recorder.RecordDroppedEvent()
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.logger.WarnContext(ctx, "Notification queue full, dropping transition event",
			slog.String("request_id", ev.RequestID),
			slog.String("to_status", string(ev.ToStatus)),
		)
		d.recorder.RecordDroppedEvent()
	}
}

// Close stops accepting events and waits until queued ones are delivered or ctx ends.
// Close must only be called after Start.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev domain.TransitionOccurred) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.sinkTimeout)
		err := d.safeDeliver(ctx, sink, ev)
		cancel()

		switch {
		case err == nil:
			d.recorder.RecordNotification(sink.Name(), "sent")
		case errors.Is(err, ErrSkipped):
			d.recorder.RecordNotification(sink.Name(), "skipped")
		default:
			d.recorder.RecordNotification(sink.Name(), "failed")
			d.logger.Error("Notification delivery failed",
				slog.String("sink", sink.Name()),
				slog.String("request_id", ev.RequestID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// safeDeliver keeps a panicking sink from killing the delivery goroutine.
func (d *Dispatcher) safeDeliver(ctx context.Context, sink Sink, ev domain.TransitionOccurred) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("sink panicked")
			d.logger.Error("Notification sink panicked", slog.String("sink", sink.Name()), slog.Any("panic", r))
		}
	}()
	return sink.Deliver(ctx, ev)
}
