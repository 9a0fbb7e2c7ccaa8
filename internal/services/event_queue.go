package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"financeflow/internal/amqp"
)

const (
	defaultQueueSize      = 256
	defaultPublishTimeout = 15 * time.Second
)

var (
	ErrQueueFull   = errors.New("ledger event queue is full")
	ErrQueueClosed = errors.New("ledger event queue is closed")
)

type queuedEvent struct {
	ctx   context.Context
	event *amqp.LedgerEvent
}

// EventQueue hands ledger events to a background goroutine so mutations
// never wait on the broker. Events that do not fit the buffer are dropped.
type EventQueue struct {
	next    Publisher
	timeout time.Duration
	events  chan queuedEvent

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewEventQueue starts draining into next. size <= 0 uses the default buffer.
func NewEventQueue(next Publisher, size int) *EventQueue {
	if size <= 0 {
		size = defaultQueueSize
	}
	q := &EventQueue{
		next:    next,
		timeout: defaultPublishTimeout,
		events:  make(chan queuedEvent, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Publish enqueues event without blocking.
func (q *EventQueue) Publish(ctx context.Context, event *amqp.LedgerEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	// request values (logger, request id) survive, its cancellation does not
	select {
	case q.events <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *EventQueue) run() {
	defer close(q.done)
	for item := range q.events {
		ctx, cancel := context.WithTimeout(item.ctx, q.timeout)
		if err := q.next.Publish(ctx, item.event); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger event",
				"type", item.event.Type, "error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for the buffered ones to drain.
func (q *EventQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.events)
	q.mu.Unlock()
	<-q.done
	return nil
}
