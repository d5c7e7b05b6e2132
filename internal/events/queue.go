package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"agenticerp/internal/logging"
)

// DefaultPublishTimeout bounds one queued delivery when no timeout is given.
const DefaultPublishTimeout = 5 * time.Second

// ErrQueueFull is returned when an event is dropped because the queue is full.
var ErrQueueFull = errors.New("event queue full")

// ErrQueueClosed is returned for events published after Close.
var ErrQueueClosed = errors.New("event queue closed")

// Queue hands events to a background worker so callers never wait on the
// broker. Each delivery runs under its own timeout.
type Queue struct {
	next    Publisher
	timeout time.Duration
	events  chan Event
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts the worker. size is the number of events buffered before
// Publish starts dropping.
func NewQueue(next Publisher, size int, timeout time.Duration) *Queue {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	q := &Queue{
		next:    next,
		timeout: timeout,
		events:  make(chan Event, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for e := range q.events {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.next.Publish(ctx, e); err != nil {
			logging.EventsWarn("Failed to publish %s: %v", e.RoutingKey(), err)
		}
		cancel()
	}
}

// Publish enqueues e without blocking.
func (q *Queue) Publish(_ context.Context, e Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.events <- e:
		return nil
	default:
		logging.EventsWarn("Event queue full, dropping %s", e.RoutingKey())
		return ErrQueueFull
	}
}

// Close delivers what is already queued, then closes the wrapped publisher.
// It is safe to call more than once.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return nil
	}
	q.closed = true
	close(q.events)
	q.mu.Unlock()

	<-q.done
	return q.next.Close()
}
