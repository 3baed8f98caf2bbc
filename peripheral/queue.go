package peripheral

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrEventsClosed is returned by WaitForEvent once the event source is closed.
var ErrEventsClosed = errors.New("peripheral: event source closed")

// EventQueue carries events from stack callbacks to the main loop.
//
// Post takes no lock, never blocks and does not allocate, so it may be called
// from a radio interrupt. Drops are only counted there; reporting them is up
// to the consumer.
type EventQueue struct {
	ch   chan Event
	done chan struct{}

	closed  atomic.Bool
	dropped atomic.Uint32
	once    sync.Once
}

// NewEventQueue returns a queue buffering up to size events.
func NewEventQueue(size int) *EventQueue {
	if size < 1 {
		size = 1
	}
	return &EventQueue{
		ch:   make(chan Event, size),
		done: make(chan struct{}),
	}
}

// Post enqueues ev and reports whether it was accepted. Events posted to a
// full or closed queue are dropped.
func (q *EventQueue) Post(ev Event) bool {
	if q.closed.Load() {
		return false
	}
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Wait blocks until an event is available. Events queued before Close are
// still delivered.
func (q *EventQueue) Wait(ctx context.Context) (Event, error) {
	select {
	case ev := <-q.ch:
		return ev, nil
	case <-q.done:
		select {
		case ev := <-q.ch:
			return ev, nil
		default:
			return Event{}, ErrEventsClosed
		}
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Dropped returns the number of events lost to a full queue since the queue
// was created. The counter wraps.
func (q *EventQueue) Dropped() uint32 {
	return q.dropped.Load()
}

// Close stops accepting events. It is safe to call more than once.
func (q *EventQueue) Close() {
	q.once.Do(func() {
		q.closed.Store(true)
		close(q.done)
	})
}
