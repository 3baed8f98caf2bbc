package peripheral

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// EventKind names a stack event the bootstrap reacts to.
type EventKind uint8

const (
	Connected EventKind = iota + 1
	Disconnected
)

func (k EventKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	}
	return "unknown"
}

// Event is a single stack event.
type Event struct {
	Kind EventKind
	// Peer is the address of the central, zero if the stack does not report
	// one. It is a value so events can be built without allocating.
	Peer MAC
	// ID correlates log lines of one event. Dispatch assigns one if unset.
	ID uuid.UUID
}

// MAC is a Bluetooth device address, least significant byte first as it is
// sent over the air.
type MAC [6]byte

// IsZero reports whether the address is unset.
func (m MAC) IsZero() bool { return m == MAC{} }

// String formats the address most significant byte first, e.g.
// "AA:BB:CC:DD:EE:FF".
func (m MAC) String() string {
	const hex = "0123456789ABCDEF"
	buf := make([]byte, 0, 17)
	for i := 5; i >= 0; i-- {
		if i != 5 {
			buf = append(buf, ':')
		}
		buf = append(buf, hex[m[i]>>4], hex[m[i]&0xF])
	}
	return string(buf)
}

// Handler reacts to an event.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event) error
}

// The HandlerFunc type is an adapter to allow the use of ordinary functions as
// event handlers.
type HandlerFunc func(ctx context.Context, ev Event) error

// HandleEvent calls f(ctx, ev).
func (f HandlerFunc) HandleEvent(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// HandlerTable maps event kinds to their handler. It is safe for concurrent
// use.
type HandlerTable struct {
	mu sync.RWMutex
	m  map[EventKind]Handler
}

// Register sets the handler for kind, replacing any previous one. A nil
// handler removes the entry.
func (t *HandlerTable) Register(kind EventKind, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h == nil {
		delete(t.m, kind)
		return
	}
	if t.m == nil {
		t.m = make(map[EventKind]Handler)
	}
	t.m[kind] = h
}

// Lookup returns the handler registered for kind.
func (t *HandlerTable) Lookup(kind EventKind) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.m[kind]
	return h, ok
}
