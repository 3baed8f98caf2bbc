// Package peripheral brings up a BLE stack as a connectable peripheral,
// advertises the device name, and keeps advertising across disconnections.
//
// The bootstrap owns no connection state of its own. Stack events are
// delivered as values and dispatched through a HandlerTable, so the mapping
// from event to behaviour can be exercised without a radio.
package peripheral

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tinygo-org/blestub/advdata"
	"github.com/tinygo-org/blestub/config"
)

// ErrInitTimeout is returned when the stack does not report the outcome of an
// initialization attempt in time.
var ErrInitTimeout = errors.New("peripheral: stack initialization timed out")

// InitError is returned by Initialize when every attempt failed.
type InitError struct {
	Attempts int
	Err      error // error of the last attempt
}

func (e *InitError) Error() string {
	return fmt.Sprintf("BLE stack initialization failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Recorder observes the bootstrap. Implementations must not block.
type Recorder interface {
	InitAttempt(attempt int, err error)
	Event(kind EventKind)
	AdvertisingStarted(err error)
}

type nopRecorder struct{}

func (nopRecorder) InitAttempt(int, error)   {}
func (nopRecorder) Event(EventKind)          {}
func (nopRecorder) AdvertisingStarted(error) {}

// Option configures a Bootstrap.
type Option func(*Bootstrap)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Bootstrap) { b.log = l }
}

// WithRecorder sets the observer notified of initialization, events and
// advertising.
func WithRecorder(r Recorder) Option {
	return func(b *Bootstrap) { b.rec = r }
}

// WithServices sets the hook run once the stack is up and before advertising
// starts. It is where GATT services are added.
func WithServices(setup func(Stack) error) Option {
	return func(b *Bootstrap) { b.setup = setup }
}

// Bootstrap drives a Stack through initialization and the event loop.
type Bootstrap struct {
	stack Stack
	cfg   config.Config
	log   logrus.FieldLogger
	rec   Recorder
	setup func(Stack) error
	newID func() uuid.UUID

	handlers HandlerTable
}

// New returns a bootstrap for stack. cfg is expected to be valid.
func New(stack Stack, cfg config.Config, opts ...Option) *Bootstrap {
	b := &Bootstrap{
		stack: stack,
		cfg:   cfg,
		log:   logrus.StandardLogger(),
		rec:   nopRecorder{},
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handle registers h for events of the given kind, replacing the handler
// installed at initialization.
func (b *Bootstrap) Handle(kind EventKind, h Handler) {
	b.handlers.Register(kind, h)
}

// Initialize requests stack initialization and blocks until it has
// completed and advertising has started. Failed attempts are retried up to
// cfg.InitAttempts times; the returned error is then an *InitError. Callers
// must not enter Run after a failed Initialize.
func (b *Bootstrap) Initialize(ctx context.Context) error {
	b.log.Info("Initialising the BLE stack")
	var last error
	for attempt := 1; attempt <= b.cfg.InitAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.cfg.InitBackoff):
			}
		}
		err := b.initOnce(ctx)
		b.rec.InitAttempt(attempt, err)
		if err == nil {
			b.log.Info("Initialized, running now")
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.log.WithError(err).WithField("attempt", attempt).Error("BLE stack initialization failed")
		last = err
	}
	return &InitError{Attempts: b.cfg.InitAttempts, Err: last}
}

func (b *Bootstrap) initOnce(ctx context.Context) error {
	done := make(chan error, 1)
	var (
		mu        sync.Mutex
		abandoned bool
	)
	b.stack.Init(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if abandoned {
			b.log.WithError(err).Warn("Ignoring completion of an abandoned initialization")
			return
		}
		done <- b.initComplete(err)
	})

	timer := time.NewTimer(b.cfg.InitTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
	case <-ctx.Done():
	}

	mu.Lock()
	abandoned = true
	mu.Unlock()
	// The completion may have won the race with the timer.
	select {
	case err := <-done:
		return err
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrInitTimeout
}

// initComplete is the completion handler of an initialization attempt.
func (b *Bootstrap) initComplete(err error) error {
	if err != nil {
		return fmt.Errorf("stack reported: %w", err)
	}

	if b.setup != nil {
		if err := b.setup(b.stack); err != nil {
			return fmt.Errorf("setup services: %w", err)
		}
	}

	b.handlers.Register(Disconnected, HandlerFunc(b.onDisconnect))
	b.handlers.Register(Connected, HandlerFunc(b.onConnect))

	payload, err := advdata.NewDevicePayload(b.cfg.DeviceName)
	if err != nil {
		return fmt.Errorf("build advertising payload: %w", err)
	}
	adv := Advertising{
		Payload:  payload,
		Type:     advdata.ConnectableUndirected,
		Interval: b.cfg.AdvertisingInterval,
	}
	if err := b.stack.Gap().Configure(adv); err != nil {
		return fmt.Errorf("configure advertising: %w", err)
	}
	return b.startAdvertising()
}

func (b *Bootstrap) startAdvertising() error {
	err := b.stack.Gap().StartAdvertising()
	b.rec.AdvertisingStarted(err)
	if err != nil {
		return fmt.Errorf("start advertising: %w", err)
	}
	return nil
}

func (b *Bootstrap) onConnect(ctx context.Context, ev Event) error {
	b.eventLog(ev).Info("Connected")
	return nil
}

func (b *Bootstrap) onDisconnect(ctx context.Context, ev Event) error {
	b.eventLog(ev).Info("Disconnected, restart advertising")
	return b.startAdvertising()
}

func (b *Bootstrap) eventLog(ev Event) logrus.FieldLogger {
	l := b.log.WithFields(logrus.Fields{
		"event":    ev.Kind.String(),
		"event_id": ev.ID.String(),
	})
	if !ev.Peer.IsZero() {
		l = l.WithField("peer", ev.Peer.String())
	}
	return l
}

// Dispatch runs the handler registered for ev.Kind. Events without a handler
// are ignored.
func (b *Bootstrap) Dispatch(ctx context.Context, ev Event) error {
	if ev.ID == uuid.Nil {
		ev.ID = b.newID()
	}
	b.rec.Event(ev.Kind)
	h, ok := b.handlers.Lookup(ev.Kind)
	if !ok {
		b.eventLog(ev).Debug("No handler for event")
		return nil
	}
	return h.HandleEvent(ctx, ev)
}

// Run is the main loop. It waits for stack events and dispatches them until
// ctx ends or the stack closes its event source. Handler errors are logged
// and do not stop the loop.
func (b *Bootstrap) Run(ctx context.Context) error {
	for {
		ev, err := b.stack.WaitForEvent(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		if err := b.Dispatch(ctx, ev); err != nil {
			b.eventLog(ev).WithError(err).Error("Event handler failed")
		}
	}
}

// Close stops advertising.
func (b *Bootstrap) Close() error {
	return b.stack.Gap().StopAdvertising()
}
