package peripheral

import (
	"context"
	"errors"
	"sync"
)

// fakeStack is a Stack without a radio. Init completes on a separate
// goroutine with the next queued result, like a vendor stack would.
type fakeStack struct {
	gap    *fakeGap
	events *EventQueue

	mu      sync.Mutex
	results []error // outcome of successive Init calls; nil completes successfully
	hang    bool    // never complete Init
	inits   int
	late    chan func() // completions held back when hang is set
}

func newFakeStack(results ...error) *fakeStack {
	return &fakeStack{
		gap:     &fakeGap{},
		events:  NewEventQueue(8),
		results: results,
		late:    make(chan func(), 8),
	}
}

func (s *fakeStack) Init(done func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inits++
	var err error
	if len(s.results) > 0 {
		err, s.results = s.results[0], s.results[1:]
	}
	if s.hang {
		s.late <- func() { done(err) }
		return
	}
	go done(err)
}

func (s *fakeStack) Gap() Gap { return s.gap }

func (s *fakeStack) WaitForEvent(ctx context.Context) (Event, error) {
	return s.events.Wait(ctx)
}

func (s *fakeStack) initCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inits
}

var errRadio = errors.New("radio busy")

type fakeGap struct {
	mu         sync.Mutex
	adv        Advertising
	configured bool
	advertise  bool
	starts     int
	startErr   error
}

func (g *fakeGap) Configure(adv Advertising) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.adv = adv
	g.configured = true
	return nil
}

func (g *fakeGap) StartAdvertising() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.starts++
	if g.startErr != nil {
		return g.startErr
	}
	g.advertise = true
	return nil
}

func (g *fakeGap) StopAdvertising() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advertise = false
	return nil
}

// connect simulates the stack stopping advertising when a central connects.
func (g *fakeGap) connect() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advertise = false
}

func (g *fakeGap) state() (adv Advertising, configured, advertising bool, starts int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.adv, g.configured, g.advertise, g.starts
}

type recorder struct {
	mu       sync.Mutex
	attempts []error
	events   []EventKind
	advErrs  []error
}

func (r *recorder) InitAttempt(attempt int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, err)
}

func (r *recorder) Event(kind EventKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
}

func (r *recorder) AdvertisingStarted(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advErrs = append(r.advErrs, err)
}
