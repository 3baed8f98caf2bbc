// Package heartbeat blinks an indicator at a fixed interval to show the
// firmware is alive. It shares no state with the BLE side.
package heartbeat

import (
	"context"
	"sync/atomic"
	"time"
)

// Indicator is something that can be toggled, typically a board.LED.
type Indicator interface {
	// Toggle inverts the indicator and returns its new state.
	Toggle() bool
}

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker returns a Ticker backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Blinker toggles an Indicator once per interval.
type Blinker struct {
	Indicator Indicator
	Interval  time.Duration

	// NewTicker creates the tick source. Defaults to NewTimeTicker.
	NewTicker func(time.Duration) Ticker
	// OnToggle, if set, is called with the new state after every toggle.
	OnToggle func(on bool)

	toggles atomic.Uint64
}

// Run toggles the indicator on every tick until ctx ends. Missed ticks are
// not made up.
func (b *Blinker) Run(ctx context.Context) error {
	newTicker := b.NewTicker
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	t := newTicker(b.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C():
			on := b.Indicator.Toggle()
			b.toggles.Add(1)
			if b.OnToggle != nil {
				b.OnToggle(on)
			}
		}
	}
}

// Toggles returns how many times the indicator has been toggled.
func (b *Blinker) Toggles() uint64 {
	return b.toggles.Load()
}
