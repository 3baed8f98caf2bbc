// Package board models the hardware resources owned by the firmware: the
// indicator LEDs and the serial console. Handles are created once and passed
// to the components that use them.
package board

import "sync"

// Pin is a digital output. machine.Pin satisfies it.
type Pin interface {
	Set(high bool)
}

// LED is an indicator on an output pin.
type LED struct {
	pin       Pin
	activeLow bool

	mu sync.Mutex
	on bool
}

// NewLED returns an LED on pin, switched off. Active-low LEDs are lit by
// driving the pin low.
func NewLED(pin Pin, activeLow bool) *LED {
	l := &LED{pin: pin, activeLow: activeLow}
	l.write(false)
	return l
}

func (l *LED) write(on bool) {
	l.on = on
	l.pin.Set(on != l.activeLow)
}

func (l *LED) Set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write(on)
}

func (l *LED) On()  { l.Set(true) }
func (l *LED) Off() { l.Set(false) }

// Toggle inverts the LED and returns the new state.
func (l *LED) Toggle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.write(!l.on)
	return l.on
}

func (l *LED) IsOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}
