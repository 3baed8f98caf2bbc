// Package config holds the operating parameters of the peripheral. Firmware
// builds fix them at link time; the hosted daemon fills them from flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/tinygo-org/blestub/advdata"
)

// Legacy advertising interval bounds (Core Spec Vol 6, Part B, 4.4.2.2).
const (
	MinAdvertisingInterval = 20 * time.Millisecond
	MaxAdvertisingInterval = 10240 * time.Millisecond
)

// DefaultDeviceName is the placeholder name shipped in the firmware.
const DefaultDeviceName = "<CHANGE ME!>"

type Config struct {
	// DeviceName is advertised as the complete local name.
	DeviceName string

	AdvertisingInterval time.Duration
	BlinkInterval       time.Duration

	// BaudRate of the serial console.
	BaudRate uint32

	// InitTimeout bounds a single stack initialization attempt.
	InitTimeout time.Duration
	// InitAttempts is the number of initialization attempts before giving up.
	InitAttempts int
	// InitBackoff is the pause between failed attempts.
	InitBackoff time.Duration

	// EventQueue is the number of stack events buffered between the radio
	// callbacks and the main loop.
	EventQueue int
}

func Default() Config {
	return Config{
		DeviceName:          DefaultDeviceName,
		AdvertisingInterval: 1000 * time.Millisecond,
		BlinkInterval:       1000 * time.Millisecond,
		BaudRate:            115200,
		InitTimeout:         5 * time.Second,
		InitAttempts:        3,
		InitBackoff:         500 * time.Millisecond,
		EventQueue:          8,
	}
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	if len(c.DeviceName) > advdata.MaxNameLength {
		return fmt.Errorf("device name %q is %d bytes, at most %d fit in the advertising payload",
			c.DeviceName, len(c.DeviceName), advdata.MaxNameLength)
	}
	if c.AdvertisingInterval < MinAdvertisingInterval || c.AdvertisingInterval > MaxAdvertisingInterval {
		return fmt.Errorf("advertising interval %s out of range [%s, %s]",
			c.AdvertisingInterval, MinAdvertisingInterval, MaxAdvertisingInterval)
	}
	if c.BlinkInterval <= 0 {
		return errors.New("blink interval must be positive")
	}
	if c.BaudRate == 0 {
		return errors.New("baud rate must be positive")
	}
	if c.InitTimeout <= 0 {
		return errors.New("init timeout must be positive")
	}
	if c.InitAttempts < 1 {
		return errors.New("at least one init attempt is required")
	}
	if c.InitBackoff < 0 {
		return errors.New("init backoff must not be negative")
	}
	if c.EventQueue < 1 {
		return errors.New("event queue must hold at least one event")
	}
	return nil
}
