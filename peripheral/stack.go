package peripheral

import (
	"context"
	"time"

	"github.com/tinygo-org/blestub/advdata"
)

// Stack is the vendor BLE stack driven by the bootstrap.
type Stack interface {
	// Init requests initialization of the stack. It returns immediately; done
	// is called exactly once, from any goroutine, with the outcome.
	Init(done func(err error))

	// Gap returns the advertising controls of the stack.
	Gap() Gap

	// WaitForEvent blocks until the next stack event is ready, the context
	// ends, or the event source is closed (ErrEventsClosed).
	WaitForEvent(ctx context.Context) (Event, error)
}

// Gap controls advertising.
type Gap interface {
	Configure(adv Advertising) error
	StartAdvertising() error
	StopAdvertising() error
}

// Advertising describes what is advertised and how often.
type Advertising struct {
	Payload  advdata.Payload
	Type     advdata.PDUType
	Interval time.Duration
}
