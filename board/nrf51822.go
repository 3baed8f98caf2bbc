//go:build tinygo && nrf51 && softdevice && s110v8

package board

import (
	"io"
	"machine"
)

// Pin map of the nRF51822 module.
const (
	LEDGreen = machine.Pin(21)
	LEDRed   = machine.Pin(22)
	LEDBlue  = machine.Pin(23)
	Button   = machine.Pin(17)
	Battery  = machine.Pin(1)

	UARTTX = machine.Pin(9)
	UARTRX = machine.Pin(11)
)

// Resources are the hardware handles of the module.
type Resources struct {
	Green, Red, Blue *LED
	Console          io.Writer
}

// Open configures the LEDs (all off, active low) and the serial console at
// the given baud rate.
func Open(baud uint32) (*Resources, error) {
	for _, p := range []machine.Pin{LEDGreen, LEDRed, LEDBlue} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	uart := machine.DefaultUART
	err := uart.Configure(machine.UARTConfig{
		BaudRate: baud,
		TX:       UARTTX,
		RX:       UARTRX,
	})
	if err != nil {
		return nil, err
	}
	return &Resources{
		Green:   NewLED(LEDGreen, true),
		Red:     NewLED(LEDRed, true),
		Blue:    NewLED(LEDBlue, true),
		Console: uart,
	}, nil
}
