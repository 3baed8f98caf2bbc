//go:build !darwin

// Package bleadapter implements peripheral.Stack on top of the TinyGo
// Bluetooth package. It drives the nRF SoftDevice on a microcontroller and
// BlueZ on a Linux host.
//
// BlueZ advertises through the Linux backend as a broadcaster: the
// advertisement is not connectable and the connect handler is never called
// for the peripheral role. On such a host the bootstrap advertises the name
// but never sees a connection event.
package bleadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"

	"github.com/tinygo-org/blestub/advdata"
	"github.com/tinygo-org/blestub/peripheral"
)

var (
	errNotInitialized    = errors.New("bleadapter: stack not initialized")
	errAlreadyConfigured = errors.New("bleadapter: advertisement already configured with other options")
)

// radio is the part of bluetooth.Adapter the stack uses.
type radio interface {
	Enable() error
	SetConnectHandler(func(device bluetooth.Device, connected bool))
	DefaultAdvertisement() advertisement
}

type advertisement interface {
	Configure(bluetooth.AdvertisementOptions) error
	Start() error
	Stop() error
}

type adapterRadio struct{ *bluetooth.Adapter }

func (r adapterRadio) DefaultAdvertisement() advertisement {
	return r.Adapter.DefaultAdvertisement()
}

// Stack is a peripheral.Stack backed by a bluetooth.Adapter.
//
// The adapter is enabled and the advertisement configured at most once, so a
// bootstrap may retry initialization after a later step failed.
type Stack struct {
	radio  radio
	events *peripheral.EventQueue
	log    logrus.FieldLogger

	mu         sync.Mutex
	enabled    bool
	adv        advertisement
	configured *bluetooth.AdvertisementOptions

	reported uint32 // drops already logged, owned by WaitForEvent
}

// New returns a stack on adapter, usually bluetooth.DefaultAdapter, buffering
// up to queue connection events.
func New(adapter *bluetooth.Adapter, queue int, log logrus.FieldLogger) *Stack {
	return newStack(adapterRadio{adapter}, queue, log)
}

func newStack(r radio, queue int, log logrus.FieldLogger) *Stack {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Stack{
		radio:  r,
		events: peripheral.NewEventQueue(queue),
		log:    log,
	}
}

// Init enables the adapter in the background and reports the outcome to done.
// Once the adapter is enabled, later calls report success straight away.
func (s *Stack) Init(done func(error)) {
	go func() {
		done(s.enable())
	}()
}

func (s *Stack) enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		return nil
	}
	if err := s.radio.Enable(); err != nil {
		return err
	}
	s.radio.SetConnectHandler(s.connectHandler)
	s.adv = s.radio.DefaultAdvertisement()
	s.enabled = true
	return nil
}

// connectHandler runs in the radio interrupt on the SoftDevice. It must not
// allocate, lock or log.
func (s *Stack) connectHandler(device bluetooth.Device, connected bool) {
	if connected {
		s.events.Post(peripheral.Event{Kind: peripheral.Connected, Peer: peripheral.MAC(device.Address.MAC)})
		return
	}
	// Disconnect events carry no address.
	s.events.Post(peripheral.Event{Kind: peripheral.Disconnected})
}

func (s *Stack) Gap() peripheral.Gap { return gap{s} }

// WaitForEvent returns the next connection event. Events lost to a full
// queue since the previous call are logged here. It must not be called
// concurrently.
func (s *Stack) WaitForEvent(ctx context.Context) (peripheral.Event, error) {
	ev, err := s.events.Wait(ctx)
	s.reportDrops()
	return ev, err
}

func (s *Stack) reportDrops() {
	n := s.events.Dropped()
	if lost := n - s.reported; lost != 0 {
		s.reported = n
		s.log.WithField("dropped", lost).Warn("Event queue full, events dropped")
	}
}

// Close stops delivering events; a pending WaitForEvent returns
// peripheral.ErrEventsClosed once the queue drains.
func (s *Stack) Close() {
	s.events.Close()
}

func (s *Stack) advertiser() (advertisement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adv == nil {
		return nil, errNotInitialized
	}
	return s.adv, nil
}

type gap struct{ s *Stack }

// Configure applies adv. Configuring again with the same options is a no-op;
// the backends do not support changing a configured advertisement.
func (g gap) Configure(adv peripheral.Advertising) error {
	opts, err := Options(adv)
	if err != nil {
		return err
	}
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if g.s.adv == nil {
		return errNotInitialized
	}
	if prev := g.s.configured; prev != nil {
		if !sameOptions(*prev, opts) {
			return errAlreadyConfigured
		}
		return nil
	}
	if err := g.s.adv.Configure(opts); err != nil {
		return err
	}
	g.s.configured = &opts
	return nil
}

func (g gap) StartAdvertising() error {
	a, err := g.s.advertiser()
	if err != nil {
		return err
	}
	// The SoftDevice port restarts a running advertisement by itself when a
	// central disconnects; stop it so Start does not fail with an invalid
	// state.
	_ = a.Stop()
	return a.Start()
}

func (g gap) StopAdvertising() error {
	a, err := g.s.advertiser()
	if err != nil {
		return err
	}
	return a.Stop()
}

func sameOptions(a, b bluetooth.AdvertisementOptions) bool {
	return a.AdvertisementType == b.AdvertisementType &&
		a.LocalName == b.LocalName &&
		a.Interval == b.Interval
}

// Options translates an advertising description into the options of the
// bluetooth package. The package always emits the general discoverable, LE
// only flags ahead of the local name, so the payload may only carry those
// two fields.
func Options(adv peripheral.Advertising) (bluetooth.AdvertisementOptions, error) {
	var opts bluetooth.AdvertisementOptions
	switch adv.Type {
	case advdata.ConnectableUndirected:
		opts.AdvertisementType = bluetooth.AdvertisingTypeInd
	case advdata.ConnectableDirected:
		opts.AdvertisementType = bluetooth.AdvertisingTypeDirectInd
	case advdata.ScannableUndirected:
		opts.AdvertisementType = bluetooth.AdvertisingTypeScanInd
	case advdata.NonConnectableUndirected:
		opts.AdvertisementType = bluetooth.AdvertisingTypeNonConnInd
	default:
		return opts, fmt.Errorf("unsupported advertising type 0x%02X", uint8(adv.Type))
	}
	opts.Interval = bluetooth.NewDuration(adv.Interval)

	for _, f := range adv.Payload.Fields() {
		switch f.Type {
		case advdata.TypeFlags:
			if len(f.Data) != 1 || f.Data[0] != advdata.FlagGeneralDiscoverable|advdata.FlagLEOnly {
				return opts, fmt.Errorf("unsupported advertising flags % X", f.Data)
			}
		case advdata.TypeCompleteName:
			opts.LocalName = localName(f.Data)
		default:
			return opts, fmt.Errorf("unsupported advertising field 0x%02X", f.Type)
		}
	}
	return opts, nil
}

// localName converts the name field for the backend. D-Bus strings cannot
// carry NUL, so the terminator is only kept where the radio sends the bytes
// as given.
func localName(field []byte) string {
	if keepNameTerminator {
		return string(field)
	}
	return strings.TrimRight(string(field), "\x00")
}
