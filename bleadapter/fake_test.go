//go:build !darwin

package bleadapter

import (
	"errors"
	"sync"

	"tinygo.org/x/bluetooth"
)

var errInvalidState = errors.New("NRF_ERROR_INVALID_STATE")

// fakeRadio behaves like the SoftDevice: it can be enabled once and its
// advertisement configured once.
type fakeRadio struct {
	mu      sync.Mutex
	enables int
	handler func(device bluetooth.Device, connected bool)
	adv     *fakeAdvertisement
}

func newFakeRadio() *fakeRadio {
	return &fakeRadio{adv: &fakeAdvertisement{}}
}

func (r *fakeRadio) Enable() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enables++
	if r.enables > 1 {
		return errInvalidState
	}
	return nil
}

func (r *fakeRadio) SetConnectHandler(h func(device bluetooth.Device, connected bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
}

func (r *fakeRadio) DefaultAdvertisement() advertisement { return r.adv }

func (r *fakeRadio) state() (enables int, handler func(bluetooth.Device, bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enables, r.handler
}

type fakeAdvertisement struct {
	mu         sync.Mutex
	opts       bluetooth.AdvertisementOptions
	configures int
	starts     int
	running    bool
	startErrs  []error // outcome of successive Start calls
}

func (a *fakeAdvertisement) Configure(opts bluetooth.AdvertisementOptions) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configures++
	if a.configures > 1 {
		return errInvalidState
	}
	a.opts = opts
	return nil
}

func (a *fakeAdvertisement) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.starts++
	if a.running {
		return errInvalidState
	}
	if len(a.startErrs) > 0 {
		err := a.startErrs[0]
		a.startErrs = a.startErrs[1:]
		if err != nil {
			return err
		}
	}
	a.running = true
	return nil
}

func (a *fakeAdvertisement) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = false
	return nil
}

func (a *fakeAdvertisement) state() (configures, starts int, running bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.configures, a.starts, a.running
}

func device(mac bluetooth.MAC) bluetooth.Device {
	return bluetooth.Device{Address: bluetooth.Address{MACAddress: bluetooth.MACAddress{MAC: mac}}}
}
