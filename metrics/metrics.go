// Package metrics exposes the peripheral's activity as Prometheus metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tinygo-org/blestub/peripheral"
)

// Collector implements peripheral.Recorder and the heartbeat toggle hook on a
// private registry.
type Collector struct {
	Registry *prometheus.Registry

	initAttempts       *prometheus.CounterVec
	events             *prometheus.CounterVec
	connected          prometheus.Gauge
	advertisingStarts  prometheus.Counter
	advertisingErrors  prometheus.Counter
	heartbeatToggles   prometheus.Counter
	heartbeatIndicator prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		initAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ble_init_attempts_total",
			Help: "BLE stack initialization attempts by outcome",
		},
			[]string{"success"},
		),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ble_events_total",
			Help: "BLE stack events dispatched by kind",
		},
			[]string{"kind"},
		),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ble_connected",
			Help: "1 while a central is connected",
		}),
		advertisingStarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ble_advertising_starts_total",
			Help: "successful advertising starts",
		}),
		advertisingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ble_advertising_errors_total",
			Help: "failed advertising starts",
		}),
		heartbeatToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "heartbeat_toggles_total",
			Help: "heartbeat indicator toggles",
		}),
		heartbeatIndicator: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "heartbeat_indicator_on",
			Help: "1 while the heartbeat indicator is lit",
		}),
	}
	c.Registry.MustRegister(
		c.initAttempts,
		c.events,
		c.connected,
		c.advertisingStarts,
		c.advertisingErrors,
		c.heartbeatToggles,
		c.heartbeatIndicator,
	)
	return c
}

func (c *Collector) InitAttempt(attempt int, err error) {
	c.initAttempts.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
}

func (c *Collector) Event(kind peripheral.EventKind) {
	c.events.WithLabelValues(kind.String()).Inc()
	switch kind {
	case peripheral.Connected:
		c.connected.Set(1)
	case peripheral.Disconnected:
		c.connected.Set(0)
	}
}

func (c *Collector) AdvertisingStarted(err error) {
	if err != nil {
		c.advertisingErrors.Inc()
		return
	}
	c.advertisingStarts.Inc()
}

// Toggled records a heartbeat toggle. It matches heartbeat.Blinker.OnToggle.
func (c *Collector) Toggled(on bool) {
	c.heartbeatToggles.Inc()
	if on {
		c.heartbeatIndicator.Set(1)
	} else {
		c.heartbeatIndicator.Set(0)
	}
}
