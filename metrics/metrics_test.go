package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tinygo-org/blestub/peripheral"
)

var _ peripheral.Recorder = (*Collector)(nil)

func TestCollector(t *testing.T) {
	c := New()

	c.InitAttempt(1, errors.New("busy"))
	c.InitAttempt(2, nil)
	c.AdvertisingStarted(nil)
	c.Event(peripheral.Connected)
	if got := testutil.ToFloat64(c.connected); got != 1 {
		t.Errorf("connected gauge: got %v want 1", got)
	}
	c.Event(peripheral.Disconnected)
	c.AdvertisingStarted(errors.New("invalid state"))
	c.Toggled(true)
	c.Toggled(false)

	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"failed init", testutil.ToFloat64(c.initAttempts.WithLabelValues("false")), 1},
		{"successful init", testutil.ToFloat64(c.initAttempts.WithLabelValues("true")), 1},
		{"connected events", testutil.ToFloat64(c.events.WithLabelValues("connected")), 1},
		{"disconnected events", testutil.ToFloat64(c.events.WithLabelValues("disconnected")), 1},
		{"connected gauge", testutil.ToFloat64(c.connected), 0},
		{"advertising starts", testutil.ToFloat64(c.advertisingStarts), 1},
		{"advertising errors", testutil.ToFloat64(c.advertisingErrors), 1},
		{"toggles", testutil.ToFloat64(c.heartbeatToggles), 2},
		{"indicator", testutil.ToFloat64(c.heartbeatIndicator), 0},
	}
	for _, tt := range cases {
		if tt.got != tt.want {
			t.Errorf("%s: got %v want %v", tt.name, tt.got, tt.want)
		}
	}

	if n, err := testutil.GatherAndCount(c.Registry); err != nil || n == 0 {
		t.Errorf("GatherAndCount: %d, %v", n, err)
	}
}
