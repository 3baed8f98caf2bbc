// Advclient looks for an advertising peripheral by name and checks its
// advertisement. With --reconnect it connects, disconnects and verifies the
// peripheral goes back to advertising.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"tinygo.org/x/bluetooth"

	"github.com/tinygo-org/blestub/advdata"
	"github.com/tinygo-org/blestub/config"
)

var adapter = bluetooth.DefaultAdapter

var (
	name      = kingpin.Arg("name", "complete local name of the peripheral").Default(config.DefaultDeviceName).String()
	timeout   = kingpin.Flag("timeout", "how long to scan for the peripheral").Default("10s").Duration()
	reconnect = kingpin.Flag("reconnect", "connect, disconnect and check that advertising resumes").Bool()
)

func main() {
	kingpin.Parse()

	err := adapter.Enable()
	handleError("could not enable BLE adapter", err)

	fmt.Printf("Looking for %q...\n", *name)
	found, err := scan(*name, *timeout)
	handleError("could not find the peripheral", err)
	fmt.Printf("Found %s (RSSI %d)\n", found.Address, found.RSSI)

	if raw := found.AdvertisementPayload.Bytes(); raw != nil {
		fields, err := advdata.Parse(raw)
		handleError("malformed advertisement", err)
		for _, f := range fields {
			fmt.Printf("  field 0x%02X: % X\n", f.Type, f.Data)
		}
		err = checkFields(fields, *name)
		handleError("unexpected advertisement", err)
	}

	if !*reconnect {
		return
	}

	fmt.Printf("Connecting to %s...\n", found.Address)
	device, err := adapter.Connect(found.Address, bluetooth.ConnectionParams{})
	handleError("failed to connect", err)
	fmt.Println("Connected. Disconnecting...")
	err = device.Disconnect()
	handleError("failed to disconnect", err)

	start := time.Now()
	_, err = scan(*name, *timeout)
	handleError("peripheral did not resume advertising", err)
	fmt.Printf("Advertising resumed after %s.\n", time.Since(start).Round(time.Millisecond))
}

// scan returns the first scan result advertising the given name.
func scan(name string, timeout time.Duration) (bluetooth.ScanResult, error) {
	var (
		found bluetooth.ScanResult
		ok    bool
	)
	timer := time.AfterFunc(timeout, func() {
		adapter.StopScan()
	})
	defer timer.Stop()
	err := adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		if !matchName(result.LocalName(), name) {
			return
		}
		found, ok = result, true

		// Stop the scan.
		err := adapter.StopScan()
		handleError("could not stop the scan", err)
	})
	if err != nil {
		return found, fmt.Errorf("scan: %w", err)
	}
	if !ok {
		return found, fmt.Errorf("no device named %q within %s", name, timeout)
	}
	return found, nil
}

func handleError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", msg, err)
		os.Exit(1)
	}
}
