package main

import (
	"fmt"
	"strings"

	"github.com/tinygo-org/blestub/advdata"
)

// matchName compares an advertised local name with the expected one. The
// peripheral sends its name NUL terminated.
func matchName(advertised, want string) bool {
	return strings.TrimRight(advertised, "\x00") == want
}

// checkFields verifies a raw advertisement carries the general discoverable,
// LE only flags and the expected complete local name.
func checkFields(fields []advdata.Field, want string) error {
	var sawFlags, sawName bool
	for _, f := range fields {
		switch f.Type {
		case advdata.TypeFlags:
			if len(f.Data) != 1 || f.Data[0]&(advdata.FlagGeneralDiscoverable|advdata.FlagLEOnly) != advdata.FlagGeneralDiscoverable|advdata.FlagLEOnly {
				return fmt.Errorf("flags % X, want general discoverable and BR/EDR not supported", f.Data)
			}
			sawFlags = true
		case advdata.TypeCompleteName:
			if !matchName(string(f.Data), want) {
				return fmt.Errorf("complete local name %q, want %q", f.Data, want)
			}
			sawName = true
		}
	}
	if !sawFlags {
		return fmt.Errorf("no flags field")
	}
	if !sawName {
		return fmt.Errorf("no complete local name field")
	}
	return nil
}
