// Package advdata builds and parses the BLE advertising data carried in legacy
// advertising packets. A payload is a sequence of AD structures, each encoded as
// a length byte, a type byte and the field data, where the length counts the
// type byte plus the data.
package advdata

import (
	"errors"
	"fmt"
	"strings"
)

// MaxPayloadLength is the maximum length of a legacy advertising (or scan
// response) payload.
const MaxPayloadLength = 31

// ErrPayloadTooLong is returned when a field does not fit in the payload.
var ErrPayloadTooLong = errors.New("advdata: max payload length is 31")

// ErrMalformed is returned by Parse for a truncated or zero-length structure.
var ErrMalformed = errors.New("advdata: malformed advertising data")

// Advertising data field types.
const (
	TypeFlags            = 0x01 // Flags
	TypeSomeUUID16       = 0x02 // Incomplete List of 16-bit Service Class UUIDs
	TypeAllUUID16        = 0x03 // Complete List of 16-bit Service Class UUIDs
	TypeSomeUUID128      = 0x06 // Incomplete List of 128-bit Service Class UUIDs
	TypeAllUUID128       = 0x07 // Complete List of 128-bit Service Class UUIDs
	TypeShortName        = 0x08 // Shortened Local Name
	TypeCompleteName     = 0x09 // Complete Local Name
	TypeTxPower          = 0x0A // Tx Power Level
	TypeAppearance       = 0x19 // Appearance
	TypeAdvInterval      = 0x1A // Advertising Interval
	TypeManufacturerData = 0xFF // Manufacturer Specific Data
)

// Flag bits of the Flags field.
const (
	FlagLimitedDiscoverable = 0x01 // LE Limited Discoverable Mode
	FlagGeneralDiscoverable = 0x02 // LE General Discoverable Mode
	FlagLEOnly              = 0x04 // BR/EDR Not Supported
	FlagBothController      = 0x08 // Simultaneous LE and BR/EDR (Controller)
	FlagBothHost            = 0x10 // Simultaneous LE and BR/EDR (Host)
)

// Field is a single decoded AD structure.
type Field struct {
	Type byte
	Data []byte
}

// Payload accumulates AD structures. The zero value is an empty payload.
type Payload struct {
	data []byte
}

// AppendField appends a field. It refuses, leaving the payload untouched, if
// the field would make the payload longer than MaxPayloadLength.
func (p *Payload) AppendField(typ byte, data []byte) error {
	if len(p.data)+2+len(data) > MaxPayloadLength {
		return fmt.Errorf("append field 0x%02X (%d bytes): %w", typ, len(data), ErrPayloadTooLong)
	}
	p.data = append(p.data, byte(len(data)+1), typ)
	p.data = append(p.data, data...)
	return nil
}

// AppendFlags appends a Flags field.
func (p *Payload) AppendFlags(flags byte) error {
	return p.AppendField(TypeFlags, []byte{flags})
}

// AppendCompleteName appends a Complete Local Name field. The name is stored
// NUL terminated, the way a C string constant is measured with sizeof.
func (p *Payload) AppendCompleteName(name string) error {
	return p.AppendField(TypeCompleteName, NameBytes(name))
}

// Bytes returns a copy of the encoded payload.
func (p *Payload) Bytes() []byte {
	b := make([]byte, len(p.data))
	copy(b, p.data)
	return b
}

// Len returns the encoded length.
func (p *Payload) Len() int { return len(p.data) }

// Fields decodes the payload. A payload built with the Append methods is
// always well formed.
func (p *Payload) Fields() []Field {
	ff, _ := Parse(p.data)
	return ff
}

// Flags returns the value of the Flags field, if present.
func (p *Payload) Flags() (byte, bool) {
	for _, f := range p.Fields() {
		if f.Type == TypeFlags && len(f.Data) == 1 {
			return f.Data[0], true
		}
	}
	return 0, false
}

// LocalName returns the shortened or complete local name with trailing NUL
// bytes removed.
func (p *Payload) LocalName() (string, bool) {
	for _, f := range p.Fields() {
		if f.Type == TypeCompleteName || f.Type == TypeShortName {
			return strings.TrimRight(string(f.Data), "\x00"), true
		}
	}
	return "", false
}

// NameBytes returns the bytes of name followed by a NUL terminator.
func NameBytes(name string) []byte {
	b := make([]byte, 0, len(name)+1)
	b = append(b, name...)
	return append(b, 0)
}

// NewDevicePayload builds the advertising payload of a general discoverable,
// LE only peripheral carrying its complete local name.
func NewDevicePayload(name string) (Payload, error) {
	var p Payload
	if err := p.AppendFlags(FlagGeneralDiscoverable | FlagLEOnly); err != nil {
		return Payload{}, err
	}
	if err := p.AppendCompleteName(name); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// MaxNameLength is the longest device name NewDevicePayload accepts.
const MaxNameLength = MaxPayloadLength - 3 - 2 - 1

// Parse decodes raw advertising data into its fields. Trailing zero padding,
// as found in fixed 31 byte controller buffers, ends the data.
func Parse(b []byte) ([]Field, error) {
	var ff []Field
	for len(b) > 0 {
		l := int(b[0])
		if l == 0 {
			break
		}
		if len(b) < 1+l {
			return ff, fmt.Errorf("field of length %d with %d bytes left: %w", l, len(b)-1, ErrMalformed)
		}
		d := make([]byte, l-1)
		copy(d, b[2:1+l])
		ff = append(ff, Field{Type: b[1], Data: d})
		b = b[1+l:]
	}
	return ff, nil
}
