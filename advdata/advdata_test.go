package advdata

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewDevicePayload(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{
			name: "gopher",
			want: "0201060809676f7068657200",
		},
		{
			name: "<CHANGE ME!>",
			want: "020106" + "0e09" + "3c4348414e4745204d45213e" + "00",
		},
		{
			name: "",
			want: "020106020900",
		},
	}
	for _, tt := range cases {
		p, err := NewDevicePayload(tt.name)
		if err != nil {
			t.Fatalf("NewDevicePayload(%q): %v", tt.name, err)
		}
		if got := fmt.Sprintf("%x", p.Bytes()); got != tt.want {
			t.Errorf("NewDevicePayload(%q): got %q want %q", tt.name, got, tt.want)
		}
	}
}

func TestNewDevicePayloadTooLong(t *testing.T) {
	name := strings.Repeat("n", MaxNameLength)
	p, err := NewDevicePayload(name)
	if err != nil {
		t.Fatalf("name of %d bytes: %v", len(name), err)
	}
	if p.Len() != MaxPayloadLength {
		t.Errorf("got length %d want %d", p.Len(), MaxPayloadLength)
	}

	_, err = NewDevicePayload(name + "n")
	if !errors.Is(err, ErrPayloadTooLong) {
		t.Errorf("name of %d bytes: got %v want ErrPayloadTooLong", len(name)+1, err)
	}
}

func TestAppendField(t *testing.T) {
	cases := []struct {
		curr    []byte
		data    []byte
		want    []byte
		wantErr bool
	}{
		{
			curr: nil,
			data: []byte("ABCDE"),
			want: []byte{0x06, TypeCompleteName, 'A', 'B', 'C', 'D', 'E'},
		},
		{
			curr: []byte("111111111122222222223333"),
			data: []byte("ABCDE"),
			want: append([]byte("111111111122222222223333"), 0x06, TypeCompleteName, 'A', 'B', 'C', 'D', 'E'),
		},
		{
			curr:    []byte("1111111111222222222233333"),
			data:    []byte("ABCDE"),
			want:    []byte("1111111111222222222233333"),
			wantErr: true,
		},
	}
	for _, tt := range cases {
		p := Payload{data: append([]byte(nil), tt.curr...)}
		err := p.AppendField(TypeCompleteName, tt.data)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q AppendField(%q): got err %v, want err %v", tt.curr, tt.data, err, tt.wantErr)
		}
		if !bytes.Equal(p.Bytes(), tt.want) {
			t.Errorf("%q AppendField(%q): got %x want %x", tt.curr, tt.data, p.Bytes(), tt.want)
		}
	}
}

func TestPayloadAccessors(t *testing.T) {
	p, err := NewDevicePayload("blinky")
	if err != nil {
		t.Fatal(err)
	}
	flags, ok := p.Flags()
	if !ok || flags != FlagGeneralDiscoverable|FlagLEOnly {
		t.Errorf("Flags: got 0x%02X, %v", flags, ok)
	}
	name, ok := p.LocalName()
	if !ok || name != "blinky" {
		t.Errorf("LocalName: got %q, %v", name, ok)
	}
	ff := p.Fields()
	if len(ff) != 2 {
		t.Fatalf("Fields: got %d fields want 2", len(ff))
	}
	if !bytes.Equal(ff[1].Data, []byte("blinky\x00")) {
		t.Errorf("name field: got %q", ff[1].Data)
	}

	var empty Payload
	if _, ok := empty.LocalName(); ok {
		t.Error("empty payload reported a local name")
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in      []byte
		want    int
		wantErr bool
	}{
		{in: []byte{0x02, 0x01, 0x06}, want: 1},
		{in: []byte{0x02, 0x01, 0x06, 0x03, 0x09, 'a', 0x00}, want: 2},
		{in: []byte{0x02, 0x01, 0x06, 0x00, 0x00, 0x00}, want: 1},
		{in: []byte{0x05, 0x09, 'a'}, wantErr: true},
		{in: nil, want: 0},
	}
	for _, tt := range cases {
		ff, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%x): got err %v, want err %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%x): got %v want ErrMalformed", tt.in, err)
		}
		if !tt.wantErr && len(ff) != tt.want {
			t.Errorf("Parse(%x): got %d fields want %d", tt.in, len(ff), tt.want)
		}
	}
}

func TestPDUType(t *testing.T) {
	if !ConnectableUndirected.Connectable() {
		t.Error("ADV_IND should be connectable")
	}
	if NonConnectableUndirected.Connectable() || ScannableUndirected.Connectable() {
		t.Error("non-connectable PDU reported connectable")
	}
	if s := ConnectableUndirected.String(); s != "ADV_IND" {
		t.Errorf("String: got %q", s)
	}
}
