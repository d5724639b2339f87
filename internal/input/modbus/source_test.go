// internal/input/modbus/source_test.go
package modbus

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/tamzrod/ffslot/internal/input"
)

type fakeReader struct {
	data   []byte
	fail   bool
	addr   uint16
	qty    uint16
	closed bool
}

func (f *fakeReader) ReadDiscreteInputs(address, quantity uint16) ([]byte, error) {
	f.addr, f.qty = address, quantity
	if f.fail {
		return nil, errors.New("timeout")
	}
	return f.data, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestReadPins_UnpacksLSBFirst(t *testing.T) {
	fr := &fakeReader{data: []byte{0b10101}}
	s, err := NewSource(100, func() (Reader, io.Closer, error) { return fr, fr, nil })
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	p, err := s.ReadPins(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := input.Pins{Left: true, Select: true, RotB: true}
	if p != want {
		t.Fatalf("pins=%+v want %+v", p, want)
	}
	if fr.addr != 100 || fr.qty != PinCount {
		t.Fatalf("geometry addr=%d qty=%d", fr.addr, fr.qty)
	}
}

func TestReadPins_FailureDropsClientAndReconnects(t *testing.T) {
	first := &fakeReader{fail: true}
	second := &fakeReader{data: []byte{0b00010}}
	made := 0
	factory := func() (Reader, io.Closer, error) {
		made++
		if made == 1 {
			return first, first, nil
		}
		return second, second, nil
	}

	s, _ := NewSource(0, factory)
	if _, err := s.ReadPins(context.Background()); err == nil {
		t.Fatalf("expected read error")
	}
	if !first.closed {
		t.Fatalf("failed client not closed")
	}

	p, err := s.ReadPins(context.Background())
	if err != nil {
		t.Fatalf("read after reconnect: %v", err)
	}
	if !p.Right || made != 2 {
		t.Fatalf("pins=%+v made=%d", p, made)
	}
}

func TestReadPins_ConnectFailure(t *testing.T) {
	s, _ := NewSource(0, func() (Reader, io.Closer, error) { return nil, nil, errors.New("refused") })
	if _, err := s.ReadPins(context.Background()); err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestNewSource_Validates(t *testing.T) {
	if _, err := NewSource(0, nil); err == nil {
		t.Fatalf("expected error for nil factory")
	}
	if _, err := NewSource(0xFFFE, func() (Reader, io.Closer, error) { return nil, nil, nil }); err == nil {
		t.Fatalf("expected error for address overflow")
	}
}

func TestUnpackBits_ShortData(t *testing.T) {
	bits := unpackBits(nil, 5)
	for i, b := range bits {
		if b {
			t.Fatalf("bit %d set from empty data", i)
		}
	}
}
