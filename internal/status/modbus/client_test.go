// internal/status/modbus/client_test.go
package modbus

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type fakeWriter struct {
	addr    uint16
	qty     uint16
	value   []byte
	failErr error
}

func (w *fakeWriter) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	if w.failErr != nil {
		return nil, w.failErr
	}
	w.addr, w.qty, w.value = address, quantity, append([]byte(nil), value...)
	return nil, nil
}

type closeCounter struct{ n int }

func (c *closeCounter) Close() error { c.n++; return nil }

// countingFactory hands out w on every dial and counts dials.
func countingFactory(w *fakeWriter, c *closeCounter, dials *int, dialErr *error) Factory {
	return func() (Writer, io.Closer, error) {
		*dials++
		if *dialErr != nil {
			return nil, nil, *dialErr
		}
		return w, c, nil
	}
}

func TestBlock_WritesAtBasePlusOffset(t *testing.T) {
	w, c := &fakeWriter{}, &closeCounter{}
	var dials int
	var dialErr error

	b, err := NewBlock(40, 20, countingFactory(w, c, &dials, &dialErr))
	if err != nil {
		t.Fatal(err)
	}
	if err := b.WriteBlock(11, []uint16{0x4741, 0x4D45}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if w.addr != 51 || w.qty != 2 || !bytes.Equal(w.value, []byte{0x47, 0x41, 0x4D, 0x45}) {
		t.Fatalf("addr=%d qty=%d value=% x", w.addr, w.qty, w.value)
	}
	if err := b.WriteBlock(0, []uint16{1}); err != nil || dials != 1 {
		t.Fatalf("second write redialed: dials=%d err=%v", dials, err)
	}
}

func TestBlock_FailureDropsAndRedials(t *testing.T) {
	w, c := &fakeWriter{failErr: errors.New("broken pipe")}, &closeCounter{}
	var dials int
	var dialErr error

	b, _ := NewBlock(0, 20, countingFactory(w, c, &dials, &dialErr))
	if err := b.WriteBlock(0, []uint16{1}); err == nil {
		t.Fatalf("expected failure")
	}
	if c.n != 1 {
		t.Fatalf("client not closed after failure: %d", c.n)
	}

	w.failErr = nil
	if err := b.WriteBlock(0, []uint16{1}); err != nil {
		t.Fatalf("recovery: %v", err)
	}
	if dials != 2 {
		t.Fatalf("dials=%d want 2", dials)
	}
}

func TestBlock_ConnectFailure(t *testing.T) {
	var dials int
	dialErr := errors.New("refused")
	b, _ := NewBlock(0, 20, countingFactory(&fakeWriter{}, &closeCounter{}, &dials, &dialErr))

	if err := b.Connect(); !errors.Is(err, dialErr) {
		t.Fatalf("connect: %v", err)
	}
	if err := b.WriteBlock(0, []uint16{1}); !errors.Is(err, dialErr) {
		t.Fatalf("write: %v", err)
	}
}

func TestBlock_RejectsOutOfBlockWrites(t *testing.T) {
	var dials int
	var dialErr error
	b, _ := NewBlock(0, 20, countingFactory(&fakeWriter{}, &closeCounter{}, &dials, &dialErr))

	if err := b.WriteBlock(19, []uint16{1, 2}); err == nil {
		t.Fatalf("expected range error")
	}
	if dials != 0 {
		t.Fatalf("dialed for a rejected write")
	}
	if _, err := NewBlock(0xFFF0, 20, countingFactory(&fakeWriter{}, &closeCounter{}, &dials, &dialErr)); err == nil {
		t.Fatalf("expected geometry error")
	}
	if _, err := NewBlock(0, 20, nil); err == nil {
		t.Fatalf("expected factory error")
	}
}
