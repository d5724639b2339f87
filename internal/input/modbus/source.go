// internal/input/modbus/source.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/ffslot/internal/input"
)

// PinCount discrete inputs are read per sample: left, right, select,
// rotary A, rotary B.
const PinCount = 5

// Reader is the one Modbus operation the source needs (FC 2).
type Reader interface {
	ReadDiscreteInputs(address, quantity uint16) ([]byte, error)
}

// Factory makes a new connected Reader. ONE attempt per call.
type Factory func() (Reader, io.Closer, error)

// Config is minimal transport config.
// Exactly one of Endpoint (TCP) or Device (RTU) is set.
type Config struct {
	Endpoint string
	Device   string
	Baud     int
	UnitID   uint8
	Timeout  time.Duration
}

// Source implements input.PinSource over Modbus discrete inputs.
// On transport failure the client is dropped and a new one is made on a
// later sample.
type Source struct {
	address uint16
	factory Factory

	mu     sync.Mutex
	reader Reader
	closer io.Closer
}

// NewSource creates a source with an explicit factory.
func NewSource(address uint16, factory Factory) (*Source, error) {
	if factory == nil {
		return nil, errors.New("input modbus: factory required")
	}
	if uint32(address)+PinCount > 0x10000 {
		return nil, fmt.Errorf("input modbus: address %d out of range", address)
	}
	return &Source{address: address, factory: factory}, nil
}

// ReadPins performs exactly one FC 2 read.
func (s *Source) ReadPins(ctx context.Context) (input.Pins, error) {
	if err := ctx.Err(); err != nil {
		return input.Pins{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reader == nil {
		r, c, err := s.factory()
		if err != nil {
			return input.Pins{}, fmt.Errorf("input modbus: connect: %w", err)
		}
		s.reader, s.closer = r, c
	}

	data, err := s.reader.ReadDiscreteInputs(s.address, PinCount)
	if err != nil {
		s.drop()
		return input.Pins{}, fmt.Errorf("input modbus: read: %w", err)
	}

	bits := unpackBits(data, PinCount)
	return input.Pins{
		Left:   bits[0],
		Right:  bits[1],
		Select: bits[2],
		RotA:   bits[3],
		RotB:   bits[4],
	}, nil
}

// Close releases the current client, if any.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drop()
}

func (s *Source) drop() error {
	var err error
	if s.closer != nil {
		err = s.closer.Close()
	}
	s.reader, s.closer = nil, nil
	return err
}

// Dial returns a factory for the configured transport.
func Dial(cfg Config) Factory {
	return func() (Reader, io.Closer, error) {
		if cfg.Endpoint != "" {
			h := modbus.NewTCPClientHandler(cfg.Endpoint)
			h.Timeout = cfg.Timeout
			h.SlaveId = cfg.UnitID
			if err := h.Connect(); err != nil {
				return nil, nil, err
			}
			return modbus.NewClient(h), h, nil
		}

		h := modbus.NewRTUClientHandler(cfg.Device)
		h.BaudRate = cfg.Baud
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, nil, err
		}
		return modbus.NewClient(h), h, nil
	}
}

// ---- helpers (pure geometry) ----

func unpackBits(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		if byteIdx >= len(data) {
			continue
		}
		out[i] = data[byteIdx]&(1<<(i%8)) != 0
	}
	return out
}
