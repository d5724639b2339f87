// internal/input/sampler.go
package input

import (
	"context"
	"errors"
	"log"
	"time"
)

// DefaultInterval is the sampling period; 16 samples make an 80ms
// debounce window.
const DefaultInterval = 5 * time.Millisecond

// PinSource yields raw pin samples.
type PinSource interface {
	ReadPins(ctx context.Context) (Pins, error)
}

// PinSourceFunc adapts a plain function.
type PinSourceFunc func(ctx context.Context) (Pins, error)

func (f PinSourceFunc) ReadPins(ctx context.Context) (Pins, error) { return f(ctx) }

// Sampler is the periodic producer of the shared ButtonState.
type Sampler struct {
	src      PinSource
	dec      *Decoder
	state    *State
	interval time.Duration

	last    Pins
	failing bool
}

func NewSampler(src PinSource, dec *Decoder, state *State, interval time.Duration) (*Sampler, error) {
	if src == nil {
		return nil, errors.New("input: pin source required")
	}
	if dec == nil || state == nil {
		return nil, errors.New("input: decoder and state required")
	}
	if interval <= 0 {
		return nil, errors.New("input: interval must be > 0")
	}
	return &Sampler{src: src, dec: dec, state: state, interval: interval}, nil
}

// SampleOnce reads the pins, decodes, and publishes the result.
// A failed read reuses the previous pin levels.
func (s *Sampler) SampleOnce(ctx context.Context) Buttons {
	p, err := s.src.ReadPins(ctx)
	if err != nil {
		if !s.failing {
			log.Printf("input: pin read failed, holding last levels (err=%v)", err)
			s.failing = true
		}
		p = s.last
	} else {
		if s.failing {
			log.Printf("input: pin reads recovered")
			s.failing = false
		}
		s.last = p
	}
	b := s.dec.Step(p)
	s.state.Store(b)
	return b
}

// Run samples on a ticker until ctx is done. It never blocks the reader
// and never queues.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.state.Store(0)
			return
		case <-ticker.C:
			s.SampleOnce(ctx)
		}
	}
}

// Prime samples synchronously until the debouncer has settled, so a
// button held at power-on is visible in the state before Run starts.
func (s *Sampler) Prime(ctx context.Context) {
	for i := 0; i < debounceSamples && ctx.Err() == nil; i++ {
		s.SampleOnce(ctx)
		time.Sleep(s.interval)
	}
}
