// cmd/ffslot/mounter.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/tamzrod/ffslot/internal/input"
	"github.com/tamzrod/ffslot/internal/slot"
)

// logMounter stands in for the drive emulator: it reports each inserted
// image and hands control back on the first button press.
type logMounter struct {
	buttons *input.State
	poll    time.Duration
}

func (m *logMounter) Insert(s slot.Slot) error {
	log.Printf("mount: insert (%s)", s)
	return nil
}

func (m *logMounter) Run(ctx context.Context) (input.Buttons, error) {
	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
			if b := m.buttons.Load(); b != 0 {
				log.Printf("mount: released (buttons=%s)", b)
				return b, nil
			}
		}
	}
}
