// internal/status/writer.go
package status

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tamzrod/ffslot/internal/display"
)

// Client writes registers at an offset inside one status block.
// The client owns the block's unit ID and base address.
type Client interface {
	WriteBlock(offset uint16, regs []uint16) error
}

// Plan names one status block for logs and errors.
type Plan struct {
	Endpoint   string
	DeviceName string
}

// Writer delivers snapshots into holding registers. The first write,
// and the first write after any failure, asserts the full block; later
// writes only touch registers that changed.
type Writer struct {
	plan Plan
	cli  Client

	needFull bool
	last     []uint16
}

func NewWriter(plan Plan, cli Client) *Writer {
	return &Writer{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
	}
}

// Show implements display.Display.
func (w *Writer) Show(v display.View) error {
	return w.WriteStatus(FromView(v))
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (w *Writer) WriteStatus(s Snapshot) error {
	if w == nil {
		return errors.New("status writer: disabled")
	}
	if w.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", w.plan.Endpoint)
	}

	regs := Encode(s)

	// ------------------------------------------------------------
	// Full block write
	// ------------------------------------------------------------
	if w.needFull {
		if err := w.cli.WriteBlock(0, regs); err != nil {
			return fmt.Errorf("status writer %s: full block write failed: %w", w.ident(), err)
		}
		w.needFull = false
		w.last = regs
		log.Printf("status: block asserted (device=%s regs=%d)", w.ident(), len(regs))
		return nil
	}

	var errs []string
	for _, r := range changedRuns(w.last, regs) {
		if err := w.cli.WriteBlock(uint16(r.start), regs[r.start:r.end]); err != nil {
			errs = append(errs, fmt.Sprintf("slots %d-%d write failed: %v", r.start, r.end-1, err))
			continue
		}
		copy(w.last[r.start:r.end], regs[r.start:r.end])
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt; re-assert on next success.
		w.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}
	return nil
}

func (w *Writer) ident() string {
	if w.plan.DeviceName != "" {
		return w.plan.DeviceName
	}
	return w.plan.Endpoint
}

type run struct{ start, end int }

// changedRuns lists the contiguous register ranges that differ.
func changedRuns(prev, next []uint16) []run {
	var out []run
	for i := 0; i < len(next); i++ {
		if i < len(prev) && prev[i] == next[i] {
			continue
		}
		j := i + 1
		for j < len(next) && (j >= len(prev) || prev[j] != next[j]) {
			j++
		}
		out = append(out, run{i, j})
		i = j
	}
	return out
}
