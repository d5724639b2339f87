// internal/nav/nav.go
package nav

import (
	"context"
	"log"
	"time"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/input"
	"github.com/tamzrod/ffslot/internal/slot"
)

// pollInterval paces every cooperative wait.
const pollInterval = time.Millisecond

// releaseGrace bounds how long input is ignored while both buttons are
// being let go.
const releaseGrace = time.Second

// State of the navigator.
type State int

const (
	Idle State = iota
	Browsing
	CommitPending
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case CommitPending:
		return "commit-pending"
	default:
		return "idle"
	}
}

// Outcome says how a navigation round ended. The caller persists the
// selection in every case.
type Outcome int

const (
	none Outcome = iota

	// Settled: the idle timeout expired with no further input.
	Settled
	// Ascend: both buttons in a rotary mode inside a folder.
	Ascend
	// Eject: both buttons in eject mode; the prior slot was restored.
	Eject
)

func (o Outcome) String() string {
	switch o {
	case Settled:
		return "settled"
	case Ascend:
		return "ascend"
	case Eject:
		return "eject"
	default:
		return "none"
	}
}

// Buttons is the read side of the shared ButtonState.
type Buttons interface {
	Load() input.Buttons
}

// Host is the session side of navigation.
type Host interface {
	// Highlight resolves and displays the model's current slot.
	Highlight() (slot.Slot, error)
	// Current is the most recently resolved slot.
	Current() slot.Slot
	// Depth is the folder nesting of the current listing.
	Depth() int
	// Check fails once the volume is gone.
	Check() error
}

// Navigator is the browse / commit-pending state machine.
type Navigator struct {
	cfg   config.NavigationConfig
	model *slot.Model
	btn   Buttons
	clock Clock
	host  Host

	state State
}

func New(cfg config.NavigationConfig, model *slot.Model, btn Buttons, clock Clock, host Host) *Navigator {
	if clock == nil {
		clock = SystemClock
	}
	return &Navigator{cfg: cfg, model: model, btn: btn, clock: clock, host: host}
}

func (n *Navigator) State() State { return n.state }

// Navigate runs from the first observed press until the selection
// settles. b is the button state that started the round.
func (n *Navigator) Navigate(ctx context.Context, b input.Buttons) (Outcome, error) {
	defer func() { n.state = Idle }()

	for {
		n.state = Browsing
		out, err := n.browse(ctx, b)
		if err != nil || out != none {
			return out, err
		}

		n.state = CommitPending
		b, err = n.awaitCommit(ctx)
		if err != nil {
			return none, err
		}
		if b == 0 {
			return Settled, nil
		}
	}
}

// browse steps while LEFT or RIGHT is held.
func (n *Navigator) browse(ctx context.Context, b input.Buttons) (Outcome, error) {
	var (
		prev    input.Buttons
		last    time.Time
		changes int
	)
	old := int(n.model.Nr())
	fast := n.cfg.TwoButton.Mode == config.TwoButtonRotaryFast

	for ; ; prev, b = b, n.btn.Load() {
		if err := ctx.Err(); err != nil {
			return none, err
		}
		b &= input.Both
		if b == 0 {
			return none, nil
		}

		now := n.clock.Now()
		if prev == b {
			if now.Sub(last) < RepeatDelay(changes, fast) {
				n.clock.Sleep(pollInterval)
				continue
			}
			changes++
		} else {
			changes = 0
		}
		last = now

		i := int(n.model.Nr())
		switch {
		case b == input.Both:
			if n.cfg.TwoButton.Mode == config.TwoButtonEject {
				n.model.Commit(old)
				log.Printf("nav: eject (slot=%d)", old)
				return Eject, nil
			}
			i = 0
			n.model.Commit(0)
			if n.cfg.TwoButton.RotaryStyle() {
				if err := n.awaitRelease(ctx, 0); err != nil {
					return none, err
				}
				if n.host.Depth() != 0 {
					return Ascend, nil
				}
				if _, err := n.host.Highlight(); err != nil {
					return none, err
				}
				return none, nil
			}
			if _, err := n.host.Highlight(); err != nil {
				return none, err
			}
			if err := n.awaitRelease(ctx, releaseGrace); err != nil {
				return none, err
			}
		case b&input.Left != 0:
			i = Step(n.model, i, Prev, n.cfg.Loop)
		default:
			i = Step(n.model, i, Next, n.cfg.Loop)
		}

		n.model.Commit(i)
		if _, err := n.host.Highlight(); err != nil {
			return none, err
		}
	}
}

// awaitRelease waits until no button is held, or for at most limit when
// limit is non-zero.
func (n *Navigator) awaitRelease(ctx context.Context, limit time.Duration) error {
	start := n.clock.Now()
	for n.btn.Load() != 0 {
		if limit != 0 && n.clock.Now().Sub(start) >= limit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n.clock.Sleep(pollInterval)
	}
	return nil
}

// awaitCommit waits out the idle timeout. It returns the buttons that
// interrupted the wait, or 0 when the timeout expired.
func (n *Navigator) awaitCommit(ctx context.Context) (input.Buttons, error) {
	wait := n.CommitWait(n.host.Current())
	start := n.clock.Now()

	var b input.Buttons
	for wait == 0 || n.clock.Now().Sub(start) < wait {
		if b = n.btn.Load(); b != 0 {
			break
		}
		if err := n.host.Check(); err != nil {
			return 0, err
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n.clock.Sleep(pollInterval)
	}

	// SELECT commits once released.
	for b&input.Select != 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n.clock.Sleep(pollInterval)
		b = n.btn.Load()
	}
	return b, nil
}

// CommitWait is the idle time before a highlighted slot is persisted.
// Zero means wait for a button. On a rich display the wait stretches so
// a long name can scroll through once.
func (n *Navigator) CommitWait(s slot.Slot) time.Duration {
	secs := n.cfg.AutoselectFileSecs
	if s.IsDir() {
		secs = n.cfg.AutoselectFolderSecs
	}
	wait := time.Duration(secs) * time.Second
	if wait == 0 || !n.cfg.RichDisplay() {
		return wait
	}
	steps := max(len(s.Name)-n.cfg.DisplayColumns, 0)
	scroll := time.Duration(n.cfg.NavScrollPause+steps*n.cfg.NavScrollRate) * time.Millisecond
	return max(wait, scroll)
}
