// internal/session/run.go
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tamzrod/ffslot/internal/backend"
	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/display"
	"github.com/tamzrod/ffslot/internal/fault"
	"github.com/tamzrod/ffslot/internal/input"
	"github.com/tamzrod/ffslot/internal/nav"
	"github.com/tamzrod/ffslot/internal/slot"
	"github.com/tamzrod/ffslot/internal/volume"
)

// Mounter is the emulation engine boundary.
type Mounter interface {
	// Insert presents s to the host.
	Insert(s slot.Slot) error
	// Run emulates the inserted image until a button is pressed, or until
	// the host releases it. It returns the buttons that ended the run.
	Run(ctx context.Context) (input.Buttons, error)
}

const (
	pollInterval = time.Millisecond

	// wpHold is how long a held button in the ejected state takes to
	// toggle write-protect.
	wpHold = 2 * time.Second

	// bothWindow is how long a single button waits for its partner when
	// both buttons eject.
	bothWindow = 50 * time.Millisecond
)

// Run drives the mount / eject / browse loop until ctx ends or a fault
// stops the session.
func (s *Session) Run(ctx context.Context, m Mounter) error {
	if s.be == nil {
		return errors.New("session: not initialized")
	}

	var b input.Buttons
	browse := s.cur.IsDir()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Check(); err != nil {
			return s.fail(err)
		}

		if !browse {
			if err := s.repair(); err != nil {
				return s.fail(err)
			}
			if s.cur.IsDir() {
				if err := s.enter(); err != nil {
					return s.fail(err)
				}
				b, browse = 0, true
				continue
			}

			var err error
			if b, err = s.mountOnce(ctx, m); err != nil {
				return err
			}
			if b == 0 {
				continue
			}
			if b&input.Select != 0 {
				if b, err = s.ejectState(ctx); err != nil {
					return s.abort(ctx, err)
				}
				if b&input.Select != 0 {
					continue
				}
			}
		}
		browse = false

		out, err := s.nav.Navigate(ctx, b)
		if err != nil {
			return s.abort(ctx, err)
		}
		// Eject restores the prior slot and Ascend selects "..": neither
		// went through Highlight, so the resolved slot is stale.
		s.ejected = out == nav.Eject
		if out == nav.Eject || out == nav.Ascend {
			if s.cur, err = s.be.Current(); err != nil {
				return s.fail(err)
			}
		}
		if err := s.persist(); err != nil {
			return s.fail(err)
		}
		log.Printf("session: selection %s (slot=%d)", out, s.model.Nr())
	}
}

// mountOnce presents the current slot to the mounter. It returns the
// buttons that ended the run, or 0 when the loop should go round again.
// A pending eject skips the mounter and reports SELECT.
func (s *Session) mountOnce(ctx context.Context, m Mounter) (input.Buttons, error) {
	if s.ejected {
		s.ejected = false
		return input.Select, nil
	}

	s.logSlot()
	s.health = display.HealthMounted
	s.show()

	if err := m.Insert(s.cur); err != nil {
		return 0, s.fail(fmt.Errorf("session: insert: %w", err))
	}
	b, err := m.Run(ctx)
	if err != nil {
		return 0, s.abort(ctx, fmt.Errorf("session: mount: %w", err))
	}
	if err := s.Check(); err != nil {
		return 0, s.fail(err)
	}
	if s.model.Dirty() {
		if err := s.persist(); err != nil {
			return 0, s.fail(err)
		}
	}
	if b != 0 {
		return b, nil
	}

	// The host may have rewritten the selector config.
	r, ok := s.be.(backend.Refresher)
	if !ok || s.cfg.NavMode == config.NavIndexed {
		if b, err = s.awaitPress(ctx); err != nil {
			return 0, s.abort(ctx, err)
		}
		return b, nil
	}
	if err := r.Refresh(); err != nil {
		return 0, s.fail(err)
	}
	if err := s.be.Rebuild(); err != nil {
		return 0, s.fail(err)
	}
	if err := s.repair(); err != nil {
		return 0, s.fail(err)
	}
	if s.cur, err = s.be.Current(); err != nil {
		return 0, s.fail(err)
	}
	log.Printf("session: selector refreshed (slot=%d)", s.model.Nr())
	return 0, nil
}

// abort returns the context's error when it ended the wait, else
// surfaces err as a fault.
func (s *Session) abort(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.fail(err)
}

// enter descends into, or ascends out of, the current folder slot.
func (s *Session) enter() error {
	f, ok := s.be.(backend.Folders)
	if !ok {
		return fault.New(fault.CodeBadImage, "folder %q in %s mode", s.cur.Name, s.be.Kind())
	}
	if err := f.Enter(s.cur); err != nil {
		return err
	}
	if err := s.be.Rebuild(); err != nil {
		return err
	}
	if !s.model.Valid(int(s.model.Nr())) {
		if i, ok := s.model.NextValid(); ok {
			s.model.Load(i)
		}
	}
	cur, err := s.be.Current()
	if err != nil {
		return err
	}
	s.cur = cur
	s.health = display.HealthBrowsing
	log.Printf("session: folder (dir=%q depth=%d)", s.vol.Cwd(), s.stack.Depth())
	s.show()
	return nil
}

// ejectState runs while the image is ejected. It returns SELECT when the
// image should be reinserted, or the direction buttons that started
// browsing.
func (s *Session) ejectState(ctx context.Context) (input.Buttons, error) {
	if err := s.MarkEjected(true); err != nil {
		return 0, err
	}
	if err := s.holdToggle(ctx); err != nil {
		return 0, err
	}

	b, err := s.awaitPress(ctx)
	if err != nil {
		return 0, err
	}
	if s.cfg.TwoButton.Mode == config.TwoButtonEject && b&input.Both != 0 {
		start := s.clock.Now()
		for s.clock.Now().Sub(start) < bothWindow && b&input.Both != input.Both {
			s.clock.Sleep(pollInterval)
			b |= s.buttons.Load()
		}
		if b&input.Both == input.Both {
			b = input.Select
		}
	}

	if b&input.Select != 0 {
		if err := s.holdToggle(ctx); err != nil {
			return 0, err
		}
		if err := s.MarkEjected(false); err != nil {
			return 0, err
		}
		return input.Select, nil
	}
	return b, nil
}

// awaitPress polls until any button is down.
func (s *Session) awaitPress(ctx context.Context) (input.Buttons, error) {
	for {
		if b := s.buttons.Load(); b != 0 {
			return b, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := s.Check(); err != nil {
			return 0, err
		}
		s.clock.Sleep(pollInterval)
	}
}

// holdToggle waits for every button to be released, toggling the write
// protection of the current slot for each wpHold the buttons stay down.
func (s *Session) holdToggle(ctx context.Context) error {
	start := s.clock.Now()
	for s.buttons.Load() != 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Check(); err != nil {
			return err
		}
		if s.clock.Now().Sub(start) >= wpHold {
			s.toggleWriteProtect()
			start = s.clock.Now()
		}
		s.clock.Sleep(pollInterval)
	}
	return nil
}

func (s *Session) toggleWriteProtect() {
	if s.cur.IsDir() {
		return
	}
	if s.vol.ReadOnly() {
		s.cur.Attr |= volume.AttrReadOnly
	} else {
		s.cur.Attr ^= volume.AttrReadOnly
	}
	log.Printf("session: write-protect (slot=%d ro=%v)", s.model.Nr(), s.cur.ReadOnly())
	s.show()
}
