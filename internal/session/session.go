// internal/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/tamzrod/ffslot/internal/backend"
	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/display"
	"github.com/tamzrod/ffslot/internal/fault"
	"github.com/tamzrod/ffslot/internal/image"
	"github.com/tamzrod/ffslot/internal/nav"
	"github.com/tamzrod/ffslot/internal/slot"
	"github.com/tamzrod/ffslot/internal/volume"
)

// Deps are the collaborators of one session.
type Deps struct {
	Vol     volume.Volume
	Nav     config.NavigationConfig
	Images  image.Recognizer // nil = built-in extensions
	Buttons nav.Buttons
	Display display.Display // nil = none
	Clock   nav.Clock       // nil = wall clock
}

// Session owns the selection for one inserted volume.
type Session struct {
	vol     volume.Volume
	cfg     config.NavigationConfig
	images  image.Recognizer
	buttons nav.Buttons
	disp    display.Display
	clock   nav.Clock

	model slot.Model
	stack slot.Stack
	env   *backend.Env
	be    backend.Backend
	nav   *nav.Navigator

	cur     slot.Slot
	ejected bool
	health  display.Health
	code    uint16

	// stale holds a resolve failure not yet reported to a caller.
	stale error
}

func New(d Deps) (*Session, error) {
	if d.Vol == nil {
		return nil, errors.New("session: volume required")
	}
	if d.Buttons == nil {
		return nil, errors.New("session: button state required")
	}
	if d.Images == nil {
		d.Images = image.ByExtension(nil)
	}
	if d.Display == nil {
		d.Display = display.Multi(nil)
	}
	if d.Clock == nil {
		d.Clock = nav.SystemClock
	}
	return &Session{
		vol:     d.Vol,
		cfg:     d.Nav,
		images:  d.Images,
		buttons: d.Buttons,
		disp:    d.Display,
		clock:   d.Clock,
	}, nil
}

// Initialize applies FF.CFG, selects and loads the backend, and resolves
// the starting slot.
func (s *Session) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Check(); err != nil {
		return s.fail(err)
	}

	cfgDir := backend.LocateCfgDir(s.vol)
	if err := s.applyFFCfg(cfgDir); err != nil {
		return s.fail(err)
	}

	s.model = slot.Model{}
	s.stack.Reset()
	s.vol.SetCwd("")
	s.env = &backend.Env{
		Vol:    s.vol,
		Nav:    s.cfg,
		Images: s.images,
		Model:  &s.model,
		Stack:  &s.stack,
		CfgDir: cfgDir,
	}

	be, err := backend.Select(s.env)
	if err != nil {
		return s.fail(err)
	}
	s.be = be

	ejected, err := be.Load()
	if err != nil {
		return s.fail(err)
	}
	if err := be.Rebuild(); err != nil {
		return s.fail(err)
	}
	if err := s.repair(); err != nil {
		return s.fail(err)
	}
	if s.cur, err = be.Current(); err != nil {
		return s.fail(err)
	}

	s.ejected = ejected || s.cfg.EjectedOnStartup || s.buttons.Load() != 0
	s.nav = nav.New(s.cfg, &s.model, s.buttons, s.clock, s)

	s.health = display.HealthMounted
	if s.ejected {
		s.health = display.HealthEjected
	}
	s.logSlot()
	s.show()
	return nil
}

func (s *Session) applyFFCfg(dir volume.Dir) error {
	cwd := s.vol.Cwd()
	s.vol.SetCwd(dir)
	defer s.vol.SetCwd(cwd)

	f, err := s.vol.Open(config.FFCfgName, volume.OpenRead)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: %s: %w", config.FFCfgName, err)
	}
	defer f.Close()

	opts, err := config.ParseFFCfg(f)
	if err != nil {
		return fmt.Errorf("session: %s: %w", config.FFCfgName, err)
	}
	if unknown := config.ApplyFFCfg(&s.cfg, opts); len(unknown) > 0 {
		log.Printf("session: %s ignored keys %v", config.FFCfgName, unknown)
	}
	log.Printf("session: %s applied (options=%d nav-mode=%s)", config.FFCfgName, len(opts), s.cfg.NavMode)
	return nil
}

// repair moves an invalid current number forward, with wrap, to the
// next valid slot and persists it.
func (s *Session) repair() error {
	if s.model.Valid(int(s.model.Nr())) {
		return nil
	}
	i, ok := s.model.NextValid()
	if !ok {
		return fault.New(fault.CodeNoDirents, "no valid slot")
	}
	log.Printf("session: repaired slot (from=%d to=%d)", s.model.Nr(), i)
	s.model.Commit(int(i))
	if err := s.persist(); err != nil {
		return err
	}
	cur, err := s.be.Current()
	if err != nil {
		return err
	}
	s.cur = cur
	return nil
}

// persist writes the current number unconditionally.
func (s *Session) persist() error {
	if err := s.be.Write(); err != nil {
		return err
	}
	s.model.ClearDirty()
	return nil
}

// resolve re-reads the current slot after a model change.
func (s *Session) resolve() {
	cur, err := s.be.Current()
	if err != nil {
		s.stale = err
		return
	}
	s.cur = cur
	s.stale = nil
}

// ---- operations ----

// Backend reports the active persistence convention.
func (s *Session) Backend() backend.Kind { return s.be.Kind() }

func (s *Session) CurrentSlot() slot.Slot          { return s.cur }
func (s *Session) Ejected() bool                   { return s.ejected }
func (s *Session) Config() config.NavigationConfig { return s.cfg }

// View is what the front panel shows for the current state.
func (s *Session) View() display.View {
	return display.View{
		Health: s.health,
		Slot:   s.cur,
		Nr:     s.model.Nr(),
		Max:    s.model.Max(),
		Depth:  s.stack.Depth(),
		Code:   s.code,
	}
}

// Advance steps one valid slot in direction d. It reports whether the
// selection moved.
func (s *Session) Advance(d nav.Direction) bool {
	if !nav.Advance(&s.model, d, s.cfg.Loop) {
		return false
	}
	s.resolve()
	s.show()
	return true
}

// Commit persists the selection when it changed.
func (s *Session) Commit() error {
	if err := s.stale; err != nil {
		s.stale = nil
		return err
	}
	if !s.model.Dirty() {
		return nil
	}
	return s.persist()
}

// MarkEjected persists the ejected flag where the backend supports it.
func (s *Session) MarkEjected(ej bool) error {
	if err := s.be.MarkEjected(ej); err != nil {
		return err
	}
	s.ejected = ej
	if ej {
		s.health = display.HealthEjected
	} else {
		s.health = display.HealthMounted
	}
	s.show()
	return nil
}

// RebuildValidity rescans the current context.
func (s *Session) RebuildValidity() error {
	if err := s.be.Rebuild(); err != nil {
		return err
	}
	if !s.model.Valid(int(s.model.Nr())) {
		if i, ok := s.model.NextValid(); ok {
			s.model.Commit(int(i))
		}
	}
	s.resolve()
	return s.stale
}

// SelectByName selects the first slot whose name begins with name.
func (s *Session) SelectByName(name string) (bool, error) {
	nr, ok, err := s.be.Find(name)
	if err != nil || !ok {
		return false, err
	}
	if !s.model.Commit(int(nr)) {
		return false, nil
	}
	s.resolve()
	s.show()
	return true, s.stale
}

// Listed is one valid slot of the current context.
type Listed struct {
	Nr   uint16
	Slot slot.Slot
}

// Slots resolves every valid slot of the current context. The selection
// is left unchanged.
func (s *Session) Slots() ([]Listed, error) {
	saved := s.model.Nr()
	defer s.model.Load(saved)

	var out []Listed
	for i := 0; i <= int(s.model.Max()); i++ {
		if !s.model.Valid(i) {
			continue
		}
		s.model.Load(uint16(i))
		cur, err := s.be.Current()
		if err != nil {
			return nil, err
		}
		out = append(out, Listed{Nr: uint16(i), Slot: cur})
	}
	return out, nil
}

// ---- nav.Host ----

func (s *Session) Highlight() (slot.Slot, error) {
	cur, err := s.be.Current()
	if err != nil {
		return slot.Slot{}, err
	}
	s.cur = cur
	s.health = display.HealthBrowsing
	s.show()
	return cur, nil
}

func (s *Session) Current() slot.Slot { return s.cur }
func (s *Session) Depth() int         { return s.stack.Depth() }

// Check fails with a disk fault once the volume is gone.
func (s *Session) Check() error {
	if !s.vol.Connected() {
		return fault.ErrDisk
	}
	return nil
}

// ---- reporting ----

func (s *Session) show() {
	if err := s.disp.Show(s.View()); err != nil {
		log.Printf("session: display (err=%v)", err)
	}
}

func (s *Session) logSlot() {
	log.Printf("session: slot %d/%d (%s depth=%d)", s.model.Nr(), s.model.Max(), s.cur, s.stack.Depth())
}

// coder is satisfied by *fault.Error.
type coder interface {
	Code() uint16
}

// fail surfaces err on the display and returns it. A lost volume is
// reported as a disk fault.
func (s *Session) fail(err error) error {
	if errors.Is(err, volume.ErrDisconnected) && !errors.Is(err, fault.ErrDisk) {
		err = fmt.Errorf("%w: %w", fault.ErrDisk, err)
	}

	s.code = uint16(fault.CodeGeneric)
	var c coder
	if errors.As(err, &c) {
		s.code = c.Code()
	}
	s.health = display.HealthError
	log.Printf("session: %s (err=%v)", fault.Label(s.code), err)
	s.show()
	return err
}
