// internal/session/session_test.go
package session

import (
	"context"
	"errors"
	"strings"
	"testing"
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

// ---- fakes ----

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

type press struct {
	from, to time.Duration
	b        input.Buttons
}

type script struct {
	clock   *fakeClock
	start   time.Time
	presses []press
}

func (s *script) Load() input.Buttons {
	at := s.clock.now.Sub(s.start)
	for _, p := range s.presses {
		if at >= p.from && at < p.to {
			return p.b
		}
	}
	return 0
}

type recorder struct {
	views []display.View
	hook  func(display.View)
}

func (r *recorder) Show(v display.View) error {
	r.views = append(r.views, v)
	if r.hook != nil {
		r.hook(v)
	}
	return nil
}

func (r *recorder) saw(h display.Health) bool {
	for _, v := range r.views {
		if v.Health == h {
			return true
		}
	}
	return false
}

func (r *recorder) last() display.View { return r.views[len(r.views)-1] }

var errDone = errors.New("mounter done")

type mountStep struct {
	after time.Duration
	b     input.Buttons
	fn    func()
}

type fakeMounter struct {
	clock    *fakeClock
	steps    []mountStep
	inserted []slot.Slot
	onInsert func(slot.Slot)
}

func (m *fakeMounter) Insert(s slot.Slot) error {
	m.inserted = append(m.inserted, s)
	if m.onInsert != nil {
		m.onInsert(s)
	}
	return nil
}

func (m *fakeMounter) Run(ctx context.Context) (input.Buttons, error) {
	if len(m.steps) == 0 {
		return 0, errDone
	}
	st := m.steps[0]
	m.steps = m.steps[1:]
	m.clock.Sleep(st.after)
	if st.fn != nil {
		st.fn()
	}
	return st.b, nil
}

func (m *fakeMounter) names() []string {
	var out []string
	for _, s := range m.inserted {
		out = append(out, s.Name)
	}
	return out
}

// ---- rig ----

const trailPath = "FF/IMAGE_A.CFG"

type rig struct {
	vol   *volume.Mem
	clock *fakeClock
	btn   *script
	disp  *recorder
	nav   config.NavigationConfig
}

func newRig(files ...string) *rig {
	v := volume.NewMem()
	v.AddDir("FF")
	for _, f := range files {
		v.AddFile(f, []byte("image"), volume.AttrArchive)
	}
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	return &rig{
		vol:   v,
		clock: clock,
		btn:   &script{clock: clock, start: clock.now},
		disp:  &recorder{},
		nav:   config.Defaults().Navigation,
	}
}

func (r *rig) trail(s string) { r.vol.AddFile(trailPath, []byte(s), volume.AttrArchive) }

func (r *rig) session(t *testing.T) *Session {
	t.Helper()
	s, err := New(Deps{
		Vol:     r.vol,
		Nav:     r.nav,
		Buttons: r.btn,
		Display: r.disp,
		Clock:   r.clock,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return s
}

func (r *rig) start(t *testing.T) *Session {
	t.Helper()
	s := r.session(t)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s
}

func (r *rig) mounter(steps ...mountStep) *fakeMounter {
	return &fakeMounter{clock: r.clock, steps: steps}
}

func (r *rig) readTrail() string { return string(r.vol.ReadFile(trailPath)) }

// ---- construction / initialize ----

func TestNew_RequiresVolumeAndButtons(t *testing.T) {
	if _, err := New(Deps{Buttons: &input.State{}}); err == nil {
		t.Fatalf("expected error without volume")
	}
	if _, err := New(Deps{Vol: volume.NewMem()}); err == nil {
		t.Fatalf("expected error without buttons")
	}
}

func TestInitialize_ResumesNativeTrail(t *testing.T) {
	r := newRig("A.ADF", "B.ADF", "C.ADF")
	r.trail("B.ADF")
	s := r.start(t)

	if s.Backend() != backend.KindNative {
		t.Fatalf("backend=%s", s.Backend())
	}
	v := s.View()
	if s.CurrentSlot().Name != "B" || v.Nr != 1 || v.Max != 2 {
		t.Fatalf("view=%s", v)
	}
	if s.Ejected() || v.Health != display.HealthMounted {
		t.Fatalf("unexpected state %s ejected=%v", v.Health, s.Ejected())
	}
	if len(r.disp.views) == 0 {
		t.Fatalf("initial view not shown")
	}
}

func TestInitialize_FFCfgOverridesNavigation(t *testing.T) {
	r := newRig("DSKA0000.ADF", "DSKA0003.ADF")
	r.vol.AddFile("FF/FF.CFG", []byte("# volume options\nnav-mode = indexed\nnav-loop = no\nbogus = 1\n"), volume.AttrArchive)
	s := r.start(t)

	if s.Backend() != backend.KindFFIndexed {
		t.Fatalf("backend=%s", s.Backend())
	}
	if s.Config().NavMode != config.NavIndexed || s.Config().Loop {
		t.Fatalf("FF.CFG not applied: %+v", s.Config())
	}
	if s.View().Max != 3 || s.CurrentSlot().Name != "DSKA0000" {
		t.Fatalf("view=%s", s.View())
	}
}

func TestInitialize_EjectedSources(t *testing.T) {
	r := newRig("A.ADF", "B.ADF")
	r.trail("B.ADF\\EJ")
	if s := r.start(t); !s.Ejected() || s.View().Health != display.HealthEjected {
		t.Fatalf("trail marker ignored")
	}

	r = newRig("A.ADF")
	r.btn.presses = []press{{0, time.Hour, input.Select}}
	if s := r.start(t); !s.Ejected() {
		t.Fatalf("held button should start ejected")
	}

	r = newRig("A.ADF")
	r.nav.EjectedOnStartup = true
	if s := r.start(t); !s.Ejected() {
		t.Fatalf("ejected-on-startup ignored")
	}
}

func TestInitialize_DisconnectedIsDiskFault(t *testing.T) {
	r := newRig("A.ADF")
	r.vol.SetConnected(false)

	err := r.session(t).Initialize(context.Background())
	if !errors.Is(err, fault.ErrDisk) {
		t.Fatalf("expected disk fault, got %v", err)
	}
	if v := r.disp.last(); v.Health != display.HealthError || v.Code != uint16(fault.CodeDisk) {
		t.Fatalf("error view %+v", v)
	}
}

func TestInitialize_NoImagesIsFatal(t *testing.T) {
	r := newRig("README.TXT")

	err := r.session(t).Initialize(context.Background())
	if !errors.Is(err, fault.ErrNoDirents) {
		t.Fatalf("expected no-dirents, got %v", err)
	}
	if r.disp.last().Code != uint16(fault.CodeNoDirents) {
		t.Fatalf("code=%d", r.disp.last().Code)
	}
}

// ---- direct operations ----

func TestAdvanceAndCommit(t *testing.T) {
	r := newRig("A.ADF", "B.ADF", "C.ADF")
	s := r.start(t)

	if !s.Advance(nav.Next) || s.CurrentSlot().Name != "B" {
		t.Fatalf("advance: %s", s.View())
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := r.readTrail(); got != "B.ADF" {
		t.Fatalf("trail=%q", got)
	}

	r.trail("SENTINEL")
	if err := s.Commit(); err != nil {
		t.Fatalf("idle commit: %v", err)
	}
	if got := r.readTrail(); got != "SENTINEL" {
		t.Fatalf("clean commit rewrote the trail: %q", got)
	}

	s.Advance(nav.Prev)
	s.Advance(nav.Prev)
	if s.CurrentSlot().Name != "C" {
		t.Fatalf("prev should wrap to C, got %s", s.CurrentSlot().Name)
	}
}

func TestAdvance_NoLoopStopsAtEnd(t *testing.T) {
	r := newRig("A.ADF", "B.ADF")
	r.nav.Loop = false
	s := r.start(t)

	if s.Advance(nav.Prev) {
		t.Fatalf("advance before first slot should not move")
	}
	if !s.Advance(nav.Next) || s.Advance(nav.Next) {
		t.Fatalf("advance past last slot should not move")
	}
}

func TestMarkEjected_TrailMarker(t *testing.T) {
	r := newRig("A.ADF", "B.ADF")
	r.trail("B.ADF")
	s := r.start(t)

	if err := s.MarkEjected(true); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if got := r.readTrail(); got != "B.ADF\\EJ" || !s.Ejected() {
		t.Fatalf("trail=%q", got)
	}
	if err := s.MarkEjected(false); err != nil {
		t.Fatalf("unmark: %v", err)
	}
	if got := r.readTrail(); got != "B.ADF" || s.Ejected() {
		t.Fatalf("trail=%q", got)
	}
}

func TestSelectByName(t *testing.T) {
	r := newRig("ALPHA.ADF", "BETA.ADF", "GAMMA.ADF")
	s := r.start(t)

	ok, err := s.SelectByName("gam")
	if err != nil || !ok {
		t.Fatalf("select: ok=%v err=%v", ok, err)
	}
	if s.CurrentSlot().Name != "GAMMA" || s.View().Nr != 2 {
		t.Fatalf("view=%s", s.View())
	}
	if ok, _ := s.SelectByName("zeta"); ok {
		t.Fatalf("unknown prefix matched")
	}
}

func TestRebuildValidity_ClampsRemovedSlot(t *testing.T) {
	r := newRig("A.ADF", "B.ADF", "C.ADF")
	r.trail("C.ADF")
	s := r.start(t)

	r.vol.Remove("C.ADF")
	if err := s.RebuildValidity(); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if s.View().Max != 1 || s.CurrentSlot().Name != "A" {
		t.Fatalf("view=%s", s.View())
	}
}

// ---- Run ----

func TestRun_BrowseCommitsAndRemounts(t *testing.T) {
	r := newRig("A.ADF", "B.ADF", "C.ADF")
	s := r.start(t)
	m := r.mounter(mountStep{after: time.Second, b: input.Right})

	err := s.Run(context.Background(), m)
	if !errors.Is(err, errDone) {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(m.names(), ","); got != "A,B" {
		t.Fatalf("inserted %s", got)
	}
	if got := r.readTrail(); got != "B.ADF" {
		t.Fatalf("trail=%q", got)
	}
	if !r.disp.saw(display.HealthBrowsing) {
		t.Fatalf("browse state never shown")
	}
}

func TestRun_EjectAndReinsert(t *testing.T) {
	r := newRig("A.ADF", "B.ADF")
	r.trail("A.ADF")
	r.btn.presses = []press{
		{10 * time.Millisecond, 60 * time.Millisecond, input.Select},
		{time.Second, time.Second + 50*time.Millisecond, input.Select},
	}
	var ejectedTrail string
	r.disp.hook = func(v display.View) {
		if v.Health == display.HealthEjected {
			ejectedTrail = r.readTrail()
		}
	}
	s := r.start(t)
	m := r.mounter(mountStep{after: 10 * time.Millisecond, b: input.Select})
	var reinsertTrail string
	m.onInsert = func(slot.Slot) { reinsertTrail = r.readTrail() }

	if err := s.Run(context.Background(), m); !errors.Is(err, errDone) {
		t.Fatalf("run: %v", err)
	}
	if ejectedTrail != "A.ADF\\EJ" {
		t.Fatalf("trail while ejected=%q", ejectedTrail)
	}
	if got := strings.Join(m.names(), ","); got != "A,A" {
		t.Fatalf("inserted %s", got)
	}
	if reinsertTrail != "A.ADF" {
		t.Fatalf("trail after reinsert=%q", reinsertTrail)
	}
}

func TestRun_HoldInEjectTogglesWriteProtect(t *testing.T) {
	r := newRig("A.ADF")
	r.btn.presses = []press{
		{10 * time.Millisecond, 2510 * time.Millisecond, input.Select},
		{3 * time.Second, 3*time.Second + 50*time.Millisecond, input.Select},
	}
	s := r.start(t)
	m := r.mounter(mountStep{after: 10 * time.Millisecond, b: input.Select})

	if err := s.Run(context.Background(), m); !errors.Is(err, errDone) {
		t.Fatalf("run: %v", err)
	}
	if len(m.inserted) != 2 {
		t.Fatalf("inserted %d", len(m.inserted))
	}
	if m.inserted[0].ReadOnly() || !m.inserted[1].ReadOnly() {
		t.Fatalf("write-protect not toggled: %v -> %v", m.inserted[0].ReadOnly(), m.inserted[1].ReadOnly())
	}
}

func TestRun_BothButtonsEjectFromBrowse(t *testing.T) {
	r := newRig("A.ADF", "B.ADF")
	r.trail("A.ADF")
	r.nav.TwoButton = config.TwoButtonAction{Mode: config.TwoButtonEject}
	r.btn.presses = []press{
		{5 * time.Millisecond, 100 * time.Millisecond, input.Both},
		{time.Second, time.Second + 50*time.Millisecond, input.Select},
	}
	s := r.start(t)
	m := r.mounter(mountStep{b: input.Right})

	if err := s.Run(context.Background(), m); !errors.Is(err, errDone) {
		t.Fatalf("run: %v", err)
	}
	// Both arrives while B waits to commit, so browsing restarts from B
	// and the eject keeps B.
	if got := strings.Join(m.names(), ","); got != "A,B" {
		t.Fatalf("inserted %s", got)
	}
	if !r.disp.saw(display.HealthEjected) {
		t.Fatalf("eject never shown")
	}
	if got := r.readTrail(); got != "B.ADF" {
		t.Fatalf("trail=%q", got)
	}
}

func TestRun_DescendIntoStartingFolder(t *testing.T) {
	r := newRig("SUB/X.ADF", "B.ADF")
	s := r.start(t)
	if !s.CurrentSlot().IsDir() {
		t.Fatalf("expected folder at slot 0, got %s", s.CurrentSlot())
	}
	m := r.mounter()

	if err := s.Run(context.Background(), m); !errors.Is(err, errDone) {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(m.names(), ","); got != "X" {
		t.Fatalf("inserted %s", got)
	}
	if got := r.readTrail(); got != "SUB/X.ADF" {
		t.Fatalf("trail=%q", got)
	}
	if s.View().Depth != 1 {
		t.Fatalf("depth=%d", s.View().Depth)
	}
}

func TestRun_AscendThroughParentEntry(t *testing.T) {
	r := newRig("SUB/X.ADF", "B.ADF")
	r.trail("SUB/X.ADF")
	s := r.start(t)
	if s.View().Depth != 1 || s.CurrentSlot().Name != "X" {
		t.Fatalf("resume: %s", s.View())
	}
	m := r.mounter(mountStep{b: input.Left})

	if err := s.Run(context.Background(), m); !errors.Is(err, errDone) {
		t.Fatalf("run: %v", err)
	}
	sawRoot := false
	for _, v := range r.disp.views {
		if v.Depth == 0 && v.Slot.Name == "[SUB]" {
			sawRoot = true
		}
	}
	if !sawRoot {
		t.Fatalf("never returned to the root listing")
	}
}

func TestRun_RotaryBothAscendsOutOfFolder(t *testing.T) {
	r := newRig("SUB/X.ADF", "SUB/Y.ADF", "B.ADF")
	r.trail("SUB/Y.ADF")
	r.nav.TwoButton = config.TwoButtonAction{Mode: config.TwoButtonRotary}
	r.btn.presses = []press{
		{500 * time.Millisecond, 520 * time.Millisecond, input.Right},
	}
	s := r.start(t)
	if s.View().Depth != 1 || s.CurrentSlot().Name != "Y" {
		t.Fatalf("resume: %s", s.View())
	}
	m := r.mounter(mountStep{after: 10 * time.Millisecond, b: input.Both})

	if err := s.Run(context.Background(), m); !errors.Is(err, errDone) {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(m.names(), ","); got != "Y,B" {
		t.Fatalf("inserted %s", got)
	}
	if d := s.View().Depth; d != 0 {
		t.Fatalf("depth=%d after ascend", d)
	}
	if got := r.readTrail(); got != "B.ADF" {
		t.Fatalf("trail=%q", got)
	}
}

func TestRun_VolumeRemovedDuringMount(t *testing.T) {
	r := newRig("A.ADF")
	s := r.start(t)
	m := r.mounter(mountStep{b: input.Right, fn: func() { r.vol.SetConnected(false) }})

	err := s.Run(context.Background(), m)
	if !errors.Is(err, fault.ErrDisk) {
		t.Fatalf("expected disk fault, got %v", err)
	}
	if v := r.disp.last(); v.Health != display.HealthError || v.Code != uint16(fault.CodeDisk) {
		t.Fatalf("error view %+v", v)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	r := newRig("A.ADF")
	s := r.start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx, r.mounter()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancel, got %v", err)
	}
}

func TestRun_RequiresInitialize(t *testing.T) {
	r := newRig("A.ADF")
	if err := r.session(t).Run(context.Background(), r.mounter()); err == nil {
		t.Fatalf("expected error before initialize")
	}
}

func TestSlots_ListsWithoutMoving(t *testing.T) {
	r := newRig("A.ADF", "B.ADF", "C.ADF")
	r.trail("B.ADF")
	s := r.start(t)

	list, err := s.Slots()
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(list) != 3 || list[0].Slot.Name != "A" || list[2].Nr != 2 {
		t.Fatalf("list=%+v", list)
	}
	if s.View().Nr != 1 || s.CurrentSlot().Name != "B" {
		t.Fatalf("selection moved: %s", s.View())
	}
}
