// internal/nav/nav_test.go
package nav

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/fault"
	"github.com/tamzrod/ffslot/internal/input"
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

// script replays button presses against the fake clock.
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

type fakeHost struct {
	clock *fakeClock
	start time.Time
	model *slot.Model

	depth int
	dir   bool
	name  string
	err   error

	cur   slot.Slot
	shown []uint16
	at    []time.Duration
}

func (h *fakeHost) Highlight() (slot.Slot, error) {
	nr := h.model.Nr()
	h.shown = append(h.shown, nr)
	h.at = append(h.at, h.clock.now.Sub(h.start))
	h.cur = h.slotFor(nr)
	return h.cur, nil
}

func (h *fakeHost) slotFor(nr uint16) slot.Slot {
	name := h.name
	if name == "" {
		name = fmt.Sprintf("IMG%03d", nr)
	}
	s := slot.Slot{Name: name, Type: "adf"}
	if h.dir {
		s.Attr = volume.AttrDir
	}
	return s
}

func (h *fakeHost) Current() slot.Slot { return h.cur }
func (h *fakeHost) Depth() int         { return h.depth }
func (h *fakeHost) Check() error       { return h.err }

func ledNav() config.NavigationConfig {
	cfg := config.Defaults().Navigation
	cfg.DisplayType = config.DisplayLED
	return cfg
}

type rig struct {
	nav   *Navigator
	host  *fakeHost
	clock *fakeClock
	model *slot.Model
}

func newRig(cfg config.NavigationConfig, top, nr uint16, presses ...press) *rig {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	model := &slot.Model{}
	model.Rebuild(top, nil)
	model.Load(nr)

	host := &fakeHost{clock: clock, start: clock.now, model: model}
	host.cur = host.slotFor(nr)
	btn := &script{clock: clock, start: clock.now, presses: presses}

	return &rig{
		nav:   New(cfg, model, btn, clock, host),
		host:  host,
		clock: clock,
		model: model,
	}
}

func (r *rig) elapsed() time.Duration { return r.clock.now.Sub(r.host.start) }

// ---- Step / Advance ----

func TestStep_BoundariesAndGaps(t *testing.T) {
	var bm slot.Map
	bm.Set(0)
	bm.Set(2)
	bm.Set(5)
	var m slot.Model
	m.Rebuild(5, &bm)

	cases := []struct {
		from int
		d    Direction
		loop bool
		want int
	}{
		{0, Next, false, 2},
		{2, Next, false, 5},
		{3, Prev, false, 2},
		{0, Prev, true, 5},
		{5, Next, true, 0},
		{0, Prev, false, 0},
		{5, Next, false, 5},
	}
	for _, c := range cases {
		if got := Step(&m, c.from, c.d, c.loop); got != c.want {
			t.Fatalf("Step(%d,%s,loop=%v)=%d want %d", c.from, c.d, c.loop, got, c.want)
		}
	}
}

func TestStep_SingleSlotStaysPut(t *testing.T) {
	var m slot.Model
	m.Rebuild(0, nil)
	for _, loop := range []bool{false, true} {
		if got := Step(&m, 0, Next, loop); got != 0 {
			t.Fatalf("loop=%v: got %d", loop, got)
		}
		if got := Step(&m, 0, Prev, loop); got != 0 {
			t.Fatalf("loop=%v: got %d", loop, got)
		}
	}
}

func TestAdvance_CommitsAndReportsMovement(t *testing.T) {
	var m slot.Model
	m.Rebuild(3, nil)
	m.Load(3)

	if Advance(&m, Next, false) {
		t.Fatalf("advance past max without loop should not move")
	}
	if m.Dirty() {
		t.Fatalf("no-op advance marked dirty")
	}
	if !Advance(&m, Next, true) || m.Nr() != 0 {
		t.Fatalf("looping advance: nr=%d", m.Nr())
	}
	if !m.Dirty() {
		t.Fatalf("advance did not mark dirty")
	}
	if !Advance(&m, Prev, true) || m.Nr() != 3 {
		t.Fatalf("prev wrap: nr=%d", m.Nr())
	}
}

func TestRepeatDelay(t *testing.T) {
	cases := []struct {
		n    int
		fast bool
		want time.Duration
	}{
		{0, false, time.Second},
		{1, false, 500 * time.Millisecond},
		{3, false, 250 * time.Millisecond},
		{19, false, 50 * time.Millisecond},
		{500, false, 50 * time.Millisecond},
		{0, true, 40 * time.Millisecond},
		{9, true, 40 * time.Millisecond},
	}
	for _, c := range cases {
		if got := RepeatDelay(c.n, c.fast); got != c.want {
			t.Fatalf("RepeatDelay(%d,%v)=%v want %v", c.n, c.fast, got, c.want)
		}
	}
}

// ---- Navigate ----

func TestNavigate_HeldButtonAccelerates(t *testing.T) {
	r := newRig(ledNav(), 100, 0, press{0, 2600 * time.Millisecond, input.Right})

	out, err := r.nav.Navigate(context.Background(), input.Right)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if out != Settled {
		t.Fatalf("outcome=%s", out)
	}

	at := r.host.at
	if len(at) < 5 {
		t.Fatalf("expected several repeats, got %v", at)
	}
	if at[0] != 0 {
		t.Fatalf("first step should be immediate: %v", at[0])
	}
	if at[1] < time.Second {
		t.Fatalf("first repeat came early: %v", at[1])
	}
	for i := 2; i < len(at); i++ {
		gap, prev := at[i]-at[i-1], at[i-1]-at[i-2]
		if gap > prev+time.Millisecond {
			t.Fatalf("repeat slowed down at %d: %v after %v", i, gap, prev)
		}
		if gap < repeatFloor {
			t.Fatalf("repeat below floor: %v", gap)
		}
	}

	if int(r.model.Nr()) != len(at) || !r.model.Dirty() {
		t.Fatalf("nr=%d after %d steps dirty=%v", r.model.Nr(), len(at), r.model.Dirty())
	}
	if r.elapsed() < 4600*time.Millisecond {
		t.Fatalf("settled before idle timeout: %v", r.elapsed())
	}
	if r.nav.State() != Idle {
		t.Fatalf("state=%s", r.nav.State())
	}
}

func TestNavigate_DirectionChangeStepsImmediately(t *testing.T) {
	r := newRig(ledNav(), 10, 5,
		press{0, 10 * time.Millisecond, input.Right},
		press{10 * time.Millisecond, 20 * time.Millisecond, input.Left},
	)

	if _, err := r.nav.Navigate(context.Background(), input.Right); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	want := []uint16{6, 5}
	if fmt.Sprint(r.host.shown) != fmt.Sprint(want) {
		t.Fatalf("shown=%v want %v", r.host.shown, want)
	}
	if r.host.at[1] != 10*time.Millisecond {
		t.Fatalf("reversal waited: %v", r.host.at[1])
	}
}

func TestNavigate_PressDuringCommitWaitResumesBrowsing(t *testing.T) {
	r := newRig(ledNav(), 10, 5,
		press{0, 5 * time.Millisecond, input.Right},
		press{time.Second, time.Second + 5*time.Millisecond, input.Left},
	)

	out, err := r.nav.Navigate(context.Background(), input.Right)
	if err != nil || out != Settled {
		t.Fatalf("out=%s err=%v", out, err)
	}
	if r.model.Nr() != 5 {
		t.Fatalf("nr=%d want 5", r.model.Nr())
	}
	if r.elapsed() < 3*time.Second {
		t.Fatalf("idle timeout did not restart: %v", r.elapsed())
	}
}

func TestNavigate_BothButtonsEjectRestoresSlot(t *testing.T) {
	cfg := ledNav()
	cfg.TwoButton = config.TwoButtonAction{Mode: config.TwoButtonEject}
	r := newRig(cfg, 10, 3,
		press{0, 5 * time.Millisecond, input.Right},
		press{5 * time.Millisecond, 100 * time.Millisecond, input.Both},
	)

	out, err := r.nav.Navigate(context.Background(), input.Right)
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if out != Eject {
		t.Fatalf("outcome=%s want eject", out)
	}
	if r.model.Nr() != 3 {
		t.Fatalf("slot not restored: %d", r.model.Nr())
	}
}

func TestNavigate_BothButtonsZero(t *testing.T) {
	r := newRig(ledNav(), 10, 5, press{0, 300 * time.Millisecond, input.Both})

	out, err := r.nav.Navigate(context.Background(), input.Both)
	if err != nil || out != Settled {
		t.Fatalf("out=%s err=%v", out, err)
	}
	if r.model.Nr() != 0 {
		t.Fatalf("nr=%d want 0", r.model.Nr())
	}
	for _, nr := range r.host.shown {
		if nr != 0 {
			t.Fatalf("stepped while releasing: %v", r.host.shown)
		}
	}
}

func TestNavigate_RotaryBothAscendsOnlyInsideFolder(t *testing.T) {
	cfg := ledNav()
	cfg.TwoButton = config.TwoButtonAction{Mode: config.TwoButtonRotary}

	r := newRig(cfg, 10, 4, press{0, 50 * time.Millisecond, input.Both})
	r.host.depth = 1
	out, err := r.nav.Navigate(context.Background(), input.Both)
	if err != nil || out != Ascend {
		t.Fatalf("inside folder: out=%s err=%v", out, err)
	}
	if r.model.Nr() != 0 {
		t.Fatalf("nr=%d want 0", r.model.Nr())
	}

	r = newRig(cfg, 10, 4, press{0, 50 * time.Millisecond, input.Both})
	out, err = r.nav.Navigate(context.Background(), input.Both)
	if err != nil || out != Settled {
		t.Fatalf("at root: out=%s err=%v", out, err)
	}
	if r.model.Nr() != 0 {
		t.Fatalf("nr=%d want 0", r.model.Nr())
	}
}

func TestNavigate_FolderWaitsForSelectWhenTimeoutZero(t *testing.T) {
	cfg := ledNav()
	cfg.AutoselectFolderSecs = 0
	r := newRig(cfg, 10, 0,
		press{0, 5 * time.Millisecond, input.Right},
		press{10 * time.Second, 10*time.Second + 50*time.Millisecond, input.Select},
	)
	r.host.dir = true

	out, err := r.nav.Navigate(context.Background(), input.Right)
	if err != nil || out != Settled {
		t.Fatalf("out=%s err=%v", out, err)
	}
	if e := r.elapsed(); e < 10*time.Second+50*time.Millisecond || e > 10*time.Second+100*time.Millisecond {
		t.Fatalf("committed at %v, want right after SELECT release", e)
	}
	if r.model.Nr() != 1 {
		t.Fatalf("nr=%d", r.model.Nr())
	}
}

func TestNavigate_SelectCommitsOnRelease(t *testing.T) {
	r := newRig(ledNav(), 10, 7, press{0, 20 * time.Millisecond, input.Select})

	out, err := r.nav.Navigate(context.Background(), input.Select)
	if err != nil || out != Settled {
		t.Fatalf("out=%s err=%v", out, err)
	}
	if r.model.Nr() != 7 || len(r.host.shown) != 0 {
		t.Fatalf("selection moved: nr=%d shown=%v", r.model.Nr(), r.host.shown)
	}
	if r.elapsed() != 20*time.Millisecond {
		t.Fatalf("commit did not follow release: %v", r.elapsed())
	}
}

func TestNavigate_VolumeLossAborts(t *testing.T) {
	r := newRig(ledNav(), 10, 0, press{0, 5 * time.Millisecond, input.Right})
	r.host.err = fault.ErrDisk

	_, err := r.nav.Navigate(context.Background(), input.Right)
	if !errors.Is(err, fault.ErrDisk) {
		t.Fatalf("expected disk fault, got %v", err)
	}
	if r.nav.State() != Idle {
		t.Fatalf("state=%s", r.nav.State())
	}
}

func TestNavigate_StopsOnCancel(t *testing.T) {
	r := newRig(ledNav(), 10, 0, press{0, time.Hour, input.Right})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.nav.Navigate(ctx, input.Right); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancel, got %v", err)
	}
}

// ---- CommitWait ----

func TestCommitWait_ScrollExtension(t *testing.T) {
	cfg := config.Defaults().Navigation
	n := New(cfg, &slot.Model{}, nil, &fakeClock{}, nil)

	short := slot.Slot{Name: "GAME"}
	long := slot.Slot{Name: strings.Repeat("X", 40)}
	folder := slot.Slot{Name: "[DIR]", Attr: volume.AttrDir}

	if got := n.CommitWait(short); got != 2*time.Second {
		t.Fatalf("short name: %v", got)
	}
	// 300ms pause + 24 overflow chars at 80ms.
	if got := n.CommitWait(long); got != 2220*time.Millisecond {
		t.Fatalf("long name: %v", got)
	}

	cfg.AutoselectFolderSecs = 0
	n = New(cfg, &slot.Model{}, nil, &fakeClock{}, nil)
	if got := n.CommitWait(folder); got != 0 {
		t.Fatalf("folder wait should be unbounded, got %v", got)
	}

	cfg.DisplayType = config.DisplayLED
	n = New(cfg, &slot.Model{}, nil, &fakeClock{}, nil)
	if got := n.CommitWait(long); got != 2*time.Second {
		t.Fatalf("LED display should not extend: %v", got)
	}
}
