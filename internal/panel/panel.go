// internal/panel/panel.go
package panel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tamzrod/ffslot/internal/display"
	"github.com/tamzrod/ffslot/internal/fault"
	"github.com/tamzrod/ffslot/internal/input"
)

// DefaultHold is how long a key press keeps its pin asserted.
const DefaultHold = 120 * time.Millisecond

const (
	btnLeft = iota
	btnRight
	btnSelect
)

// Panel is a terminal front panel. It renders views and turns key
// presses into button pins. Terminals report no key release, so each
// press asserts its pin for a hold window; auto-repeat extends it.
type Panel struct {
	s    tcell.Screen
	hold time.Duration
	now  func() time.Time

	mu    sync.Mutex
	view  display.View
	until [3]time.Time

	stop chan struct{}
	once sync.Once
}

// New takes over the terminal.
func New(hold time.Duration) (*Panel, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}
	p := newPanel(s, hold)
	go p.eventLoop()
	return p, nil
}

func newPanel(s tcell.Screen, hold time.Duration) *Panel {
	if hold <= 0 {
		hold = DefaultHold
	}
	s.DisableMouse()
	s.HideCursor()
	return &Panel{
		s:    s,
		hold: hold,
		now:  time.Now,
		stop: make(chan struct{}),
	}
}

// Close restores the terminal.
func (p *Panel) Close() {
	p.RequestStop()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.s == nil {
		return
	}
	p.s.Fini()
	p.s = nil
}

// RequestStop signals that the user asked to quit. Safe to call twice.
func (p *Panel) RequestStop() {
	p.once.Do(func() { close(p.stop) })
}

// Stopped is closed once the user asks to quit.
func (p *Panel) Stopped() <-chan struct{} { return p.stop }

// ---- input.PinSource ----

func (p *Panel) ReadPins(ctx context.Context) (input.Pins, error) {
	if err := ctx.Err(); err != nil {
		return input.Pins{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	return input.Pins{
		Left:   now.Before(p.until[btnLeft]),
		Right:  now.Before(p.until[btnRight]),
		Select: now.Before(p.until[btnSelect]),
	}, nil
}

func (p *Panel) eventLoop() {
	for {
		select {
		case <-p.stop:
			return
		default:
		}
		p.mu.Lock()
		s := p.s
		p.mu.Unlock()
		if s == nil {
			return
		}

		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			p.handleKey(ev)
		case *tcell.EventResize:
			s.Sync()
			p.mu.Lock()
			p.draw()
			p.mu.Unlock()
		case nil:
			return
		}
	}
}

func (p *Panel) handleKey(ev *tcell.EventKey) {
	btn := -1
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		p.RequestStop()
		return
	case tcell.KeyLeft:
		btn = btnLeft
	case tcell.KeyRight:
		btn = btnRight
	case tcell.KeyEnter:
		btn = btnSelect
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			p.RequestStop()
			return
		case ',', '<':
			btn = btnLeft
		case '.', '>':
			btn = btnRight
		case ' ':
			btn = btnSelect
		}
	}
	if btn < 0 {
		return
	}

	p.mu.Lock()
	p.until[btn] = p.now().Add(p.hold)
	p.mu.Unlock()
}

// ---- display.Display ----

func (p *Panel) Show(v display.View) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = v
	p.draw()
	return nil
}

// lines renders a view as text rows.
func lines(v display.View) []string {
	out := []string{
		fmt.Sprintf("slot %03d/%03d  depth %d", v.Nr, v.Max, v.Depth),
		v.Label(),
		fmt.Sprintf("type %-6s size %-9d %s", v.Slot.Type, v.Slot.Size, flags(v)),
	}
	switch v.Health {
	case display.HealthError:
		out = append(out, fault.Label(v.Code))
	case display.HealthEjected:
		out = append(out, "** EJECTED **")
	case display.HealthBrowsing:
		out = append(out, "-- select --")
	case display.HealthMounted:
		out = append(out, "mounted")
	default:
		out = append(out, "")
	}
	return out
}

func flags(v display.View) string {
	b := []byte("---")
	if v.Slot.ReadOnly() {
		b[0] = 'R'
	}
	if v.Slot.IsDir() {
		b[1] = 'D'
	}
	if v.Slot.Hidden() {
		b[2] = 'H'
	}
	return string(b)
}

// draw must be called with mu held.
func (p *Panel) draw() {
	if p.s == nil {
		return
	}
	p.s.Clear()
	w, _ := p.s.Size()

	title := " ffslot "
	putStr(p.s, 0, 0, strings.Repeat("═", w), tcell.StyleDefault)
	putStr(p.s, max((w-len(title))/2, 0), 0, title, tcell.StyleDefault)

	for i, line := range lines(p.view) {
		style := tcell.StyleDefault
		if i == 3 && p.view.Health == display.HealthError {
			style = style.Reverse(true)
		}
		putStr(p.s, 1, 2+i, line, style)
	}

	putStr(p.s, 0, 7, strings.Repeat("─", w), tcell.StyleDefault)
	putStr(p.s, 1, 8, "←/, prev  →/. next  enter select  q quit", tcell.StyleDefault)
	p.s.Show()
}

func putStr(s tcell.Screen, x, y int, str string, style tcell.Style) {
	w, _ := s.Size()
	for i, r := range []rune(str) {
		if x+i >= w {
			break
		}
		s.SetContent(x+i, y, r, nil, style)
	}
}
