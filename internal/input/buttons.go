// internal/input/buttons.go
package input

import (
	"strings"

	"go.uber.org/atomic"
)

// Buttons is the logical three-button state.
type Buttons uint8

const (
	Left Buttons = 1 << iota
	Right
	Select
)

// Both is LEFT and RIGHT held together.
const Both = Left | Right

func (b Buttons) Has(x Buttons) bool { return b&x == x }

func (b Buttons) String() string {
	if b == 0 {
		return "none"
	}
	var parts []string
	if b&Left != 0 {
		parts = append(parts, "left")
	}
	if b&Right != 0 {
		parts = append(parts, "right")
	}
	if b&Select != 0 {
		parts = append(parts, "select")
	}
	return strings.Join(parts, "+")
}

// State is the single shared ButtonState cell.
// The sampler is the only writer; navigation is the only reader. Only the
// latest value is observable; nothing queues.
type State struct {
	v atomic.Uint32
}

func (s *State) Load() Buttons   { return Buttons(s.v.Load()) }
func (s *State) Store(b Buttons) { s.v.Store(uint32(b)) }
