// internal/slot/stack.go
package slot

import (
	"github.com/tamzrod/ffslot/internal/fault"
	"github.com/tamzrod/ffslot/internal/volume"
)

// StackDepth is the maximum folder nesting.
const StackDepth = 20

// Frame remembers the parent directory and the slot selected in it.
type Frame struct {
	Dir  volume.Dir
	Slot uint16
}

// Stack is the bounded directory history used for "go up".
type Stack struct {
	frames [StackDepth]Frame
	depth  int
}

// Push records a descent. A full stack is a fatal condition and leaves
// the existing frames untouched.
func (s *Stack) Push(f Frame) error {
	if s.depth == StackDepth {
		return fault.New(fault.CodePathTooDeep, "depth %d", s.depth)
	}
	s.frames[s.depth] = f
	s.depth++
	return nil
}

// Pop returns the most recent frame.
func (s *Stack) Pop() (Frame, bool) {
	if s.depth == 0 {
		return Frame{}, false
	}
	s.depth--
	return s.frames[s.depth], true
}

func (s *Stack) Depth() int { return s.depth }
func (s *Stack) Reset()     { s.depth = 0 }

// Frames returns the live frames, outermost first.
func (s *Stack) Frames() []Frame {
	return append([]Frame(nil), s.frames[:s.depth]...)
}
