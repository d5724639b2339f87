// internal/nav/step.go
package nav

import (
	"time"

	"github.com/tamzrod/ffslot/internal/slot"
)

// Direction of a step.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// Repeat timing while a direction is held.
const (
	repeatStart = 1000 * time.Millisecond
	repeatFloor = 50 * time.Millisecond
	repeatFast  = 40 * time.Millisecond
)

// RepeatDelay is the wait before the next repeat after n consecutive
// repeats in the same direction.
func RepeatDelay(n int, fast bool) time.Duration {
	if fast {
		return repeatFast
	}
	d := repeatStart / time.Duration(n+1)
	if d < repeatFloor {
		d = repeatFloor
	}
	return d
}

// Step searches from i in direction d for the next valid index. Without
// looping a boundary reverses the search instead of wrapping. When no
// other index is valid the result is i.
func Step(m *slot.Model, i int, d Direction, loop bool) int {
	top := int(m.Max())
	left := d == Prev
	from := i
	for tries := 0; tries < 2*(top+2); tries++ {
		if left {
			i--
			if i < 0 {
				if !loop {
					left = false
					continue
				}
				i = top
			}
		} else {
			i++
			if i > top {
				if !loop {
					left = true
					continue
				}
				i = 0
			}
		}
		if m.Valid(i) {
			return i
		}
	}
	return from
}

// Advance moves the model one step and commits it. It reports whether
// the current number changed.
func Advance(m *slot.Model, d Direction, loop bool) bool {
	from := int(m.Nr())
	to := Step(m, from, d, loop)
	if to == from {
		return false
	}
	return m.Commit(to)
}
