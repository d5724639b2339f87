// internal/input/decoder.go
package input

import "github.com/tamzrod/ffslot/internal/config"

// Pins is one raw sample of the physical inputs.
// Button pins are true while pressed. Rotary pins carry the encoder's
// electrical level.
type Pins struct {
	Left, Right, Select bool
	RotA, RotB          bool
}

// Decoder turns raw pin samples into logical Buttons.
type Decoder struct {
	twoButton config.TwoButtonAction

	buttons [3]debouncer // left, right, select
	rotary  rotaryDecoder
}

func NewDecoder(twoButton config.TwoButtonAction, rotary config.Rotary) *Decoder {
	return &Decoder{
		twoButton: twoButton,
		rotary:    rotaryDecoder{cfg: rotary},
	}
}

// Step consumes one sample and returns the logical state.
func (d *Decoder) Step(p Pins) Buttons {
	l := d.buttons[0].sample(p.Left)
	r := d.buttons[1].sample(p.Right)
	s := d.buttons[2].sample(p.Select)

	if d.twoButton.Reverse {
		l, r = r, l
	}

	// In rotary two-button mode the first button means "both" (zero or
	// up a level) and the second means SELECT.
	remap := d.twoButton.Mode == config.TwoButtonRotary

	var b Buttons
	if l {
		if remap {
			b |= Both
		} else {
			b |= Left
		}
	}
	if r {
		if remap {
			b |= Select
		} else {
			b |= Right
		}
	}
	if s {
		b |= Select
	}

	var ab uint8
	if p.RotA {
		ab |= 1
	}
	if p.RotB {
		ab |= 2
	}
	return b | d.rotary.step(ab)
}
