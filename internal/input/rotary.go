// internal/input/rotary.go
package input

import "github.com/tamzrod/ffslot/internal/config"

// Quadrature transition tables, indexed by the last two 2-bit samples.
// Each 2-bit cell yields 1 (LEFT), 2 (RIGHT) or 0. The encoder outputs
// Gray code 00-01-11-10 clockwise.
var rotaryTransitions = [...]uint32{
	config.RotaryNone:    0x00000000,
	config.RotaryFull:    0x20000100, // 4 transitions per detent
	config.RotaryHalf:    0x24000018, // 2 transitions per detent
	config.RotaryQuarter: 0x24428118, // 1 transition per detent
}

// rotaryDecoder keeps a rolling history of the two encoder pins.
type rotaryDecoder struct {
	cfg   config.Rotary
	state uint8
}

// step consumes one sample of pins A (bit 0) and B (bit 1).
func (r *rotaryDecoder) step(ab uint8) Buttons {
	r.state = ((r.state << 2) | (ab & 3)) & 15
	rb := Buttons(rotaryTransitions[r.cfg.Sensitivity]>>(r.state<<1)) & 3
	if r.cfg.Reverse {
		switch rb {
		case Left:
			rb = Right
		case Right:
			rb = Left
		}
	}
	return rb
}
