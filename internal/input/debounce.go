// internal/input/debounce.go
package input

// debounceSamples consecutive identical samples change a level.
const debounceSamples = 16

// debouncer tracks one physical input over the last 16 samples.
type debouncer struct {
	hist  uint16
	level bool
}

// sample shifts in one reading and returns the accepted level.
func (d *debouncer) sample(active bool) bool {
	d.hist <<= 1
	if active {
		d.hist |= 1
	}
	switch d.hist {
	case 0xFFFF:
		d.level = true
	case 0x0000:
		d.level = false
	}
	return d.level
}
