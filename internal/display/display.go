// internal/display/display.go
package display

import (
	"errors"
	"fmt"

	"github.com/tamzrod/ffslot/internal/slot"
)

// Health is the coarse session state shown alongside a slot.
type Health int

const (
	HealthUnknown Health = iota
	HealthMounted
	HealthError
	HealthEjected
	HealthBrowsing
)

func (h Health) String() string {
	switch h {
	case HealthMounted:
		return "mounted"
	case HealthError:
		return "error"
	case HealthEjected:
		return "ejected"
	case HealthBrowsing:
		return "browsing"
	default:
		return "unknown"
	}
}

// View is everything a front panel can render.
type View struct {
	Health Health
	Slot   slot.Slot
	Nr     uint16
	Max    uint16
	Depth  int

	// Code is the last fault code, 0 when none.
	Code uint16
}

// Label renders the slot line the way a small character display would.
func (v View) Label() string {
	if v.Slot.IsDir() || v.Slot.Type == "" {
		return v.Slot.Name
	}
	return v.Slot.Name + "." + v.Slot.Type
}

func (v View) String() string {
	return fmt.Sprintf("%s %03d/%03d depth=%d %q", v.Health, v.Nr, v.Max, v.Depth, v.Label())
}

// Display renders views. Show must not block on user input.
type Display interface {
	Show(v View) error
}

// Multi fans a view out to every display. All displays are attempted.
type Multi []Display

func (m Multi) Show(v View) error {
	var errs []error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Show(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
