// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Volume.Path == "" {
		return fmt.Errorf("volume.path is required")
	}

	// ------------------------------------------------------------
	// NAVIGATION
	// ------------------------------------------------------------

	n := cfg.Navigation
	if n.AutoselectFileSecs < 0 || n.AutoselectFolderSecs < 0 {
		return fmt.Errorf("navigation: autoselect seconds must be >= 0")
	}
	if n.NavScrollRate < 0 || n.NavScrollPause < 0 {
		return fmt.Errorf("navigation: scroll timings must be >= 0")
	}
	if len(n.IndexedPrefix) > 8 {
		return fmt.Errorf("navigation: indexed_prefix %q longer than 8 characters", n.IndexedPrefix)
	}
	for i := 0; i < len(n.IndexedPrefix); i++ {
		c := n.IndexedPrefix[i]
		if c > 0x7F || c == '*' || c == '?' || c == '/' {
			return fmt.Errorf("navigation: indexed_prefix %q has invalid character %q", n.IndexedPrefix, c)
		}
	}

	// ------------------------------------------------------------
	// INPUT
	// ------------------------------------------------------------

	switch cfg.Input.Source {
	case InputNone, "":
	case InputKeyboard:
		if cfg.Display.Kind != DisplayPanel {
			return fmt.Errorf("input: keyboard source requires display.kind=%s", DisplayPanel)
		}
	case InputModbus:
		m := cfg.Input.Modbus
		if m == nil {
			return fmt.Errorf("input: modbus source requires input.modbus")
		}
		if (m.Endpoint == "") == (m.Device == "") {
			return fmt.Errorf("input.modbus: set exactly one of endpoint or device")
		}
		if m.Device != "" && m.Baud <= 0 {
			return fmt.Errorf("input.modbus: baud must be > 0 for device %s", m.Device)
		}
		if uint32(m.Address)+5 > 0x10000 {
			return fmt.Errorf("input.modbus: address %d leaves no room for 5 inputs", m.Address)
		}
	default:
		return fmt.Errorf("input: unknown source %q", cfg.Input.Source)
	}
	if cfg.Input.SampleMs < 0 || cfg.Input.HoldMs < 0 {
		return fmt.Errorf("input: timings must be >= 0")
	}

	// ------------------------------------------------------------
	// DISPLAY
	// ------------------------------------------------------------

	switch cfg.Display.Kind {
	case DisplayLog, DisplayPanel, "":
	default:
		return fmt.Errorf("display: unknown kind %q", cfg.Display.Kind)
	}

	// ------------------------------------------------------------
	// STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	if s := cfg.Status; s != nil {
		if s.Endpoint == "" {
			return fmt.Errorf("status: endpoint is required")
		}
		switch s.Protocol {
		case "", "modbus", "ingest":
		default:
			return fmt.Errorf("status: unknown protocol %q", s.Protocol)
		}
		for i := 0; i < len(s.DeviceName); i++ {
			if s.DeviceName[i] > 0x7F {
				return fmt.Errorf("status: device_name must contain ASCII characters only")
			}
		}
		if uint32(s.BaseSlot)*20+20 > 0x10000 {
			return fmt.Errorf("status: base_slot %d out of register range", s.BaseSlot)
		}
	}

	return nil
}
