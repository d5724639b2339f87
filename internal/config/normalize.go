// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Input.Source == "" {
		cfg.Input.Source = InputNone
	}
	if cfg.Input.SampleMs == 0 {
		cfg.Input.SampleMs = 5
	}
	if cfg.Display.Kind == "" {
		cfg.Display.Kind = DisplayLog
	}
	if m := cfg.Input.Modbus; m != nil && m.TimeoutMs == 0 {
		m.TimeoutMs = 200
	}

	NormalizeNavigation(&cfg.Navigation)

	// ------------------------------------------------------------
	// STATUS BLOCK NORMALIZATION (OPT-IN)
	// ------------------------------------------------------------

	if s := cfg.Status; s != nil {
		// - ASCII already validated
		// - Truncate to max 16 characters
		if len(s.DeviceName) > 16 {
			s.DeviceName = s.DeviceName[:16]
		}
		if s.TimeoutMs == 0 {
			s.TimeoutMs = 1000
		}
		if s.Protocol == "" {
			s.Protocol = "modbus"
		}
	}
}

// NormalizeNavigation clamps navigation values. It is also applied after
// FF.CFG overrides.
func NormalizeNavigation(n *NavigationConfig) {
	n.IndexedPrefix = strings.ToUpper(n.IndexedPrefix)
	if n.DisplayColumns < 16 {
		n.DisplayColumns = 16
	}
	if n.DisplayColumns > 40 {
		n.DisplayColumns = 40
	}
}
