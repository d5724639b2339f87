// internal/config/load.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults returns the configuration used for any key a file omits.
func Defaults() Config {
	return Config{
		Navigation: NavigationConfig{
			NavMode:              NavDefault,
			Loop:                 true,
			ImageOnStartup:       ImageLast,
			AutoselectFileSecs:   2,
			AutoselectFolderSecs: 2,
			TwoButton:            TwoButtonAction{Mode: TwoButtonZero},
			Rotary:               Rotary{Sensitivity: RotaryFull},
			IndexedPrefix:        "DSKA",
			DisplayType:          DisplayLCD,
			DisplayColumns:       16,
			NavScrollRate:        80,
			NavScrollPause:       300,
		},
		Input: InputConfig{
			Source:   InputNone,
			SampleMs: 5,
			HoldMs:   120,
		},
		Display: DisplayConfig{Kind: DisplayLog},
	}
}

// Load reads a YAML file over Defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes YAML bytes over Defaults.
func Parse(b []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
