// internal/config/config.go
package config

type Config struct {
	Volume     VolumeConfig     `yaml:"volume"`
	Navigation NavigationConfig `yaml:"navigation"`
	Input      InputConfig      `yaml:"input"`
	Display    DisplayConfig    `yaml:"display"`
	Status     *StatusConfig    `yaml:"status"`
}

// ---- VOLUME ----

type VolumeConfig struct {
	Path string `yaml:"path"`

	// Recognized image type tokens; empty means the built-in list.
	Extensions []string `yaml:"extensions"`
}

// ---- NAVIGATION ----

// NavigationConfig is fixed for the lifetime of a session.
// FF.CFG on the volume may override it before the session starts.
type NavigationConfig struct {
	NavMode        NavMode        `yaml:"nav_mode"`
	Loop           bool           `yaml:"nav_loop"`
	ImageOnStartup ImageOnStartup `yaml:"image_on_startup"`

	EjectedOnStartup bool `yaml:"ejected_on_startup"`
	WriteProtect     bool `yaml:"write_protect"`

	AutoselectFileSecs   int `yaml:"autoselect_file_secs"`
	AutoselectFolderSecs int `yaml:"autoselect_folder_secs"`

	TwoButton TwoButtonAction `yaml:"twobutton_action"`
	Rotary    Rotary          `yaml:"rotary"`

	IndexedPrefix string `yaml:"indexed_prefix"`

	// Display geometry drives folder support and the name-scroll
	// extension of the autoselect timeout.
	DisplayType    DisplayType `yaml:"display_type"`
	DisplayColumns int         `yaml:"display_columns"`
	NavScrollRate  int         `yaml:"nav_scroll_rate"`  // ms per character
	NavScrollPause int         `yaml:"nav_scroll_pause"` // ms before scrolling
}

// RichDisplay reports whether folders are navigable.
func (n NavigationConfig) RichDisplay() bool {
	return n.DisplayType != DisplayLED
}

// ---- INPUT ----

type InputConfig struct {
	Source   InputSource `yaml:"source"`
	SampleMs int         `yaml:"sample_ms"`
	HoldMs   int         `yaml:"hold_ms"` // keyboard: pin held low per key press

	Modbus *ModbusInputConfig `yaml:"modbus"`
}

type ModbusInputConfig struct {
	// Exactly one of Endpoint (TCP) or Device (RTU) is set.
	Endpoint string `yaml:"endpoint"`
	Device   string `yaml:"device"`
	Baud     int    `yaml:"baud"`

	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
	Address   uint16 `yaml:"address"` // first of 5 discrete inputs
}

// ---- DISPLAY ----

type DisplayConfig struct {
	Kind DisplayKind `yaml:"kind"`
}

// ---- STATUS (optional, opt-in) ----

type StatusConfig struct {
	// "modbus" (default) writes holding registers; "ingest" sends raw
	// ingest packets to a memory appliance.
	Protocol   string `yaml:"protocol"`
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}
