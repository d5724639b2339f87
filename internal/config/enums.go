// internal/config/enums.go
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ---- nav mode ----

type NavMode int

const (
	NavDefault NavMode = iota // probe HXCSDFE.CFG, else native
	NavNative
	NavIndexed
)

func ParseNavMode(s string) NavMode {
	switch s {
	case "native":
		return NavNative
	case "indexed":
		return NavIndexed
	default:
		return NavDefault
	}
}

func (m NavMode) String() string {
	switch m {
	case NavNative:
		return "native"
	case NavIndexed:
		return "indexed"
	default:
		return "default"
	}
}

func (m *NavMode) UnmarshalYAML(n *yaml.Node) error {
	return decodeWord(n, func(s string) { *m = ParseNavMode(s) })
}

// ---- image on startup ----

type ImageOnStartup int

const (
	ImageLast   ImageOnStartup = iota // resume and persist
	ImageStatic                       // resume, never persist
	ImageInit                         // always start fresh
)

func ParseImageOnStartup(s string) ImageOnStartup {
	switch s {
	case "static":
		return ImageStatic
	case "last":
		return ImageLast
	default:
		return ImageInit
	}
}

func (i ImageOnStartup) String() string {
	switch i {
	case ImageStatic:
		return "static"
	case ImageLast:
		return "last"
	default:
		return "init"
	}
}

func (i *ImageOnStartup) UnmarshalYAML(n *yaml.Node) error {
	return decodeWord(n, func(s string) { *i = ParseImageOnStartup(s) })
}

// ---- two-button action ----

type TwoButtonMode int

const (
	TwoButtonZero TwoButtonMode = iota
	TwoButtonEject
	TwoButtonRotary
	TwoButtonRotaryFast
)

// TwoButtonAction says what LEFT+RIGHT together mean and how the two
// physical buttons map onto logical ones.
type TwoButtonAction struct {
	Mode    TwoButtonMode
	Reverse bool
}

// RotaryStyle reports whether the physical buttons act as
// "zero/up" + SELECT next to a rotary encoder.
func (a TwoButtonAction) RotaryStyle() bool {
	return a.Mode == TwoButtonRotary || a.Mode == TwoButtonRotaryFast
}

// ParseTwoButton parses a comma list such as "rotary,reverse".
func ParseTwoButton(s string) TwoButtonAction {
	var a TwoButtonAction
	for _, p := range splitList(s) {
		if p == "reverse" {
			a.Reverse = true
			continue
		}
		switch p {
		case "rotary":
			a.Mode = TwoButtonRotary
		case "rotary-fast":
			a.Mode = TwoButtonRotaryFast
		case "eject":
			a.Mode = TwoButtonEject
		default:
			a.Mode = TwoButtonZero
		}
	}
	return a
}

func (a TwoButtonAction) String() string {
	s := [...]string{"zero", "eject", "rotary", "rotary-fast"}[a.Mode]
	if a.Reverse {
		s += ",reverse"
	}
	return s
}

func (a *TwoButtonAction) UnmarshalYAML(n *yaml.Node) error {
	return decodeWord(n, func(s string) { *a = ParseTwoButton(s) })
}

// ---- rotary ----

type Sensitivity int

const (
	RotaryNone Sensitivity = iota
	RotaryFull
	RotaryHalf
	RotaryQuarter
)

type Rotary struct {
	Sensitivity Sensitivity
	Reverse     bool
}

// ParseRotary parses a comma list such as "half,reverse".
func ParseRotary(s string) Rotary {
	r := Rotary{Sensitivity: RotaryFull}
	for _, p := range splitList(s) {
		if p == "reverse" {
			r.Reverse = true
			continue
		}
		switch p {
		case "gray", "quarter":
			r.Sensitivity = RotaryQuarter
		case "half":
			r.Sensitivity = RotaryHalf
		case "none":
			r.Sensitivity = RotaryNone
		default:
			r.Sensitivity = RotaryFull
		}
	}
	return r
}

func (r Rotary) String() string {
	s := [...]string{"none", "full", "half", "quarter"}[r.Sensitivity]
	if r.Reverse {
		s += ",reverse"
	}
	return s
}

func (r *Rotary) UnmarshalYAML(n *yaml.Node) error {
	return decodeWord(n, func(s string) { *r = ParseRotary(s) })
}

// ---- display type ----

type DisplayType int

const (
	DisplayLCD DisplayType = iota // character LCD or OLED: folders allowed
	DisplayLED                    // 3-digit 7-segment: flat navigation
)

func ParseDisplayType(s string) DisplayType {
	if strings.HasPrefix(s, "led") || s == "7seg" {
		return DisplayLED
	}
	return DisplayLCD
}

func (d *DisplayType) UnmarshalYAML(n *yaml.Node) error {
	return decodeWord(n, func(s string) { *d = ParseDisplayType(s) })
}

// ---- input source ----

type InputSource string

const (
	InputNone     InputSource = "none"
	InputKeyboard InputSource = "keyboard"
	InputModbus   InputSource = "modbus"
)

// ---- display kind ----

type DisplayKind string

const (
	DisplayLog   DisplayKind = "log"
	DisplayPanel DisplayKind = "panel"
)

// ---- helpers ----

func decodeWord(n *yaml.Node, set func(string)) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return fmt.Errorf("config: line %d: %w", n.Line, err)
	}
	set(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
