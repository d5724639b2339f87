// internal/config/load_test.go
package config

import (
	"strings"
	"testing"
)

func TestParse_OverlaysDefaults(t *testing.T) {
	src := `
volume:
  path: /mnt/usb
navigation:
  nav_mode: indexed
  nav_loop: false
  twobutton_action: rotary,reverse
  rotary: half
  image_on_startup: static
input:
  source: modbus
  modbus:
    endpoint: 10.0.0.5:502
    unit_id: 3
status:
  endpoint: 10.0.0.9:502
  base_slot: 2
`
	cfg, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	n := cfg.Navigation
	if n.NavMode != NavIndexed || n.Loop || n.ImageOnStartup != ImageStatic {
		t.Fatalf("navigation=%+v", n)
	}
	if n.TwoButton != (TwoButtonAction{Mode: TwoButtonRotary, Reverse: true}) {
		t.Fatalf("twobutton=%s", n.TwoButton)
	}
	if n.Rotary.Sensitivity != RotaryHalf || n.Rotary.Reverse {
		t.Fatalf("rotary=%s", n.Rotary)
	}
	// untouched keys keep their defaults
	if n.IndexedPrefix != "DSKA" || n.AutoselectFileSecs != 2 || n.NavScrollRate != 80 {
		t.Fatalf("defaults lost: %+v", n)
	}
	if cfg.Input.Modbus == nil || cfg.Input.Modbus.UnitID != 3 {
		t.Fatalf("input=%+v", cfg.Input)
	}
	if cfg.Status == nil || cfg.Status.BaseSlot != 2 {
		t.Fatalf("status=%+v", cfg.Status)
	}
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("navigation: [unterminated")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFFCfg_OverridesNavigation(t *testing.T) {
	src := `
# FlashFloppy options
nav-mode = native
nav-loop = no
twobutton-action = eject
rotary = quarter,reverse   # trailing comment
indexed-prefix = "disk"
image-on-startup = init
autoselect-file-secs = 5
autoselect-folder-secs = 0
display-type = lcd-20x02
nav-scroll-rate = 120
bogus-key = 1
`
	opts, err := ParseFFCfg(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	n := Defaults().Navigation
	unknown := ApplyFFCfg(&n, opts)

	if len(unknown) != 1 || unknown[0] != "bogus-key" {
		t.Fatalf("unknown=%v", unknown)
	}
	if n.NavMode != NavNative || n.Loop || n.TwoButton.Mode != TwoButtonEject {
		t.Fatalf("navigation=%+v", n)
	}
	if n.Rotary != (Rotary{Sensitivity: RotaryQuarter, Reverse: true}) {
		t.Fatalf("rotary=%s", n.Rotary)
	}
	if n.IndexedPrefix != "DISK" || n.ImageOnStartup != ImageInit {
		t.Fatalf("prefix=%q startup=%s", n.IndexedPrefix, n.ImageOnStartup)
	}
	if n.AutoselectFileSecs != 5 || n.AutoselectFolderSecs != 0 {
		t.Fatalf("autoselect=%d/%d", n.AutoselectFileSecs, n.AutoselectFolderSecs)
	}
	if n.DisplayColumns != 20 || n.NavScrollRate != 120 || !n.RichDisplay() {
		t.Fatalf("display cols=%d rate=%d", n.DisplayColumns, n.NavScrollRate)
	}
}

func TestLeadingInt(t *testing.T) {
	cases := map[string]int{"": 0, "7": 7, "12s": 12, "x3": 0, "0042": 42}
	for in, want := range cases {
		if got := leadingInt(in); got != want {
			t.Fatalf("leadingInt(%q)=%d want %d", in, got, want)
		}
	}
}
