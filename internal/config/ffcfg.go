// internal/config/ffcfg.go
package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// FFCfgName is the on-volume override file.
const FFCfgName = "FF.CFG"

// Option is one "name = value" line of FF.CFG.
type Option struct {
	Name  string
	Value string
	Line  int
}

// ParseFFCfg reads FF.CFG options in file order. '#' starts a comment;
// blank lines and lines without '=' are skipped. Section headers
// ("[name]") are ignored.
func ParseFFCfg(r io.Reader) ([]Option, error) {
	var out []Option
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		s := sc.Text()
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
		if s == "" || s[0] == '[' {
			continue
		}
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(s[:eq]))
		value := strings.TrimSpace(s[eq+1:])
		value = strings.Trim(value, "\"")
		if name == "" {
			continue
		}
		out = append(out, Option{Name: name, Value: value, Line: line})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", FFCfgName, err)
	}
	return out, nil
}

// ApplyFFCfg overlays FF.CFG options onto n. Unknown names are returned
// so the caller can log them; they are not an error.
func ApplyFFCfg(n *NavigationConfig, opts []Option) (unknown []string) {
	for _, o := range opts {
		v := strings.ToLower(o.Value)
		switch o.Name {
		case "nav-mode":
			n.NavMode = ParseNavMode(v)
		case "nav-loop":
			n.Loop = parseYesNo(v)
		case "twobutton-action":
			n.TwoButton = ParseTwoButton(v)
		case "rotary":
			n.Rotary = ParseRotary(v)
		case "indexed-prefix":
			n.IndexedPrefix = o.Value
		case "image-on-startup":
			n.ImageOnStartup = ParseImageOnStartup(v)
		case "ejected-on-startup":
			n.EjectedOnStartup = parseYesNo(v)
		case "write-protect":
			n.WriteProtect = parseYesNo(v)
		case "autoselect-file-secs":
			n.AutoselectFileSecs = leadingInt(v)
		case "autoselect-folder-secs":
			n.AutoselectFolderSecs = leadingInt(v)
		case "display-type":
			n.DisplayType = ParseDisplayType(v)
			if c := displayColumns(v); c != 0 {
				n.DisplayColumns = c
			}
		case "nav-scroll-rate":
			n.NavScrollRate = leadingInt(v)
		case "nav-scroll-pause":
			n.NavScrollPause = leadingInt(v)
		default:
			unknown = append(unknown, o.Name)
		}
	}
	NormalizeNavigation(n)
	return unknown
}

func parseYesNo(s string) bool {
	return s == "yes" || s == "true" || s == "1" || s == "on"
}

// leadingInt parses leading decimal digits; anything else yields 0.
func leadingInt(s string) int {
	v := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		v = v*10 + int(s[i]-'0')
		if v > 1<<20 {
			break
		}
	}
	return v
}

// displayColumns extracts a "-NN" column suffix, as in "lcd-20x02".
func displayColumns(s string) int {
	for _, p := range strings.Split(s, ",") {
		if i := strings.IndexByte(p, '-'); i >= 0 {
			if c := leadingInt(p[i+1:]); c != 0 {
				return c
			}
		}
	}
	return 0
}
