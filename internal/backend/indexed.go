// internal/backend/indexed.go
package backend

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/fault"
	"github.com/tamzrod/ffslot/internal/slot"
	"github.com/tamzrod/ffslot/internal/volume"
)

// indexDigits is the width of the numeric field after the prefix.
const indexDigits = 4

// Indexed maps files named <prefix><NNNN>... in the root folder directly
// to slot NNNN. The current number persists either as decimal text in
// IMAGE_A.CFG (FF indexed) or in the HXCSDFE.CFG header (HxC indexed).
type Indexed struct {
	env  *Env
	kind Kind

	// HXCSDFE.CFG location, HxC indexed only.
	cfg volume.Handle
}

func NewFFIndexed(env *Env) *Indexed {
	return &Indexed{env: env, kind: KindFFIndexed}
}

func NewHxcIndexed(env *Env, cfg volume.Handle) *Indexed {
	return &Indexed{env: env, kind: KindHxcIndexed, cfg: cfg}
}

func (x *Indexed) Kind() Kind { return x.kind }

func (x *Indexed) Load() (bool, error) {
	env := x.env
	env.Model.Load(0)
	if env.Nav.ImageOnStartup == config.ImageInit {
		return false, nil
	}

	if x.kind == KindHxcIndexed {
		ejected, err := loadStartupBits(env, x.cfg)
		if err != nil {
			return false, err
		}
		hdr, err := readCfgHeader(env, x.cfg)
		if err != nil {
			return false, err
		}
		env.Model.Load(hdr.CurrentSlot())
		return ejected, nil
	}

	var text []byte
	err := env.inDir(env.CfgDir, func() error {
		f, err := env.Vol.Open(TrailName, volume.OpenRead)
		if err != nil {
			return err
		}
		defer f.Close()
		buf := make([]byte, 10)
		n, err := f.ReadAt(buf, 0)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		text = buf[:n]
		return nil
	})
	if err != nil {
		if notExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("indexed: read %s: %w", TrailName, err)
	}
	env.Model.Load(parseDecimal(text))
	return false, nil
}

func (x *Indexed) Rebuild() error {
	env := x.env
	entries, err := x.rootEntries()
	if err != nil {
		return err
	}

	var bm slot.Map
	top, found := 0, 0
	for _, e := range entries {
		idx, ok := x.match(e)
		if !ok {
			continue
		}
		bm.Set(idx)
		top = max(top, idx)
		found++
	}
	if found == 0 {
		return fault.New(fault.CodeNoDirents, "no %s%0*d files", env.Nav.IndexedPrefix, indexDigits, 0)
	}
	bm.Set(0)
	env.Model.Rebuild(uint16(top), &bm)
	return nil
}

func (x *Indexed) Current() (slot.Slot, error) {
	env := x.env
	nr := int(env.Model.Nr())
	log.Printf("indexed: lookup [%s%0*d*]", env.Nav.IndexedPrefix, indexDigits, nr)

	entries, err := x.rootEntries()
	if err != nil {
		return slot.Slot{}, err
	}
	for _, e := range entries {
		if idx, ok := x.match(e); !ok || idx != nr {
			continue
		}
		var s slot.Slot
		err := env.inDir("", func() error {
			f, err := env.Vol.Open(e.Name, volume.OpenRead)
			if err != nil {
				return err
			}
			defer f.Close()
			size, err := f.Size()
			if err != nil {
				return err
			}
			s = slot.FromFile(f.Handle(), e.Name, e.Attr, size)
			return nil
		})
		if err != nil {
			return slot.Slot{}, fmt.Errorf("indexed: %w", err)
		}
		return env.protect(s), nil
	}
	return empty(emptyName), nil
}

func (x *Indexed) Write() error {
	env := x.env
	nr := env.Model.Nr()

	if x.kind == KindHxcIndexed {
		if env.Nav.ImageOnStartup == config.ImageInit {
			return nil
		}
		return writeCfgSlot(env, x.cfg, nr)
	}

	if env.Nav.ImageOnStartup != config.ImageLast {
		return nil
	}
	text := []byte(strconv.Itoa(int(nr)))
	err := env.inDir(env.CfgDir, func() error {
		f, err := env.Vol.Open(TrailName, volume.OpenWrite|volume.OpenAlways)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := f.WriteAt(text, 0); err != nil {
			return err
		}
		return f.Truncate(int64(len(text)))
	})
	if err != nil {
		return fmt.Errorf("indexed: write %s: %w", TrailName, err)
	}
	log.Printf("indexed: %s updated (slot=%d)", TrailName, nr)
	return nil
}

func (x *Indexed) MarkEjected(bool) error { return nil }

// Find matches name against the whole file name or the part after the
// numeric field, in slot order.
func (x *Indexed) Find(name string) (uint16, bool, error) {
	entries, err := x.rootEntries()
	if err != nil {
		return 0, false, err
	}

	best := -1
	for _, e := range entries {
		idx, ok := x.match(e)
		if !ok || (best >= 0 && idx >= best) {
			continue
		}
		rest := strings.TrimLeft(e.Name[len(x.env.Nav.IndexedPrefix)+indexDigits:], "-_ ")
		if hasPrefixFold(e.Name, name) || hasPrefixFold(rest, name) {
			best = idx
		}
	}
	if best < 0 {
		return 0, false, nil
	}
	return uint16(best), true, nil
}

// ---- matching ----

func (x *Indexed) rootEntries() ([]volume.Entry, error) {
	var out []volume.Entry
	err := x.env.inDir("", func() error {
		var err error
		out, err = x.env.Vol.ReadDir()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("indexed: %w", err)
	}
	return out, nil
}

// match reports the slot index encoded in a recognized image's name.
func (x *Indexed) match(e volume.Entry) (int, bool) {
	if e.IsDir() || !x.env.Images.Recognized(e) {
		return 0, false
	}
	return parseIndex(e.Name, x.env.Nav.IndexedPrefix)
}

// parseIndex accepts name = prefix + exactly four digits + non-digit
// remainder, with the value in 0..999. The prefix matches
// case-insensitively.
func parseIndex(name, prefix string) (int, bool) {
	if len(name) < len(prefix)+indexDigits || !strings.EqualFold(name[:len(prefix)], prefix) {
		return 0, false
	}
	digits := name[len(prefix):]
	idx := 0
	for i := 0; i < indexDigits; i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		idx = idx*10 + int(c-'0')
	}
	if len(digits) > indexDigits && digits[indexDigits] >= '0' && digits[indexDigits] <= '9' {
		return 0, false
	}
	if idx >= slot.MapSlots {
		return 0, false
	}
	return idx, true
}

// parseDecimal reads leading decimal digits; anything else yields 0.
func parseDecimal(b []byte) uint16 {
	v := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + int(c-'0')
		if v > 0xFFFF {
			return 0
		}
	}
	return uint16(v)
}
