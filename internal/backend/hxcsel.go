// internal/backend/hxcsel.go
package backend

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tamzrod/ffslot/internal/fault"
	"github.com/tamzrod/ffslot/internal/hxc"
	"github.com/tamzrod/ffslot/internal/slot"
	"github.com/tamzrod/ffslot/internal/volume"
)

// emptyName labels slot 0 when no AUTOBOOT.HFE exists.
const emptyName = "(Empty)"

// HxcSelector reads the slot table of HXCSDFE.CFG (format v1 or v2).
// Slot 0 is the autoboot image.
type HxcSelector struct {
	env *Env
	cfg volume.Handle

	autoboot slot.Slot
}

func NewHxcSelector(env *Env, cfg volume.Handle) *HxcSelector {
	return &HxcSelector{env: env, cfg: cfg, autoboot: empty(emptyName)}
}

func (h *HxcSelector) Kind() Kind { return KindHxcSelector }

func (h *HxcSelector) Load() (bool, error) {
	ejected, err := loadStartupBits(h.env, h.cfg)
	if err != nil {
		return false, err
	}
	h.autoboot = locateAutoboot(h.env)
	return ejected, h.Refresh()
}

// Refresh re-reads the persisted slot number.
func (h *HxcSelector) Refresh() error {
	hdr, err := readCfgHeader(h.env, h.cfg)
	if err != nil {
		return err
	}
	h.env.Model.Load(hdr.CurrentSlot())
	return nil
}

func (h *HxcSelector) Rebuild() error {
	f, hdr, err := openCfg(h.env, h.cfg, volume.OpenRead)
	if err != nil {
		return err
	}
	defer f.Close()

	var bm slot.Map
	top := min(max(hdr.MaxSlot(), 0), slot.MapSlots-1)

	switch hdr.Version() {
	case 1:
		bm.Fill()
	case 2:
		raw, err := hxc.ReadMap(f, hdr)
		if err != nil {
			return err
		}
		copy(bm[:], raw)
		bm.Set(0)
		for top > 0 && !bm.Test(top) {
			top--
		}
	}
	h.env.Model.Rebuild(uint16(top), &bm)
	return nil
}

func (h *HxcSelector) Current() (slot.Slot, error) {
	nr := h.env.Model.Nr()
	if nr == 0 {
		return h.env.protect(h.autoboot), nil
	}

	f, hdr, err := openCfg(h.env, h.cfg, volume.OpenRead)
	if err != nil {
		return slot.Slot{}, err
	}
	defer f.Close()

	rec, err := hxc.ReadRecord(f, hdr, nr)
	if err != nil {
		return slot.Slot{}, err
	}
	return h.env.protect(fromRecord(rec)), nil
}

func (h *HxcSelector) Write() error {
	return writeCfgSlot(h.env, h.cfg, h.env.Model.Nr())
}

func (h *HxcSelector) MarkEjected(bool) error { return nil }

func (h *HxcSelector) Find(name string) (uint16, bool, error) {
	f, hdr, err := openCfg(h.env, h.cfg, volume.OpenRead)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	m := h.env.Model
	for nr := 1; nr <= int(m.Max()); nr++ {
		if !m.Valid(nr) {
			continue
		}
		rec, err := hxc.ReadRecord(f, hdr, uint16(nr))
		if err != nil {
			return 0, false, err
		}
		if hasPrefixFold(rec.Name, name) {
			return uint16(nr), true, nil
		}
	}
	return 0, false, nil
}

// ---- shared HXCSDFE.CFG access ----

// openCfg opens the configuration file and validates its signature.
func openCfg(env *Env, cfg volume.Handle, flag volume.Flag) (volume.File, hxc.Header, error) {
	f, err := env.Vol.Reopen(cfg, flag)
	if err != nil {
		return nil, hxc.Header{}, fmt.Errorf("hxc: open %s: %w", hxc.FileName, err)
	}
	hdr, err := hxc.ReadHeader(f)
	if errors.Is(err, hxc.ErrShortHeader) {
		f.Close()
		return nil, hxc.Header{}, fault.New(fault.CodeBadHxcSdfe, "short header")
	}
	if err != nil {
		f.Close()
		return nil, hxc.Header{}, err
	}
	if v := hdr.Version(); v != 1 && v != 2 {
		f.Close()
		log.Printf("hxc: bad signature %q", hdr.SignatureString())
		return nil, hxc.Header{}, fault.New(fault.CodeBadHxcSdfe, "signature %q", hdr.SignatureString())
	}
	return f, hdr, nil
}

func readCfgHeader(env *Env, cfg volume.Handle) (hxc.Header, error) {
	f, hdr, err := openCfg(env, cfg, volume.OpenRead)
	if err != nil {
		return hdr, err
	}
	f.Close()
	return hdr, nil
}

// writeCfgSlot patches the current slot field and rewrites the header
// record in place.
func writeCfgSlot(env *Env, cfg volume.Handle, nr uint16) error {
	f, hdr, err := openCfg(env, cfg, volume.OpenRead|volume.OpenWrite)
	if err != nil {
		return err
	}
	defer f.Close()

	prev := hdr.CurrentSlot()
	hdr.SetCurrentSlot(nr)
	if err := hxc.WriteHeader(f, hdr); err != nil {
		return err
	}
	log.Printf("hxc: slot index updated (old=%d new=%d)", prev, nr)
	return nil
}

// loadStartupBits consults the startup-mode bits once. A "start at slot 0"
// request is applied and then cleared so it does not fire again.
func loadStartupBits(env *Env, cfg volume.Handle) (bool, error) {
	f, hdr, err := openCfg(env, cfg, volume.OpenRead)
	if err != nil {
		return false, err
	}
	f.Close()

	if hdr.StartupMode&hxc.StartupSlot0 != 0 {
		hdr.ResetSlot()
		hdr.StartupMode &^= hxc.StartupSlot0
		if env.Vol.ReadOnly() {
			log.Printf("hxc: read-only volume, start-at-slot-0 not cleared")
		} else {
			w, err := env.Vol.Reopen(cfg, volume.OpenRead|volume.OpenWrite)
			if err != nil {
				return false, fmt.Errorf("hxc: open %s: %w", hxc.FileName, err)
			}
			err = hxc.WriteHeader(w, hdr)
			w.Close()
			if err != nil {
				return false, err
			}
			log.Printf("hxc: start-at-slot-0 applied and cleared")
		}
	}
	return hdr.StartupMode&hxc.StartupEjected != 0, nil
}

func locateAutoboot(env *Env) slot.Slot {
	var s slot.Slot
	err := env.inDir("", func() error {
		f, err := env.Vol.Open(hxc.AutobootName, volume.OpenRead)
		if err != nil {
			return err
		}
		defer f.Close()
		size, err := f.Size()
		if err != nil {
			return err
		}
		s = slot.FromFile(f.Handle(), hxc.AutobootName, volume.AttrArchive|volume.AttrReadOnly, size)
		return nil
	})
	if err != nil {
		return empty(emptyName)
	}
	return s
}

func fromRecord(r hxc.Record) slot.Slot {
	typ := strings.ToLower(r.Type)
	return slot.Slot{
		Name: slot.Truncate(r.Name, slot.NameMax),
		Type: slot.Truncate(typ, slot.TypeMax),
		Attr: volume.Attr(r.Attr),
		Handle: volume.Handle{
			Name:    r.Name + "." + typ,
			Cluster: r.Cluster,
		},
		Size: int64(r.Size),
	}
}
