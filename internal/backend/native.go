// internal/backend/native.go
package backend

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/fault"
	"github.com/tamzrod/ffslot/internal/slot"
	"github.com/tamzrod/ffslot/internal/volume"
)

// ejectMarker follows the file name in the trail while ejected.
const ejectMarker = `\EJ`

const upName = ".."

// errStaleTrail marks a trail that no longer matches the volume.
var errStaleTrail = errors.New("native: stale trail")

// Native navigates the directory tree directly. Slot numbers are ordinal
// positions in the filtered listing; the selection persists as a path
// trail in IMAGE_A.CFG.
type Native struct {
	env *Env

	// ejFlag mirrors whether the trail currently ends in ejectMarker.
	ejFlag bool
}

func NewNative(env *Env) *Native { return &Native{env: env} }

func (n *Native) Kind() Kind { return KindNative }

// ---- listing ----

func (n *Native) depth() int { return n.env.Stack.Depth() }

// base is the number of the first listed entry; slot 0 is ".." below
// the root.
func (n *Native) base() int {
	if n.depth() > 0 {
		return 1
	}
	return 0
}

func (n *Native) visible(e volume.Entry) bool {
	if strings.HasPrefix(e.Name, ".") || e.Attr.Has(volume.AttrHidden) {
		return false
	}
	if e.IsDir() {
		if !n.env.Nav.RichDisplay() {
			return false
		}
		if n.depth() == 0 && e.Name == CfgDirName {
			return false
		}
		return e.Name != "__MACOSX"
	}
	return n.env.Images.Recognized(e)
}

func (n *Native) listing() ([]volume.Entry, error) {
	all, err := n.env.Vol.ReadDir()
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}
	out := all[:0]
	for _, e := range all {
		if n.visible(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ordinal returns the slot number of name in the current listing.
func (n *Native) ordinal(name string) (int, bool, error) {
	list, err := n.listing()
	if err != nil {
		return 0, false, err
	}
	for i, e := range list {
		if strings.EqualFold(e.Name, name) {
			return n.base() + i, true, nil
		}
	}
	return 0, false, nil
}

// entry returns the directory entry behind slot nr, synthesizing "..".
func (n *Native) entry(nr int) (volume.Entry, error) {
	if n.depth() > 0 && nr == 0 {
		return volume.Entry{Name: upName, Attr: volume.AttrDir}, nil
	}
	list, err := n.listing()
	if err != nil {
		return volume.Entry{}, err
	}
	i := nr - n.base()
	if i < 0 || i >= len(list) {
		return volume.Entry{}, fmt.Errorf("native: slot %d beyond listing of %d", nr, len(list))
	}
	return list[i], nil
}

// ---- Backend ----

func (n *Native) Load() (bool, error) {
	env := n.env
	env.Model.Load(0)
	env.Stack.Reset()
	n.ejFlag = false

	if env.Nav.ImageOnStartup == config.ImageInit {
		return false, nil
	}

	flag := volume.OpenRead
	if env.Nav.ImageOnStartup == config.ImageLast {
		flag |= volume.OpenWrite | volume.OpenAlways
	}

	var f volume.File
	err := env.inDir(env.CfgDir, func() error {
		var err error
		f, err = env.Vol.Open(TrailName, flag)
		return err
	})
	if err != nil {
		if errors.Is(err, volume.ErrDisconnected) {
			return false, fmt.Errorf("native: %w", err)
		}
		log.Printf("native: %s not opened: %v", TrailName, err)
		return false, nil
	}
	defer f.Close()

	data, err := readAll(f)
	if err != nil {
		return false, fmt.Errorf("native: read %s: %w", TrailName, err)
	}

	root := env.Vol.Cwd()
	ejected, err := n.replay(data)
	if errors.Is(err, errStaleTrail) {
		action := "ignoring"
		if env.Nav.ImageOnStartup == config.ImageLast {
			action = "clearing"
			if terr := f.Truncate(0); terr != nil {
				return false, fmt.Errorf("native: clear %s: %w", TrailName, terr)
			}
		}
		log.Printf("native: %s is bad: %s it (%v)", TrailName, action, err)
		env.Model.Load(0)
		env.Stack.Reset()
		env.Vol.SetCwd(root)
		n.ejFlag = false
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ejected, nil
}

// replay walks the trail: each '/'-terminated section enters a folder,
// a trailing section names the selected file.
func (n *Native) replay(data []byte) (bool, error) {
	env := n.env
	rest := data
	for {
		i := bytes.IndexByte(rest, '/')
		if i <= 0 {
			break
		}
		name := string(rest[:i])
		log.Printf("native: trail dir (depth=%d name=%q)", n.depth(), name)

		if n.depth() == slot.StackDepth {
			return false, fault.New(fault.CodePathTooDeep, "trail depth %d", n.depth())
		}
		nr, ok, err := n.ordinal(name)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("%w: folder %q not found", errStaleTrail, name)
		}
		cwd := env.Vol.Cwd()
		if err := env.Stack.Push(slot.Frame{Dir: cwd, Slot: uint16(nr)}); err != nil {
			return false, err
		}
		if err := env.Vol.Chdir(name); err != nil {
			if errors.Is(err, volume.ErrDisconnected) {
				return false, fmt.Errorf("native: %w", err)
			}
			return false, fmt.Errorf("%w: %v", errStaleTrail, err)
		}
		rest = rest[i+1:]
	}

	if n.depth() != 0 {
		if !env.Nav.RichDisplay() {
			return false, fmt.Errorf("%w: folders need a rich display", errStaleTrail)
		}
		env.Model.Load(1)
	}

	rest = bytes.TrimRightFunc(rest, unicode.IsSpace)
	ejected := false
	if bytes.HasSuffix(rest, []byte(ejectMarker)) {
		ejected = true
		n.ejFlag = true
		rest = rest[:len(rest)-len(ejectMarker)]
	}
	if len(rest) != 0 {
		name := string(rest)
		log.Printf("native: trail file (depth=%d name=%q ejected=%v)", n.depth(), name, ejected)
		nr, ok, err := n.ordinal(name)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("%w: file %q not found", errStaleTrail, name)
		}
		env.Model.Load(uint16(nr))
	}
	return ejected, nil
}

func (n *Native) Rebuild() error {
	list, err := n.listing()
	if err != nil {
		return err
	}
	count := n.base() + len(list)
	if count == 0 {
		return fault.New(fault.CodeNoDirents, "folder %q", n.env.Vol.Cwd())
	}
	if count > 1<<16 {
		count = 1 << 16
	}
	m := n.env.Model
	m.Rebuild(uint16(count-1), nil)
	if m.Nr() > m.Max() {
		m.Load(0)
	}
	return nil
}

func (n *Native) Current() (slot.Slot, error) {
	e, err := n.entry(int(n.env.Model.Nr()))
	if err != nil {
		return slot.Slot{}, err
	}
	cwd := n.env.Vol.Cwd()
	if e.IsDir() {
		s := slot.Folder(e.Name, e.Attr)
		s.Handle = volume.Handle{Dir: cwd, Name: e.Name}
		if e.Name == upName {
			s.Handle.Cluster = volume.NoCluster
		}
		return s, nil
	}
	f, err := n.env.Vol.Open(e.Name, volume.OpenRead)
	if err != nil {
		return slot.Slot{}, fmt.Errorf("native: %w", err)
	}
	defer f.Close()
	size, err := f.Size()
	if err != nil {
		return slot.Slot{}, fmt.Errorf("native: %w", err)
	}
	return n.env.protect(slot.FromFile(f.Handle(), e.Name, e.Attr, size)), nil
}

func (n *Native) Write() error {
	env := n.env
	if env.Nav.ImageOnStartup != config.ImageLast {
		return nil
	}
	e, err := n.entry(int(env.Model.Nr()))
	if err != nil {
		return err
	}
	err = env.inDir(env.CfgDir, func() error {
		f, err := env.Vol.Open(TrailName, volume.OpenWrite|volume.OpenAlways)
		if err != nil {
			return err
		}
		defer f.Close()

		before, err := readAll(f)
		if err != nil {
			return err
		}
		pos, tail, err := rewriteTrail(before, e.Name, e.IsDir())
		if err != nil {
			return err
		}
		if _, err := f.WriteAt(tail, pos); err != nil {
			return err
		}
		if err := f.Truncate(pos + int64(len(tail))); err != nil {
			return err
		}
		after := string(before[:pos]) + string(tail)
		log.Printf("native: trail (before=%q after=%q)", before, after)
		return nil
	})
	if err != nil {
		return fmt.Errorf("native: write %s: %w", TrailName, err)
	}
	n.ejFlag = false
	return nil
}

// rewriteTrail computes the replacement of the trail's final component.
// Everything before the returned offset is left untouched.
func rewriteTrail(trail []byte, name string, dir bool) (int64, []byte, error) {
	p := bytes.LastIndexByte(trail, '/')
	pos := p + 1

	if !dir {
		return int64(pos), []byte(name), nil
	}
	if name != upName {
		return int64(pos), []byte(name + "/"), nil
	}
	if p < 0 {
		return 0, nil, fault.New(fault.CodeBadImageCfg, "ascend with no folder in trail")
	}
	q := bytes.LastIndexByte(trail[:p], '/')
	return int64(q + 1), nil, nil
}

func (n *Native) MarkEjected(ej bool) error {
	env := n.env
	if env.Nav.ImageOnStartup != config.ImageLast || n.ejFlag == ej {
		return nil
	}
	err := env.inDir(env.CfgDir, func() error {
		f, err := env.Vol.Open(TrailName, volume.OpenWrite|volume.OpenAlways)
		if err != nil {
			return err
		}
		defer f.Close()

		size, err := f.Size()
		if err != nil {
			return err
		}
		if ej {
			_, err = f.WriteAt([]byte(ejectMarker), size)
			return err
		}
		return f.Truncate(max(size-int64(len(ejectMarker)), 0))
	})
	if err != nil {
		return fmt.Errorf("native: mark ejected: %w", err)
	}
	log.Printf("native: trail eject marker (ejected=%v)", ej)
	n.ejFlag = ej
	return nil
}

func (n *Native) Find(name string) (uint16, bool, error) {
	list, err := n.listing()
	if err != nil {
		return 0, false, err
	}
	for i, e := range list {
		if hasPrefixFold(e.Name, name) {
			return uint16(n.base() + i), true, nil
		}
	}
	return 0, false, nil
}

// ---- Folders ----

func (n *Native) Enter(s slot.Slot) error {
	env := n.env
	if !s.IsDir() {
		return fmt.Errorf("native: enter %q: %w", s.Name, volume.ErrNotDir)
	}
	if s.Handle.Name == upName {
		f, ok := env.Stack.Pop()
		if !ok {
			return fault.New(fault.CodeBadImageCfg, "ascend at root")
		}
		env.Vol.SetCwd(f.Dir)
		env.Model.Load(f.Slot)
		return nil
	}
	if err := env.Stack.Push(slot.Frame{Dir: env.Vol.Cwd(), Slot: env.Model.Nr()}); err != nil {
		return err
	}
	if err := env.Vol.Chdir(s.Handle.Name); err != nil {
		env.Stack.Pop()
		return fmt.Errorf("native: %w", err)
	}
	env.Model.Load(1)
	return nil
}
