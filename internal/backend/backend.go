// internal/backend/backend.go
package backend

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/tamzrod/ffslot/internal/config"
	"github.com/tamzrod/ffslot/internal/image"
	"github.com/tamzrod/ffslot/internal/slot"
	"github.com/tamzrod/ffslot/internal/volume"
)

// Kind identifies a persistence convention.
type Kind int

const (
	KindNative Kind = iota
	KindHxcSelector
	KindHxcIndexed
	KindFFIndexed
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindHxcSelector:
		return "hxc-selector"
	case KindHxcIndexed:
		return "hxc-indexed"
	case KindFFIndexed:
		return "ff-indexed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Backend reads and writes the current slot against one on-disk layout.
// Exactly one Backend is active per session.
type Backend interface {
	Kind() Kind

	// Load reads the persisted selection into the model.
	// It is called once per session, before the first Rebuild.
	Load() (ejected bool, err error)

	// Rebuild rescans the current context and replaces the model's
	// validity universe.
	Rebuild() error

	// Current resolves the model's current number to slot metadata.
	Current() (slot.Slot, error)

	// Write persists the model's current number.
	Write() error

	// MarkEjected persists the ejected marker where the layout has one.
	MarkEjected(ej bool) error

	// Find returns the first slot whose name begins with name.
	Find(name string) (nr uint16, ok bool, err error)
}

// Folders is implemented by backends that support nested directories.
type Folders interface {
	// Enter descends into the folder slot s, or ascends when s is "..".
	// The caller must Rebuild afterwards.
	Enter(s slot.Slot) error
}

// Refresher is implemented by backends whose state a host may rewrite
// while an image is mounted.
type Refresher interface {
	Refresh() error
}

// TrailName is the selection state file for Native and FF indexed modes.
const TrailName = "IMAGE_A.CFG"

// CfgDirName holds FF.CFG and IMAGE_A.CFG when present.
const CfgDirName = "FF"

// Env is the state shared by a backend and the session that owns it.
type Env struct {
	Vol    volume.Volume
	Nav    config.NavigationConfig
	Images image.Recognizer
	Model  *slot.Model
	Stack  *slot.Stack

	// CfgDir is where IMAGE_A.CFG lives.
	CfgDir volume.Dir
}

// LocateCfgDir returns CfgDirName when it exists at the root, else the
// root. The volume's current directory is restored.
func LocateCfgDir(v volume.Volume) volume.Dir {
	cwd := v.Cwd()
	defer v.SetCwd(cwd)

	v.SetCwd("")
	if err := v.Chdir(CfgDirName); err != nil {
		return ""
	}
	return v.Cwd()
}

// inDir runs fn with the volume's current directory set to d.
func (e *Env) inDir(d volume.Dir, fn func() error) error {
	cwd := e.Vol.Cwd()
	e.Vol.SetCwd(d)
	defer e.Vol.SetCwd(cwd)
	return fn()
}

// protect applies the write-protect override to file slots.
func (e *Env) protect(s slot.Slot) slot.Slot {
	if !s.IsDir() && (e.Nav.WriteProtect || e.Vol.ReadOnly()) {
		s.Attr |= volume.AttrReadOnly
	}
	return s
}

// empty is the slot shown where no backing file exists.
func empty(name string) slot.Slot {
	return slot.Slot{Name: name, Handle: volume.Handle{Cluster: volume.NoCluster}}
}

func readAll(f volume.File) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f)
}

func notExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// hasPrefixFold is strings.HasPrefix under case folding.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
