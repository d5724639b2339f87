// internal/volume/os.go
package volume

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// OS implements Volume on a host directory, typically the mount point of
// a removable drive.
type OS struct {
	root string
	cwd  Dir
}

// OpenOS returns a volume rooted at path.
func OpenOS(path string) (*OS, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("volume: %s: %w", path, ErrNotDir)
	}
	return &OS{root: path}, nil
}

func (v *OS) Cwd() Dir     { return v.cwd }
func (v *OS) SetCwd(d Dir) { v.cwd = d }

func (v *OS) Chdir(name string) error {
	if name == ".." {
		v.cwd = v.cwd.Parent()
		return nil
	}
	actual, err := v.lookup(v.cwd, name)
	if err != nil {
		return err
	}
	st, err := os.Stat(v.host(v.cwd.Join(actual)))
	if err != nil {
		return fmt.Errorf("volume: chdir %s: %w", name, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("volume: chdir %s: %w", name, ErrNotDir)
	}
	v.cwd = v.cwd.Join(actual)
	return nil
}

func (v *OS) ReadDir() ([]Entry, error) {
	des, err := os.ReadDir(v.host(v.cwd))
	if err != nil {
		return nil, fmt.Errorf("volume: readdir %q: %w", v.cwd, err)
	}
	out := make([]Entry, 0, len(des))
	for _, de := range des {
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name: de.Name(),
			Attr: attrOf(info),
			Size: sizeOf(info),
		})
	}
	return out, nil
}

func (v *OS) Open(name string, flag Flag) (File, error) {
	actual, err := v.lookup(v.cwd, name)
	if errors.Is(err, fs.ErrNotExist) && flag&OpenAlways != 0 {
		actual, err = name, nil
	}
	if err != nil {
		return nil, err
	}
	return v.open(Handle{Dir: v.cwd, Name: actual}, flag)
}

func (v *OS) Reopen(h Handle, flag Flag) (File, error) {
	if h.Cluster == NoCluster {
		return nil, fmt.Errorf("volume: reopen %q: %w", h.Name, fs.ErrNotExist)
	}
	return v.open(h, flag)
}

func (v *OS) ReadOnly() bool {
	st, err := os.Stat(v.root)
	if err != nil {
		return true
	}
	return st.Mode().Perm()&0o200 == 0
}

func (v *OS) Connected() bool {
	_, err := os.Stat(v.root)
	return err == nil
}

func (v *OS) open(h Handle, flag Flag) (File, error) {
	mode := os.O_RDONLY
	if flag&(OpenWrite|OpenAlways) != 0 {
		mode = os.O_RDWR
	}
	if flag&OpenAlways != 0 {
		mode |= os.O_CREATE
	}
	f, err := os.OpenFile(v.host(h.Dir.Join(h.Name)), mode, 0o644)
	if err != nil {
		return nil, fmt.Errorf("volume: open %s: %w", h.Name, err)
	}
	return &osFile{File: f, h: h}, nil
}

// lookup resolves name case-insensitively within dir.
func (v *OS) lookup(dir Dir, name string) (string, error) {
	des, err := os.ReadDir(v.host(dir))
	if err != nil {
		return "", fmt.Errorf("volume: lookup %s: %w", name, err)
	}
	for _, de := range des {
		if strings.EqualFold(de.Name(), name) {
			return de.Name(), nil
		}
	}
	return "", fmt.Errorf("volume: lookup %s: %w", name, fs.ErrNotExist)
}

func (v *OS) host(d Dir) string {
	return filepath.Join(v.root, filepath.FromSlash(string(d)))
}

func attrOf(info fs.FileInfo) Attr {
	var a Attr
	if info.IsDir() {
		a |= AttrDir
	} else {
		a |= AttrArchive
	}
	if info.Mode().Perm()&0o200 == 0 {
		a |= AttrReadOnly
	}
	return a
}

func sizeOf(info fs.FileInfo) int64 {
	if info.IsDir() {
		return 0
	}
	return info.Size()
}

type osFile struct {
	*os.File
	h Handle
}

func (f *osFile) Handle() Handle { return f.h }

func (f *osFile) Size() (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}
