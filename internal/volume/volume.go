// internal/volume/volume.go
package volume

import (
	"errors"
	"io"
	"strings"
)

// Volume is the filesystem collaborator.
// All names are short ASCII and matched case-insensitively.
// Enumeration order is the volume's own directory order.
type Volume interface {
	// Cwd returns the current directory.
	Cwd() Dir
	// SetCwd restores a directory previously returned by Cwd.
	SetCwd(d Dir)
	// Chdir descends into a subdirectory of Cwd, or ascends on "..".
	Chdir(name string) error
	// ReadDir enumerates Cwd.
	ReadDir() ([]Entry, error)
	// Open opens a file relative to Cwd.
	Open(name string, flag Flag) (File, error)
	// Reopen opens a previously located file without searching.
	Reopen(h Handle, flag Flag) (File, error)
	// ReadOnly reports whether the volume refuses writes.
	ReadOnly() bool
	// Connected reports whether the volume is still present.
	Connected() bool
}

// File is an open file on a Volume.
type File interface {
	io.ReadWriteSeeker
	io.ReaderAt
	io.WriterAt
	Truncate(size int64) error
	Size() (int64, error)
	Handle() Handle
	Close() error
}

// Attr mirrors FAT directory entry attribute bits.
type Attr uint8

const (
	AttrReadOnly Attr = 0x01
	AttrHidden   Attr = 0x02
	AttrSystem   Attr = 0x04
	AttrDir      Attr = 0x10
	AttrArchive  Attr = 0x20
)

func (a Attr) Has(b Attr) bool { return a&b != 0 }

// Entry is one enumerated directory entry.
type Entry struct {
	Name string
	Attr Attr
	Size int64
}

func (e Entry) IsDir() bool { return e.Attr.Has(AttrDir) }

// Dir identifies a directory as a slash-separated path from the root.
// The root is "".
type Dir string

// Join returns the child directory name under d.
func (d Dir) Join(name string) Dir {
	if d == "" {
		return Dir(name)
	}
	return Dir(string(d) + "/" + name)
}

// Parent returns the parent directory. The root is its own parent.
func (d Dir) Parent() Dir {
	i := strings.LastIndexByte(string(d), '/')
	if i < 0 {
		return ""
	}
	return d[:i]
}

// Depth counts path components.
func (d Dir) Depth() int {
	if d == "" {
		return 0
	}
	return strings.Count(string(d), "/") + 1
}

// Handle locates a file without re-scanning its directory.
// Cluster is the first data cluster when the volume has one; a Cluster of
// NoCluster marks a synthetic entry with no backing file.
type Handle struct {
	Dir     Dir
	Name    string
	Cluster uint32
}

const NoCluster = ^uint32(0)

// IsZero reports whether h locates nothing.
func (h Handle) IsZero() bool { return h.Name == "" && h.Cluster == 0 }

// Flag selects open mode.
type Flag uint8

const (
	OpenRead  Flag = 1 << iota
	OpenWrite      // read-write
	OpenAlways     // create when missing
)

var (
	ErrNotDir       = errors.New("volume: not a directory")
	ErrReadOnly     = errors.New("volume: read-only")
	ErrDisconnected = errors.New("volume: disconnected")
)
