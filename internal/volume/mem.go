// internal/volume/mem.go
package volume

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// Mem is an in-memory Volume. Entries enumerate in insertion order, the
// way a FAT directory lists entries in creation order.
type Mem struct {
	root        *memNode
	cwd         Dir
	nextCluster uint32

	readOnly     bool
	disconnected bool
}

type memNode struct {
	name     string
	attr     Attr
	cluster  uint32
	data     []byte
	children []*memNode
}

// NewMem returns an empty volume.
func NewMem() *Mem {
	return &Mem{
		root:        &memNode{attr: AttrDir},
		nextCluster: 2,
	}
}

// ---- fixture helpers ----

// AddDir creates a directory path (slash separated), with parents.
func (m *Mem) AddDir(path string) {
	m.mkdirs(splitPath(path))
}

// AddFile creates or replaces a file, creating parent directories.
func (m *Mem) AddFile(path string, data []byte, attr Attr) {
	parts := splitPath(path)
	dir := m.mkdirs(parts[:len(parts)-1])
	name := parts[len(parts)-1]
	if n := dir.child(name); n != nil {
		n.data = append([]byte(nil), data...)
		n.attr = attr &^ AttrDir
		return
	}
	dir.children = append(dir.children, &memNode{
		name:    name,
		attr:    attr &^ AttrDir,
		cluster: m.alloc(),
		data:    append([]byte(nil), data...),
	})
}

// Remove deletes a file or directory tree.
func (m *Mem) Remove(path string) {
	parts := splitPath(path)
	dir := m.walk(parts[:len(parts)-1])
	if dir == nil {
		return
	}
	for i, c := range dir.children {
		if strings.EqualFold(c.name, parts[len(parts)-1]) {
			dir.children = append(dir.children[:i], dir.children[i+1:]...)
			return
		}
	}
}

// ReadFile returns a copy of the file contents, or nil when missing.
func (m *Mem) ReadFile(path string) []byte {
	parts := splitPath(path)
	dir := m.walk(parts[:len(parts)-1])
	if dir == nil {
		return nil
	}
	n := dir.child(parts[len(parts)-1])
	if n == nil || n.attr.Has(AttrDir) {
		return nil
	}
	return append([]byte(nil), n.data...)
}

// Exists reports whether path names an entry.
func (m *Mem) Exists(path string) bool {
	parts := splitPath(path)
	dir := m.walk(parts[:len(parts)-1])
	return dir != nil && dir.child(parts[len(parts)-1]) != nil
}

func (m *Mem) SetReadOnly(ro bool) { m.readOnly = ro }
func (m *Mem) SetConnected(c bool) { m.disconnected = !c }

// ---- Volume ----

func (m *Mem) Cwd() Dir        { return m.cwd }
func (m *Mem) SetCwd(d Dir)    { m.cwd = d }
func (m *Mem) ReadOnly() bool  { return m.readOnly }
func (m *Mem) Connected() bool { return !m.disconnected }

func (m *Mem) Chdir(name string) error {
	if m.disconnected {
		return ErrDisconnected
	}
	if name == ".." {
		m.cwd = m.cwd.Parent()
		return nil
	}
	dir := m.walk(splitPath(string(m.cwd)))
	if dir == nil {
		return fmt.Errorf("volume: chdir %s: %w", name, fs.ErrNotExist)
	}
	n := dir.child(name)
	if n == nil {
		return fmt.Errorf("volume: chdir %s: %w", name, fs.ErrNotExist)
	}
	if !n.attr.Has(AttrDir) {
		return fmt.Errorf("volume: chdir %s: %w", name, ErrNotDir)
	}
	m.cwd = m.cwd.Join(n.name)
	return nil
}

func (m *Mem) ReadDir() ([]Entry, error) {
	if m.disconnected {
		return nil, ErrDisconnected
	}
	dir := m.walk(splitPath(string(m.cwd)))
	if dir == nil {
		return nil, fmt.Errorf("volume: readdir %q: %w", m.cwd, fs.ErrNotExist)
	}
	out := make([]Entry, 0, len(dir.children))
	for _, c := range dir.children {
		out = append(out, Entry{Name: c.name, Attr: c.attr, Size: int64(len(c.data))})
	}
	return out, nil
}

func (m *Mem) Open(name string, flag Flag) (File, error) {
	if m.disconnected {
		return nil, ErrDisconnected
	}
	dir := m.walk(splitPath(string(m.cwd)))
	if dir == nil {
		return nil, fmt.Errorf("volume: open %s: %w", name, fs.ErrNotExist)
	}
	n := dir.child(name)
	if n == nil {
		if flag&OpenAlways == 0 {
			return nil, fmt.Errorf("volume: open %s: %w", name, fs.ErrNotExist)
		}
		if m.readOnly {
			return nil, ErrReadOnly
		}
		n = &memNode{name: name, attr: AttrArchive, cluster: m.alloc()}
		dir.children = append(dir.children, n)
	}
	if n.attr.Has(AttrDir) {
		return nil, fmt.Errorf("volume: open %s: is a directory", name)
	}
	return &memFile{vol: m, n: n, h: Handle{Dir: m.cwd, Name: n.name, Cluster: n.cluster}, flag: flag}, nil
}

func (m *Mem) Reopen(h Handle, flag Flag) (File, error) {
	if m.disconnected {
		return nil, ErrDisconnected
	}
	if h.Cluster == NoCluster {
		return nil, fmt.Errorf("volume: reopen %q: %w", h.Name, fs.ErrNotExist)
	}
	dir := m.walk(splitPath(string(h.Dir)))
	if dir != nil {
		for _, c := range dir.children {
			if c.cluster == h.Cluster || (h.Cluster == 0 && strings.EqualFold(c.name, h.Name)) {
				return &memFile{vol: m, n: c, h: h, flag: flag}, nil
			}
		}
	}
	return nil, fmt.Errorf("volume: reopen %q: %w", h.Name, fs.ErrNotExist)
}

// ---- internals ----

func (m *Mem) alloc() uint32 {
	c := m.nextCluster
	m.nextCluster++
	return c
}

func (m *Mem) walk(parts []string) *memNode {
	n := m.root
	for _, p := range parts {
		n = n.child(p)
		if n == nil || !n.attr.Has(AttrDir) {
			return nil
		}
	}
	return n
}

func (m *Mem) mkdirs(parts []string) *memNode {
	n := m.root
	for _, p := range parts {
		c := n.child(p)
		if c == nil {
			c = &memNode{name: p, attr: AttrDir, cluster: m.alloc()}
			n.children = append(n.children, c)
		}
		n = c
	}
	return n
}

func (n *memNode) child(name string) *memNode {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

type memFile struct {
	vol    *Mem
	n      *memNode
	h      Handle
	flag   Flag
	off    int64
	closed bool
}

var errClosed = errors.New("volume: file closed")

func (f *memFile) check(write bool) error {
	if f.closed {
		return errClosed
	}
	if f.vol.disconnected {
		return ErrDisconnected
	}
	if write {
		if f.flag&(OpenWrite|OpenAlways) == 0 {
			return fmt.Errorf("volume: %s opened read-only", f.n.name)
		}
		if f.vol.readOnly {
			return ErrReadOnly
		}
	}
	return nil
}

func (f *memFile) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.off)
	f.off += int64(n)
	return n, err
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	if err := f.check(false); err != nil {
		return 0, err
	}
	if off >= int64(len(f.n.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.n.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	n, err := f.WriteAt(p, f.off)
	f.off += int64(n)
	return n, err
}

func (f *memFile) WriteAt(p []byte, off int64) (int, error) {
	if err := f.check(true); err != nil {
		return 0, err
	}
	end := off + int64(len(p))
	if end > int64(len(f.n.data)) {
		grown := make([]byte, end)
		copy(grown, f.n.data)
		f.n.data = grown
	}
	copy(f.n.data[off:], p)
	return len(p), nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	if err := f.check(false); err != nil {
		return 0, err
	}
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += f.off
	case io.SeekEnd:
		offset += int64(len(f.n.data))
	default:
		return 0, errors.New("volume: bad whence")
	}
	if offset < 0 {
		return 0, errors.New("volume: negative seek")
	}
	f.off = offset
	return offset, nil
}

func (f *memFile) Truncate(size int64) error {
	if err := f.check(true); err != nil {
		return err
	}
	if size < int64(len(f.n.data)) {
		f.n.data = f.n.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, f.n.data)
		f.n.data = grown
	}
	return nil
}

func (f *memFile) Size() (int64, error) {
	if err := f.check(false); err != nil {
		return 0, err
	}
	return int64(len(f.n.data)), nil
}

func (f *memFile) Handle() Handle { return f.h }

func (f *memFile) Close() error {
	f.closed = true
	return nil
}
