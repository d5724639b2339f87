// internal/slot/slot.go
package slot

import (
	"fmt"
	"strings"

	"github.com/tamzrod/ffslot/internal/image"
	"github.com/tamzrod/ffslot/internal/volume"
)

// Field bounds of the selected-image record.
const (
	NameMax = 52
	TypeMax = 7
)

// Slot describes the currently selected image.
// Only backends construct it.
type Slot struct {
	Name   string
	Type   string
	Attr   volume.Attr
	Handle volume.Handle
	Size   int64
}

// FromFile builds a Slot from a located file. The display name drops the
// extension; the type token is the lower-cased extension.
func FromFile(h volume.Handle, filename string, attr volume.Attr, size int64) Slot {
	return Slot{
		Name:   Truncate(image.BaseName(filename), NameMax),
		Type:   Truncate(image.TypeToken(filename), TypeMax),
		Attr:   attr,
		Handle: h,
		Size:   size,
	}
}

// Folder builds the Slot shown for a navigable directory entry.
func Folder(name string, attr volume.Attr) Slot {
	return Slot{
		Name: Truncate("["+name+"]", NameMax),
		Attr: attr | volume.AttrDir,
	}
}

func (s Slot) IsDir() bool     { return s.Attr.Has(volume.AttrDir) }
func (s Slot) ReadOnly() bool  { return s.Attr.Has(volume.AttrReadOnly) }
func (s Slot) Hidden() bool    { return s.Attr.Has(volume.AttrHidden) }
func (s Slot) Synthetic() bool { return s.Handle.Cluster == volume.NoCluster }

func (s Slot) String() string {
	return fmt.Sprintf("name=%q type=%s attr=%02x clus=%08x size=%d",
		s.Name, s.Type, uint8(s.Attr), s.Handle.Cluster, s.Size)
}

// Truncate cuts s at the first NUL and at n bytes.
func Truncate(s string, n int) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) > n {
		s = s[:n]
	}
	return s
}
