// internal/slot/model.go
package slot

// Model holds the session's current slot number and the set of legal
// indices. A nil bitmap means every index up to Max is valid.
type Model struct {
	nr     uint16
	max    uint16
	bitmap *Map
	dirty  bool
}

// Valid reports whether i may be selected.
func (m *Model) Valid(i int) bool {
	if i < 0 || i > int(m.max) {
		return false
	}
	if m.bitmap == nil {
		return true
	}
	return m.bitmap.Test(i)
}

// Commit selects i and marks the selection for persistence.
// An invalid index is rejected without any state change.
func (m *Model) Commit(i int) bool {
	if !m.Valid(i) {
		return false
	}
	m.nr = uint16(i)
	m.dirty = true
	return true
}

// Load sets the current number as read from persisted state.
// It does not validate and does not mark dirty; callers repair invalid
// numbers with NextValid after the next Rebuild.
func (m *Model) Load(nr uint16) { m.nr = nr }

// Rebuild replaces the validity universe. The bitmap is copied.
func (m *Model) Rebuild(maxNr uint16, bitmap *Map) {
	m.max = maxNr
	if bitmap == nil {
		m.bitmap = nil
		return
	}
	cp := *bitmap
	m.bitmap = &cp
}

// NextValid searches forward from the current number, wrapping at Max.
// ok is false only when no index is valid.
func (m *Model) NextValid() (i uint16, ok bool) {
	n := int(m.nr)
	for tries := 0; tries <= int(m.max)+1; tries++ {
		if m.Valid(n) {
			return uint16(n), true
		}
		if n >= int(m.max) {
			n = 0
		} else {
			n++
		}
	}
	return 0, false
}

func (m *Model) Nr() uint16      { return m.nr }
func (m *Model) Max() uint16     { return m.max }
func (m *Model) Dirty() bool     { return m.dirty }
func (m *Model) ClearDirty()     { m.dirty = false }
func (m *Model) HasBitmap() bool { return m.bitmap != nil }

// Bitmap returns a copy of the bitmap, or nil.
func (m *Model) Bitmap() *Map {
	if m.bitmap == nil {
		return nil
	}
	cp := *m.bitmap
	return &cp
}
