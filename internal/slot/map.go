// internal/slot/map.go
package slot

// MapSlots is the number of indices a Map can describe.
const MapSlots = 1000

// MapBytes is the on-disk size of a Map.
const MapBytes = MapSlots / 8

// Map is a validity bitmap over indices 0..999.
// Bit order is most-significant first within each byte, matching the
// HxC v2 on-disk slot map so that region can be loaded verbatim.
type Map [MapBytes]byte

func (m *Map) Set(i int) {
	if i < 0 || i >= MapSlots {
		return
	}
	m[i/8] |= 0x80 >> (i & 7)
}

func (m *Map) Clear(i int) {
	if i < 0 || i >= MapSlots {
		return
	}
	m[i/8] &^= 0x80 >> (i & 7)
}

func (m *Map) Test(i int) bool {
	if i < 0 || i >= MapSlots {
		return false
	}
	return m[i/8]&(0x80>>(i&7)) != 0
}

// Fill marks every index valid.
func (m *Map) Fill() {
	for i := range m {
		m[i] = 0xff
	}
}

// Count returns the number of set bits.
func (m *Map) Count() int {
	n := 0
	for i := 0; i < MapSlots; i++ {
		if m.Test(i) {
			n++
		}
	}
	return n
}

// Indices lists set bits in ascending order.
func (m *Map) Indices() []int {
	var out []int
	for i := 0; i < MapSlots; i++ {
		if m.Test(i) {
			out = append(out, i)
		}
	}
	return out
}
