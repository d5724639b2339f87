// internal/status/constants.go
package status

// Slot Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of registers per block.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the session health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last fault code.
const SlotLastErrorCode = 1

// SlotCurrent holds the selected slot number.
const SlotCurrent = 2

// SlotMax holds the highest valid slot number.
const SlotMax = 3

// SlotDepth holds the folder nesting depth.
const SlotDepth = 4

// SlotFlags holds the attribute flags below.
const SlotFlags = 5

// SlotSizeHi and SlotSizeLo hold the image size, high word first.
const (
	SlotSizeHi = 6
	SlotSizeLo = 7
)

// ---- TYPE TOKEN ----

const SlotTypeStart = 8
const SlotTypeSlots = 3

// ---- IMAGE NAME ----

// SlotNameStart is the first register of the image name.
const SlotNameStart = 11

// SlotNameSlots is the number of registers reserved for the name.
const SlotNameSlots = 8

// SlotNameEnd is the last register of the name (inclusive).
const SlotNameEnd = SlotNameStart + SlotNameSlots - 1

// SlotReserved is left zero.
const SlotReserved = 19

// ---- LIMITS ----

// TypeMaxChars is the number of type token characters stored.
const TypeMaxChars = SlotTypeSlots * 2

// NameMaxChars is the number of name characters stored.
const NameMaxChars = SlotNameSlots * 2

// ---- HEALTH CODES ----

const (
	HealthUnknown  uint16 = 0
	HealthOK       uint16 = 1 // mounted
	HealthError    uint16 = 2
	HealthEjected  uint16 = 3
	HealthBrowsing uint16 = 4
)

// ---- FLAGS ----

const (
	FlagReadOnly uint16 = 1 << 0
	FlagDir      uint16 = 1 << 1
	FlagHidden   uint16 = 1 << 2
)
