// internal/hxc/layout.go
package hxc

// HXCSDFE.CFG layout constants.
// These values define the on-disk format shared with the HxC selector
// software and MUST NOT be configurable. All integers are little-endian.

// FileName is the selector configuration file at the volume root.
const FileName = "HXCSDFE.CFG"

// AutobootName is the image shown as slot 0 when present.
const AutobootName = "AUTOBOOT.HFE"

// ---- HEADER ----

// HeaderSize is the size of the fixed header record at offset 0.
const HeaderSize = 60

// SignaturePrefix precedes the single version digit at Signature[9].
const SignaturePrefix = "HXCFECFGV"

const (
	offSignature          = 0
	offStepSound          = 16
	offIhmSound           = 17
	offBackLightTmr       = 18
	offStandbyTmr         = 19
	offDisableDriveSelect = 20
	offBuzzerDutyCycle    = 21
	offNumberOfSlot       = 22
	offSlotIndex          = 23
	offUpdateCnt          = 24
	offLoadLastFloppy     = 26
	offBuzzerStepDuration = 27
	offLcdScrollSpeed     = 28
	offStartupMode        = 29
	offEnableDriveB       = 30
	offIndexMode          = 31
	offDriveBAsMotorOn    = 32
	offCfgFromCfgDrive    = 33
	offPad                = 34
	offSlotsMapPosition   = 36
	offMaxSlotNumber      = 40
	offSlotsPosition      = 44
	offDrivesPerSlot      = 48
	offCurSlotNumber      = 52
	offIhmMode            = 56
)

// ---- STARTUP MODE BITS ----

const (
	StartupSlot0   uint8 = 0x04
	StartupEjected uint8 = 0x10
)

// ---- SLOT RECORDS ----

// SectorSize scales the v2 position fields.
const SectorSize = 512

// V1 slot table: fixed base, fixed stride.
const (
	V1TableBase  = 1024
	V1SlotStride = 128
	V1RecordSize = 38
	v1NameLen    = 12
	v1LongLen    = 17
)

// V2 slot table: origin and stride from the header.
const (
	V2EntrySize  = 64
	V2RecordSize = 64
	v2TypeLen    = 3
	v2NameLen    = 52
)

// MapSize is the number of bytes of the v2 slot map that are consulted.
const MapSize = 125
