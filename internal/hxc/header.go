// internal/hxc/header.go
package hxc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Header is the decoded fixed header of HXCSDFE.CFG.
// Every byte of the record maps to a field so Encode reproduces the
// original bytes exactly.
type Header struct {
	Signature          [16]byte
	StepSound          uint8
	IhmSound           uint8
	BackLightTmr       uint8
	StandbyTmr         uint8
	DisableDriveSelect uint8
	BuzzerDutyCycle    uint8
	NumberOfSlot       uint8
	SlotIndex          uint8
	UpdateCnt          uint16
	LoadLastFloppy     uint8
	BuzzerStepDuration uint8
	LcdScrollSpeed     uint8
	StartupMode        uint8
	EnableDriveB       uint8
	IndexMode          uint8
	DriveBAsMotorOn    uint8
	CfgFromCfgDrive    uint8
	Pad                [2]byte
	SlotsMapPosition   uint32
	MaxSlotNumber      uint32
	SlotsPosition      uint32
	DrivesPerSlot      uint32
	CurSlotNumber      uint32
	IhmMode            uint32
}

var ErrShortHeader = errors.New("hxc: short header")

// DecodeHeader parses the first HeaderSize bytes of b.
func DecodeHeader(b []byte) (Header, error) {
	var h Header
	if len(b) < HeaderSize {
		return h, ErrShortHeader
	}
	le := binary.LittleEndian

	copy(h.Signature[:], b[offSignature:offSignature+16])
	h.StepSound = b[offStepSound]
	h.IhmSound = b[offIhmSound]
	h.BackLightTmr = b[offBackLightTmr]
	h.StandbyTmr = b[offStandbyTmr]
	h.DisableDriveSelect = b[offDisableDriveSelect]
	h.BuzzerDutyCycle = b[offBuzzerDutyCycle]
	h.NumberOfSlot = b[offNumberOfSlot]
	h.SlotIndex = b[offSlotIndex]
	h.UpdateCnt = le.Uint16(b[offUpdateCnt:])
	h.LoadLastFloppy = b[offLoadLastFloppy]
	h.BuzzerStepDuration = b[offBuzzerStepDuration]
	h.LcdScrollSpeed = b[offLcdScrollSpeed]
	h.StartupMode = b[offStartupMode]
	h.EnableDriveB = b[offEnableDriveB]
	h.IndexMode = b[offIndexMode]
	h.DriveBAsMotorOn = b[offDriveBAsMotorOn]
	h.CfgFromCfgDrive = b[offCfgFromCfgDrive]
	copy(h.Pad[:], b[offPad:offPad+2])
	h.SlotsMapPosition = le.Uint32(b[offSlotsMapPosition:])
	h.MaxSlotNumber = le.Uint32(b[offMaxSlotNumber:])
	h.SlotsPosition = le.Uint32(b[offSlotsPosition:])
	h.DrivesPerSlot = le.Uint32(b[offDrivesPerSlot:])
	h.CurSlotNumber = le.Uint32(b[offCurSlotNumber:])
	h.IhmMode = le.Uint32(b[offIhmMode:])

	return h, nil
}

// Encode returns the HeaderSize-byte record.
func (h Header) Encode() []byte {
	b := make([]byte, HeaderSize)
	le := binary.LittleEndian

	copy(b[offSignature:], h.Signature[:])
	b[offStepSound] = h.StepSound
	b[offIhmSound] = h.IhmSound
	b[offBackLightTmr] = h.BackLightTmr
	b[offStandbyTmr] = h.StandbyTmr
	b[offDisableDriveSelect] = h.DisableDriveSelect
	b[offBuzzerDutyCycle] = h.BuzzerDutyCycle
	b[offNumberOfSlot] = h.NumberOfSlot
	b[offSlotIndex] = h.SlotIndex
	le.PutUint16(b[offUpdateCnt:], h.UpdateCnt)
	b[offLoadLastFloppy] = h.LoadLastFloppy
	b[offBuzzerStepDuration] = h.BuzzerStepDuration
	b[offLcdScrollSpeed] = h.LcdScrollSpeed
	b[offStartupMode] = h.StartupMode
	b[offEnableDriveB] = h.EnableDriveB
	b[offIndexMode] = h.IndexMode
	b[offDriveBAsMotorOn] = h.DriveBAsMotorOn
	b[offCfgFromCfgDrive] = h.CfgFromCfgDrive
	copy(b[offPad:], h.Pad[:])
	le.PutUint32(b[offSlotsMapPosition:], h.SlotsMapPosition)
	le.PutUint32(b[offMaxSlotNumber:], h.MaxSlotNumber)
	le.PutUint32(b[offSlotsPosition:], h.SlotsPosition)
	le.PutUint32(b[offDrivesPerSlot:], h.DrivesPerSlot)
	le.PutUint32(b[offCurSlotNumber:], h.CurSlotNumber)
	le.PutUint32(b[offIhmMode:], h.IhmMode)

	return b
}

// NewHeader returns a header with a "HXCFECFGVn.0" signature.
func NewHeader(version int) Header {
	var h Header
	copy(h.Signature[:], fmt.Sprintf("%s%d.0", SignaturePrefix, version))
	return h
}

// Version returns the format digit at Signature[9], or 0 when the
// signature prefix does not match.
func (h Header) Version() int {
	if string(h.Signature[:len(SignaturePrefix)]) != SignaturePrefix {
		return 0
	}
	return int(h.Signature[len(SignaturePrefix)]) - '0'
}

// SignatureString renders the signature for diagnostics.
func (h Header) SignatureString() string {
	n := 0
	for n < 15 && h.Signature[n] != 0 {
		n++
	}
	return string(h.Signature[:n])
}

// Indexed reports whether the selector runs in index mode.
func (h Header) Indexed() bool { return h.IndexMode != 0 }

// CurrentSlot returns the persisted slot index for the header version.
func (h Header) CurrentSlot() uint16 {
	if h.Version() == 1 {
		return uint16(h.SlotIndex)
	}
	return uint16(h.CurSlotNumber)
}

// SetCurrentSlot patches the version-specific slot index field.
func (h *Header) SetCurrentSlot(nr uint16) {
	if h.Version() == 1 {
		h.SlotIndex = uint8(nr)
		return
	}
	h.CurSlotNumber = uint32(nr)
}

// ResetSlot zeroes both slot index fields.
func (h *Header) ResetSlot() {
	h.SlotIndex = 0
	h.CurSlotNumber = 0
}

// MaxSlot returns the highest slot number the table describes, or -1.
func (h Header) MaxSlot() int {
	if h.Version() == 1 {
		return int(h.NumberOfSlot) - 1
	}
	return int(h.MaxSlotNumber) - 1
}

// MapOffset is the file offset of the v2 slot map.
func (h Header) MapOffset() int64 {
	return int64(h.SlotsMapPosition) * SectorSize
}

// RecordOffset is the file offset of slot nr's table row.
func (h Header) RecordOffset(nr uint16) int64 {
	if h.Version() == 1 {
		return V1TableBase + int64(nr)*V1SlotStride
	}
	return int64(h.SlotsPosition)*SectorSize + int64(nr)*V2EntrySize*int64(h.DrivesPerSlot)
}

// RecordSize is the row size for the header version.
func (h Header) RecordSize() int {
	if h.Version() == 1 {
		return V1RecordSize
	}
	return V2RecordSize
}
