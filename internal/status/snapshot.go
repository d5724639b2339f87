// internal/status/snapshot.go
package status

import "github.com/tamzrod/ffslot/internal/display"

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health        uint16
	LastErrorCode uint16
	Current       uint16
	Max           uint16
	Depth         uint16
	Flags         uint16
	Size          uint32
	Type          string
	Name          string
}

// FromView maps a front-panel view onto the block.
func FromView(v display.View) Snapshot {
	s := Snapshot{
		Health:        healthCode(v.Health),
		LastErrorCode: v.Code,
		Current:       v.Nr,
		Max:           v.Max,
		Depth:         uint16(v.Depth),
		Type:          v.Slot.Type,
		Name:          v.Slot.Name,
	}
	if v.Slot.ReadOnly() {
		s.Flags |= FlagReadOnly
	}
	if v.Slot.IsDir() {
		s.Flags |= FlagDir
	}
	if v.Slot.Hidden() {
		s.Flags |= FlagHidden
	}
	switch {
	case v.Slot.Size < 0:
	case v.Slot.Size > 0xFFFFFFFF:
		s.Size = 0xFFFFFFFF
	default:
		s.Size = uint32(v.Slot.Size)
	}
	return s
}

func healthCode(h display.Health) uint16 {
	switch h {
	case display.HealthMounted:
		return HealthOK
	case display.HealthError:
		return HealthError
	case display.HealthEjected:
		return HealthEjected
	case display.HealthBrowsing:
		return HealthBrowsing
	default:
		return HealthUnknown
	}
}
