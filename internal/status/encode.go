// internal/status/encode.go
package status

// Encode converts a Snapshot into a full slot status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotCurrent] = s.Current
	regs[SlotMax] = s.Max
	regs[SlotDepth] = s.Depth
	regs[SlotFlags] = s.Flags
	regs[SlotSizeHi] = uint16(s.Size >> 16)
	regs[SlotSizeLo] = uint16(s.Size)

	copy(regs[SlotTypeStart:], EncodeASCII(s.Type, SlotTypeSlots))
	copy(regs[SlotNameStart:], EncodeASCII(s.Name, SlotNameSlots))

	return regs
}

// EncodeASCII packs up to 2*n characters into n registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeASCII(text string, n int) []uint16 {
	out := make([]uint16, n)

	b := []byte(text)
	if len(b) > 2*n {
		b = b[:2*n]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < 2*n; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
