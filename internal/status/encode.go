package status

import "math"

// Encode converts a Snapshot into a full request block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotRequestCode] = s.RequestCode

	// reboot_count MUST NOT wrap
	if s.RebootCount > math.MaxUint16 {
		regs[SlotRebootCount] = math.MaxUint16
	} else {
		regs[SlotRebootCount] = uint16(s.RebootCount)
	}

	regs[SlotLastStartupHi], regs[SlotLastStartupLo] = splitEpoch(s.LastStartup)
	regs[SlotDetectedAtHi], regs[SlotDetectedAtLo] = splitEpoch(s.DetectedAt)

	name := EncodeDeviceName(s.DeviceName)
	copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], name)

	return regs
}

// splitEpoch stores epoch seconds as an unsigned 32-bit value in two words.
// Values outside 0..MaxUint32 clamp.
func splitEpoch(ts int64) (hi, lo uint16) {
	var v uint32
	switch {
	case ts < 0:
		v = 0
	case ts > math.MaxUint32:
		v = math.MaxUint32
	default:
		v = uint32(ts)
	}
	return uint16(v >> 16), uint16(v)
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
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
