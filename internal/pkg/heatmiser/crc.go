package heatmiser

// The thermostat protects every frame with a 16-bit checksum computed one
// nibble at a time from a fixed 16-entry table, starting at 0xFFFF. The
// checksum covers the opcode and length bytes but not the trailing checksum
// itself.
var crcTable = [16]uint16{
	0x0000, 0x1021, 0x2042, 0x3063,
	0x4084, 0x50A5, 0x60C6, 0x70E7,
	0x8108, 0x9129, 0xA14A, 0xB16B,
	0xC18C, 0xD1AD, 0xE1CE, 0xF1EF,
}

type checksum16 uint16

func newChecksum() checksum16 { return 0xFFFF }

func (c checksum16) updateNibble(nib byte) checksum16 {
	idx := byte(c>>12) ^ (nib & 0x0F)
	return (c << 4) ^ checksum16(crcTable[idx&0x0F])
}

func (c checksum16) update(b byte) checksum16 {
	c = c.updateNibble(b >> 4)
	return c.updateNibble(b)
}

// checksum computes the frame checksum over data.
func checksum(data []byte) uint16 {
	c := newChecksum()
	for _, b := range data {
		c = c.update(b)
	}
	return uint16(c)
}
