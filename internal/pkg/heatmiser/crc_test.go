package heatmiser

import (
	"testing"

	"github.com/sigurn/crc16"
	"github.com/stretchr/testify/assert"
)

// The nibble table is algebraically CRC-16/CCITT-FALSE; verify against an
// independent implementation across a spread of inputs.
func TestChecksumMatchesCCITTFalse(t *testing.T) {
	table := crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

	inputs := [][]byte{
		{},
		{0x00},
		{0xFF},
		{0x93, 0x0B, 0x00, 0x39, 0x30, 0x00, 0x00, 0xFF, 0xFF},
		[]byte("123456789"),
	}
	for _, in := range inputs {
		assert.Equal(t, crc16.Checksum(in, table), checksum(in))
	}
}

func TestChecksumKnownValue(t *testing.T) {
	// Standard CCITT-FALSE check value.
	assert.Equal(t, uint16(0x29B1), checksum([]byte("123456789")))
}

func TestChecksumEmptyIsInitial(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), checksum(nil))
}

func TestAppendCRCRoundTrip(t *testing.T) {
	frame := appendCRC([]byte{0x94, 0x0A, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05})
	embedded := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8
	assert.Equal(t, checksum(frame[:len(frame)-2]), embedded)
}
