package heatmiser

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeReadReply frames a valid 0x94 reply carrying the given DCB bytes.
func makeReadReply(t *testing.T, dcb []byte) []byte {
	t.Helper()
	frame := []byte{opReply}
	frame = binary.LittleEndian.AppendUint16(frame, uint16(replyHeaderLen+readReplyPrefixLen+len(dcb)+crcLen))
	frame = binary.LittleEndian.AppendUint16(frame, 0x0000)
	frame = binary.LittleEndian.AppendUint16(frame, uint16(len(dcb)))
	frame = append(frame, dcb...)
	return appendCRC(frame)
}

func TestBuildReadCommandLayout(t *testing.T) {
	frame := buildReadCommand(1234, 0x0000, 0xFFFF)

	require.Len(t, frame, 11)
	assert.Equal(t, byte(opReadDCB), frame[0])
	assert.Equal(t, uint16(11), binary.LittleEndian.Uint16(frame[1:3]), "length counts the whole frame")
	assert.Equal(t, uint16(1234), binary.LittleEndian.Uint16(frame[3:5]))
	assert.Equal(t, uint16(0x0000), binary.LittleEndian.Uint16(frame[5:7]))
	assert.Equal(t, uint16(0xFFFF), binary.LittleEndian.Uint16(frame[7:9]))
	assert.Equal(t, checksum(frame[:9]), binary.LittleEndian.Uint16(frame[9:11]))
}

func TestBuildWriteCommandLayout(t *testing.T) {
	frame, err := buildWriteCommand(5678, []WriteItem{
		{Offset: ofsEnabled, Data: []byte{1}},
		{Offset: ofsHoldMinutes, Data: []byte{0x3C, 0x00}},
	})
	require.NoError(t, err)

	assert.Equal(t, byte(opWriteDCB), frame[0])
	assert.Equal(t, uint16(len(frame)), binary.LittleEndian.Uint16(frame[1:3]))
	assert.Equal(t, uint16(5678), binary.LittleEndian.Uint16(frame[3:5]))
	assert.Equal(t, byte(2), frame[5], "item count")
	assert.Equal(t, uint16(ofsEnabled), binary.LittleEndian.Uint16(frame[6:8]))
	assert.Equal(t, byte(1), frame[8])
	assert.Equal(t, byte(1), frame[9])
	assert.Equal(t, uint16(ofsHoldMinutes), binary.LittleEndian.Uint16(frame[10:12]))
	assert.Equal(t, byte(2), frame[12])
	assert.Equal(t, []byte{0x3C, 0x00}, frame[13:15])
}

func TestBuildWriteCommandRejectsEmpty(t *testing.T) {
	_, err := buildWriteCommand(0, nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseReadReplyRoundTrip(t *testing.T) {
	dcb := []byte{0x01, 0x02, 0x03, 0x04}
	got, err := parseReadReply(makeReadReply(t, dcb))
	require.NoError(t, err)
	assert.Equal(t, dcb, got)
}

func TestParseReplyRejectsEmpty(t *testing.T) {
	_, err := parseReply(nil)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "empty reply", perr.Reason)
}

func TestParseReplyRejectsCorruptChecksum(t *testing.T) {
	frame := makeReadReply(t, []byte{0x01, 0x02})
	frame[len(frame)-1] ^= 0xFF

	_, err := parseReadReply(frame)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "reply checksum mismatch", perr.Reason)
}

func TestParseReplyRejectsLengthMismatch(t *testing.T) {
	frame := makeReadReply(t, []byte{0x01, 0x02})
	// Grow the declared length and re-seal the checksum so only the length
	// disagrees.
	binary.LittleEndian.PutUint16(frame[1:3], uint16(len(frame)+4))
	frame = appendCRC(frame[:len(frame)-crcLen])

	_, err := parseReadReply(frame)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "reply length mismatch", perr.Reason)
}

func TestParseReplyRejectsUnexpectedOpcode(t *testing.T) {
	frame := makeReadReply(t, []byte{0x01, 0x02})
	frame[0] = 0x42
	frame = appendCRC(frame[:len(frame)-crcLen])

	_, err := parseReadReply(frame)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "unexpected reply opcode", perr.Reason)
}

func TestParseReadReplyWrongPin(t *testing.T) {
	// Zero returned-length inside the payload signals a rejected access
	// code, distinct from any framing failure.
	frame := []byte{opReply}
	frame = binary.LittleEndian.AppendUint16(frame, uint16(replyHeaderLen+readReplyPrefixLen+crcLen))
	frame = binary.LittleEndian.AppendUint16(frame, 0x0000)
	frame = binary.LittleEndian.AppendUint16(frame, 0x0000)
	frame = appendCRC(frame)

	_, err := parseReadReply(frame)
	assert.True(t, errors.Is(err, ErrWrongPin))
	var perr *ProtocolError
	assert.ErrorAs(t, err, &perr)
}

func TestParseReadReplyReturnedCountMismatch(t *testing.T) {
	frame := makeReadReply(t, []byte{0x01, 0x02, 0x03})
	// Claim four DCB bytes were returned when only three follow.
	binary.LittleEndian.PutUint16(frame[5:7], 4)
	frame = appendCRC(frame[:len(frame)-crcLen])

	_, err := parseReadReply(frame)
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "returned DCB length mismatch", perr.Reason)
}
