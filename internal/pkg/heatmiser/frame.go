package heatmiser

import "encoding/binary"

// Command frame: opcode(1) | length u16 LE | pin u16 LE | data | crc u16 LE.
// Reply frame:   opcode(1) | length u16 LE | data | crc u16 LE.
// The length field counts the whole frame, itself included.
const (
	opReadDCB  = 0x93
	opWriteDCB = 0xA3
	opReply    = 0x94

	cmdHeaderLen   = 5 // opcode + length + pin
	replyHeaderLen = 3 // opcode + length
	crcLen         = 2

	// A read reply's data starts with the requested offset and the number
	// of DCB bytes actually returned.
	readReplyPrefixLen = 4

	// Replies never legitimately exceed the largest DCB plus framing.
	maxFrameLen = 4096
)

// WriteItem is one (offset, bytes) pair of a write command. Items are built
// transiently by the encoder and consumed by buildWriteCommand.
type WriteItem struct {
	Offset uint16
	Data   []byte
}

func appendCRC(frame []byte) []byte {
	return binary.LittleEndian.AppendUint16(frame, checksum(frame))
}

// buildReadCommand frames a read of count DCB bytes starting at offset.
// Reading offset 0 with count 0xFFFF returns the whole block.
func buildReadCommand(pin, offset, count uint16) []byte {
	frame := make([]byte, 0, cmdHeaderLen+4+crcLen)
	frame = append(frame, opReadDCB)
	frame = binary.LittleEndian.AppendUint16(frame, cmdHeaderLen+4+crcLen)
	frame = binary.LittleEndian.AppendUint16(frame, pin)
	frame = binary.LittleEndian.AppendUint16(frame, offset)
	frame = binary.LittleEndian.AppendUint16(frame, count)
	return appendCRC(frame)
}

// buildWriteCommand frames a write of the given items:
// item count (1 byte) then repeated [offset u16 LE][byte count u8][bytes].
func buildWriteCommand(pin uint16, items []WriteItem) ([]byte, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Reason: "no write items"}
	}
	if len(items) > 0xFF {
		return nil, &ValidationError{Reason: "too many write items"}
	}
	size := cmdHeaderLen + 1 + crcLen
	for _, item := range items {
		if len(item.Data) == 0 || len(item.Data) > 0xFF {
			return nil, &ValidationError{Reason: "write item size out of range"}
		}
		size += 3 + len(item.Data)
	}
	frame := make([]byte, 0, size)
	frame = append(frame, opWriteDCB)
	frame = binary.LittleEndian.AppendUint16(frame, uint16(size))
	frame = binary.LittleEndian.AppendUint16(frame, pin)
	frame = append(frame, byte(len(items)))
	for _, item := range items {
		frame = binary.LittleEndian.AppendUint16(frame, item.Offset)
		frame = append(frame, byte(len(item.Data)))
		frame = append(frame, item.Data...)
	}
	return appendCRC(frame), nil
}

// parseReply validates framing and checksum and returns the reply payload.
func parseReply(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, &ProtocolError{Reason: "empty reply"}
	}
	if len(raw) < replyHeaderLen+crcLen {
		return nil, &ProtocolError{Reason: "reply too short", Expected: replyHeaderLen + crcLen, Got: len(raw), Raw: raw}
	}
	want := binary.LittleEndian.Uint16(raw[len(raw)-crcLen:])
	if got := checksum(raw[:len(raw)-crcLen]); got != want {
		return nil, &ProtocolError{Reason: "reply checksum mismatch", Expected: int(want), Got: int(got), Raw: raw}
	}
	if raw[0] != opReply {
		return nil, &ProtocolError{Reason: "unexpected reply opcode", Expected: opReply, Got: int(raw[0]), Raw: raw}
	}
	if declared := int(binary.LittleEndian.Uint16(raw[1:3])); declared != len(raw) {
		return nil, &ProtocolError{Reason: "reply length mismatch", Expected: declared, Got: len(raw), Raw: raw}
	}
	return raw[replyHeaderLen : len(raw)-crcLen], nil
}

// parseReadReply extracts the DCB bytes from a read reply payload. A returned
// count of zero means the device rejected the access code.
func parseReadReply(raw []byte) ([]byte, error) {
	payload, err := parseReply(raw)
	if err != nil {
		return nil, err
	}
	if len(payload) < readReplyPrefixLen {
		return nil, &ProtocolError{Reason: "read reply payload too short", Expected: readReplyPrefixLen, Got: len(payload), Raw: raw}
	}
	returned := int(binary.LittleEndian.Uint16(payload[2:4]))
	if returned == 0 {
		return nil, &ProtocolError{Reason: "zero-length DCB returned", Err: ErrWrongPin}
	}
	dcb := payload[readReplyPrefixLen:]
	if returned != len(dcb) {
		return nil, &ProtocolError{Reason: "returned DCB length mismatch", Expected: returned, Got: len(dcb), Raw: raw}
	}
	return dcb, nil
}

// parseWriteReply validates a write acknowledgement.
func parseWriteReply(raw []byte) error {
	_, err := parseReply(raw)
	return err
}
