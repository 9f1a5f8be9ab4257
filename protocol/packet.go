package protocol

import "fmt"

// PacketChecksum computes the 8-bit request checksum: the wrapping sum of
// the two little-endian length bytes followed by every payload byte.
func PacketChecksum(payload []byte) byte {
	length := uint16(len(payload))
	sum := byte(length) + byte(length>>8)
	for _, b := range payload {
		sum += b
	}
	return sum
}

// EncodeHeader builds the 4-byte request header for a command and payload:
//
//	[CMD][CHECKSUM][LEN_L][LEN_H]
//
// Panics if the payload does not fit the 16-bit length field; callers are
// expected to chunk their data first.
func EncodeHeader(command byte, payload []byte) [HeaderSize]byte {
	if len(payload) > MaxPayloadSize {
		panic(fmt.Sprintf("protocol: payload length %d exceeds %d", len(payload), MaxPayloadSize))
	}
	length := uint16(len(payload))
	return [HeaderSize]byte{
		command,
		PacketChecksum(payload),
		byte(length),
		byte(length >> 8),
	}
}

// AppendPacket appends a complete request packet (header plus payload) for
// the given command to dst and returns the extended slice.
func AppendPacket(dst []byte, command byte, payload []byte) []byte {
	header := EncodeHeader(command, payload)
	dst = append(dst, header[:]...)
	dst = append(dst, payload...)
	return dst
}
