package protocol

import "encoding/binary"

// BootInfo is the decoded GetBootInfo response.
type BootInfo struct {
	// BootROMVersion is the ROM bootloader version (4 bytes)
	BootROMVersion [4]byte

	// FlashInfoFromBoot is the raw flash info word reported by boot ROM
	FlashInfoFromBoot uint32

	// ChipID is the unique chip identifier (6 bytes, wire order)
	ChipID [6]byte
}

// FlashPin extracts the SPI flash pin selection from the boot ROM flash
// info word.
func (b *BootInfo) FlashPin() uint32 {
	return (b.FlashInfoFromBoot >> 14) & 0x1F
}

// BuildGetBootInfoCmd constructs a GetBootInfo request packet.
//
// Packet structure:
//
//	[0x10][CHECKSUM][0x00][0x00]
func BuildGetBootInfoCmd() []byte {
	return AppendPacket(nil, CmdGetBootInfo, nil)
}

// ParseBootInfoResponse decodes a GetBootInfo response payload.
//
// Payload format (24 bytes):
//
//	[ROM_VERSION(4)][RESERVED(4)][FLASH_INFO(4, LE)][CHIP_ID(6)][RESERVED(6)]
func ParseBootInfoResponse(payload []byte) (*BootInfo, error) {
	if len(payload) != BootInfoSize {
		return nil, &ResponseLengthError{
			Command:        "get boot info",
			WrongLength:    len(payload),
			ExpectedLength: BootInfoSize,
		}
	}

	info := &BootInfo{
		FlashInfoFromBoot: binary.LittleEndian.Uint32(payload[8:12]),
	}
	copy(info.BootROMVersion[:], payload[0:4])
	copy(info.ChipID[:], payload[12:18])

	return info, nil
}

// BuildSetFlashPinCmd constructs a flash pin selection packet. The payload
// is the parameter word (0x00014100 | pin) in little-endian order.
//
// Packet structure:
//
//	[0x3B][CHECKSUM][0x04][0x00][PIN_WORD(4, LE)]
func BuildSetFlashPinCmd(pin uint32) []byte {
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], flashPinBase|pin)
	return AppendPacket(nil, CmdFlashSetParam, word[:])
}

// BuildReadFlashIDCmd constructs a ReadFlashID request packet. The request
// carries no payload; the response is exactly FlashIDResponseSize bytes.
func BuildReadFlashIDCmd() []byte {
	return AppendPacket(nil, CmdReadFlashID, nil)
}

// ParseFlashIDResponse decodes a ReadFlashID response payload into the
// 3-byte JEDEC id. A payload of any length other than FlashIDResponseSize
// is a framing violation.
func ParseFlashIDResponse(payload []byte) (FlashID, error) {
	if len(payload) != FlashIDResponseSize {
		return FlashID{}, &ResponseLengthError{
			Command:        "read flash id",
			WrongLength:    len(payload),
			ExpectedLength: FlashIDResponseSize,
		}
	}

	var id FlashID
	copy(id[:], payload[:3])
	return id, nil
}

// BuildSetFlashConfigCmd constructs a flash configuration packet carrying
// the vendor SPI flash parameter struct. On the wire the struct is preceded
// by the same parameter word SetFlashPin uses, with the pin the device
// reported.
//
// Packet structure:
//
//	[0x3B][CHECKSUM][LEN_L][LEN_H][PIN_WORD(4, LE)][CONFIG(84)]
func BuildSetFlashConfigCmd(pin uint32, config []byte) []byte {
	payload := make([]byte, 4, 4+len(config))
	binary.LittleEndian.PutUint32(payload, flashPinBase|pin)
	payload = append(payload, config...)
	return AppendPacket(nil, CmdFlashSetParam, payload)
}

// BuildEraseFlashCmd constructs an EraseFlash request packet for the
// address range [start, end].
//
// Packet structure:
//
//	[0x30][CHECKSUM][0x08][0x00][START(4, LE)][END(4, LE)]
func BuildEraseFlashCmd(start, end uint32) []byte {
	var bounds [8]byte
	binary.LittleEndian.PutUint32(bounds[0:4], start)
	binary.LittleEndian.PutUint32(bounds[4:8], end)
	return AppendPacket(nil, CmdEraseFlash, bounds[:])
}

// BuildWriteFlashCmd constructs a WriteFlash request packet programming
// data at the given flash offset. Callers chunk the image; one packet
// carries at most one chunk.
//
// Packet structure:
//
//	[0x31][CHECKSUM][LEN_L][LEN_H][OFFSET(4, LE)][DATA...]
func BuildWriteFlashCmd(offset uint32, data []byte) []byte {
	payload := make([]byte, 4, 4+len(data))
	binary.LittleEndian.PutUint32(payload, offset)
	payload = append(payload, data...)
	return AppendPacket(nil, CmdWriteFlash, payload)
}
