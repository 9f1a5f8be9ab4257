package protocol

// Command opcodes understood by the ROM bootloader.
const (
	// CmdGetBootInfo queries boot ROM version, chip id and flash info
	CmdGetBootInfo = 0x10

	// CmdEraseFlash erases the flash address range [start, end]
	CmdEraseFlash = 0x30

	// CmdWriteFlash programs up to one chunk of data at a flash offset
	CmdWriteFlash = 0x31

	// CmdReadFlashID reads the 3-byte JEDEC manufacturer/device id
	CmdReadFlashID = 0x36

	// CmdFlashSetParam configures the flash controller. The same opcode
	// carries both the pin selection word and the full parameter struct.
	CmdFlashSetParam = 0x3B
)

// HeaderSize is the fixed size of a request packet header:
// CMD(1) + CHECKSUM(1) + LEN(2).
const HeaderSize = 4

// MaxPayloadSize is the largest payload expressible in the 16-bit length
// field. Building a packet with a larger payload is a programmer error.
const MaxPayloadSize = 0xFFFF

// Response payload sizes.
const (
	// BootInfoSize is the payload size of a GetBootInfo response
	BootInfoSize = 24

	// FlashIDResponseSize is the payload size of a ReadFlashID response:
	// the 3-byte JEDEC id plus one status/capacity byte
	FlashIDResponseSize = 4

	// FlashConfigSize is the size of a vendor SPI flash parameter struct
	FlashConfigSize = 84
)

// flashPinBase is OR-ed with the pin number to form the SetFlashPin
// parameter word.
const flashPinBase = 0x00014100
