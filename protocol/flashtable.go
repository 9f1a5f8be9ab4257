package protocol

import "fmt"

// FlashID is the 3-byte JEDEC manufacturer/device id reported by a SPI
// flash chip.
type FlashID [3]byte

func (id FlashID) String() string {
	return fmt.Sprintf("%02X%02X%02X", id[0], id[1], id[2])
}

// LookupFlashConfig returns the vendor SPI flash parameter struct for a
// JEDEC id, or ok == false when the chip is not in the table. Callers must
// treat a miss as fatal and not proceed with erase or write.
//
// The table is closed: only chips with a verified parameter struct are
// listed.
func LookupFlashConfig(id FlashID) (config []byte, ok bool) {
	cfg, ok := flashConfigs[id]
	if !ok {
		return nil, false
	}
	// Hand out a copy so callers cannot corrupt the table.
	out := make([]byte, len(cfg))
	copy(out, cfg)
	return out, true
}

// flashConfigs maps JEDEC ids to 84-byte SPI flash parameter structs.
var flashConfigs = map[FlashID][]byte{
	// Winbond W25Q128 (EF4018)
	{0xEF, 0x40, 0x18}: flashConfigEF4018,
}

var flashConfigEF4018 = []byte{
	0x04, 0x01, 0x00, 0x00, 0x66, 0x99, 0xFF, 0x03, 0x9F, 0x00, 0xB7, 0xE9, 0x04, 0xEF, 0x00, 0x01,
	0xC7, 0x20, 0x52, 0xD8, 0x06, 0x02, 0x32, 0x00, 0x0B, 0x01, 0x0B, 0x01, 0x3B, 0x01, 0xBB, 0x00,
	0x6B, 0x01, 0xEB, 0x02, 0xEB, 0x02, 0x02, 0x50, 0x00, 0x01, 0x00, 0x01, 0x01, 0x00, 0x02, 0x01,
	0x01, 0x01, 0xAB, 0x01, 0x05, 0x35, 0x00, 0x00, 0x01, 0x31, 0x00, 0x00, 0x38, 0xFF, 0xA0, 0xFF,
	0x77, 0x03, 0x02, 0x40, 0x77, 0x03, 0x02, 0xF0, 0x2C, 0x01, 0xB0, 0x04, 0xB0, 0x04, 0x05, 0x00,
	0xE8, 0x80, 0x03, 0x00,
}
