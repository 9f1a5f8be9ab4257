// Package protocol implements the wire format of the Bouffalo serial ISP
// (In-System Programming) bootloader protocol.
//
// # Protocol Overview
//
// Every request is a 4-byte header followed by the payload:
//
//	Request:  [CMD][CHECKSUM][LEN_L][LEN_H][PAYLOAD...]
//	Response: [STATUS(2, ASCII)] then, for payload-bearing commands on "OK":
//	          [LEN_L][LEN_H][PAYLOAD...]
//
// Where:
//   - CHECKSUM = 8-bit wrapping sum of LEN_L, LEN_H and every payload byte
//   - LEN = 16-bit payload length (little-endian)
//   - STATUS = "OK", "PD" (pending) or "FL" (failed)
//
// # Command Builders
//
// Use the Build* functions to create complete request packets:
//
//	pkt := protocol.BuildGetBootInfoCmd()
//	pkt := protocol.BuildWriteFlashCmd(offset, chunk)
//	// ... etc
//
// # Response Handling
//
// ReadResponse consumes exactly one device response from a transport:
//
//	payload, err := protocol.ReadResponse(port, true)
//
// A non-OK status is returned as a *StatusError carrying the raw status
// bytes. Command-specific payloads are decoded with the Parse* functions:
//
//	info, err := protocol.ParseBootInfoResponse(payload)
//	id, err := protocol.ParseFlashIDResponse(payload)
//
// # Flash Parameter Table
//
// After ReadFlashID, the 3-byte JEDEC id selects the vendor SPI flash
// parameter struct to send with SetFlashConfig:
//
//	cfg, ok := protocol.LookupFlashConfig(id)
//	if !ok {
//	    // unsupported flash chip, abort before erasing anything
//	}
package protocol
