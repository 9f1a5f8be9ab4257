package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Status classifies the 2-byte ASCII outcome code at the start of every
// device response.
type Status int

const (
	// StatusOK means the command was accepted and executed ("OK")
	StatusOK Status = iota

	// StatusPending means the device is busy and the operation has not
	// completed ("PD")
	StatusPending

	// StatusFailed means the device rejected the operation ("FL")
	StatusFailed

	// StatusUnknown is any other 2-byte code; the raw bytes are kept for
	// diagnostics
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPending:
		return "pending"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DecodeStatus maps a raw 2-byte status code to a Status. It is total: any
// input other than "OK", "PD" or "FL" yields StatusUnknown.
func DecodeStatus(raw [2]byte) Status {
	switch {
	case raw[0] == 'O' && raw[1] == 'K':
		return StatusOK
	case raw[0] == 'P' && raw[1] == 'D':
		return StatusPending
	case raw[0] == 'F' && raw[1] == 'L':
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// ReadResponse consumes exactly one device response from r.
//
// It reads the 2-byte status code; on "OK" it additionally reads a 16-bit
// little-endian length and that many payload bytes if payloadExpected is
// set, and returns the payload (nil for commands without one). Any non-OK
// status is returned as a *StatusError without reading further bytes; the
// caller owns retry policy.
func ReadResponse(r io.Reader, payloadExpected bool) ([]byte, error) {
	var raw [2]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}

	if status := DecodeStatus(raw); status != StatusOK {
		return nil, &StatusError{Status: status, Raw: raw}
	}

	if !payloadExpected {
		return nil, nil
	}

	var lenBytes [2]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return nil, fmt.Errorf("read response length: %w", err)
	}

	payload := make([]byte, binary.LittleEndian.Uint16(lenBytes[:]))
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read response payload: %w", err)
	}

	return payload, nil
}
