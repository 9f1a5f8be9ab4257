package protocol

import "fmt"

// StatusError is a non-OK status code reported by the device.
type StatusError struct {
	// Status is the decoded outcome
	Status Status

	// Raw is the literal 2-byte code as received
	Raw [2]byte
}

func (e *StatusError) Error() string {
	switch e.Status {
	case StatusPending:
		return "device busy: operation pending"
	case StatusFailed:
		return "device rejected operation"
	default:
		return fmt.Sprintf("unknown device status %q (0x%02X 0x%02X)",
			string(e.Raw[:]), e.Raw[0], e.Raw[1])
	}
}

// ResponseLengthError is a response payload whose length violates the
// command's fixed contract (for example, ReadFlashID must return exactly
// 4 bytes).
type ResponseLengthError struct {
	// Command names the command whose response was malformed
	Command string

	// WrongLength is the payload length actually received
	WrongLength int

	// ExpectedLength is the length the command requires
	ExpectedLength int
}

func (e *ResponseLengthError) Error() string {
	return fmt.Sprintf("%s: wrong response length: got %d bytes, expected %d",
		e.Command, e.WrongLength, e.ExpectedLength)
}
