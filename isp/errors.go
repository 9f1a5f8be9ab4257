package isp

import (
	"fmt"

	"github.com/moffa90/go-blri/protocol"
)

// UnsupportedFlashError indicates the device's SPI flash chip is not in the
// parameter table. Provisioning aborts before erasing anything.
type UnsupportedFlashError struct {
	ID protocol.FlashID
}

func (e *UnsupportedFlashError) Error() string {
	return fmt.Sprintf("flash id %s not supported", e.ID)
}

// ImageTooLargeError indicates the image exceeds what the write protocol
// can address. Nothing is written to the transport.
type ImageTooLargeError struct {
	Size int
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image too large: %d bytes, maximum is %d", e.Size, MaxImageSize)
}

// NotReadyError indicates a command was issued before the handshake
// completed.
type NotReadyError struct {
	Command string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s: session not ready, handshake has not completed", e.Command)
}
