package bootimage

import (
	"encoding/hex"
	"fmt"
)

// MagicError indicates the file does not start with the boot header magic.
type MagicError struct {
	// WrongMagic is the literal 4 bytes found, as a little-endian word
	WrongMagic uint32
}

func (e *MagicError) Error() string {
	return fmt.Sprintf("incorrect boot header magic 0x%08x", e.WrongMagic)
}

// HeadLengthError indicates the file is too short to hold a boot header.
type HeadLengthError struct {
	// WrongLength is the actual file length in bytes
	WrongLength int64
}

func (e *HeadLengthError) Error() string {
	return fmt.Sprintf("file is too short to include an image header, should include %d bytes but only has %d",
		HeadLength, e.WrongLength)
}

// FlashConfigMagicError indicates a wrong flash config block magic.
type FlashConfigMagicError struct {
	WrongMagic uint32
}

func (e *FlashConfigMagicError) Error() string {
	return fmt.Sprintf("incorrect flash config magic 0x%08x", e.WrongMagic)
}

// ClockConfigMagicError indicates a wrong clock config block magic.
type ClockConfigMagicError struct {
	WrongMagic uint32
}

func (e *ClockConfigMagicError) Error() string {
	return fmt.Sprintf("incorrect clock config magic 0x%08x", e.WrongMagic)
}

// ImageOffsetOverflowError indicates the payload region named by the header
// extends past the end of the file.
type ImageOffsetOverflowError struct {
	FileLength  int64
	ImageOffset uint32
	ImageLength uint32
}

func (e *ImageOffsetOverflowError) Error() string {
	return fmt.Sprintf("image offset overflow: offset %d and length %d expected, but file length is %d",
		e.ImageOffset, e.ImageLength, e.FileLength)
}

// Sha256ChecksumError indicates the stored payload digest neither matches
// the payload nor is a known placeholder pattern.
type Sha256ChecksumError struct {
	// WrongChecksum is the digest found in the header
	WrongChecksum []byte
}

func (e *Sha256ChecksumError) Error() string {
	return fmt.Sprintf("wrong sha256 verification: %s", hex.EncodeToString(e.WrongChecksum))
}
