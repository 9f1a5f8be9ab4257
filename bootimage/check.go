package bootimage

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
)

// RepairKind names the header field a repair operation targets.
type RepairKind int

const (
	// RepairImageHash refills the SHA-256 digest of the image payload
	RepairImageHash RepairKind = iota

	// RepairFlashConfigCRC refills the flash config block CRC32
	RepairFlashConfigCRC

	// RepairClockConfigCRC refills the clock config block CRC32
	RepairClockConfigCRC

	// RepairHeaderCRC refills the whole-header CRC32
	RepairHeaderCRC
)

func (k RepairKind) String() string {
	switch k {
	case RepairImageHash:
		return "image hash"
	case RepairFlashConfigCRC:
		return "flash config crc32"
	case RepairClockConfigCRC:
		return "clock config crc32"
	case RepairHeaderCRC:
		return "header crc32"
	default:
		return fmt.Sprintf("repair kind %d", int(k))
	}
}

// RepairOperation is one corrective write discovered by Check: the exact
// replacement bytes for one checksum or digest field.
type RepairOperation struct {
	// Kind names the field being repaired
	Kind RepairKind

	// Offset is the absolute byte offset of the field in the file
	Offset int64

	// Data is the full corrected field value
	Data []byte
}

// Placeholder digests left by image build tools: the sentinel word in the
// first digest word, or in all eight.
var (
	placeholderHashPrefix = placeholderHash(1)
	placeholderHashFull   = placeholderHash(8)
)

func placeholderHash(words int) []byte {
	h := make([]byte, hashSize)
	for i := 0; i < words; i++ {
		binary.LittleEndian.PutUint32(h[4*i:], CRCSentinel)
	}
	return h
}

// Check validates a whole boot image without modifying it and returns the
// ordered list of repair operations that would make it self-consistent. An
// empty list means the image already is.
//
// Fundamental defects (bad magic, truncated header, payload region past the
// end of the file, a digest that is neither correct nor a known
// placeholder) are returned as typed errors instead.
func Check(r io.ReadSeeker) ([]RepairOperation, error) {
	fileLength, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	header := make([]byte, HeadLength)
	if fileLength < HeadLength {
		header = header[:fileLength]
	}
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	h, err := DecodeHeader(header)
	if err != nil {
		return nil, err
	}

	imageOffset := h.Basic.GroupImageOffset
	imageLength := h.Basic.ImgLenCnt
	if int64(imageOffset)+int64(imageLength) > fileLength {
		return nil, &ImageOffsetOverflowError{
			FileLength:  fileLength,
			ImageOffset: imageOffset,
			ImageLength: imageLength,
		}
	}

	if _, err := r.Seek(int64(imageOffset), io.SeekStart); err != nil {
		return nil, err
	}
	hasher := sha256.New()
	if _, err := io.CopyN(hasher, r, int64(imageLength)); err != nil {
		return nil, err
	}
	computedHash := hasher.Sum(nil)

	var ops []RepairOperation

	storedHash := h.Basic.Hash[:]
	hashRepair := !bytes.Equal(computedHash, storedHash)
	if hashRepair {
		// Only placeholder digests are fixable; anything else means
		// the file does not match its header at all.
		if !bytes.Equal(storedHash, placeholderHashPrefix) &&
			!bytes.Equal(storedHash, placeholderHashFull) {
			wrong := make([]byte, hashSize)
			copy(wrong, storedHash)
			return nil, &Sha256ChecksumError{WrongChecksum: wrong}
		}
		ops = append(ops, RepairOperation{
			Kind:   RepairImageHash,
			Offset: offsetHash,
			Data:   computedHash,
		})
	}

	// Working copy of the checksummed header region with repairs spliced
	// in, so the trailing CRC is computed over the repaired bytes.
	working := make([]byte, offsetHeaderCRC)
	copy(working, header[:offsetHeaderCRC])
	if hashRepair {
		copy(working[offsetHash:], computedHash)
	}

	if op, ok := configCRCRepair(working, RepairFlashConfigCRC,
		offsetFlashParams, flashParamsSize, offsetFlashCRC, h.Flash.CRC32); ok {
		ops = append(ops, op)
	}
	if op, ok := configCRCRepair(working, RepairClockConfigCRC,
		offsetClockParams, clockParamsSize, offsetClockCRC, h.Clock.CRC32); ok {
		ops = append(ops, op)
	}

	computedHeaderCRC := checksum(working)
	if h.CRC32 != computedHeaderCRC || len(ops) > 0 {
		crcBytes := make([]byte, 4)
		binary.LittleEndian.PutUint32(crcBytes, computedHeaderCRC)
		ops = append(ops, RepairOperation{
			Kind:   RepairHeaderCRC,
			Offset: offsetHeaderCRC,
			Data:   crcBytes,
		})
	}

	return ops, nil
}

// configCRCRepair checks one embedded parameter-block CRC32 and, when it is
// stale, splices the corrected value into working and returns the repair.
// The sentinel value is left alone: it marks a block the build never
// checksummed, not a mismatch.
func configCRCRepair(working []byte, kind RepairKind, paramsOffset, paramsSize, crcOffset int, stored uint32) (RepairOperation, bool) {
	computed := checksum(working[paramsOffset : paramsOffset+paramsSize])
	if stored == computed || stored == CRCSentinel {
		return RepairOperation{}, false
	}
	binary.LittleEndian.PutUint32(working[crcOffset:], computed)
	crcBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(crcBytes, computed)
	return RepairOperation{
		Kind:   kind,
		Offset: int64(crcOffset),
		Data:   crcBytes,
	}, true
}
