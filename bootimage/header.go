package bootimage

import (
	"encoding/binary"
	"hash/crc32"
)

// Boot header layout constants.
const (
	// HeadLength is the fixed boot header size in bytes
	HeadLength = 0x160

	// HeadMagic is "BFNP" as a little-endian word
	HeadMagic = 0x504E4642

	// FlashMagic is "FCFG" as a little-endian word
	FlashMagic = 0x47464346

	// ClockMagic is "PCFG" as a little-endian word
	ClockMagic = 0x47464350

	// CRCSentinel marks a CRC32 or digest field as not yet computed.
	// Validators treat it as a placeholder to fill, never as a mismatch
	// against a real checksum.
	CRCSentinel = 0xDEADBEEF
)

// Field offsets within the header.
const (
	offsetFlashConfig    = 0x08
	offsetFlashParams    = 0x0C
	offsetFlashCRC       = 0x60
	offsetClockConfig    = 0x64
	offsetClockParams    = 0x68
	offsetClockCRC       = 0x7C
	offsetBasicFlag      = 0x80
	offsetImageOffset    = 0x84
	offsetAESRegionLen   = 0x88
	offsetImageLength    = 0x8C
	offsetHash           = 0x90
	offsetCPUConfig      = 0xB0
	offsetBoot2PtTable0  = 0xF8
	offsetBoot2PtTable1  = 0xFC
	offsetFlashTableAddr = 0x100
	offsetFlashTableLen  = 0x104
	offsetPatchOnRead    = 0x108
	offsetPatchOnJump    = 0x128
	offsetReserved       = 0x148
	offsetHeaderCRC      = 0x15C
)

// Sizes of the variable parameter blocks.
const (
	flashParamsSize = 84
	clockParamsSize = 20
	cpuConfigSize   = 24
	hashSize        = 32
)

// FlashConfig is the checksummed SPI flash parameter block.
type FlashConfig struct {
	Magic  uint32
	Params [flashParamsSize]byte
	CRC32  uint32
}

// ClockConfig is the checksummed PLL/clock parameter block.
type ClockConfig struct {
	Magic  uint32
	Params [clockParamsSize]byte
	CRC32  uint32
}

// BasicConfig carries the image geometry and its payload digest.
type BasicConfig struct {
	// Flag packs sign/encrypt/cache/boot2 bit fields
	Flag uint32

	// GroupImageOffset is the payload offset from the start of the file
	GroupImageOffset uint32

	// AESRegionLen is the length of the encrypted region, if any
	AESRegionLen uint32

	// ImgLenCnt is the payload length in bytes, or the segment count
	ImgLenCnt uint32

	// Hash is the SHA-256 digest of the payload
	Hash [hashSize]byte
}

// CPUConfig is the per-core boot configuration.
type CPUConfig struct {
	ConfigEnable       uint8
	HaltCPU            uint8
	CacheFlags         uint8
	Rsvd               uint8
	CacheRangeH        uint32
	CacheRangeL        uint32
	ImageAddressOffset uint32
	BootEntry          uint32
	MSPValue           uint32
}

// PatchConfig is one ROM code patch entry.
type PatchConfig struct {
	Addr  uint32
	Value uint32
}

// BootHeader is the decoded fixed-layout boot header.
type BootHeader struct {
	Magic    uint32
	Revision uint32
	Flash    FlashConfig
	Clock    ClockConfig
	Basic    BasicConfig
	CPU      [3]CPUConfig

	Boot2PtTable0 uint32
	Boot2PtTable1 uint32

	FlashConfigTableAddr uint32
	FlashConfigTableLen  uint32

	PatchOnRead [4]PatchConfig
	PatchOnJump [4]PatchConfig

	Reserved [5]uint32

	// CRC32 covers every preceding header byte, or holds CRCSentinel
	CRC32 uint32
}

// DecodeHeader parses a boot header from the start of buf. It fails with a
// typed error the first time a magic number or length constraint is
// violated and does not attempt partial recovery.
func DecodeHeader(buf []byte) (*BootHeader, error) {
	if len(buf) < 4 {
		return nil, &HeadLengthError{WrongLength: int64(len(buf))}
	}
	if magic := binary.LittleEndian.Uint32(buf[0:4]); magic != HeadMagic {
		return nil, &MagicError{WrongMagic: magic}
	}
	if len(buf) < HeadLength {
		return nil, &HeadLengthError{WrongLength: int64(len(buf))}
	}
	if magic := binary.LittleEndian.Uint32(buf[offsetFlashConfig:]); magic != FlashMagic {
		return nil, &FlashConfigMagicError{WrongMagic: magic}
	}
	if magic := binary.LittleEndian.Uint32(buf[offsetClockConfig:]); magic != ClockMagic {
		return nil, &ClockConfigMagicError{WrongMagic: magic}
	}

	h := &BootHeader{
		Magic:    binary.LittleEndian.Uint32(buf[0:4]),
		Revision: binary.LittleEndian.Uint32(buf[4:8]),
		Flash: FlashConfig{
			Magic: binary.LittleEndian.Uint32(buf[offsetFlashConfig:]),
			CRC32: binary.LittleEndian.Uint32(buf[offsetFlashCRC:]),
		},
		Clock: ClockConfig{
			Magic: binary.LittleEndian.Uint32(buf[offsetClockConfig:]),
			CRC32: binary.LittleEndian.Uint32(buf[offsetClockCRC:]),
		},
		Basic: BasicConfig{
			Flag:             binary.LittleEndian.Uint32(buf[offsetBasicFlag:]),
			GroupImageOffset: binary.LittleEndian.Uint32(buf[offsetImageOffset:]),
			AESRegionLen:     binary.LittleEndian.Uint32(buf[offsetAESRegionLen:]),
			ImgLenCnt:        binary.LittleEndian.Uint32(buf[offsetImageLength:]),
		},
		Boot2PtTable0:        binary.LittleEndian.Uint32(buf[offsetBoot2PtTable0:]),
		Boot2PtTable1:        binary.LittleEndian.Uint32(buf[offsetBoot2PtTable1:]),
		FlashConfigTableAddr: binary.LittleEndian.Uint32(buf[offsetFlashTableAddr:]),
		FlashConfigTableLen:  binary.LittleEndian.Uint32(buf[offsetFlashTableLen:]),
		CRC32:                binary.LittleEndian.Uint32(buf[offsetHeaderCRC:]),
	}
	copy(h.Flash.Params[:], buf[offsetFlashParams:offsetFlashParams+flashParamsSize])
	copy(h.Clock.Params[:], buf[offsetClockParams:offsetClockParams+clockParamsSize])
	copy(h.Basic.Hash[:], buf[offsetHash:offsetHash+hashSize])

	for i := range h.CPU {
		c := buf[offsetCPUConfig+i*cpuConfigSize:]
		h.CPU[i] = CPUConfig{
			ConfigEnable:       c[0],
			HaltCPU:            c[1],
			CacheFlags:         c[2],
			Rsvd:               c[3],
			CacheRangeH:        binary.LittleEndian.Uint32(c[4:8]),
			CacheRangeL:        binary.LittleEndian.Uint32(c[8:12]),
			ImageAddressOffset: binary.LittleEndian.Uint32(c[12:16]),
			BootEntry:          binary.LittleEndian.Uint32(c[16:20]),
			MSPValue:           binary.LittleEndian.Uint32(c[20:24]),
		}
	}
	for i := range h.PatchOnRead {
		p := buf[offsetPatchOnRead+i*8:]
		h.PatchOnRead[i] = PatchConfig{
			Addr:  binary.LittleEndian.Uint32(p[0:4]),
			Value: binary.LittleEndian.Uint32(p[4:8]),
		}
	}
	for i := range h.PatchOnJump {
		p := buf[offsetPatchOnJump+i*8:]
		h.PatchOnJump[i] = PatchConfig{
			Addr:  binary.LittleEndian.Uint32(p[0:4]),
			Value: binary.LittleEndian.Uint32(p[4:8]),
		}
	}
	for i := range h.Reserved {
		h.Reserved[i] = binary.LittleEndian.Uint32(buf[offsetReserved+i*4:])
	}

	return h, nil
}

// Encode serializes the header back to its fixed binary layout. It is the
// exact inverse of DecodeHeader: a decoded header re-encodes byte-for-byte.
func (h *BootHeader) Encode() []byte {
	buf := make([]byte, HeadLength)

	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Revision)

	binary.LittleEndian.PutUint32(buf[offsetFlashConfig:], h.Flash.Magic)
	copy(buf[offsetFlashParams:], h.Flash.Params[:])
	binary.LittleEndian.PutUint32(buf[offsetFlashCRC:], h.Flash.CRC32)

	binary.LittleEndian.PutUint32(buf[offsetClockConfig:], h.Clock.Magic)
	copy(buf[offsetClockParams:], h.Clock.Params[:])
	binary.LittleEndian.PutUint32(buf[offsetClockCRC:], h.Clock.CRC32)

	binary.LittleEndian.PutUint32(buf[offsetBasicFlag:], h.Basic.Flag)
	binary.LittleEndian.PutUint32(buf[offsetImageOffset:], h.Basic.GroupImageOffset)
	binary.LittleEndian.PutUint32(buf[offsetAESRegionLen:], h.Basic.AESRegionLen)
	binary.LittleEndian.PutUint32(buf[offsetImageLength:], h.Basic.ImgLenCnt)
	copy(buf[offsetHash:], h.Basic.Hash[:])

	for i, c := range h.CPU {
		out := buf[offsetCPUConfig+i*cpuConfigSize:]
		out[0] = c.ConfigEnable
		out[1] = c.HaltCPU
		out[2] = c.CacheFlags
		out[3] = c.Rsvd
		binary.LittleEndian.PutUint32(out[4:8], c.CacheRangeH)
		binary.LittleEndian.PutUint32(out[8:12], c.CacheRangeL)
		binary.LittleEndian.PutUint32(out[12:16], c.ImageAddressOffset)
		binary.LittleEndian.PutUint32(out[16:20], c.BootEntry)
		binary.LittleEndian.PutUint32(out[20:24], c.MSPValue)
	}

	binary.LittleEndian.PutUint32(buf[offsetBoot2PtTable0:], h.Boot2PtTable0)
	binary.LittleEndian.PutUint32(buf[offsetBoot2PtTable1:], h.Boot2PtTable1)
	binary.LittleEndian.PutUint32(buf[offsetFlashTableAddr:], h.FlashConfigTableAddr)
	binary.LittleEndian.PutUint32(buf[offsetFlashTableLen:], h.FlashConfigTableLen)

	for i, p := range h.PatchOnRead {
		out := buf[offsetPatchOnRead+i*8:]
		binary.LittleEndian.PutUint32(out[0:4], p.Addr)
		binary.LittleEndian.PutUint32(out[4:8], p.Value)
	}
	for i, p := range h.PatchOnJump {
		out := buf[offsetPatchOnJump+i*8:]
		binary.LittleEndian.PutUint32(out[0:4], p.Addr)
		binary.LittleEndian.PutUint32(out[4:8], p.Value)
	}
	for i, v := range h.Reserved {
		binary.LittleEndian.PutUint32(buf[offsetReserved+i*4:], v)
	}

	binary.LittleEndian.PutUint32(buf[offsetHeaderCRC:], h.CRC32)

	return buf
}

// checksum computes CRC-32/ISO-HDLC, the polynomial used by every embedded
// checksum in the header. This is the IEEE polynomial of hash/crc32.
func checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
