package bootimage

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"
)

// buildTestImage assembles a self-consistent boot image carrying payload.
// Every embedded checksum and the payload digest are correct unless the
// caller corrupts them afterwards.
func buildTestImage(payload []byte) []byte {
	img := make([]byte, HeadLength+len(payload))

	copy(img[0:4], "BFNP")
	binary.LittleEndian.PutUint32(img[4:8], 1) // revision

	copy(img[offsetFlashConfig:], "FCFG")
	for i := 0; i < flashParamsSize; i++ {
		img[offsetFlashParams+i] = byte(i)
	}
	binary.LittleEndian.PutUint32(img[offsetFlashCRC:],
		crc32.ChecksumIEEE(img[offsetFlashParams:offsetFlashParams+flashParamsSize]))

	copy(img[offsetClockConfig:], "PCFG")
	for i := 0; i < clockParamsSize; i++ {
		img[offsetClockParams+i] = byte(0x80 + i)
	}
	binary.LittleEndian.PutUint32(img[offsetClockCRC:],
		crc32.ChecksumIEEE(img[offsetClockParams:offsetClockParams+clockParamsSize]))

	binary.LittleEndian.PutUint32(img[offsetBasicFlag:], 0x654C0100)
	binary.LittleEndian.PutUint32(img[offsetImageOffset:], HeadLength)
	binary.LittleEndian.PutUint32(img[offsetImageLength:], uint32(len(payload)))

	digest := sha256.Sum256(payload)
	copy(img[offsetHash:], digest[:])

	// One enabled core with an arbitrary boot entry.
	img[offsetCPUConfig] = 1
	binary.LittleEndian.PutUint32(img[offsetCPUConfig+16:], 0x58000000)

	binary.LittleEndian.PutUint32(img[offsetPatchOnJump:], 0x20000320)

	binary.LittleEndian.PutUint32(img[offsetHeaderCRC:],
		crc32.ChecksumIEEE(img[:offsetHeaderCRC]))

	copy(img[HeadLength:], payload)
	return img
}

func testPayload(n int) []byte {
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	return payload
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	img := buildTestImage(testPayload(64))

	h, err := DecodeHeader(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	encoded := h.Encode()
	if len(encoded) != HeadLength {
		t.Fatalf("encoded length = %d, want %d", len(encoded), HeadLength)
	}
	if !bytes.Equal(encoded, img[:HeadLength]) {
		t.Errorf("encode is not the inverse of decode")
	}

	h2, err := DecodeHeader(encoded)
	if err != nil {
		t.Fatalf("unexpected error re-decoding: %v", err)
	}
	if *h2 != *h {
		t.Errorf("re-decoded header differs from original")
	}
}

func TestDecodeHeaderFields(t *testing.T) {
	payload := testPayload(100)
	img := buildTestImage(payload)

	h, err := DecodeHeader(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.Magic != HeadMagic {
		t.Errorf("Magic = 0x%08x, want 0x%08x", h.Magic, HeadMagic)
	}
	if h.Revision != 1 {
		t.Errorf("Revision = %d, want 1", h.Revision)
	}
	if h.Flash.Magic != FlashMagic {
		t.Errorf("Flash.Magic = 0x%08x, want 0x%08x", h.Flash.Magic, FlashMagic)
	}
	if h.Clock.Magic != ClockMagic {
		t.Errorf("Clock.Magic = 0x%08x, want 0x%08x", h.Clock.Magic, ClockMagic)
	}
	if h.Basic.GroupImageOffset != HeadLength {
		t.Errorf("GroupImageOffset = %d, want %d", h.Basic.GroupImageOffset, HeadLength)
	}
	if h.Basic.ImgLenCnt != uint32(len(payload)) {
		t.Errorf("ImgLenCnt = %d, want %d", h.Basic.ImgLenCnt, len(payload))
	}
	digest := sha256.Sum256(payload)
	if h.Basic.Hash != digest {
		t.Errorf("Hash = %x, want %x", h.Basic.Hash, digest)
	}
	if h.CPU[0].ConfigEnable != 1 || h.CPU[0].BootEntry != 0x58000000 {
		t.Errorf("CPU[0] = %+v, want enabled with boot entry 0x58000000", h.CPU[0])
	}
	if h.PatchOnJump[0].Addr != 0x20000320 {
		t.Errorf("PatchOnJump[0].Addr = 0x%08x, want 0x20000320", h.PatchOnJump[0].Addr)
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	valid := buildTestImage(nil)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		check  func(t *testing.T, err error)
	}{
		{
			name:   "empty buffer",
			mutate: func(b []byte) []byte { return nil },
			check: func(t *testing.T, err error) {
				var lenErr *HeadLengthError
				if !errors.As(err, &lenErr) {
					t.Fatalf("error = %v, want *HeadLengthError", err)
				}
				if lenErr.WrongLength != 0 {
					t.Errorf("WrongLength = %d, want 0", lenErr.WrongLength)
				}
			},
		},
		{
			name: "wrong magic carries the literal bytes",
			mutate: func(b []byte) []byte {
				copy(b[0:4], []byte{0xEF, 0xBE, 0xAD, 0xDE})
				return b
			},
			check: func(t *testing.T, err error) {
				var magicErr *MagicError
				if !errors.As(err, &magicErr) {
					t.Fatalf("error = %v, want *MagicError", err)
				}
				if magicErr.WrongMagic != 0xDEADBEEF {
					t.Errorf("WrongMagic = 0x%08x, want 0xdeadbeef", magicErr.WrongMagic)
				}
			},
		},
		{
			name:   "truncated header with good magic",
			mutate: func(b []byte) []byte { return b[:100] },
			check: func(t *testing.T, err error) {
				var lenErr *HeadLengthError
				if !errors.As(err, &lenErr) {
					t.Fatalf("error = %v, want *HeadLengthError", err)
				}
				if lenErr.WrongLength != 100 {
					t.Errorf("WrongLength = %d, want 100", lenErr.WrongLength)
				}
			},
		},
		{
			name: "wrong flash config magic",
			mutate: func(b []byte) []byte {
				copy(b[offsetFlashConfig:], "XXXX")
				return b
			},
			check: func(t *testing.T, err error) {
				var magicErr *FlashConfigMagicError
				if !errors.As(err, &magicErr) {
					t.Fatalf("error = %v, want *FlashConfigMagicError", err)
				}
			},
		},
		{
			name: "wrong clock config magic",
			mutate: func(b []byte) []byte {
				copy(b[offsetClockConfig:], "XXXX")
				return b
			},
			check: func(t *testing.T, err error) {
				var magicErr *ClockConfigMagicError
				if !errors.As(err, &magicErr) {
					t.Fatalf("error = %v, want *ClockConfigMagicError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, len(valid))
			copy(buf, valid)
			buf = tt.mutate(buf)

			_, err := DecodeHeader(buf)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			tt.check(t, err)
		})
	}
}
