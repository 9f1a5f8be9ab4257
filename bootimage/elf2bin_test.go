package bootimage

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildTestELF assembles a minimal ELF64 RISC-V executable by hand:
// a .text section with known bytes, a NOBITS .bss, and the section
// name string table.
func buildTestELF(text []byte) []byte {
	const (
		ehsize    = 64
		shentsize = 64
		shnum     = 4
	)
	strtab := []byte("\x00.text\x00.bss\x00.shstrtab\x00")
	textOff := uint64(ehsize)
	strtabOff := textOff + uint64(len(text))
	shoff := strtabOff + uint64(len(strtab))
	shoff = (shoff + 7) &^ 7

	buf := make([]byte, shoff+shnum*shentsize)
	le := binary.LittleEndian

	// ELF identification: 64-bit, little-endian, version 1.
	copy(buf, []byte{0x7F, 'E', 'L', 'F', 2, 1, 1})
	le.PutUint16(buf[16:], 2)    // ET_EXEC
	le.PutUint16(buf[18:], 0xF3) // EM_RISCV
	le.PutUint32(buf[20:], 1)
	le.PutUint64(buf[24:], 0x58000000) // entry point
	le.PutUint64(buf[40:], shoff)
	le.PutUint16(buf[52:], ehsize)
	le.PutUint16(buf[58:], shentsize)
	le.PutUint16(buf[60:], shnum)
	le.PutUint16(buf[62:], 3) // .shstrtab index

	copy(buf[textOff:], text)
	copy(buf[strtabOff:], strtab)

	putShdr := func(index int, name, shType uint32, flags, addr, off, size uint64) {
		sh := buf[shoff+uint64(index)*shentsize:]
		le.PutUint32(sh[0:], name)
		le.PutUint32(sh[4:], shType)
		le.PutUint64(sh[8:], flags)
		le.PutUint64(sh[16:], addr)
		le.PutUint64(sh[24:], off)
		le.PutUint64(sh[32:], size)
		le.PutUint64(sh[48:], 1) // alignment
	}

	const (
		shtProgbits = 1
		shtStrtab   = 3
		shtNobits   = 8
		shfWrite    = 0x1
		shfAlloc    = 0x2
		shfExec     = 0x4
	)

	// Index 0 stays the null section.
	putShdr(1, 1, shtProgbits, shfAlloc|shfExec, 0x58000000, textOff, uint64(len(text)))
	putShdr(2, 7, shtNobits, shfAlloc|shfWrite, 0x58000000+uint64(len(text)), strtabOff, 16)
	putShdr(3, 12, shtStrtab, 0, 0, strtabOff, uint64(len(strtab)))

	return buf
}

func TestElfToBin(t *testing.T) {
	text := []byte{0x97, 0x02, 0x00, 0x00, 0x73, 0x00, 0x10, 0x00}
	bin, infos, err := ElfToBin(buildTestELF(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := append(append([]byte{}, text...), make([]byte, 16)...)
	if !bytes.Equal(bin, want) {
		t.Errorf("binary = % x, want % x", bin, want)
	}

	if len(infos) != 2 {
		t.Fatalf("sections = %d, want 2", len(infos))
	}
	if infos[0].Name != ".text" || infos[0].Address != 0x58000000 || infos[0].Size != uint64(len(text)) {
		t.Errorf("infos[0] = %+v, want .text at 0x58000000 size %d", infos[0], len(text))
	}
	if infos[1].Name != ".bss" || infos[1].Size != 16 {
		t.Errorf("infos[1] = %+v, want .bss size 16", infos[1])
	}
}

func TestElfToBinSkipsNonAllocSections(t *testing.T) {
	bin, infos, err := ElfToBin(buildTestELF([]byte{0x13, 0x00, 0x00, 0x00}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, info := range infos {
		if info.Name == ".shstrtab" {
			t.Error("string table leaked into the flat binary sections")
		}
	}
	if len(bin) != 4+16 {
		t.Errorf("binary length = %d, want %d", len(bin), 4+16)
	}
}

func TestElfToBinRejectsGarbage(t *testing.T) {
	if _, _, err := ElfToBin([]byte("not an elf file at all")); err == nil {
		t.Fatal("expected error for non-ELF input")
	}
}
