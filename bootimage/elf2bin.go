package bootimage

import (
	"bytes"
	"debug/elf"
	"fmt"
	"sort"
)

// SectionInfo describes one loadable section emitted by ElfToBin, for
// callers that want to log what went into the flat binary.
type SectionInfo struct {
	Name    string
	Address uint64
	Size    uint64
}

// ElfToBin converts an ELF executable to a flat binary: every section with
// the ALLOC flag, in file-offset order, with NOBITS sections (.bss and
// friends) written as zeros.
func ElfToBin(elfData []byte) ([]byte, []SectionInfo, error) {
	f, err := elf.NewFile(bytes.NewReader(elfData))
	if err != nil {
		return nil, nil, fmt.Errorf("parse ELF: %w", err)
	}
	defer f.Close()

	var sections []*elf.Section
	for _, s := range f.Sections {
		if s.Flags&elf.SHF_ALLOC != 0 {
			sections = append(sections, s)
		}
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Offset < sections[j].Offset
	})

	var out bytes.Buffer
	var infos []SectionInfo
	for _, s := range sections {
		infos = append(infos, SectionInfo{
			Name:    s.Name,
			Address: s.Addr,
			Size:    s.Size,
		})
		if s.Size == 0 {
			continue
		}
		if s.Type == elf.SHT_NOBITS {
			out.Write(make([]byte, s.Size))
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, nil, fmt.Errorf("read section %s: %w", s.Name, err)
		}
		out.Write(data)
	}

	return out.Bytes(), infos, nil
}
