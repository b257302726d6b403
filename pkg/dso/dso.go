// Package dso produces the proxy import library for a reconciled export
// set: a small ELF32 shared object whose dynamic symbols carry the frozen
// ordinals as their values. Dependents link against the proxy instead of
// the real DLL, so their import records resolve by ordinal.
package dso

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"

	"github.com/apex/log"
	"github.com/bentokun/elf2e32/pkg/symbol"
	"github.com/pkg/errors"
)

const (
	ehSize   = 52
	shSize   = 40
	symSize  = 16
	dynSize  = 8
	flagEABI = 0x05000000 // EF_ARM_EABI_VER5
)

// Write emits the proxy DSO for syms to path. soname is the link-as name
// recorded in DT_SONAME.
func Write(path, soname string, syms []*symbol.Symbol) error {
	data, err := Bytes(soname, syms)
	if err != nil {
		return errors.Wrap(err, "failed to lay out proxy DSO")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write DSO file %s", path)
	}
	log.Debugf("wrote proxy DSO %s (%d exports)", path, len(syms))
	return nil
}

// Bytes lays out the DSO in memory. Symbols are emitted in ordinal order;
// each is an absolute global whose value is its export ordinal.
func Bytes(soname string, syms []*symbol.Symbol) ([]byte, error) {
	ordered := make([]*symbol.Symbol, 0, len(syms))
	for _, s := range syms {
		if s.Status == symbol.Missing {
			continue
		}
		ordered = append(ordered, s)
	}
	symbol.SortByOrdinal(ordered)

	// .dynstr
	var dynstr bytes.Buffer
	dynstr.WriteByte(0)
	strOff := func(s string) uint32 {
		off := uint32(dynstr.Len())
		dynstr.WriteString(s)
		dynstr.WriteByte(0)
		return off
	}
	sonameOff := strOff(soname)
	nameOffs := make([]uint32, len(ordered))
	for i, s := range ordered {
		nameOffs[i] = strOff(s.Name)
	}

	// .dynsym
	var dynsym bytes.Buffer
	binary.Write(&dynsym, binary.LittleEndian, elf.Sym32{}) // null entry
	for i, s := range ordered {
		typ := elf.STT_FUNC
		if s.Kind == symbol.Data {
			typ = elf.STT_OBJECT
		}
		binary.Write(&dynsym, binary.LittleEndian, elf.Sym32{
			Name:  nameOffs[i],
			Value: s.Ordinal,
			Size:  s.Size,
			Info:  elf.ST_INFO(elf.STB_GLOBAL, typ),
			Shndx: uint16(elf.SHN_ABS),
		})
	}

	dynsymOff := uint32(ehSize)
	dynstrOff := dynsymOff + uint32(dynsym.Len())
	dynamicOff := align4(dynstrOff + uint32(dynstr.Len()))

	// .dynamic
	var dynamic bytes.Buffer
	for _, d := range []elf.Dyn32{
		{Tag: int32(elf.DT_SONAME), Val: sonameOff},
		{Tag: int32(elf.DT_SYMTAB), Val: dynsymOff},
		{Tag: int32(elf.DT_STRTAB), Val: dynstrOff},
		{Tag: int32(elf.DT_STRSZ), Val: uint32(dynstr.Len())},
		{Tag: int32(elf.DT_SYMENT), Val: symSize},
		{Tag: int32(elf.DT_NULL)},
	} {
		binary.Write(&dynamic, binary.LittleEndian, d)
	}

	// .shstrtab
	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)
	shName := func(s string) uint32 {
		off := uint32(shstrtab.Len())
		shstrtab.WriteString(s)
		shstrtab.WriteByte(0)
		return off
	}
	nDynsym := shName(".dynsym")
	nDynstr := shName(".dynstr")
	nDynamic := shName(".dynamic")
	nShstrtab := shName(".shstrtab")

	shstrtabOff := dynamicOff + uint32(dynamic.Len())
	shOff := align4(shstrtabOff + uint32(shstrtab.Len()))

	sections := []elf.Section32{
		{},
		{
			Name: nDynsym, Type: uint32(elf.SHT_DYNSYM),
			Off: dynsymOff, Size: uint32(dynsym.Len()),
			Link: 2, Info: 1, Addralign: 4, Entsize: symSize,
		},
		{
			Name: nDynstr, Type: uint32(elf.SHT_STRTAB),
			Off: dynstrOff, Size: uint32(dynstr.Len()), Addralign: 1,
		},
		{
			Name: nDynamic, Type: uint32(elf.SHT_DYNAMIC),
			Off: dynamicOff, Size: uint32(dynamic.Len()),
			Link: 2, Addralign: 4, Entsize: dynSize,
		},
		{
			Name: nShstrtab, Type: uint32(elf.SHT_STRTAB),
			Off: shstrtabOff, Size: uint32(shstrtab.Len()), Addralign: 1,
		},
	}

	hdr := elf.Header32{
		Type:      uint16(elf.ET_DYN),
		Machine:   uint16(elf.EM_ARM),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shOff,
		Flags:     flagEABI,
		Ehsize:    ehSize,
		Shentsize: shSize,
		Shnum:     uint16(len(sections)),
		Shstrndx:  uint16(len(sections) - 1),
	}
	ident := [16]byte{0x7f, 'E', 'L', 'F',
		byte(elf.ELFCLASS32), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT)}
	hdr.Ident = ident

	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	out.Write(dynsym.Bytes())
	out.Write(dynstr.Bytes())
	padTo(&out, dynamicOff)
	out.Write(dynamic.Bytes())
	out.Write(shstrtab.Bytes())
	padTo(&out, shOff)
	if err := binary.Write(&out, binary.LittleEndian, sections); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func align4(v uint32) uint32 { return (v + 3) &^ 3 }

func padTo(buf *bytes.Buffer, off uint32) {
	for uint32(buf.Len()) < off {
		buf.WriteByte(0)
	}
}
