// Package e32 lays out the E32 image pieces derived from a reconciled
// export set: the export address table, the compact export descriptor
// embedded in the V header, and the image file itself.
package e32

import (
	"bytes"
	"encoding/binary"

	"github.com/bentokun/elf2e32/pkg/symbol"
)

// Export descriptor encodings recognized by the loader.
const (
	ExportDescFullBitmap    uint8 = 1
	ExportDescSparseBitmap8 uint8 = 2
)

// ExportTable is the dense per-ordinal address array. Slot i-1 holds the
// image-relative virtual address of ordinal i; holes and ABSENT ordinals
// hold the entry-point sentinel, which traps at run time.
type ExportTable struct {
	Addresses []uint32
	NumAbsent int
	sentinel  uint32
}

// BuildExportTable fills the table from syms (sorted by ordinal). The
// sentinel for unoccupied slots is the entry point offset plus the RO base.
func BuildExportTable(syms []*symbol.Symbol, entryPointOffset, roBase uint32) *ExportTable {
	sentinel := entryPointOffset + roBase
	t := &ExportTable{sentinel: sentinel}

	var max uint32
	for _, s := range syms {
		if s.Status == symbol.Missing || s.Ordinal == 0 {
			continue
		}
		if s.Ordinal > max {
			max = s.Ordinal
		}
	}

	t.Addresses = make([]uint32, max)
	for i := range t.Addresses {
		t.Addresses[i] = sentinel
	}
	for _, s := range syms {
		if s.Status == symbol.Missing || s.Absent || s.Ordinal == 0 {
			continue
		}
		t.Addresses[s.Ordinal-1] = uint32(s.Value)
	}
	for _, addr := range t.Addresses {
		if addr == sentinel {
			t.NumAbsent++
		}
	}
	return t
}

// Sentinel returns the trap address used for absent slots.
func (t *ExportTable) Sentinel() uint32 { return t.sentinel }

// NumExports returns the number of export slots (the highest ordinal).
func (t *ExportTable) NumExports() int { return len(t.Addresses) }

// Bytes renders the table in wire form: one reserved 32-bit header word
// followed by the little-endian address array.
func (t *ExportTable) Bytes() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, t.Addresses)
	return buf.Bytes()
}

// Size returns the wire size of the table in bytes.
func (t *ExportTable) Size() int { return 4 * (1 + len(t.Addresses)) }

// ExportDescription is the header-embedded encoding of which export slots
// are absent.
type ExportDescription struct {
	Type uint8
	Data []byte // payload, unpadded
}

// Size returns the payload size recorded in the header.
func (d *ExportDescription) Size() uint16 { return uint16(len(d.Data)) }

// ExtraSpace returns the number of bytes the descriptor adds past the fixed
// V header, padded out to a 4-byte boundary.
func (d *ExportDescription) ExtraSpace() uint32 {
	if len(d.Data) == 0 {
		return 0
	}
	extra := uint32(len(d.Data) - 1)
	return (extra + 3) &^ 3
}

// BuildExportDescription encodes the absence bitmap of t, choosing the
// smaller of the full-bitmap and sparse-8 encodings.
//
// The full bitmap carries one bit per slot, 0 for absent, with unused
// trailing bits set. The sparse form keeps a meta-bitmap with one bit per
// bitmap byte, then the non-0xFF bytes themselves.
func BuildExportDescription(t *ExportTable) *ExportDescription {
	if t.NumExports() == 0 {
		return &ExportDescription{Type: ExportDescFullBitmap}
	}

	memsz := (t.NumExports() + 7) >> 3
	bitmap := make([]byte, memsz)
	for i := range bitmap {
		bitmap[i] = 0xff
	}
	for i, addr := range t.Addresses {
		if addr == t.sentinel {
			bitmap[i>>3] &^= 1 << (i & 7)
		}
	}

	mbs := (memsz + 7) >> 3
	nbytes := 0
	for _, b := range bitmap {
		if b != 0xff {
			nbytes++
		}
	}

	if mbs+nbytes >= memsz {
		return &ExportDescription{Type: ExportDescFullBitmap, Data: bitmap}
	}

	sparse := make([]byte, mbs, mbs+nbytes)
	for i, b := range bitmap {
		if b != 0xff {
			sparse[i>>3] |= 1 << (i & 7)
			sparse = append(sparse, b)
		}
	}
	return &ExportDescription{Type: ExportDescSparseBitmap8, Data: sparse}
}
