// Package symbol defines the export symbol record shared by the DEF file
// parser, the ELF export view and the reconciler.
package symbol

import (
	"sort"
	"strings"
)

// Kind is the class of an exported symbol.
type Kind uint8

const (
	// Code is a callable export (functions, thunks).
	Code Kind = iota
	// Data is a non-callable export (vtables, typeinfo, globals).
	Data
)

func (k Kind) String() string {
	if k == Data {
		return "DATA"
	}
	return "CODE"
}

// Status records how the reconciler classified a symbol.
type Status uint8

const (
	// Matching symbols appear in both the DEF file and the ELF exports.
	Matching Status = iota
	// New symbols appear only in the ELF exports.
	New
	// Missing symbols appear only in the DEF file.
	Missing
	// Filtered symbols were suppressed from the export set.
	Filtered
)

func (s Status) String() string {
	switch s {
	case New:
		return "new"
	case Missing:
		return "missing"
	case Filtered:
		return "filtered"
	}
	return "matching"
}

// Symbol is a single export. Name is the mangled external name and is the
// identity used by all set operations. Ordinal 0 means unassigned; assigned
// ordinals start at 1 and are never reused.
type Symbol struct {
	Name     string
	Ordinal  uint32
	Kind     Kind
	Size     uint32 // byte size; written to the DEF file for DATA symbols only
	Value    uint64 // image relative virtual address from the ELF
	Absent   bool   // ordinal reserved, slot traps to the entry point
	NoName   bool   // NONAME keyword in the DEF file
	R3Unused bool   // R3UNUSED keyword in the DEF file
	Status   Status
	Comment  string
}

// Clone returns a value copy of s.
func (s *Symbol) Clone() *Symbol {
	c := *s
	return &c
}

// Equal reports whether two symbols name the same export.
func (s *Symbol) Equal(o *Symbol) bool {
	return s.Name == o.Name
}

// classImpedimenta are the Itanium-mangled prefixes of vtables (_ZTV),
// typeinfo (_ZTI) and typeinfo names (_ZTS).
var classImpedimenta = []string{"_ZTV", "_ZTI", "_ZTS"}

// DeriveKind classifies a symbol by its mangled name. Vtable and typeinfo
// exports are data, everything else is code. The derived kind is
// authoritative for symbols coming off the ELF.
func DeriveKind(name string) Kind {
	for _, p := range classImpedimenta {
		if strings.HasPrefix(name, p) {
			return Data
		}
	}
	return Code
}

// NonCallable reports whether name is a vtable or typeinfo export, the two
// prefixes suppressed under --ignore-non-callable.
func NonCallable(name string) bool {
	return strings.HasPrefix(name, "_ZTI") || strings.HasPrefix(name, "_ZTV")
}

// SortByName orders syms by ascending mangled name.
func SortByName(syms []*Symbol) {
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
}

// SortByOrdinal orders syms by ascending ordinal.
func SortByOrdinal(syms []*Symbol) {
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].Ordinal < syms[j].Ordinal })
}

// NameDifference returns the elements of a not present in b. Both inputs
// must be sorted by name; the result preserves a's order. For every name
// present in both, merge is invoked with the pair so callers can carry
// attributes across the join.
func NameDifference(a, b []*Symbol, merge func(x, y *Symbol)) []*Symbol {
	var out []*Symbol
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Name < b[j].Name:
			out = append(out, a[i])
			i++
		case a[i].Name > b[j].Name:
			j++
		default:
			if merge != nil {
				merge(a[i], b[j])
			}
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return out
}

// NameIntersection returns the elements of a also present in b, in a's
// order. merge, if non-nil, is invoked with each matching pair.
func NameIntersection(a, b []*Symbol, merge func(x, y *Symbol)) []*Symbol {
	var out []*Symbol
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Name < b[j].Name:
			i++
		case a[i].Name > b[j].Name:
			j++
		default:
			if merge != nil {
				merge(a[i], b[j])
			}
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// MaxOrdinal returns the highest assigned ordinal in syms, 0 if none.
func MaxOrdinal(syms []*Symbol) uint32 {
	var max uint32
	for _, s := range syms {
		if s.Ordinal > max {
			max = s.Ordinal
		}
	}
	return max
}
