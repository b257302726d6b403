// Package elfview adapts the host-built ELF object into the symbol stream
// consumed by the export reconciler. It extracts the dynamic exports,
// tracks the symbols the reconciler filters out, and answers the questions
// the image writer asks of the input (entry point, load bases, section
// payloads, DLL-ness).
package elfview

import (
	"debug/elf"
	"fmt"

	"github.com/bentokun/elf2e32/pkg/symbol"
)

// ReadError wraps a failure surfaced from the ELF reader.
type ReadError struct {
	File string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read ELF file %s: %v", e.File, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// View is the reconciler-facing window onto one ELF object.
type View struct {
	path     string
	exports  []*symbol.Symbol // sorted by name
	filtered []*symbol.Symbol
	statics  map[string]uint64

	entryPoint uint32 // entry point offset within the RO segment
	roBase     uint32
	rwBase     uint32
	code       []byte
	data       []byte
	soname     string
}

// Open reads the ELF object at path and extracts its dynamic exports.
func Open(path string) (*View, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, &ReadError{File: path, Err: err}
	}
	defer f.Close()

	v := &View{path: path, statics: make(map[string]uint64)}

	loads := 0
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		buf := make([]byte, p.Filesz)
		if p.Filesz > 0 {
			if _, err := p.ReadAt(buf, 0); err != nil {
				return nil, &ReadError{File: path, Err: err}
			}
		}
		if loads == 0 {
			v.roBase = uint32(p.Vaddr)
			v.code = buf
		} else if loads == 1 {
			v.rwBase = uint32(p.Vaddr)
			v.data = buf
		}
		loads++
	}
	v.entryPoint = uint32(f.Entry) - v.roBase

	if sonames, err := f.DynString(elf.DT_SONAME); err == nil && len(sonames) > 0 {
		v.soname = sonames[0]
	}

	dynsyms, err := f.DynamicSymbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, &ReadError{File: path, Err: err}
	}
	for _, ds := range dynsyms {
		if !exported(ds) {
			continue
		}
		v.exports = append(v.exports, &symbol.Symbol{
			Name:  ds.Name,
			Kind:  symbol.DeriveKind(ds.Name),
			Size:  uint32(ds.Size),
			Value: ds.Value,
		})
	}
	symbol.SortByName(v.exports)

	syms, err := f.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, &ReadError{File: path, Err: err}
	}
	for _, s := range syms {
		v.statics[s.Name] = s.Value
	}

	return v, nil
}

// exported reports whether a dynamic symbol is a visible definition.
func exported(s elf.Symbol) bool {
	bind := elf.ST_BIND(s.Info)
	if bind != elf.STB_GLOBAL && bind != elf.STB_WEAK {
		return false
	}
	if s.Section == elf.SHN_UNDEF {
		return false
	}
	vis := elf.ST_VISIBILITY(s.Other)
	return vis == elf.STV_DEFAULT || vis == elf.STV_PROTECTED
}

// NewView builds a view over an already-extracted export list. Used when the
// exports come from somewhere other than an on-disk object, and by tests.
func NewView(exports []*symbol.Symbol, entryPoint, roBase uint32) *View {
	v := &View{
		exports:    make([]*symbol.Symbol, len(exports)),
		statics:    make(map[string]uint64),
		entryPoint: entryPoint,
		roBase:     roBase,
	}
	copy(v.exports, exports)
	symbol.SortByName(v.exports)
	return v
}

// Exports returns the current export list, sorted by name.
func (v *View) Exports() []*symbol.Symbol { return v.exports }

// HasExports reports whether any exports remain.
func (v *View) HasExports() bool { return len(v.exports) > 0 }

// Filter marks s for removal from the authoritative export list. The
// removal itself happens in ApplyFilter so set iteration stays stable.
func (v *View) Filter(s *symbol.Symbol) {
	s.Status = symbol.Filtered
	v.filtered = append(v.filtered, s)
}

// Filtered returns the symbols suppressed so far.
func (v *View) Filtered() []*symbol.Symbol { return v.filtered }

// ApplyFilter erases every filtered symbol from the export list.
func (v *View) ApplyFilter() {
	if len(v.filtered) == 0 {
		return
	}
	out := v.exports[:0]
	for _, s := range v.exports {
		if s.Status != symbol.Filtered {
			out = append(out, s)
		}
	}
	v.exports = out
}

// Register adds a symbol synthesized by the reconciler (absent carry-overs)
// so downstream consumers see a stable slot for its ordinal.
func (v *View) Register(s *symbol.Symbol) {
	v.exports = append(v.exports, s)
	symbol.SortByName(v.exports)
}

// LookupStatic returns the value of a static-symbol-table entry.
func (v *View) LookupStatic(name string) (uint64, bool) {
	val, ok := v.statics[name]
	return val, ok
}

// IsDLL reports whether the object was built as a DLL. The build tools tag
// DLLs by defining _E32Dll in the static symbol table.
func (v *View) IsDLL() bool {
	_, ok := v.statics["_E32Dll"]
	return ok
}

// EntryPointOffset returns the entry point offset within the RO segment.
func (v *View) EntryPointOffset() uint32 { return v.entryPoint }

// ROBase returns the virtual base of the read-only segment.
func (v *View) ROBase() uint32 { return v.roBase }

// RWBase returns the virtual base of the read-write segment.
func (v *View) RWBase() uint32 { return v.rwBase }

// Code returns the read-only segment payload.
func (v *View) Code() []byte { return v.code }

// Data returns the read-write segment payload.
func (v *View) Data() []byte { return v.data }

// SOName returns the DT_SONAME of the input, if any. It serves as the
// link-as name when --linkas is not given.
func (v *View) SOName() string { return v.soname }

// Path returns the input file path.
func (v *View) Path() string { return v.path }

// SetStatic records a static symbol. Used by NewView-based callers.
func (v *View) SetStatic(name string, value uint64) {
	v.statics[name] = value
}
