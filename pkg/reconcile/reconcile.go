// Package reconcile joins the symbol list of a frozen DEF file with the
// exports of a freshly linked ELF object. Every symbol ends up classified
// (matching, new, missing, filtered) and every export ends up with a stable
// ordinal: once an ordinal has been handed out it is never reassigned, even
// after the symbol itself disappears.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/bentokun/elf2e32/pkg/elfview"
	"github.com/bentokun/elf2e32/pkg/symbol"
)

// Options are the reconciliation mode flags.
type Options struct {
	// Unfrozen demotes missing frozen exports from an error to a warning
	// and is the normal mode while an API is still evolving.
	Unfrozen bool
	// IgnoreNonCallable suppresses vtable and typeinfo exports.
	IgnoreNonCallable bool
	// CustomDll filters runtime-support symbols from the new exports, the
	// same way ExcludeUnwantedExports does.
	CustomDll bool
	// ExcludeUnwantedExports filters runtime-support symbols.
	ExcludeUnwantedExports bool
	// WarnNewExports logs one line per newly admitted export.
	WarnNewExports bool
}

// MissingSymbolsError is the frozen-mode failure: DEF symbols that the ELF
// no longer defines.
type MissingSymbolsError struct {
	File  string
	Names []string
}

func (e *MissingSymbolsError) Error() string {
	return fmt.Sprintf("%d frozen export(s) missing from the ELF file %s: %s",
		len(e.Names), e.File, strings.Join(e.Names, ", "))
}

// Result is the reconciled export set.
type Result struct {
	// Symbols is the output list, sorted by ascending ordinal.
	Symbols []*symbol.Symbol
	// MaxOrdinal is the highest ordinal in Symbols.
	MaxOrdinal uint32
	// Missing names the frozen exports absent from the ELF. Non-empty only
	// in unfrozen mode, or alongside a MissingSymbolsError.
	Missing []string
}

// Reconcile runs the four-phase join between def and the exports of view.
//
// On a frozen-mode missing-symbol failure the returned Result still carries
// the partial output (the valid DEF symbols with missing statuses applied)
// so the caller can flush a regenerated DEF before propagating the error.
func Reconcile(def []*symbol.Symbol, view *elfview.View, opts Options) (*Result, error) {
	var valid, absent []*symbol.Symbol
	for _, s := range def {
		if s.Absent {
			absent = append(absent, s)
		} else {
			valid = append(valid, s)
		}
	}
	maxOrdinal := symbol.MaxOrdinal(def)

	elfExports := view.Exports() // already sorted by name
	symbol.SortByName(valid)
	symbol.SortByName(absent)

	res := &Result{}

	// Phase 1: frozen exports no longer defined by the ELF. Matching pairs
	// carry the ELF-side address and size across the join, and the ELF side
	// learns its frozen ordinal.
	missing := symbol.NameDifference(valid, elfExports, carryAttributes)
	for _, s := range missing {
		s.Status = symbol.Missing
		res.Missing = append(res.Missing, s.Name)
	}
	res.Symbols = append(res.Symbols, valid...)
	if len(res.Missing) > 0 {
		if !opts.Unfrozen {
			symbol.SortByOrdinal(res.Symbols)
			res.MaxOrdinal = symbol.MaxOrdinal(res.Symbols)
			return res, &MissingSymbolsError{File: view.Path(), Names: res.Missing}
		}
		log.Warnf("%d Frozen Export(s) missing from the ELF file", len(res.Missing))
	}

	// Phase 2: symbols marked ABSENT in the DEF that the ELF exports after
	// all. They keep their reserved ordinal but come back to life. The
	// ELF-side record is flagged absent so Phase 3 does not re-admit the
	// same name as a new export under a fresh ordinal.
	for _, s := range symbol.NameIntersection(absent, elfExports, func(d, e *symbol.Symbol) {
		carryAttributes(d, e)
		e.Absent = true
	}) {
		res.Symbols = append(res.Symbols, s)
		log.Warnf("Symbol %s absent in the DEF file, but present in the ELF file", s.Name)
	}

	// Phase 3: exports the DEF has never seen. Name order keeps ordinal
	// assignment deterministic.
	for _, s := range symbol.NameDifference(elfExports, valid, nil) {
		if s.Absent {
			continue
		}
		if (opts.CustomDll || opts.ExcludeUnwantedExports) && unwanted(s.Name) {
			view.Filter(s)
			continue
		}
		if opts.IgnoreNonCallable && symbol.NonCallable(s.Name) {
			view.Filter(s)
			continue
		}
		maxOrdinal++
		s.Ordinal = maxOrdinal
		s.Status = symbol.New
		res.Symbols = append(res.Symbols, s)
		if opts.WarnNewExports {
			log.Warnf("New Symbol %s found, export(s) not yet Frozen", s.Name)
		}
	}

	// Phase 4: ABSENT carry-overs. The ordinal stays reserved forever, so a
	// fresh code-kind copy is registered with the export view to hold a
	// stable slot.
	for _, s := range symbol.NameDifference(absent, elfExports, nil) {
		c := s.Clone()
		c.Kind = symbol.Code
		c.Absent = true
		view.Register(c)
		res.Symbols = append(res.Symbols, c)
	}

	symbol.SortByOrdinal(res.Symbols)
	res.MaxOrdinal = symbol.MaxOrdinal(res.Symbols)
	view.ApplyFilter()

	return res, nil
}

// carryAttributes resolves a name match between a DEF record and an ELF
// record: address, size and kind flow from the object file, the frozen
// ordinal flows back onto the ELF record. A DEF record reserved ABSENT
// comes back to life when the ELF defines it again. Kind disagreements
// between the DEF text and the mangled-name rule are reported; the name
// derivation wins.
func carryAttributes(d, e *symbol.Symbol) {
	derived := symbol.DeriveKind(e.Name)
	if d.Kind != derived {
		log.Warnf("Symbol %s declared %s in the DEF file but derives as %s", d.Name, d.Kind, derived)
	}
	d.Value = e.Value
	if e.Size != 0 {
		d.Size = e.Size
	}
	d.Kind = derived
	d.Absent = e.Absent
	e.Ordinal = d.Ordinal
}
