// Package translate sequences a single ELF to E32 translation: parse the
// DEF file, reconcile it against the ELF exports, then emit the regenerated
// DEF, the proxy DSO and the E32 image.
package translate

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/bentokun/elf2e32/internal/config"
	"github.com/bentokun/elf2e32/internal/utils"
	"github.com/bentokun/elf2e32/pkg/deffile"
	"github.com/bentokun/elf2e32/pkg/dso"
	"github.com/bentokun/elf2e32/pkg/e32"
	"github.com/bentokun/elf2e32/pkg/elfview"
	"github.com/bentokun/elf2e32/pkg/reconcile"
	"github.com/bentokun/elf2e32/pkg/symbol"
)

// OutputWriteError reports a failure to create or write an output file.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("failed to write output %s: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

// Run executes one translation.
func Run(c *config.Config) error {
	view, err := elfview.Open(c.ElfInput)
	if err != nil {
		return err
	}

	var defSymbols []*symbol.Symbol
	if c.DefInput != "" {
		defSymbols, err = deffile.Read(c.DefInput)
		if err != nil {
			return err
		}
	}

	res, err := reconcile.Reconcile(defSymbols, view, reconcile.Options{
		Unfrozen:               c.Unfrozen,
		IgnoreNonCallable:      c.IgnoreNonCallable,
		CustomDll:              c.CustomDll,
		ExcludeUnwantedExports: c.ExcludeUnwantedExports,
		WarnNewExports:         c.WarnNewExports,
	})
	if err != nil {
		var missing *reconcile.MissingSymbolsError
		if errors.As(err, &missing) && res != nil && c.DefOutput != "" {
			// flush the partial set so the operator can inspect what the
			// ELF lost before the failure propagates
			log.Errorf("missing frozen exports:\n%s", utils.SortedList(utils.Unique(missing.Names)))
			if werr := deffile.Write(c.DefOutput, res.Symbols); werr != nil {
				log.WithError(werr).Error("could not write regenerated DEF file")
			}
		}
		return err
	}

	isDLL := view.IsDLL()

	var table *e32.ExportTable
	if view.HasExports() || c.NamedSymLookup {
		table = e32.BuildExportTable(res.Symbols, view.EntryPointOffset(), view.ROBase())
	} else {
		table = e32.BuildExportTable(nil, view.EntryPointOffset(), view.ROBase())
	}
	desc := e32.BuildExportDescription(table)

	if isDLL && view.HasExports() {
		if c.DefOutput != "" {
			if err := deffile.Write(c.DefOutput, res.Symbols); err != nil {
				return &OutputWriteError{Path: c.DefOutput, Err: err}
			}
		}
		if c.DSOOutput == "" {
			log.Warn("--dsooutput not specified, skipping proxy DSO")
		} else {
			linkas := c.LinkAs
			if linkas == "" {
				if linkas = view.SOName(); linkas != "" {
					log.Debugf("--linkas not specified, using DT_SONAME %s", linkas)
				} else {
					linkas = filepath.Base(c.DSOOutput)
					log.Warnf("--linkas not specified, using %s", linkas)
				}
			}
			if err := dso.Write(c.DSOOutput, linkas, res.Symbols); err != nil {
				return &OutputWriteError{Path: c.DSOOutput, Err: err}
			}
		}
	}

	if c.Output == "" {
		log.Warn("--output not specified, skipping E32 image")
		return nil
	}
	img := e32.Generate(view, table, desc, e32.ImageParams{
		IsDLL: isDLL,
		UID1:  c.UID1,
		UID2:  c.UID2,
		UID3:  c.UID3,
	})
	if err := img.WriteFile(c.Output); err != nil {
		return &OutputWriteError{Path: c.Output, Err: err}
	}

	log.Infof("translated %s: %d export(s), %d absent, descriptor type %d (%d bytes)",
		c.ElfInput, table.NumExports(), table.NumAbsent, desc.Type, desc.Size())
	return nil
}

// Exit codes, one per error kind.
const (
	exitOK = iota
	exitFailure
	exitDefSyntax
	exitDefDuplicateOrdinal
	exitSymbolsMissing
	exitElfRead
	exitOutputWrite
)

// ExitCode maps an error to the process exit code for its kind.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var (
		syntaxErr  *deffile.SyntaxError
		dupErr     *deffile.DuplicateOrdinalError
		missingErr *reconcile.MissingSymbolsError
		readErr    *elfview.ReadError
		writeErr   *OutputWriteError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return exitDefSyntax
	case errors.As(err, &dupErr):
		return exitDefDuplicateOrdinal
	case errors.As(err, &missingErr):
		return exitSymbolsMissing
	case errors.As(err, &readErr):
		return exitElfRead
	case errors.As(err, &writeErr):
		return exitOutputWrite
	}
	return exitFailure
}
