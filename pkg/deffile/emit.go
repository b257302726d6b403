package deffile

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bentokun/elf2e32/pkg/symbol"
	"github.com/pkg/errors"
)

// Emit renders syms as canonical DEF text, one line per symbol in ascending
// ordinal order. A blank line and the header comment "; NEW" precede each
// contiguous block of new symbols; missing frozen symbols are annotated so
// the operator can see what the ELF lost.
func Emit(syms []*symbol.Symbol) []byte {
	sorted := make([]*symbol.Symbol, len(syms))
	copy(sorted, syms)
	symbol.SortByOrdinal(sorted)

	var buf bytes.Buffer
	inNewBlock := false
	for _, s := range sorted {
		if s.Status == symbol.New && !inNewBlock {
			buf.WriteString("\n; NEW\n")
			inNewBlock = true
		} else if s.Status != symbol.New {
			inNewBlock = false
		}
		buf.WriteString(formatLine(s))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func formatLine(s *symbol.Symbol) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s @ %d", s.Name, s.Ordinal)
	if s.NoName {
		buf.WriteString(" NONAME")
	}
	if s.Kind == symbol.Data {
		fmt.Fprintf(&buf, " DATA %d", s.Size)
	}
	if s.R3Unused {
		buf.WriteString(" R3UNUSED")
	}
	if s.Absent {
		buf.WriteString(" ABSENT")
	}
	switch {
	case s.Status == symbol.Missing:
		buf.WriteString(" ; MISSING:")
	case s.Comment != "":
		fmt.Fprintf(&buf, " ; %s", s.Comment)
	}
	return buf.String()
}

// Write emits syms to the DEF file at path.
func Write(path string, syms []*symbol.Symbol) error {
	if err := os.WriteFile(path, Emit(syms), 0644); err != nil {
		return errors.Wrapf(err, "failed to write DEF file %s", path)
	}
	return nil
}
