// Package deffile reads and writes module-definition (DEF) files, the
// human-maintained manifests that pin exported symbols to stable ordinals.
//
// The grammar is line oriented:
//
//	<name> @ <ordinal> [NONAME] [DATA <size>] [R3UNUSED] [ABSENT] [; comment]
//
// Comments start with ';' and run to end of line, blank lines are ignored,
// keywords are case sensitive and ordinals are decimal and 1-based.
package deffile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bentokun/elf2e32/pkg/symbol"
	"github.com/pkg/errors"
)

// tokenizer states for a single DEF line
type state int

const (
	stateInitial state = iota
	stateName
	stateAt
	stateOrdinal
	stateOptions
	stateComment
	stateFinal
	stateInvalid
)

// SyntaxError reports a malformed DEF line.
type SyntaxError struct {
	File  string
	Line  int
	Token string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: DEF syntax error near %q", e.File, e.Line, e.Token)
}

// DuplicateOrdinalError reports two DEF records sharing an ordinal.
type DuplicateOrdinalError struct {
	File    string
	Ordinal uint32
	Name    string
	Prev    string
}

func (e *DuplicateOrdinalError) Error() string {
	return fmt.Sprintf("%s: ordinal %d assigned to both %s and %s", e.File, e.Ordinal, e.Prev, e.Name)
}

// Read loads and parses the DEF file at path.
func Read(path string) ([]*symbol.Symbol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read DEF file %s", path)
	}
	return Parse(data, path)
}

// Parse tokenizes a DEF buffer into symbol records, in file order. file is
// used for diagnostics only.
func Parse(data []byte, file string) ([]*symbol.Symbol, error) {
	var out []*symbol.Symbol
	byOrdinal := make(map[uint32]string)

	for num, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		sym, err := parseLine(line, file, num+1)
		if err != nil {
			return nil, err
		}
		if sym == nil {
			continue
		}
		if prev, ok := byOrdinal[sym.Ordinal]; ok {
			return nil, &DuplicateOrdinalError{File: file, Ordinal: sym.Ordinal, Name: sym.Name, Prev: prev}
		}
		byOrdinal[sym.Ordinal] = sym.Name
		out = append(out, sym)
	}

	return out, nil
}

// parseLine runs the line tokenizer. It returns (nil, nil) for blank and
// pure-comment lines.
func parseLine(line, file string, num int) (*symbol.Symbol, error) {
	sym := &symbol.Symbol{Kind: symbol.Code}
	st := stateInitial
	fail := func(tok string) (*symbol.Symbol, error) {
		return nil, &SyntaxError{File: file, Line: num, Token: tok}
	}

	toks := tokenize(line)
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch st {
		case stateInitial:
			if strings.HasPrefix(tok, ";") {
				st = stateComment
				i = len(toks) // rest of line is comment text
				continue
			}
			sym.Name = tok
			st = stateName
		case stateName:
			if tok != "@" {
				return fail(tok)
			}
			st = stateAt
		case stateAt:
			ord, err := strconv.ParseUint(tok, 10, 32)
			if err != nil || ord == 0 {
				return fail(tok)
			}
			sym.Ordinal = uint32(ord)
			st = stateOrdinal
		case stateOrdinal, stateOptions:
			switch tok {
			case "NONAME":
				sym.NoName = true
			case "DATA":
				if i+1 >= len(toks) {
					return fail(tok)
				}
				i++
				size, err := strconv.ParseUint(toks[i], 10, 32)
				if err != nil {
					return fail(toks[i])
				}
				sym.Kind = symbol.Data
				sym.Size = uint32(size)
			case "R3UNUSED":
				sym.R3Unused = true
			case "ABSENT":
				sym.Absent = true
			default:
				if strings.HasPrefix(tok, ";") {
					sym.Comment = commentText(line)
					st = stateComment
					i = len(toks)
					continue
				}
				return fail(tok)
			}
			st = stateOptions
		}
	}

	switch st {
	case stateInitial:
		return nil, nil // blank line
	case stateComment:
		if sym.Name == "" {
			return nil, nil // pure comment line
		}
		return sym, nil
	case stateOrdinal, stateOptions:
		return sym, nil
	default:
		// line ended before the ordinal was seen
		return fail(line)
	}
}

// tokenize splits on whitespace but keeps a ';' and everything after it as
// a single token so comments survive as one unit.
func tokenize(line string) []string {
	if i := strings.Index(line, ";"); i >= 0 {
		head := strings.Fields(line[:i])
		return append(head, line[i:])
	}
	return strings.Fields(line)
}

// commentText extracts the text after the first ';', trimmed.
func commentText(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}
