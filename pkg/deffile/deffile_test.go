package deffile

import (
	"strings"
	"testing"

	"github.com/bentokun/elf2e32/pkg/symbol"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []symbol.Symbol
	}{
		{
			name: "plain exports",
			text: "_ZN4CFoo3BarEv @ 1\n_ZN4CFoo3BazEv @ 2\n",
			want: []symbol.Symbol{
				{Name: "_ZN4CFoo3BarEv", Ordinal: 1},
				{Name: "_ZN4CFoo3BazEv", Ordinal: 2},
			},
		},
		{
			name: "all options",
			text: "_ZTV4CFoo @ 3 NONAME DATA 20 R3UNUSED ABSENT\n",
			want: []symbol.Symbol{
				{Name: "_ZTV4CFoo", Ordinal: 3, Kind: symbol.Data, Size: 20, NoName: true, R3Unused: true, Absent: true},
			},
		},
		{
			name: "trailing comment",
			text: "open @ 4 ; keep for binary compat\n",
			want: []symbol.Symbol{
				{Name: "open", Ordinal: 4, Comment: "keep for binary compat"},
			},
		},
		{
			name: "blank and comment lines skipped",
			text: "\n; frozen 2009-04-01\n\nopen @ 1\n",
			want: []symbol.Symbol{
				{Name: "open", Ordinal: 1},
			},
		},
		{
			name: "crlf input",
			text: "open @ 1\r\nclose @ 2\r\n",
			want: []symbol.Symbol{
				{Name: "open", Ordinal: 1},
				{Name: "close", Ordinal: 2},
			},
		},
		{
			name: "empty file",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.text), "test.def")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse() yielded %d symbols, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if *got[i] != tt.want[i] {
					t.Errorf("symbol %d = %+v, want %+v", i, *got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{name: "missing at", text: "open 1\n", line: 1},
		{name: "missing ordinal", text: "open @\n", line: 1},
		{name: "zero ordinal", text: "open @ 0\n", line: 1},
		{name: "non numeric ordinal", text: "open @ one\n", line: 1},
		{name: "unknown keyword", text: "open @ 1 FROZEN\n", line: 1},
		{name: "data without size", text: "open @ 1 DATA\n", line: 1},
		{name: "error on later line", text: "open @ 1\nclose @@ 2\n", line: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.text), "test.def")
			se, ok := err.(*SyntaxError)
			if !ok {
				t.Fatalf("Parse() error = %v, want *SyntaxError", err)
			}
			if se.Line != tt.line {
				t.Errorf("SyntaxError.Line = %d, want %d", se.Line, tt.line)
			}
			if se.File != "test.def" {
				t.Errorf("SyntaxError.File = %s", se.File)
			}
		})
	}
}

func TestParseDuplicateOrdinal(t *testing.T) {
	_, err := Parse([]byte("open @ 1\nclose @ 1\n"), "test.def")
	de, ok := err.(*DuplicateOrdinalError)
	if !ok {
		t.Fatalf("Parse() error = %v, want *DuplicateOrdinalError", err)
	}
	if de.Ordinal != 1 || de.Prev != "open" || de.Name != "close" {
		t.Errorf("DuplicateOrdinalError = %+v", de)
	}
}

func TestEmit(t *testing.T) {
	syms := []*symbol.Symbol{
		{Name: "b", Ordinal: 2, Absent: true},
		{Name: "a", Ordinal: 1},
		{Name: "v", Ordinal: 3, Kind: symbol.Data, Size: 16},
	}
	got := string(Emit(syms))
	want := "a @ 1\nb @ 2 ABSENT\nv @ 3 DATA 16\n"
	if got != want {
		t.Errorf("Emit() = %q, want %q", got, want)
	}
}

func TestEmitNewBlock(t *testing.T) {
	syms := []*symbol.Symbol{
		{Name: "a", Ordinal: 1},
		{Name: "c", Ordinal: 2, Status: symbol.New},
		{Name: "d", Ordinal: 3, Status: symbol.New},
	}
	got := string(Emit(syms))
	if !strings.Contains(got, "\n; NEW\nc @ 2\nd @ 3\n") {
		t.Errorf("Emit() missing NEW block header:\n%s", got)
	}
	// one standalone header line for the whole contiguous run
	if strings.Count(got, "; NEW") != 1 {
		t.Errorf("Emit() emitted more than one NEW marker:\n%s", got)
	}
}

func TestEmitMissing(t *testing.T) {
	syms := []*symbol.Symbol{
		{Name: "a", Ordinal: 1},
		{Name: "b", Ordinal: 2, Status: symbol.Missing},
	}
	got := string(Emit(syms))
	if !strings.Contains(got, "b @ 2 ; MISSING:") {
		t.Errorf("Emit() did not annotate missing symbol:\n%s", got)
	}
}

func TestRoundTrip(t *testing.T) {
	in := []*symbol.Symbol{
		{Name: "a", Ordinal: 1},
		{Name: "b", Ordinal: 2, Absent: true},
		{Name: "_ZTV4CFoo", Ordinal: 3, Kind: symbol.Data, Size: 20},
		{Name: "n", Ordinal: 4, NoName: true, R3Unused: true},
	}
	out, err := Parse(Emit(in), "roundtrip.def")
	if err != nil {
		t.Fatalf("Parse(Emit()) error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("round trip yielded %d symbols, want %d", len(out), len(in))
	}
	for i := range in {
		got, want := out[i], in[i]
		if got.Name != want.Name || got.Ordinal != want.Ordinal ||
			got.Kind != want.Kind || got.Size != want.Size ||
			got.Absent != want.Absent || got.NoName != want.NoName ||
			got.R3Unused != want.R3Unused {
			t.Errorf("symbol %d = %+v, want %+v", i, got, want)
		}
	}
}
