package symbol

import (
	"testing"
)

func TestDeriveKind(t *testing.T) {
	tests := []struct {
		name string
		sym  string
		want Kind
	}{
		{
			name: "vtable is data",
			sym:  "_ZTV7CActive",
			want: Data,
		},
		{
			name: "typeinfo is data",
			sym:  "_ZTI7CActive",
			want: Data,
		},
		{
			name: "typeinfo name is data",
			sym:  "_ZTS7CActive",
			want: Data,
		},
		{
			name: "member function is code",
			sym:  "_ZN7CActive5StartEv",
			want: Code,
		},
		{
			name: "plain C name is code",
			sym:  "open",
			want: Code,
		},
		{
			name: "prefix must anchor at start",
			sym:  "x_ZTV7CActive",
			want: Code,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveKind(tt.sym); got != tt.want {
				t.Errorf("DeriveKind(%q) = %v, want %v", tt.sym, got, tt.want)
			}
		})
	}
}

func TestNonCallable(t *testing.T) {
	tests := []struct {
		sym  string
		want bool
	}{
		{"_ZTI7CActive", true},
		{"_ZTV7CActive", true},
		{"_ZTS7CActive", false}, // typeinfo names stay callable-filter exempt
		{"_ZN7CActive5StartEv", false},
	}
	for _, tt := range tests {
		if got := NonCallable(tt.sym); got != tt.want {
			t.Errorf("NonCallable(%q) = %v, want %v", tt.sym, got, tt.want)
		}
	}
}

func syms(names ...string) []*Symbol {
	out := make([]*Symbol, len(names))
	for i, n := range names {
		out[i] = &Symbol{Name: n}
	}
	return out
}

func names(in []*Symbol) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.Name
	}
	return out
}

func equalNames(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNameDifference(t *testing.T) {
	tests := []struct {
		name string
		a    []*Symbol
		b    []*Symbol
		want []string
	}{
		{
			name: "left only survives",
			a:    syms("a", "b", "c"),
			b:    syms("b", "c", "d"),
			want: []string{"a"},
		},
		{
			name: "empty right",
			a:    syms("a", "b"),
			b:    nil,
			want: []string{"a", "b"},
		},
		{
			name: "identical sets",
			a:    syms("a", "b"),
			b:    syms("a", "b"),
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NameDifference(tt.a, tt.b, nil)
			if !equalNames(names(got), tt.want) {
				t.Errorf("NameDifference() = %v, want %v", names(got), tt.want)
			}
		})
	}
}

func TestNameDifferenceMerge(t *testing.T) {
	a := []*Symbol{{Name: "a"}, {Name: "b"}}
	b := []*Symbol{{Name: "b", Value: 0x8040, Size: 4}}
	NameDifference(a, b, func(x, y *Symbol) {
		x.Value = y.Value
		x.Size = y.Size
	})
	if a[1].Value != 0x8040 || a[1].Size != 4 {
		t.Errorf("merge did not carry attributes: %+v", a[1])
	}
	if a[0].Value != 0 {
		t.Errorf("merge touched non-matching symbol: %+v", a[0])
	}
}

func TestNameIntersection(t *testing.T) {
	got := NameIntersection(syms("a", "b", "d"), syms("b", "c", "d"), nil)
	if !equalNames(names(got), []string{"b", "d"}) {
		t.Errorf("NameIntersection() = %v", names(got))
	}
}

func TestMaxOrdinal(t *testing.T) {
	in := []*Symbol{{Name: "a", Ordinal: 3}, {Name: "b", Ordinal: 1}}
	if got := MaxOrdinal(in); got != 3 {
		t.Errorf("MaxOrdinal() = %d, want 3", got)
	}
	if got := MaxOrdinal(nil); got != 0 {
		t.Errorf("MaxOrdinal(nil) = %d, want 0", got)
	}
}

func TestSortByOrdinal(t *testing.T) {
	in := []*Symbol{{Name: "b", Ordinal: 2}, {Name: "a", Ordinal: 1}, {Name: "c", Ordinal: 3}}
	SortByOrdinal(in)
	if !equalNames(names(in), []string{"a", "b", "c"}) {
		t.Errorf("SortByOrdinal() = %v", names(in))
	}
}
