package elfview

import (
	"testing"

	"github.com/bentokun/elf2e32/pkg/symbol"
)

func TestViewExportsSorted(t *testing.T) {
	v := NewView([]*symbol.Symbol{
		{Name: "zed"}, {Name: "alpha"}, {Name: "mid"},
	}, 0x100, 0x8000)
	got := v.Exports()
	want := []string{"alpha", "mid", "zed"}
	for i, n := range want {
		if got[i].Name != n {
			t.Fatalf("exports[%d] = %s, want %s", i, got[i].Name, n)
		}
	}
}

func TestViewFilter(t *testing.T) {
	a := &symbol.Symbol{Name: "a"}
	b := &symbol.Symbol{Name: "b"}
	v := NewView([]*symbol.Symbol{a, b}, 0, 0)

	v.Filter(v.Exports()[1])
	if len(v.Filtered()) != 1 {
		t.Fatalf("Filtered() = %d entries", len(v.Filtered()))
	}
	// iteration stays stable until ApplyFilter
	if len(v.Exports()) != 2 {
		t.Fatalf("Exports() shrank before ApplyFilter")
	}
	v.ApplyFilter()
	if len(v.Exports()) != 1 || v.Exports()[0].Name != "a" {
		t.Errorf("Exports() after ApplyFilter = %v", v.Exports())
	}
}

func TestViewRegister(t *testing.T) {
	a := &symbol.Symbol{Name: "a", Ordinal: 2}
	v := NewView([]*symbol.Symbol{a}, 0, 0)
	v.Register(&symbol.Symbol{Name: "zz", Ordinal: 1, Absent: true})

	// registered symbols join the name-sorted export list
	got := v.Exports()
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "zz" {
		t.Errorf("Exports() after Register = %v", got)
	}
}

func TestViewIsDLL(t *testing.T) {
	v := NewView(nil, 0, 0)
	if v.IsDLL() {
		t.Error("empty view claims to be a DLL")
	}
	v.SetStatic("_E32Dll", 0x8000)
	if !v.IsDLL() {
		t.Error("_E32Dll static symbol not detected")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("testdata/does-not-exist.so")
	if _, ok := err.(*ReadError); !ok {
		t.Errorf("Open() error = %v, want *ReadError", err)
	}
}
