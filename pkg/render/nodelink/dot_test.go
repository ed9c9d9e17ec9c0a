package nodelink

import (
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
)

func fixture(t *testing.T) *hemicycle.Assignment {
	t.Helper()
	a, err := hemicycle.Allocate([]int{7, 9, 11}, []hemicycle.Entry{
		{ID: "a", Seats: 1},
		{ID: "b", Seats: 7},
		{ID: "c", Seats: 6},
		{ID: "d", Seats: 5},
		{ID: "e", Seats: 8},
	}, hemicycle.FrontRowFromRight)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestLinks(t *testing.T) {
	// Chart (front row first): bbcddee / bbbccdeee / abbcccddeee
	got := Links(fixture(t))
	want := []Link{
		{"a", "b"},
		{"b", "c"},
		{"c", "d"},
		{"d", "e"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Links() = %v, want %v", got, want)
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(fixture(t), Options{})

	if !strings.Contains(dot, "graph G") {
		t.Error("ToDOT() output missing graph declaration")
	}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		if !strings.Contains(dot, `"`+id+`" [label="`+id+`"]`) {
			t.Errorf("ToDOT() output missing node %s", id)
		}
	}
	if !strings.Contains(dot, `"a" -- "b"`) {
		t.Error("ToDOT() output missing edge")
	}
	if strings.Contains(dot, `"a" -- "e"`) {
		t.Error("ToDOT() output links entries that do not touch")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(fixture(t), Options{Detailed: true})
	if !strings.Contains(dot, `seats: 5\n0:3 0:4 1:5 2:6 2:7`) {
		t.Errorf("ToDOT() detailed output missing seat list:\n%s", dot)
	}
}

func TestToDOT_Fills(t *testing.T) {
	dot := ToDOT(fixture(t), Options{Fills: map[string]string{"e": "#ff0000"}})
	if !strings.Contains(dot, `"e" [label="e", fillcolor="#ff0000"]`) {
		t.Errorf("ToDOT() output missing fill:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 62.00 44.00" width="62" height="44"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("input without viewBox changed: %s", got)
	}
}
