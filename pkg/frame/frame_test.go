package frame

import (
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/hemicycle/pkg/core/aggregate"
	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/core/results"
	"github.com/matzehuels/hemicycle/pkg/core/seatbar"
	"github.com/matzehuels/hemicycle/pkg/errors"
)

var (
	dem = results.Party{ID: "DEM", Color: "#0000ff"}
	gop = results.Party{ID: "GOP", Color: "#ff0000"}
	ind = results.Party{ID: "IND", Color: "#00ff00"}
)

func testPalette() Palette {
	return Palette{
		Parties:      map[string]string{"DEM": "#0000ff", "GOP": "#ff0000", "IND": "#00ff00"},
		Left:         "#0000ff",
		Right:        "#ff0000",
		Other:        "#ffff00",
		NotReporting: "#ffffff",
	}
}

func fixtureEntries() []results.Entry {
	return []results.Entry{
		{ID: "a", Seats: 1, Previous: dem},
		{ID: "b", Seats: 7, Previous: ind},
		{ID: "c", Seats: 6, Previous: ind},
		{ID: "d", Seats: 5, Previous: ind},
		{ID: "e", Seats: 8, Previous: gop},
	}
}

func newFixture(t *testing.T, opts ...Option) (*Builder, *aggregate.Aggregator) {
	t.Helper()
	entries := fixtureEntries()
	a, err := hemicycle.Allocate([]int{7, 9, 11}, results.Seating(entries), hemicycle.FrontRowFromRight)
	if err != nil {
		t.Fatal(err)
	}
	agg, err := aggregate.New(entries, results.Is("DEM"), results.Is("GOP"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBuilder(a, agg, testPalette(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return b, agg
}

func TestLeading(t *testing.T) {
	tests := []struct{ in, want string }{
		{"#0000ff", "#8080ff"},
		{"#ff0000", "#ff8080"},
		{"#00ff00", "#80ff80"},
		{"#ffff00", "#ffff80"},
		{"#ffffff", "#ffffff"},
		{"not a colour", "not a colour"},
	}
	for _, tt := range tests {
		if got := Leading(tt.in); got != tt.want {
			t.Errorf("Leading(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaletteParty(t *testing.T) {
	p := testPalette()
	tests := []struct {
		name  string
		party results.Party
		want  string
	}{
		{"palette wins", results.Party{ID: "DEM", Color: "#123456"}, "#0000ff"},
		{"own colour", results.Party{ID: "LIB", Color: "#123456"}, "#123456"},
		{"no colour", results.Party{ID: "LIB"}, "#ffff00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Party(tt.party); got != tt.want {
				t.Errorf("Party() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPaletteValidate(t *testing.T) {
	p := testPalette()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	p.NotReporting = ""
	if err := p.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
	}
	p = testPalette()
	p.Parties["XYZ"] = "blue"
	if err := p.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
	}
}

func TestBuildFixture(t *testing.T) {
	built := time.Date(2024, 11, 5, 23, 0, 0, 0, time.UTC)
	b, agg := newFixture(t, WithTitle("House"), WithClock(func() time.Time { return built }))

	agg.Update("a", results.Elected(dem))
	agg.Update("b", results.Leading(dem))
	agg.Update("c", results.Elected(ind))
	agg.Update("d", results.Leading(gop))
	agg.Update("e", results.Elected(gop))

	f, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	wantDots := []Dot{
		{0, 0, "b", "#8080ff", "#00ff00"},
		{0, 1, "b", "#8080ff", "#00ff00"},
		{0, 2, "c", "#00ff00", "#00ff00"},
		{0, 3, "d", "#ff8080", "#00ff00"},
		{0, 4, "d", "#ff8080", "#00ff00"},
		{0, 5, "e", "#ff0000", "#ff0000"},
		{0, 6, "e", "#ff0000", "#ff0000"},
		{1, 0, "b", "#8080ff", "#00ff00"},
		{1, 1, "b", "#8080ff", "#00ff00"},
		{1, 2, "b", "#8080ff", "#00ff00"},
		{1, 3, "c", "#00ff00", "#00ff00"},
		{1, 4, "c", "#00ff00", "#00ff00"},
		{1, 5, "d", "#ff8080", "#00ff00"},
		{1, 6, "e", "#ff0000", "#ff0000"},
		{1, 7, "e", "#ff0000", "#ff0000"},
		{1, 8, "e", "#ff0000", "#ff0000"},
		{2, 0, "a", "#0000ff", "#0000ff"},
		{2, 1, "b", "#8080ff", "#00ff00"},
		{2, 2, "b", "#8080ff", "#00ff00"},
		{2, 3, "c", "#00ff00", "#00ff00"},
		{2, 4, "c", "#00ff00", "#00ff00"},
		{2, 5, "c", "#00ff00", "#00ff00"},
		{2, 6, "d", "#ff8080", "#00ff00"},
		{2, 7, "d", "#ff8080", "#00ff00"},
		{2, 8, "e", "#ff0000", "#ff0000"},
		{2, 9, "e", "#ff0000", "#ff0000"},
		{2, 10, "e", "#ff0000", "#ff0000"},
	}
	if !slices.Equal(f.Dots, wantDots) {
		for i := range f.Dots {
			if i < len(wantDots) && f.Dots[i] != wantDots[i] {
				t.Errorf("dot %d = %+v, want %+v", i, f.Dots[i], wantDots[i])
			}
		}
		t.Fatalf("got %d dots, want %d", len(f.Dots), len(wantDots))
	}

	bars := []struct {
		name string
		got  Bar
		want []seatbar.Segment
		lbl  string
	}{
		{"left", f.Left, []seatbar.Segment{{Color: "#0000ff", Size: 1}, {Color: "#8080ff", Size: 7}}, "1/8"},
		{"right", f.Right, []seatbar.Segment{{Color: "#ff0000", Size: 8}, {Color: "#ff8080", Size: 5}}, "8/13"},
		{"middle", f.Middle, []seatbar.Segment{{Color: "#ffff00", Size: 6}, {Color: "#ffff80", Size: 0}}, "6"},
	}
	for _, bb := range bars {
		if !slices.Equal(bb.got.Segments, bb.want) {
			t.Errorf("%s segments = %v, want %v", bb.name, bb.got.Segments, bb.want)
		}
		if bb.got.Label != bb.lbl {
			t.Errorf("%s label = %q, want %q", bb.name, bb.got.Label, bb.lbl)
		}
	}

	changes := []struct {
		name  string
		got   ChangeBar
		start int
		want  []seatbar.Segment
		lbl   string
	}{
		{"left change", f.LeftChange, 1, []seatbar.Segment{{Color: "#0000ff", Size: 0}, {Color: "#8080ff", Size: 7}}, "±0/+7"},
		{"right change", f.RightChange, 8, []seatbar.Segment{{Color: "#ff0000", Size: 0}, {Color: "#ff8080", Size: 5}}, "±0/+5"},
	}
	for _, c := range changes {
		if c.got.Start != c.start {
			t.Errorf("%s start = %d, want %d", c.name, c.got.Start, c.start)
		}
		if !slices.Equal(c.got.Segments, c.want) {
			t.Errorf("%s segments = %v, want %v", c.name, c.got.Segments, c.want)
		}
		if c.got.Label != c.lbl {
			t.Errorf("%s label = %q, want %q", c.name, c.got.Label, c.lbl)
		}
	}

	if f.Title != "House" || !f.BuiltAt.Equal(built) {
		t.Errorf("title/time = %q %v", f.Title, f.BuiltAt)
	}
	if f.Reporting != 27 || f.Seats != 27 || f.Updates != 5 {
		t.Errorf("progress = %d/%d after %d updates", f.Reporting, f.Seats, f.Updates)
	}
}

func TestBuildNotReporting(t *testing.T) {
	b, _ := newFixture(t)
	f, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range f.Dots {
		if d.Fill != "#ffffff" {
			t.Fatalf("dot %d:%d fill = %s, want not-reporting white", d.Row, d.Index, d.Fill)
		}
	}
	if f.Left.Label != "0" || f.LeftChange.Label != "±0" {
		t.Errorf("labels = %q, %q", f.Left.Label, f.LeftChange.Label)
	}
	if f.LeftChange.Start != 1 || f.RightChange.Start != 8 {
		t.Errorf("change starts = %d, %d, want 1, 8", f.LeftChange.Start, f.RightChange.Start)
	}
}

func TestBuildIsSnapshot(t *testing.T) {
	b, agg := newFixture(t)
	before, _ := b.Build()
	agg.Update("e", results.Elected(gop))
	after, _ := b.Build()

	d, _ := before.Dot(hemicycle.Slot{Row: 0, Index: 6})
	if d.Fill != "#ffffff" {
		t.Errorf("earlier frame changed: %+v", d)
	}
	d, _ = after.Dot(hemicycle.Slot{Row: 0, Index: 6})
	if d.Fill != "#ff0000" {
		t.Errorf("new frame fill = %s, want #ff0000", d.Fill)
	}
	if _, ok := after.Dot(hemicycle.Slot{Row: 5, Index: 0}); ok {
		t.Error("Dot(5:0) should not exist")
	}
}

func TestCustomLabels(t *testing.T) {
	pct := func(a aggregate.ElectedLeading) string { return "custom" }
	b, _ := newFixture(t, WithSeatLabel(pct), WithChangeLabel(pct))
	f, _ := b.Build()
	if f.Middle.Label != "custom" || f.RightChange.Label != "custom" {
		t.Errorf("labels = %q, %q", f.Middle.Label, f.RightChange.Label)
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		agg          aggregate.ElectedLeading
		seat, change string
	}{
		{aggregate.ElectedLeading{}, "0", "±0"},
		{aggregate.ElectedLeading{Elected: 8, Total: 13}, "8/13", "+8/+13"},
		{aggregate.ElectedLeading{Elected: 30, Total: 30}, "30", "+30"},
		{aggregate.ElectedLeading{Elected: -30, Total: -30}, "-30/-30", "-30"},
		{aggregate.ElectedLeading{Elected: 0, Total: -30}, "0/-30", "±0/-30"},
	}
	for _, tt := range tests {
		if got := ChangeLabel(tt.agg); got != tt.change {
			t.Errorf("ChangeLabel(%v) = %q, want %q", tt.agg, got, tt.change)
		}
		if tt.agg.Valid() {
			if got := SeatLabel(tt.agg); got != tt.seat {
				t.Errorf("SeatLabel(%v) = %q, want %q", tt.agg, got, tt.seat)
			}
		}
	}
}
