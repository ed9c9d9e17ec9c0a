package pipeline

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hemicycle/pkg/cache"
	"github.com/matzehuels/hemicycle/pkg/config"
	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/core/results"
	"github.com/matzehuels/hemicycle/pkg/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("testdata/house.toml")
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func testRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestAllocateCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(t, fc)
	cfg := testConfig(t)

	first, stats, err := r.AllocateWithStats(ctx, cfg, Options{})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if stats.CacheHit {
		t.Error("first allocation should miss the cache")
	}

	second, stats, err := r.AllocateWithStats(ctx, cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !stats.CacheHit {
		t.Error("second allocation should hit the cache")
	}
	if Chart(first) != Chart(second) {
		t.Errorf("cached assignment differs:\n%s\n%s", Chart(first), Chart(second))
	}

	_, stats, err = r.AllocateWithStats(ctx, cfg, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestAllocateError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Entries[0].Seats = 2
	if _, err := testRunner(t, nil).Allocate(context.Background(), cfg, Options{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Allocate() error = %v, want INVALID_CONFIG", err)
	}
}

func TestChart(t *testing.T) {
	a, err := testRunner(t, nil).Allocate(context.Background(), testConfig(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := " 2  a b b c c c d d e e e\n" +
		" 1  b b b c c d e e e\n" +
		" 0  b b c d d e e\n"
	if got := Chart(a); got != want {
		t.Errorf("Chart() =\n%s\nwant\n%s", got, want)
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	a, err := testRunner(t, nil).Allocate(ctx, testConfig(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	data, err := Render(ctx, a, FormatJSON, nil)
	if err != nil {
		t.Fatal(err)
	}
	back, err := hemicycle.UnmarshalAssignment(data)
	if err != nil {
		t.Fatalf("UnmarshalAssignment() error = %v", err)
	}
	if Chart(back) != Chart(a) {
		t.Error("json output does not round-trip")
	}

	data, err = Render(ctx, a, FormatDOT, map[string]string{"a": "#0000ff"})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"graph G", `"a" -- "b"`, `"d" -- "e"`, "#0000ff"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("dot output missing %q", want)
		}
	}

	if _, err := Render(ctx, a, "png", nil); err == nil {
		t.Error("Render(png) should fail")
	}
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()
	b, err := testRunner(t, nil).Start(ctx, testConfig(t), Options{ID: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if b.ID != "test" {
		t.Errorf("ID = %q", b.ID)
	}
	if f := b.Frame(); f.Reporting != 0 || f.Seats != 27 || f.Title != "House" {
		t.Errorf("initial frame = %+v", f)
	}

	f, err := b.Apply(ctx, Update{Entry: "b", Party: "DEM"})
	if err != nil {
		t.Fatal(err)
	}
	if f.Left.Label != "0/7" || f.LeftChange.Label != "±0/+7" || f.LeftChange.Start != 1 {
		t.Errorf("left = %+v, change = %+v", f.Left, f.LeftChange)
	}

	f, err = b.Apply(ctx, Update{Entry: "e", Party: "GOP", Elected: true})
	if err != nil {
		t.Fatal(err)
	}
	if f.Right.Label != "8" || f.RightChange.Label != "±0" || f.Reporting != 15 {
		t.Errorf("right = %+v, change = %+v, reporting = %d", f.Right, f.RightChange, f.Reporting)
	}
	if r, _ := b.Result("e"); !results.Equal(r, results.Elected(results.Party{ID: "GOP"})) {
		t.Errorf("Result(e) = %+v", r)
	}

	f, err = b.Apply(ctx, Update{Entry: "e"})
	if err != nil {
		t.Fatal(err)
	}
	if f.Reporting != 7 || !f.Right.Seats.IsZero() {
		t.Errorf("after retraction reporting = %d, right = %v", f.Reporting, f.Right.Seats)
	}
}

func TestBroadcastRejects(t *testing.T) {
	ctx := context.Background()
	b, err := testRunner(t, nil).Start(ctx, testConfig(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		u    Update
		code errors.Code
	}{
		{"unknown entry", Update{Entry: "zz", Party: "DEM"}, errors.ErrCodeUnknownEntry},
		{"unknown party", Update{Entry: "a", Party: "LIB"}, errors.ErrCodeUnknownParty},
		{"missing entry", Update{Party: "DEM"}, errors.ErrCodeInvalidUpdate},
		{"elected nobody", Update{Entry: "a", Elected: true}, errors.ErrCodeInvalidUpdate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := b.Apply(ctx, tt.u)
			if !errors.Is(err, tt.code) {
				t.Errorf("Apply() error = %v, want %s", err, tt.code)
			}
			if f.Updates != 0 || b.Snapshot().Updates != 0 {
				t.Error("rejected update changed the broadcast")
			}
		})
	}
}

func TestUpdateState(t *testing.T) {
	tests := []struct {
		u    Update
		want results.State
	}{
		{Update{Entry: "a"}, results.NotReporting},
		{Update{Entry: "a", Party: "DEM"}, results.LeadingState},
		{Update{Entry: "a", Party: "DEM", Elected: true}, results.ElectedState},
	}
	for _, tt := range tests {
		if got := tt.u.State(); got != tt.want {
			t.Errorf("%+v.State() = %v, want %v", tt.u, got, tt.want)
		}
	}
}

func TestFills(t *testing.T) {
	ctx := context.Background()
	b, err := testRunner(t, nil).Start(ctx, testConfig(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	f, err := b.Apply(ctx, Update{Entry: "a", Party: "DEM", Elected: true})
	if err != nil {
		t.Fatal(err)
	}
	fills := Fills(f)
	if fills["a"] != "#0000ff" || fills["e"] != "#ffffff" {
		t.Errorf("Fills() = %v", fills)
	}
	if len(b.ID) != 36 {
		t.Errorf("generated ID %q is not a UUID", b.ID)
	}
}
