package config

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/core/results"
	"github.com/matzehuels/hemicycle/pkg/errors"
)

func TestLoadFormats(t *testing.T) {
	var configs []*Config
	for _, name := range []string{"house.toml", "house.yaml", "house.json"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Title != "House" || cfg.Seats() != 27 || len(cfg.Entries) != 5 {
				t.Errorf("unexpected config: %+v", cfg)
			}
			if cfg.Tiebreaker() != hemicycle.FrontRowFromRight {
				t.Errorf("Tiebreaker() = %v", cfg.Tiebreaker())
			}
			configs = append(configs, cfg)
		})
	}
	for i := 1; i < len(configs); i++ {
		if !reflect.DeepEqual(configs[0], configs[i]) {
			t.Errorf("config %d differs from TOML:\n%+v\n%+v", i, configs[0], configs[i])
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("testdata/missing.toml"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load("testdata/house.ini"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(ini) error = %v, want INVALID_FORMAT", err)
	}
	if _, err := Parse([]byte("rows = ["), FormatTOML); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Parse(bad toml) error = %v, want INVALID_CONFIG", err)
	}
}

const base = `
rows = [3]
[[party]]
id = "L"
color = "#0000ff"
side = "left"
[[party]]
id = "R"
color = "#ff0000"
side = "right"
`

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		toml string
		code errors.Code
	}{
		{"valid", base + `
[[entry]]
id = "x"
seats = 3
previous = "L"
`, ""},
		{"default seat count", base + `
[[entry]]
id = "x"
[[entry]]
id = "y"
[[entry]]
id = "z"
`, ""},
		{"seat mismatch", base + `
[[entry]]
id = "x"
seats = 2
`, errors.ErrCodeInvalidConfig},
		{"unknown previous", base + `
[[entry]]
id = "x"
seats = 3
previous = "Q"
`, errors.ErrCodeUnknownParty},
		{"duplicate entry", base + `
[[entry]]
id = "x"
seats = 2
[[entry]]
id = "x"
`, errors.ErrCodeInvalidConfig},
		{"bad colour", strings.Replace(base, "#0000ff", "blue", 1) + `
[[entry]]
id = "x"
seats = 3
`, errors.ErrCodeInvalidConfig},
		{"bad side", strings.Replace(base, `side = "left"`, `side = "centre"`, 1) + `
[[entry]]
id = "x"
seats = 3
`, errors.ErrCodeInvalidConfig},
		{"missing right side", strings.Replace(base, `side = "right"`, ``, 1) + `
[[entry]]
id = "x"
seats = 3
`, errors.ErrCodeInvalidConfig},
		{"bad tiebreak", `tiebreak = "middle"` + base + `
[[entry]]
id = "x"
seats = 3
`, errors.ErrCodeInvalidConfig},
		{"empty row", strings.Replace(base, "rows = [3]", "rows = [3, 0]", 1), errors.ErrCodeInvalidConfig},
		{"no rows", strings.Replace(base, "rows = [3]", "", 1), errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml), FormatTOML)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Parse() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte(base+"[[entry]]\nid = \"x\"\nseats = 3\n"), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Other.Label != DefaultOtherLabel || cfg.Other.Color != DefaultOtherColor {
		t.Errorf("other = %+v", cfg.Other)
	}
	if cfg.NotReportingColor != DefaultNotReportingColor {
		t.Errorf("not reporting = %q", cfg.NotReportingColor)
	}
}

func TestFiltersAndEntries(t *testing.T) {
	cfg, err := Load("testdata/house.toml")
	if err != nil {
		t.Fatal(err)
	}
	left, right := cfg.Filters()
	if !left(&results.Party{ID: "DEM"}) || left(&results.Party{ID: "GOP"}) {
		t.Error("left filter should match DEM only")
	}
	if !right(&results.Party{ID: "GOP"}) || right(&results.Party{ID: "IND"}) {
		t.Error("right filter should match GOP only")
	}

	entries := cfg.ResultEntries()
	if entries[4].Previous.Color != "#ff0000" || entries[4].Seats != 8 {
		t.Errorf("entry e = %+v", entries[4])
	}
	if _, ok := cfg.Party("LIB"); ok {
		t.Error("Party(LIB) should not exist")
	}
}

func TestPalette(t *testing.T) {
	cfg, err := Load("testdata/house.toml")
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.Palette()
	if p.Left != "#0000ff" || p.Right != "#ff0000" || p.Other != "#ffff00" || p.NotReporting != "#ffffff" {
		t.Errorf("Palette() = %+v", p)
	}
	if p.Parties["IND"] != "#00ff00" {
		t.Errorf("IND colour = %q", p.Parties["IND"])
	}
	if err := p.Validate(); err != nil {
		t.Errorf("palette invalid: %v", err)
	}
}

func TestHash(t *testing.T) {
	a, _ := Load("testdata/house.toml")
	b, _ := Load("testdata/house.yaml")
	if a.Hash() != b.Hash() {
		t.Error("equal layouts should hash equally")
	}

	b.Title = "Senate"
	b.Parties[0].Color = "#000080"
	if a.Hash() != b.Hash() {
		t.Error("title and colours should not affect the hash")
	}

	b.Tiebreak = "front-row-from-left"
	if a.Hash() == b.Hash() {
		t.Error("tiebreak should affect the hash")
	}
}
