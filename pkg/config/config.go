// Package config loads broadcast configuration files.
//
// A configuration describes one graphic: the seat rows of the chart, the
// parties and which side of the chart they belong to, and every entry with
// its seat count and previous owner. Files may be TOML, YAML or JSON; the
// format is chosen by file extension.
//
// A minimal TOML file:
//
//	title = "House"
//	rows  = [3]
//
//	[[party]]
//	id    = "DEM"
//	color = "#0000ff"
//	side  = "left"
//
//	[[party]]
//	id    = "GOP"
//	color = "#ff0000"
//	side  = "right"
//
//	[[entry]]
//	id       = "ak"
//	seats    = 3
//	previous = "GOP"
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/hemicycle/pkg/cache"
	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/core/results"
	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/frame"
)

// Sides a party can sit on.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Defaults applied by [Load] and [Parse].
const (
	DefaultOtherLabel        = "Other"
	DefaultOtherColor        = "#999999"
	DefaultNotReportingColor = "#e0e0e0"
)

// Format is a configuration file format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported config format: %s", path)
}

// Config is a broadcast configuration.
type Config struct {
	Title             string  `toml:"title" yaml:"title" json:"title,omitempty"`
	Rows              []int   `toml:"rows" yaml:"rows" json:"rows"`
	Tiebreak          string  `toml:"tiebreak" yaml:"tiebreak" json:"tiebreak,omitempty"`
	Parties           []Party `toml:"party" yaml:"parties" json:"parties"`
	Other             Other   `toml:"other" yaml:"other" json:"other"`
	NotReportingColor string  `toml:"not_reporting_color" yaml:"not_reporting_color" json:"not_reporting_color,omitempty"`
	Entries           []Entry `toml:"entry" yaml:"entries" json:"entries"`
}

// Party is a party as configured.
type Party struct {
	ID    string `toml:"id" yaml:"id" json:"id"`
	Name  string `toml:"name" yaml:"name" json:"name,omitempty"`
	Color string `toml:"color" yaml:"color" json:"color"`
	Side  string `toml:"side" yaml:"side" json:"side,omitempty"`
}

// Other configures the middle bar.
type Other struct {
	Label string `toml:"label" yaml:"label" json:"label,omitempty"`
	Color string `toml:"color" yaml:"color" json:"color,omitempty"`
}

// Entry is a race as configured. Previous is a party ID.
type Entry struct {
	ID       string `toml:"id" yaml:"id" json:"id"`
	Name     string `toml:"name" yaml:"name" json:"name,omitempty"`
	Seats    int    `toml:"seats" yaml:"seats" json:"seats,omitempty"`
	Previous string `toml:"previous" yaml:"previous" json:"previous"`
}

// Load reads, parses and validates the configuration at path.
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	case FormatJSON:
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s config", format)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Other.Label == "" {
		c.Other.Label = DefaultOtherLabel
	}
	if c.Other.Color == "" {
		c.Other.Color = DefaultOtherColor
	}
	if c.NotReportingColor == "" {
		c.NotReportingColor = DefaultNotReportingColor
	}
}

// Validate checks the configuration for consistency. Seat totals are checked
// too, so a valid configuration always allocates unless no contiguous layout
// exists.
func (c *Config) Validate() error {
	if len(c.Rows) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "no rows configured")
	}
	rowSeats := 0
	for i, n := range c.Rows {
		if n < 1 {
			return errors.New(errors.ErrCodeInvalidConfig, "row %d has %d seats", i, n)
		}
		rowSeats += n
	}
	if _, err := hemicycle.ParseTiebreaker(c.Tiebreak); err != nil {
		return err
	}

	parties := make(map[string]bool, len(c.Parties))
	var hasLeft, hasRight bool
	for _, p := range c.Parties {
		if err := errors.ValidateID("party", p.ID); err != nil {
			return err
		}
		if parties[p.ID] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate party %q", p.ID)
		}
		parties[p.ID] = true
		if err := validColor("party "+p.ID, p.Color); err != nil {
			return err
		}
		switch p.Side {
		case SideLeft:
			hasLeft = true
		case SideRight:
			hasRight = true
		case "":
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "party %q: side must be %q, %q or empty, got %q",
				p.ID, SideLeft, SideRight, p.Side)
		}
	}
	if !hasLeft || !hasRight {
		return errors.New(errors.ErrCodeInvalidConfig, "need at least one party on each side")
	}
	if err := validColor("other", c.Other.Color); err != nil {
		return err
	}
	if err := validColor("not_reporting", c.NotReportingColor); err != nil {
		return err
	}

	entries := make(map[string]bool, len(c.Entries))
	entrySeats := 0
	for _, e := range c.Entries {
		if err := errors.ValidateID("entry", e.ID); err != nil {
			return err
		}
		if entries[e.ID] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate entry %q", e.ID)
		}
		entries[e.ID] = true
		if e.Seats < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "entry %q has negative seat count %d", e.ID, e.Seats)
		}
		if e.Previous != "" && !parties[e.Previous] {
			return errors.New(errors.ErrCodeUnknownParty, "entry %q: unknown previous party %q", e.ID, e.Previous)
		}
		entrySeats += max(e.Seats, 1)
	}
	if entrySeats != rowSeats {
		return errors.New(errors.ErrCodeInvalidConfig, "rows hold %d seats but entries require %d", rowSeats, entrySeats)
	}
	return nil
}

func validColor(name, hex string) error {
	if _, err := colorful.Hex(hex); err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "%s colour %q is not a #rrggbb value", name, hex)
	}
	return nil
}

// Tiebreaker returns the configured tiebreaker. Invalid values yield the
// default; call [Config.Validate] first.
func (c *Config) Tiebreaker() hemicycle.Tiebreaker {
	t, _ := hemicycle.ParseTiebreaker(c.Tiebreak)
	return t
}

// Party returns the party with the given ID.
func (c *Config) Party(id string) (results.Party, bool) {
	for _, p := range c.Parties {
		if p.ID == id {
			return results.Party{ID: p.ID, Name: p.Name, Color: p.Color}, true
		}
	}
	return results.Party{}, false
}

// Filters returns filters matching the parties on the left and on the right.
func (c *Config) Filters() (left, right results.Filter) {
	var l, r []string
	for _, p := range c.Parties {
		switch p.Side {
		case SideLeft:
			l = append(l, p.ID)
		case SideRight:
			r = append(r, p.ID)
		}
	}
	return results.Is(l...), results.Is(r...)
}

// ResultEntries returns the entries with their previous parties resolved, in
// configuration order.
func (c *Config) ResultEntries() []results.Entry {
	out := make([]results.Entry, len(c.Entries))
	for i, e := range c.Entries {
		prev, _ := c.Party(e.Previous)
		out[i] = results.Entry{ID: e.ID, Name: e.Name, Seats: e.Seats, Previous: prev}
	}
	return out
}

// Seats returns the total number of seats of the chart.
func (c *Config) Seats() int {
	n := 0
	for _, r := range c.Rows {
		n += r
	}
	return n
}

// Palette returns the colours of the graphic. The bar colour of each side is
// the colour of the first party on that side.
func (c *Config) Palette() frame.Palette {
	p := frame.Palette{
		Parties:      make(map[string]string, len(c.Parties)),
		Other:        c.Other.Color,
		NotReporting: c.NotReportingColor,
	}
	for _, party := range c.Parties {
		p.Parties[party.ID] = party.Color
		switch {
		case party.Side == SideLeft && p.Left == "":
			p.Left = party.Color
		case party.Side == SideRight && p.Right == "":
			p.Right = party.Color
		}
	}
	return p
}

// Hash returns a stable content hash of everything that affects the seat
// layout: rows, tiebreaker and entry seats in order.
func (c *Config) Hash() string {
	data, _ := json.Marshal(struct {
		Rows     []int
		Tiebreak string
		Entries  []hemicycle.Entry
	}{c.Rows, c.Tiebreaker().String(), results.Seating(c.ResultEntries())})
	return cache.Hash(data)
}
