package frame

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/hemicycle/pkg/core/results"
	"github.com/matzehuels/hemicycle/pkg/errors"
)

// LeadingBlend is how far a leading colour is blended toward white.
const LeadingBlend = 0.5

var white = colorful.Color{R: 1, G: 1, B: 1}

// Palette holds the colours of a graphic. All colours are "#rrggbb" strings.
type Palette struct {
	// Parties maps party IDs to their colour. It takes precedence over the
	// colour carried by a result.
	Parties map[string]string `json:"parties"`

	// Left and Right colour the focus party bars.
	Left  string `json:"left"`
	Right string `json:"right"`

	// Other colours the middle bar and any party without a colour.
	Other string `json:"other"`

	// NotReporting fills the dots of races without a result.
	NotReporting string `json:"not_reporting"`
}

// Validate checks that every colour parses.
func (p Palette) Validate() error {
	named := map[string]string{
		"left":          p.Left,
		"right":         p.Right,
		"other":         p.Other,
		"not_reporting": p.NotReporting,
	}
	for id, c := range p.Parties {
		named["party "+id] = c
	}
	for name, c := range named {
		if _, err := colorful.Hex(c); err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "%s colour %q is not a #rrggbb value", name, c)
		}
	}
	return nil
}

// Party returns the colour for p.
func (p Palette) Party(party results.Party) string {
	if c, ok := p.Parties[party.ID]; ok {
		return c
	}
	if _, err := colorful.Hex(party.Color); err == nil {
		return party.Color
	}
	return p.Other
}

// Leading returns the shade of hex used for seats that are only leading.
// Unparseable input is returned unchanged.
func Leading(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return c.BlendRgb(white, LeadingBlend).Clamped().Hex()
}

// Fill returns the dot colour for a race whose current result is r.
func (p Palette) Fill(r *results.PartyResult) string {
	switch results.StateOf(r) {
	case results.NotReporting:
		return p.NotReporting
	case results.LeadingState:
		return Leading(p.Party(r.Party))
	}
	return p.Party(r.Party)
}
