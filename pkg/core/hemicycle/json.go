package hemicycle

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/hemicycle/pkg/errors"
)

// assignmentJSON is the serialized form of an Assignment.
type assignmentJSON struct {
	Rows       []int       `json:"rows"`
	Tiebreaker string      `json:"tiebreaker"`
	Entries    []Entry     `json:"entries"`
	Slots      []Placement `json:"slots"`
}

// MarshalJSON encodes the assignment with its rows, entries and row-major
// placements.
func (a *Assignment) MarshalJSON() ([]byte, error) {
	return json.Marshal(assignmentJSON{
		Rows:       a.grid.Rows(),
		Tiebreaker: a.tiebreaker.String(),
		Entries:    a.entries,
		Slots:      a.Slots(),
	})
}

// UnmarshalAssignment decodes an assignment written by MarshalJSON. The
// result is checked to cover every seat with the right number of seats per
// entry, but contiguity is not re-verified.
func UnmarshalAssignment(data []byte) (*Assignment, error) {
	var raw assignmentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode assignment")
	}
	t, err := ParseTiebreaker(raw.Tiebreaker)
	if err != nil {
		return nil, err
	}
	g, err := NewGrid(raw.Rows)
	if err != nil {
		return nil, err
	}
	if err := validateEntries(g, raw.Entries); err != nil {
		return nil, err
	}
	if len(raw.Slots) != g.Len() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "assignment has %d slots, grid has %d", len(raw.Slots), g.Len())
	}

	a := &Assignment{
		grid:       g,
		tiebreaker: t,
		entries:    raw.Entries,
		owner:      make([]int, g.Len()),
		index:      make(map[string]int, len(raw.Entries)),
		seatsOf:    make([][]Slot, len(raw.Entries)),
	}
	for pos, e := range raw.Entries {
		a.index[e.ID] = pos
	}
	for i := range a.owner {
		a.owner[i] = -1
	}
	for _, p := range raw.Slots {
		pos, ok := a.index[p.Entry]
		if !ok || !g.Contains(p.Slot) || a.owner[g.ordinal(p.Slot)] >= 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid placement %s -> %q", p.Slot, p.Entry)
		}
		a.owner[g.ordinal(p.Slot)] = pos
		a.seatsOf[pos] = append(a.seatsOf[pos], p.Slot)
	}
	for pos, e := range raw.Entries {
		if len(a.seatsOf[pos]) != e.seats() {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "entry %q has %d seats, want %d", e.ID, len(a.seatsOf[pos]), e.seats())
		}
		slices.SortFunc(a.seatsOf[pos], func(x, y Slot) int { return g.ordinal(x) - g.ordinal(y) })
	}
	return a, nil
}
