package hemicycle

import (
	"slices"

	"github.com/matzehuels/hemicycle/pkg/errors"
)

// Entry is one allocation request: an identifier and the number of seats it
// occupies. Seats of zero is treated as one.
type Entry struct {
	ID    string `json:"id"`
	Seats int    `json:"seats"`
}

// seats returns the effective seat count of e.
func (e Entry) seats() int {
	if e.Seats == 0 {
		return 1
	}
	return e.Seats
}

// Placement pairs a seat with the entry that owns it.
type Placement struct {
	Slot  Slot   `json:"slot"`
	Entry string `json:"entry"`
}

// Assignment is the immutable mapping from seats to entries produced by
// [Allocate].
type Assignment struct {
	grid       *Grid
	tiebreaker Tiebreaker
	entries    []Entry
	owner      []int          // row-major slot ordinal -> entry position
	index      map[string]int // entry ID -> entry position
	seatsOf    [][]Slot       // entry position -> slots in row-major order
}

// Allocate assigns every seat of the chart described by rows to the given
// entries, keeping each entry's seats contiguous.
//
// Entries are placed in the order given. For each entry, seats are taken from
// the consumption order (see [Grid.ConsumptionOrder]): the first free seat, then
// repeatedly the first free seat touching one already taken for that entry. If
// the block cannot grow to the entry's size, the seats picked so far are set
// aside for this entry and the search restarts from the next free seat.
//
// Allocate fails with an INVALID_CONFIG error when the rows are malformed, an
// entry is malformed, or the seat totals of rows and entries differ, and with an
// ALLOCATION_FAILED error when an entry cannot be placed contiguously. No
// partial assignment is ever returned.
func Allocate(rows []int, entries []Entry, t Tiebreaker) (*Assignment, error) {
	g, err := NewGrid(rows)
	if err != nil {
		return nil, err
	}
	return AllocateGrid(g, entries, t)
}

// AllocateGrid is [Allocate] over an existing grid.
func AllocateGrid(g *Grid, entries []Entry, t Tiebreaker) (*Assignment, error) {
	if err := validateEntries(g, entries); err != nil {
		return nil, err
	}

	a := &Assignment{
		grid:       g,
		tiebreaker: t,
		entries:    slices.Clone(entries),
		owner:      make([]int, g.Len()),
		index:      make(map[string]int, len(entries)),
		seatsOf:    make([][]Slot, len(entries)),
	}
	for i := range a.owner {
		a.owner[i] = -1
	}

	order := g.ConsumptionOrder(t)
	for pos, e := range entries {
		a.index[e.ID] = pos
		picked, err := a.place(order, e)
		if err != nil {
			return nil, err
		}
		for _, s := range picked {
			a.owner[g.ordinal(s)] = pos
		}
		slices.SortFunc(picked, func(x, y Slot) int { return g.ordinal(x) - g.ordinal(y) })
		a.seatsOf[pos] = picked
	}

	return a, nil
}

// place picks a contiguous block of seats for e from the free seats of order.
func (a *Assignment) place(order []Slot, e Entry) ([]Slot, error) {
	k := e.seats()
	selected := make([]Slot, 0, k)
	inSelected := make(map[Slot]bool, k)
	rejected := make(map[Slot]bool)

	for len(selected) < k {
		next, ok := a.nextCandidate(order, selected, inSelected, rejected)
		if ok {
			selected = append(selected, next)
			inSelected[next] = true
			continue
		}
		if len(selected) == 0 {
			return nil, errors.New(errors.ErrCodeAllocation,
				"entry %q: no contiguous block of %d seats available", e.ID, k)
		}
		for _, s := range selected {
			rejected[s] = true
		}
		selected = selected[:0]
		clear(inSelected)
	}
	return selected, nil
}

// nextCandidate scans the consumption order for the first seat that is free,
// not rejected, and either starts a block or touches the current one.
func (a *Assignment) nextCandidate(order, selected []Slot, inSelected, rejected map[Slot]bool) (Slot, bool) {
	for _, s := range order {
		if a.owner[a.grid.ordinal(s)] >= 0 || rejected[s] || inSelected[s] {
			continue
		}
		if len(selected) == 0 {
			return s, true
		}
		for _, t := range selected {
			if a.grid.Adjacent(s, t) {
				return s, true
			}
		}
	}
	return Slot{}, false
}

// validateEntries checks entry IDs and seat counts against the grid.
func validateEntries(g *Grid, entries []Entry) error {
	seen := make(map[string]bool, len(entries))
	total := 0
	for _, e := range entries {
		if err := errors.ValidateID("entry", e.ID); err != nil {
			return err
		}
		if seen[e.ID] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate entry %q", e.ID)
		}
		seen[e.ID] = true
		if e.Seats < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "entry %q has negative seat count %d", e.ID, e.Seats)
		}
		total += e.seats()
	}
	if total != g.Len() {
		return errors.New(errors.ErrCodeInvalidConfig,
			"rows hold %d seats but entries require %d", g.Len(), total)
	}
	return nil
}

// Grid returns the grid the assignment was built on.
func (a *Assignment) Grid() *Grid { return a.grid }

// Tiebreaker returns the tiebreaker used to build the assignment.
func (a *Assignment) Tiebreaker() Tiebreaker { return a.tiebreaker }

// Entries returns a copy of the entries in allocation order.
func (a *Assignment) Entries() []Entry { return slices.Clone(a.entries) }

// At returns the ID of the entry owning s.
func (a *Assignment) At(s Slot) (string, bool) {
	if !a.grid.Contains(s) {
		return "", false
	}
	return a.entries[a.owner[a.grid.ordinal(s)]].ID, true
}

// Slots returns every seat with its owner in row-major order.
func (a *Assignment) Slots() []Placement {
	out := make([]Placement, len(a.grid.slots))
	for i, s := range a.grid.slots {
		out[i] = Placement{Slot: s, Entry: a.entries[a.owner[i]].ID}
	}
	return out
}

// EntrySlots returns the seats owned by the entry in row-major order, or nil if
// the entry is unknown.
func (a *Assignment) EntrySlots(id string) []Slot {
	pos, ok := a.index[id]
	if !ok {
		return nil
	}
	return slices.Clone(a.seatsOf[pos])
}

// Contiguous reports whether the seats of the entry form one connected block
// under [Grid.Adjacent].
func (a *Assignment) Contiguous(id string) bool {
	slots := a.EntrySlots(id)
	if len(slots) == 0 {
		return false
	}
	seen := map[Slot]bool{slots[0]: true}
	stack := []Slot{slots[0]}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range slots {
			if !seen[s] && a.grid.Adjacent(cur, s) {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	return len(seen) == len(slots)
}
