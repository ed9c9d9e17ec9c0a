package hemicycle

import (
	"fmt"
	"slices"

	"github.com/matzehuels/hemicycle/pkg/errors"
)

// Tiebreaker resolves the consumption order of seats in different rows that
// sit at the same angle.
type Tiebreaker int

const (
	// FrontRowFromLeft consumes the front row first on equal angles.
	FrontRowFromLeft Tiebreaker = iota
	// FrontRowFromRight consumes the back row first on equal angles.
	FrontRowFromRight
)

// String returns the configuration name of the tiebreaker.
func (t Tiebreaker) String() string {
	switch t {
	case FrontRowFromLeft:
		return "front-row-from-left"
	case FrontRowFromRight:
		return "front-row-from-right"
	}
	return fmt.Sprintf("Tiebreaker(%d)", int(t))
}

// ParseTiebreaker converts a configuration name into a Tiebreaker.
// The empty string selects FrontRowFromLeft.
func ParseTiebreaker(s string) (Tiebreaker, error) {
	switch s {
	case "", "front-row-from-left":
		return FrontRowFromLeft, nil
	case "front-row-from-right":
		return FrontRowFromRight, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown tiebreak %q (must be front-row-from-left or front-row-from-right)", s)
}

// Slot is one seat position: a row (0 is the front row) and an index within
// the row (0 is the leftmost seat).
type Slot struct {
	Row   int `json:"row"`
	Index int `json:"index"`
}

// String returns the slot as "row:index".
func (s Slot) String() string { return fmt.Sprintf("%d:%d", s.Row, s.Index) }

// Grid is the immutable set of seat positions of a chart.
type Grid struct {
	rows  []int
	slots []Slot
	start []int // offset of each row in slots
}

// NewGrid builds a grid from row sizes, front row first.
// Every row must hold at least one seat.
func NewGrid(rows []int) (*Grid, error) {
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "at least one row is required")
	}

	g := &Grid{
		rows:  slices.Clone(rows),
		start: make([]int, len(rows)),
	}
	for r, n := range rows {
		if n < 1 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "row %d must hold at least one seat, got %d", r, n)
		}
		g.start[r] = len(g.slots)
		for i := 0; i < n; i++ {
			g.slots = append(g.slots, Slot{Row: r, Index: i})
		}
	}
	return g, nil
}

// Rows returns a copy of the row sizes.
func (g *Grid) Rows() []int { return slices.Clone(g.rows) }

// Len returns the total number of seats.
func (g *Grid) Len() int { return len(g.slots) }

// RowSize returns the number of seats in row r.
func (g *Grid) RowSize(r int) int { return g.rows[r] }

// Contains reports whether s is a seat of the grid.
func (g *Grid) Contains(s Slot) bool {
	return s.Row >= 0 && s.Row < len(g.rows) && s.Index >= 0 && s.Index < g.rows[s.Row]
}

// Slots returns all seats in row-major order.
func (g *Grid) Slots() []Slot { return slices.Clone(g.slots) }

// ordinal returns the row-major position of s.
func (g *Grid) ordinal(s Slot) int { return g.start[s.Row] + s.Index }

// Angle returns the angular position of s in degrees, 0 at the left end of the
// chart and 180 at the right end. A single-seat row sits at 90 degrees.
func (g *Grid) Angle(s Slot) float64 {
	num, den := g.fraction(s)
	return 180 * float64(num) / float64(den)
}

// fraction returns the angle of s as the exact fraction num/den of 180 degrees.
func (g *Grid) fraction(s Slot) (num, den int) {
	n := g.rows[s.Row]
	if n == 1 {
		return 1, 2
	}
	return s.Index, n - 1
}

// compareAngle orders two slots by angle without floating point error.
func (g *Grid) compareAngle(a, b Slot) int {
	an, ad := g.fraction(a)
	bn, bd := g.fraction(b)
	lhs, rhs := an*bd, bn*ad
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	}
	return 0
}

// ConsumptionOrder returns all seats sorted by angle, with ties between rows
// resolved by t.
func (g *Grid) ConsumptionOrder(t Tiebreaker) []Slot {
	order := g.Slots()
	slices.SortStableFunc(order, func(a, b Slot) int {
		if c := g.compareAngle(a, b); c != 0 {
			return c
		}
		if t == FrontRowFromRight {
			return b.Row - a.Row
		}
		return a.Row - b.Row
	})
	return order
}

// Adjacent reports whether two distinct seats touch.
//
// Seats in the same row touch when their indices differ by at most one. Seats in
// neighbouring rows touch when either index, scaled onto the other row as
// index/(rowSize−1)·otherRowSize, lies within half a seat of the other index.
func (g *Grid) Adjacent(a, b Slot) bool {
	if a == b {
		return false
	}
	switch d := a.Row - b.Row; {
	case d == 0:
		return abs(a.Index-b.Index) <= 1
	case d == 1 || d == -1:
		return g.projects(a, b) || g.projects(b, a)
	}
	return false
}

// projects reports whether a, scaled onto b's row, is within half a seat of b.
//
// With na seats in a's row and nb in b's, the scaled index is ia·nb/(na−1);
// the comparison |ia·nb/(na−1) − ib| ≤ ½ is evaluated in integers as
// |2·ia·nb − 2·ib·(na−1)| ≤ na−1. A single-seat row scales to nb/2.
func (g *Grid) projects(a, b Slot) bool {
	na, nb := g.rows[a.Row], g.rows[b.Row]
	if na == 1 {
		return abs(nb-2*b.Index) <= 1
	}
	return abs(2*a.Index*nb-2*b.Index*(na-1)) <= na-1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
