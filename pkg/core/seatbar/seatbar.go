// Package seatbar turns seat tallies into the coloured segments of a bar.
//
// A bar has two segments: the declared seats in the party's solid colour and
// the seats it only leads in, usually a lighter shade. Seat bars are always
// non-negative; change bars may run backwards and carry a start offset.
package seatbar

import (
	"github.com/matzehuels/hemicycle/pkg/core/aggregate"
	"github.com/matzehuels/hemicycle/pkg/errors"
)

// Segment is a run of seats drawn in one colour. Size may be negative in a
// change bar.
type Segment struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// Segments returns the elected and leading segments of agg, in that order.
// No validation is done, so it works for change tallies too.
func Segments(agg aggregate.ElectedLeading, electedColor, leadingColor string) []Segment {
	return []Segment{
		{Color: electedColor, Size: agg.Elected},
		{Color: leadingColor, Size: agg.Leading()},
	}
}

// Seats is [Segments] for a seat bar. It returns an INVALID_AGGREGATE error
// unless 0 <= Elected <= Total.
func Seats(agg aggregate.ElectedLeading, electedColor, leadingColor string) ([]Segment, error) {
	if !agg.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidAggregate,
			"seat bar needs 0 <= elected <= total, got %d/%d", agg.Elected, agg.Total)
	}
	return Segments(agg, electedColor, leadingColor), nil
}

// ChangeBar is a bar starting at a baseline, typically the seats a party held
// before the election.
type ChangeBar struct {
	Start    int       `json:"start"`
	Segments []Segment `json:"segments"`
}

// Change returns a change bar for agg starting at start.
func Change(start int, agg aggregate.ElectedLeading, electedColor, leadingColor string) ChangeBar {
	return ChangeBar{Start: start, Segments: Segments(agg, electedColor, leadingColor)}
}

// End returns where the bar ends: the start plus every segment.
func (b ChangeBar) End() int { return b.Start + Total(b.Segments) }

// Total sums the sizes of segs.
func Total(segs []Segment) int {
	n := 0
	for _, s := range segs {
		n += s.Size
	}
	return n
}
