// Package hemicycle places election entries onto the seats of a semicircular
// chamber chart.
//
// # Overview
//
// A chart is a stack of concentric rows, front (row 0, innermost) to back. Each
// row holds a fixed number of seats spread evenly over 180 degrees, so seat i of a
// row with n seats sits at angle 180·i/(n−1). A [Grid] enumerates these seats as
// [Slot] values and answers ordering and adjacency questions about them.
//
// [Allocate] assigns every seat to exactly one entry (a race or constituency
// worth one or more seats). Seats are consumed in angular order, sweeping from
// the left end of the chart to the right, and each entry's seats are kept
// spatially contiguous: every seat an entry receives touches at least one other
// seat of the same entry.
//
// # Consumption Order
//
// Seats are sorted by angle. Seats of different rows can share an angle (the
// middle seat of every odd-sized row sits at 90 degrees), and the [Tiebreaker]
// decides which row comes first:
//
//   - [FrontRowFromLeft]: the front row is consumed first
//   - [FrontRowFromRight]: the back row is consumed first, the mirror image of a
//     front-first sweep from the right
//
// Angles are compared as exact fractions so that ties are detected reliably.
//
// # Adjacency
//
// Two seats in the same row are adjacent when their indices differ by at most
// one. Seats in neighbouring rows are adjacent when, after scaling one index onto
// the other row, they are at most half a seat apart. Seats more than one row
// apart are never adjacent.
//
// # Determinism
//
// Allocation is a pure function of the rows, the entries in the order given and
// the tiebreaker. Entry order is significant: processing the same entries in a
// different order generally produces a different (equally valid) chart.
//
// # Usage
//
//	a, err := hemicycle.Allocate([]int{7, 9, 11}, []hemicycle.Entry{
//	    {ID: "ny-1", Seats: 1},
//	    {ID: "ca-at-large", Seats: 7},
//	}, hemicycle.FrontRowFromLeft)
//	if err != nil {
//	    return err
//	}
//	for _, p := range a.Slots() {
//	    fmt.Println(p.Slot, p.Entry)
//	}
package hemicycle
