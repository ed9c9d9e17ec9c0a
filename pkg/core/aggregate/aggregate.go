// Package aggregate keeps running seat tallies for the bars of a hemicycle
// graphic.
//
// An [Aggregator] owns five [ElectedLeading] buckets: seats held by the left
// focus party, by the right focus party, by everyone else, and the net change
// against the previous election for the left and right focus parties. Each
// update to one entry subtracts that entry's old contribution and adds its new
// one, so an update costs the same no matter how many entries there are.
//
// An Aggregator is not safe for concurrent use. It is meant to be owned by a
// single goroutine; readers take a [Snapshot], which is a plain value.
package aggregate

import (
	"fmt"

	"github.com/matzehuels/hemicycle/pkg/core/results"
	"github.com/matzehuels/hemicycle/pkg/errors"
)

// ElectedLeading is a seat tally. Total counts every seat in the bucket, of
// which Elected are declared; Total-Elected are still only leading.
type ElectedLeading struct {
	Elected int `json:"elected"`
	Total   int `json:"total"`
}

// Add returns the component-wise sum of a and b.
func (a ElectedLeading) Add(b ElectedLeading) ElectedLeading {
	return ElectedLeading{Elected: a.Elected + b.Elected, Total: a.Total + b.Total}
}

// Subtract returns the component-wise difference a-b.
func (a ElectedLeading) Subtract(b ElectedLeading) ElectedLeading {
	return ElectedLeading{Elected: a.Elected - b.Elected, Total: a.Total - b.Total}
}

// Leading returns the seats that are counted but not yet declared.
func (a ElectedLeading) Leading() int { return a.Total - a.Elected }

// IsZero reports whether a holds no seats.
func (a ElectedLeading) IsZero() bool { return a == ElectedLeading{} }

// Valid reports whether 0 <= Elected <= Total.
func (a ElectedLeading) Valid() bool { return a.Elected >= 0 && a.Elected <= a.Total }

func (a ElectedLeading) String() string { return fmt.Sprintf("%d/%d", a.Elected, a.Total) }

// Seats returns what an entry worth seats contributes to a seat bucket
// selected by f when its current result is r.
func Seats(f results.Filter, seats int, r *results.PartyResult) ElectedLeading {
	if r == nil || !f(&r.Party) {
		return ElectedLeading{}
	}
	c := ElectedLeading{Total: seats}
	if r.Elected {
		c.Elected = seats
	}
	return c
}

// Change returns what entry e contributes to a change bucket selected by f
// when its current result is r.
//
// A race that is not reporting contributes nothing. Once it reports, its seat
// contribution is credited and the seats of its previous owner are debited,
// so a hold cancels out and a gain or loss shows up on both sides.
func Change(f results.Filter, e results.Entry, r *results.PartyResult) ElectedLeading {
	if r == nil {
		return ElectedLeading{}
	}
	seats := e.SeatCount()
	var prev ElectedLeading
	if f(&e.Previous) {
		prev.Total = seats
		if r.Elected {
			prev.Elected = seats
		}
	}
	return Seats(f, seats, r).Subtract(prev)
}

// Snapshot is the state of every bucket at one point in time.
type Snapshot struct {
	Left        ElectedLeading `json:"left"`
	Right       ElectedLeading `json:"right"`
	Other       ElectedLeading `json:"other"`
	LeftChange  ElectedLeading `json:"left_change"`
	RightChange ElectedLeading `json:"right_change"`

	// Reporting is the number of seats with a result; Seats is the chart size.
	Reporting int `json:"reporting"`
	Seats     int `json:"seats"`

	// Updates counts the updates applied so far.
	Updates uint64 `json:"updates"`
}

// Baseline is the number of seats each focus party held before the election.
// It is where the change bars start.
type Baseline struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Aggregator maintains the five buckets for a fixed set of entries.
type Aggregator struct {
	left, right, other results.Filter

	models   []*results.Model
	index    map[string]int
	snap     Snapshot
	baseline Baseline

	listeners []func(Snapshot)
}

// New returns an aggregator over entries with no results. Seats not matched
// by left or right count towards the other bucket. Empty or duplicate entry
// IDs and negative seat counts yield an INVALID_CONFIG error.
func New(entries []results.Entry, left, right results.Filter) (*Aggregator, error) {
	a := &Aggregator{
		left:   left,
		right:  right,
		other:  results.Neither(left, right),
		models: make([]*results.Model, len(entries)),
		index:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if e.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "entry %d has no ID", i)
		}
		if _, dup := a.index[e.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "duplicate entry %q", e.ID)
		}
		if e.Seats < 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "entry %q has negative seat count %d", e.ID, e.Seats)
		}
		a.models[i] = results.NewModel(e)
		a.index[e.ID] = i
		a.snap.Seats += e.SeatCount()
		if left(&e.Previous) {
			a.baseline.Left += e.SeatCount()
		}
		if right(&e.Previous) {
			a.baseline.Right += e.SeatCount()
		}
	}
	return a, nil
}

// Update sets the result of entry id to r (nil for not reporting) and returns
// the new snapshot. Unknown IDs yield an UNKNOWN_ENTRY error and leave the
// aggregator unchanged. Setting the same result twice is a no-op apart from
// the update counter.
func (a *Aggregator) Update(id string, r *results.PartyResult) (Snapshot, error) {
	i, ok := a.index[id]
	if !ok {
		return a.snap, errors.New(errors.ErrCodeUnknownEntry, "unknown entry %q", id)
	}
	m := a.models[i]
	e := m.Entry()
	old := m.Set(r)
	r = m.Result()

	seats := e.SeatCount()
	s := &a.snap
	s.Left = s.Left.Subtract(Seats(a.left, seats, old)).Add(Seats(a.left, seats, r))
	s.Right = s.Right.Subtract(Seats(a.right, seats, old)).Add(Seats(a.right, seats, r))
	s.Other = s.Other.Subtract(Seats(a.other, seats, old)).Add(Seats(a.other, seats, r))
	s.LeftChange = s.LeftChange.Subtract(Change(a.left, e, old)).Add(Change(a.left, e, r))
	s.RightChange = s.RightChange.Subtract(Change(a.right, e, old)).Add(Change(a.right, e, r))
	if old != nil {
		s.Reporting -= seats
	}
	if r != nil {
		s.Reporting += seats
	}
	s.Updates++

	a.check()

	for _, fn := range a.listeners {
		fn(a.snap)
	}
	return a.snap, nil
}

// check panics if a seat bucket is inconsistent. That can only happen through
// a bug in the reducer.
func (a *Aggregator) check() {
	buckets := [...]struct {
		name string
		b    ElectedLeading
	}{{"left", a.snap.Left}, {"right", a.snap.Right}, {"other", a.snap.Other}}
	for _, x := range buckets {
		if !x.b.Valid() {
			panic(fmt.Sprintf("aggregate: %s bucket out of range: %v", x.name, x.b))
		}
	}
}

// OnUpdate registers fn to be called with the new snapshot after every
// successful update, on the updating goroutine.
func (a *Aggregator) OnUpdate(fn func(Snapshot)) {
	a.listeners = append(a.listeners, fn)
}

// Snapshot returns the current state of the buckets.
func (a *Aggregator) Snapshot() Snapshot { return a.snap }

// Baseline returns the previous seat counts of the focus parties.
func (a *Aggregator) Baseline() Baseline { return a.baseline }

// Result returns the current result of entry id. The second value is false
// for unknown entries.
func (a *Aggregator) Result(id string) (*results.PartyResult, bool) {
	i, ok := a.index[id]
	if !ok {
		return nil, false
	}
	return a.models[i].Result(), true
}

// Entry returns the entry with the given ID.
func (a *Aggregator) Entry(id string) (results.Entry, bool) {
	i, ok := a.index[id]
	if !ok {
		return results.Entry{}, false
	}
	return a.models[i].Entry(), true
}

// Entries returns all entries in the order given to [New].
func (a *Aggregator) Entries() []results.Entry {
	out := make([]results.Entry, len(a.models))
	for i, m := range a.models {
		out[i] = m.Entry()
	}
	return out
}

// Filters returns the left, right and other filters.
func (a *Aggregator) Filters() (left, right, other results.Filter) {
	return a.left, a.right, a.other
}
