// Package results models the live state of each race on election night.
//
// An [Entry] is a race worth one or more seats with a fixed previous owner. Its
// live state is a nullable [PartyResult]: nil while the race is not reporting,
// then a leading party, possibly changing several times, and finally an elected
// party. A [Model] holds one entry's live state.
//
// The state machine is:
//
//	NotReporting -> Leading(party) -> ... -> Elected(party)
//
// [Model.Set] never rejects a transition: corrections on air do happen, and the
// aggregation layer recomputes on every change regardless. Callers that care
// can use [Retracts] to detect an elected result being withdrawn.
package results

import (
	"fmt"

	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
)

// Party is a political party as shown on screen.
type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

// Filter selects the parties belonging to a bucket. A nil party (no result)
// may be passed and must be handled.
type Filter func(p *Party) bool

// Is returns a filter matching the given party IDs.
func Is(ids ...string) Filter {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(p *Party) bool {
		return p != nil && set[p.ID]
	}
}

// Neither returns a filter matching parties rejected by every given filter.
// A nil party is never matched.
func Neither(filters ...Filter) Filter {
	return func(p *Party) bool {
		if p == nil {
			return false
		}
		for _, f := range filters {
			if f(p) {
				return false
			}
		}
		return true
	}
}

// PartyResult is the current call in a race.
type PartyResult struct {
	Party   Party `json:"party"`
	Elected bool  `json:"elected"`
}

// Leading returns a result with p ahead but not yet declared.
func Leading(p Party) *PartyResult { return &PartyResult{Party: p} }

// Elected returns a result with p declared the winner.
func Elected(p Party) *PartyResult { return &PartyResult{Party: p, Elected: true} }

// Equal reports whether two nullable results are the same call.
func Equal(a, b *PartyResult) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Party.ID == b.Party.ID && a.Elected == b.Elected
}

// State is the stage of a race's result.
type State int

const (
	NotReporting State = iota
	LeadingState
	ElectedState
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case NotReporting:
		return "not-reporting"
	case LeadingState:
		return "leading"
	case ElectedState:
		return "elected"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StateOf returns the state of a nullable result.
func StateOf(r *PartyResult) State {
	switch {
	case r == nil:
		return NotReporting
	case r.Elected:
		return ElectedState
	}
	return LeadingState
}

// Retracts reports whether moving from old to next withdraws an elected call.
func Retracts(old, next *PartyResult) bool {
	return StateOf(old) == ElectedState && !Equal(old, next)
}

// Entry is a race contributing one or more seats to the chart.
type Entry struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Seats    int    `json:"seats"`
	Previous Party  `json:"previous"`
}

// SeatCount returns the number of seats of e; zero means one.
func (e Entry) SeatCount() int {
	if e.Seats == 0 {
		return 1
	}
	return e.Seats
}

// Seating converts entries into allocation requests, preserving order.
func Seating(entries []Entry) []hemicycle.Entry {
	out := make([]hemicycle.Entry, len(entries))
	for i, e := range entries {
		out[i] = hemicycle.Entry{ID: e.ID, Seats: e.SeatCount()}
	}
	return out
}

// Model is the live state of one entry.
type Model struct {
	entry  Entry
	result *PartyResult
}

// NewModel returns a model for e with no result.
func NewModel(e Entry) *Model { return &Model{entry: e} }

// Entry returns the static description of the race.
func (m *Model) Entry() Entry { return m.entry }

// Result returns a copy of the current result, or nil when not reporting.
func (m *Model) Result() *PartyResult {
	if m.result == nil {
		return nil
	}
	r := *m.result
	return &r
}

// State returns the current stage of the race.
func (m *Model) State() State { return StateOf(m.result) }

// Set replaces the current result and returns the previous one.
func (m *Model) Set(r *PartyResult) (old *PartyResult) {
	old = m.result
	if r != nil {
		cp := *r
		r = &cp
	}
	m.result = r
	return old
}
