// Package frame assembles everything a renderer needs to draw one frame of a
// hemicycle graphic: the colour of every dot and the segments and labels of
// every bar.
//
// A [Builder] ties a fixed seat [hemicycle.Assignment] to a live
// [aggregate.Aggregator]. Each call to [Builder.Build] returns a [Frame] that
// shares no memory with the builder and can be handed to other goroutines.
package frame

import (
	"fmt"
	"time"

	"github.com/matzehuels/hemicycle/pkg/core/aggregate"
	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/core/seatbar"
)

// Dot is one seat of the chart.
type Dot struct {
	Row    int    `json:"row"`
	Index  int    `json:"index"`
	Entry  string `json:"entry"`
	Fill   string `json:"fill"`
	Border string `json:"border"`
}

// Bar is a seat bar.
type Bar struct {
	Label    string                   `json:"label"`
	Seats    aggregate.ElectedLeading `json:"seats"`
	Segments []seatbar.Segment        `json:"segments"`
}

// ChangeBar is a change bar drawn from Start.
type ChangeBar struct {
	Label    string                   `json:"label"`
	Change   aggregate.ElectedLeading `json:"change"`
	Start    int                      `json:"start"`
	Segments []seatbar.Segment        `json:"segments"`
}

// Frame is a complete description of the graphic at one point in time.
type Frame struct {
	Title     string    `json:"title,omitempty"`
	Updates   uint64    `json:"updates"`
	Reporting int       `json:"reporting"`
	Seats     int       `json:"seats"`
	BuiltAt   time.Time `json:"built_at"`

	Dots []Dot `json:"dots"`

	Left   Bar `json:"left"`
	Right  Bar `json:"right"`
	Middle Bar `json:"middle"`

	LeftChange  ChangeBar `json:"left_change"`
	RightChange ChangeBar `json:"right_change"`
}

// Dot returns the dot at s.
func (f *Frame) Dot(s hemicycle.Slot) (Dot, bool) {
	for _, d := range f.Dots {
		if d.Row == s.Row && d.Index == s.Index {
			return d, true
		}
	}
	return Dot{}, false
}

// LabelFunc formats a tally for display.
type LabelFunc func(aggregate.ElectedLeading) string

// SeatLabel formats a seat tally as "elected/total", or just the total once
// every seat is declared.
func SeatLabel(a aggregate.ElectedLeading) string {
	if a.Elected == a.Total {
		return fmt.Sprintf("%d", a.Total)
	}
	return fmt.Sprintf("%d/%d", a.Elected, a.Total)
}

// ChangeLabel formats a change tally with explicit signs, e.g. "+0/+7", "-3"
// or "±0".
func ChangeLabel(a aggregate.ElectedLeading) string {
	if a.Elected == a.Total {
		return signed(a.Total)
	}
	return signed(a.Elected) + "/" + signed(a.Total)
}

func signed(n int) string {
	switch {
	case n == 0:
		return "±0"
	case n > 0:
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

// Option configures a [Builder].
type Option func(*Builder)

// WithSeatLabel sets the formatter for the three seat bars.
func WithSeatLabel(fn LabelFunc) Option {
	return func(b *Builder) { b.seatLabel = fn }
}

// WithChangeLabel sets the formatter for the two change bars.
func WithChangeLabel(fn LabelFunc) Option {
	return func(b *Builder) { b.changeLabel = fn }
}

// WithTitle sets the frame title.
func WithTitle(title string) Option {
	return func(b *Builder) { b.title = title }
}

// WithClock sets the time source used for [Frame.BuiltAt].
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// Builder produces frames for one broadcast.
type Builder struct {
	assignment *hemicycle.Assignment
	agg        *aggregate.Aggregator
	palette    Palette

	title       string
	seatLabel   LabelFunc
	changeLabel LabelFunc
	now         func() time.Time
}

// NewBuilder returns a builder over a and agg. The palette must be valid.
func NewBuilder(a *hemicycle.Assignment, agg *aggregate.Aggregator, p Palette, opts ...Option) (*Builder, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := &Builder{
		assignment:  a,
		agg:         agg,
		palette:     p,
		seatLabel:   SeatLabel,
		changeLabel: ChangeLabel,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Palette returns the builder's palette.
func (b *Builder) Palette() Palette { return b.palette }

// Build returns the current frame. It must be called from the goroutine that
// owns the aggregator.
func (b *Builder) Build() (Frame, error) {
	s := b.agg.Snapshot()
	base := b.agg.Baseline()
	p := b.palette

	f := Frame{
		Title:     b.title,
		Updates:   s.Updates,
		Reporting: s.Reporting,
		Seats:     s.Seats,
		BuiltAt:   b.now(),
	}

	placements := b.assignment.Slots()
	f.Dots = make([]Dot, len(placements))
	for i, pl := range placements {
		d := Dot{Row: pl.Slot.Row, Index: pl.Slot.Index, Entry: pl.Entry, Fill: p.NotReporting, Border: p.Other}
		if e, ok := b.agg.Entry(pl.Entry); ok {
			d.Border = p.Party(e.Previous)
		}
		if r, ok := b.agg.Result(pl.Entry); ok {
			d.Fill = p.Fill(r)
		}
		f.Dots[i] = d
	}

	var err error
	if f.Left, err = b.bar(s.Left, p.Left); err != nil {
		return Frame{}, fmt.Errorf("left bar: %w", err)
	}
	if f.Right, err = b.bar(s.Right, p.Right); err != nil {
		return Frame{}, fmt.Errorf("right bar: %w", err)
	}
	if f.Middle, err = b.bar(s.Other, p.Other); err != nil {
		return Frame{}, fmt.Errorf("middle bar: %w", err)
	}
	f.LeftChange = b.change(base.Left, s.LeftChange, p.Left)
	f.RightChange = b.change(base.Right, s.RightChange, p.Right)
	return f, nil
}

func (b *Builder) bar(agg aggregate.ElectedLeading, color string) (Bar, error) {
	segs, err := seatbar.Seats(agg, color, Leading(color))
	if err != nil {
		return Bar{}, err
	}
	return Bar{Label: b.seatLabel(agg), Seats: agg, Segments: segs}, nil
}

func (b *Builder) change(start int, agg aggregate.ElectedLeading, color string) ChangeBar {
	cb := seatbar.Change(start, agg, color, Leading(color))
	return ChangeBar{Label: b.changeLabel(agg), Change: agg, Start: cb.Start, Segments: cb.Segments}
}
