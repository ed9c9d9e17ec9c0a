package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/hemicycle/pkg/config"
	"github.com/matzehuels/hemicycle/pkg/core/aggregate"
	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/core/results"
	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/frame"
	"github.com/matzehuels/hemicycle/pkg/observability"
)

// Update is one call for one race as it arrives from a feed. An empty Party
// withdraws the call and returns the race to not reporting.
type Update struct {
	ID      string    `json:"id,omitempty" bson:"id,omitempty"`
	Seq     uint64    `json:"seq,omitempty" bson:"seq,omitempty"`
	Entry   string    `json:"entry" bson:"entry"`
	Party   string    `json:"party,omitempty" bson:"party,omitempty"`
	Elected bool      `json:"elected,omitempty" bson:"elected,omitempty"`
	At      time.Time `json:"at,omitempty" bson:"at,omitempty"`
}

// State returns the state the update moves its race to.
func (u Update) State() results.State {
	switch {
	case u.Party == "":
		return results.NotReporting
	case u.Elected:
		return results.ElectedState
	}
	return results.LeadingState
}

// Broadcast is the live state of one graphic: a fixed seat assignment, the
// aggregator holding the current results and the last built frame.
type Broadcast struct {
	ID         string
	Config     *config.Config
	Assignment *hemicycle.Assignment

	agg     *aggregate.Aggregator
	builder *frame.Builder
	current frame.Frame
	logger  *log.Logger
}

// NewBroadcast returns a broadcast for cfg with no results reported.
func NewBroadcast(cfg *config.Config, a *hemicycle.Assignment, logger *log.Logger, opts Options) (*Broadcast, error) {
	if logger == nil {
		logger = log.Default()
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	left, right := cfg.Filters()
	agg, err := aggregate.New(cfg.ResultEntries(), left, right)
	if err != nil {
		return nil, err
	}

	fopts := append([]frame.Option{frame.WithTitle(cfg.Title)}, opts.Frame...)
	builder, err := frame.NewBuilder(a, agg, cfg.Palette(), fopts...)
	if err != nil {
		return nil, err
	}
	b := &Broadcast{
		ID:         id,
		Config:     cfg,
		Assignment: a,
		agg:        agg,
		builder:    builder,
		logger:     logger.With("broadcast", id),
	}
	if b.current, err = builder.Build(); err != nil {
		return nil, err
	}
	return b, nil
}

// Resolve turns an update into the result it carries. An empty party yields
// nil; parties missing from the configuration are rejected.
func (b *Broadcast) Resolve(u Update) (*results.PartyResult, error) {
	if u.Entry == "" {
		return nil, errors.New(errors.ErrCodeInvalidUpdate, "update without entry")
	}
	if u.Party == "" {
		if u.Elected {
			return nil, errors.New(errors.ErrCodeInvalidUpdate, "entry %q: elected without party", u.Entry)
		}
		return nil, nil
	}
	p, ok := b.Config.Party(u.Party)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownParty, "entry %q: unknown party %q", u.Entry, u.Party)
	}
	return &results.PartyResult{Party: p, Elected: u.Elected}, nil
}

// Apply records u and returns the new frame. On error the broadcast is left
// unchanged.
func (b *Broadcast) Apply(ctx context.Context, u Update) (frame.Frame, error) {
	r, err := b.Resolve(u)
	if err != nil {
		return b.current, err
	}
	old, ok := b.agg.Result(u.Entry)
	if !ok {
		return b.current, errors.New(errors.ErrCodeUnknownEntry, "unknown entry %q", u.Entry)
	}
	if results.Retracts(old, r) {
		b.logger.Warn("elected call retracted",
			"entry", u.Entry,
			"was", old.Party.ID,
			"now", results.StateOf(r))
		observability.Feed().OnRetraction(ctx, u.Entry)
	}
	if _, err := b.agg.Update(u.Entry, r); err != nil {
		return b.current, err
	}
	f, err := b.builder.Build()
	if err != nil {
		return b.current, fmt.Errorf("build frame: %w", err)
	}
	b.current = f
	b.logger.Debug("applied result",
		"entry", u.Entry,
		"party", u.Party,
		"state", results.StateOf(r),
		"reporting", f.Reporting)
	return f, nil
}

// Frame returns the frame built after the last successful update.
func (b *Broadcast) Frame() frame.Frame { return b.current }

// Snapshot returns the current buckets.
func (b *Broadcast) Snapshot() aggregate.Snapshot { return b.agg.Snapshot() }

// Result returns the current result of entry id.
func (b *Broadcast) Result(id string) (*results.PartyResult, bool) { return b.agg.Result(id) }

// Entries returns the races of the broadcast in configuration order.
func (b *Broadcast) Entries() []results.Entry { return b.agg.Entries() }
