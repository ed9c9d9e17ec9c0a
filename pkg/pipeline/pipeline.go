// Package pipeline wires configuration, allocation, aggregation and frame
// building into the two flows used by every entry point.
//
// The allocate flow turns a configuration into a seat assignment, using the
// cache so that a layout is computed once per configuration:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	a, err := runner.Allocate(ctx, cfg, pipeline.Options{})
//
// The broadcast flow starts from the same assignment and keeps the live
// state of election night:
//
//	b, err := runner.Start(ctx, cfg, pipeline.Options{})
//	f, err := b.Apply(ctx, "ca-12", results.Leading(dem))
//
// A [Broadcast] is not safe for concurrent use; the feed package serialises
// updates onto one goroutine.
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/hemicycle/pkg/frame"
)

// Format constants for assignment output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat reports an error for unsupported formats.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %s (must be text, json, dot or svg)", format)
	}
	return nil
}

// Options controls a pipeline run.
type Options struct {
	// Refresh ignores cached assignments and recomputes them.
	Refresh bool

	// Frame options passed to the frame builder of a broadcast.
	Frame []frame.Option

	// ID overrides the generated broadcast ID, e.g. to resume a stored
	// broadcast.
	ID string
}

// Stats contains timing information of a pipeline run.
type Stats struct {
	AllocateTime time.Duration
	CacheHit     bool
}
