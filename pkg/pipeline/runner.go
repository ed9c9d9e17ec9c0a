package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hemicycle/pkg/cache"
	"github.com/matzehuels/hemicycle/pkg/config"
	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/core/results"
	"github.com/matzehuels/hemicycle/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// The CLI and the server both use it.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// AllocateWithStats allocates the seats of cfg, consulting the cache first,
// and reports timing and whether the cache was hit.
func (r *Runner) AllocateWithStats(ctx context.Context, cfg *config.Config, opts Options) (*hemicycle.Assignment, Stats, error) {
	var stats Stats
	start := time.Now()
	key := r.Keyer.AssignmentKey(cfg.Hash(), cache.AssignmentKeyOpts{Tiebreak: cfg.Tiebreaker().String()})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if a, err := hemicycle.UnmarshalAssignment(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "assignment")
				stats.CacheHit = true
				stats.AllocateTime = time.Since(start)
				r.Logger.Debug("assignment from cache", "key", key)
				return a, stats, nil
			}
			r.Logger.Warn("discarding unreadable cached assignment", "key", key)
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "assignment")
	}

	entries := results.Seating(cfg.ResultEntries())
	observability.Allocator().OnAllocateStart(ctx, cfg.Seats(), len(entries))
	a, err := hemicycle.Allocate(cfg.Rows, entries, cfg.Tiebreaker())
	stats.AllocateTime = time.Since(start)
	observability.Allocator().OnAllocateComplete(ctx, cfg.Seats(), stats.AllocateTime, err)
	if err != nil {
		return nil, stats, fmt.Errorf("allocate: %w", err)
	}

	r.Logger.Info("allocated seats",
		"seats", cfg.Seats(),
		"entries", len(entries),
		"tiebreak", cfg.Tiebreaker(),
		"duration", stats.AllocateTime)

	if data, err := json.Marshal(a); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLAssignment); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "assignment", len(data))
		}
	}
	return a, stats, nil
}

// Allocate is a convenience wrapper that calls AllocateWithStats and
// discards the stats.
func (r *Runner) Allocate(ctx context.Context, cfg *config.Config, opts Options) (*hemicycle.Assignment, error) {
	a, _, err := r.AllocateWithStats(ctx, cfg, opts)
	return a, err
}

// Start allocates the seats of cfg and returns a broadcast with no results.
func (r *Runner) Start(ctx context.Context, cfg *config.Config, opts Options) (*Broadcast, error) {
	a, err := r.Allocate(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	b, err := NewBroadcast(cfg, a, r.Logger, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("broadcast ready", "id", b.ID, "title", cfg.Title)
	return b, nil
}
