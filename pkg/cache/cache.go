// Package cache stores computed artefacts such as seat assignments so that
// repeated runs over the same configuration skip the allocator.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for
// servers sharing state, and [NullCache] when caching is disabled. Keys are
// produced by a [Keyer] so that callers never build key strings by hand.
package cache

import (
	"context"
	"time"
)

// Default TTLs by artefact kind.
const (
	// TTLAssignment is long because an assignment only depends on the layout
	// hash embedded in its key.
	TTLAssignment = 30 * 24 * time.Hour

	// TTLFrame keeps the latest frame of a broadcast around for late readers.
	TTLFrame = 12 * time.Hour
)

// Cache is a byte store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported by ok=false with a
	// nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
