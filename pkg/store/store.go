// Package store persists the latest result of every race of a broadcast so
// that a restarted server can pick up where it left off.
//
// Every backend keeps one record per (broadcast, entry) pair: saving an
// update for an entry replaces the previous one. [Store.Load] returns the
// records ordered by sequence number, ready to be replayed through
// [pipeline.Broadcast.Apply].
//
// Backends:
//   - [MemoryStore]: in-process, for tests and one-shot replays
//   - [FileStore]: one JSON file per broadcast, for the CLI
//   - [RedisStore]: one hash per broadcast, shared between server instances
//   - [MongoStore]: one document per entry, for archival
package store

import (
	"cmp"
	"context"
	"slices"

	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// Store persists the latest update per entry of each broadcast.
type Store interface {
	// Save records u as the latest update for its entry.
	Save(ctx context.Context, broadcast string, u pipeline.Update) error

	// Load returns the latest update of every entry of a broadcast, ordered
	// by sequence number. Unknown broadcasts yield no updates.
	Load(ctx context.Context, broadcast string) ([]pipeline.Update, error)

	// Delete removes everything stored for a broadcast.
	Delete(ctx context.Context, broadcast string) error

	// Close releases resources held by the store.
	Close() error
}

// sortUpdates orders updates by sequence number, then by entry.
func sortUpdates(updates []pipeline.Update) {
	slices.SortFunc(updates, func(a, b pipeline.Update) int {
		if c := cmp.Compare(a.Seq, b.Seq); c != 0 {
			return c
		}
		return cmp.Compare(a.Entry, b.Entry)
	})
}
