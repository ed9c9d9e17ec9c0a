// Package feed moves result updates from their sources into a broadcast.
//
// A [Source] produces updates: [FileSource] replays a JSON Lines file,
// [NATSSource] subscribes to a NATS subject. Any number of sources, plus the
// HTTP server, submit updates to one [Coordinator], which applies them in
// arrival order on a single goroutine. Readers never touch the broadcast;
// they see immutable frames through [Coordinator.Frame] or
// [Coordinator.Subscribe].
//
//	c := feed.NewCoordinator(b, feed.WithStore(st), feed.WithLogger(logger))
//	go c.Run(ctx)
//	go c.Feed(ctx, "nats", &feed.NATSSource{Conn: nc, Subject: "results.>"})
//
//	ch, unsubscribe := c.Subscribe()
//	defer unsubscribe()
//	for f := range ch {
//	    draw(f)
//	}
package feed

import (
	"context"

	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// Update is one call for one race.
type Update = pipeline.Update

// EmitFunc hands an update to the coordinator. It returns the error of
// applying the update; sources decide whether a rejected update stops them.
type EmitFunc func(Update) error

// Source produces updates until its input is exhausted or ctx is done.
type Source interface {
	Run(ctx context.Context, emit EmitFunc) error
}
