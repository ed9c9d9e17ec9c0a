// Package pkg provides the libraries behind hemicycle, a live seat chart for
// election-night broadcasts.
//
// # Overview
//
// A hemicycle chart shows every seat of a chamber as a dot in concentric rows.
// Seats are assigned to races once, before the night, so that the seats of
// each race sit together; after that, results only recolour dots and move the
// seat bars. The pkg directory is organized into these areas:
//
//  1. [core] - Domain logic (seat allocation, results, tallies, seat bars)
//  2. [frame] - Everything a renderer needs to draw one frame of the graphic
//  3. [pipeline] - Orchestration (config → allocation → broadcast)
//  4. [feed] - Result ingestion and the single-writer coordinator
//  5. [server] and [client] - HTTP access to a running broadcast
//  6. [cache], [store], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through hemicycle:
//
//	Broadcast config (TOML/YAML/JSON)
//	         ↓
//	    [config] package (validate, palette, layout hash)
//	         ↓
//	    [core/hemicycle] package (contiguous seat allocation, cached)
//	         ↓
//	    [pipeline] package (broadcast = assignment + aggregator + frame builder)
//	         ↓
//	    [feed] package (file, NATS and HTTP updates → one coordinator)
//	         ↓
//	    Frames as JSON, SSE, terminal view, DOT/SVG
//
// # Quick Start
//
// Allocate a chart and apply one result:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/hemicycle/pkg/config"
//	    "github.com/matzehuels/hemicycle/pkg/pipeline"
//	)
//
//	cfg, _ := config.Load("house.toml")
//	b, _ := pipeline.NewRunner(nil, nil, nil).Start(ctx, cfg, pipeline.Options{})
//	f, _ := b.Apply(ctx, pipeline.Update{Entry: "ca-12", Party: "DEM", Elected: true})
//	fmt.Println(f.Left.Label)
//
// For a live broadcast, wrap the broadcast in a [feed.Coordinator] and serve
// it with [server.New].
package pkg
