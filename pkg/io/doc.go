// Package io reads result updates and writes frames and assignments.
//
// # Updates
//
// Updates are stored as JSON Lines, one [pipeline.Update] per line. Blank
// lines and lines starting with '#' are skipped, so recorded feeds can be
// annotated by hand:
//
//	# polls close in the east
//	{"entry": "a", "party": "DEM"}
//	{"entry": "e", "party": "GOP", "elected": true}
//	{"entry": "a"}
//
// The last line withdraws the call for "a". Use [ReadUpdates] or
// [ReadUpdatesFile] to load a whole file, or [ScanUpdates] to process updates
// one at a time as a feed would.
//
// # Frames and assignments
//
// [WriteFrame] and [WriteAssignment] write indented JSON. The assignment
// format can be read back with [hemicycle.UnmarshalAssignment]:
//
//	{
//	  "rows": [7, 9, 11],
//	  "tiebreaker": "front-row-from-right",
//	  "entries": [{"id": "a", "seats": 1}, ...],
//	  "slots": [{"slot": {"row": 0, "index": 0}, "entry": "b"}, ...]
//	}
//
// # Concurrency
//
// All functions are safe for concurrent use as long as callers do not share
// readers or writers.
//
// [hemicycle.UnmarshalAssignment]: github.com/matzehuels/hemicycle/pkg/core/hemicycle.UnmarshalAssignment
package io
