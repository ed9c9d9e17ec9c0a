package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/hemicycle/pkg/core/hemicycle"
	"github.com/matzehuels/hemicycle/pkg/frame"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// WriteFrame writes f to w as indented JSON.
func WriteFrame(w io.Writer, f frame.Frame) error {
	return writeJSON(w, f)
}

// WriteFrameFile writes f to the file at path, replacing it if it exists.
func WriteFrameFile(path string, f frame.Frame) error {
	return writeFile(path, func(w io.Writer) error { return WriteFrame(w, f) })
}

// WriteAssignment writes a to w as indented JSON.
func WriteAssignment(w io.Writer, a *hemicycle.Assignment) error {
	return writeJSON(w, a)
}

// WriteUpdates writes updates to w as JSON Lines. The output can be read back
// with [ReadUpdates].
func WriteUpdates(w io.Writer, updates []pipeline.Update) error {
	enc := json.NewEncoder(w)
	for _, u := range updates {
		if err := enc.Encode(u); err != nil {
			return fmt.Errorf("encode update %s: %w", u.Entry, err)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
