package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// maxLine bounds the length of one JSON Lines record.
const maxLine = 1 << 20

// ScanUpdates decodes JSON Lines updates from r and calls fn for each one in
// order. Scanning stops at the first decode error or the first error returned
// by fn, which is returned unchanged.
//
// Decode errors carry the INVALID_INPUT code and the offending line number.
// ScanUpdates does not close r.
func ScanUpdates(r io.Reader, fn func(u pipeline.Update) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 || b[0] == '#' {
			continue
		}
		var u pipeline.Update
		if err := json.Unmarshal(b, &u); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", line)
		}
		if err := fn(u); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read updates: %w", err)
	}
	return nil
}

// ReadUpdates decodes all JSON Lines updates from r.
func ReadUpdates(r io.Reader) ([]pipeline.Update, error) {
	var out []pipeline.Update
	err := ScanUpdates(r, func(u pipeline.Update) error {
		out = append(out, u)
		return nil
	})
	return out, err
}

// ReadUpdatesFile reads the JSON Lines file at path.
//
// A missing file yields a FILE_NOT_FOUND error; decode errors are wrapped
// with the path for context.
func ReadUpdatesFile(path string) ([]pipeline.Update, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "updates %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	updates, err := ReadUpdates(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return updates, nil
}
