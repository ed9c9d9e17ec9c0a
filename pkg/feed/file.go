package feed

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hemicycle/pkg/errors"
	hio "github.com/matzehuels/hemicycle/pkg/io"
)

// FileSource replays updates from a JSON Lines file.
type FileSource struct {
	// Path of the file. Ignored when Reader is set.
	Path string

	// Reader supplies the updates instead of Path.
	Reader io.Reader

	// Interval paces the replay. Zero replays as fast as possible.
	Interval time.Duration

	// Strict stops the replay at the first rejected update. Otherwise
	// rejected updates are logged and skipped.
	Strict bool

	Logger *log.Logger
}

// Run emits every update of the file in order.
func (s *FileSource) Run(ctx context.Context, emit EmitFunc) error {
	r := s.Reader
	if r == nil {
		f, err := os.Open(s.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "updates %s not found", s.Path)
			}
			return fmt.Errorf("open %s: %w", s.Path, err)
		}
		defer f.Close()
		r = f
	}
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}

	first := true
	return hio.ScanUpdates(r, func(u Update) error {
		if !first && s.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.Interval):
			}
		}
		first = false
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(u); err != nil {
			if s.Strict || ctx.Err() != nil {
				return err
			}
			logger.Warn("skipping update", "entry", u.Entry, "err", err)
		}
		return nil
	})
}

var _ Source = (*FileSource)(nil)
