package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/hemicycle/pkg/errors"
	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// FileStore is a file-based store for CLI use.
// Each broadcast is stored as one JSON file mapping entry IDs to updates.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store in baseDir.
// If baseDir is empty, defaults to ~/.config/hemicycle/broadcasts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "hemicycle", "broadcasts")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) broadcastPath(broadcast string) string {
	return filepath.Join(s.baseDir, broadcast+".json")
}

func (s *FileStore) read(broadcast string) (map[string]pipeline.Update, error) {
	data, err := os.ReadFile(s.broadcastPath(broadcast))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]pipeline.Update{}, nil
		}
		return nil, fmt.Errorf("read broadcast file: %w", err)
	}
	m := make(map[string]pipeline.Update)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse broadcast %s", broadcast)
	}
	return m, nil
}

func (s *FileStore) Save(ctx context.Context, broadcast string, u pipeline.Update) error {
	if err := errors.ValidateID("broadcast", broadcast); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read(broadcast)
	if err != nil {
		return err
	}
	m[u.Entry] = u

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal broadcast: %w", err)
	}
	path := s.broadcastPath(broadcast)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write broadcast file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write broadcast file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, broadcast string) ([]pipeline.Update, error) {
	if err := errors.ValidateID("broadcast", broadcast); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.read(broadcast)
	if err != nil {
		return nil, err
	}
	out := make([]pipeline.Update, 0, len(m))
	for _, u := range m {
		out = append(out, u)
	}
	sortUpdates(out)
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, broadcast string) error {
	if err := errors.ValidateID("broadcast", broadcast); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.broadcastPath(broadcast)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove broadcast file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for broadcast files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
