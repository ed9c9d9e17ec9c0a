package store

import (
	"context"
	"sync"

	"github.com/matzehuels/hemicycle/pkg/pipeline"
)

// MemoryStore keeps updates in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]pipeline.Update
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]pipeline.Update)}
}

func (s *MemoryStore) Save(ctx context.Context, broadcast string, u pipeline.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.data[broadcast]
	if !ok {
		m = make(map[string]pipeline.Update)
		s.data[broadcast] = m
	}
	m[u.Entry] = u
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, broadcast string) ([]pipeline.Update, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]pipeline.Update, 0, len(s.data[broadcast]))
	for _, u := range s.data[broadcast] {
		out = append(out, u)
	}
	sortUpdates(out)
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, broadcast string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, broadcast)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
