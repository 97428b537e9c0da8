package store

import (
	"context"
	"sync"

	"github.com/Shivanand-hulikatti/eventspark/internal/codec"
)

// MemoryStore keeps collections in memory. Records are copied on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]codec.Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]codec.Record)}
}

func (s *MemoryStore) Load(_ context.Context, collection string) ([]codec.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.collections[collection]), nil
}

func (s *MemoryStore) Save(_ context.Context, collection string, records []codec.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = cloneAll(records)
	return nil
}

func (s *MemoryStore) UpdateOne(_ context.Context, collection, id string, mutate func(codec.Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	updateFirst(s.collections[collection], id, mutate)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneAll(records []codec.Record) []codec.Record {
	out := make([]codec.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.Clone())
	}
	return out
}
