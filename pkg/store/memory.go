package store

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/valuechain/pkg/errors"
)

// MemoryStore keeps snapshots in a map. Stored snapshots are copied on the
// way in and out, so callers may modify what they pass or receive.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Snapshot
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Snapshot)}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.docs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", id)
	}
	return snap.clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := errors.ValidateDocumentID(snap.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[snap.ID] = snap.clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
