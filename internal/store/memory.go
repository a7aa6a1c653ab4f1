package store

import (
	"sync"

	"ckpt-go/internal/ckpt"
)

// MemoryStore is an in-memory RestorePointStore for tests and dry runs.
// Entries are kept newest-first.
type MemoryStore struct {
	mu      sync.Mutex
	entries []*ckpt.RestorePoint
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List() ([]*ckpt.RestorePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ckpt.RestorePoint, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Get(id string) (*ckpt.RestorePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rp := range s.entries {
		if rp.ID == id {
			return rp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Append(rp *ckpt.RestorePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]*ckpt.RestorePoint{rp}, s.entries...)
	return nil
}

func (s *MemoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rp := range s.entries {
		if rp.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ ckpt.RestorePointStore = (*MemoryStore)(nil)
