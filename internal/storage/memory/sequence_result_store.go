package memory

import (
	"context"
	"sort"
	"sync"

	"omori-lab/internal/domain"
	"omori-lab/internal/storage"
)

// SequenceResultStore is an in-memory implementation of storage.SequenceResultStore.
type SequenceResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SequenceResult // keyed by mainshock ID
}

// NewSequenceResultStore creates a new in-memory result store.
func NewSequenceResultStore() *SequenceResultStore {
	return &SequenceResultStore{
		data: make(map[string]*domain.SequenceResult),
	}
}

// Compile-time interface check.
var _ storage.SequenceResultStore = (*SequenceResultStore)(nil)

// Insert adds a result. Returns ErrDuplicateKey if one exists for the mainshock.
func (s *SequenceResultStore) Insert(_ context.Context, r *domain.SequenceResult) error {
	if r == nil || r.Mainshock.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.Mainshock.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	s.data[r.Mainshock.ID] = &copy
	return nil
}

// GetByMainshockID retrieves a result. Returns ErrNotFound if not exists.
func (s *SequenceResultStore) GetByMainshockID(_ context.Context, mainshockID string) (*domain.SequenceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[mainshockID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *r
	return &copy, nil
}

// GetAll retrieves all results ordered by mainshock time ASC, ties by ID.
func (s *SequenceResultStore) GetAll(_ context.Context) ([]*domain.SequenceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SequenceResult, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Mainshock.Time != result[j].Mainshock.Time {
			return result[i].Mainshock.Time < result[j].Mainshock.Time
		}
		return result[i].Mainshock.ID < result[j].Mainshock.ID
	})
	return result, nil
}

// DeleteAll removes every stored result.
func (s *SequenceResultStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]*domain.SequenceResult)
	return nil
}
