package storage

import (
	"context"
	"sync"

	"synergism-calc/core/report"
	"synergism-calc/internal/errors"
)

// MemoryStore is an in-memory storage backend, used by the API when no
// directory is configured and by tests
type MemoryStore struct {
	records map[string]*Record
	opts    options
	mu      sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		opts:    newOptions(opts),
	}
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if err := prepare(rec, s.opts.clock); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, errors.NotFound("report", id)
	}
	return rec, nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*Record
	for _, rec := range s.records {
		if filter.match(rec) {
			records = append(records, rec)
		}
	}
	return filter.page(records), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return errors.NotFound("report", id)
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Latest(ctx context.Context, profile string) (*Record, error) {
	return latest(ctx, s, profile)
}

func (s *MemoryStore) Compare(ctx context.Context, oldID, newID string) (*report.Comparison, error) {
	return compare(ctx, s, oldID, newID)
}

func (s *MemoryStore) Close() error {
	return nil
}
