// Package memstore is an in-memory stock.Store, used in tests and when
// running without a cache file.
package memstore

import (
	"context"
	"sync"

	"geohashd/internal/stock"
)

// Store keeps records in a date-keyed map. Put follows the store
// contract: the first value written for a date wins.
type Store struct {
	mu      sync.RWMutex
	records map[stock.Date]stock.Record
}

func New() *Store {
	return &Store{records: make(map[stock.Date]stock.Record)}
}

func (s *Store) Get(_ context.Context, date stock.Date) (*stock.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[date]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *Store) Put(_ context.Context, rec stock.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Date]; ok {
		return nil
	}
	s.records[rec.Date] = rec
	return nil
}
