// Package memory implements an in-memory record store. Used by tests and by
// the standalone mode that runs without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ailearn-hub/learning-progress-hub/internal/domain/progress"
	"github.com/ailearn-hub/learning-progress-hub/internal/domain/shared"
)

// RecordStore implements progress.Store with a mutex-guarded map.
// Records are deep-copied on both read and write, so callers can mutate what
// they hold without corrupting the store.
type RecordStore struct {
	mu       sync.RWMutex
	sessions map[shared.SessionID]map[string]*progress.Record
}

// NewRecordStore creates an empty in-memory store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		sessions: make(map[shared.SessionID]map[string]*progress.Record),
	}
}

// Get returns one record, or shared.ErrRecordNotFound.
func (s *RecordStore) Get(_ context.Context, sessionID shared.SessionID, key progress.RecordKey) (*progress.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.sessions[sessionID]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}
	record, ok := records[key.String()]
	if !ok {
		return nil, shared.ErrRecordNotFound
	}
	return record.Clone(), nil
}

// Put inserts or replaces one record.
func (s *RecordStore) Put(_ context.Context, record *progress.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.sessions[record.SessionID]
	if !ok {
		records = make(map[string]*progress.Record)
		s.sessions[record.SessionID] = records
	}
	records[record.Key.String()] = record.Clone()
	return nil
}

// List returns the session's records matching the filter.
func (s *RecordStore) List(_ context.Context, sessionID shared.SessionID, filter progress.Filter) ([]*progress.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*progress.Record
	for _, record := range s.sessions[sessionID] {
		if filter.Matches(record.Key) {
			result = append(result, record.Clone())
		}
	}
	return result, nil
}

// Sessions returns the distinct session IDs present in the store.
func (s *RecordStore) Sessions(_ context.Context) ([]shared.SessionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]shared.SessionID, 0, len(s.sessions))
	for id := range s.sessions {
		sessions = append(sessions, id)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i] < sessions[j] })
	return sessions, nil
}

// Len returns the total number of stored records. Test helper.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, records := range s.sessions {
		n += len(records)
	}
	return n
}
