package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jcferry08/dwelltime/internal/compliance"
)

// InMemoryRunStore is a thread-safe RunStore backed by maps, used in tests
// and when the service runs without a database.
type InMemoryRunStore struct {
	mu      sync.RWMutex
	runs    map[uuid.UUID]*Run
	records map[uuid.UUID][]compliance.Record
}

// NewInMemoryRunStore creates an empty in-memory run store.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{
		runs:    make(map[uuid.UUID]*Run),
		records: make(map[uuid.UUID][]compliance.Record),
	}
}

// SaveRun stores the run and its records.
func (s *InMemoryRunStore) SaveRun(_ context.Context, run *Run, records []compliance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already saved", run.ID)
	}

	copied := *run
	s.runs[run.ID] = &copied
	s.records[run.ID] = append([]compliance.Record(nil), records...)

	return nil
}

// GetRun fetches a run's stats by ID.
func (s *InMemoryRunStore) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}

	copied := *run

	return &copied, nil
}

// ListRecords returns a filtered page of a run's records plus the total
// matching count. Results are ordered by shipment identifier to match the
// PostgreSQL implementation.
func (s *InMemoryRunStore) ListRecords(_ context.Context, runID uuid.UUID, query RecordQuery) ([]compliance.Record, int, error) {
	query.normalize()

	s.mu.RLock()
	records, ok := s.records[runID]
	s.mu.RUnlock()

	if !ok {
		return nil, 0, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}

	matched := compliance.FilterRecords(records, query.Filter)

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ShipmentID < matched[j].ShipmentID
	})

	total := len(matched)

	start := query.Offset
	if start > total {
		start = total
	}

	end := start + query.Limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}
