package store

import (
	"context"
	"sort"
	"sync"

	"usertrail/internal/event"
)

// MemoryStore keeps per-entity timelines in memory, sorted by timestamp.
// Concurrent appends to different entities are independent; appends to the
// same (entity, timestamp) key replace the previous record wholesale.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64][]event.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64][]event.Record)}
}

func (s *MemoryStore) Append(_ context.Context, record event.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	timeline := s.records[record.EntityID]
	i := sort.Search(len(timeline), func(i int) bool {
		return timeline[i].EventTimestamp >= record.EventTimestamp
	})
	if i < len(timeline) && timeline[i].EventTimestamp == record.EventTimestamp {
		timeline[i] = record
		return nil
	}

	timeline = append(timeline, event.Record{})
	copy(timeline[i+1:], timeline[i:])
	timeline[i] = record
	s.records[record.EntityID] = timeline
	return nil
}

func (s *MemoryStore) ListByEntity(_ context.Context, entityID int64) ([]event.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]event.Record{}, s.records[entityID]...), nil
}

// Clear resets the store. Test helper.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[int64][]event.Record)
}
