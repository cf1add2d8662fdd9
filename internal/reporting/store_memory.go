package reporting

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryViolationStore keeps the violation log in a slice guarded by a
// mutex. Append-only; nothing ever removes an entry.
type InMemoryViolationStore struct {
	mu      sync.RWMutex
	records []ViolationRecord
}

func NewInMemoryViolationStore() *InMemoryViolationStore {
	return &InMemoryViolationStore{}
}

func (s *InMemoryViolationStore) Append(_ context.Context, record ViolationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *InMemoryViolationStore) ListRange(_ context.Context, from, to time.Time) ([]ViolationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ViolationRecord
	for _, record := range s.records {
		if record.Timestamp.Before(from) || record.Timestamp.After(to) {
			continue
		}
		out = append(out, record)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}
