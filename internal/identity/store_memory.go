package identity

import (
	"context"
	"sort"
	"sync"

	"tokengate/pkg/domain"
	"tokengate/pkg/platform/sentinel"
)

// InMemoryStore keeps identity records in a map guarded by a mutex. Records
// are deep-copied on the way in and out so callers can't mutate stored
// claims bundles behind the registry's back.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.PrincipalID]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.PrincipalID]Record)}
}

func (s *InMemoryStore) Create(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.Principal]; ok {
		return sentinel.ErrConflict
	}
	s.records[record.Principal] = copyRecord(record)
	return nil
}

func (s *InMemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.Principal]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[record.Principal] = copyRecord(record)
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, principal domain.PrincipalID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[principal]; ok {
		return copyRecord(record), nil
	}
	return Record{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Delete(_ context.Context, principal domain.PrincipalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[principal]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, principal)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, copyRecord(record))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Principal.String() < records[j].Principal.String()
	})
	return records, nil
}

func copyRecord(record Record) Record {
	claims := make(map[domain.ClaimTopicID]Claim, len(record.Claims))
	for topicID, claim := range record.Claims {
		claims[topicID] = claim
	}
	record.Claims = claims
	return record
}
