package claimtopics

import (
	"context"
	"sort"
	"sync"

	"tokengate/pkg/domain"
	"tokengate/pkg/platform/sentinel"
)

// InMemoryStore keeps the topic/issuer relation in maps guarded by a mutex.
// It favors clarity over performance; the relation is small in practice.
type InMemoryStore struct {
	mu      sync.RWMutex
	topics  map[domain.ClaimTopicID]ClaimTopic
	issuers map[domain.IssuerID]TrustedIssuer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		topics:  make(map[domain.ClaimTopicID]ClaimTopic),
		issuers: make(map[domain.IssuerID]TrustedIssuer),
	}
}

func (s *InMemoryStore) AddTopic(_ context.Context, topic ClaimTopic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[topic.ID]; ok {
		return sentinel.ErrConflict
	}
	s.topics[topic.ID] = topic
	return nil
}

func (s *InMemoryStore) RemoveTopic(_ context.Context, id domain.ClaimTopicID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.topics, id)
	return nil
}

func (s *InMemoryStore) TopicExists(_ context.Context, id domain.ClaimTopicID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.topics[id]
	return ok, nil
}

func (s *InMemoryStore) ListTopics(_ context.Context) ([]ClaimTopic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topics := make([]ClaimTopic, 0, len(s.topics))
	for _, t := range s.topics {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].ID < topics[j].ID })
	return topics, nil
}

func (s *InMemoryStore) SaveIssuer(_ context.Context, issuer TrustedIssuer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuers[issuer.ID] = issuer
	return nil
}

func (s *InMemoryStore) RemoveIssuer(_ context.Context, id domain.IssuerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.issuers[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.issuers, id)
	return nil
}

func (s *InMemoryStore) FindIssuer(_ context.Context, id domain.IssuerID) (TrustedIssuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if issuer, ok := s.issuers[id]; ok {
		return issuer, nil
	}
	return TrustedIssuer{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListIssuers(_ context.Context) ([]TrustedIssuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issuers := make([]TrustedIssuer, 0, len(s.issuers))
	for _, issuer := range s.issuers {
		issuers = append(issuers, issuer)
	}
	sort.Slice(issuers, func(i, j int) bool {
		return issuers[i].ID.String() < issuers[j].ID.String()
	})
	return issuers, nil
}
