package assets

import (
	"context"
	"sort"
	"sync"

	"tokengate/pkg/domain"
	"tokengate/pkg/platform/sentinel"
)

// InMemoryStore keeps assets in a map guarded by a mutex. Assets are
// deep-copied on the way in and out so callers can't mutate stored
// attribute maps behind the registry's back.
type InMemoryStore struct {
	mu     sync.RWMutex
	assets map[domain.AssetID]Asset
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{assets: make(map[domain.AssetID]Asset)}
}

func (s *InMemoryStore) Create(_ context.Context, asset Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[asset.ID]; ok {
		return sentinel.ErrConflict
	}
	s.assets[asset.ID] = copyAsset(asset)
	return nil
}

func (s *InMemoryStore) Save(_ context.Context, asset Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[asset.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.assets[asset.ID] = copyAsset(asset)
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, id domain.AssetID) (Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if asset, ok := s.assets[id]; ok {
		return copyAsset(asset), nil
	}
	return Asset{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByTokenContract(_ context.Context, token domain.TokenID) (Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, asset := range s.assets {
		if asset.TokenContract == token {
			return copyAsset(asset), nil
		}
	}
	return Asset{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assets := make([]Asset, 0, len(s.assets))
	for _, asset := range s.assets {
		assets = append(assets, copyAsset(asset))
	}
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].ID.String() < assets[j].ID.String()
	})
	return assets, nil
}

func copyAsset(asset Asset) Asset {
	text := make(map[string]string, len(asset.TextAttributes))
	for k, v := range asset.TextAttributes {
		text[k] = v
	}
	numeric := make(map[string]uint64, len(asset.NumericAttributes))
	for k, v := range asset.NumericAttributes {
		numeric[k] = v
	}
	asset.TextAttributes = text
	asset.NumericAttributes = numeric
	asset.RevenueStreams = append([]RevenueStream(nil), asset.RevenueStreams...)
	return asset
}
