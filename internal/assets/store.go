package assets

import (
	"context"

	"tokengate/pkg/domain"
)

// Store persists asset records. Save is an upsert over an existing asset;
// Create fails on a taken id so registration stays idempotency-checked at
// the storage boundary. FindByTokenContract answers the ledger's
// authorization lookup without a full scan on SQL backends.
type Store interface {
	Create(ctx context.Context, asset Asset) error
	Save(ctx context.Context, asset Asset) error
	Find(ctx context.Context, id domain.AssetID) (Asset, error)
	FindByTokenContract(ctx context.Context, token domain.TokenID) (Asset, error)
	List(ctx context.Context) ([]Asset, error)
}
