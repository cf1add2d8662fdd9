// Package assets is the registry of real-world assets backing issued
// tokens: valuation, custody, schemaless attributes, revenue streams, and
// the single authorized issuance channel per asset.
package assets

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"tokengate/internal/platform/authz"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/sentinel"
	"tokengate/pkg/requestcontext"
)

// Registry is the authoritative store of asset records. It is the sole
// writer of asset state; the ledger and reporting only read through it.
type Registry struct {
	store  Store
	logger *slog.Logger
}

func NewRegistry(store Store, logger *slog.Logger) *Registry {
	return &Registry{store: store, logger: logger}
}

// RegisterAsset creates the registry entry for a new asset. Fails with
// AlreadyExists if the id is taken.
func (r *Registry) RegisterAsset(ctx context.Context, id domain.AssetID, name string, category Category, valuation uint64, metadataURI string, custodian domain.PrincipalID) error {
	if err := authz.Require(ctx, domain.RoleAdmin, domain.RoleAgent); err != nil {
		return err
	}
	if id.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "asset id is required")
	}
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "asset name is required")
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return err
	}
	now := requestcontext.Now(ctx)
	asset := Asset{
		ID:                id,
		Name:              name,
		Category:          category,
		Valuation:         valuation,
		MetadataURI:       metadataURI,
		Custodian:         custodian,
		Status:            StatusRegistered,
		TextAttributes:    make(map[string]string),
		NumericAttributes: make(map[string]uint64),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := r.store.Create(ctx, asset); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeAlreadyExists, "asset id already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register asset")
	}
	r.logger.InfoContext(ctx, "asset registered",
		"asset", id.String(),
		"category", string(category),
		"actor", requestcontext.ActorID(ctx),
	)
	return nil
}

// GetAsset returns the record for id or NotFound.
func (r *Registry) GetAsset(ctx context.Context, id domain.AssetID) (Asset, error) {
	return r.find(ctx, id)
}

// ListAssets returns all registered assets in stable id order.
func (r *Registry) ListAssets(ctx context.Context) ([]Asset, error) {
	assets, err := r.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assets")
	}
	return assets, nil
}

// SetTextAttribute stores an arbitrary text attribute. Keys are open-ended;
// no schema is enforced at this layer.
func (r *Registry) SetTextAttribute(ctx context.Context, id domain.AssetID, key, value string) error {
	return r.mutate(ctx, id, func(asset *Asset) error {
		if key == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "attribute key is required")
		}
		asset.TextAttributes[key] = value
		return nil
	})
}

// SetNumericAttribute stores an arbitrary numeric attribute under the same
// open-ended key space as text attributes.
func (r *Registry) SetNumericAttribute(ctx context.Context, id domain.AssetID, key string, value uint64) error {
	return r.mutate(ctx, id, func(asset *Asset) error {
		if key == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "attribute key is required")
		}
		asset.NumericAttributes[key] = value
		return nil
	})
}

// CreateRevenueStream appends a payout schedule to the asset. Streams are
// never edited or removed once created.
func (r *Registry) CreateRevenueStream(ctx context.Context, id domain.AssetID, amount, periodSeconds uint64, collector domain.PrincipalID) (RevenueStream, error) {
	if amount == 0 || periodSeconds == 0 {
		return RevenueStream{}, dErrors.New(dErrors.CodeInvalidInput, "revenue stream amount and period must be positive")
	}
	if collector.IsNil() {
		return RevenueStream{}, dErrors.New(dErrors.CodeInvalidInput, "revenue stream collector is required")
	}
	stream := RevenueStream{
		ID:            uuid.New(),
		Amount:        amount,
		PeriodSeconds: periodSeconds,
		Collector:     collector,
	}
	err := r.mutate(ctx, id, func(asset *Asset) error {
		stream.CreatedAt = requestcontext.Now(ctx)
		asset.RevenueStreams = append(asset.RevenueStreams, stream)
		return nil
	})
	if err != nil {
		return RevenueStream{}, err
	}
	return stream, nil
}

// UpdateValuation replaces the asset's recorded valuation.
func (r *Registry) UpdateValuation(ctx context.Context, id domain.AssetID, amount uint64) error {
	return r.mutate(ctx, id, func(asset *Asset) error {
		asset.Valuation = amount
		return nil
	})
}

// AuthorizeTokenContract establishes or revokes the asset's issuance
// channel. An asset holds at most one active contract; authorizing a second
// fails with AlreadyBound until the first is revoked.
func (r *Registry) AuthorizeTokenContract(ctx context.Context, id domain.AssetID, token domain.TokenID, allowed bool) error {
	if token.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "token contract id is required")
	}
	return r.mutate(ctx, id, func(asset *Asset) error {
		if allowed {
			if !asset.TokenContract.IsNil() && asset.TokenContract != token {
				return dErrors.Newf(dErrors.CodeAlreadyBound, "asset already has authorized contract %s", asset.TokenContract)
			}
			asset.TokenContract = token
			return nil
		}
		if asset.TokenContract != token {
			return dErrors.New(dErrors.CodeNotFound, "token contract is not authorized for this asset")
		}
		asset.TokenContract = domain.TokenID{}
		return nil
	})
}

// TokenContractAuthorized answers the ledger's pre-mint check. Unknown
// contracts are simply unauthorized, never an error.
func (r *Registry) TokenContractAuthorized(ctx context.Context, token domain.TokenID) (bool, error) {
	_, err := r.store.FindByTokenContract(ctx, token)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up token contract")
	}
	return true, nil
}

// DeactivateAsset moves the asset to deregistered. The record stays
// readable for reporting but rejects further mutation.
func (r *Registry) DeactivateAsset(ctx context.Context, id domain.AssetID) error {
	err := r.mutate(ctx, id, func(asset *Asset) error {
		asset.Status = StatusDeregistered
		asset.TokenContract = domain.TokenID{}
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "asset deactivated",
		"asset", id.String(),
		"actor", requestcontext.ActorID(ctx),
	)
	return nil
}

func (r *Registry) find(ctx context.Context, id domain.AssetID) (Asset, error) {
	asset, err := r.store.Find(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Asset{}, dErrors.New(dErrors.CodeNotFound, "asset is not registered")
	}
	if err != nil {
		return Asset{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load asset")
	}
	return asset, nil
}

// mutate loads, updates, and saves one asset under the standard guards:
// admin or agent role, asset present, asset still active.
func (r *Registry) mutate(ctx context.Context, id domain.AssetID, apply func(asset *Asset) error) error {
	if err := authz.Require(ctx, domain.RoleAdmin, domain.RoleAgent); err != nil {
		return err
	}
	asset, err := r.find(ctx, id)
	if err != nil {
		return err
	}
	if asset.Status == StatusDeregistered {
		return dErrors.New(dErrors.CodeInvariantViolation, "asset is deregistered")
	}
	if err := apply(&asset); err != nil {
		return err
	}
	asset.UpdatedAt = requestcontext.Now(ctx)
	if err := r.store.Save(ctx, asset); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save asset")
	}
	return nil
}
