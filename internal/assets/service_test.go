package assets

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/testutil"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(NewInMemoryStore(), slog.New(slog.DiscardHandler))
}

var testCustodian = domain.NewPrincipalID()

func registerTestAsset(t *testing.T, ctx context.Context, registry *Registry) domain.AssetID {
	t.Helper()
	id := domain.NewAssetID()
	require.NoError(t, registry.RegisterAsset(ctx, id, "Warehouse 12", CategoryRealEstate, 5_000_000, "ipfs://meta", testCustodian))
	return id
}

func TestRegisterAsset(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())

	t.Run("rejects unauthorized caller", func(t *testing.T) {
		registry := newTestRegistry(t)
		err := registry.RegisterAsset(context.Background(), domain.NewAssetID(), "W", CategoryOther, 1, "", domain.PrincipalID{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	t.Run("registers and reads back", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)

		asset, err := registry.GetAsset(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Warehouse 12", asset.Name)
		assert.Equal(t, CategoryRealEstate, asset.Category)
		assert.Equal(t, uint64(5_000_000), asset.Valuation)
		assert.Equal(t, testCustodian, asset.Custodian)
		assert.Equal(t, StatusRegistered, asset.Status)
	})

	t.Run("rejects taken id", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)

		err := registry.RegisterAsset(ctx, id, "Other", CategoryOther, 1, "", domain.PrincipalID{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		registry := newTestRegistry(t)
		err := registry.RegisterAsset(ctx, domain.NewAssetID(), "W", Category("boats"), 1, "", domain.PrincipalID{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("get unknown asset fails with NotFound", func(t *testing.T) {
		registry := newTestRegistry(t)
		_, err := registry.GetAsset(ctx, domain.NewAssetID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestAttributes(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())

	t.Run("accepts arbitrary keys", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)

		require.NoError(t, registry.SetTextAttribute(ctx, id, "insurance_policy", "POL-991"))
		require.NoError(t, registry.SetTextAttribute(ctx, id, "x-custom-anything", "yes"))
		require.NoError(t, registry.SetNumericAttribute(ctx, id, "floor_area_sqm", 12400))

		asset, err := registry.GetAsset(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "POL-991", asset.TextAttributes["insurance_policy"])
		assert.Equal(t, uint64(12400), asset.NumericAttributes["floor_area_sqm"])
	})

	t.Run("overwrites on repeated set", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)

		require.NoError(t, registry.SetNumericAttribute(ctx, id, "units", 10))
		require.NoError(t, registry.SetNumericAttribute(ctx, id, "units", 11))

		asset, err := registry.GetAsset(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, uint64(11), asset.NumericAttributes["units"])
	})

	t.Run("rejects empty key", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)

		err := registry.SetTextAttribute(ctx, id, "", "v")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestRevenueStreams(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	collector := domain.NewPrincipalID()

	t.Run("appends streams in order", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)

		first, err := registry.CreateRevenueStream(ctx, id, 1000, 86400, collector)
		require.NoError(t, err)
		second, err := registry.CreateRevenueStream(ctx, id, 2500, 604800, collector)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		asset, err := registry.GetAsset(ctx, id)
		require.NoError(t, err)
		require.Len(t, asset.RevenueStreams, 2)
		assert.Equal(t, uint64(1000), asset.RevenueStreams[0].Amount)
		assert.Equal(t, uint64(2500), asset.RevenueStreams[1].Amount)
	})

	t.Run("rejects zero amount or period", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)

		_, err := registry.CreateRevenueStream(ctx, id, 0, 86400, collector)
		require.Error(t, err)
		_, err = registry.CreateRevenueStream(ctx, id, 100, 0, collector)
		require.Error(t, err)
	})
}

func TestAuthorizeTokenContract(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())

	t.Run("authorizes and answers the ledger lookup", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)
		token := domain.NewTokenID()

		authorized, err := registry.TokenContractAuthorized(ctx, token)
		require.NoError(t, err)
		assert.False(t, authorized, "unknown contract is unauthorized")

		require.NoError(t, registry.AuthorizeTokenContract(ctx, id, token, true))
		authorized, err = registry.TokenContractAuthorized(ctx, token)
		require.NoError(t, err)
		assert.True(t, authorized)
	})

	t.Run("rejects a second active contract", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)
		first, second := domain.NewTokenID(), domain.NewTokenID()

		require.NoError(t, registry.AuthorizeTokenContract(ctx, id, first, true))
		err := registry.AuthorizeTokenContract(ctx, id, second, true)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyBound))
	})

	t.Run("revocation frees the channel", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)
		first, second := domain.NewTokenID(), domain.NewTokenID()

		require.NoError(t, registry.AuthorizeTokenContract(ctx, id, first, true))
		require.NoError(t, registry.AuthorizeTokenContract(ctx, id, first, false))
		require.NoError(t, registry.AuthorizeTokenContract(ctx, id, second, true))

		authorized, err := registry.TokenContractAuthorized(ctx, first)
		require.NoError(t, err)
		assert.False(t, authorized)
	})

	t.Run("revoking a contract that was never bound fails", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)

		err := registry.AuthorizeTokenContract(ctx, id, domain.NewTokenID(), false)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestAssetLifecycle(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())

	t.Run("valuation update", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)

		require.NoError(t, registry.UpdateValuation(ctx, id, 6_200_000))
		asset, err := registry.GetAsset(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, uint64(6_200_000), asset.Valuation)
	})

	t.Run("deactivated asset stays readable but immutable", func(t *testing.T) {
		registry := newTestRegistry(t)
		id := registerTestAsset(t, ctx, registry)
		token := domain.NewTokenID()
		require.NoError(t, registry.AuthorizeTokenContract(ctx, id, token, true))

		require.NoError(t, registry.DeactivateAsset(ctx, id))

		asset, err := registry.GetAsset(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, StatusDeregistered, asset.Status)
		assert.True(t, asset.TokenContract.IsNil(), "deactivation revokes the issuance channel")

		err = registry.UpdateValuation(ctx, id, 1)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
