package country

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/testutil"
)

type fakeResolver struct {
	countries map[domain.PrincipalID]domain.CountryCode
}

func (f *fakeResolver) InvestorCountry(_ context.Context, principal domain.PrincipalID) (domain.CountryCode, error) {
	if code, ok := f.countries[principal]; ok {
		return code, nil
	}
	return 0, dErrors.New(dErrors.CodeNotFound, "identity not registered")
}

func TestCanTransferFailClosed(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	from := domain.NewPrincipalID()
	resident := domain.NewPrincipalID()
	foreigner := domain.NewPrincipalID()
	unregistered := domain.NewPrincipalID()

	resolver := &fakeResolver{countries: map[domain.PrincipalID]domain.CountryCode{
		resident:  840,
		foreigner: 408,
	}}
	module := New(resolver)
	require.NoError(t, module.SetCountryAllowed(ctx, 840, true))

	t.Run("allowed country passes", func(t *testing.T) {
		verdict, err := module.CanTransfer(ctx, from, resident, 100)
		require.NoError(t, err)
		assert.True(t, verdict.Allowed)
	})

	t.Run("never-set country is denied", func(t *testing.T) {
		verdict, err := module.CanTransfer(ctx, from, foreigner, 100)
		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
		assert.Contains(t, verdict.Reason, "not on the allow-list")
	})

	t.Run("unregistered recipient is denied", func(t *testing.T) {
		verdict, err := module.CanTransfer(ctx, from, unregistered, 100)
		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
	})

	t.Run("revoking an allowance denies again", func(t *testing.T) {
		require.NoError(t, module.SetCountryAllowed(ctx, 840, false))
		verdict, err := module.CanTransfer(ctx, from, resident, 100)
		require.NoError(t, err)
		assert.False(t, verdict.Allowed)
	})
}

func TestBatchSetCountriesAllowed(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	module := New(&fakeResolver{})

	t.Run("rejects mismatched arity", func(t *testing.T) {
		err := module.BatchSetCountriesAllowed(ctx, []domain.CountryCode{840, 276}, []bool{true})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeArityMismatch))
	})

	t.Run("applies parallel arrays", func(t *testing.T) {
		err := module.BatchSetCountriesAllowed(ctx,
			[]domain.CountryCode{840, 276, 392},
			[]bool{true, true, false},
		)
		require.NoError(t, err)
		assert.True(t, module.IsCountryAllowed(840))
		assert.True(t, module.IsCountryAllowed(276))
		assert.False(t, module.IsCountryAllowed(392))
	})

	t.Run("requires admin", func(t *testing.T) {
		err := module.BatchSetCountriesAllowed(context.Background(), nil, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})
}
