package transferlimit

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/pkg/domain"
	"tokengate/pkg/requestcontext"
	"tokengate/pkg/testutil"
)

func TestDailyCapSequence(t *testing.T) {
	// Three transfers of 400 against a daily cap of 1000: the first two
	// pass (cumulative 800), the third would reach 1200 and is rejected.
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := testutil.AdminContext(base)
	from, to := domain.NewPrincipalID(), domain.NewPrincipalID()
	module := New(NewInMemoryWindowStore(), 1000, 5000)

	for i := 0; i < 2; i++ {
		verdict, err := module.CanTransfer(ctx, from, to, 400)
		require.NoError(t, err)
		require.True(t, verdict.Allowed, "transfer %d should pass", i+1)
		require.NoError(t, module.Transferred(ctx, from, to, 400))
	}

	verdict, err := module.CanTransfer(ctx, from, to, 400)
	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	assert.Contains(t, verdict.Reason, "daily limit exceeded")
}

func TestExactHeadroomAllowed(t *testing.T) {
	// A transfer equal to the remaining headroom must pass; one more unit
	// must not.
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := testutil.AdminContext(base)
	from, to := domain.NewPrincipalID(), domain.NewPrincipalID()
	module := New(NewInMemoryWindowStore(), 1000, 5000)

	require.NoError(t, module.Transferred(ctx, from, to, 600))

	verdict, err := module.CanTransfer(ctx, from, to, 400)
	require.NoError(t, err)
	assert.True(t, verdict.Allowed, "exactly at the cap")
	require.NoError(t, module.Transferred(ctx, from, to, 400))

	verdict, err = module.CanTransfer(ctx, from, to, 1)
	require.NoError(t, err)
	assert.False(t, verdict.Allowed, "one unit past the cap")
}

func TestWindowRollover(t *testing.T) {
	// After the day boundary the daily counter resets; the monthly counter
	// keeps accumulating until the month boundary.
	base := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	ctx := testutil.AdminContext(base)
	from, to := domain.NewPrincipalID(), domain.NewPrincipalID()
	module := New(NewInMemoryWindowStore(), 1000, 1500)

	require.NoError(t, module.Transferred(ctx, from, to, 1000))

	verdict, err := module.CanTransfer(ctx, from, to, 1)
	require.NoError(t, err)
	require.False(t, verdict.Allowed, "daily cap consumed")

	nextDay := requestcontext.WithTime(ctx, base.Add(2*time.Hour))
	verdict, err = module.CanTransfer(nextDay, from, to, 500)
	require.NoError(t, err)
	assert.True(t, verdict.Allowed, "daily window rolled")
	require.NoError(t, module.Transferred(nextDay, from, to, 500))

	// 1500 transferred this month: the monthly cap now rejects.
	verdict, err = module.CanTransfer(nextDay, from, to, 1)
	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	assert.Contains(t, verdict.Reason, "monthly limit exceeded")

	nextMonth := requestcontext.WithTime(ctx, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	verdict, err = module.CanTransfer(nextMonth, from, to, 1000)
	require.NoError(t, err)
	assert.True(t, verdict.Allowed, "monthly window rolled")
}

func TestHugeAmountCannotWrapPastCap(t *testing.T) {
	// An amount near MaxUint64 would wrap sums.Daily+amount back under the
	// cap; the headroom check must still reject it.
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := testutil.AdminContext(base)
	from, to := domain.NewPrincipalID(), domain.NewPrincipalID()
	module := New(NewInMemoryWindowStore(), 1000, 5000)

	require.NoError(t, module.Transferred(ctx, from, to, 500))

	verdict, err := module.CanTransfer(ctx, from, to, uint64(math.MaxUint64)-100)
	require.NoError(t, err)
	assert.False(t, verdict.Allowed, "amount far beyond the cap must be rejected")
	assert.Contains(t, verdict.Reason, "daily limit exceeded")

	verdict, err = module.CanTransfer(ctx, from, to, math.MaxUint64)
	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
}

func TestPerSenderIsolation(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := testutil.AdminContext(base)
	alice, bob, to := domain.NewPrincipalID(), domain.NewPrincipalID(), domain.NewPrincipalID()
	module := New(NewInMemoryWindowStore(), 1000, 5000)

	require.NoError(t, module.Transferred(ctx, alice, to, 1000))

	verdict, err := module.CanTransfer(ctx, bob, to, 1000)
	require.NoError(t, err)
	assert.True(t, verdict.Allowed, "counters are per sender")
}

func TestSetDefaultLimits(t *testing.T) {
	base := time.Now()
	ctx := testutil.AdminContext(base)
	module := New(NewInMemoryWindowStore(), 1000, 5000)

	require.NoError(t, module.SetDefaultLimits(ctx, 2000, 9000))
	daily, monthly := module.Limits()
	assert.Equal(t, uint64(2000), daily)
	assert.Equal(t, uint64(9000), monthly)
}
