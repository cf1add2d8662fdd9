package identity

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/requestcontext"
	"tokengate/pkg/testutil"
)

// fakeTrust trusts exactly the issuer/topic pairs seeded into it.
type fakeTrust struct {
	trusted map[domain.IssuerID]map[domain.ClaimTopicID]bool
}

func newFakeTrust() *fakeTrust {
	return &fakeTrust{trusted: make(map[domain.IssuerID]map[domain.ClaimTopicID]bool)}
}

func (f *fakeTrust) allow(issuer domain.IssuerID, topicID domain.ClaimTopicID) {
	if f.trusted[issuer] == nil {
		f.trusted[issuer] = make(map[domain.ClaimTopicID]bool)
	}
	f.trusted[issuer][topicID] = true
}

func (f *fakeTrust) revoke(issuer domain.IssuerID) {
	delete(f.trusted, issuer)
}

func (f *fakeTrust) IsTrustedIssuer(_ context.Context, issuer domain.IssuerID, topicID domain.ClaimTopicID) (bool, error) {
	return f.trusted[issuer][topicID], nil
}

const topicKYC domain.ClaimTopicID = 1

func newTestRegistry(t *testing.T, trust TrustChecker) *Registry {
	t.Helper()
	return NewRegistry(NewInMemoryStore(), trust, []domain.ClaimTopicID{topicKYC}, slog.New(slog.DiscardHandler))
}

func TestRegisterIdentity(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())

	t.Run("rejects unauthorized caller", func(t *testing.T) {
		registry := newTestRegistry(t, newFakeTrust())
		err := registry.RegisterIdentity(context.Background(), domain.NewPrincipalID(), ClaimsBundleRef{}, 840)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	t.Run("creates one record per principal", func(t *testing.T) {
		registry := newTestRegistry(t, newFakeTrust())
		principal := domain.NewPrincipalID()

		require.NoError(t, registry.RegisterIdentity(ctx, principal, ClaimsBundleRef{}, 840))

		err := registry.RegisterIdentity(ctx, principal, ClaimsBundleRef{}, 840)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyRegistered))
	})

	t.Run("mints a claims bundle when ref is zero", func(t *testing.T) {
		registry := newTestRegistry(t, newFakeTrust())
		principal := domain.NewPrincipalID()
		require.NoError(t, registry.RegisterIdentity(ctx, principal, ClaimsBundleRef{}, 840))

		record, err := registry.GetIdentity(ctx, principal)
		require.NoError(t, err)
		assert.False(t, record.ClaimsRef.IsNil())
		assert.Equal(t, StatusRegistered, record.Status)
	})
}

func TestBatchRegisterIdentities(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	registry := newTestRegistry(t, newFakeTrust())

	t.Run("rejects mismatched arity", func(t *testing.T) {
		err := registry.BatchRegisterIdentities(ctx,
			[]domain.PrincipalID{domain.NewPrincipalID(), domain.NewPrincipalID()},
			[]ClaimsBundleRef{{}},
			[]domain.CountryCode{840, 276},
		)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeArityMismatch))
	})

	t.Run("registers all principals", func(t *testing.T) {
		principals := []domain.PrincipalID{domain.NewPrincipalID(), domain.NewPrincipalID()}
		err := registry.BatchRegisterIdentities(ctx, principals,
			[]ClaimsBundleRef{{}, {}},
			[]domain.CountryCode{840, 276},
		)
		require.NoError(t, err)

		records, err := registry.ListIdentities(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestVerificationMonotonicity(t *testing.T) {
	// No trusted claim → false; adding one → true; revoking issuer trust →
	// false again.
	ctx := testutil.AdminContext(time.Now())
	trust := newFakeTrust()
	registry := newTestRegistry(t, trust)

	principal := domain.NewPrincipalID()
	issuer := domain.NewIssuerID()
	require.NoError(t, registry.RegisterIdentity(ctx, principal, ClaimsBundleRef{}, 840))

	verified, err := registry.IsVerifiedForTopic(ctx, principal, topicKYC)
	require.NoError(t, err)
	assert.False(t, verified, "no claim held")

	trust.allow(issuer, topicKYC)
	require.NoError(t, registry.AddClaim(ctx, principal, Claim{TopicID: topicKYC, Issuer: issuer}))

	verified, err = registry.IsVerifiedForTopic(ctx, principal, topicKYC)
	require.NoError(t, err)
	assert.True(t, verified, "trusted claim held")

	trust.revoke(issuer)
	verified, err = registry.IsVerifiedForTopic(ctx, principal, topicKYC)
	require.NoError(t, err)
	assert.False(t, verified, "issuer trust revoked")
}

func TestIsVerified(t *testing.T) {
	now := time.Now()
	ctx := testutil.AdminContext(now)
	trust := newFakeTrust()
	registry := newTestRegistry(t, trust)

	principal := domain.NewPrincipalID()
	issuer := domain.NewIssuerID()
	trust.allow(issuer, topicKYC)
	require.NoError(t, registry.RegisterIdentity(ctx, principal, ClaimsBundleRef{}, 840))

	t.Run("unregistered principal is not verified", func(t *testing.T) {
		verified, err := registry.IsVerified(ctx, domain.NewPrincipalID())
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("mandatory topic satisfied", func(t *testing.T) {
		require.NoError(t, registry.AddClaim(ctx, principal, Claim{TopicID: topicKYC, Issuer: issuer}))
		verified, err := registry.IsVerified(ctx, principal)
		require.NoError(t, err)
		assert.True(t, verified)
	})

	t.Run("expired claim does not verify", func(t *testing.T) {
		expiry := now.Add(-time.Hour)
		require.NoError(t, registry.AddClaim(ctx, principal, Claim{
			TopicID:   topicKYC,
			Issuer:    issuer,
			ExpiresAt: &expiry,
		}))
		verified, err := registry.IsVerified(ctx, principal)
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("removed claim does not verify", func(t *testing.T) {
		require.NoError(t, registry.AddClaim(ctx, principal, Claim{TopicID: topicKYC, Issuer: issuer}))
		require.NoError(t, registry.RemoveClaim(ctx, principal, topicKYC))
		verified, err := registry.IsVerified(ctx, principal)
		require.NoError(t, err)
		assert.False(t, verified)
	})
}

func TestDeleteIdentity(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	trust := newFakeTrust()
	registry := newTestRegistry(t, trust)

	principal := domain.NewPrincipalID()
	issuer := domain.NewIssuerID()
	trust.allow(issuer, topicKYC)

	require.NoError(t, registry.RegisterIdentity(ctx, principal, ClaimsBundleRef{}, 840))
	require.NoError(t, registry.AddClaim(ctx, principal, Claim{TopicID: topicKYC, Issuer: issuer}))
	require.NoError(t, registry.DeleteIdentity(ctx, principal))

	verified, err := registry.IsVerified(ctx, principal)
	require.NoError(t, err)
	assert.False(t, verified, "deleted principal must fail verification")

	err = registry.DeleteIdentity(ctx, principal)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSetInvestorCountry(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	registry := newTestRegistry(t, newFakeTrust())

	principal := domain.NewPrincipalID()
	require.NoError(t, registry.RegisterIdentity(ctx, principal, ClaimsBundleRef{}, 840))
	require.NoError(t, registry.SetInvestorCountry(ctx, principal, 276))

	country, err := registry.InvestorCountry(ctx, principal)
	require.NoError(t, err)
	assert.Equal(t, domain.CountryCode(276), country)
}

func TestClaimExpiryUsesRequestTime(t *testing.T) {
	// The pinned request clock decides expiry, so a claim valid at the
	// frozen instant verifies even if the wall clock has moved past it.
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	ctx := testutil.AdminContext(base)
	trust := newFakeTrust()
	registry := newTestRegistry(t, trust)

	principal := domain.NewPrincipalID()
	issuer := domain.NewIssuerID()
	trust.allow(issuer, topicKYC)
	require.NoError(t, registry.RegisterIdentity(ctx, principal, ClaimsBundleRef{}, 840))

	expiry := base.Add(time.Minute)
	require.NoError(t, registry.AddClaim(ctx, principal, Claim{
		TopicID:   topicKYC,
		Issuer:    issuer,
		ExpiresAt: &expiry,
	}))

	verified, err := registry.IsVerifiedForTopic(ctx, principal, topicKYC)
	require.NoError(t, err)
	assert.True(t, verified)

	later := requestcontext.WithTime(ctx, base.Add(2*time.Minute))
	verified, err = registry.IsVerifiedForTopic(later, principal, topicKYC)
	require.NoError(t, err)
	assert.False(t, verified)
}
