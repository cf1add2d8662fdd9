package ledger_test

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tokengate/internal/claimtopics"
	"tokengate/internal/compliance"
	"tokengate/internal/compliance/modules/country"
	"tokengate/internal/compliance/modules/maxbalance"
	"tokengate/internal/identity"
	"tokengate/internal/ledger"
	"tokengate/internal/ledger/mocks"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/testutil"
)

const topicKYC domain.ClaimTopicID = 1

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

// gatedWorld wires real registries and a single country module behind a
// ledger, the full stack a deployment would run in memory.
type gatedWorld struct {
	topics     *claimtopics.Registry
	identities *identity.Registry
	guard      *compliance.Service
	countries  *country.Module
	ledger     *ledger.MemoryLedger
}

func newGatedWorld(t *testing.T) *gatedWorld {
	t.Helper()
	topics := claimtopics.NewRegistry(claimtopics.NewInMemoryStore(), discard())
	identities := identity.NewRegistry(identity.NewInMemoryStore(), topics, []domain.ClaimTopicID{topicKYC}, discard())
	guard := compliance.NewService(discard())
	countries := country.New(identities)
	return &gatedWorld{
		topics:     topics,
		identities: identities,
		guard:      guard,
		countries:  countries,
		ledger:     ledger.NewMemoryLedger(domain.NewTokenID(), identities, guard),
	}
}

func TestTransferGating(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	issuer := domain.NewIssuerID()
	alice := domain.NewPrincipalID()
	bob := domain.NewPrincipalID()

	w := newGatedWorld(t)

	testutil.Given(t, "a gated ledger with one allowed jurisdiction", func(t *testing.T) {
		require.NoError(t, w.topics.AddClaimTopic(ctx, topicKYC))
		require.NoError(t, w.topics.AddTrustedIssuer(ctx, issuer, []domain.ClaimTopicID{topicKYC}))
		require.NoError(t, w.guard.BindToken(ctx, w.ledger.Token()))
		require.NoError(t, w.guard.AddModule(ctx, w.countries))
		require.NoError(t, w.countries.SetCountryAllowed(ctx, 1, true))

		require.NoError(t, w.identities.RegisterIdentity(ctx, alice, identity.ClaimsBundleRef{}, 1))
		require.NoError(t, w.identities.AddClaim(ctx, alice, identity.Claim{TopicID: topicKYC, Issuer: issuer}))
		require.NoError(t, w.identities.RegisterIdentity(ctx, bob, identity.ClaimsBundleRef{}, 2))
		require.NoError(t, w.ledger.Mint(ctx, alice, 1000))
	})

	testutil.Then(t, "a transfer to an unverified recipient is rejected", func(t *testing.T) {
		err := w.ledger.Transfer(ctx, alice, bob, 100)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeVerificationFailed))
	})

	testutil.Then(t, "a verified recipient in a disallowed country is still rejected", func(t *testing.T) {
		require.NoError(t, w.identities.AddClaim(ctx, bob, identity.Claim{TopicID: topicKYC, Issuer: issuer}))
		err := w.ledger.Transfer(ctx, alice, bob, 100)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeComplianceRejected))
	})

	testutil.Then(t, "allowing the country lets the transfer commit", func(t *testing.T) {
		require.NoError(t, w.countries.SetCountryAllowed(ctx, 2, true))
		require.NoError(t, w.ledger.Transfer(ctx, alice, bob, 100))

		balance, err := w.ledger.BalanceOf(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), balance)
	})
}

func TestTransferSkipsGuardWhenUnverified(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	from, to := domain.NewPrincipalID(), domain.NewPrincipalID()

	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockIdentityVerifier(ctrl)
	guard := mocks.NewMockComplianceGuard(ctrl)
	verifier.EXPECT().IsVerified(gomock.Any(), from).Return(false, nil)
	// No guard expectations: the guard must never be consulted for
	// unverified parties.

	l := ledger.NewMemoryLedger(domain.NewTokenID(), verifier, guard)
	err := l.Transfer(ctx, from, to, 10)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeVerificationFailed))
}

func TestTransferLeavesNoStateOnRejection(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	from, to := domain.NewPrincipalID(), domain.NewPrincipalID()

	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockIdentityVerifier(ctrl)
	guard := mocks.NewMockComplianceGuard(ctrl)
	verifier.EXPECT().IsVerified(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
	guard.EXPECT().Created(gomock.Any(), from, uint64(500)).Return(nil)
	guard.EXPECT().CanTransfer(gomock.Any(), from, to, uint64(200)).
		Return(dErrors.New(dErrors.CodeComplianceRejected, "country_restrict: no"))

	l := ledger.NewMemoryLedger(domain.NewTokenID(), verifier, guard)
	require.NoError(t, l.Mint(ctx, from, 500))

	err := l.Transfer(ctx, from, to, 200)
	require.Error(t, err)

	balance, err := l.BalanceOf(ctx, from)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), balance, "rejected transfer must not move funds")
}

func TestMintAndBurnHooks(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	owner := domain.NewPrincipalID()

	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockIdentityVerifier(ctrl)
	guard := mocks.NewMockComplianceGuard(ctrl)
	guard.EXPECT().Created(gomock.Any(), owner, uint64(300)).Return(nil)
	guard.EXPECT().Destroyed(gomock.Any(), owner, uint64(120)).Return(nil)

	l := ledger.NewMemoryLedger(domain.NewTokenID(), verifier, guard)
	require.NoError(t, l.Mint(ctx, owner, 300))
	require.NoError(t, l.Burn(ctx, owner, 120))

	supply, err := l.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(180), supply)

	holdings, err := l.Holdings(ctx)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, owner, holdings[0].Principal)
	assert.Equal(t, uint64(180), holdings[0].Balance)
}

func TestConcurrentTransfersCannotOverfillCap(t *testing.T) {
	// Ten concurrent transfers of 100 race toward a recipient with 500 of
	// cap headroom left. Serialized gating admits exactly five; without it,
	// several racers observe the same headroom and overfill the cap.
	ctx := testutil.AdminContext(time.Now())
	to := domain.NewPrincipalID()

	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockIdentityVerifier(ctrl)
	verifier.EXPECT().IsVerified(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	guard := compliance.NewService(discard())
	l := ledger.NewMemoryLedger(domain.NewTokenID(), verifier, guard)
	require.NoError(t, guard.BindToken(ctx, l.Token()))
	require.NoError(t, guard.AddModule(ctx, maxbalance.New(l, 10000)))

	require.NoError(t, l.Mint(ctx, to, 9500))
	senders := make([]domain.PrincipalID, 10)
	for i := range senders {
		senders[i] = domain.NewPrincipalID()
		require.NoError(t, l.Mint(ctx, senders[i], 100))
	}

	results := make(chan error, len(senders))
	var wg sync.WaitGroup
	for _, from := range senders {
		wg.Add(1)
		go func(from domain.PrincipalID) {
			defer wg.Done()
			results <- l.Transfer(ctx, from, to, 100)
		}(from)
	}
	wg.Wait()
	close(results)

	var committed, rejected int
	for err := range results {
		if err == nil {
			committed++
			continue
		}
		rejected++
		assert.True(t, dErrors.HasCode(err, dErrors.CodeComplianceRejected))
	}
	assert.Equal(t, 5, committed)
	assert.Equal(t, 5, rejected)

	balance, err := l.BalanceOf(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), balance, "recipient balance must land exactly on the cap")
}

func TestBurnInsufficientBalance(t *testing.T) {
	ctx := testutil.AdminContext(time.Now())
	owner := domain.NewPrincipalID()

	ctrl := gomock.NewController(t)
	l := ledger.NewMemoryLedger(domain.NewTokenID(), mocks.NewMockIdentityVerifier(ctrl), mocks.NewMockComplianceGuard(ctrl))

	err := l.Burn(ctx, owner, 1)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
