package reporting

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/internal/assets"
	"tokengate/internal/identity"
	"tokengate/internal/ledger"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/testutil"
)

type fakeDirectory struct {
	records []identity.Record
}

func (f *fakeDirectory) ListIdentities(context.Context) ([]identity.Record, error) {
	return f.records, nil
}

type fakeLedger struct {
	balances map[domain.PrincipalID]uint64
	supply   uint64
}

func (f *fakeLedger) BalanceOf(_ context.Context, principal domain.PrincipalID) (uint64, error) {
	return f.balances[principal], nil
}

func (f *fakeLedger) TotalSupply(context.Context) (uint64, error) { return f.supply, nil }

func (f *fakeLedger) Holdings(context.Context) ([]ledger.Holding, error) {
	holdings := make([]ledger.Holding, 0, len(f.balances))
	for principal, balance := range f.balances {
		if balance == 0 {
			continue
		}
		holdings = append(holdings, ledger.Holding{Principal: principal, Balance: balance})
	}
	return holdings, nil
}

type world struct {
	service   *Service
	directory *fakeDirectory
	ledger    *fakeLedger
	assets    *assets.Registry
}

func newWorld(t *testing.T) *world {
	t.Helper()
	directory := &fakeDirectory{}
	fl := &fakeLedger{balances: make(map[domain.PrincipalID]uint64)}
	catalog := assets.NewRegistry(assets.NewInMemoryStore(), slog.New(slog.DiscardHandler))
	service := NewService(NewInMemoryViolationStore(), directory, fl, catalog, slog.New(slog.DiscardHandler))
	return &world{service: service, directory: directory, ledger: fl, assets: catalog}
}

func (w *world) addInvestor(principal domain.PrincipalID, country domain.CountryCode, balance uint64) {
	w.directory.records = append(w.directory.records, identity.Record{
		Principal: principal,
		Country:   country,
		Status:    identity.StatusRegistered,
	})
	w.ledger.balances[principal] = balance
	w.ledger.supply += balance
}

func TestReadAccessControl(t *testing.T) {
	w := newWorld(t)

	_, err := w.service.GenerateInvestorReport(context.Background(), 10, 0)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))

	// REPORTER can read but not record.
	ctx := testutil.ReporterContext(time.Now())
	_, err = w.service.GenerateJurisdictionalReport(ctx)
	require.NoError(t, err)

	err = w.service.RecordComplianceViolation(ctx, domain.NewPrincipalID(), domain.NewPrincipalID(), 1, "r", "m")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))
}

func TestInvestorReportPagination(t *testing.T) {
	ctx := testutil.ReporterContext(time.Now())
	w := newWorld(t)
	for i := 0; i < 5; i++ {
		w.addInvestor(domain.NewPrincipalID(), 1, uint64(100*(i+1)))
	}

	all, err := w.service.GenerateInvestorReport(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Principal.String(), all[i].Principal.String(), "entries sorted by principal")
	}

	page, err := w.service.GenerateInvestorReport(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[1], page[0])
	assert.Equal(t, all[2], page[1])

	empty, err := w.service.GenerateInvestorReport(ctx, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestJurisdictionalReport(t *testing.T) {
	ctx := testutil.ReporterContext(time.Now())
	w := newWorld(t)
	w.addInvestor(domain.NewPrincipalID(), 1, 100)
	w.addInvestor(domain.NewPrincipalID(), 1, 250)
	w.addInvestor(domain.NewPrincipalID(), 4, 40)

	entries, err := w.service.GenerateJurisdictionalReport(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.CountryCode(1), entries[0].Country)
	assert.Equal(t, uint64(350), entries[0].TotalHoldings)
	assert.Equal(t, domain.CountryCode(4), entries[1].Country)
	assert.Equal(t, uint64(40), entries[1].TotalHoldings)
}

func TestViolationLog(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := newWorld(t)
	violator := domain.NewPrincipalID()
	counterparty := domain.NewPrincipalID()

	record := func(at time.Time, by domain.PrincipalID) {
		ctx := testutil.OfficerContext(at)
		require.NoError(t, w.service.RecordComplianceViolation(ctx, by, counterparty, 100, "country not allowed", "country_restrict"))
	}
	record(base, violator)
	record(base.Add(time.Hour), violator)
	record(base.Add(2*time.Hour), domain.NewPrincipalID())

	readCtx := testutil.OfficerContext(base)

	t.Run("range bounds are inclusive", func(t *testing.T) {
		records, err := w.service.GenerateComplianceViolationReport(readCtx, base, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("wider range is a superset", func(t *testing.T) {
		narrow, err := w.service.GenerateComplianceViolationReport(readCtx, base, base.Add(time.Hour))
		require.NoError(t, err)
		wide, err := w.service.GenerateComplianceViolationReport(readCtx, base, base.Add(3*time.Hour))
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(wide), len(narrow))
		assert.Equal(t, narrow, wide[:len(narrow)])
	})

	t.Run("statistics count distinct violators", func(t *testing.T) {
		stats, err := w.service.GetComplianceStatistics(readCtx, base, base.Add(3*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 3, stats.ViolationCount)
		assert.Equal(t, 2, stats.UniqueViolators)
	})
}

func TestOwnershipDistributionReport(t *testing.T) {
	adminCtx := testutil.AdminContext(time.Now())
	readCtx := testutil.ReporterContext(time.Now())
	w := newWorld(t)

	assetID := domain.NewAssetID()
	require.NoError(t, w.assets.RegisterAsset(adminCtx, assetID, "Vault 7", assets.CategoryPreciousMetals, 1, "", domain.PrincipalID{}))

	// 12 holders: two whales and ten small holders of 10 each.
	w.addInvestor(domain.NewPrincipalID(), 1, 500)
	w.addInvestor(domain.NewPrincipalID(), 1, 400)
	for i := 0; i < 10; i++ {
		w.addInvestor(domain.NewPrincipalID(), 1, 10)
	}

	report, err := w.service.GenerateOwnershipDistributionReport(readCtx, assetID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), report.TotalSupply)
	assert.Equal(t, 12, report.TotalHolders)
	// Top 10: 500 + 400 + eight of the 10s = 980 of 1000.
	assert.InDelta(t, 98.0, report.Top10Percentage, 0.0001)

	t.Run("idempotent under unchanged state", func(t *testing.T) {
		again, err := w.service.GenerateOwnershipDistributionReport(readCtx, assetID)
		require.NoError(t, err)
		assert.Equal(t, report, again)
	})

	t.Run("unknown asset fails with NotFound", func(t *testing.T) {
		_, err := w.service.GenerateOwnershipDistributionReport(readCtx, domain.NewAssetID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestExportReportData(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := newWorld(t)
	w.addInvestor(domain.NewPrincipalID(), 1, 100)

	officerCtx := testutil.OfficerContext(base)
	require.NoError(t, w.service.RecordComplianceViolation(officerCtx, domain.NewPrincipalID(), domain.NewPrincipalID(), 5, "over limit", "transfer_limit"))

	t.Run("full export carries every section", func(t *testing.T) {
		encoded, err := w.service.ExportReportData(officerCtx, ExportFull, base.Add(-time.Hour), base.Add(time.Hour))
		require.NoError(t, err)

		var payload map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(encoded, &payload))
		assert.Contains(t, payload, "investors")
		assert.Contains(t, payload, "jurisdictions")
		assert.Contains(t, payload, "violations")
		assert.Contains(t, payload, "statistics")
	})

	t.Run("single-kind export omits other sections", func(t *testing.T) {
		encoded, err := w.service.ExportReportData(officerCtx, ExportViolations, base.Add(-time.Hour), base.Add(time.Hour))
		require.NoError(t, err)

		var payload map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(encoded, &payload))
		assert.Contains(t, payload, "violations")
		assert.NotContains(t, payload, "investors")
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		_, err := w.service.ExportReportData(officerCtx, "csv", base, base)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
