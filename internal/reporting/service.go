// Package reporting derives regulator-facing views over identity, ledger,
// and compliance state. It owns no source of truth except its own
// append-only violation log.
package reporting

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"tokengate/internal/assets"
	"tokengate/internal/identity"
	"tokengate/internal/ledger"
	"tokengate/internal/platform/authz"
	"tokengate/internal/platform/events"
	"tokengate/internal/reporting/metrics"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/requestcontext"
)

// IdentityDirectory is the slice of the identity registry reporting reads.
type IdentityDirectory interface {
	ListIdentities(ctx context.Context) ([]identity.Record, error)
}

// LedgerReader combines the balance and supply views reporting joins
// against.
type LedgerReader interface {
	ledger.BalanceReader
	ledger.SupplyReader
}

// AssetCatalog is the slice of the asset registry reporting reads.
type AssetCatalog interface {
	GetAsset(ctx context.Context, id domain.AssetID) (assets.Asset, error)
}

// Service is the reporting aggregator. All reads are gated to REPORTER or
// COMPLIANCE_OFFICER; recording a violation is officer-only.
type Service struct {
	violations ViolationStore
	identities IdentityDirectory
	ledger     LedgerReader
	assets     AssetCatalog
	publisher  events.Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Service)

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher emits violation events to the configured broker.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(violations ViolationStore, identities IdentityDirectory, ledgerReader LedgerReader, catalog AssetCatalog, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		violations: violations,
		identities: identities,
		ledger:     ledgerReader,
		assets:     catalog,
		publisher:  events.NopPublisher{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) requireReader(ctx context.Context) error {
	return authz.Require(ctx, domain.RoleReporter, domain.RoleComplianceOfficer)
}

// GenerateInvestorReport returns a paginated snapshot of all registered
// identities joined with their current ledger balances, in stable principal
// id order.
func (s *Service) GenerateInvestorReport(ctx context.Context, limit, offset int) ([]InvestorEntry, error) {
	if err := s.requireReader(ctx); err != nil {
		return nil, err
	}
	if limit < 0 || offset < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "limit and offset must be non-negative")
	}
	records, err := s.identities.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]InvestorEntry, 0, len(records))
	for _, record := range records {
		balance, err := s.ledger.BalanceOf(ctx, record.Principal)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
		}
		entries = append(entries, InvestorEntry{
			Principal: record.Principal,
			Country:   record.Country,
			Balance:   balance,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Principal.String() < entries[j].Principal.String()
	})

	if offset >= len(entries) {
		entries = nil
	} else {
		entries = entries[offset:]
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	s.metrics.IncReport("investor")
	return entries, nil
}

// GenerateJurisdictionalReport groups all holdings by investor country.
// Each principal has exactly one identity record, so no holding is counted
// twice.
func (s *Service) GenerateJurisdictionalReport(ctx context.Context) ([]JurisdictionEntry, error) {
	if err := s.requireReader(ctx); err != nil {
		return nil, err
	}
	records, err := s.identities.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}
	totals := make(map[domain.CountryCode]uint64)
	for _, record := range records {
		balance, err := s.ledger.BalanceOf(ctx, record.Principal)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
		}
		totals[record.Country] += balance
	}
	entries := make([]JurisdictionEntry, 0, len(totals))
	for country, total := range totals {
		entries = append(entries, JurisdictionEntry{Country: country, TotalHoldings: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Country < entries[j].Country
	})
	s.metrics.IncReport("jurisdictional")
	return entries, nil
}

// RecordComplianceViolation appends to the violation log. Officers may
// record attempts that never reached the ledger.
func (s *Service) RecordComplianceViolation(ctx context.Context, attemptedBy, counterparty domain.PrincipalID, amount uint64, reason, moduleName string) error {
	if err := authz.Require(ctx, domain.RoleComplianceOfficer); err != nil {
		return err
	}
	if attemptedBy.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "attempting principal is required")
	}
	record := ViolationRecord{
		ID:           uuid.New(),
		AttemptedBy:  attemptedBy,
		Counterparty: counterparty,
		Amount:       amount,
		Reason:       reason,
		ModuleName:   moduleName,
		Timestamp:    requestcontext.Now(ctx),
	}
	if err := s.violations.Append(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append violation")
	}
	s.metrics.IncViolation()
	s.publisher.Publish(ctx, events.Event{
		Kind:       events.KindViolationRecorded,
		Subject:    attemptedBy.String(),
		Actor:      requestcontext.ActorID(ctx),
		Reason:     reason,
		ModuleName: moduleName,
		Amount:     amount,
		RequestID:  requestcontext.RequestID(ctx),
		Timestamp:  record.Timestamp,
	})
	s.logger.InfoContext(ctx, "compliance violation recorded",
		"violation", record.ID.String(),
		"attempted_by", attemptedBy.String(),
		"module", moduleName,
	)
	return nil
}

// GenerateComplianceViolationReport returns all records with timestamps in
// [from, to], both bounds inclusive.
func (s *Service) GenerateComplianceViolationReport(ctx context.Context, from, to time.Time) ([]ViolationRecord, error) {
	if err := s.requireReader(ctx); err != nil {
		return nil, err
	}
	records, err := s.violations.ListRange(ctx, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read violation log")
	}
	s.metrics.IncReport("violations")
	return records, nil
}

// GetComplianceStatistics aggregates the violation log over [from, to].
func (s *Service) GetComplianceStatistics(ctx context.Context, from, to time.Time) (Statistics, error) {
	if err := s.requireReader(ctx); err != nil {
		return Statistics{}, err
	}
	records, err := s.violations.ListRange(ctx, from, to)
	if err != nil {
		return Statistics{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read violation log")
	}
	violators := make(map[domain.PrincipalID]struct{})
	for _, record := range records {
		violators[record.AttemptedBy] = struct{}{}
	}
	s.metrics.IncReport("statistics")
	return Statistics{
		ViolationCount:  len(records),
		UniqueViolators: len(violators),
	}, nil
}

// GenerateOwnershipDistributionReport ranks holders by balance descending
// with principal id as the tie-break, so repeated calls against unchanged
// state return identical output.
func (s *Service) GenerateOwnershipDistributionReport(ctx context.Context, assetID domain.AssetID) (OwnershipReport, error) {
	if err := s.requireReader(ctx); err != nil {
		return OwnershipReport{}, err
	}
	if _, err := s.assets.GetAsset(ctx, assetID); err != nil {
		return OwnershipReport{}, err
	}
	supply, err := s.ledger.TotalSupply(ctx)
	if err != nil {
		return OwnershipReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read total supply")
	}
	holdings, err := s.ledger.Holdings(ctx)
	if err != nil {
		return OwnershipReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read holdings")
	}
	sort.SliceStable(holdings, func(i, j int) bool {
		if holdings[i].Balance != holdings[j].Balance {
			return holdings[i].Balance > holdings[j].Balance
		}
		return holdings[i].Principal.String() < holdings[j].Principal.String()
	})

	top := holdings
	if len(top) > 10 {
		top = top[:10]
	}
	var topSum uint64
	for _, holding := range top {
		topSum += holding.Balance
	}
	var percentage float64
	if supply > 0 {
		percentage = float64(topSum) / float64(supply) * 100
	}
	s.metrics.IncReport("ownership")
	return OwnershipReport{
		AssetID:         assetID,
		TotalSupply:     supply,
		TotalHolders:    len(holdings),
		Top10Percentage: percentage,
	}, nil
}
