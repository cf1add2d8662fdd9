package reporting

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/requestcontext"
)

// Export report kinds accepted by ExportReportData. KindFull bundles every
// section in a single payload.
const (
	ExportInvestor       = "investor"
	ExportJurisdictional = "jurisdictional"
	ExportViolations     = "violations"
	ExportStatistics     = "statistics"
	ExportFull           = "full"
)

// exportPayload is the tagged-union envelope for offline consumption. Only
// the sections matching ReportType are populated.
type exportPayload struct {
	ReportType    string              `json:"report_type"`
	GeneratedAt   time.Time           `json:"generated_at"`
	RangeStart    time.Time           `json:"range_start"`
	RangeEnd      time.Time           `json:"range_end"`
	Investors     []InvestorEntry     `json:"investors,omitempty"`
	Jurisdictions []JurisdictionEntry `json:"jurisdictions,omitempty"`
	Violations    []ViolationRecord   `json:"violations,omitempty"`
	Statistics    *Statistics         `json:"statistics,omitempty"`
}

// ExportReportData serializes one report kind, or all of them, into a
// single JSON payload. The time range applies to the violation-derived
// sections; snapshot sections reflect current state.
func (s *Service) ExportReportData(ctx context.Context, reportType string, from, to time.Time) ([]byte, error) {
	if err := s.requireReader(ctx); err != nil {
		return nil, err
	}

	payload := exportPayload{
		ReportType:  reportType,
		GeneratedAt: requestcontext.Now(ctx),
		RangeStart:  from,
		RangeEnd:    to,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	wantInvestor := reportType == ExportInvestor || reportType == ExportFull
	wantJurisdictional := reportType == ExportJurisdictional || reportType == ExportFull
	wantViolations := reportType == ExportViolations || reportType == ExportFull
	wantStatistics := reportType == ExportStatistics || reportType == ExportFull

	if !wantInvestor && !wantJurisdictional && !wantViolations && !wantStatistics {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown report type %q", reportType)
	}

	if wantInvestor {
		group.Go(func() error {
			entries, err := s.GenerateInvestorReport(groupCtx, 0, 0)
			payload.Investors = entries
			return err
		})
	}
	if wantJurisdictional {
		group.Go(func() error {
			entries, err := s.GenerateJurisdictionalReport(groupCtx)
			payload.Jurisdictions = entries
			return err
		})
	}
	if wantViolations {
		group.Go(func() error {
			records, err := s.GenerateComplianceViolationReport(groupCtx, from, to)
			payload.Violations = records
			return err
		})
	}
	if wantStatistics {
		group.Go(func() error {
			stats, err := s.GetComplianceStatistics(groupCtx, from, to)
			payload.Statistics = &stats
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode report payload")
	}
	s.metrics.IncReport("export")
	return encoded, nil
}
