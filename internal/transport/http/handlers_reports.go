package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tokengate/internal/reporting"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
	"tokengate/pkg/requestcontext"
)

// ReportsHandler exposes the regulatory reporting aggregator.
type ReportsHandler struct {
	service *reporting.Service
	logger  *slog.Logger
}

func NewReportsHandler(service *reporting.Service, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{service: service, logger: logger}
}

func (h *ReportsHandler) Register(r chi.Router) {
	r.Get("/reports/investors", h.handleInvestorReport)
	r.Get("/reports/jurisdictions", h.handleJurisdictionalReport)
	r.Post("/reports/violations", h.handleRecordViolation)
	r.Get("/reports/violations", h.handleViolationReport)
	r.Get("/reports/statistics", h.handleStatistics)
	r.Get("/reports/ownership/{assetID}", h.handleOwnershipReport)
	r.Get("/reports/export", h.handleExport)
}

// RecordViolationRequest is the body for POST /reports/violations.
type RecordViolationRequest struct {
	AttemptedBy  string `json:"attempted_by"`
	Counterparty string `json:"counterparty"`
	Amount       uint64 `json:"amount"`
	Reason       string `json:"reason"`
	ModuleName   string `json:"module_name"`

	parsedAttemptedBy  domain.PrincipalID
	parsedCounterparty domain.PrincipalID
}

func (r *RecordViolationRequest) Validate() error {
	attemptedBy, err := domain.ParsePrincipalID(r.AttemptedBy)
	if err != nil {
		return err
	}
	r.parsedAttemptedBy = attemptedBy
	if r.Counterparty != "" {
		counterparty, err := domain.ParsePrincipalID(r.Counterparty)
		if err != nil {
			return err
		}
		r.parsedCounterparty = counterparty
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reason is required")
	}
	return nil
}

func (h *ReportsHandler) handleInvestorReport(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.service.GenerateInvestorReport(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *ReportsHandler) handleJurisdictionalReport(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GenerateJurisdictionalReport(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *ReportsHandler) handleRecordViolation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*RecordViolationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	err := h.service.RecordComplianceViolation(ctx, req.parsedAttemptedBy, req.parsedCounterparty, req.Amount, req.Reason, req.ModuleName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *ReportsHandler) handleViolationReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.service.GenerateComplianceViolationReport(r.Context(), from, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *ReportsHandler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.service.GetComplianceStatistics(r.Context(), from, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *ReportsHandler) handleOwnershipReport(w http.ResponseWriter, r *http.Request) {
	assetID, err := domain.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	report, err := h.service.GenerateOwnershipDistributionReport(r.Context(), assetID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *ReportsHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	reportType := r.URL.Query().Get("type")
	if reportType == "" {
		reportType = reporting.ExportFull
	}
	from, to, err := queryRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	payload, err := h.service.ExportReportData(r.Context(), reportType, from, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be a non-negative integer", name)
	}
	return value, nil
}

// queryRange parses the from/to query parameters as RFC 3339. Absent bounds
// default to the whole log.
func queryRange(r *http.Request) (time.Time, time.Time, error) {
	from := time.Time{}
	to := requestcontext.Now(r.Context())
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "from must be RFC 3339")
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "to must be RFC 3339")
		}
		to = parsed
	}
	return from, to, nil
}
