package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tokengate/internal/compliance"
	"tokengate/internal/compliance/modules/country"
	"tokengate/internal/compliance/modules/maxbalance"
	"tokengate/internal/compliance/modules/transferlimit"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
	"tokengate/pkg/requestcontext"
)

// ComplianceHandler exposes the evaluator and the rule-module admin
// surfaces. Module instances are constructed at startup; the API binds and
// unbinds them by name.
type ComplianceHandler struct {
	service   *compliance.Service
	country   *country.Module
	limits    *transferlimit.Module
	caps      *maxbalance.Module
	available map[string]compliance.Module
	logger    *slog.Logger
}

func NewComplianceHandler(service *compliance.Service, countryModule *country.Module, limitModule *transferlimit.Module, capModule *maxbalance.Module, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{
		service: service,
		country: countryModule,
		limits:  limitModule,
		caps:    capModule,
		available: map[string]compliance.Module{
			countryModule.Name(): countryModule,
			limitModule.Name():   limitModule,
			capModule.Name():     capModule,
		},
		logger: logger,
	}
}

func (h *ComplianceHandler) Register(r chi.Router) {
	r.Post("/compliance/token", h.handleBindToken)
	r.Get("/compliance/token", h.handleBoundToken)
	r.Get("/compliance/modules", h.handleListModules)
	r.Post("/compliance/modules", h.handleAddModule)
	r.Delete("/compliance/modules/{name}", h.handleRemoveModule)
	r.Post("/compliance/can-transfer", h.handleCanTransfer)

	r.Put("/compliance/countries", h.handleSetCountry)
	r.Put("/compliance/countries/batch", h.handleBatchSetCountries)
	r.Put("/compliance/transfer-limits", h.handleSetTransferLimits)
	r.Put("/compliance/max-balance", h.handleSetMaxBalance)
	r.Put("/compliance/max-balance/{principalID}", h.handleSetMaxBalanceFor)
}

// BindTokenRequest is the body for POST /compliance/token.
type BindTokenRequest struct {
	TokenID string `json:"token_id"`

	parsedToken domain.TokenID
}

func (r *BindTokenRequest) Validate() error {
	token, err := domain.ParseTokenID(r.TokenID)
	if err != nil {
		return err
	}
	r.parsedToken = token
	return nil
}

// ModuleRequest is the body for POST /compliance/modules.
type ModuleRequest struct {
	Name string `json:"name"`
}

func (r *ModuleRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	return nil
}

// CanTransferRequest is the body for POST /compliance/can-transfer.
type CanTransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`

	parsedFrom domain.PrincipalID
	parsedTo   domain.PrincipalID
}

func (r *CanTransferRequest) Validate() error {
	from, err := domain.ParsePrincipalID(r.From)
	if err != nil {
		return err
	}
	to, err := domain.ParsePrincipalID(r.To)
	if err != nil {
		return err
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	r.parsedFrom, r.parsedTo = from, to
	return nil
}

// CountryRequest is the body for PUT /compliance/countries.
type CountryRequest struct {
	Country domain.CountryCode `json:"country"`
	Allowed bool               `json:"allowed"`
}

func (r *CountryRequest) Validate() error { return nil }

// BatchCountryRequest is the body for PUT /compliance/countries/batch. The
// two slices are parallel arrays.
type BatchCountryRequest struct {
	Countries []domain.CountryCode `json:"countries"`
	Allowed   []bool               `json:"allowed"`
}

func (r *BatchCountryRequest) Validate() error {
	if len(r.Countries) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "countries must not be empty")
	}
	return nil
}

// TransferLimitsRequest is the body for PUT /compliance/transfer-limits.
type TransferLimitsRequest struct {
	Daily   uint64 `json:"daily"`
	Monthly uint64 `json:"monthly"`
}

func (r *TransferLimitsRequest) Validate() error {
	if r.Daily == 0 || r.Monthly == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "daily and monthly limits must be positive")
	}
	return nil
}

// MaxBalanceRequest is the body for the max-balance endpoints. A zero cap on
// the per-principal route clears the override.
type MaxBalanceRequest struct {
	Cap uint64 `json:"cap"`
}

func (r *MaxBalanceRequest) Validate() error { return nil }

func (h *ComplianceHandler) handleBindToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*BindTokenRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.BindToken(ctx, req.parsedToken); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"token_id": req.parsedToken.String()})
}

func (h *ComplianceHandler) handleBoundToken(w http.ResponseWriter, _ *http.Request) {
	token, bound := h.service.BoundToken()
	if !bound {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "compliance is not bound to a token"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"token_id": token.String()})
}

func (h *ComplianceHandler) handleListModules(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"modules": h.service.ModuleNames()})
}

func (h *ComplianceHandler) handleAddModule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*ModuleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	module, known := h.available[req.Name]
	if !known {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "no module named %q", req.Name))
		return
	}
	if err := h.service.AddModule(ctx, module); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

func (h *ComplianceHandler) handleRemoveModule(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveModule(r.Context(), chi.URLParam(r, "name")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCanTransfer answers the gating question without mutating anything.
// A rejection is reported in the body, not as an HTTP error, because a deny
// verdict is a first-class result the caller acts on.
func (h *ComplianceHandler) handleCanTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*CanTransferRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	err := h.service.CanTransfer(ctx, req.parsedFrom, req.parsedTo, req.Amount)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeComplianceRejected) {
			httputil.WriteJSON(w, http.StatusOK, CanTransferResponse{Allowed: false, Reason: dErrors.MessageOf(err)})
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CanTransferResponse{Allowed: true})
}

// CanTransferResponse is the verdict for POST /compliance/can-transfer.
type CanTransferResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func (h *ComplianceHandler) handleSetCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*CountryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.country.SetCountryAllowed(ctx, req.Country, req.Allowed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ComplianceHandler) handleBatchSetCountries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*BatchCountryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.country.BatchSetCountriesAllowed(ctx, req.Countries, req.Allowed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ComplianceHandler) handleSetTransferLimits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*TransferLimitsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.limits.SetDefaultLimits(ctx, req.Daily, req.Monthly); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ComplianceHandler) handleSetMaxBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*MaxBalanceRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.caps.SetDefaultMaxBalance(ctx, req.Cap); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ComplianceHandler) handleSetMaxBalanceFor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, err := domain.ParsePrincipalID(chi.URLParam(r, "principalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*MaxBalanceRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.caps.SetMaxBalanceFor(ctx, principal, req.Cap); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
