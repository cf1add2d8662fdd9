package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tokengate/internal/assets"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
	"tokengate/pkg/requestcontext"
)

// AssetsHandler exposes the asset registry.
type AssetsHandler struct {
	registry *assets.Registry
	logger   *slog.Logger
}

func NewAssetsHandler(registry *assets.Registry, logger *slog.Logger) *AssetsHandler {
	return &AssetsHandler{registry: registry, logger: logger}
}

func (h *AssetsHandler) Register(r chi.Router) {
	r.Post("/assets", h.handleRegister)
	r.Get("/assets", h.handleList)
	r.Get("/assets/{assetID}", h.handleGet)
	r.Delete("/assets/{assetID}", h.handleDeactivate)
	r.Put("/assets/{assetID}/attributes/text", h.handleSetTextAttribute)
	r.Put("/assets/{assetID}/attributes/numeric", h.handleSetNumericAttribute)
	r.Post("/assets/{assetID}/revenue-streams", h.handleCreateRevenueStream)
	r.Put("/assets/{assetID}/valuation", h.handleUpdateValuation)
	r.Post("/assets/{assetID}/token-contract", h.handleAuthorizeTokenContract)
	r.Get("/token-contracts/{tokenID}/authorized", h.handleTokenContractAuthorized)
}

// RegisterAssetRequest is the body for POST /assets.
type RegisterAssetRequest struct {
	AssetID     string `json:"asset_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Valuation   uint64 `json:"valuation"`
	MetadataURI string `json:"metadata_uri,omitempty"`
	Custodian   string `json:"custodian,omitempty"`

	parsedID        domain.AssetID
	parsedCategory  assets.Category
	parsedCustodian domain.PrincipalID
}

func (r *RegisterAssetRequest) Validate() error {
	id, err := domain.ParseAssetID(r.AssetID)
	if err != nil {
		return err
	}
	r.parsedID = id
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	category, err := assets.ParseCategory(r.Category)
	if err != nil {
		return err
	}
	r.parsedCategory = category
	if r.Custodian != "" {
		custodian, err := domain.ParsePrincipalID(r.Custodian)
		if err != nil {
			return err
		}
		r.parsedCustodian = custodian
	}
	return nil
}

// TextAttributeRequest is the body for PUT .../attributes/text.
type TextAttributeRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (r *TextAttributeRequest) Validate() error {
	if r.Key == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "key is required")
	}
	return nil
}

// NumericAttributeRequest is the body for PUT .../attributes/numeric.
type NumericAttributeRequest struct {
	Key   string `json:"key"`
	Value uint64 `json:"value"`
}

func (r *NumericAttributeRequest) Validate() error {
	if r.Key == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "key is required")
	}
	return nil
}

// RevenueStreamRequest is the body for POST .../revenue-streams.
type RevenueStreamRequest struct {
	Amount        uint64 `json:"amount"`
	PeriodSeconds uint64 `json:"period_seconds"`
	Collector     string `json:"collector"`

	parsedCollector domain.PrincipalID
}

func (r *RevenueStreamRequest) Validate() error {
	if r.Amount == 0 || r.PeriodSeconds == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount and period_seconds must be positive")
	}
	collector, err := domain.ParsePrincipalID(r.Collector)
	if err != nil {
		return err
	}
	r.parsedCollector = collector
	return nil
}

// ValuationRequest is the body for PUT .../valuation.
type ValuationRequest struct {
	Amount uint64 `json:"amount"`
}

func (r *ValuationRequest) Validate() error { return nil }

// AuthorizeContractRequest is the body for POST .../token-contract.
type AuthorizeContractRequest struct {
	TokenID string `json:"token_id"`
	Allowed bool   `json:"allowed"`

	parsedToken domain.TokenID
}

func (r *AuthorizeContractRequest) Validate() error {
	token, err := domain.ParseTokenID(r.TokenID)
	if err != nil {
		return err
	}
	r.parsedToken = token
	return nil
}

func (h *AssetsHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*RegisterAssetRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	err := h.registry.RegisterAsset(ctx, req.parsedID, req.Name, req.parsedCategory, req.Valuation, req.MetadataURI, req.parsedCustodian)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	asset, err := h.registry.GetAsset(ctx, req.parsedID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, assetResponse(asset))
}

func (h *AssetsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.registry.ListAssets(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]AssetResponse, 0, len(all))
	for _, asset := range all {
		out = append(out, assetResponse(asset))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *AssetsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	asset, err := h.registry.GetAsset(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assetResponse(asset))
}

func (h *AssetsHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.registry.DeactivateAsset(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssetsHandler) handleSetTextAttribute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*TextAttributeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.SetTextAttribute(ctx, id, req.Key, req.Value); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssetsHandler) handleSetNumericAttribute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*NumericAttributeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.SetNumericAttribute(ctx, id, req.Key, req.Value); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssetsHandler) handleCreateRevenueStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*RevenueStreamRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	stream, err := h.registry.CreateRevenueStream(ctx, id, req.Amount, req.PeriodSeconds, req.parsedCollector)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RevenueStreamResponse{
		ID:            stream.ID.String(),
		Amount:        stream.Amount,
		PeriodSeconds: stream.PeriodSeconds,
		Collector:     stream.Collector.String(),
		CreatedAt:     stream.CreatedAt,
	})
}

func (h *AssetsHandler) handleUpdateValuation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*ValuationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.UpdateValuation(ctx, id, req.Amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssetsHandler) handleAuthorizeTokenContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseAssetID(chi.URLParam(r, "assetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*AuthorizeContractRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.AuthorizeTokenContract(ctx, id, req.parsedToken, req.Allowed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssetsHandler) handleTokenContractAuthorized(w http.ResponseWriter, r *http.Request) {
	token, err := domain.ParseTokenID(chi.URLParam(r, "tokenID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	authorized, err := h.registry.TokenContractAuthorized(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"authorized": authorized})
}

// AssetResponse is the wire form of an asset record.
type AssetResponse struct {
	AssetID           string                  `json:"asset_id"`
	Name              string                  `json:"name"`
	Category          string                  `json:"category"`
	Valuation         uint64                  `json:"valuation"`
	MetadataURI       string                  `json:"metadata_uri,omitempty"`
	Custodian         string                  `json:"custodian,omitempty"`
	Status            string                  `json:"status"`
	TokenContract     string                  `json:"token_contract,omitempty"`
	TextAttributes    map[string]string       `json:"text_attributes"`
	NumericAttributes map[string]uint64       `json:"numeric_attributes"`
	RevenueStreams    []RevenueStreamResponse `json:"revenue_streams"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// RevenueStreamResponse is one payout schedule in an asset response.
type RevenueStreamResponse struct {
	ID            string    `json:"id"`
	Amount        uint64    `json:"amount"`
	PeriodSeconds uint64    `json:"period_seconds"`
	Collector     string    `json:"collector"`
	CreatedAt     time.Time `json:"created_at"`
}

func assetResponse(asset assets.Asset) AssetResponse {
	streams := make([]RevenueStreamResponse, 0, len(asset.RevenueStreams))
	for _, stream := range asset.RevenueStreams {
		streams = append(streams, RevenueStreamResponse{
			ID:            stream.ID.String(),
			Amount:        stream.Amount,
			PeriodSeconds: stream.PeriodSeconds,
			Collector:     stream.Collector.String(),
			CreatedAt:     stream.CreatedAt,
		})
	}
	resp := AssetResponse{
		AssetID:           asset.ID.String(),
		Name:              asset.Name,
		Category:          string(asset.Category),
		Valuation:         asset.Valuation,
		MetadataURI:       asset.MetadataURI,
		Status:            string(asset.Status),
		TextAttributes:    asset.TextAttributes,
		NumericAttributes: asset.NumericAttributes,
		RevenueStreams:    streams,
		CreatedAt:         asset.CreatedAt,
		UpdatedAt:         asset.UpdatedAt,
	}
	if !asset.Custodian.IsNil() {
		resp.Custodian = asset.Custodian.String()
	}
	if !asset.TokenContract.IsNil() {
		resp.TokenContract = asset.TokenContract.String()
	}
	return resp
}
