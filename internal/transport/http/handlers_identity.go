package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tokengate/internal/identity"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
	"tokengate/pkg/requestcontext"
)

// IdentityHandler exposes the identity registry: registration, claims, and
// the verification queries the ledger asks.
type IdentityHandler struct {
	registry *identity.Registry
	logger   *slog.Logger
}

func NewIdentityHandler(registry *identity.Registry, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{registry: registry, logger: logger}
}

func (h *IdentityHandler) Register(r chi.Router) {
	r.Post("/identities", h.handleRegister)
	r.Post("/identities/batch", h.handleBatchRegister)
	r.Get("/identities", h.handleList)
	r.Get("/identities/{principalID}", h.handleGet)
	r.Delete("/identities/{principalID}", h.handleDelete)
	r.Put("/identities/{principalID}/country", h.handleSetCountry)
	r.Post("/identities/{principalID}/claims", h.handleAddClaim)
	r.Delete("/identities/{principalID}/claims/{topicID}", h.handleRemoveClaim)
	r.Get("/identities/{principalID}/verified", h.handleVerified)
}

// RegisterIdentityRequest is the body for POST /identities.
type RegisterIdentityRequest struct {
	PrincipalID string             `json:"principal_id"`
	ClaimsRef   string             `json:"claims_ref,omitempty"`
	Country     domain.CountryCode `json:"country"`

	parsedPrincipal domain.PrincipalID
	parsedClaimsRef identity.ClaimsBundleRef
}

func (r *RegisterIdentityRequest) Validate() error {
	principal, err := domain.ParsePrincipalID(r.PrincipalID)
	if err != nil {
		return err
	}
	r.parsedPrincipal = principal
	if r.ClaimsRef != "" {
		ref, err := identity.ParseClaimsBundleRef(r.ClaimsRef)
		if err != nil {
			return err
		}
		r.parsedClaimsRef = ref
	}
	return nil
}

// BatchRegisterRequest is the body for POST /identities/batch. The three
// slices are parallel arrays.
type BatchRegisterRequest struct {
	PrincipalIDs []string             `json:"principal_ids"`
	ClaimsRefs   []string             `json:"claims_refs"`
	Countries    []domain.CountryCode `json:"countries"`

	parsedPrincipals []domain.PrincipalID
	parsedClaimsRefs []identity.ClaimsBundleRef
}

func (r *BatchRegisterRequest) Validate() error {
	if len(r.PrincipalIDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "principal_ids must not be empty")
	}
	// Arity is checked by the registry so batches of parsable ids with
	// mismatched lengths still surface ArityMismatch.
	for _, raw := range r.PrincipalIDs {
		principal, err := domain.ParsePrincipalID(raw)
		if err != nil {
			return err
		}
		r.parsedPrincipals = append(r.parsedPrincipals, principal)
	}
	for _, raw := range r.ClaimsRefs {
		var ref identity.ClaimsBundleRef
		if raw != "" {
			parsed, err := identity.ParseClaimsBundleRef(raw)
			if err != nil {
				return err
			}
			ref = parsed
		}
		r.parsedClaimsRefs = append(r.parsedClaimsRefs, ref)
	}
	return nil
}

// AddClaimRequest is the body for POST /identities/{id}/claims.
type AddClaimRequest struct {
	TopicID   domain.ClaimTopicID `json:"topic_id"`
	IssuerID  string              `json:"issuer_id"`
	Scheme    uint64              `json:"scheme,omitempty"`
	Signature []byte              `json:"signature,omitempty"`
	DataHash  []byte              `json:"data_hash,omitempty"`
	URI       string              `json:"uri,omitempty"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`

	parsedIssuer domain.IssuerID
}

func (r *AddClaimRequest) Validate() error {
	if r.TopicID == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "topic_id is required")
	}
	issuer, err := domain.ParseIssuerID(r.IssuerID)
	if err != nil {
		return err
	}
	r.parsedIssuer = issuer
	return nil
}

// SetCountryRequest is the body for PUT /identities/{id}/country.
type SetCountryRequest struct {
	Country domain.CountryCode `json:"country"`
}

func (r *SetCountryRequest) Validate() error { return nil }

func (h *IdentityHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*RegisterIdentityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.RegisterIdentity(ctx, req.parsedPrincipal, req.parsedClaimsRef, req.Country); err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.registry.GetIdentity(ctx, req.parsedPrincipal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, identityResponse(record))
}

func (h *IdentityHandler) handleBatchRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*BatchRegisterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.BatchRegisterIdentities(ctx, req.parsedPrincipals, req.parsedClaimsRefs, req.Countries); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]int{"registered": len(req.parsedPrincipals)})
}

func (h *IdentityHandler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.registry.ListIdentities(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]IdentityResponse, 0, len(records))
	for _, record := range records {
		out = append(out, identityResponse(record))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *IdentityHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	principal, err := domain.ParsePrincipalID(chi.URLParam(r, "principalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	record, err := h.registry.GetIdentity(r.Context(), principal)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, identityResponse(record))
}

func (h *IdentityHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	principal, err := domain.ParsePrincipalID(chi.URLParam(r, "principalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.registry.DeleteIdentity(r.Context(), principal); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *IdentityHandler) handleSetCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, err := domain.ParsePrincipalID(chi.URLParam(r, "principalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*SetCountryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.SetInvestorCountry(ctx, principal, req.Country); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *IdentityHandler) handleAddClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, err := domain.ParsePrincipalID(chi.URLParam(r, "principalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*AddClaimRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	claim := identity.Claim{
		TopicID:   req.TopicID,
		Issuer:    req.parsedIssuer,
		Scheme:    req.Scheme,
		Signature: req.Signature,
		DataHash:  req.DataHash,
		URI:       req.URI,
		ExpiresAt: req.ExpiresAt,
	}
	if err := h.registry.AddClaim(ctx, principal, claim); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *IdentityHandler) handleRemoveClaim(w http.ResponseWriter, r *http.Request) {
	principal, err := domain.ParsePrincipalID(chi.URLParam(r, "principalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	topicID, err := parseTopicID(chi.URLParam(r, "topicID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.registry.RemoveClaim(r.Context(), principal, topicID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVerified answers the verification query. With a ?topic= parameter it
// checks that single topic; without, the full mandatory set.
func (h *IdentityHandler) handleVerified(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, err := domain.ParsePrincipalID(chi.URLParam(r, "principalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var verified bool
	if raw := r.URL.Query().Get("topic"); raw != "" {
		topicID, err := parseTopicID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		verified, err = h.registry.IsVerifiedForTopic(ctx, principal, topicID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	} else {
		verified, err = h.registry.IsVerified(ctx, principal)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}

// IdentityResponse is the wire form of an identity record. Claim signatures
// and hashes are not echoed back; clients read those through the claims they
// submitted.
type IdentityResponse struct {
	PrincipalID string              `json:"principal_id"`
	ClaimsRef   string              `json:"claims_ref"`
	Country     domain.CountryCode  `json:"country"`
	Status      string              `json:"status"`
	ClaimTopics []ClaimTopicSummary `json:"claim_topics"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ClaimTopicSummary is one held claim in an identity response.
type ClaimTopicSummary struct {
	TopicID   domain.ClaimTopicID `json:"topic_id"`
	IssuerID  string              `json:"issuer_id"`
	IssuedAt  time.Time           `json:"issued_at"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
}

func identityResponse(record identity.Record) IdentityResponse {
	claims := make([]ClaimTopicSummary, 0, len(record.Claims))
	for _, claim := range record.Claims {
		claims = append(claims, ClaimTopicSummary{
			TopicID:   claim.TopicID,
			IssuerID:  claim.Issuer.String(),
			IssuedAt:  claim.IssuedAt,
			ExpiresAt: claim.ExpiresAt,
		})
	}
	return IdentityResponse{
		PrincipalID: record.Principal.String(),
		ClaimsRef:   record.ClaimsRef.String(),
		Country:     record.Country,
		Status:      string(record.Status),
		ClaimTopics: claims,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
