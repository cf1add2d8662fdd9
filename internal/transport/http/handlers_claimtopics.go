package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tokengate/internal/claimtopics"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
	"tokengate/pkg/requestcontext"
)

// ClaimTopicsHandler exposes the claim-topics registry: topics and the
// issuers trusted to sign them.
type ClaimTopicsHandler struct {
	registry *claimtopics.Registry
	logger   *slog.Logger
}

func NewClaimTopicsHandler(registry *claimtopics.Registry, logger *slog.Logger) *ClaimTopicsHandler {
	return &ClaimTopicsHandler{registry: registry, logger: logger}
}

func (h *ClaimTopicsHandler) Register(r chi.Router) {
	r.Post("/claim-topics", h.handleAddTopic)
	r.Get("/claim-topics", h.handleListTopics)
	r.Delete("/claim-topics/{topicID}", h.handleRemoveTopic)

	r.Post("/trusted-issuers", h.handleAddIssuer)
	r.Get("/trusted-issuers", h.handleListIssuers)
	r.Put("/trusted-issuers/{issuerID}", h.handleUpdateIssuer)
	r.Delete("/trusted-issuers/{issuerID}", h.handleRemoveIssuer)
	r.Get("/trusted-issuers/{issuerID}/claim-topics", h.handleIssuerTopics)
}

// AddTopicRequest is the body for POST /claim-topics.
type AddTopicRequest struct {
	TopicID domain.ClaimTopicID `json:"topic_id"`
}

func (r *AddTopicRequest) Validate() error {
	if r.TopicID == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "topic_id is required")
	}
	return nil
}

// IssuerRequest is the body for POST and PUT on /trusted-issuers.
type IssuerRequest struct {
	IssuerID string                `json:"issuer_id,omitempty"`
	TopicIDs []domain.ClaimTopicID `json:"claim_topics"`

	parsedIssuer domain.IssuerID
}

func (r *IssuerRequest) Validate() error {
	if len(r.TopicIDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "claim_topics must not be empty")
	}
	if r.IssuerID != "" {
		issuer, err := domain.ParseIssuerID(r.IssuerID)
		if err != nil {
			return err
		}
		r.parsedIssuer = issuer
	}
	return nil
}

func (h *ClaimTopicsHandler) handleAddTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*AddTopicRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.AddClaimTopic(ctx, req.TopicID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]domain.ClaimTopicID{"topic_id": req.TopicID})
}

func (h *ClaimTopicsHandler) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.registry.GetClaimTopics(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, topics)
}

func (h *ClaimTopicsHandler) handleRemoveTopic(w http.ResponseWriter, r *http.Request) {
	topicID, err := parseTopicID(chi.URLParam(r, "topicID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.registry.RemoveClaimTopic(r.Context(), topicID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClaimTopicsHandler) handleAddIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*IssuerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if req.parsedIssuer.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "issuer_id is required"))
		return
	}
	if err := h.registry.AddTrustedIssuer(ctx, req.parsedIssuer, req.TopicIDs); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"issuer_id": req.parsedIssuer.String()})
}

func (h *ClaimTopicsHandler) handleListIssuers(w http.ResponseWriter, r *http.Request) {
	issuers, err := h.registry.GetTrustedIssuers(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issuers)
}

func (h *ClaimTopicsHandler) handleUpdateIssuer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issuerID, err := domain.ParseIssuerID(chi.URLParam(r, "issuerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[*IssuerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.registry.UpdateIssuerClaimTopics(ctx, issuerID, req.TopicIDs); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClaimTopicsHandler) handleRemoveIssuer(w http.ResponseWriter, r *http.Request) {
	issuerID, err := domain.ParseIssuerID(chi.URLParam(r, "issuerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.registry.RemoveTrustedIssuer(r.Context(), issuerID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClaimTopicsHandler) handleIssuerTopics(w http.ResponseWriter, r *http.Request) {
	issuerID, err := domain.ParseIssuerID(chi.URLParam(r, "issuerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	topics, err := h.registry.GetTrustedIssuerClaimTopics(r.Context(), issuerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, topics)
}

func parseTopicID(raw string) (domain.ClaimTopicID, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "topic id must be a positive integer")
	}
	return domain.ClaimTopicID(id), nil
}
