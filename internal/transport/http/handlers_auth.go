package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"tokengate/internal/platform/secrets"
	"tokengate/internal/platform/token"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
	"tokengate/pkg/requestcontext"
)

const accessTokenTTL = time.Hour

// AuthHandler exchanges the operator secret for a bearer token. It is the
// only route mounted outside the auth middleware.
type AuthHandler struct {
	tokens     *token.Service
	secretHash string
	logger     *slog.Logger
}

func NewAuthHandler(tokens *token.Service, secretHash string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, secretHash: secretHash, logger: logger}
}

// IssueTokenRequest carries the operator credential exchange. Roles name the
// capabilities the minted token should carry.
type IssueTokenRequest struct {
	ActorID string   `json:"actor_id"`
	Secret  string   `json:"secret"`
	Roles   []string `json:"roles"`

	parsedRoles []domain.Role
}

func (r *IssueTokenRequest) Validate() error {
	if r.ActorID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "actor_id is required")
	}
	if r.Secret == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "secret is required")
	}
	if len(r.Roles) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one role is required")
	}
	for _, raw := range r.Roles {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return dErrors.Newf(dErrors.CodeInvalidInput, "unknown role %q", raw)
		}
		r.parsedRoles = append(r.parsedRoles, role)
	}
	return nil
}

// TokenResponse is the issued access token envelope.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *AuthHandler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[*IssueTokenRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := secrets.Verify(req.Secret, h.secretHash); err != nil {
		h.logger.WarnContext(ctx, "operator secret rejected", "actor_id", req.ActorID)
		httputil.WriteError(w, dErrors.New(dErrors.CodePermissionDenied, "invalid operator credentials"))
		return
	}
	jwt, err := h.tokens.Generate(req.ActorID, req.parsedRoles, accessTokenTTL)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: jwt,
		TokenType:   "Bearer",
		ExpiresIn:   int(accessTokenTTL.Seconds()),
	})
}
