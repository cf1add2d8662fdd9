// Package httptransport exposes the engine's operations over HTTP. Handlers
// stay thin: decode, validate, delegate to a service, translate the result.
// Authorization lives in the services so operator tooling calling them
// directly gets the same capability checks.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tokengate/internal/platform/middleware"
	"tokengate/internal/platform/token"
)

// NewRouter assembles the middleware chain and mounts every handler group.
// All routes except health, metrics, and the token exchange require a bearer
// token.
func NewRouter(tokens *token.Service, auth *AuthHandler, logger *slog.Logger, groups ...RouteGroup) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/auth/token", auth.handleIssueToken)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens))
		for _, group := range groups {
			group.Register(r)
		}
	})
	return r
}

// RouteGroup is one handler family mounting its routes on the router.
type RouteGroup interface {
	Register(r chi.Router)
}
