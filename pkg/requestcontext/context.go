// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets values; services read them. Keeping this package free of
// net/http lets services enforce capabilities and stamp timestamps without
// pulling transport code into the domain.
//
// Usage in services:
//
//	actor := requestcontext.ActorID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithRoles(ctx, domain.RoleAdmin)
package requestcontext

import (
	"context"
	"time"

	"tokengate/pkg/domain"
)

type (
	actorIDKey     struct{}
	rolesKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	clientIPKey    struct{}
)

// WithActorID stores the authenticated operator identifier.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actorID)
}

// ActorID retrieves the authenticated operator identifier, or "" if unset.
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(actorIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRoles stores the actor's capability roles.
func WithRoles(ctx context.Context, roles ...domain.Role) context.Context {
	return context.WithValue(ctx, rolesKey{}, roles)
}

// Roles retrieves the actor's capability roles.
func Roles(ctx context.Context) []domain.Role {
	if v, ok := ctx.Value(rolesKey{}).([]domain.Role); ok {
		return v
	}
	return nil
}

// HasRole reports whether the actor carries any of the wanted roles.
func HasRole(ctx context.Context, wanted ...domain.Role) bool {
	held := Roles(ctx)
	for _, w := range wanted {
		for _, h := range held {
			if h == w {
				return true
			}
		}
	}
	return false
}

// WithRequestID stores the correlation id for the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID retrieves the correlation id, or "" if unset.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithTime pins the request time. Middleware sets this once per request so
// every timestamp taken during the operation agrees; tests use it to freeze
// the clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return v
	}
	return time.Now()
}

// WithClientIP stores the remote address for audit enrichment.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP retrieves the remote address, or "" if unset.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}
