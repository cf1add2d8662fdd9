// Package authz enforces operator capability checks against roles carried in
// the request context. Services call Require at the top of every gated
// operation so unauthorized calls fail before any state is touched.
package authz

import (
	"context"

	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/requestcontext"
)

// Require returns a PermissionDenied error unless the actor in ctx carries
// at least one of the wanted roles.
func Require(ctx context.Context, wanted ...domain.Role) error {
	if requestcontext.HasRole(ctx, wanted...) {
		return nil
	}
	return dErrors.New(dErrors.CodePermissionDenied, "caller lacks required capability")
}

// RequireAdmin is shorthand for the administrative capability most registry
// mutations demand.
func RequireAdmin(ctx context.Context) error {
	return Require(ctx, domain.RoleAdmin)
}
