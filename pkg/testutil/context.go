package testutil

import (
	"context"
	"time"

	"tokengate/pkg/domain"
	"tokengate/pkg/requestcontext"
)

// AdminContext returns a context carrying an ADMIN actor and a fixed clock,
// the common setup for registry mutation tests.
func AdminContext(at time.Time) context.Context {
	ctx := requestcontext.WithActorID(context.Background(), "test-admin")
	ctx = requestcontext.WithRoles(ctx, domain.RoleAdmin)
	return requestcontext.WithTime(ctx, at)
}

// OfficerContext returns a context carrying a COMPLIANCE_OFFICER actor.
func OfficerContext(at time.Time) context.Context {
	ctx := requestcontext.WithActorID(context.Background(), "test-officer")
	ctx = requestcontext.WithRoles(ctx, domain.RoleComplianceOfficer)
	return requestcontext.WithTime(ctx, at)
}

// ReporterContext returns a context carrying a REPORTER actor.
func ReporterContext(at time.Time) context.Context {
	ctx := requestcontext.WithActorID(context.Background(), "test-reporter")
	ctx = requestcontext.WithRoles(ctx, domain.RoleReporter)
	return requestcontext.WithTime(ctx, at)
}
