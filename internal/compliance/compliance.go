// Package compliance implements the modular transfer evaluator: an ordered,
// mutable list of rule modules bound to exactly one token ledger. A transfer
// is permitted only when every bound module votes allow.
package compliance

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	compliancemetrics "tokengate/internal/compliance/metrics"
	"tokengate/internal/platform/authz"
	"tokengate/internal/platform/events"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/requestcontext"
)

var errAlreadyAttached = errors.New("module already attached to a compliance instance")

// Service aggregates module verdicts for one token ledger. Binding mutations
// require the administrative capability; evaluation is open to the bound
// ledger and operator tooling.
type Service struct {
	mu      sync.RWMutex
	token   domain.TokenID
	bound   bool
	modules []Module

	logger    *slog.Logger
	metrics   *compliancemetrics.Metrics
	tracer    trace.Tracer
	publisher events.Publisher
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics attaches the Prometheus collectors.
func WithMetrics(m *compliancemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher emits binding and rejection events to the configured broker.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		logger:    logger,
		tracer:    otel.Tracer("tokengate/compliance"),
		publisher: events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BindToken binds this compliance instance to its token ledger. The binding
// is one-time; a second call fails with AlreadyBound.
func (s *Service) BindToken(ctx context.Context, token domain.TokenID) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	if token.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "token id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound {
		return dErrors.Newf(dErrors.CodeAlreadyBound, "compliance already bound to token %s", s.token)
	}
	s.token = token
	s.bound = true
	s.logger.InfoContext(ctx, "compliance bound to token", "token", token.String())
	return nil
}

// BoundToken returns the bound token id, or false before binding.
func (s *Service) BoundToken() (domain.TokenID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.bound
}

// AddModule appends a module to the evaluation order. A module already in
// the list is rejected so the same policy never votes twice on one
// transfer; a module attached to another compliance instance is rejected
// so its rolling state stays unambiguous.
func (s *Service) AddModule(ctx context.Context, module Module) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bound := range s.modules {
		if bound.Name() == module.Name() {
			return dErrors.Newf(dErrors.CodeAlreadyExists, "module %s already bound", module.Name())
		}
	}
	if exclusive, ok := module.(ExclusiveModule); ok {
		if err := exclusive.Attach(); err != nil {
			return dErrors.Newf(dErrors.CodeAlreadyBound, "module %s is bound to another compliance instance", module.Name())
		}
	}
	s.modules = append(s.modules, module)
	s.logger.InfoContext(ctx, "compliance module added", "module", module.Name(), "position", len(s.modules)-1)
	s.publisher.Publish(ctx, events.Event{
		Kind:       events.KindModuleBound,
		Subject:    s.token.String(),
		Actor:      requestcontext.ActorID(ctx),
		ModuleName: module.Name(),
		RequestID:  requestcontext.RequestID(ctx),
		Timestamp:  requestcontext.Now(ctx),
	})
	return nil
}

// RemoveModule detaches a module from the evaluation order by name.
func (s *Service) RemoveModule(ctx context.Context, name string) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, module := range s.modules {
		if module.Name() != name {
			continue
		}
		if exclusive, ok := module.(ExclusiveModule); ok {
			exclusive.Detach()
		}
		s.modules = append(s.modules[:i], s.modules[i+1:]...)
		s.logger.InfoContext(ctx, "compliance module removed", "module", name)
		s.publisher.Publish(ctx, events.Event{
			Kind:       events.KindModuleRemoved,
			Subject:    s.token.String(),
			Actor:      requestcontext.ActorID(ctx),
			ModuleName: name,
			RequestID:  requestcontext.RequestID(ctx),
			Timestamp:  requestcontext.Now(ctx),
		})
		return nil
	}
	return dErrors.Newf(dErrors.CodeNotFound, "module %s is not bound", name)
}

// ModuleBound reports whether a module with the given name is bound.
func (s *Service) ModuleBound(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, module := range s.modules {
		if module.Name() == name {
			return true
		}
	}
	return false
}

// ModuleNames returns the bound module names in evaluation order.
func (s *Service) ModuleNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.modules))
	for i, module := range s.modules {
		names[i] = module.Name()
	}
	return names
}

// CanTransfer evaluates every bound module in binding order and returns nil
// only if all allow. The aggregate is a pure AND, so stopping at the first
// deny is observably equivalent to full evaluation; the first rejection
// surfaces as ComplianceRejected carrying the module's name and reason.
func (s *Service) CanTransfer(ctx context.Context, from, to domain.PrincipalID, amount uint64) error {
	ctx, span := s.tracer.Start(ctx, "compliance.CanTransfer",
		trace.WithAttributes(
			attribute.String("from", from.String()),
			attribute.String("to", to.String()),
			attribute.Int64("amount", int64(amount)),
		))
	defer span.End()
	start := time.Now()

	s.mu.RLock()
	modules := append([]Module(nil), s.modules...)
	s.mu.RUnlock()

	for _, module := range modules {
		verdict, err := module.CanTransfer(ctx, from, to, amount)
		if err != nil {
			s.metrics.IncOutcome("error")
			s.metrics.ObserveEvaluateLatency(time.Since(start))
			return dErrors.Wrap(err, dErrors.CodeInternal, "module evaluation failed")
		}
		if !verdict.Allowed {
			s.metrics.IncVerdict(module.Name(), "deny")
			s.metrics.IncOutcome("rejected")
			s.metrics.ObserveEvaluateLatency(time.Since(start))
			span.SetAttributes(
				attribute.String("rejected_by", module.Name()),
				attribute.String("reason", verdict.Reason),
			)
			s.logger.DebugContext(ctx, "transfer rejected",
				"module", module.Name(),
				"reason", verdict.Reason,
				"from", from.String(),
				"to", to.String(),
				"amount", amount,
			)
			s.publisher.Publish(ctx, events.Event{
				Kind:       events.KindTransferRejected,
				Subject:    from.String(),
				Reason:     verdict.Reason,
				ModuleName: module.Name(),
				Amount:     amount,
				RequestID:  requestcontext.RequestID(ctx),
				Timestamp:  requestcontext.Now(ctx),
			})
			return dErrors.Newf(dErrors.CodeComplianceRejected, "%s: %s", module.Name(), verdict.Reason)
		}
		s.metrics.IncVerdict(module.Name(), "allow")
	}

	s.metrics.IncOutcome("allowed")
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	return nil
}

// Transferred notifies every bound module of a committed transfer so
// stateful modules advance their counters. Invoked only after the ledger
// mutation commits.
func (s *Service) Transferred(ctx context.Context, from, to domain.PrincipalID, amount uint64) error {
	return s.notify(ctx, func(m Module) error { return m.Transferred(ctx, from, to, amount) })
}

// Created notifies modules of issuance so balance-based policies stay
// consistent under supply changes that bypass Transferred.
func (s *Service) Created(ctx context.Context, owner domain.PrincipalID, amount uint64) error {
	return s.notify(ctx, func(m Module) error { return m.Created(ctx, owner, amount) })
}

// Destroyed notifies modules of redemption.
func (s *Service) Destroyed(ctx context.Context, owner domain.PrincipalID, amount uint64) error {
	return s.notify(ctx, func(m Module) error { return m.Destroyed(ctx, owner, amount) })
}

func (s *Service) notify(ctx context.Context, fn func(Module) error) error {
	s.mu.RLock()
	modules := append([]Module(nil), s.modules...)
	s.mu.RUnlock()

	var errs []error
	for _, module := range modules {
		if err := fn(module); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return dErrors.Wrap(errors.Join(errs...), dErrors.CodeInternal, "module notification failed")
	}
	return nil
}
