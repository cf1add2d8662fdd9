package identity

import (
	"context"
	"errors"
	"log/slog"

	"tokengate/internal/platform/authz"
	"tokengate/internal/platform/events"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/sentinel"
	"tokengate/pkg/requestcontext"
)

// TrustChecker is the slice of the claim-topics registry the identity
// registry needs: the issuer trust relation. Narrowing the dependency keeps
// verification testable with a two-line fake.
type TrustChecker interface {
	IsTrustedIssuer(ctx context.Context, issuerID domain.IssuerID, topicID domain.ClaimTopicID) (bool, error)
}

// Registry maps principals to identity records and answers the verification
// question the token ledger asks before every transfer.
type Registry struct {
	store           Store
	trust           TrustChecker
	mandatoryTopics []domain.ClaimTopicID
	logger          *slog.Logger
	publisher       events.Publisher
}

// Option configures the Registry.
type Option func(*Registry)

// WithPublisher emits identity lifecycle events to the configured broker.
func WithPublisher(p events.Publisher) Option {
	return func(r *Registry) { r.publisher = p }
}

func NewRegistry(store Store, trust TrustChecker, mandatoryTopics []domain.ClaimTopicID, logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		store:           store,
		trust:           trust,
		mandatoryTopics: append([]domain.ClaimTopicID(nil), mandatoryTopics...),
		logger:          logger,
		publisher:       events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterIdentity creates the record for a principal. A zero claimsRef
// mints a fresh bundle. Fails with AlreadyRegistered if a record exists.
func (r *Registry) RegisterIdentity(ctx context.Context, principal domain.PrincipalID, claimsRef ClaimsBundleRef, country domain.CountryCode) error {
	if err := authz.Require(ctx, domain.RoleAdmin, domain.RoleAgent); err != nil {
		return err
	}
	if principal.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "principal id is required")
	}
	if claimsRef.IsNil() {
		claimsRef = NewClaimsBundleRef()
	}
	now := requestcontext.Now(ctx)
	record := Record{
		Principal: principal,
		ClaimsRef: claimsRef,
		Country:   country,
		Status:    StatusRegistered,
		Claims:    make(map[domain.ClaimTopicID]Claim),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeAlreadyRegistered, "identity already registered for principal")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register identity")
	}
	r.logger.InfoContext(ctx, "identity registered",
		"principal", principal.String(),
		"country", country,
		"actor", requestcontext.ActorID(ctx),
	)
	return nil
}

// BatchRegisterIdentities registers several principals at once. The three
// slices are parallel arrays and must have equal length.
func (r *Registry) BatchRegisterIdentities(ctx context.Context, principals []domain.PrincipalID, claimsRefs []ClaimsBundleRef, countries []domain.CountryCode) error {
	if len(principals) != len(claimsRefs) || len(principals) != len(countries) {
		return dErrors.New(dErrors.CodeArityMismatch, "principals, claims refs, and countries must have equal length")
	}
	for i := range principals {
		if err := r.RegisterIdentity(ctx, principals[i], claimsRefs[i], countries[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetInvestorCountry updates the country code only.
func (r *Registry) SetInvestorCountry(ctx context.Context, principal domain.PrincipalID, country domain.CountryCode) error {
	if err := authz.Require(ctx, domain.RoleAdmin, domain.RoleAgent); err != nil {
		return err
	}
	record, err := r.find(ctx, principal)
	if err != nil {
		return err
	}
	record.Country = country
	record.UpdatedAt = requestcontext.Now(ctx)
	if err := r.store.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update investor country")
	}
	return nil
}

// AddClaim attaches a claim to the principal's bundle, replacing any
// existing claim for the same topic.
func (r *Registry) AddClaim(ctx context.Context, principal domain.PrincipalID, claim Claim) error {
	if err := authz.Require(ctx, domain.RoleAdmin, domain.RoleAgent); err != nil {
		return err
	}
	if claim.Issuer.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "claim issuer is required")
	}
	record, err := r.find(ctx, principal)
	if err != nil {
		return err
	}
	if claim.IssuedAt.IsZero() {
		claim.IssuedAt = requestcontext.Now(ctx)
	}
	record.Claims[claim.TopicID] = claim
	record.UpdatedAt = requestcontext.Now(ctx)
	if err := r.store.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add claim")
	}
	return nil
}

// RemoveClaim drops the claim for a topic from the principal's bundle.
func (r *Registry) RemoveClaim(ctx context.Context, principal domain.PrincipalID, topicID domain.ClaimTopicID) error {
	if err := authz.Require(ctx, domain.RoleAdmin, domain.RoleAgent); err != nil {
		return err
	}
	record, err := r.find(ctx, principal)
	if err != nil {
		return err
	}
	if _, ok := record.Claims[topicID]; !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "no claim held for topic %d", topicID)
	}
	delete(record.Claims, topicID)
	record.UpdatedAt = requestcontext.Now(ctx)
	if err := r.store.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove claim")
	}
	return nil
}

// DeleteIdentity removes the record. Transfers to or from the principal
// fail verification from this point on.
func (r *Registry) DeleteIdentity(ctx context.Context, principal domain.PrincipalID) error {
	if err := authz.Require(ctx, domain.RoleAdmin, domain.RoleAgent); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, principal); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "identity not registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete identity")
	}
	r.logger.InfoContext(ctx, "identity deleted",
		"principal", principal.String(),
		"actor", requestcontext.ActorID(ctx),
	)
	r.publisher.Publish(ctx, events.Event{
		Kind:      events.KindIdentityDeleted,
		Subject:   principal.String(),
		Actor:     requestcontext.ActorID(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: requestcontext.Now(ctx),
	})
	return nil
}

// IsVerifiedForTopic reports whether the principal holds an unexpired claim
// for the topic signed by an issuer currently trusted for it. Unregistered
// principals, missing claims, expired claims, and untrusted issuers all
// answer false; the gate fails closed, never with an error a module could
// misread as approval.
func (r *Registry) IsVerifiedForTopic(ctx context.Context, principal domain.PrincipalID, topicID domain.ClaimTopicID) (bool, error) {
	record, err := r.store.Find(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	if record.Status != StatusRegistered {
		return false, nil
	}
	claim, ok := record.Claims[topicID]
	if !ok {
		return false, nil
	}
	if claim.Expired(requestcontext.Now(ctx)) {
		return false, nil
	}
	return r.trust.IsTrustedIssuer(ctx, claim.Issuer, topicID)
}

// IsVerified checks the principal against every mandatory topic configured
// for the deployment (KYC at minimum).
func (r *Registry) IsVerified(ctx context.Context, principal domain.PrincipalID) (bool, error) {
	for _, topicID := range r.mandatoryTopics {
		verified, err := r.IsVerifiedForTopic(ctx, principal, topicID)
		if err != nil {
			return false, err
		}
		if !verified {
			return false, nil
		}
	}
	return true, nil
}

// InvestorCountry resolves the principal's registered country code.
func (r *Registry) InvestorCountry(ctx context.Context, principal domain.PrincipalID) (domain.CountryCode, error) {
	record, err := r.find(ctx, principal)
	if err != nil {
		return 0, err
	}
	return record.Country, nil
}

// GetIdentity returns the record for a principal.
func (r *Registry) GetIdentity(ctx context.Context, principal domain.PrincipalID) (Record, error) {
	return r.find(ctx, principal)
}

// ListIdentities returns all registered records in stable principal order.
func (r *Registry) ListIdentities(ctx context.Context) ([]Record, error) {
	records, err := r.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list identities")
	}
	return records, nil
}

func (r *Registry) find(ctx context.Context, principal domain.PrincipalID) (Record, error) {
	record, err := r.store.Find(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, dErrors.New(dErrors.CodeNotFound, "identity not registered")
		}
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return record, nil
}
