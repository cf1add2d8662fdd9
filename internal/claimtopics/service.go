package claimtopics

import (
	"context"
	"errors"
	"log/slog"

	"tokengate/internal/platform/authz"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/sentinel"
	"tokengate/pkg/requestcontext"
)

// Registry is the authoritative catalog of claim topics and the issuers
// trusted to assert them. All mutations require the administrative
// capability; reads are open to any authenticated caller.
type Registry struct {
	store  Store
	logger *slog.Logger
}

func NewRegistry(store Store, logger *slog.Logger) *Registry {
	return &Registry{store: store, logger: logger}
}

// AddClaimTopic enables a new claim topic. Duplicate adds are rejected so a
// re-run of provisioning scripts surfaces drift instead of masking it.
func (r *Registry) AddClaimTopic(ctx context.Context, topicID domain.ClaimTopicID) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	topic := ClaimTopic{ID: topicID, AddedAt: requestcontext.Now(ctx)}
	if err := r.store.AddTopic(ctx, topic); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Newf(dErrors.CodeAlreadyExists, "claim topic %d already exists", topicID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add claim topic")
	}
	r.logger.InfoContext(ctx, "claim topic added", "topic_id", topicID, "actor", requestcontext.ActorID(ctx))
	return nil
}

// RemoveClaimTopic disables a topic. Issuer trust entries keep their topic
// lists; verification still fails closed because the topic no longer exists.
func (r *Registry) RemoveClaimTopic(ctx context.Context, topicID domain.ClaimTopicID) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	if err := r.store.RemoveTopic(ctx, topicID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeUnknownTopic, "claim topic %d does not exist", topicID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove claim topic")
	}
	r.logger.InfoContext(ctx, "claim topic removed", "topic_id", topicID, "actor", requestcontext.ActorID(ctx))
	return nil
}

// GetClaimTopics returns all enabled topics in ascending id order.
func (r *Registry) GetClaimTopics(ctx context.Context) ([]ClaimTopic, error) {
	topics, err := r.store.ListTopics(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claim topics")
	}
	return topics, nil
}

// AddTrustedIssuer makes the issuer trusted for the listed topics, each of
// which must already exist. Re-adding an issuer replaces its topic set.
func (r *Registry) AddTrustedIssuer(ctx context.Context, issuerID domain.IssuerID, topicIDs []domain.ClaimTopicID) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	if issuerID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "issuer id is required")
	}
	if len(topicIDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one claim topic is required")
	}
	for _, topicID := range topicIDs {
		exists, err := r.store.TopicExists(ctx, topicID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check claim topic")
		}
		if !exists {
			return dErrors.Newf(dErrors.CodeUnknownTopic, "claim topic %d does not exist", topicID)
		}
	}
	issuer := TrustedIssuer{
		ID:        issuerID,
		Topics:    append([]domain.ClaimTopicID(nil), topicIDs...),
		UpdatedAt: requestcontext.Now(ctx),
	}
	if err := r.store.SaveIssuer(ctx, issuer); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save trusted issuer")
	}
	r.logger.InfoContext(ctx, "trusted issuer added",
		"issuer_id", issuerID.String(),
		"topics", len(topicIDs),
		"actor", requestcontext.ActorID(ctx),
	)
	return nil
}

// UpdateIssuerClaimTopics replaces an existing issuer's topic set.
func (r *Registry) UpdateIssuerClaimTopics(ctx context.Context, issuerID domain.IssuerID, topicIDs []domain.ClaimTopicID) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	if _, err := r.store.FindIssuer(ctx, issuerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "issuer is not trusted")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trusted issuer")
	}
	return r.AddTrustedIssuer(ctx, issuerID, topicIDs)
}

// RemoveTrustedIssuer revokes all trust from an issuer. Claims it has
// already signed stop verifying immediately.
func (r *Registry) RemoveTrustedIssuer(ctx context.Context, issuerID domain.IssuerID) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	if err := r.store.RemoveIssuer(ctx, issuerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "issuer is not trusted")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove trusted issuer")
	}
	r.logger.InfoContext(ctx, "trusted issuer removed",
		"issuer_id", issuerID.String(),
		"actor", requestcontext.ActorID(ctx),
	)
	return nil
}

// IsTrustedIssuer reports whether the issuer may assert the topic. Both the
// topic and the trust entry must exist; anything else is not trusted.
func (r *Registry) IsTrustedIssuer(ctx context.Context, issuerID domain.IssuerID, topicID domain.ClaimTopicID) (bool, error) {
	exists, err := r.store.TopicExists(ctx, topicID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check claim topic")
	}
	if !exists {
		return false, nil
	}
	issuer, err := r.store.FindIssuer(ctx, issuerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trusted issuer")
	}
	return issuer.TrustedFor(topicID), nil
}

// GetTrustedIssuers returns all trusted issuers in stable order.
func (r *Registry) GetTrustedIssuers(ctx context.Context) ([]TrustedIssuer, error) {
	issuers, err := r.store.ListIssuers(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list trusted issuers")
	}
	return issuers, nil
}

// GetTrustedIssuerClaimTopics returns the topics an issuer may assert.
func (r *Registry) GetTrustedIssuerClaimTopics(ctx context.Context, issuerID domain.IssuerID) ([]domain.ClaimTopicID, error) {
	issuer, err := r.store.FindIssuer(ctx, issuerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "issuer is not trusted")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trusted issuer")
	}
	return append([]domain.ClaimTopicID(nil), issuer.Topics...), nil
}
