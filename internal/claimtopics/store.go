package claimtopics

import (
	"context"

	"tokengate/pkg/domain"
)

// Store persists the topic catalog and the issuer trust relation. Stores are
// interface-driven so the service stays testable and persistence can be
// swapped without rewiring business code.
type Store interface {
	AddTopic(ctx context.Context, topic ClaimTopic) error
	RemoveTopic(ctx context.Context, id domain.ClaimTopicID) error
	TopicExists(ctx context.Context, id domain.ClaimTopicID) (bool, error)
	ListTopics(ctx context.Context) ([]ClaimTopic, error)

	SaveIssuer(ctx context.Context, issuer TrustedIssuer) error
	RemoveIssuer(ctx context.Context, id domain.IssuerID) error
	FindIssuer(ctx context.Context, id domain.IssuerID) (TrustedIssuer, error)
	ListIssuers(ctx context.Context) ([]TrustedIssuer, error)
}
