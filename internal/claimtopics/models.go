package claimtopics

import (
	"time"

	"tokengate/pkg/domain"
)

// ClaimTopic is a category of attestation operators have enabled for the
// deployment. A topic must exist before any issuer can be trusted for it.
type ClaimTopic struct {
	ID      domain.ClaimTopicID
	AddedAt time.Time
}

// TrustedIssuer records which topics an attestor may assert. An issuer is
// trusted for a topic only if the topic appears in Topics.
type TrustedIssuer struct {
	ID        domain.IssuerID
	Topics    []domain.ClaimTopicID
	UpdatedAt time.Time
}

// TrustedFor reports whether the issuer may assert the given topic.
func (i TrustedIssuer) TrustedFor(topicID domain.ClaimTopicID) bool {
	for _, t := range i.Topics {
		if t == topicID {
			return true
		}
	}
	return false
}
