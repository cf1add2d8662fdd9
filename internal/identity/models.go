package identity

import (
	"time"

	"github.com/google/uuid"

	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
)

// ClaimsBundleRef identifies the claims bundle attached to an identity
// record. Bundles are owned by the registry; the ref exists so operator
// tooling can replace a principal's bundle wholesale.
type ClaimsBundleRef uuid.UUID

func NewClaimsBundleRef() ClaimsBundleRef { return ClaimsBundleRef(uuid.New()) }

// ParseClaimsBundleRef validates s at the trust boundary.
func ParseClaimsBundleRef(s string) (ClaimsBundleRef, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ClaimsBundleRef{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "claims ref must be a valid UUID")
	}
	return ClaimsBundleRef(parsed), nil
}

func (r ClaimsBundleRef) String() string { return uuid.UUID(r).String() }
func (r ClaimsBundleRef) IsNil() bool    { return uuid.UUID(r) == uuid.Nil }

// Status tracks the identity lifecycle. Records move Registered → Deleted
// and never skip Registered.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusDeleted    Status = "deleted"
)

// Claim is a signed assertion held inside a principal's bundle. A claim
// counts toward verification only while unexpired and only if its issuer is
// trusted for its topic at evaluation time.
type Claim struct {
	TopicID   domain.ClaimTopicID
	Issuer    domain.IssuerID
	Scheme    uint64
	Signature []byte
	DataHash  []byte
	URI       string
	IssuedAt  time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the claim has lapsed at the given instant.
func (c Claim) Expired(at time.Time) bool {
	return c.ExpiresAt != nil && !at.Before(*c.ExpiresAt)
}

// Record is the registry entry for one principal. One record per principal;
// country and bundle are mutable, the principal id is not.
type Record struct {
	Principal domain.PrincipalID
	ClaimsRef ClaimsBundleRef
	Country   domain.CountryCode
	Status    Status
	Claims    map[domain.ClaimTopicID]Claim
	CreatedAt time.Time
	UpdatedAt time.Time
}
