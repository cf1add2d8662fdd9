package domain

import (
	"github.com/google/uuid"

	dErrors "tokengate/pkg/domain-errors"
)

// Typed identifiers keep principals, issuers, assets, and token contracts
// from being mixed up at compile time. All four wrap a UUID; any injective
// encoding would do, the invariant is uniqueness and stability.
type (
	// PrincipalID identifies an investor account on the ledger.
	PrincipalID uuid.UUID

	// IssuerID identifies an attestor trusted to sign claims.
	IssuerID uuid.UUID

	// AssetID identifies a registered real-world asset.
	AssetID uuid.UUID

	// TokenID identifies a token contract bound to a compliance instance.
	TokenID uuid.UUID
)

// ClaimTopicID identifies a category of attestation (KYC, AML, country,
// accreditation). Topic ids are small integers assigned by operators.
type ClaimTopicID uint64

// CountryCode is an ISO 3166-1 numeric country code.
type CountryCode uint16

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParsePrincipalID validates s at the trust boundary and returns a PrincipalID.
func ParsePrincipalID(s string) (PrincipalID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return PrincipalID{}, err
	}
	return PrincipalID(parsed), nil
}

// ParseIssuerID validates s at the trust boundary and returns an IssuerID.
func ParseIssuerID(s string) (IssuerID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return IssuerID{}, err
	}
	return IssuerID(parsed), nil
}

// ParseAssetID validates s at the trust boundary and returns an AssetID.
func ParseAssetID(s string) (AssetID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return AssetID{}, err
	}
	return AssetID(parsed), nil
}

// ParseTokenID validates s at the trust boundary and returns a TokenID.
func ParseTokenID(s string) (TokenID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return TokenID{}, err
	}
	return TokenID(parsed), nil
}

func (id PrincipalID) String() string { return uuid.UUID(id).String() }
func (id IssuerID) String() string    { return uuid.UUID(id).String() }
func (id AssetID) String() string     { return uuid.UUID(id).String() }
func (id TokenID) String() string     { return uuid.UUID(id).String() }

// Text marshaling keeps the canonical UUID form on every wire and storage
// surface. Unmarshal goes through the same validation as the Parse helpers.
func (id PrincipalID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id IssuerID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id AssetID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id TokenID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }

func (id *PrincipalID) UnmarshalText(text []byte) error {
	parsed, err := parseUUID(string(text))
	if err != nil {
		return err
	}
	*id = PrincipalID(parsed)
	return nil
}

func (id *IssuerID) UnmarshalText(text []byte) error {
	parsed, err := parseUUID(string(text))
	if err != nil {
		return err
	}
	*id = IssuerID(parsed)
	return nil
}

func (id *AssetID) UnmarshalText(text []byte) error {
	parsed, err := parseUUID(string(text))
	if err != nil {
		return err
	}
	*id = AssetID(parsed)
	return nil
}

func (id *TokenID) UnmarshalText(text []byte) error {
	parsed, err := parseUUID(string(text))
	if err != nil {
		return err
	}
	*id = TokenID(parsed)
	return nil
}

func (id PrincipalID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id IssuerID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id AssetID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TokenID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// NewPrincipalID mints a fresh principal identifier.
func NewPrincipalID() PrincipalID { return PrincipalID(uuid.New()) }

// NewIssuerID mints a fresh issuer identifier.
func NewIssuerID() IssuerID { return IssuerID(uuid.New()) }

// NewAssetID mints a fresh asset identifier.
func NewAssetID() AssetID { return AssetID(uuid.New()) }

// NewTokenID mints a fresh token contract identifier.
func NewTokenID() TokenID { return TokenID(uuid.New()) }
