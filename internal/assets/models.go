package assets

import (
	"time"

	"github.com/google/uuid"

	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
)

// Category classifies the underlying real-world asset.
type Category string

const (
	CategoryRealEstate     Category = "real_estate"
	CategoryCommodities    Category = "commodities"
	CategoryArt            Category = "art_collectibles"
	CategoryPreciousMetals Category = "precious_metals"
	CategoryOther          Category = "other"
)

func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryRealEstate, CategoryCommodities, CategoryArt, CategoryPreciousMetals, CategoryOther:
		return Category(raw), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown asset category %q", raw)
}

// Status tracks the asset lifecycle. Deregistered assets stay readable for
// reporting but reject further mutation.
type Status string

const (
	StatusRegistered   Status = "registered"
	StatusDeregistered Status = "deregistered"
)

// RevenueStream is one recurring payout schedule attached to an asset. The
// list is append-only; a stream is never edited after creation.
type RevenueStream struct {
	ID            uuid.UUID
	Amount        uint64
	PeriodSeconds uint64
	Collector     domain.PrincipalID
	CreatedAt     time.Time
}

// Asset is the registry entry for one real-world asset. Attributes are
// schemaless key/value pairs; any key is acceptable at this layer.
// TokenContract, when set, is the single active issuance channel.
type Asset struct {
	ID                domain.AssetID
	Name              string
	Category          Category
	Valuation         uint64
	MetadataURI       string
	Custodian         domain.PrincipalID
	Status            Status
	TokenContract     domain.TokenID
	TextAttributes    map[string]string
	NumericAttributes map[string]uint64
	RevenueStreams    []RevenueStream
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
