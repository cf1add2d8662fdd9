package reporting

import (
	"time"

	"github.com/google/uuid"

	"tokengate/pkg/domain"
)

// ViolationRecord is one append-only audit log entry for a rejected or
// flagged transfer attempt. Records are never updated or deleted.
type ViolationRecord struct {
	ID           uuid.UUID          `json:"id"`
	AttemptedBy  domain.PrincipalID `json:"attempted_by"`
	Counterparty domain.PrincipalID `json:"counterparty"`
	Amount       uint64             `json:"amount"`
	Reason       string             `json:"reason"`
	ModuleName   string             `json:"module_name"`
	Timestamp    time.Time          `json:"timestamp"`
}

// InvestorEntry is one row of the investor report: an identity joined with
// its current ledger balance.
type InvestorEntry struct {
	Principal domain.PrincipalID `json:"principal"`
	Country   domain.CountryCode `json:"country"`
	Balance   uint64             `json:"balance"`
}

// JurisdictionEntry aggregates holdings for one country.
type JurisdictionEntry struct {
	Country       domain.CountryCode `json:"country"`
	TotalHoldings uint64             `json:"total_holdings"`
}

// Statistics summarizes the violation log over a time range.
// UniqueViolators counts distinct attempting principals, not records.
type Statistics struct {
	ViolationCount  int `json:"violation_count"`
	UniqueViolators int `json:"unique_violators"`
}

// OwnershipReport describes holder concentration for one asset's token.
// Top10Percentage is the share of total supply held by the ten largest
// holders, in percent.
type OwnershipReport struct {
	AssetID         domain.AssetID `json:"asset_id"`
	TotalSupply     uint64         `json:"total_supply"`
	TotalHolders    int            `json:"total_holders"`
	Top10Percentage float64        `json:"top10_percentage"`
}
