// Package ledger defines the boundary between the compliance engine and the
// token ledger. The production ledger lives outside this process; the engine
// consumes balances through the reader interfaces and the ledger consults
// the gate before committing any balance mutation. MemoryLedger is a
// reference implementation of that contract used by tests and the dev
// server.
package ledger

import (
	"context"

	"tokengate/pkg/domain"
)

//go:generate mockgen -source=ledger.go -destination=mocks/ledger_mock.go -package=mocks

// Holding pairs a principal with its current balance.
type Holding struct {
	Principal domain.PrincipalID
	Balance   uint64
}

// BalanceReader exposes live per-principal balances. Balance-cap modules
// read through this so they track actual ledger state, not a shadow copy.
type BalanceReader interface {
	BalanceOf(ctx context.Context, principal domain.PrincipalID) (uint64, error)
}

// SupplyReader exposes aggregate ledger state for reporting.
type SupplyReader interface {
	TotalSupply(ctx context.Context) (uint64, error)
	Holdings(ctx context.Context) ([]Holding, error)
}

// IdentityVerifier is the slice of the identity registry the ledger consults
// before any transfer: are both counterparties verified for the mandatory
// claim topics.
type IdentityVerifier interface {
	IsVerified(ctx context.Context, principal domain.PrincipalID) (bool, error)
}

// ComplianceGuard is the slice of modular compliance the ledger consults.
// CanTransfer runs before the mutation; the notification hooks run strictly
// after the mutation commits so stateful modules never drift from ledger
// state.
type ComplianceGuard interface {
	CanTransfer(ctx context.Context, from, to domain.PrincipalID, amount uint64) error
	Transferred(ctx context.Context, from, to domain.PrincipalID, amount uint64) error
	Created(ctx context.Context, owner domain.PrincipalID, amount uint64) error
	Destroyed(ctx context.Context, owner domain.PrincipalID, amount uint64) error
}
