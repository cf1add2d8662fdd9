// Package maxbalance implements the per-holder balance-cap rule module. It
// holds no counter of its own: the check reads the live ledger balance, so
// issuance and redemption paths that bypass Transferred cannot fool it.
package maxbalance

import (
	"context"
	"fmt"
	"sync"

	"tokengate/internal/compliance"
	"tokengate/internal/ledger"
	"tokengate/internal/platform/authz"
	"tokengate/pkg/domain"
)

// ModuleName is the stable diagnostic identifier for this module.
const ModuleName = "max_balance"

// Module rejects a transfer when the recipient's post-transfer balance
// would exceed its cap. Per-principal caps override the default.
type Module struct {
	compliance.Exclusivity

	mu         sync.RWMutex
	defaultCap uint64
	overrides  map[domain.PrincipalID]uint64
	balances   ledger.BalanceReader
}

func New(balances ledger.BalanceReader, defaultCap uint64) *Module {
	return &Module{
		balances:   balances,
		defaultCap: defaultCap,
		overrides:  make(map[domain.PrincipalID]uint64),
	}
}

func (m *Module) Name() string { return ModuleName }

// SetDefaultMaxBalance replaces the default cap.
func (m *Module) SetDefaultMaxBalance(ctx context.Context, limit uint64) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultCap = limit
	return nil
}

// SetMaxBalanceFor sets a per-principal cap override. A zero cap removes
// the override rather than capping the principal at zero.
func (m *Module) SetMaxBalanceFor(ctx context.Context, principal domain.PrincipalID, limit uint64) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit == 0 {
		delete(m.overrides, principal)
	} else {
		m.overrides[principal] = limit
	}
	return nil
}

func (m *Module) capFor(principal domain.PrincipalID) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit, ok := m.overrides[principal]; ok {
		return limit
	}
	return m.defaultCap
}

// CanTransfer allows a transfer that lands exactly on the cap and rejects
// one unit past it.
func (m *Module) CanTransfer(ctx context.Context, _, to domain.PrincipalID, amount uint64) (compliance.Verdict, error) {
	balance, err := m.balances.BalanceOf(ctx, to)
	if err != nil {
		return compliance.Verdict{}, err
	}
	limit := m.capFor(to)
	// Headroom subtraction: the naive balance+amount wraps around uint64 for
	// enormous amounts and would fail open.
	if amount > limit || balance > limit-amount {
		return compliance.Deny(fmt.Sprintf("recipient balance %d + %d exceeds cap %d", balance, amount, limit)), nil
	}
	return compliance.Allow(), nil
}

// The notification hooks are no-ops: the module reads the ledger directly,
// so committed mutations are visible without local bookkeeping.
func (m *Module) Transferred(context.Context, domain.PrincipalID, domain.PrincipalID, uint64) error {
	return nil
}

func (m *Module) Created(context.Context, domain.PrincipalID, uint64) error { return nil }

func (m *Module) Destroyed(context.Context, domain.PrincipalID, uint64) error { return nil }
