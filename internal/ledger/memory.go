package ledger

import (
	"context"
	"sync"

	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
)

// MemoryLedger is an in-process fungible balance ledger wired to the gating
// sequence: verify both parties, consult compliance, mutate, then notify.
// All checks run before any mutation, so a rejected transfer leaves no
// partial state anywhere.
//
// gate serializes the whole check-mutate-notify sequence so two concurrent
// transfers cannot both observe the same headroom and both commit. mu only
// guards the balance maps; modules read BalanceOf re-entrantly while the
// gate is held, so the two locks must stay separate.
type MemoryLedger struct {
	gate     sync.Mutex
	mu       sync.Mutex
	token    domain.TokenID
	balances map[domain.PrincipalID]uint64
	supply   uint64
	verifier IdentityVerifier
	guard    ComplianceGuard
}

func NewMemoryLedger(token domain.TokenID, verifier IdentityVerifier, guard ComplianceGuard) *MemoryLedger {
	return &MemoryLedger{
		token:    token,
		balances: make(map[domain.PrincipalID]uint64),
		verifier: verifier,
		guard:    guard,
	}
}

// Token returns the token contract this ledger instance represents.
func (l *MemoryLedger) Token() domain.TokenID { return l.token }

// Transfer runs the full gating sequence and commits the balance move only
// when every check passes.
func (l *MemoryLedger) Transfer(ctx context.Context, from, to domain.PrincipalID, amount uint64) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "transfer amount must be positive")
	}

	l.gate.Lock()
	defer l.gate.Unlock()

	for _, principal := range []domain.PrincipalID{from, to} {
		verified, err := l.verifier.IsVerified(ctx, principal)
		if err != nil {
			return err
		}
		if !verified {
			return dErrors.Newf(dErrors.CodeVerificationFailed, "principal %s is not verified", principal)
		}
	}

	if err := l.guard.CanTransfer(ctx, from, to, amount); err != nil {
		return err
	}

	l.mu.Lock()
	if l.balances[from] < amount {
		l.mu.Unlock()
		return dErrors.New(dErrors.CodeInvalidInput, "insufficient balance")
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	l.mu.Unlock()

	return l.guard.Transferred(ctx, from, to, amount)
}

// Mint issues new units to the owner. Modules see it through the Created
// hook, not Transferred.
func (l *MemoryLedger) Mint(ctx context.Context, owner domain.PrincipalID, amount uint64) error {
	if amount == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "mint amount must be positive")
	}
	l.gate.Lock()
	defer l.gate.Unlock()
	l.mu.Lock()
	l.balances[owner] += amount
	l.supply += amount
	l.mu.Unlock()
	return l.guard.Created(ctx, owner, amount)
}

// Burn redeems units from the owner and notifies modules via Destroyed.
func (l *MemoryLedger) Burn(ctx context.Context, owner domain.PrincipalID, amount uint64) error {
	l.gate.Lock()
	defer l.gate.Unlock()
	l.mu.Lock()
	if l.balances[owner] < amount {
		l.mu.Unlock()
		return dErrors.New(dErrors.CodeInvalidInput, "insufficient balance")
	}
	l.balances[owner] -= amount
	l.supply -= amount
	l.mu.Unlock()
	return l.guard.Destroyed(ctx, owner, amount)
}

func (l *MemoryLedger) BalanceOf(_ context.Context, principal domain.PrincipalID) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[principal], nil
}

func (l *MemoryLedger) TotalSupply(_ context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supply, nil
}

func (l *MemoryLedger) Holdings(_ context.Context) ([]Holding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	holdings := make([]Holding, 0, len(l.balances))
	for principal, balance := range l.balances {
		if balance == 0 {
			continue
		}
		holdings = append(holdings, Holding{Principal: principal, Balance: balance})
	}
	return holdings, nil
}
