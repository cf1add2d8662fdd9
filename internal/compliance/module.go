package compliance

import (
	"context"
	"sync"

	"tokengate/pkg/domain"
)

// Verdict is a single module's vote on a proposed transfer.
type Verdict struct {
	Allowed bool
	Reason  string
}

// Allow votes yes.
func Allow() Verdict { return Verdict{Allowed: true} }

// Deny votes no with a diagnostic reason.
func Deny(reason string) Verdict { return Verdict{Allowed: false, Reason: reason} }

// Module is an independently pluggable policy unit. CanTransfer is the
// pre-check; Transferred, Created, and Destroyed are post-commit
// notifications so stateful modules track actual ledger state. The two
// halves are deliberately separate: collapsing them would let counters
// drift whenever a later module rejects the same transfer.
type Module interface {
	Name() string
	CanTransfer(ctx context.Context, from, to domain.PrincipalID, amount uint64) (Verdict, error)
	Transferred(ctx context.Context, from, to domain.PrincipalID, amount uint64) error
	Created(ctx context.Context, owner domain.PrincipalID, amount uint64) error
	Destroyed(ctx context.Context, owner domain.PrincipalID, amount uint64) error
}

// ExclusiveModule marks a module instance that must not be shared between
// compliance instances. A second Attach fails closed rather than allowing
// ambiguous shared state.
type ExclusiveModule interface {
	Attach() error
	Detach()
}

// Exclusivity is an embeddable single-binding guard. Modules embed it by
// pointer-receiver and get ExclusiveModule for free.
type Exclusivity struct {
	mu       sync.Mutex
	attached bool
}

// Attach claims the module for one compliance instance.
func (e *Exclusivity) Attach() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attached {
		return errAlreadyAttached
	}
	e.attached = true
	return nil
}

// Detach releases the module so it can be bound elsewhere.
func (e *Exclusivity) Detach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attached = false
}
