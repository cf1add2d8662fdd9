// Package transferlimit implements the volume-cap rule module: per-sender
// rolling daily and monthly cumulative counters, each window checked against
// its own cap. Counter state lives behind WindowStore so deployments can
// keep it in memory or share it through Redis.
package transferlimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tokengate/internal/compliance"
	"tokengate/internal/platform/authz"
	"tokengate/pkg/domain"
	"tokengate/pkg/requestcontext"
)

// ModuleName is the stable diagnostic identifier for this module.
const ModuleName = "transfer_limit"

// Sums are the sender's cumulative transferred amounts in the current
// daily and monthly windows.
type Sums struct {
	Daily   uint64
	Monthly uint64
}

// WindowStore tracks per-principal window sums. Implementations roll a
// window automatically when now crosses its boundary.
type WindowStore interface {
	Sums(ctx context.Context, principal domain.PrincipalID, now time.Time) (Sums, error)
	Add(ctx context.Context, principal domain.PrincipalID, amount uint64, now time.Time) error
}

// Module rejects a transfer when the sender's running sum plus the proposed
// amount would exceed the daily or monthly cap. A transfer that lands
// exactly on the remaining headroom is allowed.
type Module struct {
	compliance.Exclusivity

	mu      sync.RWMutex
	daily   uint64
	monthly uint64
	store   WindowStore
}

func New(store WindowStore, daily, monthly uint64) *Module {
	return &Module{store: store, daily: daily, monthly: monthly}
}

func (m *Module) Name() string { return ModuleName }

// SetDefaultLimits replaces the daily and monthly caps.
func (m *Module) SetDefaultLimits(ctx context.Context, daily, monthly uint64) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.daily = daily
	m.monthly = monthly
	return nil
}

// Limits returns the current caps.
func (m *Module) Limits() (daily, monthly uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.daily, m.monthly
}

func (m *Module) CanTransfer(ctx context.Context, from, _ domain.PrincipalID, amount uint64) (compliance.Verdict, error) {
	m.mu.RLock()
	daily, monthly := m.daily, m.monthly
	m.mu.RUnlock()

	sums, err := m.store.Sums(ctx, from, requestcontext.Now(ctx))
	if err != nil {
		return compliance.Verdict{}, err
	}
	// Phrased as headroom subtraction so a huge amount cannot wrap the sum
	// around uint64 and slip under the cap.
	if amount > daily || sums.Daily > daily-amount {
		return compliance.Deny(fmt.Sprintf("daily limit exceeded: %d + %d > %d", sums.Daily, amount, daily)), nil
	}
	if amount > monthly || sums.Monthly > monthly-amount {
		return compliance.Deny(fmt.Sprintf("monthly limit exceeded: %d + %d > %d", sums.Monthly, amount, monthly)), nil
	}
	return compliance.Allow(), nil
}

// Transferred advances both window counters for the sender.
func (m *Module) Transferred(ctx context.Context, from, _ domain.PrincipalID, amount uint64) error {
	return m.store.Add(ctx, from, amount, requestcontext.Now(ctx))
}

// Created is a no-op: issuance is not a transfer and does not consume the
// owner's volume headroom.
func (m *Module) Created(context.Context, domain.PrincipalID, uint64) error { return nil }

// Destroyed is a no-op for the same reason.
func (m *Module) Destroyed(context.Context, domain.PrincipalID, uint64) error { return nil }

// dayStart and monthStart define the fixed window boundaries in UTC.
func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
