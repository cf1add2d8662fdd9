// Package country implements the jurisdiction allow-list rule module. The
// list is explicit: a country never set is not allowed, so the module fails
// closed for recipients in unconfigured jurisdictions.
package country

import (
	"context"
	"fmt"
	"sync"

	"tokengate/internal/compliance"
	"tokengate/internal/platform/authz"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
)

// ModuleName is the stable diagnostic identifier for this module.
const ModuleName = "country_restrict"

// CountryResolver is the slice of the identity registry this module needs.
type CountryResolver interface {
	InvestorCountry(ctx context.Context, principal domain.PrincipalID) (domain.CountryCode, error)
}

// Module allows transfers only to recipients whose registered country is on
// the allow-list. Stateless across transfers; no notification bookkeeping.
type Module struct {
	compliance.Exclusivity

	mu        sync.RWMutex
	allowed   map[domain.CountryCode]bool
	countries CountryResolver
}

func New(countries CountryResolver) *Module {
	return &Module{
		allowed:   make(map[domain.CountryCode]bool),
		countries: countries,
	}
}

func (m *Module) Name() string { return ModuleName }

// SetCountryAllowed adds or removes a single country from the allow-list.
func (m *Module) SetCountryAllowed(ctx context.Context, code domain.CountryCode, allowed bool) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if allowed {
		m.allowed[code] = true
	} else {
		delete(m.allowed, code)
	}
	return nil
}

// BatchSetCountriesAllowed applies parallel code/allowed arrays, which must
// have equal length.
func (m *Module) BatchSetCountriesAllowed(ctx context.Context, codes []domain.CountryCode, allowed []bool) error {
	if err := authz.RequireAdmin(ctx); err != nil {
		return err
	}
	if len(codes) != len(allowed) {
		return dErrors.New(dErrors.CodeArityMismatch, "codes and allowed flags must have equal length")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, code := range codes {
		if allowed[i] {
			m.allowed[code] = true
		} else {
			delete(m.allowed, code)
		}
	}
	return nil
}

// IsCountryAllowed reports the allow-list entry for a code.
func (m *Module) IsCountryAllowed(code domain.CountryCode) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allowed[code]
}

// CanTransfer resolves the recipient's registered country and votes on the
// allow-list entry. An unregistered recipient denies: without a country on
// file there is nothing to allow.
func (m *Module) CanTransfer(ctx context.Context, _, to domain.PrincipalID, _ uint64) (compliance.Verdict, error) {
	code, err := m.countries.InvestorCountry(ctx, to)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return compliance.Deny("recipient has no registered country"), nil
		}
		return compliance.Verdict{}, err
	}
	m.mu.RLock()
	allowed := m.allowed[code]
	m.mu.RUnlock()
	if !allowed {
		return compliance.Deny(fmt.Sprintf("country %d is not on the allow-list", code)), nil
	}
	return compliance.Allow(), nil
}

func (m *Module) Transferred(context.Context, domain.PrincipalID, domain.PrincipalID, uint64) error {
	return nil
}

func (m *Module) Created(context.Context, domain.PrincipalID, uint64) error { return nil }

func (m *Module) Destroyed(context.Context, domain.PrincipalID, uint64) error { return nil }
