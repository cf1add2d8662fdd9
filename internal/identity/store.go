package identity

import (
	"context"

	"tokengate/pkg/domain"
)

// Store persists identity records. Save is an upsert; Create fails on an
// existing principal so the one-record-per-principal invariant is enforced
// at the storage boundary.
type Store interface {
	Create(ctx context.Context, record Record) error
	Save(ctx context.Context, record Record) error
	Find(ctx context.Context, principal domain.PrincipalID) (Record, error)
	Delete(ctx context.Context, principal domain.PrincipalID) error
	List(ctx context.Context) ([]Record, error)
}
