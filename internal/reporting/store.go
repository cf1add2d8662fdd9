package reporting

import (
	"context"
	"time"
)

// ViolationStore is the append-only violation log. Append never overwrites;
// ListRange returns records with timestamps in [from, to], both inclusive,
// ordered by timestamp then id.
type ViolationStore interface {
	Append(ctx context.Context, record ViolationRecord) error
	ListRange(ctx context.Context, from, to time.Time) ([]ViolationRecord, error)
}
