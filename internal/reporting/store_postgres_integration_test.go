//go:build integration

package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/internal/reporting"
	"tokengate/pkg/domain"
	"tokengate/pkg/testutil/containers"
)

const violationsSchema = `
CREATE TABLE IF NOT EXISTS compliance_violations (
	id           UUID PRIMARY KEY,
	attempted_by TEXT NOT NULL,
	counterparty TEXT,
	amount       BIGINT NOT NULL,
	reason       TEXT NOT NULL,
	module_name  TEXT NOT NULL,
	occurred_at  TIMESTAMPTZ NOT NULL
)`

func TestPostgresViolationStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := containers.StartPostgres(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, violationsSchema)
	require.NoError(t, err)

	store := reporting.NewPostgresViolationStore(db)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	violator := domain.NewPrincipalID()
	counterparty := domain.NewPrincipalID()

	record := func(at time.Time) reporting.ViolationRecord {
		r := reporting.ViolationRecord{
			ID:           uuid.New(),
			AttemptedBy:  violator,
			Counterparty: counterparty,
			Amount:       100,
			Reason:       "country not allowed",
			ModuleName:   "country_restrict",
			Timestamp:    at,
		}
		require.NoError(t, store.Append(ctx, r))
		return r
	}

	first := record(base)
	second := record(base.Add(time.Hour))
	third := record(base.Add(2 * time.Hour))

	t.Run("range bounds are inclusive", func(t *testing.T) {
		records, err := store.ListRange(ctx, base, base.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, first.ID, records[0].ID)
		assert.Equal(t, second.ID, records[1].ID)
	})

	t.Run("wider range is a superset", func(t *testing.T) {
		records, err := store.ListRange(ctx, base, base.Add(3*time.Hour))
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, third.ID, records[2].ID)
	})

	t.Run("empty range returns nothing", func(t *testing.T) {
		records, err := store.ListRange(ctx, base.Add(-2*time.Hour), base.Add(-time.Hour))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("round-trips a record without a counterparty", func(t *testing.T) {
		// Off-path violations recorded with no counterparty must not break
		// later range reads.
		at := base.Add(4 * time.Hour)
		orphan := reporting.ViolationRecord{
			ID:          uuid.New(),
			AttemptedBy: violator,
			Amount:      50,
			Reason:      "attempted transfer outside ledger",
			ModuleName:  "country_restrict",
			Timestamp:   at,
		}
		require.NoError(t, store.Append(ctx, orphan))

		records, err := store.ListRange(ctx, at, at)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].Counterparty.IsNil())

		records, err = store.ListRange(ctx, base, at)
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})

	t.Run("round-trips all fields", func(t *testing.T) {
		records, err := store.ListRange(ctx, base, base)
		require.NoError(t, err)
		require.Len(t, records, 1)
		got := records[0]
		assert.Equal(t, first.AttemptedBy, got.AttemptedBy)
		assert.Equal(t, first.Counterparty, got.Counterparty)
		assert.Equal(t, first.Amount, got.Amount)
		assert.Equal(t, first.Reason, got.Reason)
		assert.Equal(t, first.ModuleName, got.ModuleName)
		assert.True(t, first.Timestamp.Equal(got.Timestamp))
	})
}
