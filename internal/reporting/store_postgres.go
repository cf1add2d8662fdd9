package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tokengate/pkg/domain"
)

// PostgresViolationStore persists the violation log in an append-only
// table. The engine only ever inserts and range-scans; there is no update
// or delete path.
type PostgresViolationStore struct {
	db *sql.DB
}

func NewPostgresViolationStore(db *sql.DB) *PostgresViolationStore {
	return &PostgresViolationStore{db: db}
}

func (s *PostgresViolationStore) Append(ctx context.Context, record ViolationRecord) error {
	// Off-path violations may carry no counterparty; store NULL rather than
	// the nil UUID so range scans round-trip.
	var counterparty sql.NullString
	if !record.Counterparty.IsNil() {
		counterparty = sql.NullString{String: record.Counterparty.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compliance_violations
			(id, attempted_by, counterparty, amount, reason, module_name, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.AttemptedBy.String(), counterparty,
		record.Amount, record.Reason, record.ModuleName, record.Timestamp)
	if err != nil {
		return fmt.Errorf("insert violation: %w", err)
	}
	return nil
}

func (s *PostgresViolationStore) ListRange(ctx context.Context, from, to time.Time) ([]ViolationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, attempted_by, counterparty, amount, reason, module_name, occurred_at
		FROM compliance_violations
		WHERE occurred_at >= $1 AND occurred_at <= $2
		ORDER BY occurred_at, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	var records []ViolationRecord
	for rows.Next() {
		var (
			record       ViolationRecord
			attemptedBy  string
			counterparty sql.NullString
		)
		if err := rows.Scan(&record.ID, &attemptedBy, &counterparty,
			&record.Amount, &record.Reason, &record.ModuleName, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		if record.AttemptedBy, err = domain.ParsePrincipalID(attemptedBy); err != nil {
			return nil, err
		}
		if counterparty.Valid {
			if record.Counterparty, err = domain.ParsePrincipalID(counterparty.String); err != nil {
				return nil, err
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
