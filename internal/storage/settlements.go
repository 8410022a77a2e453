package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"soldi/internal/core"
)

// CreateSettlement records a settlement after checking that both linked
// transactions exist. The amount is not checked against the compensated
// transaction's remainder: over-settlement stays representable and is
// clamped at read time.
func (r *SQLiteRepository) CreateSettlement(ctx context.Context, s core.Settlement) (core.Settlement, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now().UTC()
	if err := s.Validate(); err != nil {
		return core.Settlement{}, err
	}

	for _, id := range []string{s.CompensatedID, s.CompensationID} {
		if err := r.transactionExists(ctx, id); err != nil {
			return core.Settlement{}, err
		}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settlements (id, compensated_transaction_id, compensation_transaction_id, amount_cents, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.CompensatedID, s.CompensationID, s.Amount.Cents, formatTime(s.CreatedAt))
	if err != nil {
		return core.Settlement{}, fmt.Errorf("insert settlement: %w", err)
	}

	slog.InfoContext(ctx, "Settlement saved",
		"id", s.ID,
		"compensated", s.CompensatedID,
		"compensation", s.CompensationID,
		"amount_cents", s.Amount.Cents)

	return s, nil
}

// SettledAmount sums all settlement cents recorded against a transaction.
// Settlements are summed independent of currency; no conversion is done.
func (r *SQLiteRepository) SettledAmount(ctx context.Context, transactionID string) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		"SELECT IFNULL(SUM(amount_cents), 0) FROM settlements WHERE compensated_transaction_id = ?",
		transactionID).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum settlements: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// ListSettlements returns all settlements, oldest first.
func (r *SQLiteRepository) ListSettlements(ctx context.Context) ([]core.Settlement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, compensated_transaction_id, compensation_transaction_id, amount_cents, created_at
         FROM settlements ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()

	var out []core.Settlement
	for rows.Next() {
		var (
			s       core.Settlement
			created string
		)
		if err := rows.Scan(&s.ID, &s.CompensatedID, &s.CompensationID, &s.Amount.Cents, &created); err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		s.CreatedAt = parseTime(created)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlements: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) transactionExists(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM transactions WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check transaction: %w", err)
	}
	return nil
}
