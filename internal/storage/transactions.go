package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"soldi/internal/core"
)

const annotatedColumns = `t.id, t.type_id, t.category_id, t.currency_id,
    t.amount_cents, t.date, t.note, t.created_at, t.updated_at,
    IFNULL(s.settled_cents, 0)`

// CreateTransaction validates and inserts a transaction, assigning an id
// and timestamps. The stored amount is never adjusted: invalid amounts
// are rejected here, not clamped.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, type_id, category_id, currency_id, amount_cents, date, note, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.TypeID, tx.CategoryID, tx.CurrencyID, tx.Amount.Cents,
		tx.Date.ISO(), tx.Note, formatTime(tx.CreatedAt), formatTime(tx.UpdatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"type", tx.TypeID,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.ISO())

	return tx, nil
}

// GetTransaction returns one transaction annotated with its settled sum.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.AnnotatedTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+annotatedColumns+` FROM transactions t `+settledJoin+` WHERE t.id = ?`, id)
	tx, err := scanAnnotated(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AnnotatedTransaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.AnnotatedTransaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransaction merges the patch onto the stored row, revalidates the
// merged result and persists only the patched columns through the
// allow-listed SET builder.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (core.Transaction, error) {
	if patch.IsEmpty() {
		return core.Transaction{}, fmt.Errorf("update transaction: no fields to update")
	}

	current, err := r.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	merged := patch.Apply(current.Transaction)
	if err := merged.Validate(); err != nil {
		return core.Transaction{}, err
	}
	merged.UpdatedAt = time.Now().UTC()

	assigns := append(patch.assignments(), assignment{"updated_at", formatTime(merged.UpdatedAt)})
	setClause, args, err := buildSetClause(assigns, transactionColumns)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, "UPDATE transactions SET "+setClause+" WHERE id = ?", args...); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return merged, nil
}

// DeleteTransaction removes a transaction unconditionally; settlement
// rows referencing it are left to report whatever state results.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// DeleteAllTransactions wipes settlements and transactions in one atomic
// scope; a failure on either statement rolls back both.
func (r *SQLiteRepository) DeleteAllTransactions(ctx context.Context) error {
	return r.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM settlements"); err != nil {
			return fmt.Errorf("delete settlements: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		return nil
	})
}

// ListTransactionsPage returns one page in canonical order, each row
// annotated with its settled sum, plus the full row count.
func (r *SQLiteRepository) ListTransactionsPage(ctx context.Context, offset, limit int) ([]core.AnnotatedTransaction, int, error) {
	total, err := r.CountTransactions(ctx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+annotatedColumns+` FROM transactions t `+settledJoin+` `+canonicalOrder+` LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out, err := collectAnnotated(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListAllTransactions returns every transaction in canonical order.
func (r *SQLiteRepository) ListAllTransactions(ctx context.Context) ([]core.AnnotatedTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+annotatedColumns+` FROM transactions t `+settledJoin+` `+canonicalOrder)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return collectAnnotated(rows)
}

// ListCompensatable returns transactions a settlement can still be
// recorded against: settleable types with a strictly outstanding amount,
// in canonical order so paging over the result is deterministic.
func (r *SQLiteRepository) ListCompensatable(ctx context.Context) ([]core.AnnotatedTransaction, error) {
	types := core.CompensatableTypes()
	placeholders := strings.TrimRight(strings.Repeat("?,", len(types)), ",")
	args := make([]any, len(types))
	for i, t := range types {
		args[i] = t
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+annotatedColumns+` FROM transactions t `+settledJoin+`
         WHERE t.type_id IN (`+placeholders+`) AND t.amount_cents > IFNULL(s.settled_cents, 0)
         `+canonicalOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("list compensatable: %w", err)
	}
	defer rows.Close()
	return collectAnnotated(rows)
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnnotated(row rowScanner) (core.AnnotatedTransaction, error) {
	var (
		tx                   core.AnnotatedTransaction
		date, created, updat string
	)
	err := row.Scan(&tx.ID, &tx.TypeID, &tx.CategoryID, &tx.CurrencyID,
		&tx.Amount.Cents, &date, &tx.Note, &created, &updat, &tx.Compensated.Cents)
	if err != nil {
		return core.AnnotatedTransaction{}, err
	}
	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.AnnotatedTransaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	tx.CreatedAt = parseTime(created)
	tx.UpdatedAt = parseTime(updat)
	return tx, nil
}

func collectAnnotated(rows *sql.Rows) ([]core.AnnotatedTransaction, error) {
	var out []core.AnnotatedTransaction
	for rows.Next() {
		tx, err := scanAnnotated(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
