// Package storage is the SQLite record store. Every query is
// parameterized; dynamic SET clauses only ever come from the allow-listed
// patch types in patch.go.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// canonicalOrder is the stable sort backing index-addressed access:
// newest first, creation order then identity as tiebreaks so pagination
// is deterministic.
const canonicalOrder = "ORDER BY t.date DESC, t.created_at DESC, t.id DESC"

// settledJoin aggregates settlement cents per compensated transaction in
// one pass, so list queries annotate every row without an N+1.
const settledJoin = `LEFT JOIN (
    SELECT compensated_transaction_id AS tx_id, SUM(amount_cents) AS settled_cents
    FROM settlements
    GROUP BY compensated_transaction_id
) s ON s.tx_id = t.id`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithTx runs fn inside a transaction. On any error the scope rolls back
// and the triggering error is returned unchanged; otherwise the commit
// error (if any) surfaces.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
