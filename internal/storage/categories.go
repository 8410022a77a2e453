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

// CreateCategory inserts a category. A name collision reports
// core.ErrConflict; the check-then-insert race is backed by the unique
// index, so a concurrent creation still fails rather than duplicating.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return core.Category{}, core.ErrEmptyReference
	}
	if c.Color == "" {
		c.Color = "#9e9e9e"
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	var existing string
	err := r.db.QueryRowContext(ctx, "SELECT id FROM categories WHERE name = ?", c.Name).Scan(&existing)
	if err == nil {
		return core.Category{}, fmt.Errorf("category %q: %w", c.Name, core.ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("check category name: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Color, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	slog.InfoContext(ctx, "Category saved", "id", c.ID, "name", c.Name)
	return c, nil
}

// DeleteCategory removes a category unless any transaction references it,
// in which case core.ErrInUse is reported. Check and delete share one
// atomic scope so a reference created mid-way cannot be orphaned.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.WithTx(ctx, func(tx *sql.Tx) error {
		var refs int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM transactions WHERE category_id = ?", id).Scan(&refs); err != nil {
			return fmt.Errorf("count category references: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("category %s has %d transactions: %w", id, refs, core.ErrInUse)
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

// ListCategories returns all categories by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, color, created_at, updated_at FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c                core.Category
			created, updated string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.CreatedAt = parseTime(created)
		c.UpdatedAt = parseTime(updated)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// ListCurrencies returns the reference currency set.
func (r *SQLiteRepository) ListCurrencies(ctx context.Context) ([]core.Currency, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, code, symbol FROM currencies ORDER BY code ASC")
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var out []core.Currency
	for rows.Next() {
		var c core.Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Symbol); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate currencies: %w", err)
	}
	return out, nil
}
