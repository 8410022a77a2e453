package storage

import (
	"context"
	"fmt"

	"soldi/internal/core"
)

// CategoryTotal is one category's net-of-settlement expense sum.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Color      string
	Net        core.Money
}

// TotalByType sums the outstanding amount of one transaction type: each
// row contributes its amount minus its settled sum, floored at zero.
// Summing the raw amount column here would double-count settled money as
// still active, so callers must come through this query.
func (r *SQLiteRepository) TotalByType(ctx context.Context, typeID string) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT IFNULL(SUM(max(t.amount_cents - IFNULL(s.settled_cents, 0), 0)), 0)
         FROM transactions t `+settledJoin+`
         WHERE t.type_id = ?`, typeID).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("total by type: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// ExpenseTotalsByCategory returns the net-of-settlement expense sum per
// category, largest first. Categories whose net is zero or below (fully
// reimbursed) are dropped.
func (r *SQLiteRepository) ExpenseTotalsByCategory(ctx context.Context) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.color,
                SUM(max(t.amount_cents - IFNULL(s.settled_cents, 0), 0)) AS net_cents
         FROM transactions t
         JOIN categories c ON c.id = t.category_id
         `+settledJoin+`
         WHERE t.type_id = ?
         GROUP BY c.id, c.name, c.color
         HAVING net_cents > 0
         ORDER BY net_cents DESC, c.name ASC`, core.TypeExpense)
	if err != nil {
		return nil, fmt.Errorf("expense totals by category: %w", err)
	}
	defer rows.Close()

	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Color, &ct.Net.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}
