package storage

import (
	"fmt"
	"strings"

	"soldi/internal/core"
)

// TransactionPatch is the closed set of updatable transaction fields.
// Nil fields are left untouched. Dynamic SET clauses are only ever built
// from this struct, so an unknown column is unrepresentable; the
// allow-list check below still runs before any SQL is constructed.
type TransactionPatch struct {
	TypeID     *string
	CategoryID *string
	CurrencyID *string
	Amount     *core.Money
	Date       *core.Date
	Note       *string
}

// transactionColumns is the fixed allow-list of writable columns on the
// transactions table.
var transactionColumns = map[string]struct{}{
	"type_id":      {},
	"category_id":  {},
	"currency_id":  {},
	"amount_cents": {},
	"date":         {},
	"note":         {},
	"updated_at":   {},
}

type assignment struct {
	column string
	value  any
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.TypeID == nil && p.CategoryID == nil && p.CurrencyID == nil &&
		p.Amount == nil && p.Date == nil && p.Note == nil
}

// Apply merges the patch onto tx. The caller revalidates the merged
// result before anything is persisted.
func (p TransactionPatch) Apply(tx core.Transaction) core.Transaction {
	if p.TypeID != nil {
		tx.TypeID = *p.TypeID
	}
	if p.CategoryID != nil {
		tx.CategoryID = *p.CategoryID
	}
	if p.CurrencyID != nil {
		tx.CurrencyID = *p.CurrencyID
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Note != nil {
		tx.Note = *p.Note
	}
	return tx
}

func (p TransactionPatch) assignments() []assignment {
	var out []assignment
	if p.TypeID != nil {
		out = append(out, assignment{"type_id", *p.TypeID})
	}
	if p.CategoryID != nil {
		out = append(out, assignment{"category_id", *p.CategoryID})
	}
	if p.CurrencyID != nil {
		out = append(out, assignment{"currency_id", *p.CurrencyID})
	}
	if p.Amount != nil {
		out = append(out, assignment{"amount_cents", p.Amount.Cents})
	}
	if p.Date != nil {
		out = append(out, assignment{"date", p.Date.ISO()})
	}
	if p.Note != nil {
		out = append(out, assignment{"note", *p.Note})
	}
	return out
}

// buildSetClause turns assignments into a parameterized SET clause. Every
// column must be in the table allow-list; unknown columns fail closed.
func buildSetClause(assigns []assignment, allowed map[string]struct{}) (string, []any, error) {
	if len(assigns) == 0 {
		return "", nil, fmt.Errorf("no fields to update")
	}
	parts := make([]string, 0, len(assigns))
	args := make([]any, 0, len(assigns))
	for _, a := range assigns {
		if _, ok := allowed[a.column]; !ok {
			return "", nil, fmt.Errorf("column %q is not updatable", a.column)
		}
		parts = append(parts, a.column+" = ?")
		args = append(args, a.value)
	}
	return strings.Join(parts, ", "), args, nil
}
