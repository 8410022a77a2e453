// Package services orchestrates the ledger computations and the windowed
// transaction feed on top of the record store.
package services

import (
	"context"
	"math"

	"soldi/internal/core"
	"soldi/internal/storage"
)

// LedgerStore is the slice of the record store the ledger reads from.
type LedgerStore interface {
	GetTransaction(ctx context.Context, id string) (core.AnnotatedTransaction, error)
	ListCompensatable(ctx context.Context) ([]core.AnnotatedTransaction, error)
	TotalByType(ctx context.Context, typeID string) (core.Money, error)
	ExpenseTotalsByCategory(ctx context.Context) ([]storage.CategoryTotal, error)
}

// CategoryShare is one slice of the expense breakdown: the category's
// net-of-settlement total and its rounded share of the overall total.
type CategoryShare struct {
	Name       string
	Color      string
	Amount     core.Money
	Percentage int
}

// LedgerService computes settlement-aware figures. Stored amounts are
// never mutated; everything here is derived on demand.
type LedgerService struct {
	store LedgerStore
}

func NewLedgerService(store LedgerStore) *LedgerService {
	return &LedgerService{store: store}
}

// CompensationStatus reports how much of a transaction remains
// outstanding after its settlements. Settlement amounts are summed
// without currency conversion.
func (s *LedgerService) CompensationStatus(ctx context.Context, id string) (core.CompensationStatus, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.CompensationStatus{}, err
	}
	return tx.Status(), nil
}

// ListCompensatable returns the transactions a settlement can still be
// recorded against, newest first with a stable tiebreak.
func (s *LedgerService) ListCompensatable(ctx context.Context) ([]core.AnnotatedTransaction, error) {
	return s.store.ListCompensatable(ctx)
}

// TotalByType is the net-of-settlement total for one transaction type.
func (s *LedgerService) TotalByType(ctx context.Context, typeID string) (core.Money, error) {
	if !core.IsValidType(typeID) {
		return core.Money{}, core.ErrUnknownType
	}
	return s.store.TotalByType(ctx, typeID)
}

// Balance is net income minus net expenses. Savings and investment are
// tracked separately and never feed into this figure.
func (s *LedgerService) Balance(ctx context.Context) (core.Money, error) {
	income, err := s.store.TotalByType(ctx, core.TypeIncome)
	if err != nil {
		return core.Money{}, err
	}
	expense, err := s.store.TotalByType(ctx, core.TypeExpense)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: income.Cents - expense.Cents}, nil
}

// SavingsTotal is the net savings figure, kept apart from the balance.
func (s *LedgerService) SavingsTotal(ctx context.Context) (core.Money, error) {
	return s.store.TotalByType(ctx, core.TypeSavings)
}

// ExpensesByCategory breaks net expenses down per category with each
// category's rounded percentage of the total. Fully reimbursed
// categories are already dropped by the store; a zero overall total
// yields an empty breakdown rather than a division by zero.
func (s *LedgerService) ExpensesByCategory(ctx context.Context) ([]CategoryShare, error) {
	totals, err := s.store.ExpenseTotalsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	var overall int64
	for _, t := range totals {
		overall += t.Net.Cents
	}
	if overall <= 0 {
		return []CategoryShare{}, nil
	}

	out := make([]CategoryShare, len(totals))
	for i, t := range totals {
		out[i] = CategoryShare{
			Name:       t.Name,
			Color:      t.Color,
			Amount:     t.Net,
			Percentage: int(math.Round(float64(t.Net.Cents) / float64(overall) * 100)),
		}
	}
	return out, nil
}
