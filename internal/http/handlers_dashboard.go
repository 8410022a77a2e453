package http

import (
	"encoding/json"
	"net/http"

	"soldi/internal/core"
)

type summaryResponse struct {
	Balance  string `json:"balance"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Savings  string `json:"savings"`
}

// handleDashboardSummary serves the headline figures. The response is
// memoized because every figure walks the full settlements join.
func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	if body, ok := s.dashboards.Get("summary"); ok {
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	balance, err := s.ledger.Balance(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	income, err := s.ledger.TotalByType(r.Context(), core.TypeIncome)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := s.ledger.TotalByType(r.Context(), core.TypeExpense)
	if err != nil {
		writeError(w, r, err)
		return
	}
	savings, err := s.ledger.SavingsTotal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	body, err := json.Marshal(summaryResponse{
		Balance:  balance.String(),
		Income:   income.String(),
		Expenses: expenses.String(),
		Savings:  savings.String(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.dashboards.Set("summary", body)
	writeRawJSON(w, http.StatusOK, body)
}

type categoryShareResponse struct {
	Name       string `json:"name"`
	Color      string `json:"color"`
	Amount     string `json:"amount"`
	Percentage int    `json:"percentage"`
}

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	if body, ok := s.dashboards.Get("expenses-by-category"); ok {
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	shares, err := s.ledger.ExpensesByCategory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryShareResponse, len(shares))
	for i, share := range shares {
		out[i] = categoryShareResponse{
			Name:       share.Name,
			Color:      share.Color,
			Amount:     share.Amount.String(),
			Percentage: share.Percentage,
		}
	}

	body, err := json.Marshal(out)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.dashboards.Set("expenses-by-category", body)
	writeRawJSON(w, http.StatusOK, body)
}
