package http

import (
	"net/http"
	"time"

	"soldi/internal/core"
	"soldi/internal/storage"
)

type transactionResponse struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Category           string `json:"category"`
	Currency           string `json:"currency"`
	Amount             string `json:"amount"`
	Date               string `json:"date"`
	Note               string `json:"note"`
	CompensatedAmount  string `json:"compensatedAmount"`
	RemainingAmount    string `json:"remainingAmount"`
	IsFullyCompensated bool   `json:"isFullyCompensated"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

func toTransactionResponse(tx core.AnnotatedTransaction) transactionResponse {
	return transactionResponse{
		ID:                 tx.ID,
		Type:               tx.TypeID,
		Category:           tx.CategoryID,
		Currency:           tx.CurrencyID,
		Amount:             tx.Amount.String(),
		Date:               tx.Date.ISO(),
		Note:               tx.Note,
		CompensatedAmount:  tx.Compensated.String(),
		RemainingAmount:    tx.Remaining().String(),
		IsFullyCompensated: tx.FullyCompensated(),
		CreatedAt:          tx.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          tx.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type windowResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Start        int                   `json:"start"`
	TotalCount   int                   `json:"totalCount"`
}

// handleListTransactions serves one window of the feed: ?start and
// ?count address the canonical most-recent-first ordering.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	start := queryInt(r, "start", 0)
	count := queryInt(r, "count", 20)
	if start < 0 || count < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start and count must be non-negative"})
		return
	}
	if count > 200 {
		count = 200
	}

	items, total, err := s.feed.Window(r.Context(), start, count)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := windowResponse{
		Transactions: make([]transactionResponse, len(items)),
		Start:        start,
		TotalCount:   total,
	}
	for i, tx := range items {
		out.Transactions[i] = toTransactionResponse(tx)
	}
	writeJSON(w, http.StatusOK, out)
}

type transactionRequest struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Note     string `json:"note"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.feed.Create(r.Context(), core.Transaction{
		TypeID:     req.Type,
		CategoryID: req.Category,
		CurrencyID: req.Currency,
		Amount:     amount,
		Date:       date,
		Note:       req.Note,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate()
	writeJSON(w, http.StatusCreated, toTransactionResponse(core.AnnotatedTransaction{Transaction: created}))
}

type transactionPatchRequest struct {
	Type     *string `json:"type"`
	Category *string `json:"category"`
	Currency *string `json:"currency"`
	Amount   *string `json:"amount"`
	Date     *string `json:"date"`
	Note     *string `json:"note"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	patch := storage.TransactionPatch{
		TypeID:     req.Type,
		CategoryID: req.Category,
		CurrencyID: req.Currency,
		Note:       req.Note,
	}
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.Amount = &amount
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		patch.Date = &date
	}

	updated, err := s.feed.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate()
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	w.WriteHeader(http.StatusNoContent)
}
