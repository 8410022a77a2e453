package http

import (
	"net/http"

	"soldi/internal/core"
)

type compensationStatusResponse struct {
	OriginalAmount     string `json:"originalAmount"`
	CompensatedAmount  string `json:"compensatedAmount"`
	RemainingAmount    string `json:"remainingAmount"`
	IsFullyCompensated bool   `json:"isFullyCompensated"`
}

func (s *Server) handleCompensationStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.ledger.CompensationStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, compensationStatusResponse{
		OriginalAmount:     status.Original.String(),
		CompensatedAmount:  status.Compensated.String(),
		RemainingAmount:    status.Remaining.String(),
		IsFullyCompensated: status.FullyCompensated,
	})
}

func (s *Server) handleListCompensatable(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListCompensatable(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]transactionResponse, len(items))
	for i, tx := range items {
		out[i] = toTransactionResponse(tx)
	}
	writeJSON(w, http.StatusOK, out)
}

type settlementRequest struct {
	CompensatedTransactionID  string `json:"compensatedTransactionId"`
	CompensationTransactionID string `json:"compensationTransactionId"`
	Amount                    string `json:"amount"`
}

type settlementResponse struct {
	ID                        string `json:"id"`
	CompensatedTransactionID  string `json:"compensatedTransactionId"`
	CompensationTransactionID string `json:"compensationTransactionId"`
	Amount                    string `json:"amount"`
}

func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.settlements.CreateSettlement(r.Context(), core.Settlement{
		CompensatedID:  req.CompensatedTransactionID,
		CompensationID: req.CompensationTransactionID,
		Amount:         amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidate()
	writeJSON(w, http.StatusCreated, settlementResponse{
		ID:                        created.ID,
		CompensatedTransactionID:  created.CompensatedID,
		CompensationTransactionID: created.CompensationID,
		Amount:                    created.Amount.String(),
	})
}
