// Package export produces the interchange documents: a versioned JSON
// snapshot of the full data set and a CSV listing of transactions.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"soldi/internal/core"
)

// FormatVersion identifies the JSON snapshot layout.
const FormatVersion = 1

// Store is the slice of the record store the exporter reads.
type Store interface {
	ListAllTransactions(ctx context.Context) ([]core.AnnotatedTransaction, error)
	ListSettlements(ctx context.Context) ([]core.Settlement, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListCurrencies(ctx context.Context) ([]core.Currency, error)
}

type Snapshot struct {
	Version    int          `json:"version"`
	ExportDate time.Time    `json:"exportDate"`
	Data       SnapshotData `json:"data"`
	Meta       SnapshotMeta `json:"meta"`
}

type SnapshotData struct {
	Transactions []TransactionRecord    `json:"transactions"`
	Settlements  []SettlementRecord     `json:"settlements"`
	Categories   []core.Category        `json:"categories"`
	Types        []core.TransactionType `json:"types"`
	Currencies   []core.Currency        `json:"currencies"`
}

type SnapshotMeta struct {
	TransactionCount int `json:"transactionCount"`
	SettlementCount  int `json:"settlementCount"`
	CategoryCount    int `json:"categoryCount"`
}

type TransactionRecord struct {
	ID         string `json:"id"`
	TypeID     string `json:"type"`
	CategoryID string `json:"category"`
	CurrencyID string `json:"currency"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	Note       string `json:"note"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type SettlementRecord struct {
	ID             string `json:"id"`
	CompensatedID  string `json:"compensatedTransactionId"`
	CompensationID string `json:"compensationTransactionId"`
	Amount         string `json:"amount"`
	CreatedAt      string `json:"createdAt"`
}

type Exporter struct {
	store Store
}

func NewExporter(store Store) *Exporter {
	return &Exporter{store: store}
}

// WriteJSON writes the versioned snapshot document.
func (e *Exporter) WriteJSON(ctx context.Context, w io.Writer) error {
	transactions, err := e.store.ListAllTransactions(ctx)
	if err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}
	settlements, err := e.store.ListSettlements(ctx)
	if err != nil {
		return fmt.Errorf("export settlements: %w", err)
	}
	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("export categories: %w", err)
	}
	currencies, err := e.store.ListCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("export currencies: %w", err)
	}

	txRecords := make([]TransactionRecord, len(transactions))
	for i, tx := range transactions {
		txRecords[i] = TransactionRecord{
			ID:         tx.ID,
			TypeID:     tx.TypeID,
			CategoryID: tx.CategoryID,
			CurrencyID: tx.CurrencyID,
			Amount:     tx.Amount.String(),
			Date:       tx.Date.ISO(),
			Note:       tx.Note,
			CreatedAt:  tx.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:  tx.UpdatedAt.UTC().Format(time.RFC3339),
		}
	}
	stRecords := make([]SettlementRecord, len(settlements))
	for i, s := range settlements {
		stRecords[i] = SettlementRecord{
			ID:             s.ID,
			CompensatedID:  s.CompensatedID,
			CompensationID: s.CompensationID,
			Amount:         s.Amount.String(),
			CreatedAt:      s.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	snapshot := Snapshot{
		Version:    FormatVersion,
		ExportDate: time.Now().UTC(),
		Data: SnapshotData{
			Transactions: txRecords,
			Settlements:  stRecords,
			Categories:   categories,
			Types:        core.Types(),
			Currencies:   currencies,
		},
		Meta: SnapshotMeta{
			TransactionCount: len(txRecords),
			SettlementCount:  len(stRecords),
			CategoryCount:    len(categories),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

var csvHeader = []string{"ID", "Amount", "Date", "Note", "Type", "Category", "Currency"}

// csvLine renders one record with every field double-quoted and
// internal quotes doubled. encoding/csv only quotes fields that need
// it, which is why the quoting is done by hand here.
func csvLine(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	return b.String()
}

// WriteCSV writes transactions as CSV. Category, type and currency
// columns carry display names, not ids; every field is double-quoted
// with internal quotes doubled.
func (e *Exporter) WriteCSV(ctx context.Context, w io.Writer) error {
	transactions, err := e.store.ListAllTransactions(ctx)
	if err != nil {
		return fmt.Errorf("export transactions: %w", err)
	}
	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("export categories: %w", err)
	}
	currencies, err := e.store.ListCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("export currencies: %w", err)
	}

	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	currencyCodes := make(map[string]string, len(currencies))
	for _, c := range currencies {
		currencyCodes[c.ID] = c.Code
	}
	typeNames := make(map[string]string)
	for _, t := range core.Types() {
		typeNames[t.ID] = t.Name
	}

	if _, err := io.WriteString(w, csvLine(csvHeader)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range transactions {
		record := []string{
			tx.ID,
			tx.Amount.String(),
			tx.Date.ISO(),
			tx.Note,
			typeNames[tx.TypeID],
			categoryNames[tx.CategoryID],
			currencyCodes[tx.CurrencyID],
		}
		if _, err := io.WriteString(w, csvLine(record)); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	return nil
}
