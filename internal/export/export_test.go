package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"soldi/internal/core"
)

type fakeStore struct {
	transactions []core.AnnotatedTransaction
	settlements  []core.Settlement
	categories   []core.Category
	currencies   []core.Currency
}

func (f *fakeStore) ListAllTransactions(context.Context) ([]core.AnnotatedTransaction, error) {
	return f.transactions, nil
}

func (f *fakeStore) ListSettlements(context.Context) ([]core.Settlement, error) {
	return f.settlements, nil
}

func (f *fakeStore) ListCategories(context.Context) ([]core.Category, error) {
	return f.categories, nil
}

func (f *fakeStore) ListCurrencies(context.Context) ([]core.Currency, error) {
	return f.currencies, nil
}

func testStore() *fakeStore {
	return &fakeStore{
		transactions: []core.AnnotatedTransaction{
			{
				Transaction: core.Transaction{
					ID:         "tx-1",
					TypeID:     core.TypeExpense,
					CategoryID: "cat-1",
					CurrencyID: "eur",
					Amount:     core.Money{Cents: 1234},
					Date:       core.NewDate(2026, 3, 14),
					Note:       `lunch with "friends"`,
				},
			},
		},
		settlements: []core.Settlement{
			{ID: "s-1", CompensatedID: "tx-1", CompensationID: "tx-2", Amount: core.Money{Cents: 400}},
		},
		categories: []core.Category{{ID: "cat-1", Name: "Groceries", Color: "#4caf50"}},
		currencies: []core.Currency{{ID: "eur", Code: "EUR", Symbol: "€"}},
	}
}

func TestWriteJSONSnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter(testStore()).WriteJSON(context.Background(), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snapshot); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if snapshot.Version != FormatVersion {
		t.Fatalf("version expected %d, got %d", FormatVersion, snapshot.Version)
	}
	if len(snapshot.Data.Transactions) != 1 || snapshot.Data.Transactions[0].Amount != "12.34" {
		t.Fatalf("unexpected transactions: %+v", snapshot.Data.Transactions)
	}
	if len(snapshot.Data.Types) != 5 {
		t.Fatalf("expected full type set, got %d", len(snapshot.Data.Types))
	}
	if snapshot.Meta.TransactionCount != 1 || snapshot.Meta.SettlementCount != 1 {
		t.Fatalf("unexpected meta: %+v", snapshot.Meta)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter(testStore()).WriteCSV(context.Background(), &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 record, got %d lines", len(lines))
	}
	if lines[0] != `"ID","Amount","Date","Note","Type","Category","Currency"` {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	// Every field is double-quoted, not just the ones that need it.
	for _, field := range strings.Split(lines[1], ",\"") {
		if !strings.HasSuffix(field, `"`) {
			t.Fatalf("field not double-quoted in %q", lines[1])
		}
	}
	if !strings.Contains(lines[1], `"12.34"`) {
		t.Fatalf("amount field not double-quoted: %q", lines[1])
	}
	// Internal quotes must be doubled and the field quoted.
	if !strings.Contains(lines[1], `"lunch with ""friends"""`) {
		t.Fatalf("quoting not applied: %q", lines[1])
	}
	if !strings.Contains(lines[1], "Groceries") || !strings.Contains(lines[1], "EUR") {
		t.Fatalf("reference names missing: %q", lines[1])
	}
}
