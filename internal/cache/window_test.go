package cache

import (
	"fmt"
	"testing"

	"soldi/internal/core"
)

func tx(id string) core.AnnotatedTransaction {
	return core.AnnotatedTransaction{
		Transaction: core.Transaction{
			ID:         id,
			TypeID:     core.TypeExpense,
			CategoryID: "cat",
			CurrencyID: "eur",
			Amount:     core.Money{Cents: 100},
			Date:       core.NewDate(2026, 1, 1),
			Note:       "n",
		},
	}
}

func txs(ids ...string) []core.AnnotatedTransaction {
	out := make([]core.AnnotatedTransaction, len(ids))
	for i, id := range ids {
		out[i] = tx(id)
	}
	return out
}

func residentIDs(w *Window, start, count int) []string {
	items := w.Get(start, count)
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestIsRangeCached(t *testing.T) {
	w := NewWindow(10)
	w.Add(txs("a", "b", "c"), 0, 20)

	if !w.IsRangeCached(0, 3) {
		t.Fatalf("0..3 should be cached")
	}
	if w.IsRangeCached(0, 4) {
		t.Fatalf("0..4 should not be fully cached")
	}
	if w.IsRangeCached(5, 1) {
		t.Fatalf("5 should not be cached")
	}
	if !w.IsRangeCached(5, 0) {
		t.Fatalf("empty range is trivially cached")
	}
}

func TestMissingRangesMergesGaps(t *testing.T) {
	w := NewWindow(50)
	w.Add(txs("a", "b"), 2, 30) // resident: 2,3
	w.Add(txs("c"), 7, 30)      // resident: 2,3,7

	got := w.MissingRanges(0, 10)
	want := []Range{{Start: 0, Count: 2}, {Start: 4, Count: 3}, {Start: 8, Count: 2}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("range %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

// Missing ranges plus resident indices must reconstruct the request
// exactly once, with no overlaps, regardless of prior mutations.
func TestMissingRangesPartition(t *testing.T) {
	w := NewWindow(200)
	w.Add(txs("a", "b", "c"), 0, 40)
	w.Add(txs("d", "e"), 10, 40)
	w.Prepend(tx("f"))
	w.Remove("b")
	w.Put(tx("g"), 25)

	const start, count = 0, 30
	covered := make(map[int]int)
	for _, r := range w.MissingRanges(start, count) {
		if r.Count <= 0 {
			t.Fatalf("empty range in output: %+v", r)
		}
		for i := r.Start; i < r.End(); i++ {
			covered[i]++
		}
	}
	for i := start; i < start+count; i++ {
		if w.IsRangeCached(i, 1) {
			covered[i]++
		}
	}
	for i := start; i < start+count; i++ {
		if covered[i] != 1 {
			t.Fatalf("index %d covered %d times", i, covered[i])
		}
	}
}

func TestAddOverwrites(t *testing.T) {
	w := NewWindow(10)
	w.Add(txs("a", "b"), 0, 5)
	w.Add(txs("c"), 1, 5) // refresh index 1

	got := residentIDs(w, 0, 2)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("expected [a c], got %v", got)
	}
}

func TestGetBoundedByTotal(t *testing.T) {
	w := NewWindow(10)
	w.Add(txs("a", "b", "c"), 0, 2) // total says only 2 rows exist

	if got := residentIDs(w, 0, 5); len(got) != 2 {
		t.Fatalf("expected 2 rows within total, got %v", got)
	}
	if w.Len() != 2 {
		t.Fatalf("index beyond total should have been dropped, len=%d", w.Len())
	}
}

func TestPrependShiftsEverythingUp(t *testing.T) {
	w := NewWindow(10)
	w.Add(txs("a", "b", "c"), 0, 3)

	w.Prepend(tx("new"))

	if got := residentIDs(w, 0, 1); len(got) != 1 || got[0] != "new" {
		t.Fatalf("expected [new] at index 0, got %v", got)
	}
	got := residentIDs(w, 0, 4)
	want := []string{"new", "a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if w.Total() != 4 {
		t.Fatalf("total expected 4, got %d", w.Total())
	}
}

func TestRemoveClosesGap(t *testing.T) {
	w := NewWindow(10)
	w.Add(txs("a", "b", "c", "d"), 0, 4)

	if !w.Remove("b") {
		t.Fatalf("expected removal")
	}
	got := residentIDs(w, 0, 4)
	want := []string{"a", "c", "d"}
	if len(got) != 3 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if w.Total() != 3 {
		t.Fatalf("total expected 3, got %d", w.Total())
	}

	if w.Remove("missing") {
		t.Fatalf("removing an unknown id must be a no-op")
	}
	if w.Total() != 3 || w.Len() != 3 {
		t.Fatalf("no-op removal changed state")
	}
}

func TestRemoveWithSparseResidency(t *testing.T) {
	w := NewWindow(50)
	w.Add(txs("a", "b"), 0, 20)
	w.Add(txs("c", "d"), 10, 20)

	if !w.Remove("a") {
		t.Fatalf("expected removal")
	}
	// b moves 1->0, c 10->9, d 11->10.
	if got := residentIDs(w, 0, 1); len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b], got %v", got)
	}
	if got := residentIDs(w, 9, 2); len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Fatalf("expected [c d] at 9..10, got %v", got)
	}
	if w.Total() != 19 {
		t.Fatalf("total expected 19, got %d", w.Total())
	}
}

func TestUpdateInPlace(t *testing.T) {
	w := NewWindow(10)
	w.Add(txs("a", "b"), 0, 2)

	changed := tx("b")
	changed.Note = "edited"
	if !w.Update(changed) {
		t.Fatalf("expected update")
	}
	got := w.Get(1, 1)
	if len(got) != 1 || got[0].Note != "edited" {
		t.Fatalf("expected edited note, got %v", got)
	}
	if w.Update(tx("missing")) {
		t.Fatalf("updating an unknown id must return false")
	}
}

func TestPutExtendsTotal(t *testing.T) {
	w := NewWindow(10)
	w.Add(txs("a"), 0, 1)
	w.Put(tx("far"), 5)

	if w.Total() != 6 {
		t.Fatalf("total expected 6, got %d", w.Total())
	}
	if got := residentIDs(w, 5, 1); len(got) != 1 || got[0] != "far" {
		t.Fatalf("expected [far] at 5, got %v", got)
	}
}

func TestEvictionKeepsCenteredRun(t *testing.T) {
	w := NewWindow(4)
	w.Add(txs("t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9"), 0, 10)

	if w.Len() > 4 {
		t.Fatalf("resident count %d exceeds budget", w.Len())
	}
	// Median of 0..9 is index 5; the kept run is [3,7).
	want := []string{"t3", "t4", "t5", "t6"}
	got := residentIDs(w, 0, 10)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEvictionClampsToBounds(t *testing.T) {
	w := NewWindow(4)
	// Residency clustered at the top of the sequence.
	w.Add(txs("t0", "t1", "t2", "t3", "t4", "t5"), 0, 6)

	if w.Len() > 4 {
		t.Fatalf("resident count %d exceeds budget", w.Len())
	}
	got := residentIDs(w, 0, 6)
	if len(got) != 4 {
		t.Fatalf("expected 4 kept entries, got %v", got)
	}
	// Kept run must be contiguous.
	first := -1
	for i := 0; i < 6; i++ {
		if w.IsRangeCached(i, 1) {
			first = i
			break
		}
	}
	if !w.IsRangeCached(first, 4) {
		t.Fatalf("kept entries are not contiguous")
	}
}

func TestEvictionCoversBudgetWhenSparse(t *testing.T) {
	w := NewWindow(4)
	// Two clusters far apart: the head of the feed and a deep scroll
	// position. The gap between them holds no resident entries.
	w.Add(txs("t0", "t1", "t2"), 0, 20)
	w.Add(txs("t16", "t17", "t18", "t19"), 16, 20)

	if w.Len() != 4 {
		t.Fatalf("sparse eviction should keep exactly the budget, got %d", w.Len())
	}
	// The kept run straddles the gap: entries around the median of the
	// resident list, not an index window around the median index.
	want := []string{"t1", "t2", "t16", "t17"}
	got := residentIDs(w, 0, 20)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEvictionCoversBudgetWhenDense(t *testing.T) {
	w := NewWindow(25)
	items := make([]core.AnnotatedTransaction, 60)
	for i := range items {
		items[i] = tx(fmt.Sprintf("t%d", i))
	}
	w.Add(items, 0, 60)

	if w.Len() != 25 {
		t.Fatalf("dense eviction should keep exactly the budget, got %d", w.Len())
	}
}

func TestClear(t *testing.T) {
	w := NewWindow(10)
	w.Add(txs("a", "b"), 0, 2)
	w.Clear()

	if w.Len() != 0 || w.Total() != 0 {
		t.Fatalf("clear left state behind")
	}
	if got := w.MissingRanges(0, 2); len(got) != 1 || got[0] != (Range{Start: 0, Count: 2}) {
		t.Fatalf("expected full gap after clear, got %v", got)
	}
}

func TestRecentWindows(t *testing.T) {
	w := NewWindow(100)
	w.Add(txs("a"), 0, 50)
	w.Add(txs("b"), 10, 50)
	w.Add(txs("c"), 20, 50)
	w.Add(txs("d"), 30, 50)

	recent := w.Recent()
	if len(recent) != 3 {
		t.Fatalf("expected 3 tracked windows, got %d", len(recent))
	}
	if recent[2] != (Range{Start: 30, Count: 1}) {
		t.Fatalf("newest window expected last, got %+v", recent[2])
	}
}
