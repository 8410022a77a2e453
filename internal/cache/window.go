package cache

import (
	"sort"

	"soldi/internal/core"
)

// DefaultMaxResident is the default memory budget for a Window.
const DefaultMaxResident = 100

// recentWindows is how many recently touched contiguous windows are kept
// for recency bookkeeping.
const recentWindows = 3

// Range addresses a contiguous [Start, Start+Count) slice of the backing
// sequence.
type Range struct {
	Start int
	Count int
}

// End returns the exclusive upper bound of the range.
func (r Range) End() int {
	return r.Start + r.Count
}

// Window is a bounded, index-addressed cache over the store's canonical
// transaction ordering (index 0 = most recent). Residency is sparse: any
// subset of indices may be present. A Window is owned by a single writer
// and does no locking of its own; callers that share one across
// goroutines must serialize access themselves.
type Window struct {
	items    map[int]core.AnnotatedTransaction
	total    int
	maxItems int
	recent   []Range
}

// NewWindow creates a Window with the given resident budget. A budget of
// zero or less falls back to DefaultMaxResident.
func NewWindow(maxItems int) *Window {
	if maxItems <= 0 {
		maxItems = DefaultMaxResident
	}
	return &Window{
		items:    make(map[int]core.AnnotatedTransaction),
		maxItems: maxItems,
	}
}

// IsRangeCached reports whether every index in [start, start+count) is
// resident.
func (w *Window) IsRangeCached(start, count int) bool {
	for i := start; i < start+count; i++ {
		if _, ok := w.items[i]; !ok {
			return false
		}
	}
	return true
}

// MissingRanges returns the maximal contiguous sub-ranges of
// [start, start+count) whose indices are absent, in ascending order.
// Adjacent gaps merge into one range; the returned ranges are disjoint
// and, together with the resident subset, reconstruct the request exactly.
func (w *Window) MissingRanges(start, count int) []Range {
	var missing []Range
	gapStart := -1
	for i := start; i < start+count; i++ {
		if _, ok := w.items[i]; ok {
			if gapStart >= 0 {
				missing = append(missing, Range{Start: gapStart, Count: i - gapStart})
				gapStart = -1
			}
			continue
		}
		if gapStart < 0 {
			gapStart = i
		}
	}
	if gapStart >= 0 {
		missing = append(missing, Range{Start: gapStart, Count: start + count - gapStart})
	}
	return missing
}

// Add writes items[i] to index startIndex+i, refreshes the known total,
// records the window for recency tracking and evicts back under budget.
// An index that is already resident is overwritten (last write wins).
func (w *Window) Add(items []core.AnnotatedTransaction, startIndex, totalCount int) {
	for i, item := range items {
		w.items[startIndex+i] = item
	}
	w.setTotal(totalCount)
	if len(items) > 0 {
		w.touch(Range{Start: startIndex, Count: len(items)})
	}
	w.evict()
}

// Get returns the resident items in [start, min(start+count, total)), in
// index order. Absent indices are skipped; Get never triggers a fetch.
// Callers wanting completeness check MissingRanges first.
func (w *Window) Get(start, count int) []core.AnnotatedTransaction {
	end := start + count
	if end > w.total {
		end = w.total
	}
	out := make([]core.AnnotatedTransaction, 0, count)
	for i := start; i < end; i++ {
		if item, ok := w.items[i]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Prepend shifts every resident index up by one and places the item at
// index 0, modelling a new transaction appearing at the top of the feed.
func (w *Window) Prepend(item core.AnnotatedTransaction) {
	for _, i := range w.sortedIndices(true) {
		w.items[i+1] = w.items[i]
		delete(w.items, i)
	}
	w.items[0] = item
	w.total++
	w.evict()
}

// Put inserts the item directly at the given index, extending the known
// total if the index lies beyond it.
func (w *Window) Put(item core.AnnotatedTransaction, index int) {
	if index < 0 {
		return
	}
	w.items[index] = item
	if index >= w.total {
		w.total = index + 1
	}
	w.evict()
}

// Remove drops the entry with the given identity, closes the gap by
// shifting every higher index down by one and decrements the total.
// Returns false (and changes nothing) if the identity is not resident.
func (w *Window) Remove(id string) bool {
	at, ok := w.indexOf(id)
	if !ok {
		return false
	}
	delete(w.items, at)
	for _, i := range w.sortedIndices(false) {
		if i > at {
			w.items[i-1] = w.items[i]
			delete(w.items, i)
		}
	}
	if w.total > 0 {
		w.total--
	}
	return true
}

// Update replaces the entry holding the item's identity in place.
// Returns false if the identity is not resident.
func (w *Window) Update(item core.AnnotatedTransaction) bool {
	at, ok := w.indexOf(item.ID)
	if !ok {
		return false
	}
	w.items[at] = item
	return true
}

// Clear drops all state; used on full refresh.
func (w *Window) Clear() {
	w.items = make(map[int]core.AnnotatedTransaction)
	w.total = 0
	w.recent = nil
}

// Len returns the resident entry count.
func (w *Window) Len() int {
	return len(w.items)
}

// Total returns the backing store's last known full row count.
func (w *Window) Total() int {
	return w.total
}

// Recent returns the most recently touched contiguous windows, newest
// last. Bookkeeping only; eviction does not depend on it.
func (w *Window) Recent() []Range {
	out := make([]Range, len(w.recent))
	copy(out, w.recent)
	return out
}

func (w *Window) touch(r Range) {
	w.recent = append(w.recent, r)
	if len(w.recent) > recentWindows {
		w.recent = w.recent[len(w.recent)-recentWindows:]
	}
}

// setTotal refreshes the known total and drops any resident index that
// fell outside it.
func (w *Window) setTotal(total int) {
	if total < 0 {
		total = 0
	}
	w.total = total
	for i := range w.items {
		if i >= total {
			delete(w.items, i)
		}
	}
}

// evict keeps a run of exactly maxItems entries from the sorted
// resident list, centered on its median entry and clamped to the list
// bounds, and discards the rest. Scrolling clusters access around a
// moving viewport, so the median approximates "near the current scroll
// position" without the cache tracking the viewport. The kept run is
// sliced from the resident list, not the index space: with sparse
// residency an index window around the median would hold fewer entries
// than the budget allows.
func (w *Window) evict() {
	if len(w.items) <= w.maxItems {
		return
	}
	indices := w.sortedIndices(false)

	lo := len(indices)/2 - w.maxItems/2
	if lo+w.maxItems > len(indices) {
		lo = len(indices) - w.maxItems
	}
	if lo < 0 {
		lo = 0
	}

	for _, i := range indices[:lo] {
		delete(w.items, i)
	}
	for _, i := range indices[lo+w.maxItems:] {
		delete(w.items, i)
	}
}

func (w *Window) indexOf(id string) (int, bool) {
	for i, item := range w.items {
		if item.ID == id {
			return i, true
		}
	}
	return 0, false
}

// sortedIndices returns the resident indices, ascending or descending.
func (w *Window) sortedIndices(desc bool) []int {
	indices := make([]int, 0, len(w.items))
	for i := range w.items {
		indices = append(indices, i)
	}
	if desc {
		sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	} else {
		sort.Ints(indices)
	}
	return indices
}
