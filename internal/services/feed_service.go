package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"soldi/internal/cache"
	"soldi/internal/core"
	"soldi/internal/storage"
)

// FeedStore is the slice of the record store the feed pages over.
type FeedStore interface {
	ListTransactionsPage(ctx context.Context, offset, limit int) ([]core.AnnotatedTransaction, int, error)
	GetTransaction(ctx context.Context, id string) (core.AnnotatedTransaction, error)
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch storage.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// FeedService serves index-addressed windows of the transaction feed
// through the bounded cache, fetching only the sub-ranges the cache does
// not hold. The cache itself is single-writer; the service's mutex is
// what upholds that contract when handlers call in concurrently.
type FeedService struct {
	mu      sync.Mutex
	store   FeedStore
	window  *cache.Window
	loading map[string]struct{} // exact range keys with a fetch in flight
}

func NewFeedService(store FeedStore, maxResident int) *FeedService {
	return &FeedService{
		store:   store,
		window:  cache.NewWindow(maxResident),
		loading: make(map[string]struct{}),
	}
}

// Window returns the transactions in [start, start+count) along with the
// full feed length. Missing sub-ranges are fetched from the store and
// cached first; a range whose identical key is already being fetched is
// skipped (overlapping-but-different ranges are not deduplicated).
func (f *FeedService) Window(ctx context.Context, start, count int) ([]core.AnnotatedTransaction, int, error) {
	if start < 0 || count < 0 {
		return nil, 0, fmt.Errorf("invalid window [%d, %d)", start, start+count)
	}

	f.mu.Lock()
	var toFetch []cache.Range
	for _, r := range f.window.MissingRanges(start, count) {
		key := rangeKey(r)
		if _, busy := f.loading[key]; busy {
			continue
		}
		f.loading[key] = struct{}{}
		toFetch = append(toFetch, r)
	}
	f.mu.Unlock()

	for _, r := range toFetch {
		items, total, err := f.store.ListTransactionsPage(ctx, r.Start, r.Count)

		f.mu.Lock()
		delete(f.loading, rangeKey(r))
		if err != nil {
			f.mu.Unlock()
			return nil, 0, err
		}
		f.window.Add(items, r.Start, total)
		f.mu.Unlock()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.window.Get(start, count), f.window.Total(), nil
}

// Create persists a transaction and surfaces it at the top of the feed.
func (f *FeedService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	created, err := f.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}

	f.mu.Lock()
	f.window.Prepend(core.AnnotatedTransaction{Transaction: created})
	f.mu.Unlock()
	return created, nil
}

// Update persists a patch and refreshes the cached row in place. The row
// is re-read so both the cached copy and the returned value keep their
// settlement annotation.
func (f *FeedService) Update(ctx context.Context, id string, patch storage.TransactionPatch) (core.AnnotatedTransaction, error) {
	if _, err := f.store.UpdateTransaction(ctx, id, patch); err != nil {
		return core.AnnotatedTransaction{}, err
	}

	annotated, err := f.store.GetTransaction(ctx, id)
	if err != nil {
		return core.AnnotatedTransaction{}, err
	}

	f.mu.Lock()
	f.window.Update(annotated)
	f.mu.Unlock()
	return annotated, nil
}

// Delete removes a transaction from the store and closes its slot in the
// cached feed.
func (f *FeedService) Delete(ctx context.Context, id string) error {
	if err := f.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	f.mu.Lock()
	f.window.Remove(id)
	f.mu.Unlock()
	return nil
}

// Refresh drops all cached state; the next Window call reloads from the
// store.
func (f *FeedService) Refresh(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slog.DebugContext(ctx, "Feed cache cleared",
		"resident", f.window.Len(),
		"recent_windows", f.window.Recent())
	f.window.Clear()
}

func rangeKey(r cache.Range) string {
	return fmt.Sprintf("%d:%d", r.Start, r.Count)
}
