// Package http exposes the ledger core as a JSON API: the presentation
// contract is plain data, rendering is somebody else's job.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"soldi/internal/cache"
	"soldi/internal/core"
	"soldi/internal/log"
	"soldi/internal/services"
	"soldi/internal/storage"
)

// Ledger is the aggregate-figure surface the dashboard handlers consume.
type Ledger interface {
	CompensationStatus(ctx context.Context, id string) (core.CompensationStatus, error)
	ListCompensatable(ctx context.Context) ([]core.AnnotatedTransaction, error)
	Balance(ctx context.Context) (core.Money, error)
	TotalByType(ctx context.Context, typeID string) (core.Money, error)
	SavingsTotal(ctx context.Context) (core.Money, error)
	ExpensesByCategory(ctx context.Context) ([]services.CategoryShare, error)
}

// Feed is the windowed transaction surface.
type Feed interface {
	Window(ctx context.Context, start, count int) ([]core.AnnotatedTransaction, int, error)
	Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, id string, patch storage.TransactionPatch) (core.AnnotatedTransaction, error)
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context)
}

// SettlementStore records settlements.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, s core.Settlement) (core.Settlement, error)
}

// CategoryStore manages the category reference set.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]core.Category, error)
}

// Exporter writes the interchange documents.
type Exporter interface {
	WriteJSON(ctx context.Context, w io.Writer) error
	WriteCSV(ctx context.Context, w io.Writer) error
}

type Server struct {
	ledger      Ledger
	feed        Feed
	settlements SettlementStore
	categories  CategoryStore
	exporter    Exporter

	// dashboards memoizes aggregate responses; any write empties it.
	dashboards *cache.LRU[[]byte]
}

// Options tune the dashboard memoization.
type Options struct {
	DashboardCacheSize int
	DashboardCacheTTL  time.Duration
}

// NewServer builds the API server with sane timeouts already set; the
// caller only has to ListenAndServe.
func NewServer(addr string, ledger Ledger, feed Feed, settlements SettlementStore, categories CategoryStore, exporter Exporter, opts Options) *http.Server {
	if opts.DashboardCacheSize <= 0 {
		opts.DashboardCacheSize = 32
	}
	if opts.DashboardCacheTTL <= 0 {
		opts.DashboardCacheTTL = 30 * time.Second
	}

	s := &Server{
		ledger:      ledger,
		feed:        feed,
		settlements: settlements,
		categories:  categories,
		exporter:    exporter,
		dashboards:  cache.NewLRU[[]byte](opts.DashboardCacheSize, opts.DashboardCacheTTL),
	}

	return &http.Server{
		Addr:           addr,
		Handler:        log.Middleware(s.routes()),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/transactions/{id}/compensation", s.handleCompensationStatus)
	mux.HandleFunc("GET /api/transactions/compensatable", s.handleListCompensatable)

	mux.HandleFunc("POST /api/settlements", s.handleCreateSettlement)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/dashboard/summary", s.handleDashboardSummary)
	mux.HandleFunc("GET /api/dashboard/expenses-by-category", s.handleExpensesByCategory)

	mux.HandleFunc("GET /api/export/json", s.handleExportJSON)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

// invalidate drops memoized aggregates after any write.
func (s *Server) invalidate() {
	s.dashboards.InvalidateAll()
}
