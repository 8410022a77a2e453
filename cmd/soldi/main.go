package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"soldi/internal/config"
	"soldi/internal/export"
	apphttp "soldi/internal/http"
	applog "soldi/internal/log"
	"soldi/internal/services"
	"soldi/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	applog.Setup(os.Getenv("LOG_LEVEL"))

	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	ledger := services.NewLedgerService(repo)
	feed := services.NewFeedService(repo, cfg.FeedMaxResident)
	exporter := export.NewExporter(repo)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, feed, repo, repo, exporter, apphttp.Options{
		DashboardCacheSize: cfg.DashboardCacheSize,
		DashboardCacheTTL:  cfg.DashboardCacheTTL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting soldi server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
