package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/udhaar/ledger/internal/config"
	"github.com/udhaar/ledger/internal/httpapi"
	"github.com/udhaar/ledger/internal/storage/memory"
	pgstore "github.com/udhaar/ledger/internal/storage/postgres"
	sqlitestore "github.com/udhaar/ledger/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	store, closeFn, backend, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage backend", "err", err)
		os.Exit(1)
	}
	logger.Info("storage backend: " + backend)

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.New(store, logger, httpapi.Options{
			AuthToken:      cfg.AuthToken,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("shop ledger service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// openStore selects the backend: postgres when DATABASE_URL is set,
// sqlite when SQLITE_PATH is set, otherwise in-memory for local dev.
func openStore(ctx context.Context, cfg config.Config) (httpapi.Store, func(), string, error) {
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, "", err
		}
		return pg, pg.Close, "postgres", nil
	}
	if cfg.SQLitePath != "" {
		st, err := sqlitestore.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, "", err
		}
		return st, func() { _ = st.Close() }, "sqlite", nil
	}
	return memory.New(), nil, "memory", nil
}
