package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Simplici0/atelier/internal/advisory"
	"github.com/Simplici0/atelier/internal/blob"
	"github.com/Simplici0/atelier/internal/config"
	"github.com/Simplici0/atelier/internal/db"
	"github.com/Simplici0/atelier/internal/invoice"
	"github.com/Simplici0/atelier/internal/metrics"
	"github.com/Simplici0/atelier/internal/migrations"
	"github.com/Simplici0/atelier/internal/quote"
	"github.com/Simplici0/atelier/internal/seed"
	"github.com/Simplici0/atelier/internal/session"
	"github.com/Simplici0/atelier/internal/store"
	"github.com/Simplici0/atelier/internal/studio"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts, err := config.LoadRates(cfg.RatesFile)
	if err != nil {
		return err
	}

	database, dialect, err := db.Open(cfg.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		applied, err := migrations.Up(ctx, database, dialect, "migrations")
		if err != nil {
			return fmt.Errorf("run database migrations: %w", err)
		}
		stats, err := seed.Run(ctx, database, dialect, seed.Config{})
		if err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		logger.Info("database ready", "migrations_applied", applied, "seed_inserts", stats.Inserts)
	}

	st := store.New(database, dialect)
	state := studio.New(st, logger)
	if err := state.Load(ctx, st); err != nil {
		return fmt.Errorf("load studio state: %w", err)
	}

	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	reg := metrics.New()
	quotes := quote.NewService(state, opts, logger, reg)
	provider := advisory.NewResilientProvider(
		advisory.NewOpenAIProvider(cfg.OpenAIModel, cfg.OpenAIAPIKey),
		advisory.DefaultResilience(),
	)
	advisor := advisory.NewAdvisor(provider, logger, reg)
	defer advisor.Close()

	srv := &server{
		logger:   logger,
		store:    st,
		state:    state,
		quotes:   quotes,
		invoices: invoice.NewService(st, quotes, cfg.InvoiceTermsDays, logger),
		blobs:    blobs,
		advisor:  advisor,
		metrics:  reg,
		sessions: session.NewSigner(cfg.SessionSecret),
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr, "env", cfg.Env, "blob_driver", blobs.Driver())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
