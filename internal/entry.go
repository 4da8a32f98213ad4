// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jasminestrone/tachylite/internal/api"
	"github.com/jasminestrone/tachylite/internal/fingerprint"
	"github.com/jasminestrone/tachylite/internal/markdown"
	"github.com/jasminestrone/tachylite/internal/session"
	"github.com/jasminestrone/tachylite/internal/vault"
	"github.com/jasminestrone/tachylite/internal/web"
)

// Run starts the vault server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	v, err := NewVault(cfg)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	renderer := markdown.NewRenderer("/raw/")
	fp := fingerprint.NewCache(v, time.Duration(cfg.Reload.PollInterval)*time.Second)
	sessions := session.NewStore()

	svc := api.NewService(v, renderer, fp, sessions, api.EditSettings{
		AllowAll:                cfg.Edit.AllowAll,
		AllowCreation:           cfg.Edit.AllowCreation,
		AllowedUploadExtensions: cfg.Edit.AllowedUploadExtensions,
	})
	h := api.NewHandler(svc, cfg.Reload.PollInterval)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Entry page and raw file bytes live at the root; the JSON API under /api.
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(web.Page())
	})
	r.Get("/raw/*", h.RawFile)
	r.Mount("/api", api.NewRouter(h))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the vault so out-of-band edits invalidate the fingerprint cache.
	// Watcher failure degrades to pure TTL polling.
	g.Go(func() error {
		if err := fingerprint.Watch(gCtx, fp, v, logger); err != nil {
			logger.Warn("vault watcher unavailable", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// NewVault opens the configured vault, excluding the export output directory
// and the config file alongside the configured exclusions.
func NewVault(cfg *Config) (*vault.Vault, error) {
	excludedDirs := append([]string{}, cfg.Vault.ExcludedDirs...)
	excludedDirs = append(excludedDirs, cfg.Export.OutputDir)
	excludedFiles := append([]string{}, cfg.Vault.ExcludedFiles...)
	excludedFiles = append(excludedFiles, ConfigFileName)
	return vault.New(cfg.Vault.Path, excludedDirs, excludedFiles)
}
