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

	"github.com/ferrith/carta/internal/api"
	"github.com/ferrith/carta/internal/docservice"
	"github.com/ferrith/carta/internal/mcpserver"
	"github.com/ferrith/carta/internal/scope"
	"github.com/ferrith/carta/internal/search"
	"github.com/ferrith/carta/internal/sse"
	"github.com/ferrith/carta/internal/storage"
)

// buildService creates the storage providers, catalogs, search index, and
// orchestrator from the configuration. The returned close function releases
// the search database.
func buildService(cfg *Config, logger *slog.Logger) (*docservice.Service, *search.DB, func(), error) {
	stores := make(map[scope.Scope]storage.Provider, 2)
	for _, s := range scope.All() {
		root := cfg.Store.Root(s)
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("create %s root: %w", s, err)
		}
		store, err := storage.NewFS(root)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init %s storage: %w", s, err)
		}
		stores[s] = store
	}

	db, err := search.Open(cfg.Search.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init search index: %w", err)
	}

	svc, err := docservice.NewService(stores, db)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("init doc service: %w", err)
	}

	// Bring the search index up to date with whatever is on disk.
	for _, s := range scope.All() {
		if err := search.Sync(db, s, svc.Store(s), svc.Catalog(s), logger); err != nil {
			logger.Warn("initial sync failed", slog.String("scope", s.String()), slog.String("error", err.Error()))
		}
	}

	return svc, db, func() { db.Close() }, nil
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("project_root", cfg.Store.ProjectRoot),
		slog.String("shared_root", cfg.Store.SharedRoot),
		slog.String("search_path", cfg.Search.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, db, closeDB, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
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

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start one file watcher per scope root, feeding the SSE broker.
	for _, s := range scope.All() {
		g.Go(func() error {
			search.Watch(gCtx, db, s, svc.Store(s), svc.Catalog(s), logger, func(kind string, sc scope.Scope, path string) {
				broker.PublishDocEvent(kind, sc.String(), path)
			})
			return nil
		})
	}

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

		broker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server with the given options. Logs go to
// stderr so stdout stays clean for the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, _, closeDB, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc).ServeStdio()
}
