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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/veldran/sigil/internal/api"
	"github.com/veldran/sigil/internal/cachestore"
	"github.com/veldran/sigil/internal/imagecache"
	"github.com/veldran/sigil/internal/models"
	"github.com/veldran/sigil/internal/previewer"
	"github.com/veldran/sigil/internal/resolver"
	"github.com/veldran/sigil/internal/sse"
	"github.com/veldran/sigil/internal/symbolindex"
	"github.com/veldran/sigil/internal/workspace"
)

// evictInterval is how often the background eviction pass runs.
const evictInterval = 6 * time.Hour

// Run starts the application with the given options.
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
		slog.String("project_root", cfg.Project.Root),
		slog.String("cache_dir", cfg.Cache.Dir),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize project workspace.
	ws, err := workspace.NewFS(cfg.Project.Root)
	if err != nil {
		return fmt.Errorf("init workspace: %w", err)
	}

	// Initialize image cache store and evict stale entries on startup.
	store, err := cachestore.New(cfg.Cache.Dir, logger)
	if err != nil {
		return fmt.Errorf("init cache store: %w", err)
	}
	store.EnsureDir()
	maxAge := time.Duration(cfg.Cache.MaxAgeDays) * 24 * time.Hour
	if deleted, err := store.EvictOlderThan(maxAge); err != nil {
		logger.Warn("startup eviction failed", slog.String("error", err.Error()))
	} else if deleted > 0 {
		logger.Info("startup eviction", slog.Int("deleted", deleted))
	}

	// Initialize SQLite symbol index.
	if err := os.MkdirAll(filepath.Dir(cfg.Index.Path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	db, err := symbolindex.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init symbol index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := symbolindex.Sync(db, ws, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build the preview pipeline.
	res := resolver.New(symbolindex.NewLocator(db), ws, logger)
	acquirer := imagecache.New(store, cfg.Preview.SVGColor, logger)
	previews := previewer.NewService(res, acquirer, previewer.NewRegistry(), previewer.Options{
		Enabled:   cfg.Preview.Enabled,
		Position:  cfg.Preview.Position,
		ImageSize: cfg.Preview.ImageSize,
	}, logger)

	// Build API service and router.
	svc := api.NewService(previews, db, store, ws, broker, models.Theme(cfg.Preview.Theme), maxAge)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Cache.Dir)

	// Debounce marker invalidation while a file is being edited.
	sched := previewer.NewScheduler(0)
	defer sched.Stop()

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

	// Start file watcher. Changed files get their markers debounce-cleared
	// so the next resolve pass recomputes positions.
	g.Go(func() error {
		err := symbolindex.Watch(gCtx, db, ws, ws.Root(), logger, func(kind, path string) {
			broker.PublishIndexEvent(kind, path)
			sched.Schedule(func() {
				svc.ClearMarkers(path)
			})
		})
		if err != nil {
			logger.Warn("file watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Periodic cache eviction.
	g.Go(func() error {
		ticker := time.NewTicker(evictInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if deleted, err := svc.EvictCache(); err != nil {
					logger.Warn("eviction failed", slog.String("error", err.Error()))
				} else if deleted > 0 {
					logger.Info("eviction pass", slog.Int("deleted", deleted))
				}
			}
		}
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

		broker.Close()

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
