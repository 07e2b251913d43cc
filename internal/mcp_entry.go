package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/veldran/sigil/internal/api"
	"github.com/veldran/sigil/internal/cachestore"
	"github.com/veldran/sigil/internal/imagecache"
	"github.com/veldran/sigil/internal/mcpserver"
	"github.com/veldran/sigil/internal/models"
	"github.com/veldran/sigil/internal/previewer"
	"github.com/veldran/sigil/internal/resolver"
	"github.com/veldran/sigil/internal/symbolindex"
	"github.com/veldran/sigil/internal/workspace"
)

// RunMCP serves the preview tools over MCP stdio transport. Logs go to
// stderr so stdout stays clean for the protocol.
func RunMCP(_ context.Context, cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	ws, err := workspace.NewFS(cfg.Project.Root)
	if err != nil {
		return fmt.Errorf("init workspace: %w", err)
	}

	store, err := cachestore.New(cfg.Cache.Dir, logger)
	if err != nil {
		return fmt.Errorf("init cache store: %w", err)
	}
	store.EnsureDir()

	if err := os.MkdirAll(filepath.Dir(cfg.Index.Path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	db, err := symbolindex.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init symbol index: %w", err)
	}
	defer db.Close()

	if err := symbolindex.Sync(db, ws, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	res := resolver.New(symbolindex.NewLocator(db), ws, logger)
	images := imagecache.New(store, cfg.Preview.SVGColor, logger)
	previews := previewer.NewService(res, images, previewer.NewRegistry(), previewer.Options{
		Enabled:   cfg.Preview.Enabled,
		Position:  cfg.Preview.Position,
		ImageSize: cfg.Preview.ImageSize,
	}, logger)

	maxAge := time.Duration(cfg.Cache.MaxAgeDays) * 24 * time.Hour
	svc := api.NewService(previews, db, store, ws, nil, models.Theme(cfg.Preview.Theme), maxAge)

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(svc, images).ServeStdio()
}

// RunEvict performs a one-shot eviction pass over the image cache.
func RunEvict(_ context.Context, cfg *Config) (int, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	store, err := cachestore.New(cfg.Cache.Dir, logger)
	if err != nil {
		return 0, fmt.Errorf("init cache store: %w", err)
	}
	maxAge := time.Duration(cfg.Cache.MaxAgeDays) * 24 * time.Hour
	return store.EvictOlderThan(maxAge)
}
