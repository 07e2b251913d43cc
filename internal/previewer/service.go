// Package previewer orchestrates the resolution and image pipelines
// per document and owns the marker state the host renders from.
package previewer

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/veldran/sigil/internal/imagecache"
	"github.com/veldran/sigil/internal/models"
	"github.com/veldran/sigil/internal/resolver"
)

// Options are the processing knobs read per pass.
type Options struct {
	Enabled   bool
	Position  string // models.PositionGutter or models.PositionInline
	ImageSize int    // pixels, applied in inline mode
}

// Service coordinates resolver, acquirer, and registry for one pass.
type Service struct {
	resolver *resolver.Resolver
	images   *imagecache.Acquirer
	registry *Registry
	opts     Options
	logger   *slog.Logger
}

// NewService creates the orchestrator.
func NewService(res *resolver.Resolver, images *imagecache.Acquirer, reg *Registry, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{resolver: res, images: images, registry: reg, opts: opts, logger: logger}
}

// Registry exposes the marker state for consumers that clear or list.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Process resolves doc's component usages into markers backed by local
// image files. Positions already registered for the document are
// skipped; every per-reference failure is logged and the marker
// omitted, never failing the pass. The only returned error is context
// cancellation.
func (s *Service) Process(ctx context.Context, doc models.Document, theme models.Theme) ([]models.Marker, error) {
	if !s.opts.Enabled {
		return nil, nil
	}

	previews, err := s.resolver.Resolve(ctx, doc)
	if err != nil {
		return nil, err
	}

	renderSize := 0
	if s.opts.Position == models.PositionInline {
		renderSize = s.opts.ImageSize
	}

	var markers []models.Marker
	for _, p := range previews {
		if s.registry.Has(doc.URI, p.Line, p.EndColumn) {
			continue
		}

		imagePath, err := s.images.Acquire(ctx, p.Ref, theme, renderSize)
		if err != nil {
			if ctx.Err() != nil {
				return markers, ctx.Err()
			}
			s.logger.Warn("previewer: image acquisition failed",
				slog.String("symbol", p.Symbol),
				slog.String("uri", doc.URI),
				slog.String("error", err.Error()))
			continue
		}

		m := models.Marker{
			URI:       doc.URI,
			Symbol:    p.Symbol,
			Line:      p.Line,
			Column:    p.Column,
			EndColumn: p.EndColumn,
			Ref:       p.Ref,
			ImagePath: imagePath,
			ImageName: filepath.Base(imagePath),
		}
		s.registry.Put(m)
		markers = append(markers, m)
	}

	s.logger.Info("previewer: pass complete",
		slog.String("uri", doc.URI),
		slog.Int("resolved", len(previews)),
		slog.Int("markers", len(markers)))
	return markers, nil
}

// InvalidateDocument drops a document's markers so the next pass
// reapplies from scratch.
func (s *Service) InvalidateDocument(uri string) {
	s.registry.Clear(uri)
}

// InvalidateAll drops every marker; used on theme change.
func (s *Service) InvalidateAll() {
	s.registry.Reset()
}
