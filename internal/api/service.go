package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/veldran/sigil/internal/apperr"
	"github.com/veldran/sigil/internal/cachestore"
	"github.com/veldran/sigil/internal/models"
	"github.com/veldran/sigil/internal/previewer"
	"github.com/veldran/sigil/internal/sse"
	"github.com/veldran/sigil/internal/symbolindex"
	"github.com/veldran/sigil/internal/workspace"
)

// Service coordinates the preview pipeline, symbol index, and image
// cache for the API layer. It also owns the active theme; changing it
// drops all markers so subsequent passes re-acquire themed images.
type Service struct {
	previews *previewer.Service
	db       symbolindex.SymbolIndex
	store    *cachestore.Store
	docs     workspace.Provider
	events   *sse.Broker // optional
	maxAge   time.Duration

	mu    sync.RWMutex
	theme models.Theme
}

// NewService creates a new API service. events may be nil.
func NewService(previews *previewer.Service, db symbolindex.SymbolIndex, store *cachestore.Store, docs workspace.Provider, events *sse.Broker, theme models.Theme, maxAge time.Duration) *Service {
	return &Service{
		previews: previews,
		db:       db,
		store:    store,
		docs:     docs,
		events:   events,
		maxAge:   maxAge,
		theme:    theme,
	}
}

// Theme returns the active theme.
func (s *Service) Theme() models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme switches the active theme. All markers are invalidated so
// the next resolve pass picks up images transformed for the new theme.
func (s *Service) SetTheme(theme models.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("api: unknown theme %q", theme)
	}
	s.mu.Lock()
	changed := s.theme != theme
	s.theme = theme
	s.mu.Unlock()

	if changed {
		s.previews.InvalidateAll()
		if s.events != nil {
			s.events.PublishThemeChanged(string(theme))
			s.events.PublishMarkersCleared("")
		}
	}
	return nil
}

// ResolveDocument runs a preview pass over the document using the
// active theme. When text is empty the document is loaded from the
// project tree.
func (s *Service) ResolveDocument(ctx context.Context, uri, text string) ([]models.Marker, error) {
	return s.ResolveDocumentWithTheme(ctx, uri, text, s.Theme())
}

// ResolveDocumentWithTheme runs a preview pass with an explicit theme,
// leaving the active theme untouched.
func (s *Service) ResolveDocumentWithTheme(ctx context.Context, uri, text string, theme models.Theme) ([]models.Marker, error) {
	if !theme.Valid() {
		return nil, fmt.Errorf("api: unknown theme %q: %w", theme, apperr.ErrBadRequest)
	}
	if text == "" {
		loaded, err := s.docs.OpenDocument(ctx, uri)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("api: open %s: %w", uri, apperr.ErrNotFound)
			}
			return nil, err
		}
		text = loaded
	}

	markers, err := s.previews.Process(ctx, models.Document{URI: uri, Text: text}, theme)
	if err != nil {
		return nil, err
	}
	if s.events != nil && len(markers) > 0 {
		s.events.PublishMarkers(uri, len(markers))
	}
	return markers, nil
}

// Markers returns the registered markers for a document.
func (s *Service) Markers(uri string) []models.Marker {
	return s.previews.Registry().Markers(uri)
}

// ClearMarkers drops markers for one document, or for all documents
// when uri is empty.
func (s *Service) ClearMarkers(uri string) {
	if uri == "" {
		s.previews.InvalidateAll()
	} else {
		s.previews.InvalidateDocument(uri)
	}
	if s.events != nil {
		s.events.PublishMarkersCleared(uri)
	}
}

// LookupSymbol returns indexed declaration sites for an exported name.
func (s *Service) LookupSymbol(name string) ([]models.Location, error) {
	return s.db.Lookup(name)
}

// EvictCache deletes cached images older than the configured max age
// and returns how many were removed.
func (s *Service) EvictCache() (int, error) {
	deleted, err := s.store.EvictOlderThan(s.maxAge)
	if err != nil {
		return 0, err
	}
	if s.events != nil && deleted > 0 {
		s.events.PublishCacheEvicted(deleted)
	}
	return deleted, nil
}
