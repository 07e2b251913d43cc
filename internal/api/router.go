package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// cacheDir is the image cache directory served under /images.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler, cacheDir string) chi.Router {
	h := NewHandler(svc)
	ih := NewImageHandler(cacheDir)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents: resolution passes and marker state.
	r.Post("/documents/resolve", h.ResolveDocument)
	r.Get("/documents/markers", h.GetMarkers)
	r.Delete("/documents/markers", h.ClearMarkers)

	// Theme.
	r.Get("/theme", h.GetTheme)
	r.Post("/theme", h.SetTheme)

	// Symbol index.
	r.Get("/symbols", h.LookupSymbol)

	// Cache maintenance and cached image files.
	r.Post("/cache/evict", h.EvictCache)
	r.Get("/images/{filename}", ih.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
