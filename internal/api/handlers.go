package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/veldran/sigil/internal/apperr"
	"github.com/veldran/sigil/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ResolveDocument handles POST /documents/resolve.
//
//	@Summary		Resolve a document's component previews into markers
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ResolveRequest	true	"Document to resolve"
//	@Success		200		{object}	MarkerListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/resolve [post]
func (h *Handler) ResolveDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.URI == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("uri is required"))
		return
	}

	theme := h.svc.Theme()
	if req.Theme != "" {
		theme = models.Theme(req.Theme)
	}

	markers, err := h.svc.ResolveDocumentWithTheme(r.Context(), req.URI, req.Text, theme)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("document not found"))
		case errors.Is(err, apperr.ErrBadRequest):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("resolve failed", slog.String("uri", req.URI), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, MarkerListResponse{URI: req.URI, Markers: markerPayloads(markers), Count: len(markers)})
}

// GetMarkers handles GET /documents/markers.
//
//	@Summary		List registered markers for a document
//	@Tags			documents
//	@Produce		json
//	@Param			uri	query		string	true	"Document URI"
//	@Success		200	{object}	MarkerListResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/markers [get]
func (h *Handler) GetMarkers(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'uri' is required"))
		return
	}
	markers := h.svc.Markers(uri)
	writeJSON(w, http.StatusOK, MarkerListResponse{URI: uri, Markers: markerPayloads(markers), Count: len(markers)})
}

// ClearMarkers handles DELETE /documents/markers.
//
//	@Summary		Clear markers for a document, or all markers when uri is omitted
//	@Tags			documents
//	@Param			uri	query	string	false	"Document URI"
//	@Success		204	"Markers cleared"
//	@Security		BearerAuth
//	@Router			/documents/markers [delete]
func (h *Handler) ClearMarkers(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearMarkers(r.URL.Query().Get("uri"))
	w.WriteHeader(http.StatusNoContent)
}

// GetTheme handles GET /theme.
//
//	@Summary		Get the active theme
//	@Tags			theme
//	@Produce		json
//	@Success		200	{object}	ThemeResponse
//	@Security		BearerAuth
//	@Router			/theme [get]
func (h *Handler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: string(h.svc.Theme())})
}

// SetTheme handles POST /theme.
//
//	@Summary		Switch the active theme, invalidating all markers
//	@Tags			theme
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ThemeRequest	true	"Theme to activate"
//	@Success		200		{object}	ThemeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/theme [post]
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.SetTheme(models.Theme(req.Theme)); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: req.Theme})
}

// LookupSymbol handles GET /symbols.
//
//	@Summary		Look up indexed declaration sites for an exported name
//	@Tags			symbols
//	@Produce		json
//	@Param			name	query		string	true	"Exported symbol name"
//	@Success		200		{object}	SymbolLookupResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/symbols [get]
func (h *Handler) LookupSymbol(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'name' is required"))
		return
	}
	locs, err := h.svc.LookupSymbol(name)
	if err != nil {
		slog.Error("symbol lookup failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if locs == nil {
		locs = []models.Location{}
	}
	writeJSON(w, http.StatusOK, SymbolLookupResponse{Name: name, Locations: locs})
}

// EvictCache handles POST /cache/evict.
//
//	@Summary		Delete cached images older than the configured max age
//	@Tags			cache
//	@Produce		json
//	@Success		200	{object}	EvictResponse
//	@Security		BearerAuth
//	@Router			/cache/evict [post]
func (h *Handler) EvictCache(w http.ResponseWriter, _ *http.Request) {
	deleted, err := h.svc.EvictCache()
	if err != nil {
		slog.Error("cache eviction failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, EvictResponse{Deleted: deleted})
}
