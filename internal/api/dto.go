package api

import "github.com/veldran/sigil/internal/models"

// ResolveRequest is the request body for resolving a document's previews.
// Text is optional; when omitted the document is read from the project.
// Theme optionally overrides the active theme for this pass only.
type ResolveRequest struct {
	URI   string `json:"uri" example:"src/App.tsx" validate:"required"`
	Text  string `json:"text,omitempty"`
	Theme string `json:"theme,omitempty" example:"dark"`
}

// MarkerPayload is a marker enriched with its serving URL.
type MarkerPayload struct {
	models.Marker
	ImageURL string `json:"image_url" example:"/api/images/ab12cd34ef56ab78-dark.svg" validate:"required"`
}

// MarkerListResponse wraps the markers produced or held for a document.
type MarkerListResponse struct {
	URI     string          `json:"uri" example:"src/App.tsx" validate:"required"`
	Markers []MarkerPayload `json:"markers" validate:"required"`
	Count   int             `json:"count" example:"3" validate:"required"`
}

func markerPayloads(markers []models.Marker) []MarkerPayload {
	out := make([]MarkerPayload, len(markers))
	for i, m := range markers {
		out[i] = MarkerPayload{Marker: m, ImageURL: "/api/images/" + m.ImageName}
	}
	return out
}

// ThemeRequest is the request body for switching the active theme.
type ThemeRequest struct {
	Theme string `json:"theme" example:"dark" validate:"required"`
}

// ThemeResponse reports the active theme.
type ThemeResponse struct {
	Theme string `json:"theme" example:"dark" validate:"required"`
}

// SymbolLookupResponse wraps declaration sites for an exported name.
type SymbolLookupResponse struct {
	Name      string            `json:"name" example:"HomeIcon" validate:"required"`
	Locations []models.Location `json:"locations" validate:"required"`
}

// EvictResponse reports how many cache entries an eviction removed.
type EvictResponse struct {
	Deleted int `json:"deleted" example:"4" validate:"required"`
}
