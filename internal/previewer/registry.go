package previewer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/veldran/sigil/internal/models"
)

// Registry tracks markers already placed per document, keyed by
// (line, end-column). It is the explicit state object behind marker
// deduplication and invalidation; HTTP handlers share it, hence the
// mutex.
type Registry struct {
	mu   sync.Mutex
	docs map[string]map[string]models.Marker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]map[string]models.Marker)}
}

func posKey(line, endCol int) string {
	return fmt.Sprintf("%d:%d", line, endCol)
}

// Has reports whether a marker already occupies (line, endCol) in uri.
func (r *Registry) Has(uri string, line, endCol int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.docs[uri][posKey(line, endCol)]
	return ok
}

// Put registers m, replacing any marker at the same position.
func (r *Registry) Put(m models.Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[m.URI]
	if !ok {
		doc = make(map[string]models.Marker)
		r.docs[m.URI] = doc
	}
	doc[posKey(m.Line, m.EndColumn)] = m
}

// Markers returns the document's markers ordered by position.
func (r *Registry) Markers(uri string) []models.Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := r.docs[uri]
	out := make([]models.Marker, 0, len(doc))
	for _, m := range doc {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// Clear drops all markers for one document.
func (r *Registry) Clear(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, uri)
}

// Reset drops every marker; used when the theme changes, since the
// rendered assets are theme-dependent.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = make(map[string]map[string]models.Marker)
}

// Documents returns the URIs that currently hold markers.
func (r *Registry) Documents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.docs))
	for uri := range r.docs {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}
