package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ImageHandler serves cached preview images by filename.
type ImageHandler struct {
	cacheDir string
}

// NewImageHandler creates a handler rooted at the image cache directory.
func NewImageHandler(cacheDir string) *ImageHandler {
	return &ImageHandler{cacheDir: cacheDir}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns the absolute path under the cache dir.
func (h *ImageHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	// Reject anything with path separators or traversal.
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.cacheDir, cleaned)
	// Double-check the resolved path is under the cache dir.
	if !strings.HasPrefix(abs, h.cacheDir+string(os.PathSeparator)) && abs != h.cacheDir {
		return "", fmt.Errorf("path escapes cache directory")
	}
	return abs, nil
}

// ServeFile handles GET /images/{filename}.
func (h *ImageHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.safeName(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
