// Package imagecache turns preview references (remote URLs or embedded
// data URIs) into locally cached, theme-adapted image files.
package imagecache

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/veldran/sigil/internal/cachestore"
	"github.com/veldran/sigil/internal/checksum"
	"github.com/veldran/sigil/internal/models"
)

const (
	fetchTimeout = 10 * time.Second
	maxImageSize = 10 << 20 // 10 MB
)

var mimeToExt = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/x-icon":  ".ico",
}

// cacheExts is every extension an acquisition can persist under: the
// SVG transform output plus everything rasterExt and urlExt produce.
var cacheExts = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico"}

// Icon-page URLs are rewritten to the provider's raw-asset CDN so the
// fetch yields image bytes instead of an HTML page.
var providerRewrites = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`^https?://lucide\.dev/icons/([\w-]+)/?$`), "https://unpkg.com/lucide-static@latest/icons/$1.svg"},
	{regexp.MustCompile(`^https?://tabler\.io/icons/icon/([\w-]+)/?$`), "https://unpkg.com/@tabler/icons@latest/icons/outline/$1.svg"},
}

// AcquireError tags an acquisition failure with the reference that
// caused it.
type AcquireError struct {
	Ref models.PreviewRef
	Err error
}

func (e *AcquireError) Error() string {
	ref := string(e.Ref)
	if len(ref) > 80 {
		ref = ref[:80] + "..."
	}
	return fmt.Sprintf("imagecache: acquire %s: %v", ref, e.Err)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// Acquirer fetches, transforms, and caches preview images.
type Acquirer struct {
	store  *cachestore.Store
	client *http.Client
	color  string
	logger *slog.Logger
}

// New creates an acquirer persisting through store. color replaces the
// symbolic currentColor token in SVG payloads.
func New(store *cachestore.Store, color string, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{
		store: store,
		client: &http.Client{
			// Redirects are followed manually so relative Location
			// headers resolve against the request origin.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		color:  color,
		logger: logger,
	}
}

// Acquire resolves ref into a local file path. renderSize, when
// positive, pins the rendered SVG dimensions (inline display mode).
// The returned path is deterministic for a fixed (ref, theme, size)
// tuple; a cache hit performs no network or decode work.
func (a *Acquirer) Acquire(ctx context.Context, ref models.PreviewRef, theme models.Theme, renderSize int) (string, error) {
	normalized := string(ref)
	if !ref.IsEmbedded() {
		normalized = normalizeURL(normalized)
	}

	// Embedded payloads key on the original reference, remote ones on
	// the normalized URL, so provider aliases share a cache entry.
	keySource := normalized
	if ref.IsEmbedded() {
		keySource = string(ref)
	}
	base := checksum.Key(keySource) + "-" + theme.CacheSuffix()
	if renderSize > 0 {
		base += fmt.Sprintf("-%dpx", renderSize)
	}

	if hit, ok := a.probe(base); ok {
		a.logger.Debug("imagecache: cache hit", slog.String("entry", hit))
		return hit, nil
	}

	var (
		data  []byte
		ctype string
		err   error
	)
	if ref.IsEmbedded() {
		data, ctype, err = decodeDataURI(string(ref))
	} else {
		data, ctype, err = a.fetch(ctx, normalized)
	}
	if err != nil {
		return "", &AcquireError{Ref: ref, Err: err}
	}

	if isSVG(data, ctype, normalized) {
		out := transformSVG(string(data), a.color, theme, renderSize)
		abs, werr := a.store.Write(base+".svg", []byte(out))
		if werr != nil {
			return "", &AcquireError{Ref: ref, Err: werr}
		}
		return abs, nil
	}

	ext := rasterExt(data, ctype, normalized)
	abs, werr := a.store.Write(base+ext, data)
	if werr != nil {
		return "", &AcquireError{Ref: ref, Err: werr}
	}
	return abs, nil
}

// probe checks the candidate cache paths an earlier acquisition of the
// same key could have produced.
func (a *Acquirer) probe(base string) (string, bool) {
	for _, ext := range cacheExts {
		name := base + ext
		if a.store.Exists(name) {
			abs, err := a.store.Path(name)
			if err == nil {
				return abs, true
			}
		}
	}
	return "", false
}

// fetch issues a GET and follows 301/302/307/308 redirects manually,
// resolving relative Location headers against the request origin. Each
// hop carries its own deadline; there is no hop cap, so a redirect loop
// is bounded only by ctx.
func (a *Acquirer) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	current := rawURL
	for {
		data, ctype, location, status, err := a.fetchOnce(ctx, current)
		if err != nil {
			return nil, "", err
		}
		switch status {
		case http.StatusOK:
			return data, ctype, nil
		case http.StatusMovedPermanently, http.StatusFound,
			http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
			next, rerr := resolveLocation(current, location)
			if rerr != nil {
				return nil, "", rerr
			}
			a.logger.Debug("imagecache: redirect",
				slog.String("from", current), slog.String("to", next))
			current = next
		default:
			return nil, "", fmt.Errorf("unexpected status %d from %s", status, current)
		}
	}
}

func (a *Acquirer) fetchOnce(ctx context.Context, rawURL string) (data []byte, ctype, location string, status int, err error) {
	hopCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(hopCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", "", 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, "", "", 0, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	limited := io.LimitReader(resp.Body, maxImageSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, "", "", 0, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxImageSize {
		return nil, "", "", 0, fmt.Errorf("response exceeds %d bytes", maxImageSize)
	}

	return body, resp.Header.Get("Content-Type"), resp.Header.Get("Location"), resp.StatusCode, nil
}

// resolveLocation resolves a possibly relative redirect target against
// the URL the redirect came from.
func resolveLocation(from, location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("redirect from %s without Location header", from)
	}
	base, err := url.Parse(from)
	if err != nil {
		return "", fmt.Errorf("parse redirect base: %w", err)
	}
	target, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse redirect target %q: %w", location, err)
	}
	return base.ResolveReference(target).String(), nil
}

// normalizeURL rewrites known provider icon-page URLs to their raw-asset
// CDN form. Unrecognized URLs pass through unchanged.
func normalizeURL(raw string) string {
	for _, p := range providerRewrites {
		if p.pattern.MatchString(raw) {
			return p.pattern.ReplaceAllString(raw, p.replace)
		}
	}
	return raw
}

// decodeDataURI decodes a data:<mime>;base64,<payload> reference.
func decodeDataURI(raw string) ([]byte, string, error) {
	rest := strings.TrimPrefix(raw, "data:")
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
		}
	}
	return data, mime, nil
}

// isSVG classifies a payload as vector when the declared content type
// says so, the URL carries an .svg extension, or the body contains an
// <svg tag.
func isSVG(data []byte, ctype, rawURL string) bool {
	if strings.Contains(strings.ToLower(ctype), "svg") {
		return true
	}
	if urlExt(rawURL) == ".svg" {
		return true
	}
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return strings.Contains(string(probe), "<svg")
}

// rasterExt picks a filename extension for an opaque raster payload:
// declared content type, then sniffed bytes, then the URL's extension,
// defaulting to .png.
func rasterExt(data []byte, ctype, rawURL string) string {
	if ext := mimeToExt[strings.Split(ctype, ";")[0]]; ext != "" {
		return ext
	}
	if ext := mimeToExt[strings.Split(http.DetectContentType(data), ";")[0]]; ext != "" {
		return ext
	}
	if ext := urlExt(rawURL); ext != "" {
		return ext
	}
	return ".png"
}

// urlExt returns the lowercase image extension from a URL path, or "".
func urlExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico":
		return ext
	}
	return ""
}
