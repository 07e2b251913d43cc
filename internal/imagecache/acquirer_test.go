package imagecache

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/veldran/sigil/internal/cachestore"
	"github.com/veldran/sigil/internal/models"
)

func testAcquirer(t *testing.T) *Acquirer {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := cachestore.New(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	store.EnsureDir()
	return New(store, "#ffffff", logger)
}

func TestAcquire_RemoteSVGCachedOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(`<svg viewBox="0 0 24 24"><path fill="currentColor"/></svg>`))
	}))
	defer srv.Close()

	a := testAcquirer(t)
	ctx := context.Background()

	first, err := a.Acquire(ctx, models.PreviewRef(srv.URL+"/icon.svg"), models.ThemeDark, 0)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	second, err := a.Acquire(ctx, models.PreviewRef(srv.URL+"/icon.svg"), models.ThemeDark, 0)
	if err != nil {
		t.Fatalf("Acquire (cached): %v", err)
	}
	if first != second {
		t.Errorf("paths differ: %q vs %q", first, second)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}

	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read cached file: %v", err)
	}
	if strings.Contains(strings.ToLower(string(data)), "currentcolor") {
		t.Error("cached SVG still contains currentColor")
	}
	if !strings.HasSuffix(first, "-dark.svg") {
		t.Errorf("filename = %q, want -dark.svg suffix", first)
	}
}

func TestAcquire_ExtensionlessRasterCachedOnce(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(gif)
	}))
	defer srv.Close()

	a := testAcquirer(t)
	ctx := context.Background()
	ref := models.PreviewRef(srv.URL + "/icon")

	first, err := a.Acquire(ctx, ref, models.ThemeDark, 0)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !strings.HasSuffix(first, "-dark.gif") {
		t.Errorf("path = %q, want -dark.gif suffix", first)
	}
	second, err := a.Acquire(ctx, ref, models.ThemeDark, 0)
	if err != nil {
		t.Fatalf("Acquire (cached): %v", err)
	}
	if first != second {
		t.Errorf("paths differ: %q vs %q", first, second)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestAcquire_ThemeAndSizeKeySeparation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(`<svg><path fill="#000"/></svg>`))
	}))
	defer srv.Close()

	a := testAcquirer(t)
	ctx := context.Background()
	ref := models.PreviewRef(srv.URL + "/i.svg")

	dark, _ := a.Acquire(ctx, ref, models.ThemeDark, 0)
	light, _ := a.Acquire(ctx, ref, models.ThemeLight, 0)
	sized, _ := a.Acquire(ctx, ref, models.ThemeDark, 16)
	hc, _ := a.Acquire(ctx, ref, models.ThemeHighContrast, 0)

	if dark == light {
		t.Error("dark and light must map to distinct entries")
	}
	if dark == sized {
		t.Error("sized variant must map to a distinct entry")
	}
	if !strings.HasSuffix(sized, "-dark-16px.svg") {
		t.Errorf("sized filename = %q", sized)
	}
	if hc != dark {
		t.Errorf("high contrast should share dark's entry: %q vs %q", hc, dark)
	}
}

func TestAcquire_RedirectRelativeLocation(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/start":
			w.Header().Set("Location", "/new/path.svg")
			w.WriteHeader(http.StatusFound)
		case "/new/path.svg":
			w.Header().Set("Content-Type", "image/svg+xml")
			_, _ = w.Write([]byte(`<svg><path fill="#000"/></svg>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := testAcquirer(t)
	if _, err := a.Acquire(context.Background(), models.PreviewRef(srv.URL+"/start"), models.ThemeDark, 0); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/start" || paths[1] != "/new/path.svg" {
		t.Errorf("request paths = %v", paths)
	}
}

func TestAcquire_Non200IsTaggedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := testAcquirer(t)
	ref := models.PreviewRef(srv.URL + "/missing.svg")
	_, err := a.Acquire(context.Background(), ref, models.ThemeDark, 0)
	if err == nil {
		t.Fatal("expected error on 404")
	}
	var ae *AcquireError
	if !errors.As(err, &ae) {
		t.Fatalf("error type = %T, want *AcquireError", err)
	}
	if ae.Ref != ref {
		t.Errorf("error ref = %q, want %q", ae.Ref, ref)
	}
}

func TestAcquire_FailedFetchLeavesNoCacheEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := testAcquirer(t)
	_, err := a.Acquire(context.Background(), models.PreviewRef(srv.URL+"/x.svg"), models.ThemeDark, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	entries, _ := os.ReadDir(a.store.Root())
	if len(entries) != 0 {
		t.Errorf("cache dir should be empty after failure, has %d entries", len(entries))
	}
}

func TestAcquire_EmbeddedPNG(t *testing.T) {
	// Minimal PNG header bytes; enough for sniffing.
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	ref := models.PreviewRef("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))

	a := testAcquirer(t)
	path, err := a.Acquire(context.Background(), ref, models.ThemeLight, 0)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !strings.HasSuffix(path, "-light.png") {
		t.Errorf("path = %q, want -light.png suffix", path)
	}
	data, _ := os.ReadFile(path)
	if len(data) != len(png) {
		t.Errorf("raster payload must persist verbatim: %d bytes, want %d", len(data), len(png))
	}
}

func TestAcquire_EmbeddedSVGTransformed(t *testing.T) {
	svg := `<svg viewBox="0 0 24 24"><path fill="currentColor"/></svg>`
	ref := models.PreviewRef("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)))

	a := testAcquirer(t)
	path, err := a.Acquire(context.Background(), ref, models.ThemeDark, 0)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(strings.ToLower(string(data)), "currentcolor") {
		t.Error("embedded SVG should be transformed before caching")
	}
}

func TestAcquire_MalformedDataURI(t *testing.T) {
	a := testAcquirer(t)
	_, err := a.Acquire(context.Background(), models.PreviewRef("data:image/png;base64,%%%"), models.ThemeDark, 0)
	var ae *AcquireError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *AcquireError, got %v", err)
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://lucide.dev/icons/alarm-clock", "https://unpkg.com/lucide-static@latest/icons/alarm-clock.svg"},
		{"https://tabler.io/icons/icon/home", "https://unpkg.com/@tabler/icons@latest/icons/outline/home.svg"},
		{"https://example.com/icons/home", "https://example.com/icons/home"},
	}
	for _, c := range cases {
		if got := normalizeURL(c.in); got != c.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUrlExt(t *testing.T) {
	if got := urlExt("https://a.b/c/d.SVG?x=1"); got != ".svg" {
		t.Errorf("urlExt = %q, want .svg", got)
	}
	if got := urlExt("https://a.b/c/d"); got != "" {
		t.Errorf("urlExt = %q, want empty", got)
	}
	if got := urlExt("https://a.b/page.html"); got != "" {
		t.Errorf("urlExt = %q, want empty for non-image ext", got)
	}
}
