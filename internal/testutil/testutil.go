// Package testutil provides shared test helpers for setting up
// projects, caches, and symbol index databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/veldran/sigil/internal/cachestore"
	"github.com/veldran/sigil/internal/symbolindex"
	"github.com/veldran/sigil/internal/workspace"
)

// QuietLogger returns a logger that discards all output.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite symbol index that is automatically cleaned up.
func TestDB(t *testing.T) *symbolindex.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "sigil-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := symbolindex.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestProject creates a temporary project directory with a workspace provider.
func TestProject(t *testing.T) (string, *workspace.FS) {
	t.Helper()
	projectDir := t.TempDir()
	ws, err := workspace.NewFS(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	return projectDir, ws
}

// TestCache creates a temporary image cache store with its directory in place.
func TestCache(t *testing.T) (string, *cachestore.Store) {
	t.Helper()
	cacheDir := filepath.Join(t.TempDir(), "images")
	store, err := cachestore.New(cacheDir, QuietLogger())
	if err != nil {
		t.Fatal(err)
	}
	store.EnsureDir()
	return cacheDir, store
}

// WriteSource writes a project source file, creating parent directories.
func WriteSource(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
