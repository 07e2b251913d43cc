package cachestore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestWriteAndExists(t *testing.T) {
	s := tempStore(t)
	if s.Exists("abc-dark.svg") {
		t.Error("entry should not exist before write")
	}
	abs, err := s.Write("abc-dark.svg", []byte("<svg/>"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !s.Exists("abc-dark.svg") {
		t.Error("entry should exist after write")
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteOverwrites(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Write("x.png", []byte("old")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	abs, err := s.Write("x.png", []byte("new"))
	if err != nil {
		t.Fatalf("Write (second): %v", err)
	}
	data, _ := os.ReadFile(abs)
	if string(data) != "new" {
		t.Errorf("content = %q, want %q", data, "new")
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Write("a.svg", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestRejectsTraversal(t *testing.T) {
	s := tempStore(t)
	for _, name := range []string{"", "../escape.svg", "a/b.svg", ".."} {
		if _, err := s.Write(name, []byte("x")); err == nil {
			t.Errorf("Write(%q) should fail", name)
		}
		if s.Exists(name) {
			t.Errorf("Exists(%q) should be false", name)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	s, err := New(dir, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.EnsureDir()
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("cache dir not created: %v", err)
	}
}

func TestEnsureDir_FailureIsNonFatal(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	// A regular file where the cache dir should go makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := New(filepath.Join(blocker, "cache"), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.EnsureDir()
	if s.Exists("anything.svg") {
		t.Error("Exists should be false when the dir could not be created")
	}
}

func TestEvictOlderThan_Boundary(t *testing.T) {
	s := tempStore(t)
	maxAge := 24 * time.Hour

	old, _ := s.Write("old.svg", []byte("a"))
	fresh, _ := s.Write("fresh.svg", []byte("b"))

	// Just past the threshold and just inside it.
	oldMod := time.Now().Add(-maxAge - time.Millisecond)
	freshMod := time.Now().Add(-maxAge + time.Millisecond)
	if err := os.Chtimes(old, oldMod, oldMod); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if err := os.Chtimes(fresh, freshMod, freshMod); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	deleted, err := s.EvictOlderThan(maxAge)
	if err != nil {
		t.Fatalf("EvictOlderThan: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if s.Exists("old.svg") {
		t.Error("old entry should be evicted")
	}
	if !s.Exists("fresh.svg") {
		t.Error("fresh entry should be retained")
	}
}

func TestEvictOlderThan_MissingDir(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := New(filepath.Join(t.TempDir(), "never-created"), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	deleted, err := s.EvictOlderThan(time.Hour)
	if err != nil {
		t.Fatalf("EvictOlderThan on missing dir: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}
