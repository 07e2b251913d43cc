// Package cachestore manages the directory of content-addressed image
// files. It is the only component allowed to write into the cache dir.
package cachestore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store owns a single flat cache directory. Filenames are derived from
// content hashes by the caller; the store only guards, writes, and evicts.
type Store struct {
	root   string // absolute path to the cache directory
	logger *slog.Logger
}

// New creates a store rooted at dir. The directory does not need to
// exist yet; call EnsureDir before first use.
func New(dir string, logger *slog.Logger) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cachestore: resolve root: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: abs, logger: logger}, nil
}

// Root returns the absolute cache directory path.
func (s *Store) Root() string {
	return s.root
}

// EnsureDir creates the cache directory if absent. Failure is logged and
// swallowed: the pipeline degrades to re-fetching, it does not abort.
func (s *Store) EnsureDir() {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		s.logger.Warn("cachestore: create dir failed",
			slog.String("dir", s.root),
			slog.String("error", err.Error()))
	}
}

// safeName validates that name is a plain filename (no separators, no
// traversal) and returns its absolute path under the cache root.
func (s *Store) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("cachestore: empty name")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("cachestore: invalid name: %s", name)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Path returns the absolute path a cache entry with the given name
// resolves to, without touching the filesystem.
func (s *Store) Path(name string) (string, error) {
	return s.safeName(name)
}

// Exists reports whether an entry with the given name is present.
func (s *Store) Exists(name string) bool {
	abs, err := s.safeName(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// Write atomically persists data under name: tmp file → fsync → rename.
// A concurrent reader never observes a partial entry, and a failed write
// leaves no file behind.
func (s *Store) Write(name string, data []byte) (string, error) {
	abs, err := s.safeName(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("cachestore: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, ".sigil-tmp-*")
	if err != nil {
		return "", fmt.Errorf("cachestore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("cachestore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("cachestore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("cachestore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return "", fmt.Errorf("cachestore: rename: %w", err)
	}
	success = true
	return abs, nil
}

// EvictOlderThan deletes entries whose age strictly exceeds maxAge and
// returns the number deleted. Individual stat or delete failures are
// logged and skipped so one bad entry never stalls the sweep.
func (s *Store) EvictOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("cachestore: list: %w", err)
	}

	now := time.Now()
	deleted := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			s.logger.Warn("cachestore: stat failed",
				slog.String("name", e.Name()),
				slog.String("error", err.Error()))
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, e.Name())); err != nil {
			s.logger.Warn("cachestore: delete failed",
				slog.String("name", e.Name()),
				slog.String("error", err.Error()))
			continue
		}
		deleted++
		s.logger.Debug("cachestore: evicted", slog.String("name", e.Name()))
	}
	return deleted, nil
}
