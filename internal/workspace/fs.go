// Package workspace provides read-only access to the project tree the
// symbol index and resolver operate over.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/veldran/sigil/internal/checksum"
)

// Source file extensions considered for symbol indexing.
var sourceExts = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".mjs": true, ".cjs": true,
}

// FileMetadata describes one source file under the project root.
type FileMetadata struct {
	Path      string // relative to the project root, forward slashes
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for project file access.
type Provider interface {
	// List returns metadata for every source file under dir (relative
	// to the project root).
	List(dir string) ([]FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// OpenDocument returns the file's text; it satisfies the
	// resolver's document-open capability.
	OpenDocument(ctx context.Context, uri string) (string, error)
}

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the project root
}

// NewFS creates a provider rooted at the given directory, which must
// already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute project root.
func (f *FS) Root() string {
	return f.root
}

// IsSourceFile reports whether path carries an indexable extension.
func IsSourceFile(path string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(path))]
}

// safePath resolves a relative path against the project root and
// rejects any result that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("workspace: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("workspace: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("workspace: path escapes project root: %s", rel)
	}
	return abs, nil
}

// List walks dir (relative to root) and returns metadata for every
// source file, skipping node_modules and dot directories.
func (f *FS) List(dir string) ([]FileMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []FileMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			name := d.Name()
			if p != base && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(p) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, FileMetadata{
			Path:      filepath.ToSlash(rel),
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workspace: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a project file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace: read %s: %w", path, err)
	}
	return data, nil
}

// OpenDocument loads a project file's text.
func (f *FS) OpenDocument(_ context.Context, uri string) (string, error) {
	data, err := f.Read(uri)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
