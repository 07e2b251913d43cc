package symbolindex

import "github.com/veldran/sigil/internal/models"

// SymbolIndex defines the interface for symbol index operations.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type SymbolIndex interface {
	UpsertFile(path, checksum string, decls []Declaration) error
	DeleteFile(path string) error
	Lookup(name string) ([]models.Location, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies SymbolIndex at compile time.
var _ SymbolIndex = (*DB)(nil)
