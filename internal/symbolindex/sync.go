package symbolindex

import (
	"log/slog"

	"github.com/veldran/sigil/internal/checksum"
	"github.com/veldran/sigil/internal/workspace"
)

// Sync walks the project and brings the index up to date:
//   - new/changed files are scanned and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, ws workspace.Provider, logger *slog.Logger) error {
	metas, err := ws.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := ws.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile scans data for declarations and upserts them.
func indexFile(db *DB, path string, data []byte) error {
	decls := ScanDeclarations(data)
	return db.UpsertFile(path, checksum.Sum(data), decls)
}
