package symbolindex

import (
	"fmt"
	"time"

	"github.com/veldran/sigil/internal/models"
)

// UpsertFile replaces a file's row and its symbols within a transaction.
func (db *DB) UpsertFile(path, checksum string, decls []Declaration) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("symbolindex: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, path, checksum, time.Now())
	if err != nil {
		return fmt.Errorf("symbolindex: upsert file: %w", err)
	}

	// Replace symbols: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM symbols WHERE path = ?`, path)
	if len(decls) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO symbols (path, name, kind, line, col) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("symbolindex: prepare symbol insert: %w", err)
		}
		defer stmt.Close()
		for _, d := range decls {
			if _, err := stmt.Exec(path, d.Name, d.Kind, d.Line, d.Column); err != nil {
				return fmt.Errorf("symbolindex: insert symbol: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file and its symbols.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("symbolindex: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM symbols WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// Lookup returns the declaration locations of an exported symbol,
// ordered by path then line.
func (db *DB) Lookup(name string) ([]models.Location, error) {
	rows, err := db.conn.Query(`
		SELECT path, line, col FROM symbols WHERE name = ? ORDER BY path, line
	`, name)
	if err != nil {
		return nil, fmt.Errorf("symbolindex: lookup: %w", err)
	}
	defer rows.Close()

	var out []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.URI, &loc.Position.Line, &loc.Position.Column); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// AllChecksums returns every indexed path mapped to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("symbolindex: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
