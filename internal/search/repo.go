package search

import (
	"encoding/json"
	"fmt"
	"time"
)

// DocRow represents a row in the docs table.
type DocRow struct {
	Scope     string
	Path      string
	DocID     string
	Title     string
	Synopsis  string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// Result represents one search hit.
type Result struct {
	Scope   string `json:"scope"`
	Path    string `json:"path"`
	DocID   string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet"`
}

// UpsertDoc inserts or replaces a document row and its FTS entry within a
// transaction.
func (db *DB) UpsertDoc(r DocRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(r.Tags)

	_, err = tx.Exec(`
		INSERT INTO docs (scope, path, doc_id, title, synopsis, checksum, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scope, path) DO UPDATE SET
			doc_id     = excluded.doc_id,
			title      = excluded.title,
			synopsis   = excluded.synopsis,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, r.Scope, r.Path, r.DocID, r.Title, r.Synopsis, r.Checksum, string(tagsJSON), body, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("search: upsert doc: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, r.Scope, r.Path, r.Title, body, r.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteDoc removes a document row and its FTS entry.
func (db *DB) DeleteDoc(scopeName, path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, scopeName, path)
	_, _ = tx.Exec(`DELETE FROM docs WHERE scope = ? AND path = ?`, scopeName, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string
// if not indexed.
func (db *DB) GetChecksum(scopeName, path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM docs WHERE scope = ? AND path = ?`, scopeName, path).Scan(&cs)
	if err != nil {
		return "", nil // not indexed is fine
	}
	return cs, nil
}

// AllChecksums returns path→checksum for every indexed document in a scope.
func (db *DB) AllChecksums(scopeName string) (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM docs WHERE scope = ?`, scopeName)
	if err != nil {
		return nil, fmt.Errorf("search: all checksums: %w", err)
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
