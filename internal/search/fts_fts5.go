//go:build sqlite_fts5

package search

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS docs_fts USING fts5(
			scope UNINDEXED,
			path UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, scope, path, title, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM docs_fts WHERE scope = ? AND path = ?`, scope, path)
	_, err := tx.Exec(`INSERT INTO docs_fts (scope, path, title, body, tags) VALUES (?, ?, ?, ?, ?)`,
		scope, path, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("search: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, scope, path string) {
	_, _ = tx.Exec(`DELETE FROM docs_fts WHERE scope = ? AND path = ?`, scope, path)
}

// Search performs an FTS5 full-text search, optionally restricted to one
// scope (scopeName empty searches both).
func (db *DB) Search(query, scopeName string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.scope,
		       f.path,
		       d.doc_id,
		       f.title,
		       snippet(docs_fts, 3, '<b>', '</b>', '...', 64)
		FROM docs_fts f
		JOIN docs d ON d.scope = f.scope AND d.path = f.path
		WHERE docs_fts MATCH ?
		  AND (? = '' OR f.scope = ?)
		ORDER BY rank
		LIMIT ?
	`, query, scopeName, scopeName, limit)
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Scope, &r.Path, &r.DocID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
