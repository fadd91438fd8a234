package search

import (
	"log/slog"
	"time"

	"github.com/ferrith/carta/internal/catalog"
	"github.com/ferrith/carta/internal/checksum"
	"github.com/ferrith/carta/internal/parser"
	"github.com/ferrith/carta/internal/scope"
	"github.com/ferrith/carta/internal/storage"
)

// Sync walks one scope root and brings the search index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, s scope.Scope, store storage.Provider, cat *catalog.Catalog, logger *slog.Logger) error {
	infos, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums(s.String())
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, fi := range infos {
		disk[fi.Path] = struct{}{}

		if checksums[fi.Path] == fi.Checksum {
			continue
		}

		data, err := store.Read(fi.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, s, cat, fi.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("scope", s.String()), slog.String("path", fi.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDoc(s.String(), p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("scope", s.String()), slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data and upserts it into the search index. The document
// ID is looked up in the catalog; files the catalog does not know (orphans)
// are still searchable, just without an ID.
func indexFile(db *DB, s scope.Scope, cat *catalog.Catalog, path string, data []byte) error {
	res := parser.Parse(data)
	id, _ := cat.IDForPath(path)

	return db.UpsertDoc(DocRow{
		Scope:     s.String(),
		Path:      path,
		DocID:     id,
		Title:     res.Title,
		Synopsis:  res.Synopsis,
		Checksum:  checksum.Sum(data),
		Tags:      res.Tags,
		UpdatedAt: time.Now(),
	}, res.Body)
}
