// Package docservice is the orchestrator: it composes address resolution,
// the per-scope catalogs, and the storage primitives into the public
// document operations.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ferrith/carta/internal/address"
	"github.com/ferrith/carta/internal/apperr"
	"github.com/ferrith/carta/internal/catalog"
	"github.com/ferrith/carta/internal/checksum"
	"github.com/ferrith/carta/internal/editop"
	"github.com/ferrith/carta/internal/models"
	"github.com/ferrith/carta/internal/parser"
	"github.com/ferrith/carta/internal/scope"
	"github.com/ferrith/carta/internal/search"
	"github.com/ferrith/carta/internal/storage"
)

// LockMode selects how EditLatest and DeleteLatest treat the caller's hash.
type LockMode int

const (
	// Optimistic requires the supplied base hash to match the stored one;
	// a stale hash fails with ErrConflict.
	Optimistic LockMode = iota
	// LastWriteWins skips the hash check entirely. This is a deliberate,
	// named mode (not an implicit default): callers that cannot remember a
	// hash opt into overwrite semantics explicitly.
	LastWriteWins
)

// scopeHandle bundles one scope's storage and catalog with the mutex that
// serializes its structural mutations (create, delete, move). Without it,
// two racing creates could mint colliding IDs or lose an index update.
type scopeHandle struct {
	store storage.Provider
	cat   *catalog.Catalog
	mu    sync.Mutex
}

// Service exposes the public document operations over the two scopes.
type Service struct {
	scopes map[scope.Scope]*scopeHandle
	idx    search.DocIndex // optional; nil disables search indexing
}

// NewService opens the catalogs of both scope roots and returns the
// orchestrator. idx may be nil when search indexing is not wanted.
func NewService(stores map[scope.Scope]storage.Provider, idx search.DocIndex) (*Service, error) {
	svc := &Service{scopes: make(map[scope.Scope]*scopeHandle, len(stores)), idx: idx}
	for _, s := range scope.All() {
		store, ok := stores[s]
		if !ok {
			return nil, fmt.Errorf("docservice: no store for scope %s", s)
		}
		cat, err := catalog.Open(s, store)
		if err != nil {
			return nil, err
		}
		svc.scopes[s] = &scopeHandle{store: store, cat: cat}
	}
	return svc, nil
}

// Catalog returns the catalog of one scope, for sync and watcher wiring.
func (svc *Service) Catalog(s scope.Scope) *catalog.Catalog {
	return svc.scopes[s].cat
}

// Store returns the storage provider of one scope.
func (svc *Service) Store(s scope.Scope) storage.Provider {
	return svc.scopes[s].store
}

// Create mints a new ID and writes a document at the given path. The
// identifier must be a path; the scope defaults to project when omitted.
// It fails with ErrAlreadyExists when the (scope, path) pair is taken.
func (svc *Service) Create(ctx context.Context, identifier, scopeName, content string) (*models.Document, error) {
	addr, err := address.Resolve(identifier, scopeName)
	if err != nil {
		return nil, err
	}
	if addr.Mode != address.ModePath {
		return nil, fmt.Errorf("%w: create needs a path, not an id", apperr.ErrInvalidAddress)
	}
	s := scope.Project
	if addr.ScopeKnown {
		s = addr.Scope
	}
	path := docPath(addr.Value)

	h := svc.scopes[s]
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, taken := h.cat.IDForPath(path); taken {
		return nil, fmt.Errorf("docservice: %s in scope %s: %w", path, s, apperr.ErrAlreadyExists)
	}
	if _, err := h.store.Stat(path); err == nil {
		return nil, fmt.Errorf("docservice: %s in scope %s: %w", path, s, apperr.ErrAlreadyExists)
	}

	id := h.cat.AllocateID()
	data := []byte(content)
	if err := h.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := h.cat.Put(id, path); err != nil {
		return nil, err
	}

	svc.reindex(s, path, id, data)
	return svc.buildDocument(s, id, path, data), nil
}

// Read resolves the address and returns the full document. Path-mode
// addresses without an explicit scope try project first, then shared.
func (svc *Service) Read(ctx context.Context, identifier, scopeName string) (*models.Document, error) {
	s, id, path, err := svc.locate(identifier, scopeName)
	if err != nil {
		return nil, err
	}
	data, err := svc.scopes[s].store.Read(path)
	if err != nil {
		return nil, err
	}
	return svc.buildDocument(s, id, path, data), nil
}

// EditResult is the outcome of a successful EditLatest.
type EditResult struct {
	NewHash string `json:"new_hash"`
	Applied int    `json:"applied"`
}

// EditLatest applies ops in order against the current content and writes the
// result once. In Optimistic mode the write is rejected with ErrConflict if
// baseHash differs from the stored hash, so edits against a stale read never
// land. The hash check and the write are not atomic against other writers;
// serializing writers per document is a caller concern beyond the per-scope
// structural lock.
func (svc *Service) EditLatest(ctx context.Context, identifier, scopeName string, lock LockMode, baseHash string, ops []editop.Op) (*EditResult, error) {
	s, id, path, err := svc.locate(identifier, scopeName)
	if err != nil {
		return nil, err
	}
	store := svc.scopes[s].store

	data, err := store.Read(path)
	if err != nil {
		return nil, err
	}
	current := checksum.Sum(data)
	if lock == Optimistic {
		if baseHash == "" {
			return nil, fmt.Errorf("%w: optimistic edit needs a base hash", apperr.ErrInvalidAddress)
		}
		if baseHash != current {
			return nil, fmt.Errorf("docservice: base hash %s is stale: %w", baseHash, apperr.ErrConflict)
		}
	}

	next, applied, err := editop.Apply(string(data), ops)
	if err != nil {
		return nil, err
	}
	out := []byte(next)
	if err := store.Write(path, out); err != nil {
		return nil, err
	}

	svc.reindex(s, path, id, out)
	return &EditResult{NewHash: checksum.Sum(out), Applied: applied}, nil
}

// DeleteLatest removes a document, its catalog entry, and any now-empty
// ancestor directories. It is idempotent: an address that no longer resolves
// returns (false, nil) so callers may retry deletes safely. A non-empty
// expectedHash that mismatches the stored content fails with ErrConflict.
func (svc *Service) DeleteLatest(ctx context.Context, identifier, scopeName, expectedHash string) (bool, error) {
	s, id, path, err := svc.locate(identifier, scopeName)
	if err != nil {
		if isGone(err) {
			return false, nil
		}
		return false, err
	}

	h := svc.scopes[s]
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := h.store.Read(path)
	if err != nil {
		if isGone(err) {
			// File already gone; drop the stale catalog entry and report done.
			_ = h.cat.Remove(id)
			return false, nil
		}
		return false, err
	}
	if expectedHash != "" && expectedHash != checksum.Sum(data) {
		return false, fmt.Errorf("docservice: expected hash %s is stale: %w", expectedHash, apperr.ErrConflict)
	}

	if err := h.store.Remove(path); err != nil && !isGone(err) {
		return false, err
	}
	if err := h.cat.Remove(id); err != nil {
		return false, err
	}
	if err := h.store.PruneEmptyAncestors(path); err != nil {
		return false, err
	}

	if svc.idx != nil {
		_ = svc.idx.DeleteDoc(s.String(), path)
	}
	return true, nil
}

// Move relocates a document: read source, create at destination (minting a
// new ID, even for a same-scope rename), delete source. The destination
// scope defaults to the source's scope when omitted.
func (svc *Service) Move(ctx context.Context, source, destination, sourceScope, destinationScope string) (*models.Document, error) {
	src, err := svc.Read(ctx, source, sourceScope)
	if err != nil {
		return nil, err
	}

	dstAddr, err := address.Resolve(destination, destinationScope)
	if err != nil {
		return nil, err
	}
	if dstAddr.Mode != address.ModePath {
		return nil, fmt.Errorf("%w: move destination needs a path, not an id", apperr.ErrInvalidAddress)
	}
	dstScope, err := scope.Parse(src.Scope)
	if err != nil {
		return nil, err
	}
	if dstAddr.ScopeKnown {
		dstScope = dstAddr.Scope
	}
	dstPath := docPath(dstAddr.Value)

	if src.Scope == dstScope.String() && src.Path == dstPath {
		return nil, fmt.Errorf("docservice: move %s: %w", src.Path, apperr.ErrNoOp)
	}
	if _, taken := svc.scopes[dstScope].cat.IDForPath(dstPath); taken {
		return nil, fmt.Errorf("docservice: %s in scope %s: %w", dstPath, dstScope, apperr.ErrAlreadyExists)
	}

	doc, err := svc.Create(ctx, dstPath, dstScope.String(), src.Content)
	if err != nil {
		return nil, err
	}
	if _, err := svc.DeleteLatest(ctx, src.ID, src.Scope, ""); err != nil {
		return nil, fmt.Errorf("docservice: move: source cleanup: %w", err)
	}
	return doc, nil
}

// ListFilter narrows a List call.
type ListFilter struct {
	ScopeName      string // empty lists both scopes with override annotations
	PathPrefix     string
	IncludeContent bool // extract synopses from document front matter
}

// List returns the documents matching the filter, sorted by path (project
// before shared for equal paths). When no scope is given, a project document
// whose path also exists in shared is tagged as overriding it, and the
// shared one as overridden.
func (svc *Service) List(ctx context.Context, filter ListFilter) ([]models.ListItem, error) {
	scopes := scope.All()
	if filter.ScopeName != "" {
		s, err := scope.Parse(filter.ScopeName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidAddress, err)
		}
		scopes = []scope.Scope{s}
	}
	bothScopes := len(scopes) == 2

	pathsByScope := make(map[scope.Scope]map[string]struct{}, len(scopes))
	if bothScopes {
		for _, s := range scopes {
			set := make(map[string]struct{})
			for _, p := range svc.scopes[s].cat.Entries() {
				set[p] = struct{}{}
			}
			pathsByScope[s] = set
		}
	}

	var items []models.ListItem
	for _, s := range scopes {
		h := svc.scopes[s]
		for id, p := range h.cat.Entries() {
			if filter.PathPrefix != "" && !strings.HasPrefix(p, filter.PathPrefix) {
				continue
			}
			item := models.ListItem{ID: id, Path: p, Scope: s.String()}
			if fi, err := h.store.Stat(p); err == nil {
				item.ModifiedAt = fi.ModifiedAt
			}
			if filter.IncludeContent {
				if data, err := h.store.Read(p); err == nil {
					item.Synopsis = parser.Parse(data).Synopsis
				}
			}
			if bothScopes {
				switch s {
				case scope.Project:
					if _, shadowed := pathsByScope[scope.Shared][p]; shadowed {
						item.Override = models.OverrideShadows
					}
				case scope.Shared:
					if _, shadows := pathsByScope[scope.Project][p]; shadows {
						item.Override = models.OverrideShadowed
					}
				}
			}
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Path != items[j].Path {
			return items[i].Path < items[j].Path
		}
		return items[i].Scope < items[j].Scope
	})
	return items, nil
}

// Search delegates full-text search to the search index. scopeName may be
// empty to search both scopes.
func (svc *Service) Search(ctx context.Context, query, scopeName string, limit int) ([]search.Result, error) {
	if scopeName != "" {
		if _, err := scope.Parse(scopeName); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidAddress, err)
		}
	}
	if svc.idx == nil {
		return nil, nil
	}
	return svc.idx.Search(query, scopeName, limit)
}

// locate resolves an identifier to a concrete (scope, id, path) triple.
// Both the catalog entry and its scope are required; a path present on disk
// but absent from the catalog is an orphan and resolves to ErrNotFound.
func (svc *Service) locate(identifier, scopeName string) (scope.Scope, string, string, error) {
	addr, err := address.Resolve(identifier, scopeName)
	if err != nil {
		return 0, "", "", err
	}

	if addr.Mode == address.ModeID {
		h := svc.scopes[addr.Scope]
		path, ok := h.cat.PathFor(addr.Value)
		if !ok {
			return 0, "", "", fmt.Errorf("docservice: id %s: %w", addr.Value, apperr.ErrNotFound)
		}
		return addr.Scope, addr.Value, path, nil
	}

	path := docPath(addr.Value)
	for _, s := range addr.Scopes() {
		if id, ok := svc.scopes[s].cat.IDForPath(path); ok {
			return s, id, path, nil
		}
	}
	return 0, "", "", fmt.Errorf("docservice: path %s: %w", path, apperr.ErrNotFound)
}

// docPath normalizes a user-supplied relative path to the stored form,
// appending the document extension when missing.
func docPath(p string) string {
	if !strings.HasSuffix(p, ".md") {
		return p + ".md"
	}
	return p
}

func (svc *Service) buildDocument(s scope.Scope, id, path string, data []byte) *models.Document {
	res := parser.Parse(data)
	modified := time.Now()
	if fi, err := svc.scopes[s].store.Stat(path); err == nil {
		modified = fi.ModifiedAt
	}
	return &models.Document{
		ID:         id,
		Path:       path,
		Scope:      s.String(),
		Content:    string(data),
		Hash:       checksum.Sum(data),
		Synopsis:   res.Synopsis,
		ModifiedAt: modified,
	}
}

// reindex refreshes the search index after a successful write. Search is
// advisory, so indexing failures never fail the operation.
func (svc *Service) reindex(s scope.Scope, path, id string, data []byte) {
	if svc.idx == nil {
		return
	}
	res := parser.Parse(data)
	_ = svc.idx.UpsertDoc(search.DocRow{
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

func isGone(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
