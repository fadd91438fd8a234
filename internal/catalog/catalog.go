// Package catalog persists the ID↔path index of one scope.
//
// The index is a single JSON object ({"P001": "auth/jwt.md", ...}) stored as
// a dotfile at the scope root. It is loaded once, mutated in memory, and the
// whole file is rewritten atomically on every structural change. The catalog
// is the authority for ID existence and ID→path; the filesystem stays the
// authority for content.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ferrith/carta/internal/apperr"
	"github.com/ferrith/carta/internal/scope"
	"github.com/ferrith/carta/internal/storage"
)

// FileName is the index file kept at each scope root. The leading dot keeps
// it out of document listings and directory pruning decisions.
const FileName = ".index.json"

// Catalog is the in-memory ID↔path index of one scope, backed by a JSON file.
// All mutations are serialized on an internal mutex, which makes ID
// allocation atomic with respect to index persistence.
type Catalog struct {
	scope scope.Scope
	store storage.Provider

	mu      sync.Mutex
	entries map[string]string // id → relative path
}

// Open loads the scope's index file through store. An absent file is an
// empty index, not an error.
func Open(s scope.Scope, store storage.Provider) (*Catalog, error) {
	c := &Catalog{scope: s, store: store, entries: map[string]string{}}

	data, err := store.Read(FileName)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c, nil
		}
		return nil, fmt.Errorf("catalog: load %s index: %w", s, err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("catalog: parse %s index: %w", s, err)
	}
	if c.entries == nil {
		c.entries = map[string]string{}
	}
	return c, nil
}

// Scope returns the scope this catalog indexes.
func (c *Catalog) Scope() scope.Scope {
	return c.scope
}

// AllocateID mints the next ID for this scope: maximum numeric suffix among
// existing IDs plus one, zero-padded to at least the minimum width. IDs are
// never reused, even after deletions, for the lifetime of the index file.
//
// Allocation does not persist anything by itself; pair it with Put inside
// one structural operation.
func (c *Catalog) AllocateID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope.FormatID(c.maxSuffixLocked() + 1)
}

func (c *Catalog) maxSuffixLocked() int {
	maxN := 0
	prefix := c.scope.Prefix()
	for id := range c.entries {
		if !c.scope.MatchesID(id) {
			continue
		}
		n, err := strconv.Atoi(id[len(prefix):])
		if err != nil {
			continue
		}
		if n > maxN {
			maxN = n
		}
	}
	return maxN
}

// Insert allocates a fresh ID, binds it to path, and persists the index in
// one critical section. This is what create and move use so that two racing
// creates cannot mint the same ID.
func (c *Catalog) Insert(path string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.scope.FormatID(c.maxSuffixLocked() + 1)
	c.entries[id] = path
	if err := c.saveLocked(); err != nil {
		delete(c.entries, id)
		return "", err
	}
	return id, nil
}

// Put binds id to path and persists the index.
func (c *Catalog) Put(id, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, had := c.entries[id]
	c.entries[id] = path
	if err := c.saveLocked(); err != nil {
		if had {
			c.entries[id] = prev
		} else {
			delete(c.entries, id)
		}
		return err
	}
	return nil
}

// Remove drops id from the index and persists. Removing an absent id is a
// no-op.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, had := c.entries[id]
	if !had {
		return nil
	}
	delete(c.entries, id)
	if err := c.saveLocked(); err != nil {
		c.entries[id] = prev
		return err
	}
	return nil
}

// PathFor returns the path bound to id.
func (c *Catalog) PathFor(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[id]
	return p, ok
}

// IDForPath returns the id bound to path, scanning the inverse mapping.
// At most one live document exists per (scope, path) pair.
func (c *Catalog) IDForPath(path string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, p := range c.entries {
		if p == path {
			return id, true
		}
	}
	return "", false
}

// Entries returns a copy of the id→path map.
func (c *Catalog) Entries() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.entries))
	for id, p := range c.entries {
		out[id] = p
	}
	return out
}

// Len returns the number of indexed documents.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// saveLocked rewrites the whole index file atomically. Callers hold c.mu.
func (c *Catalog) saveLocked() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("catalog: encode %s index: %w", c.scope, err)
	}
	if err := c.store.Write(FileName, append(data, '\n')); err != nil {
		return fmt.Errorf("catalog: save %s index: %w", c.scope, err)
	}
	return nil
}
