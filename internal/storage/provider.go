// Package storage implements boundary-checked file and directory primitives
// under a single scope root.
package storage

import "github.com/ferrith/carta/internal/models"

// Provider is the interface for scope-root file operations. All paths are
// relative to the scope root; anything resolving outside it is rejected.
type Provider interface {
	// Root returns the absolute path of the scope root.
	Root() string
	// List returns metadata for every .md file under dir (relative to the root).
	List(dir string) ([]models.FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Stat returns metadata for the file at path without reading it fully.
	Stat(path string) (models.FileInfo, error)
	// Write atomically writes content to path, creating missing directories.
	Write(path string, content []byte) error
	// Remove deletes the file at path.
	Remove(path string) error
	// PruneEmptyAncestors removes now-empty parent directories of path,
	// walking upward until the root or the first non-empty directory.
	PruneEmptyAncestors(path string) error
}
