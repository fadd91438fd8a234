package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PruneEmptyAncestors walks upward from the parent directory of path,
// deleting each directory that holds nothing but dotfiles, and stops at the
// first non-empty directory. The scope root itself is never deleted.
//
// Dotfiles (hidden bookkeeping markers) do not keep a directory alive, but
// they are removed along with it.
func (f *FS) PruneEmptyAncestors(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	for dir != f.root && strings.HasPrefix(dir, f.root+string(os.PathSeparator)) {
		empty, err := emptyIgnoringDotfiles(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Already gone; keep walking up.
				dir = filepath.Dir(dir)
				continue
			}
			return fmt.Errorf("storage: prune %s: %w", dir, err)
		}
		if !empty {
			return nil
		}
		// RemoveAll also sweeps any dotfiles the directory still holds.
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("storage: prune %s: %w", dir, err)
		}
		dir = filepath.Dir(dir)
	}
	return nil
}

// emptyIgnoringDotfiles reports whether dir has no entries other than names
// beginning with a dot.
func emptyIgnoringDotfiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			return false, nil
		}
	}
	return true, nil
}
