package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ferrith/carta/internal/apperr"
)

func newTestFS(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	f, err := NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return f, dir
}

func TestWriteAndRead(t *testing.T) {
	f, _ := newTestFS(t)

	content := []byte("# Hello\n\nworld\n")
	if err := f.Write("notes/hello.md", content); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := f.Read("notes/hello.md")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesDirectories(t *testing.T) {
	f, dir := newTestFS(t)

	if err := f.Write("a/b/c/deep.md", []byte("deep")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "b", "c", "deep.md")); err != nil {
		t.Errorf("file not created on disk: %v", err)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	f, dir := newTestFS(t)

	if err := f.Write("doc.md", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".carta-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteOverwrite(t *testing.T) {
	f, _ := newTestFS(t)

	if err := f.Write("doc.md", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := f.Write("doc.md", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, err := f.Read("doc.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("expected v2, got %q", got)
	}
}

func TestReadNotFound(t *testing.T) {
	f, _ := newTestFS(t)

	_, err := f.Read("missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	f, _ := newTestFS(t)

	if err := f.Write("doc.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := f.Remove("doc.md"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := f.Read("doc.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
	if err := f.Remove("doc.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second remove should report ErrNotFound, got %v", err)
	}
}

func TestStat(t *testing.T) {
	f, _ := newTestFS(t)

	if err := f.Write("doc.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	info, err := f.Stat("doc.md")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.ModifiedAt.IsZero() {
		t.Error("expected non-zero modification time")
	}
	if _, err := f.Stat("missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPathTraversalBlocked(t *testing.T) {
	f, _ := newTestFS(t)

	bad := []string{
		"../outside.md",
		"../../etc/passwd",
		"a/../../outside.md",
		"/etc/passwd",
	}
	for _, p := range bad {
		if _, err := f.Read(p); !errors.Is(err, apperr.ErrOutOfBoundary) {
			t.Errorf("Read(%q): expected ErrOutOfBoundary, got %v", p, err)
		}
		if err := f.Write(p, []byte("x")); !errors.Is(err, apperr.ErrOutOfBoundary) {
			t.Errorf("Write(%q): expected ErrOutOfBoundary, got %v", p, err)
		}
	}
}

func TestListMarkdownOnly(t *testing.T) {
	f, _ := newTestFS(t)

	if err := f.Write("a.md", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := f.Write("sub/b.md", []byte("b")); err != nil {
		t.Fatal(err)
	}
	if err := f.Write("sub/c.txt", []byte("c")); err != nil {
		t.Fatal(err)
	}
	if err := f.Write(".index.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}

	files, err := f.List("")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	seen := map[string]bool{}
	for _, fi := range files {
		seen[fi.Path] = true
		if fi.Checksum == "" {
			t.Errorf("missing checksum for %s", fi.Path)
		}
	}
	if !seen["a.md"] || !seen["sub/b.md"] {
		t.Errorf("unexpected file set: %v", seen)
	}
}

func TestListSkipsHiddenDirs(t *testing.T) {
	f, dir := newTestFS(t)

	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".git", "hidden.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.Write("visible.md", []byte("x")); err != nil {
		t.Fatal(err)
	}

	files, err := f.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Path != "visible.md" {
		t.Errorf("expected only visible.md, got %v", files)
	}
}

func TestPruneEmptyAncestors(t *testing.T) {
	f, dir := newTestFS(t)

	if err := f.Write("a/b/c/doc.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := f.Remove("a/b/c/doc.md"); err != nil {
		t.Fatal(err)
	}
	if err := f.PruneEmptyAncestors("a/b/c/doc.md"); err != nil {
		t.Fatalf("PruneEmptyAncestors failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a")); !os.IsNotExist(err) {
		t.Errorf("expected a/ removed, stat err = %v", err)
	}
	// Root itself survives.
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("scope root must survive pruning: %v", err)
	}
}

func TestPruneStopsAtNonEmptyDir(t *testing.T) {
	f, dir := newTestFS(t)

	if err := f.Write("a/b/doc.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := f.Write("a/keep.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := f.Remove("a/b/doc.md"); err != nil {
		t.Fatal(err)
	}
	if err := f.PruneEmptyAncestors("a/b/doc.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "b")); !os.IsNotExist(err) {
		t.Errorf("expected a/b removed, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "keep.md")); err != nil {
		t.Errorf("sibling file must survive: %v", err)
	}
}

func TestPruneRemovesDirWithOnlyDotfiles(t *testing.T) {
	f, dir := newTestFS(t)

	if err := f.Write("a/doc.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a", ".DS_Store"), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.Remove("a/doc.md"); err != nil {
		t.Fatal(err)
	}
	if err := f.PruneEmptyAncestors("a/doc.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a")); !os.IsNotExist(err) {
		t.Errorf("dotfiles alone should not keep a directory alive, stat err = %v", err)
	}
}

func TestPruneLeavesDirWithRealFiles(t *testing.T) {
	f, dir := newTestFS(t)

	if err := f.Write("a/doc.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := f.Write("a/other.md", []byte("y")); err != nil {
		t.Fatal(err)
	}
	if err := f.Remove("a/doc.md"); err != nil {
		t.Fatal(err)
	}
	if err := f.PruneEmptyAncestors("a/doc.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a", "other.md")); err != nil {
		t.Errorf("directory with real files must not be pruned: %v", err)
	}
}

func TestNewFSRejectsMissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}
