// Package testutil provides shared test helpers for setting up scope roots,
// search databases, and the document service.
package testutil

import (
	"os"
	"testing"

	"github.com/ferrith/carta/internal/docservice"
	"github.com/ferrith/carta/internal/scope"
	"github.com/ferrith/carta/internal/search"
	"github.com/ferrith/carta/internal/storage"
)

// TestDB creates a temporary SQLite search database that is automatically
// cleaned up.
func TestDB(t *testing.T) *search.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "carta-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := search.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStores creates one temporary root per scope with a storage.Provider
// each. The returned roots map is keyed the same way.
func TestStores(t *testing.T) (map[scope.Scope]storage.Provider, map[scope.Scope]string) {
	t.Helper()
	stores := make(map[scope.Scope]storage.Provider, 2)
	roots := make(map[scope.Scope]string, 2)
	for _, s := range scope.All() {
		dir := t.TempDir()
		store, err := storage.NewFS(dir)
		if err != nil {
			t.Fatal(err)
		}
		stores[s] = store
		roots[s] = dir
	}
	return stores, roots
}

// TestService creates a document service over temporary scope roots and a
// temporary search database.
func TestService(t *testing.T) (*docservice.Service, map[scope.Scope]string) {
	t.Helper()
	stores, roots := TestStores(t)
	svc, err := docservice.NewService(stores, TestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	return svc, roots
}
