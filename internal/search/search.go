package search

// DocIndex defines the interface for search-index operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type DocIndex interface {
	UpsertDoc(r DocRow, body string) error
	DeleteDoc(scopeName, path string) error
	GetChecksum(scopeName, path string) (string, error)
	AllChecksums(scopeName string) (map[string]string, error)
	Search(query, scopeName string, limit int) ([]Result, error)
	Close() error
}

// Verify *DB satisfies DocIndex at compile time.
var _ DocIndex = (*DB)(nil)
