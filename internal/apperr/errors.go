// Package apperr defines the sentinel errors shared by every layer.
// Callers distinguish failure kinds with errors.Is; any error that does not
// wrap one of these sentinels is an underlying I/O failure.
package apperr

import "errors"

var (
	// ErrNotFound means the address does not resolve to a document.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means a create or move destination is already occupied.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict means the supplied content hash no longer matches the stored one.
	ErrConflict = errors.New("conflict")
	// ErrInvalidAddress means the identifier is empty, malformed, or names an unknown scope.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrTextNotFound means a replace operation's target text is absent from the document.
	ErrTextNotFound = errors.New("text not found")
	// ErrOutOfBoundary means the path escapes its scope root.
	ErrOutOfBoundary = errors.New("path out of boundary")
	// ErrNoOp means source and destination of a move denote the same document.
	ErrNoOp = errors.New("source and destination are identical")
)
