// Package address classifies user-supplied document identifiers.
//
// An identifier is either a generated ID (scope-prefixed, see the scope
// package) or a relative slash-separated path. The scope may be supplied
// explicitly; otherwise it is inferred from the ID prefix, while path
// lookups fall back to the project-then-shared search order.
package address

import (
	"fmt"
	"strings"

	"github.com/ferrith/carta/internal/apperr"
	"github.com/ferrith/carta/internal/scope"
)

// Mode discriminates the two identifier kinds.
type Mode int

const (
	// ModeID means Value is a generated document ID.
	ModeID Mode = iota
	// ModePath means Value is a relative document path.
	ModePath
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	if m == ModeID {
		return "id"
	}
	return "path"
}

// Address is a resolved identifier.
type Address struct {
	Mode  Mode
	Value string

	// Scope is meaningful only when ScopeKnown is true. For ID-mode
	// addresses it always is; for path-mode addresses it is set only when
	// the caller supplied an explicit scope.
	Scope      scope.Scope
	ScopeKnown bool
}

// Scopes returns the scopes to search, in order. A known scope yields
// exactly that scope; an unknown one yields project then shared.
func (a Address) Scopes() []scope.Scope {
	if a.ScopeKnown {
		return []scope.Scope{a.Scope}
	}
	return scope.All()
}

// Resolve classifies identifier and binds it to a scope where possible.
// explicitScope is a scope name or empty. It fails with ErrInvalidAddress
// for an empty identifier, a bad scope name, or an ID that belongs to a
// different scope than the explicit one.
func Resolve(identifier, explicitScope string) (Address, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Address{}, fmt.Errorf("%w: empty identifier", apperr.ErrInvalidAddress)
	}

	var explicit scope.Scope
	haveExplicit := explicitScope != ""
	if haveExplicit {
		s, err := scope.Parse(explicitScope)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %v", apperr.ErrInvalidAddress, err)
		}
		explicit = s
	}

	if s, ok := scope.ForID(identifier); ok {
		if haveExplicit && explicit != s {
			return Address{}, fmt.Errorf("%w: id %s belongs to scope %s, not %s",
				apperr.ErrInvalidAddress, identifier, s, explicit)
		}
		return Address{Mode: ModeID, Value: identifier, Scope: s, ScopeKnown: true}, nil
	}

	path := strings.Trim(strings.ReplaceAll(identifier, "\\", "/"), "/")
	if path == "" {
		return Address{}, fmt.Errorf("%w: %q is not a usable path", apperr.ErrInvalidAddress, identifier)
	}

	addr := Address{Mode: ModePath, Value: path}
	if haveExplicit {
		addr.Scope = explicit
		addr.ScopeKnown = true
	}
	return addr, nil
}
