// Package scope defines the two document namespaces and their ID scheme.
//
// A document ID is a fixed alphabetic prefix followed by a zero-padded
// decimal counter of at least three digits (P001, S042, P1000, ...). The two
// scopes use disjoint prefixes, so an ID alone is enough to pick its scope.
package scope

import (
	"fmt"
	"regexp"
)

// Scope is one of the two fixed document namespaces.
type Scope int

const (
	// Project is the workspace-local namespace. It shadows Shared on
	// path lookups without an explicit scope.
	Project Scope = iota
	// Shared is the namespace common to all workspaces.
	Shared
)

// IDMinWidth is the minimum number of digits in an ID counter. The counter
// grows wider instead of wrapping once it outgrows this width.
const IDMinWidth = 3

var (
	projectIDRe = regexp.MustCompile(`^P\d{3,}$`)
	sharedIDRe  = regexp.MustCompile(`^S\d{3,}$`)
)

// All returns both scopes in lookup order: Project first, then Shared.
// Path resolution without an explicit scope follows this order.
func All() []Scope {
	return []Scope{Project, Shared}
}

// String returns the scope's configuration name.
func (s Scope) String() string {
	switch s {
	case Project:
		return "project"
	case Shared:
		return "shared"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// Prefix returns the scope's ID prefix letter.
func (s Scope) Prefix() string {
	if s == Shared {
		return "S"
	}
	return "P"
}

// MatchesID reports whether id fully matches this scope's ID pattern.
func (s Scope) MatchesID(id string) bool {
	if s == Shared {
		return sharedIDRe.MatchString(id)
	}
	return projectIDRe.MatchString(id)
}

// FormatID renders counter n as an ID in this scope, zero-padded to at
// least IDMinWidth digits.
func (s Scope) FormatID(n int) string {
	return fmt.Sprintf("%s%0*d", s.Prefix(), IDMinWidth, n)
}

// Parse converts a scope name to a Scope. Only the two canonical names are
// accepted; anything else is an error.
func Parse(name string) (Scope, error) {
	switch name {
	case "project":
		return Project, nil
	case "shared":
		return Shared, nil
	}
	return 0, fmt.Errorf("scope: unknown scope %q", name)
}

// ForID returns the scope whose ID pattern matches id. The second return
// is false when id is not an ID in either scope.
func ForID(id string) (Scope, bool) {
	for _, s := range All() {
		if s.MatchesID(id) {
			return s, true
		}
	}
	return 0, false
}
