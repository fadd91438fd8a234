// Package models defines the domain types for carta.
package models

import "time"

// Document is the full representation of a stored document.
type Document struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Scope      string    `json:"scope"`
	Content    string    `json:"content"`
	Hash       string    `json:"hash"`
	Synopsis   string    `json:"synopsis,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Override annotations attached by cross-scope listings.
const (
	// OverrideShadows marks a project document whose path also exists in
	// the shared scope.
	OverrideShadows = "overrides"
	// OverrideShadowed marks the shared document being shadowed.
	OverrideShadowed = "overridden"
)

// ListItem is a lightweight entry in a list response.
type ListItem struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Scope      string    `json:"scope"`
	Synopsis   string    `json:"synopsis,omitempty"`
	Override   string    `json:"override,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
}

// FileInfo is the storage-level metadata for one file under a scope root.
type FileInfo struct {
	Path       string    `json:"path"`
	Checksum   string    `json:"checksum"`
	ModifiedAt time.Time `json:"modified_at"`
}
