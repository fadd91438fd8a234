package api

import (
	"github.com/ferrith/carta/internal/docservice"
	"github.com/ferrith/carta/internal/editop"
	"github.com/ferrith/carta/internal/models"
)

// CreateDocRequest is the request body for creating a document.
type CreateDocRequest struct {
	Path    string `json:"path"`
	Scope   string `json:"scope,omitempty"`
	Content string `json:"content"`
}

// EditDocRequest is the request body for editing a document. The base hash
// rides in the If-Match header; its presence selects optimistic locking.
type EditDocRequest struct {
	Ops []editop.Op `json:"ops"`
}

// MoveDocRequest is the request body for moving a document.
type MoveDocRequest struct {
	Source           string `json:"source"`
	Destination      string `json:"destination"`
	SourceScope      string `json:"source_scope,omitempty"`
	DestinationScope string `json:"destination_scope,omitempty"`
}

// DeleteDocResponse reports whether the delete removed anything. Deleting an
// already-gone document is success, not an error.
type DeleteDocResponse struct {
	Deleted bool `json:"deleted"`
}

// Document is the full document response type (aliased from the domain layer).
type Document = models.Document

// ListItem is a lightweight item in a list response (aliased from the domain layer).
type ListItem = models.ListItem

// EditResult is the edit response type (aliased from the domain layer).
type EditResult = docservice.EditResult

// ListResponse wraps document listings.
type ListResponse struct {
	Docs  []ListItem `json:"docs"`
	Total int        `json:"total"`
}
