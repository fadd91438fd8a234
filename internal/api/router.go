package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferrith/carta/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Document CRUD. The wildcard segment is an ID or a relative path.
	r.Get("/docs", h.ListDocs)
	r.Post("/docs", h.CreateDoc)
	r.Get("/docs/*", h.GetDoc)
	r.Patch("/docs/*", h.EditDoc)
	r.Delete("/docs/*", h.DeleteDoc)

	// Move is a verb of its own: create at destination, delete at source.
	r.Post("/move", h.MoveDoc)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
