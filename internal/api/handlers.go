package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ferrith/carta/internal/docservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// docIdentifier extracts the document identifier (ID or path) from the URL
// (everything after /docs/). Supports encoded slashes from OpenAPI clients
// (e.g. topics%2Fdoc.md).
func docIdentifier(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ifMatch returns the If-Match header value with any surrounding ETag quotes
// stripped.
func ifMatch(r *http.Request) string {
	return strings.Trim(r.Header.Get("If-Match"), `"`)
}

// ListDocs handles GET /docs. Without a scope it lists both namespaces and
// annotates cross-scope overrides.
func (h *Handler) ListDocs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.List(r.Context(), docservice.ListFilter{
		ScopeName:      q.Get("scope"),
		PathPrefix:     q.Get("prefix"),
		IncludeContent: q.Get("content") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []ListItem{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Docs: items, Total: len(items)})
}

// GetDoc handles GET /docs/*. The wildcard may be a generated ID or a path;
// path lookups without an explicit scope try project first, then shared.
func (h *Handler) GetDoc(w http.ResponseWriter, r *http.Request) {
	identifier := docIdentifier(r)
	if identifier == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("identifier is required"))
		return
	}
	doc, err := h.svc.Read(r.Context(), identifier, r.URL.Query().Get("scope"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// CreateDoc handles POST /docs.
func (h *Handler) CreateDoc(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	doc, err := h.svc.Create(r.Context(), req.Path, req.Scope, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// EditDoc handles PATCH /docs/*. An If-Match header selects optimistic
// locking against that base hash; omitting it selects last-write-wins.
func (h *Handler) EditDoc(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	identifier := docIdentifier(r)
	if identifier == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("identifier is required"))
		return
	}
	var req EditDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.Ops) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("ops are required"))
		return
	}

	lock := docservice.LastWriteWins
	baseHash := ifMatch(r)
	if baseHash != "" {
		lock = docservice.Optimistic
	}

	res, err := h.svc.EditLatest(r.Context(), identifier, r.URL.Query().Get("scope"), lock, baseHash, req.Ops)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteDoc handles DELETE /docs/*. Idempotent: deleting an already-gone
// document returns {"deleted": false} with 200, never an error.
func (h *Handler) DeleteDoc(w http.ResponseWriter, r *http.Request) {
	identifier := docIdentifier(r)
	if identifier == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("identifier is required"))
		return
	}
	deleted, err := h.svc.DeleteLatest(r.Context(), identifier, r.URL.Query().Get("scope"), ifMatch(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteDocResponse{Deleted: deleted})
}

// MoveDoc handles POST /move. Moving always mints a new ID at the
// destination, even for a same-scope rename.
func (h *Handler) MoveDoc(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req MoveDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Source == "" || req.Destination == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("source and destination are required"))
		return
	}
	doc, err := h.svc.Move(r.Context(), req.Source, req.Destination, req.SourceScope, req.DestinationScope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, r.URL.Query().Get("scope"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}
