// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the carta document store for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ferrith/carta/internal/docservice"
	"github.com/ferrith/carta/internal/editop"
)

// Server wraps the MCP server with carta tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all carta tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"carta",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_doc",
		mcp.WithDescription("Create a new document at the given relative path. "+
			"A fresh ID is minted (P… for project scope, S… for shared). Content SHOULD "+
			"follow the canonical document format (YAML front matter with synopsis); read "+
			"the get_doc_contract tool or the carta://doc-format resource first."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new document (e.g. auth/jwt)")),
		mcp.WithString("scope", mcp.Description("Target scope: project (default) or shared")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document content")),
	), s.createDoc)

	s.mcp.AddTool(mcp.NewTool("read_doc",
		mcp.WithDescription("Read a document by generated ID (e.g. P001) or relative path. "+
			"Path lookups without a scope check project first, then shared."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Document ID or relative path")),
		mcp.WithString("scope", mcp.Description("Explicit scope: project or shared")),
	), s.readDoc)

	s.mcp.AddTool(mcp.NewTool("edit_doc",
		mcp.WithDescription("Apply edit operations to a document. Supply base_hash (from a "+
			"previous read) for optimistic locking; omitting it means last-write-wins. "+
			`ops is a JSON array like [{"op":"replaceAll","oldText":"a","newText":"b"}]; `+
			"supported ops: replaceOnce, replaceAll, replaceRegex, replaceAllContent."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Document ID or relative path")),
		mcp.WithString("scope", mcp.Description("Explicit scope: project or shared")),
		mcp.WithString("base_hash", mcp.Description("Content hash the edit is based on")),
		mcp.WithString("ops", mcp.Required(), mcp.Description("JSON array of edit operations")),
	), s.editDoc)

	s.mcp.AddTool(mcp.NewTool("delete_doc",
		mcp.WithDescription("Delete a document. Idempotent: deleting an already-gone document "+
			"reports deleted=false instead of failing. Empty parent directories are pruned."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Document ID or relative path")),
		mcp.WithString("scope", mcp.Description("Explicit scope: project or shared")),
		mcp.WithString("expected_hash", mcp.Description("Content hash the delete is based on")),
	), s.deleteDoc)

	s.mcp.AddTool(mcp.NewTool("move_doc",
		mcp.WithDescription("Move a document to a new path and/or scope. The destination gets "+
			"a NEW id; the old id is retired with the source."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source document ID or relative path")),
		mcp.WithString("destination", mcp.Required(), mcp.Description("Destination relative path")),
		mcp.WithString("source_scope", mcp.Description("Explicit source scope")),
		mcp.WithString("destination_scope", mcp.Description("Destination scope (defaults to the source's)")),
	), s.moveDoc)

	s.mcp.AddTool(mcp.NewTool("list_docs",
		mcp.WithDescription("List documents. Without a scope both namespaces are listed and "+
			"project documents shadowing a shared path are annotated."),
		mcp.WithString("scope", mcp.Description("Restrict to one scope: project or shared")),
		mcp.WithString("prefix", mcp.Description("Only paths starting with this prefix")),
	), s.listDocs)

	s.mcp.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Full-text search through document content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("scope", mcp.Description("Restrict to one scope: project or shared")),
	), s.searchDocs)

	s.mcp.AddTool(mcp.NewTool("get_doc_contract",
		mcp.WithDescription("Returns the canonical carta document format contract. "+
			"Call this before creating or updating documents to ensure correct structure."),
	), s.getDocContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("carta://doc-format", "Document Format Contract",
			mcp.WithResourceDescription("Canonical document format that stored documents should follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func optionalString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func (s *Server) createDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.svc.Create(ctx, path, optionalString(req, "scope"), content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created %s at %s (scope %s, hash %s)",
		doc.ID, doc.Path, doc.Scope, doc.Hash)), nil
}

func (s *Server) readDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Read(ctx, identifier, optionalString(req, "scope"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) editDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opsJSON, err := req.RequireString("ops")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var ops []editop.Op
	if err := json.Unmarshal([]byte(opsJSON), &ops); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid ops: %v", err)), nil
	}

	lock := docservice.LastWriteWins
	baseHash := optionalString(req, "base_hash")
	if baseHash != "" {
		lock = docservice.Optimistic
	}

	res, err := s.svc.EditLatest(ctx, identifier, optionalString(req, "scope"), lock, baseHash, ops)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("applied %d op(s), new hash %s", res.Applied, res.NewHash)), nil
}

func (s *Server) deleteDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deleted, err := s.svc.DeleteLatest(ctx, identifier, optionalString(req, "scope"), optionalString(req, "expected_hash"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !deleted {
		return mcp.NewToolResultText("already gone (deleted=false)"), nil
	}
	return mcp.NewToolResultText("deleted"), nil
}

func (s *Server) moveDoc(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destination, err := req.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Move(ctx, source, destination,
		optionalString(req, "source_scope"), optionalString(req, "destination_scope"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved to %s at %s (scope %s)", doc.ID, doc.Path, doc.Scope)), nil
}

func (s *Server) listDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.List(ctx, docservice.ListFilter{
		ScopeName:  optionalString(req, "scope"),
		PathPrefix: optionalString(req, "prefix"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no documents"), nil
	}

	var lines []string
	for _, it := range items {
		line := fmt.Sprintf("%s\t%s\t%s", it.ID, it.Scope, it.Path)
		if it.Override != "" {
			line += "\t(" + it.Override + ")"
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) searchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, optionalString(req, "scope"), 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDocContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocFormatContract), nil
}

func (s *Server) readDocFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "carta://doc-format",
			MIMEType: "text/markdown",
			Text:     DocFormatContract,
		},
	}, nil
}
