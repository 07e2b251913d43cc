// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes sigil tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/veldran/sigil/internal/api"
	"github.com/veldran/sigil/internal/imagecache"
	"github.com/veldran/sigil/internal/models"
)

// Server wraps the MCP server with sigil tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *api.Service
	images *imagecache.Acquirer
}

// New creates a new MCP server with all sigil tools registered.
func New(svc *api.Service, images *imagecache.Acquirer) *Server {
	s := &Server{svc: svc, images: images}

	s.mcp = server.NewMCPServer(
		"Sigil",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("resolve_previews",
		mcp.WithDescription("Resolve component preview markers for a source document. "+
			"Scans imports and JSX usages, looks up declarations, and caches preview images locally."),
		mcp.WithString("uri", mcp.Required(), mcp.Description("Project-relative path of the document (e.g. src/App.tsx)")),
		mcp.WithString("text", mcp.Description("Optional document text; when omitted the file is read from the project")),
	), s.resolvePreviews)

	s.mcp.AddTool(mcp.NewTool("get_markers",
		mcp.WithDescription("List the currently registered preview markers for a document."),
		mcp.WithString("uri", mcp.Required(), mcp.Description("Project-relative path of the document")),
	), s.getMarkers)

	s.mcp.AddTool(mcp.NewTool("lookup_symbol",
		mcp.WithDescription("Look up indexed declaration sites for an exported component name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Exported symbol name (e.g. HomeIcon)")),
	), s.lookupSymbol)

	s.mcp.AddTool(mcp.NewTool("acquire_image",
		mcp.WithDescription("Fetch, transform, and cache a single preview image reference. "+
			"Accepts a remote URL or an embedded data URI and returns the cached file path."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Image reference: http(s) URL or data:image/...;base64,... URI")),
		mcp.WithString("theme", mcp.Description("Theme override: dark, light, or high-contrast (defaults to the active theme)")),
		mcp.WithNumber("size", mcp.Description("Optional render size in pixels")),
	), s.acquireImage)

	s.mcp.AddTool(mcp.NewTool("evict_cache",
		mcp.WithDescription("Delete cached preview images older than the configured max age."),
	), s.evictCache)

	s.mcp.AddTool(mcp.NewTool("get_preview_contract",
		mcp.WithDescription("Returns the canonical preview annotation contract. "+
			"Call this before authoring @name/@preview documentation blocks."),
	), s.getPreviewContract)

	// Resource: preview annotation contract.
	s.mcp.AddResource(
		mcp.NewResource("sigil://preview-format", "Preview Annotation Contract",
			mcp.WithResourceDescription("Canonical @name/@preview annotation format previews must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPreviewFormatResource,
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

func (s *Server) resolvePreviews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := req.RequireString("uri")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text := ""
	if v, tErr := req.RequireString("text"); tErr == nil {
		text = v
	}

	markers, err := s.svc.ResolveDocument(ctx, uri, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if markers == nil {
		markers = []models.Marker{}
	}
	out, _ := json.MarshalIndent(markers, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMarkers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := req.RequireString("uri")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	markers := s.svc.Markers(uri)
	if markers == nil {
		markers = []models.Marker{}
	}
	out, _ := json.MarshalIndent(markers, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) lookupSymbol(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	locs, err := s.svc.LookupSymbol(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(locs) == 0 {
		return mcp.NewToolResultText("no declarations found"), nil
	}
	out, _ := json.MarshalIndent(locs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) acquireImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	theme := s.svc.Theme()
	if override, tErr := req.RequireString("theme"); tErr == nil && override != "" {
		t := models.Theme(override)
		if !t.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown theme: %s", override)), nil
		}
		theme = t
	}
	size := 0
	if v, sErr := req.RequireInt("size"); sErr == nil {
		size = v
	}

	path, err := s.images.Acquire(ctx, models.PreviewRef(ref), theme, size)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(path), nil
}

func (s *Server) evictCache(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deleted, err := s.svc.EvictCache()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", deleted)), nil
}

func (s *Server) getPreviewContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PreviewFormatContract), nil
}

func (s *Server) readPreviewFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "sigil://preview-format",
			MIMEType: "text/markdown",
			Text:     PreviewFormatContract,
		},
	}, nil
}
