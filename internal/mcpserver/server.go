// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only vault tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jasminestrone/tachylite/internal/graph"
	"github.com/jasminestrone/tachylite/internal/markdown"
	"github.com/jasminestrone/tachylite/internal/vault"
)

// Server wraps the MCP server with vault tools. All tools are read-only;
// MCP callers hold no editing session.
type Server struct {
	mcp      *server.MCPServer
	vault    *vault.Vault
	renderer *markdown.Renderer
}

// New creates a new MCP server with all vault tools registered.
func New(v *vault.Vault, renderer *markdown.Renderer) *Server {
	s := &Server{vault: v, renderer: renderer}

	s.mcp = server.NewMCPServer(
		"Tachylite",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the raw Markdown content of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path or bare note name (e.g. folder/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("render_note",
		mcp.WithDescription("Render a note to HTML with wikilinks and embeds expanded."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path or bare note name")),
	), s.renderNote)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List all files in the vault, optionally under a folder."),
		mcp.WithString("folder", mcp.Description("Optional folder prefix (empty for all)")),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("vault_graph",
		mcp.WithDescription("Return the vault's containment and wikilink graph as JSON."),
	), s.vaultGraph)

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

func (s *Server) resolveRead(path string) (string, []byte, error) {
	rel, err := s.vault.Resolve(path)
	if err != nil {
		return "", nil, fmt.Errorf("not found: %s", path)
	}
	data, err := s.vault.Read(rel)
	if err != nil {
		return "", nil, fmt.Errorf("not found: %s", path)
	}
	return rel, data, nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, data, err := s.resolveRead(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) renderNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, data, err := s.resolveRead(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	html, err := s.renderer.Render(string(data))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(html), nil
}

func (s *Server) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := req.GetString("folder", "")
	entries, err := s.vault.Walk()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var paths []string
	for _, e := range entries {
		if folder != "" && !strings.HasPrefix(e.Path, strings.TrimSuffix(folder, "/")+"/") {
			continue
		}
		paths = append(paths, e.Path)
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no files found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) vaultGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := graph.Build(s.vault)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(g, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
