package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jasminestrone/tachylite/internal/markdown"
	"github.com/jasminestrone/tachylite/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir, v := testutil.TestVault(t)
	return New(v, markdown.NewRenderer("/raw/")), dir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error
	switch name {
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "render_note":
		result, err = srv.renderNote(ctx, req)
	case "list_files":
		result, err = srv.listFiles(ctx, req)
	case "vault_graph":
		result, err = srv.vaultGraph(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadNote(t *testing.T) {
	srv, dir := testServer(t)
	testutil.Seed(t, dir, "Notes/test.md", "# Test\nHello")

	r := callTool(t, srv, "read_note", map[string]interface{}{"path": "Notes/test.md"})
	if got := resultText(r); got != "# Test\nHello" {
		t.Errorf("read result = %q", got)
	}

	// Bare name resolution works through the same vault search as the API.
	r = callTool(t, srv, "read_note", map[string]interface{}{"path": "test.md"})
	if got := resultText(r); got != "# Test\nHello" {
		t.Errorf("bare-name read result = %q", got)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("missing note should return a tool error")
	}
}

func TestRenderNote(t *testing.T) {
	srv, dir := testServer(t)
	testutil.Seed(t, dir, "a.md", "see [[b]]")

	r := callTool(t, srv, "render_note", map[string]interface{}{"path": "a.md"})
	html := resultText(r)
	if !strings.Contains(html, "#note:b.md") {
		t.Errorf("render result = %q", html)
	}
}

func TestListFiles(t *testing.T) {
	srv, dir := testServer(t)
	testutil.Seed(t, dir, "a.md", "a")
	testutil.Seed(t, dir, "Notes/b.md", "b")
	testutil.Seed(t, dir, ".obsidian/x.json", "{}")

	r := callTool(t, srv, "list_files", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "a.md") || !strings.Contains(text, "Notes/b.md") {
		t.Errorf("list result = %q", text)
	}
	if strings.Contains(text, ".obsidian") {
		t.Errorf("excluded path leaked: %q", text)
	}

	r = callTool(t, srv, "list_files", map[string]interface{}{"folder": "Notes"})
	if text = resultText(r); text != "Notes/b.md" {
		t.Errorf("folder-scoped list = %q", text)
	}
}

func TestVaultGraph(t *testing.T) {
	srv, dir := testServer(t)
	testutil.Seed(t, dir, "a.md", "[[b]]")
	testutil.Seed(t, dir, "b.md", "x")

	r := callTool(t, srv, "vault_graph", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, `"nodes"`) || !strings.Contains(text, `"link"`) {
		t.Errorf("graph result = %q", text)
	}
}
