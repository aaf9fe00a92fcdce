package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sgx-labs/docsite/internal/content"
	"github.com/sgx-labs/docsite/internal/recency"
	"github.com/sgx-labs/docsite/internal/site"
)

var testImpl = &mcp.Implementation{Name: "docsite-test", Version: "0.1.0"}

func setupTestSite(t *testing.T) *site.Site {
	t.Helper()
	root := t.TempDir()
	for rel, body := range map[string]string{
		"A_Intro/01_start.md":    "---\ntitle: Getting started\nstatus: stable\n---\n# Start\n\nRead [[button]].\n\n## Install\n\nRun the installer.\n",
		"B_Components/button.md": "# Button\n\nButtons trigger actions.\n",
	} {
		p := filepath.Join(root, content.DocsDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return &site.Site{Loader: &content.Loader{Root: root}}
}

func testSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	s := NewServer(setupTestSite(t), recency.New(recency.NewMemoryStorage().Client(), recency.Options{}))
	srv := mcp.NewServer(testImpl, nil)
	s.registerTools(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) returned a tool error", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func TestMCP_GetTree(t *testing.T) {
	text := callTool(t, testSession(t), "get_tree", map[string]any{})

	var tree content.Tree
	if err := json.Unmarshal([]byte(text), &tree); err != nil {
		t.Fatalf("decode tree: %v\n%s", err, text)
	}
	if len(tree.Sections) != 2 || tree.Sections[1].Items[0].ID != "button" {
		t.Fatalf("unexpected tree: %+v", tree)
	}
}

func TestMCP_SearchDocs(t *testing.T) {
	session := testSession(t)

	text := callTool(t, session, "search_docs", map[string]any{"query": "getting"})
	if !strings.Contains(text, `"href": "/docs/A_Intro/01_start"`) {
		t.Fatalf("expected start page in results, got:\n%s", text)
	}

	text = callTool(t, session, "search_docs", map[string]any{"query": "zzz"})
	if text != "No results found." {
		t.Fatalf("expected no results, got %q", text)
	}

	text = callTool(t, session, "search_docs", map[string]any{"query": ""})
	if !strings.Contains(text, `"latest"`) || !strings.Contains(text, `"recent"`) {
		t.Fatalf("expected default view, got:\n%s", text)
	}
}

func TestMCP_SearchHeadings(t *testing.T) {
	session := testSession(t)

	text := callTool(t, session, "search_headings", map[string]any{"query": "install"})
	if !strings.Contains(text, `"title": "Install"`) {
		t.Fatalf("expected Install heading, got:\n%s", text)
	}

	text = callTool(t, session, "search_headings", map[string]any{"query": ""})
	if !strings.HasPrefix(text, "Error") {
		t.Fatalf("expected error for empty query, got %q", text)
	}
}

func TestMCP_GetDoc(t *testing.T) {
	session := testSession(t)

	text := callTool(t, session, "get_doc", map[string]any{"href": "/docs/A_Intro/01_start#install"})
	if !strings.HasPrefix(text, "# Getting started") {
		t.Fatalf("expected title header, got:\n%s", text)
	}
	if !strings.Contains(text, "[button](/docs/B_Components/button)") {
		t.Fatalf("expected resolved wiki link, got:\n%s", text)
	}
	if !strings.Contains(text, `"status":"stable"`) {
		t.Fatalf("expected front matter, got:\n%s", text)
	}

	text = callTool(t, session, "get_doc", map[string]any{"href": "A_Intro/missing"})
	if text != "Document not found." {
		t.Fatalf("expected not found, got %q", text)
	}
}

func TestMCP_GetHome(t *testing.T) {
	text := callTool(t, testSession(t), "get_home", map[string]any{})
	if !strings.Contains(text, `"used_defaults": true`) {
		t.Fatalf("expected default quick start, got:\n%s", text)
	}
}

func TestParseHref(t *testing.T) {
	tests := []struct {
		in            string
		section, file string
		ok            bool
	}{
		{"/docs/A/b", "A", "b", true},
		{"docs/A/b#x", "A", "b", true},
		{"A/b", "A", "b", true},
		{"/docs/%E7%BB%84%E4%BB%B6/btn", "组件", "btn", true},
		{"A", "", "", false},
		{"A/b/c", "", "", false},
		{".git/config", "", "", false},
		{"A/%zz", "", "", false},
	}
	for _, tt := range tests {
		section, file, ok := parseHref(tt.in)
		if ok != tt.ok || section != tt.section || file != tt.file {
			t.Errorf("parseHref(%q) = %q, %q, %v", tt.in, section, file, ok)
		}
	}
}

func TestClampTopK(t *testing.T) {
	if got := clampTopK(0, 10); got != 10 {
		t.Errorf("clampTopK(0) = %d", got)
	}
	if got := clampTopK(500, 10); got != 100 {
		t.Errorf("clampTopK(500) = %d", got)
	}
	if got := clampTopK(3, 10); got != 3 {
		t.Errorf("clampTopK(3) = %d", got)
	}
}
