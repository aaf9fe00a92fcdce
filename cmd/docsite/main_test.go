package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sgx-labs/docsite/internal/config"
	"github.com/sgx-labs/docsite/internal/search"
)

// setupRoot creates a content root with two sections and points the CLI at it.
func setupRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"A_Intro/01_start.md":    "---\ntitle: Getting started\n---\n# Start\n\nSee [[button]].\n",
		"B_Components/button.md": "# Button\n\n:::component-preview type=\"button\":::\n\n| Prop | Type |\n| --- | --- |\n| size | string |\n",
	}
	for rel, body := range files {
		p := filepath.Join(root, "docs", filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("DOCSITE_ROOT", "")
	t.Setenv("DOCSITE_DATA_DIR", "")
	t.Cleanup(func() { config.RootOverride = "" })
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "docsite "+Version) {
		t.Fatalf("version output = %q", out)
	}
}

func TestTreeCmd(t *testing.T) {
	root := setupRoot(t)
	out, err := run(t, "--root", root, "tree")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Intro", "Components", "/docs/B_Components/button", "2 documents"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree output missing %q:\n%s", want, out)
		}
	}
}

func TestSearchCmd_JSON(t *testing.T) {
	root := setupRoot(t)
	out, err := run(t, "--root", root, "search", "--json", "butt")
	if err != nil {
		t.Fatal(err)
	}
	var results []search.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(results) != 1 || results[0].Item.Href != "/docs/B_Components/button" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestSearchCmd_NoResults(t *testing.T) {
	root := setupRoot(t)
	out, err := run(t, "--root", root, "search", "zzz")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No results found.") {
		t.Fatalf("output = %q", out)
	}
}

func TestSearchCmd_EmptyQuery(t *testing.T) {
	root := setupRoot(t)
	_, err := run(t, "--root", root, "search", "  ")
	if err == nil || !strings.Contains(err.Error(), "Hint:") {
		t.Fatalf("expected user error, got %v", err)
	}
}

func TestShowCmd_ResolvesLinks(t *testing.T) {
	root := setupRoot(t)
	out, err := run(t, "--root", root, "show", "/docs/A_Intro/01_start")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Getting started") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "[button](/docs/B_Components/button)") {
		t.Errorf("wiki link not resolved:\n%s", out)
	}
}

func TestShowCmd_Segments(t *testing.T) {
	root := setupRoot(t)
	out, err := run(t, "--root", root, "show", "--segments", "B_Components/button")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "widget") || !strings.Contains(out, "button (3 table lines)") {
		t.Fatalf("segments output:\n%s", out)
	}
}

func TestShowCmd_Missing(t *testing.T) {
	root := setupRoot(t)
	_, err := run(t, "--root", root, "show", "A_Intro/nope")
	if err == nil || !strings.Contains(err.Error(), "Document not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecentCmd_RecordAndList(t *testing.T) {
	root := setupRoot(t)
	if _, err := run(t, "--root", root, "recent", "record", "button"); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--root", root, "recent", "record", "/docs/A_Intro/01_start"); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--root", root, "recent", "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var items []search.Item
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(items) != 2 || items[0].ID != "01_start" || items[1].ID != "button" {
		t.Fatalf("unexpected recents: %+v", items)
	}

	if _, err := run(t, "--root", root, "recent", "record", "nope"); err == nil {
		t.Fatal("expected error for unknown entry")
	}
}

func TestConfigInit(t *testing.T) {
	root := setupRoot(t)
	if _, err := run(t, "--root", root, "config", "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(config.ConfigFilePath(root)); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := run(t, "--root", root, "config", "init"); err == nil {
		t.Fatal("second init without --force should fail")
	}
	if _, err := run(t, "--root", root, "config", "init", "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}

func TestSplitDocArg(t *testing.T) {
	tests := []struct {
		in            string
		section, file string
		ok            bool
	}{
		{"A/b", "A", "b", true},
		{"/docs/A/b", "A", "b", true},
		{"docs/A/b.md", "A", "b", true},
		{"A", "", "", false},
		{"A/", "", "", false},
		{"A/b/c", "", "", false},
	}
	for _, tt := range tests {
		section, file, ok := splitDocArg(tt.in)
		if ok != tt.ok || section != tt.section || file != tt.file {
			t.Errorf("splitDocArg(%q) = %q, %q, %v", tt.in, section, file, ok)
		}
	}
}
