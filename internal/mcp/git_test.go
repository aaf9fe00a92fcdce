package mcp

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestRepoRoot_NotRepo(t *testing.T) {
	dir := t.TempDir()
	if got := repoRoot(dir); got != "" {
		t.Fatalf("expected no git root, got %q", got)
	}
}

func TestCollectDocHistory_NotRepo(t *testing.T) {
	if got := collectDocHistory(t.TempDir(), "docs/a.md"); got != nil {
		t.Fatalf("expected nil history outside git, got %#v", got)
	}
}

func TestCollectDocHistory_Repo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	repo := t.TempDir()
	runGitCmd(t, repo, "init")
	runGitCmd(t, repo, "config", "user.name", "test-user")
	runGitCmd(t, repo, "config", "user.email", "test@example.com")

	doc := filepath.Join(repo, "docs", "A_Intro", "start.md")
	if err := os.MkdirAll(filepath.Dir(doc), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(doc, []byte("# start\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	runGitCmd(t, repo, "add", ".")
	runGitCmd(t, repo, "commit", "-m", "add start page")

	if err := os.WriteFile(doc, []byte("# start\nupdated\n"), 0o644); err != nil {
		t.Fatalf("update doc: %v", err)
	}

	history := collectDocHistory(repo, "docs/A_Intro/start.md")
	if history == nil {
		t.Fatal("expected history, got nil")
	}

	commits, ok := history["last_commits"].([]string)
	if !ok || len(commits) != 1 || !strings.Contains(commits[0], "add start page") {
		t.Fatalf("expected one commit, got %#v", history["last_commits"])
	}
	if history["dirty"] != true {
		t.Fatalf("expected dirty doc, got %#v", history)
	}
	if date, _ := history["last_changed"].(string); len(date) != len("2006-01-02") {
		t.Fatalf("expected commit date, got %#v", history["last_changed"])
	}
}

func TestParsePorcelainStatus(t *testing.T) {
	tests := []struct {
		name             string
		status           string
		dirty, untracked bool
	}{
		{"clean", "", false, false},
		{"modified", " M tracked.md", true, false},
		{"renamed", "R  old.md -> renamed.md", true, false},
		{"untracked", "?? new.md", false, true},
		{"both", " M tracked.md\n?? new.md\n", true, true},
		{"blank lines", "\n\n", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dirty, untracked := parsePorcelainStatus(tt.status)
			if dirty != tt.dirty || untracked != tt.untracked {
				t.Fatalf("parsePorcelainStatus(%q) = %v, %v; want %v, %v", tt.status, dirty, untracked, tt.dirty, tt.untracked)
			}
		})
	}
}

func TestFirstLines(t *testing.T) {
	got := firstLines("a\n\n  b  \nc\nd", 2)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("firstLines = %q", got)
	}
}

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v (%s)", args, err, string(out))
	}
}
