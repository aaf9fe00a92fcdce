package mcp

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const maxGitCommits = 5

// collectDocHistory returns best-effort git metadata for one document.
// relPath is relative to root. Returns nil when root is not in a git
// repository.
func collectDocHistory(root, relPath string) map[string]any {
	repo := repoRoot(root)
	if repo == "" {
		return nil
	}
	abs, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return nil
	}

	result := map[string]any{"path": relPath}
	var notes []string

	logOut, err := git(repo, "log", "--oneline", "-n", "5", "--", abs)
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return map[string]any{"note": "git not installed"}
	case err != nil:
		notes = append(notes, "commit history unavailable")
	default:
		result["last_commits"] = firstLines(logOut, maxGitCommits)
	}

	if date, err := git(repo, "log", "-1", "--format=%cs", "--", abs); err == nil && date != "" {
		result["last_changed"] = date
	}

	if statusOut, err := git(repo, "status", "--porcelain", "--", abs); err != nil {
		notes = append(notes, "status unavailable")
	} else {
		result["dirty"], result["untracked"] = parsePorcelainStatus(statusOut)
	}

	if len(notes) > 0 {
		result["note"] = strings.Join(notes, "; ")
	}
	return result
}

// repoRoot walks up from dir to the directory holding .git.
func repoRoot(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		dir = filepath.Dir(dir)
	}
	for ; ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

func git(repo string, args ...string) (string, error) {
	out, err := exec.Command("git", append([]string{"-C", repo}, args...)...).CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// firstLines returns up to n non-blank trimmed lines of text.
func firstLines(text string, n int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" && len(out) < n {
			out = append(out, line)
		}
	}
	return out
}

// parsePorcelainStatus reports whether `git status --porcelain` output
// lists a modified entry and whether it lists an untracked one.
func parsePorcelainStatus(status string) (dirty, untracked bool) {
	for _, line := range strings.Split(status, "\n") {
		if len(strings.TrimSpace(line)) < 3 {
			continue
		}
		if strings.HasPrefix(line, "??") {
			untracked = true
		} else {
			dirty = true
		}
	}
	return dirty, untracked
}
