package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for n, want := range tests {
		if got := FormatNumber(n); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestPadRight_WideRunes(t *testing.T) {
	got := padRight("组件", 6)
	if w := runewidth.StringWidth(got); w != 6 {
		t.Fatalf("width = %d, want 6 (%q)", w, got)
	}
	if got != "组件  " {
		t.Fatalf("padRight = %q", got)
	}

	long := padRight(strings.Repeat("设计", 30), 10)
	if w := runewidth.StringWidth(long); w != 10 {
		t.Fatalf("truncated width = %d, want 10", w)
	}
}

func TestBox_AlignsBorders(t *testing.T) {
	var buf bytes.Buffer
	Box(&buf, []string{"快速开始", "plain"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	want := runewidth.StringWidth(lines[0])
	for _, l := range lines[1:] {
		if got := runewidth.StringWidth(l); got != want {
			t.Errorf("line %q width %d, want %d", l, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("a long description", 8); runewidth.StringWidth(got) > 8 || !strings.HasSuffix(got, "\u2026") {
		t.Errorf("Truncate = %q", got)
	}
}
