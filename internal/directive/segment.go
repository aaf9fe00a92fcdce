package directive

import (
	"log/slog"
	"strings"
)

// Kind is the segment variant.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindWidget   Kind = "widget"
)

// Segment is one piece of a segmented document. Markdown segments carry
// Content; widget segments carry WidgetType and, when a table followed the
// directive, its raw text in Table.
type Segment struct {
	Kind       Kind   `json:"kind"`
	Content    string `json:"content,omitempty"`
	WidgetType string `json:"widget_type,omitempty"`
	Table      string `json:"table,omitempty"`
	HasTable   bool   `json:"has_table,omitempty"`
}

const (
	directivePrefix = `:::component-preview type="`
	directiveSuffix = `":::`
)

// ParseDirective returns the widget type of a directive line.
func ParseDirective(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, directivePrefix) || !strings.HasSuffix(s, directiveSuffix) {
		return "", false
	}
	t := s[len(directivePrefix) : len(s)-len(directiveSuffix)]
	if !identifier.MatchString(t) {
		return "", false
	}
	return t, true
}

// Segmenter splits document bodies.
type Segmenter struct {
	Registry *Registry // nil uses DefaultRegistry
	Logger   *slog.Logger
}

// Segment splits body into ordered markdown and widget segments. Directive
// lines and captured tables are removed; concatenating the markdown segments
// gives back the rest of body. Empty markdown segments are omitted, so a
// body without directives is returned as a single segment.
func (s *Segmenter) Segment(body string) []Segment {
	reg := s.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	lines := splitLines(body)
	var (
		out   []Segment
		prose strings.Builder
	)
	flush := func() {
		if prose.Len() > 0 {
			out = append(out, Segment{Kind: KindMarkdown, Content: prose.String()})
			prose.Reset()
		}
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		widget, ok := ParseDirective(line)
		if ok && !reg.Has(widget) {
			log.Warn("unknown widget type, leaving directive as text", "type", widget)
			ok = false
		}
		if !ok {
			prose.WriteString(line)
			continue
		}

		flush()
		seg := Segment{Kind: KindWidget, WidgetType: widget}

		// Lookahead past blank lines and comments for a table. Those lines
		// stay in the next markdown segment either way.
		j := i + 1
		for j < len(lines) && skippable(lines[j]) {
			j++
		}
		if end := tableEnd(lines, j); end > j {
			for k := i + 1; k < j; k++ {
				prose.WriteString(lines[k])
			}
			seg.Table = strings.Join(lines[j:end], "")
			seg.HasTable = true
			i = end - 1
		}
		out = append(out, seg)
	}
	flush()

	if len(out) == 0 {
		return []Segment{{Kind: KindMarkdown, Content: body}}
	}
	return out
}

// splitLines splits s into lines that keep their terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func skippable(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || (strings.HasPrefix(t, "<!--") && strings.HasSuffix(t, "-->"))
}

// tableEnd returns the index after the table starting at start, or start
// when no header and separator row sit there.
func tableEnd(lines []string, start int) int {
	if start+1 >= len(lines) || !isRow(lines[start]) || !isSeparatorRow(lines[start+1]) {
		return start
	}
	end := start + 2
	for end < len(lines) && isRow(lines[end]) {
		end++
	}
	return end
}

func isRow(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "|") && len(t) > 1
}

func isSeparatorRow(line string) bool {
	t := strings.Trim(strings.TrimSpace(line), "|")
	if t == "" {
		return false
	}
	for _, cell := range strings.Split(t, "|") {
		c := strings.TrimSpace(cell)
		c = strings.TrimSuffix(strings.TrimPrefix(c, ":"), ":")
		if c == "" || strings.Trim(c, "-") != "" {
			return false
		}
	}
	return true
}
