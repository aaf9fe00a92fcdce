package search

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one heading of a document with the prose that follows it up to
// the next heading.
type Heading struct {
	DocID   string `json:"doc_id"`
	Level   int    `json:"level"`
	Title   string `json:"title"`
	Anchor  string `json:"anchor"`
	Href    string `json:"href"`
	Content string `json:"content"`
}

// HeadingResult is a scored heading.
type HeadingResult struct {
	Heading Heading `json:"heading"`
	Score   float64 `json:"score"`
}

// Heading search weights.
const (
	titleWeight      = 10
	contentWeight    = 1
	occurrenceWeight = 0.5
)

var md = goldmark.New()

// BuildHeadings splits body into heading sections. Prose before the first
// heading is not searchable.
func BuildHeadings(docID, href string, body []byte) []Heading {
	doc := md.Parser().Parse(text.NewReader(body))

	var (
		out     []Heading
		prose   bytes.Buffer
		anchors = make(map[string]int)
	)
	flush := func() {
		if len(out) > 0 {
			out[len(out)-1].Content = strings.TrimSpace(prose.String())
		}
		prose.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			if t := blockText(n, body); t != "" {
				if prose.Len() > 0 {
					prose.WriteString("\n\n")
				}
				prose.WriteString(t)
			}
			continue
		}
		flush()
		title := strings.TrimSpace(blockText(h, body))
		anchor := uniqueAnchor(Slug(title), anchors)
		out = append(out, Heading{
			DocID:  docID,
			Level:  h.Level,
			Title:  title,
			Anchor: anchor,
			Href:   href + "#" + anchor,
		})
	}
	flush()
	return out
}

// blockText collects the raw text of a block and its inline children.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		if lines.Len() > 0 && n.HasChildren() && n.FirstChild().Type() == ast.TypeInline {
			// Paragraph and heading lines already hold the inline text.
			return strings.TrimSpace(buf.String())
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if s := blockText(c, src); s != "" {
			if buf.Len() > 0 && c.Type() == ast.TypeBlock {
				buf.WriteByte('\n')
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}

// Slug turns a heading title into an anchor: lowercase letters and digits
// are kept, spaces become hyphens, other characters are dropped.
func Slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	return b.String()
}

func uniqueAnchor(slug string, seen map[string]int) string {
	n := seen[slug]
	seen[slug] = n + 1
	if n == 0 {
		return slug
	}
	return slug + "-" + strconv.Itoa(n)
}

// ScoreHeadings ranks headings for the in-page search: +10 when the title
// contains the query, +1 when the content does, and +0.5 per occurrence in
// the content. Matching ignores case. Only positive scores are returned,
// best first; ties keep input order.
func ScoreHeadings(headings []Heading, query string) []HeadingResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []HeadingResult
	for _, h := range headings {
		var score float64
		if strings.Contains(strings.ToLower(h.Title), q) {
			score += titleWeight
		}
		body := strings.ToLower(h.Content)
		if n := strings.Count(body, q); n > 0 {
			score += contentWeight + occurrenceWeight*float64(n)
		}
		if score > 0 {
			out = append(out, HeadingResult{Heading: h, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
