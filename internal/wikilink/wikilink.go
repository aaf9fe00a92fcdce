// Package wikilink rewrites [[target]] and [[target|label]] references into
// markdown links against the content tree.
package wikilink

import (
	"strings"

	"github.com/sgx-labs/docsite/internal/content"
)

const (
	openMark  = "[["
	closeMark = "]]"
)

// Link is one wiki-link reference found in markdown.
type Link struct {
	Target string // with any ".md" suffix removed
	Label  string // empty when no explicit label was given
	Raw    string // the full "[[...]]" text
	Start  int    // byte offset of Raw in the source
}

// Text returns the display text: the explicit label, else the target.
func (l Link) Text() string {
	if l.Label != "" {
		return l.Label
	}
	return l.Target
}

// Links returns every well-formed reference in markdown in source order.
// Unclosed "[[" and empty targets are skipped.
func Links(markdown string) []Link {
	var out []Link
	for i := 0; i < len(markdown); {
		l, end, ok := next(markdown, i)
		if !ok {
			break
		}
		if l.Target != "" {
			out = append(out, l)
		}
		i = end
	}
	return out
}

// next finds the first reference at or after from. end is the offset to
// continue scanning at.
func next(s string, from int) (Link, int, bool) {
	start := strings.Index(s[from:], openMark)
	if start < 0 {
		return Link{}, len(s), false
	}
	start += from
	inner := start + len(openMark)
	stop := strings.Index(s[inner:], closeMark)
	if stop < 0 {
		return Link{}, len(s), false
	}
	stop += inner
	raw := s[start : stop+len(closeMark)]
	// A nested "[[" before the closer means the first opener was unclosed.
	if nested := strings.Index(s[inner:stop], openMark); nested >= 0 {
		return Link{}, inner + nested, true
	}
	l := Parse(s[inner:stop])
	l.Raw = raw
	l.Start = start
	return l, stop + len(closeMark), true
}

// Parse splits the inside of a reference into target and label. The label
// starts after the first "|"; a "\" right before that pipe, as written when
// the link sits inside a markdown table, is dropped.
func Parse(inner string) Link {
	target, label, _ := strings.Cut(inner, "|")
	target = strings.TrimSuffix(target, `\`)
	target = strings.TrimSpace(target)
	target = strings.TrimSuffix(target, content.MarkdownExt)
	return Link{Target: target, Label: strings.TrimSpace(label)}
}

// Href returns the route a target points at. A target containing "/" is
// taken as section/file; otherwise the first section in tree order holding a
// document with that ID wins. ok is false when nothing matches.
func Href(target string, tree content.Tree) (string, bool) {
	target = strings.TrimSuffix(strings.TrimSpace(target), content.MarkdownExt)
	if target == "" {
		return "", false
	}
	if section, file, found := strings.Cut(target, "/"); found {
		if section == "" || file == "" {
			return "", false
		}
		return content.Route(section, content.FileID(file)), true
	}
	for _, s := range tree.Sections {
		for _, it := range s.Items {
			if it.ID == target {
				return content.Route(s.ID, it.ID), true
			}
		}
	}
	return "", false
}

// Resolve rewrites every reference in markdown. Resolvable targets become
// "[text](href)"; anything else becomes its display text so no link ever
// points at a missing page.
func Resolve(markdown string, tree content.Tree) string {
	if !strings.Contains(markdown, openMark) {
		return markdown
	}
	var b strings.Builder
	b.Grow(len(markdown))
	i := 0
	for i < len(markdown) {
		l, end, ok := next(markdown, i)
		if !ok {
			break
		}
		if l.Raw == "" || l.Target == "" {
			// unclosed or empty: copy through unchanged
			b.WriteString(markdown[i:end])
			i = end
			continue
		}
		b.WriteString(markdown[i:l.Start])
		if href, found := Href(l.Target, tree); found {
			b.WriteString("[")
			b.WriteString(l.Text())
			b.WriteString("](")
			b.WriteString(href)
			b.WriteString(")")
		} else {
			b.WriteString(l.Text())
		}
		i = end
	}
	b.WriteString(markdown[i:])
	return b.String()
}
