// Package content reads the docs folder: it parses markdown front matter,
// loads documents through a request-scoped cache, and builds the section tree
// that navigation, links, and search are derived from.
package content

import (
	"bufio"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Frontmatter holds the recognized front matter fields. Other keys are ignored.
type Frontmatter struct {
	Category    string `yaml:"category" json:"category,omitempty"`
	Status      string `yaml:"status" json:"status,omitempty"`
	LastUpdated string `yaml:"last_updated" json:"last_updated,omitempty"`
	Title       string `yaml:"title" json:"title,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// IsZero reports whether no recognized field is set.
func (f Frontmatter) IsZero() bool {
	return f == Frontmatter{}
}

const fmDelim = "---"

// yamlFormat restricts detection to the "---" YAML block.
var yamlFormat = frontmatter.NewFormat(fmDelim, fmDelim, yaml.Unmarshal)

// ParsedDoc is a markdown file split into body and metadata.
type ParsedDoc struct {
	Meta    Frontmatter
	HasMeta bool
	Body    string
}

// ParseFrontmatter splits raw markdown into body and front matter. The block
// is only recognized when the very first line is exactly "---" and a closing
// "---" line follows. When the block is missing or cannot be parsed, the
// whole file is returned as body and err describes the parse failure.
func ParseFrontmatter(raw string) (ParsedDoc, error) {
	block, body, ok := splitFrontmatter(raw)
	if !ok {
		return ParsedDoc{Body: raw}, nil
	}

	var meta Frontmatter
	normalized := fmDelim + "\n" + strings.ReplaceAll(block, "\r\n", "\n") + fmDelim + "\n"
	if _, err := frontmatter.Parse(strings.NewReader(normalized), &meta, yamlFormat); err != nil {
		// Loose "key: value" blocks are not always valid YAML (e.g. a colon in
		// an unquoted title). Retry with the line scanner before giving up.
		lineMeta, lineErr := parseKeyValues(block)
		if lineErr != nil {
			return ParsedDoc{Body: raw}, err
		}
		meta = lineMeta
	}
	return ParsedDoc{Meta: meta, HasMeta: true, Body: body}, nil
}

// splitFrontmatter locates the delimited block at the start of raw. It
// returns the block contents and the remaining body.
func splitFrontmatter(raw string) (block, body string, ok bool) {
	first, rest, found := cutLine(raw)
	if !found || first != fmDelim {
		return "", "", false
	}
	offset := len(raw) - len(rest)
	for cursor := rest; cursor != ""; {
		line, next, _ := cutLine(cursor)
		if line == fmDelim {
			blockEnd := len(raw) - len(cursor)
			return raw[offset:blockEnd], next, true
		}
		cursor = next
	}
	return "", "", false
}

// cutLine returns the first line of s without its line terminator, and the
// remainder after the terminator.
func cutLine(s string) (line, rest string, hadNewline bool) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return strings.TrimSuffix(s, "\r"), "", false
	}
	return strings.TrimSuffix(s[:i], "\r"), s[i+1:], true
}

// parseKeyValues reads a block of "key: value" lines.
func parseKeyValues(block string) (Frontmatter, error) {
	var meta Frontmatter
	sc := bufio.NewScanner(strings.NewReader(block))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return Frontmatter{}, &MalformedLineError{Line: line}
		}
		value = unquote(strings.TrimSpace(value))
		switch strings.TrimSpace(key) {
		case "category":
			meta.Category = value
		case "status":
			meta.Status = value
		case "last_updated":
			meta.LastUpdated = value
		case "title":
			meta.Title = value
		case "description":
			meta.Description = value
		}
	}
	return meta, sc.Err()
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// MalformedLineError reports a front matter line without a key separator.
type MalformedLineError struct {
	Line string
}

func (e *MalformedLineError) Error() string {
	return "front matter line without ':' separator: " + e.Line
}
