package search

import (
	"html"
	"regexp"
	"strings"
)

// Field names recorded in a Match.
const (
	FieldTitle   = "title"
	FieldContent = "content"
)

// Match locates the first query occurrence in one field.
type Match struct {
	Field  string `json:"field"`
	Text   string `json:"text"`
	Offset int    `json:"offset"` // byte offset in Text
}

// Result is an item that matched a query.
type Result struct {
	Item    Item    `json:"item"`
	Score   float64 `json:"score,omitempty"`
	Matches []Match `json:"matches,omitempty"`
}

// queryPattern compiles a case-insensitive literal matcher for query.
func queryPattern(query string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
}

// Filter is the command-palette search: an item is included when the query
// occurs, ignoring case, in its title, description or ID. Results keep input
// order. A blank query yields no results.
func Filter(items []Item, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	re := queryPattern(query)

	var out []Result
	for _, it := range items {
		var matches []Match
		if loc := re.FindStringIndex(it.Title); loc != nil {
			matches = append(matches, Match{Field: FieldTitle, Text: it.Title, Offset: loc[0]})
		}
		if loc := re.FindStringIndex(it.Description); loc != nil {
			matches = append(matches, Match{Field: FieldContent, Text: it.Description, Offset: loc[0]})
		}
		if matches == nil && !re.MatchString(it.ID) {
			continue
		}
		out = append(out, Result{Item: it, Matches: matches})
	}
	return out
}

// Marker wraps highlighted spans. When Escape is set, it is applied to the
// matched and unmatched pieces of the text separately, so matching always
// runs on the raw text.
type Marker struct {
	Open   string
	Close  string
	Escape func(string) string
}

// DefaultMarker is the HTML highlight marker.
var DefaultMarker = Marker{Open: "<mark>", Close: "</mark>", Escape: html.EscapeString}

// Highlight wraps every case-insensitive occurrence of query in text with m.
// Text outside the occurrences is otherwise unchanged.
func Highlight(text, query string, m Marker) string {
	esc := m.Escape
	if esc == nil {
		esc = func(s string) string { return s }
	}
	if query == "" || text == "" {
		return esc(text)
	}

	var b strings.Builder
	last := 0
	for _, loc := range queryPattern(query).FindAllStringIndex(text, -1) {
		b.WriteString(esc(text[last:loc[0]]))
		b.WriteString(m.Open)
		b.WriteString(esc(text[loc[0]:loc[1]]))
		b.WriteString(m.Close)
		last = loc[1]
	}
	b.WriteString(esc(text[last:]))
	return b.String()
}
