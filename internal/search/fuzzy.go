package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// titleSource exposes item titles to the fuzzy matcher.
type titleSource []Item

func (s titleSource) String(i int) string { return s[i].Title }

func (s titleSource) Len() int { return len(s) }

// Fuzzy ranks items by typo-tolerant title match, best first. It backs the
// CLI search and is never used by the palette, whose filter is literal.
func Fuzzy(items []Item, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	matches := fuzzy.FindFrom(query, titleSource(items))
	out := make([]Result, 0, len(matches))
	for _, m := range matches {
		r := Result{Item: items[m.Index], Score: float64(m.Score)}
		if len(m.MatchedIndexes) > 0 {
			r.Matches = []Match{{Field: FieldTitle, Text: m.Str, Offset: m.MatchedIndexes[0]}}
		}
		out = append(out, r)
	}
	return out
}
