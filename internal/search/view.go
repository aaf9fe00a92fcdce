package search

// GroupLimit caps each group of the default view.
const GroupLimit = 4

// DefaultLatestIDs is the built-in priority list of the "latest" group.
var DefaultLatestIDs = []string{"button", "input", "select", "tabs", "modal", "table"}

// View is what the palette shows for an empty query.
type View struct {
	Latest []Item `json:"latest"`
	Recent []Item `json:"recent"`
}

// DefaultView picks up to GroupLimit items from latestIDs, in that order and
// only when present in items, followed by up to GroupLimit recents as given
// (most recent first).
func DefaultView(items, recents []Item, latestIDs []string) View {
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		if _, dup := byID[it.ID]; !dup {
			byID[it.ID] = it
		}
	}

	v := View{Latest: []Item{}, Recent: []Item{}}
	seen := make(map[string]bool)
	for _, id := range latestIDs {
		if len(v.Latest) == GroupLimit {
			break
		}
		it, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		v.Latest = append(v.Latest, it)
	}
	for _, it := range recents {
		if len(v.Recent) == GroupLimit {
			break
		}
		v.Recent = append(v.Recent, it)
	}
	return v
}

// Flatten joins both groups for keyboard navigation indexing.
func (v View) Flatten() []Item {
	out := make([]Item, 0, len(v.Latest)+len(v.Recent))
	out = append(out, v.Latest...)
	return append(out, v.Recent...)
}

// Len returns the number of navigable entries.
func (v View) Len() int {
	return len(v.Latest) + len(v.Recent)
}
