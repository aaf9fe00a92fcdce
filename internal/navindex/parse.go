package navindex

import (
	"fmt"
	"strings"
)

// QuickStartSize is the number of cards the quick-start section must hold.
const QuickStartSize = 6

const quickStartColumns = 3

// Entry is one quick-start item as written in the index document.
type Entry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Target      string `json:"target,omitempty"`
}

// RawUpdate is one recent-updates row before it is checked against the tree.
type RawUpdate struct {
	Target      string `json:"target"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DocPath     string `json:"doc_path"`
}

// ParseQuickStart reads the quick-start entries under the heading containing
// marker. The 3-column table form is tried first, then the bold-title form.
// Anything other than exactly six entries is ErrMalformed.
func ParseQuickStart(body, marker string) ([]Entry, error) {
	if t, ok := scanTable(body, marker); ok {
		if entries, err := quickStartTable(t); err == nil {
			return entries, nil
		}
	}
	lines, found := sectionLines(body, marker)
	if !found {
		return nil, fmt.Errorf("%w: no %q heading", ErrMalformed, marker)
	}
	entries := quickStartBold(lines)
	if len(entries) != QuickStartSize {
		return nil, fmt.Errorf("%w: %d quick-start entries, want %d", ErrMalformed, len(entries), QuickStartSize)
	}
	return entries, nil
}

// quickStartTable expects two pairs of rows: a row of links followed by a
// row of descriptions. A header row made of links counts as the first link
// row.
func quickStartTable(t table) ([]Entry, error) {
	rows := t.rows
	if rowHasLinks(t.header) {
		rows = append([][]string{t.header}, rows...)
	}
	if len(rows) != 4 {
		return nil, fmt.Errorf("%w: %d table rows, want 4", ErrMalformed, len(rows))
	}

	entries := make([]Entry, 0, QuickStartSize)
	for pair := 0; pair < 2; pair++ {
		links, descs := rows[2*pair], rows[2*pair+1]
		if len(links) != quickStartColumns || len(descs) != quickStartColumns {
			return nil, fmt.Errorf("%w: want %d columns", ErrMalformed, quickStartColumns)
		}
		for col := 0; col < quickStartColumns; col++ {
			link, ok := cellLink(links[col])
			if !ok {
				return nil, fmt.Errorf("%w: cell %q has no link", ErrMalformed, links[col])
			}
			entries = append(entries, Entry{
				Title:       link.Text(),
				Description: stripEmphasis(descs[col]),
				Target:      link.Target,
			})
		}
	}
	return entries, nil
}

func rowHasLinks(row []string) bool {
	if len(row) == 0 {
		return false
	}
	for _, cell := range row {
		if _, ok := cellLink(cell); !ok {
			return false
		}
	}
	return true
}

// quickStartBold reads repeated "**Title**" lines, each followed by a
// description line. The title may itself be a wiki-link.
func quickStartBold(lines []string) []Entry {
	var (
		entries []Entry
		current *Entry
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isBoldLine(trimmed) {
			entries = append(entries, boldEntry(trimmed))
			current = &entries[len(entries)-1]
			continue
		}
		if current != nil && current.Description == "" {
			current.Description = strings.TrimSpace(strings.TrimLeft(trimmed, "-*> "))
			current = nil
		}
	}
	return entries
}

func isBoldLine(s string) bool {
	return len(s) > 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**")
}

func boldEntry(line string) Entry {
	inner := stripEmphasis(line)
	if link, ok := cellLink(inner); ok {
		return Entry{Title: link.Text(), Target: link.Target}
	}
	return Entry{Title: inner}
}

// ParseRecentUpdates reads the rows of the table under the heading
// containing marker. Columns are title link, description, status and
// document path; short rows are padded so the caller can reject them.
func ParseRecentUpdates(body, marker string) ([]RawUpdate, error) {
	t, ok := scanTable(body, marker)
	if !ok {
		return nil, fmt.Errorf("%w: no %q table", ErrMalformed, marker)
	}
	out := make([]RawUpdate, 0, len(t.rows))
	for _, row := range t.rows {
		cells := make([]string, 4)
		copy(cells, row)
		u := RawUpdate{
			Description: stripEmphasis(cells[1]),
			Status:      stripEmphasis(cells[2]),
			DocPath:     strings.Trim(strings.TrimSpace(cells[3]), "`"),
		}
		if link, ok := cellLink(cells[0]); ok {
			u.Target = link.Target
			u.Title = link.Text()
		} else {
			u.Title = stripEmphasis(cells[0])
		}
		out = append(out, u)
	}
	return out, nil
}
