// Package navindex reads the landing-page index document: the quick-start
// card table and the recent-updates table.
package navindex

import (
	"errors"
	"strings"

	"github.com/sgx-labs/docsite/internal/wikilink"
)

// ErrMalformed is returned when a section of the index document does not
// have the expected shape. Callers fall back rather than fail.
var ErrMalformed = errors.New("malformed navigation index")

// SplitRow splits one markdown table row into trimmed cells. The outer pipes
// are optional. A "|" inside an open [[...]] span or written as "\|" does not
// end a cell; inside a span the text is kept verbatim so wiki-link parsing
// can see the escape.
func SplitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}

	var (
		cells []string
		cell  strings.Builder
		depth int
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case strings.HasPrefix(line[i:], "[["):
			depth++
			cell.WriteString("[[")
			i++
		case depth > 0 && strings.HasPrefix(line[i:], "]]"):
			depth--
			cell.WriteString("]]")
			i++
		case c == '\\' && i+1 < len(line) && line[i+1] == '|':
			if depth > 0 {
				cell.WriteString(`\|`)
			} else {
				cell.WriteByte('|')
			}
			i++
		case c == '|' && depth == 0:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(c)
		}
	}
	return append(cells, strings.TrimSpace(cell.String()))
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

// isSeparator reports whether line is a header separator row like
// "| --- | :---: |".
func isSeparator(line string) bool {
	if !isTableLine(line) {
		return false
	}
	for _, cell := range SplitRow(line) {
		c := strings.TrimSuffix(strings.TrimPrefix(cell, ":"), ":")
		if c == "" || strings.Trim(c, "-") != "" {
			return false
		}
	}
	return true
}

func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

type scanState int

const (
	beforeHeading scanState = iota
	inTableHeader
	inTableBody
	done
)

// table is the first markdown table under a marked heading.
type table struct {
	header []string
	rows   [][]string
}

// scanTable walks body line by line looking for the heading containing
// marker and the table that follows it. Only blank lines may sit between the
// heading and the table.
func scanTable(body, marker string) (table, bool) {
	var (
		t        table
		state    = beforeHeading
		sawTable bool
	)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		switch state {
		case beforeHeading:
			if isHeading(line) && strings.Contains(line, marker) {
				state = inTableHeader
			}
		case inTableHeader:
			switch {
			case t.header == nil && strings.TrimSpace(line) == "":
			case t.header == nil && isTableLine(line):
				t.header = SplitRow(line)
			case t.header != nil && isSeparator(line):
				sawTable = true
				state = inTableBody
			default:
				state = done
			}
		case inTableBody:
			if !isTableLine(line) {
				state = done
				break
			}
			t.rows = append(t.rows, SplitRow(line))
		}
		if state == done {
			break
		}
	}
	return t, sawTable
}

// sectionLines returns the lines after the heading containing marker, up to
// the next heading.
func sectionLines(body, marker string) ([]string, bool) {
	var (
		out   []string
		found bool
	)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !found {
			found = isHeading(line) && strings.Contains(line, marker)
			continue
		}
		if isHeading(line) {
			break
		}
		out = append(out, line)
	}
	return out, found
}

// cellLink extracts the single wiki-link of a cell, ignoring emphasis around
// it.
func cellLink(cell string) (wikilink.Link, bool) {
	links := wikilink.Links(cell)
	if len(links) != 1 {
		return wikilink.Link{}, false
	}
	return links[0], true
}

func stripEmphasis(s string) string {
	s = strings.TrimSpace(s)
	for _, mark := range []string{"**", "__"} {
		if len(s) > 2*len(mark) && strings.HasPrefix(s, mark) && strings.HasSuffix(s, mark) {
			s = strings.TrimSpace(s[len(mark) : len(s)-len(mark)])
		}
	}
	return s
}
