package content

import (
	"net/url"
	"strings"
	"unicode"
)

// MarkdownExt is the only file extension indexed as a document.
const MarkdownExt = ".md"

// urlReserved are characters stripped from IDs so routes stay unambiguous.
const urlReserved = `/\?#%&:;"'<>|[]{}` + "`"

// FileID derives the stable, URL-safe document identifier from a file name:
// the ".md" extension is dropped and symbol, pictographic, whitespace and
// URL-reserved characters are removed. If nothing is left, the name without
// its extension is used as is.
//
// Every route in the site is built from this mapping. Changing it changes
// every generated URL.
func FileID(name string) string {
	base := strings.TrimSuffix(name, MarkdownExt)
	id := strings.Map(func(r rune) rune {
		if dropFromID(r) {
			return -1
		}
		return r
	}, base)
	if id == "" {
		return base
	}
	return id
}

func dropFromID(r rune) bool {
	switch {
	case unicode.IsSpace(r), unicode.IsControl(r):
		return true
	case unicode.Is(unicode.S, r):
		return true
	case r == 0x200D, r == 0x20E3: // zero width joiner, combining keycap
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0xE0020 && r <= 0xE007F: // emoji tag sequences
		return true
	case strings.ContainsRune(urlReserved, r):
		return true
	}
	return false
}

// Label derives the display name from a file or folder name. The ordering
// prefix is everything up to and including the first underscore.
func Label(name string) string {
	base := strings.TrimSuffix(name, MarkdownExt)
	if _, after, ok := strings.Cut(base, "_"); ok {
		return after
	}
	return base
}

// Route returns the navigable path of a document.
func Route(sectionID, fileID string) string {
	return "/docs/" + url.PathEscape(sectionID) + "/" + url.PathEscape(fileID)
}

// SectionRoute returns the navigable path of a section.
func SectionRoute(sectionID string) string {
	return "/docs/" + url.PathEscape(sectionID)
}
