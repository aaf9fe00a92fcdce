package content

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DocsDir is the folder under the content root holding the sections.
const DocsDir = "docs"

// ErrContentRoot is returned when the content root itself cannot be used.
// This is an operator configuration error, not a document error.
var ErrContentRoot = errors.New("content root not found")

// Item is the navigation summary of one document.
type Item struct {
	ID    string `json:"id"`
	Path  string `json:"path"` // section/file.md, relative to the docs folder
	Label string `json:"label"`
}

// Section is one top-level folder of documents.
type Section struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Tree is the ordered section index of the docs folder.
type Tree struct {
	Sections []Section `json:"sections"`
}

// FindSection returns the section with the given ID.
func (t Tree) FindSection(id string) (Section, bool) {
	for _, s := range t.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// FindItem returns the document with fileID inside section sectionID.
func (t Tree) FindItem(sectionID, fileID string) (Item, bool) {
	s, ok := t.FindSection(sectionID)
	if !ok {
		return Item{}, false
	}
	for _, it := range s.Items {
		if it.ID == fileID {
			return it, true
		}
	}
	return Item{}, false
}

// FindByPath returns the section and item whose Path is docPath.
func (t Tree) FindByPath(docPath string) (Section, Item, bool) {
	for _, s := range t.Sections {
		for _, it := range s.Items {
			if it.Path == docPath {
				return s, it, true
			}
		}
	}
	return Section{}, Item{}, false
}

// FirstItem returns the first document of a section.
func (t Tree) FirstItem(sectionID string) (Item, bool) {
	s, ok := t.FindSection(sectionID)
	if !ok || len(s.Items) == 0 {
		return Item{}, false
	}
	return s.Items[0], true
}

// Len returns the number of documents in the tree.
func (t Tree) Len() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Items)
	}
	return n
}

// BuildTree builds the tree for the docs folder under root.
func BuildTree(root string) (Tree, error) {
	return buildTree(root, slog.Default())
}

func buildTree(root string, log *slog.Logger) (Tree, error) {
	tree := Tree{Sections: []Section{}}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return tree, fmt.Errorf("%w: %s", ErrContentRoot, root)
	}

	docsPath := filepath.Join(root, DocsDir)
	entries, err := os.ReadDir(docsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tree, nil
		}
		return tree, fmt.Errorf("read docs dir: %w", err)
	}

	for _, dir := range sortedEntries(entries) {
		if !dir.IsDir() || hidden(dir.Name()) {
			continue
		}
		section := Section{
			ID:    dir.Name(),
			Label: Label(dir.Name()),
			Items: []Item{},
		}
		files, err := os.ReadDir(filepath.Join(docsPath, dir.Name()))
		if err != nil {
			log.Warn("skipping unreadable section", "section", dir.Name(), "error", err)
			continue
		}
		seen := make(map[string]int)
		for _, f := range sortedEntries(files) {
			if f.IsDir() || hidden(f.Name()) || !strings.HasSuffix(f.Name(), MarkdownExt) {
				continue
			}
			id := FileID(f.Name())
			seen[id]++
			if n := seen[id]; n > 1 {
				dup := id
				id = id + "-" + strconv.Itoa(n)
				log.Warn("duplicate document id", "section", section.ID, "file", f.Name(), "id", dup, "renamed", id)
			}
			section.Items = append(section.Items, Item{
				ID:    id,
				Path:  section.ID + "/" + f.Name(),
				Label: Label(f.Name()),
			})
		}
		tree.Sections = append(tree.Sections, section)
	}
	return tree, nil
}

// sortedEntries orders entries by name. os.ReadDir already sorts, but the
// routing contract depends on it so it is enforced here.
func sortedEntries(entries []os.DirEntry) []os.DirEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
