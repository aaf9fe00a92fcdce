// Package search builds the search index of the docs site and implements the
// command-palette filter, the in-page heading ranking and the palette state.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sgx-labs/docsite/internal/content"
)

// Kind classifies a search item.
type Kind string

const (
	KindPage      Kind = "page"
	KindComponent Kind = "component"
	KindResource  Kind = "resource"
)

// Item is one searchable entry.
type Item struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Href        string `json:"href"`
	Path        string `json:"path,omitempty"` // docs-relative source file, tree items only
}

// FromTree builds one page item per document. A file ID that occurs in
// more than one section is qualified as section/file.
func FromTree(tree content.Tree) []Item {
	counts := make(map[string]int)
	for _, s := range tree.Sections {
		for _, it := range s.Items {
			counts[it.ID]++
		}
	}

	items := make([]Item, 0, tree.Len())
	for _, s := range tree.Sections {
		for _, it := range s.Items {
			id := it.ID
			if counts[id] > 1 {
				id = s.ID + "/" + it.ID
			}
			items = append(items, Item{
				ID:          id,
				Kind:        KindPage,
				Title:       it.Label,
				Description: s.Label,
				Href:        content.Route(s.ID, it.ID),
				Path:        it.Path,
			})
		}
	}
	return items
}

// enrichLimit bounds concurrent document reads in Enrich.
const enrichLimit = 8

// Enrich replaces titles and descriptions with front matter values where
// documents declare them. Items without a Path and documents that fail to
// load keep their derived values.
func Enrich(ctx context.Context, scope *content.Scope, items []Item) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichLimit)
	for i := range items {
		if items[i].Path == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := scope.Load(items[i].Path)
			if err != nil {
				return nil
			}
			if doc.Meta.Title != "" {
				items[i].Title = doc.Meta.Title
			}
			if doc.Meta.Description != "" {
				items[i].Description = doc.Meta.Description
			}
			return nil
		})
	}
	return g.Wait()
}

// CatalogEntry is one entry of a static search catalog.
type CatalogEntry struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Href        string `yaml:"href"`
}

type catalogFile struct {
	Items []CatalogEntry `yaml:"items"`
}

// ErrEmptyCatalog is returned by LoadCatalog for a catalog with no entries.
var ErrEmptyCatalog = errors.New("catalog has no items")

// LoadCatalog reads a YAML catalog of the form "items: [{id, title, ...}]".
func LoadCatalog(path string) ([]CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyCatalog)
	}
	return f.Items, nil
}

// Name fragments used to classify catalog IDs. Components are checked first.
var (
	componentFragments = []string{
		"button", "input", "select", "checkbox", "radio", "switch", "tabs",
		"table", "modal", "dialog", "tooltip", "badge", "card", "avatar",
		"tag", "toast", "pagination", "dropdown", "menu", "form",
	}
	resourceFragments = []string{
		"icon", "color", "font", "typography", "spacing", "template",
		"download", "logo", "illustration", "asset", "resource",
	}
)

// InferKind classifies an ID by substring.
func InferKind(id string) Kind {
	lower := strings.ToLower(id)
	for _, f := range componentFragments {
		if strings.Contains(lower, f) {
			return KindComponent
		}
	}
	for _, f := range resourceFragments {
		if strings.Contains(lower, f) {
			return KindResource
		}
	}
	return KindPage
}

// FromCatalog builds items from catalog entries, inferring their kind.
func FromCatalog(entries []CatalogEntry) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = e.ID
		}
		items = append(items, Item{
			ID:          e.ID,
			Kind:        InferKind(e.ID),
			Title:       title,
			Description: e.Description,
			Href:        e.Href,
		})
	}
	return items
}
