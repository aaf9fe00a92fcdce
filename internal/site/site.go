// Package site ties the content packages together for long-running surfaces:
// it keeps the search index in step with the docs folder and assembles
// rendered pages.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/sgx-labs/docsite/internal/content"
	"github.com/sgx-labs/docsite/internal/directive"
	"github.com/sgx-labs/docsite/internal/navindex"
	"github.com/sgx-labs/docsite/internal/search"
	"github.com/sgx-labs/docsite/internal/wikilink"
)

// ErrNoPage is returned when a route names no document in the tree.
var ErrNoPage = errors.New("page not found")

// Site serves one content root.
type Site struct {
	Loader   *content.Loader
	Catalog  []search.Item // static entries merged into the index
	Registry *directive.Registry
	Nav      navindex.Config
	Latest   []string      // priority IDs of the default view
	Debounce time.Duration // palette debounce window, clamped by search.ClampDebounce
	Logger   *slog.Logger

	snap atomic.Pointer[Index]
}

// Index is a built search snapshot.
type Index struct {
	Tree     content.Tree     `json:"-"`
	Items    []search.Item    `json:"items"`
	Headings []search.Heading `json:"-"`
	Built    time.Time        `json:"built"`

	stamp uint64 // fingerprint of the tree and file stats it was built from
}

func (s *Site) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Index returns the search index for the current content. The tree is read
// through the scope attached to ctx, or a fresh one, and the last snapshot
// is reused only while the tree and every document's size and modification
// time are unchanged.
func (s *Site) Index(ctx context.Context) (*Index, error) {
	scope := content.ScopeFrom(ctx)
	if scope == nil {
		scope = s.Loader.NewScope()
	}
	tree, err := scope.Tree()
	if err != nil {
		return nil, err
	}
	if idx := s.snap.Load(); idx != nil && idx.stamp == s.fingerprint(tree) {
		return idx, nil
	}
	idx, err := s.Build(ctx, scope)
	if err != nil {
		return nil, err
	}
	s.snap.Store(idx)
	return idx, nil
}

// Invalidate drops the last snapshot. paths is informational.
func (s *Site) Invalidate(paths []string) {
	s.snap.Store(nil)
	s.logger().Debug("search index invalidated", "changed", len(paths))
}

// fingerprint hashes the tree shape and the stat of every document.
func (s *Site) fingerprint(tree content.Tree) uint64 {
	h := xxhash.New()
	docs := filepath.Join(s.Loader.Root, content.DocsDir)
	for _, sec := range tree.Sections {
		fmt.Fprintf(h, "s\x00%s\x00", sec.ID)
		for _, it := range sec.Items {
			fmt.Fprintf(h, "i\x00%s\x00%s\x00", it.ID, it.Path)
			if info, err := os.Stat(filepath.Join(docs, filepath.FromSlash(it.Path))); err == nil {
				fmt.Fprintf(h, "%d\x00%d\x00", info.Size(), info.ModTime().UnixNano())
			}
		}
	}
	return h.Sum64()
}

// Build reads the tree and every document once through scope.
func (s *Site) Build(ctx context.Context, scope *content.Scope) (*Index, error) {
	tree, err := scope.Tree()
	if err != nil {
		return nil, err
	}
	stamp := s.fingerprint(tree)
	items := search.FromTree(tree)
	if err := search.Enrich(ctx, scope, items); err != nil {
		return nil, fmt.Errorf("enrich search items: %w", err)
	}

	var headings []search.Heading
	for _, it := range items {
		doc, err := scope.Load(it.Path)
		if err != nil {
			continue
		}
		headings = append(headings, search.BuildHeadings(it.ID, it.Href, []byte(doc.Body))...)
	}

	items = append(items, s.Catalog...)
	s.logger().Info("search index built", "items", len(items), "headings", len(headings), "reads", scope.Reads())
	return &Index{Tree: tree, Items: items, Headings: headings, Built: time.Now(), stamp: stamp}, nil
}

// Search runs the palette filter, or the fuzzy ranker when fuzzy is set.
func (idx *Index) Search(query string, fuzzy bool) []search.Result {
	if fuzzy {
		return search.Fuzzy(idx.Items, query)
	}
	return search.Filter(idx.Items, query)
}

// DefaultView is the empty-query view for the given recents.
func (s *Site) DefaultView(idx *Index, recents []search.Item) search.View {
	latest := s.Latest
	if len(latest) == 0 {
		latest = search.DefaultLatestIDs
	}
	return search.DefaultView(idx.Items, recents, latest)
}

// Home builds the landing-page navigation through scope.
func (s *Site) Home(ctx context.Context, scope *content.Scope) (*navindex.Home, error) {
	p := &navindex.Parser{
		Root:   s.Loader.Root,
		Scope:  scope,
		Config: s.Nav,
		Logger: s.logger(),
	}
	return p.Home(ctx)
}

// Page is a document prepared for display.
type Page struct {
	SectionID string              `json:"section_id"`
	FileID    string              `json:"file_id"`
	Title     string              `json:"title"`
	Path      string              `json:"path"`
	Meta      content.Frontmatter `json:"meta"`
	Segments  []RenderedSegment   `json:"segments"`
	Headings  []search.Heading    `json:"headings"`
	Body      string              `json:"markdown"`
}

// RenderedSegment is a directive segment with its markdown rendered to HTML.
type RenderedSegment struct {
	directive.Segment
	HTML string `json:"html,omitempty"`
}

var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Page loads the document at /docs/sectionID/fileID, resolves its wiki links
// and splits it into segments.
func (s *Site) Page(scope *content.Scope, sectionID, fileID string) (*Page, error) {
	tree, err := scope.Tree()
	if err != nil {
		return nil, err
	}
	item, ok := tree.FindItem(sectionID, fileID)
	if !ok {
		return nil, ErrNoPage
	}
	doc, err := scope.Load(item.Path)
	if err != nil {
		return nil, err
	}

	body := wikilink.Resolve(doc.Body, tree)
	seg := &directive.Segmenter{Registry: s.Registry, Logger: s.logger()}

	page := &Page{
		SectionID: sectionID,
		FileID:    fileID,
		Title:     item.Label,
		Path:      item.Path,
		Meta:      doc.Meta,
		Body:      body,
		Headings:  search.BuildHeadings(fileID, content.Route(sectionID, fileID), []byte(body)),
	}
	if doc.Meta.Title != "" {
		page.Title = doc.Meta.Title
	}
	for _, sg := range seg.Segment(body) {
		rs := RenderedSegment{Segment: sg}
		if sg.Kind == directive.KindMarkdown {
			var buf bytes.Buffer
			if err := renderer.Convert([]byte(sg.Content), &buf); err != nil {
				return nil, fmt.Errorf("render %s: %w", item.Path, err)
			}
			rs.HTML = buf.String()
		}
		page.Segments = append(page.Segments, rs)
	}
	if page.Headings == nil {
		page.Headings = []search.Heading{}
	}
	return page, nil
}
