package navindex

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sgx-labs/docsite/internal/content"
	"github.com/sgx-labs/docsite/internal/wikilink"
)

// Defaults for locating and reading the index document.
const (
	DefaultIndexPattern        = `(?i)^\d+[_-]?(内容索引|content[-_ ]?index)\.md$`
	DefaultQuickStartMarker    = "快速开始"
	DefaultRecentUpdatesMarker = "最近更新"
)

// Config controls where the index document is found and which headings
// introduce its two tables.
type Config struct {
	IndexPattern        *regexp.Regexp
	QuickStartMarker    string
	RecentUpdatesMarker string
}

// DefaultConfig returns the built-in index settings.
func DefaultConfig() Config {
	return Config{
		IndexPattern:        regexp.MustCompile(DefaultIndexPattern),
		QuickStartMarker:    DefaultQuickStartMarker,
		RecentUpdatesMarker: DefaultRecentUpdatesMarker,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.IndexPattern == nil {
		c.IndexPattern = d.IndexPattern
	}
	if c.QuickStartMarker == "" {
		c.QuickStartMarker = d.QuickStartMarker
	}
	if c.RecentUpdatesMarker == "" {
		c.RecentUpdatesMarker = d.RecentUpdatesMarker
	}
	return c
}

// Card is a resolved quick-start card.
type Card struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Href        string `json:"href"`
}

// Update is a recent-updates row whose document exists and is readable.
type Update struct {
	Target      string `json:"target"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DocPath     string `json:"doc_path"`
	Href        string `json:"href"`
}

// Home is the landing-page navigation.
type Home struct {
	IndexPath     string   `json:"index_path,omitempty"`
	QuickStart    []Card   `json:"quick_start"`
	RecentUpdates []Update `json:"recent_updates"`
	UsedDefaults  bool     `json:"used_defaults"`
}

// Parser builds the landing-page navigation for one content read.
type Parser struct {
	Root   string         // content root containing docs/
	Scope  *content.Scope // falls back to the scope attached to ctx
	Config Config
	Logger *slog.Logger
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Home locates the index document and resolves both of its sections. Only
// an unusable content root is an error: a missing index document yields the
// default cards and no recent updates.
func (p *Parser) Home(ctx context.Context) (*Home, error) {
	scope := p.Scope
	if scope == nil {
		scope = content.ScopeFrom(ctx)
	}
	if scope == nil {
		return nil, errors.New("navindex: no content scope")
	}
	cfg := p.Config.withDefaults()
	log := p.logger()

	tree, err := scope.Tree()
	if err != nil {
		return nil, err
	}

	home := &Home{QuickStart: []Card{}, RecentUpdates: []Update{}}
	doc := p.findIndex(scope, tree, cfg.IndexPattern)
	if doc == nil {
		log.Info("no index document, using default quick start", "pattern", cfg.IndexPattern.String())
		home.QuickStart = DefaultCards(tree)
		home.UsedDefaults = true
		return home, nil
	}
	home.IndexPath = doc.RelPath

	entries, err := ParseQuickStart(doc.Body, cfg.QuickStartMarker)
	if err != nil {
		log.Warn("quick start section unusable, using defaults", "path", doc.RelPath, "error", err)
		home.QuickStart = DefaultCards(tree)
		home.UsedDefaults = true
	} else {
		home.QuickStart = ResolveCards(entries, tree)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := ParseRecentUpdates(doc.Body, cfg.RecentUpdatesMarker)
	if err != nil {
		log.Warn("recent updates section unusable", "path", doc.RelPath, "error", err)
		return home, nil
	}
	home.RecentUpdates = verifyUpdates(rows, tree, scope, log)
	return home, nil
}

// findIndex returns the first document whose file name matches pattern,
// looking in the docs folder itself before the sections.
func (p *Parser) findIndex(scope *content.Scope, tree content.Tree, pattern *regexp.Regexp) *content.Document {
	var candidates []string
	if entries, err := os.ReadDir(filepath.Join(p.Root, content.DocsDir)); err == nil {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			if pattern.MatchString(name) {
				candidates = append(candidates, name)
			}
		}
	}
	for _, s := range tree.Sections {
		for _, it := range s.Items {
			if pattern.MatchString(path.Base(it.Path)) {
				candidates = append(candidates, it.Path)
			}
		}
	}

	for _, rel := range candidates {
		doc, err := scope.Load(rel)
		if err == nil {
			return doc
		}
		p.logger().Warn("index document unreadable", "path", rel, "error", err)
	}
	return nil
}

// ResolveCards turns parsed entries into cards with live routes. A target
// that resolves nowhere points at its section when one is named, else "#".
func ResolveCards(entries []Entry, tree content.Tree) []Card {
	cards := make([]Card, 0, len(entries))
	for _, e := range entries {
		cards = append(cards, Card{
			Title:       e.Title,
			Description: e.Description,
			Href:        entryHref(e.Target, tree),
		})
	}
	return cards
}

func entryHref(target string, tree content.Tree) string {
	section, file, qualified := strings.Cut(target, "/")
	if !qualified {
		if href, ok := wikilink.Href(target, tree); ok {
			return href
		}
		return "#"
	}
	if href, ok := wikilink.Href(target, tree); ok {
		if _, found := tree.FindItem(section, content.FileID(strings.TrimSuffix(file, content.MarkdownExt))); found {
			return href
		}
	}
	if section != "" {
		return content.SectionRoute(section)
	}
	return "#"
}

// verifyUpdates keeps the rows whose document exists in the tree and loads.
func verifyUpdates(rows []RawUpdate, tree content.Tree, scope *content.Scope, log *slog.Logger) []Update {
	out := make([]Update, 0, len(rows))
	for _, r := range rows {
		docPath := r.DocPath
		if docPath != "" && !strings.HasSuffix(docPath, content.MarkdownExt) {
			docPath += content.MarkdownExt
		}
		section, item, ok := tree.FindByPath(docPath)
		if !ok {
			log.Warn("recent update points at unknown document", "title", r.Title, "doc_path", r.DocPath)
			continue
		}
		if _, err := scope.Load(item.Path); err != nil {
			log.Warn("recent update document unreadable", "doc_path", r.DocPath, "error", err)
			continue
		}
		title := r.Title
		if title == "" {
			title = item.Label
		}
		out = append(out, Update{
			Target:      r.Target,
			Title:       title,
			Description: r.Description,
			Status:      r.Status,
			DocPath:     item.Path,
			Href:        content.Route(section.ID, item.ID),
		})
	}
	return out
}
