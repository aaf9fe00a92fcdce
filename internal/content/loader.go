package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrNotFound is the absence result of a document read. Callers treat it as
// "no such document", never as a failure.
var ErrNotFound = errors.New("document not found")

// Document is one markdown file read from the docs folder.
type Document struct {
	SectionID string      `json:"section_id"`
	FileID    string      `json:"file_id"`
	RelPath   string      `json:"path"`
	Label     string      `json:"label"`
	Body      string      `json:"body"`
	Meta      Frontmatter `json:"meta"`
	HasMeta   bool        `json:"has_meta"`
}

// Loader reads documents from a content root. An alternate root and an alias
// table are consulted only when the canonical root lacks a file.
type Loader struct {
	Root    string // contains docs/
	AltRoot string // optional, also contains docs/
	// AliasesPath points at a JSON object mapping alternate-root relative
	// paths to canonical relative paths (both relative to docs/).
	AliasesPath string
	Logger      *slog.Logger
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// NewScope starts a logical content read. Reads made through the scope are
// memoized for its lifetime; scopes never share state.
func (l *Loader) NewScope() *Scope {
	return &Scope{
		loader:  l,
		entries: make(map[string]*loadEntry),
		read:    os.ReadFile,
	}
}

// Scope is a request-scoped memoization cache for document reads. It is safe
// for concurrent use.
type Scope struct {
	loader *Loader
	read   func(string) ([]byte, error)

	mu      sync.Mutex
	entries map[string]*loadEntry

	treeOnce sync.Once
	tree     Tree
	treeErr  error

	aliasOnce sync.Once
	aliases   map[string]string // canonical -> alternate

	reads atomic.Int64
}

type loadEntry struct {
	once sync.Once
	doc  *Document
	err  error
}

// Reads returns how many file reads hit storage through this scope.
func (s *Scope) Reads() int64 {
	return s.reads.Load()
}

// Tree builds the content tree once per scope.
func (s *Scope) Tree() (Tree, error) {
	s.treeOnce.Do(func() {
		s.tree, s.treeErr = buildTree(s.loader.Root, s.loader.logger())
	})
	return s.tree, s.treeErr
}

// Load returns the document at relPath (relative to docs/). A missing file
// yields ErrNotFound.
func (s *Scope) Load(relPath string) (*Document, error) {
	key, ok := cleanRel(relPath)
	if !ok {
		s.loader.logger().Warn("rejected document path", "path", relPath)
		return nil, ErrNotFound
	}

	s.mu.Lock()
	e, exists := s.entries[key]
	if !exists {
		e = &loadEntry{}
		s.entries[key] = e
	}
	s.mu.Unlock()

	e.once.Do(func() {
		e.doc, e.err = s.load(key)
	})
	return e.doc, e.err
}

func (s *Scope) load(rel string) (*Document, error) {
	raw, err := s.readFirst(rel)
	if err != nil {
		return nil, err
	}

	parsed, perr := ParseFrontmatter(string(raw))
	if perr != nil {
		s.loader.logger().Warn("unparseable front matter, using whole file as body", "path", rel, "error", perr)
	}

	doc := &Document{
		RelPath: rel,
		Body:    parsed.Body,
		Meta:    parsed.Meta,
		HasMeta: parsed.HasMeta,
	}
	dir, file := path.Split(rel)
	doc.SectionID = strings.TrimSuffix(dir, "/")
	doc.FileID = FileID(file)
	doc.Label = Label(file)
	return doc, nil
}

// readFirst tries the canonical root, then the alternate root, then the
// alias table.
func (s *Scope) readFirst(rel string) ([]byte, error) {
	l := s.loader
	data, err := s.readFile(filepath.Join(l.Root, DocsDir, filepath.FromSlash(rel)))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return data, wrapRead(rel, err)
	}
	if l.AltRoot == "" {
		return nil, ErrNotFound
	}

	altDocs := filepath.Join(l.AltRoot, DocsDir)
	data, err = s.readFile(filepath.Join(altDocs, filepath.FromSlash(rel)))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return data, wrapRead(rel, err)
	}

	alt, ok := s.aliasFor(rel)
	if !ok {
		return nil, ErrNotFound
	}
	data, err = s.readFile(filepath.Join(altDocs, filepath.FromSlash(alt)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger().Warn("alias target missing", "path", rel, "alias", alt)
			return nil, ErrNotFound
		}
		return nil, wrapRead(rel, err)
	}
	return data, nil
}

func (s *Scope) readFile(p string) ([]byte, error) {
	s.reads.Add(1)
	return s.read(p)
}

func wrapRead(rel string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("read %s: %w", rel, err)
}

// aliasFor returns the alternate-root path that maps to canonical rel.
func (s *Scope) aliasFor(rel string) (string, bool) {
	s.aliasOnce.Do(func() {
		s.aliases = s.loadAliases()
	})
	alt, ok := s.aliases[rel]
	return alt, ok
}

func (s *Scope) loadAliases() map[string]string {
	out := make(map[string]string)
	p := s.loader.AliasesPath
	if p == "" {
		return out
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.loader.logger().Warn("cannot read alias table", "path", p, "error", err)
		}
		return out
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		s.loader.logger().Warn("malformed alias table", "path", p, "error", err)
		return out
	}

	// Reverse the table deterministically: when two alternate paths map to
	// the same canonical path, the lexically first one wins.
	alts := make([]string, 0, len(table))
	for alt := range table {
		alts = append(alts, alt)
	}
	sort.Strings(alts)
	for _, alt := range alts {
		canonical, ok := cleanRel(table[alt])
		if !ok {
			continue
		}
		cleanAlt, ok := cleanRel(alt)
		if !ok {
			continue
		}
		if _, dup := out[canonical]; !dup {
			out[canonical] = cleanAlt
		}
	}
	return out
}

// cleanRel normalizes a docs-relative path and rejects anything that would
// escape the docs folder.
func cleanRel(rel string) (string, bool) {
	rel = strings.TrimSpace(filepath.ToSlash(rel))
	if rel == "" || strings.HasPrefix(rel, "/") {
		return "", false
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

type scopeKey struct{}

// WithScope attaches a scope to ctx.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the scope attached to ctx, or nil.
func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}
