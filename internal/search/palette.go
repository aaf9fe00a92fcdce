package search

import (
	"strings"
	"sync"
	"time"
)

// RecentStore is the recency list the palette reads and records into.
type RecentStore interface {
	Get() []Item
	Record(Item)
}

// Key is a palette keyboard input.
type Key int

const (
	KeyDown Key = iota
	KeyUp
	KeyEnter
	KeyEscape
)

// PaletteOptions configures a Palette.
type PaletteOptions struct {
	Latest   []string      // priority IDs of the default view; nil uses DefaultLatestIDs
	Debounce time.Duration // clamped, zero uses DefaultDebounce
	// OnUpdate is called after debounced results are delivered, outside
	// any palette lock.
	OnUpdate func()
}

// Palette is the command-palette search state: the query, its debounced
// results, the default view and the keyboard selection.
type Palette struct {
	recents  RecentStore
	latest   []string
	onUpdate func()
	debounce *Debouncer[[]Result]

	mu      sync.Mutex
	items   []Item
	open    bool
	query   string
	results []Result
	nav     *Navigator
}

// NewPalette returns a closed palette over items.
func NewPalette(items []Item, recents RecentStore, opts PaletteOptions) *Palette {
	latest := opts.Latest
	if latest == nil {
		latest = DefaultLatestIDs
	}
	p := &Palette{
		recents:  recents,
		latest:   latest,
		onUpdate: opts.OnUpdate,
		debounce: NewDebouncer[[]Result](opts.Debounce),
		items:    items,
		nav:      NewNavigator(0),
	}
	p.nav.Reset(p.entryCountLocked())
	return p
}

// Open shows the palette with the default view.
func (p *Palette) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.nav.Reset(p.entryCountLocked())
}

// IsOpen reports whether the palette is shown.
func (p *Palette) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Close hides the palette and clears the query.
func (p *Palette) Close() {
	p.debounce.Cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	p.query = ""
	p.results = nil
	p.nav.Reset(p.entryCountLocked())
}

// SetItems replaces the searchable items. Pending results are recomputed.
func (p *Palette) SetItems(items []Item) {
	p.mu.Lock()
	p.items = items
	q := p.query
	p.mu.Unlock()
	p.SetQuery(q)
}

// SetQuery updates the query and drops the previous results and selection
// at once. A blank query switches to the default view; otherwise results
// are recomputed after the debounce window.
func (p *Palette) SetQuery(q string) {
	p.mu.Lock()
	p.query = q
	p.results = nil
	p.nav.Reset(p.entryCountLocked())
	items := p.items
	p.mu.Unlock()

	if strings.TrimSpace(q) == "" {
		p.debounce.Cancel()
		return
	}

	p.debounce.ScheduleThen(func() []Result {
		return Filter(items, q)
	}, func(results []Result) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.query != q {
			return
		}
		p.results = results
		p.nav.Reset(p.entryCountLocked())
	}, func() {
		if p.onUpdate != nil {
			p.onUpdate()
		}
	})
}

// Query returns the current query.
func (p *Palette) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Results returns the last delivered results.
func (p *Palette) Results() []Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

// View returns the default view shown for a blank query.
func (p *Palette) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *Palette) viewLocked() View {
	var recents []Item
	if p.recents != nil {
		recents = p.recents.Get()
	}
	return DefaultView(p.items, recents, p.latest)
}

// Entries returns the navigable list: the flattened default view for a
// blank query, else the result items.
func (p *Palette) Entries() []Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entriesLocked()
}

func (p *Palette) entriesLocked() []Item {
	if strings.TrimSpace(p.query) == "" {
		return p.viewLocked().Flatten()
	}
	out := make([]Item, 0, len(p.results))
	for _, r := range p.results {
		out = append(out, r.Item)
	}
	return out
}

func (p *Palette) entryCountLocked() int {
	return len(p.entriesLocked())
}

// Selected returns the selected entry index or None.
func (p *Palette) Selected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nav.Selected()
}

// Press handles a key. Enter returns the activated item, records it as
// recent and closes the palette; Escape clears the query and closes.
func (p *Palette) Press(k Key) (Item, bool) {
	p.mu.Lock()
	switch k {
	case KeyDown:
		p.nav.Down()
	case KeyUp:
		p.nav.Up()
	case KeyEscape:
		p.mu.Unlock()
		p.Close()
		return Item{}, false
	case KeyEnter:
		entries := p.entriesLocked()
		idx, ok := p.nav.Enter()
		p.mu.Unlock()
		if !ok || idx >= len(entries) {
			return Item{}, false
		}
		it := entries[idx]
		if p.recents != nil {
			p.recents.Record(it)
		}
		p.Close()
		return it, true
	}
	p.mu.Unlock()
	return Item{}, false
}
