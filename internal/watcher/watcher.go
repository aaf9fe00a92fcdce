// Package watcher monitors the docs folder and reports changed markdown files
// so long-running processes can drop cached indexes.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sgx-labs/docsite/internal/content"
)

// DefaultDelay is how long the watcher waits for more events before flushing.
const DefaultDelay = 500 * time.Millisecond

// Watcher batches filesystem events under a content root.
type Watcher struct {
	Root     string
	Delay    time.Duration
	Logger   *slog.Logger
	OnChange func(paths []string)
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// Watch blocks until ctx is done, calling OnChange with the sorted,
// root-relative slash paths of markdown files touched in each quiet window.
func (w *Watcher) Watch(ctx context.Context) error {
	log := w.logger()
	docs := filepath.Join(w.Root, content.DocsDir)
	if info, err := os.Stat(docs); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", content.ErrContentRoot, docs)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dirs := walkDirs(docs)
	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			log.Warn("could not watch directory", "dir", d, "err", err)
		}
	}
	log.Info("watching docs", "dirs", len(dirs), "root", docs)

	delay := w.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]bool)
		timer   *time.Timer
	)
	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]bool)
		mu.Unlock()

		if len(paths) == 0 || w.OnChange == nil {
			return
		}
		sort.Strings(paths)
		log.Debug("docs changed", "files", len(paths))
		w.OnChange(paths)
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !skipDir(filepath.Base(event.Name)) {
						if err := fw.Add(event.Name); err != nil {
							log.Warn("could not watch directory", "dir", event.Name, "err", err)
						}
					}
					// A new section changes the tree even while still empty.
					w.mark(&mu, pending, event.Name)
					mu.Lock()
					timer = reset(timer, delay, flush)
					mu.Unlock()
					continue
				}
			}

			if !relevant(event) {
				continue
			}
			w.mark(&mu, pending, event.Name)
			mu.Lock()
			timer = reset(timer, delay, flush)
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) mark(mu *sync.Mutex, pending map[string]bool, abs string) {
	mu.Lock()
	pending[relativePath(abs, w.Root)] = true
	mu.Unlock()
}

func reset(t *time.Timer, d time.Duration, f func()) *time.Timer {
	if t != nil {
		t.Stop()
	}
	return time.AfterFunc(d, f)
}

// relevant reports whether event touches a visible markdown file. Removes
// and renames of directories come through here as well, since fsnotify
// cannot stat a path that no longer exists.
func relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	if !strings.HasSuffix(base, content.MarkdownExt) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

func walkDirs(root string) []string {
	var dirs []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}

func relativePath(filePath, root string) string {
	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		return filePath
	}
	return filepath.ToSlash(rel)
}
