// Package recency keeps the recently visited items list. The list is
// persisted under one key and cached in memory until another writer changes
// it. Concurrent writers follow last-write-wins.
package recency

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/sgx-labs/docsite/internal/search"
)

// DefaultKey is the storage key of the list.
const DefaultKey = "docsite.recent"

// Limit is the maximum number of entries kept.
const Limit = 8

// Storage is durable key-value storage.
type Storage interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Notifier reports changes to a key made by other writers.
type Notifier interface {
	Subscribe(key string, fn func()) (cancel func())
}

// Options configures a Store.
type Options struct {
	Key      string   // defaults to DefaultKey
	Notifier Notifier // optional
	Logger   *slog.Logger
}

// Store is the recency list. It is safe for concurrent use.
type Store struct {
	storage Storage
	key     string
	log     *slog.Logger
	cancel  func()

	mu     sync.Mutex
	cached []search.Item
	valid  bool
}

// New returns a store over storage. When a notifier is given, the cache is
// dropped whenever the persisted value changes elsewhere.
func New(storage Storage, opts Options) *Store {
	s := &Store{
		storage: storage,
		key:     opts.Key,
		log:     opts.Logger,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if opts.Notifier != nil {
		s.cancel = opts.Notifier.Subscribe(s.key, s.invalidate)
	}
	return s
}

// Close stops change notifications.
func (s *Store) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Store) invalidate() {
	s.mu.Lock()
	s.valid = false
	s.cached = nil
	s.mu.Unlock()
}

// Get returns the list, most recent first. Unreadable or corrupt data yields
// an empty list.
func (s *Store) Get() []search.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid {
		items, ok := s.read()
		s.cached = items
		s.valid = ok
	}
	return clone(s.cached)
}

// read loads the persisted list. ok is false when the result should not be
// cached because storage failed.
func (s *Store) read() ([]search.Item, bool) {
	data, found, err := s.storage.Get(s.key)
	if err != nil {
		s.log.Warn("recency: read failed", "key", s.key, "error", err)
		return []search.Item{}, false
	}
	if !found || len(data) == 0 {
		return []search.Item{}, true
	}
	var items []search.Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.Warn("recency: corrupt list, starting empty", "key", s.key, "error", err)
		return []search.Item{}, true
	}
	if len(items) > Limit {
		items = items[:Limit]
	}
	return items, true
}

// Set replaces the list, keeping at most Limit entries. A failed write is
// logged; the in-memory list still reflects items.
func (s *Store) Set(items []search.Item) {
	if len(items) > Limit {
		items = items[:Limit]
	}
	items = clone(items)

	s.mu.Lock()
	s.cached = items
	s.valid = true
	s.mu.Unlock()

	data, err := json.Marshal(items)
	if err != nil {
		s.log.Warn("recency: encode failed", "error", err)
		return
	}
	if err := s.storage.Set(s.key, data); err != nil {
		s.log.Warn("recency: write failed", "key", s.key, "error", err)
	}
}

// Record moves item to the front of the list, dropping any earlier entry
// with the same ID.
func (s *Store) Record(item search.Item) {
	current := s.Get()
	next := make([]search.Item, 0, Limit)
	next = append(next, item)
	for _, it := range current {
		if it.ID == item.ID {
			continue
		}
		next = append(next, it)
	}
	s.Set(next)
}

func clone(items []search.Item) []search.Item {
	out := make([]search.Item, len(items))
	copy(out, items)
	return out
}
