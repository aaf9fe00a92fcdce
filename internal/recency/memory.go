package recency

import "sync"

// MemoryStorage is in-process storage shared by several clients, the way
// browser tabs share local storage. A write through one client notifies the
// subscribers of every other client.
type MemoryStorage struct {
	mu     sync.Mutex
	data   map[string][]byte
	subs   map[int]memorySub
	nextID int
	nextCl int
}

type memorySub struct {
	client int
	key    string
	fn     func()
}

// NewMemoryStorage returns empty shared storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string][]byte),
		subs: make(map[int]memorySub),
	}
}

// Client returns a new view of the storage with its own identity. It
// implements both Storage and Notifier.
func (m *MemoryStorage) Client() *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCl++
	return &MemoryClient{m: m, id: m.nextCl}
}

func (m *MemoryStorage) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

func (m *MemoryStorage) set(client int, key string, value []byte) {
	m.mu.Lock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	var notify []func()
	for _, s := range m.subs {
		if s.key == key && s.client != client {
			notify = append(notify, s.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
}

func (m *MemoryStorage) subscribe(client int, key string, fn func()) func() {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs[id] = memorySub{client: client, key: key, fn: fn}
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// MemoryClient is one participant of a MemoryStorage.
type MemoryClient struct {
	m  *MemoryStorage
	id int
}

// Get returns the stored value.
func (c *MemoryClient) Get(key string) ([]byte, bool, error) {
	v, ok := c.m.get(key)
	return v, ok, nil
}

// Set stores value and notifies the other clients.
func (c *MemoryClient) Set(key string, value []byte) error {
	c.m.set(c.id, key, value)
	return nil
}

// Subscribe registers fn for writes to key by other clients.
func (c *MemoryClient) Subscribe(key string, fn func()) func() {
	return c.m.subscribe(c.id, key, fn)
}
