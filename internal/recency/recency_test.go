package recency

import (
	"errors"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgx-labs/docsite/internal/search"
	"github.com/sgx-labs/docsite/internal/store"
)

func item(id string) search.Item {
	return search.Item{ID: id, Kind: search.KindPage, Title: id, Href: "/docs/S/" + id}
}

func ids(items []search.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestRecordDedupesAndOrders(t *testing.T) {
	s := New(NewMemoryStorage().Client(), Options{})

	s.Record(item("a"))
	s.Record(item("b"))
	s.Record(item("a"))

	assert.Equal(t, []string{"a", "b"}, ids(s.Get()))
}

func TestRecordCapsAtLimit(t *testing.T) {
	s := New(NewMemoryStorage().Client(), Options{})

	for i := 0; i < 12; i++ {
		s.Record(item(strconv.Itoa(i)))
	}

	got := s.Get()
	require.Len(t, got, Limit)
	assert.Equal(t, "11", got[0].ID)
	assert.Equal(t, "4", got[Limit-1].ID)
}

func TestGetEmpty(t *testing.T) {
	s := New(NewMemoryStorage().Client(), Options{})

	got := s.Get()

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCorruptDataIsEmpty(t *testing.T) {
	mem := NewMemoryStorage()
	c := mem.Client()
	require.NoError(t, c.Set(DefaultKey, []byte("{not json")))

	s := New(c, Options{})

	assert.Empty(t, s.Get())
	s.Record(item("x"))
	assert.Equal(t, []string{"x"}, ids(s.Get()))
}

type countingStorage struct {
	Storage
	gets atomic.Int64
}

func (c *countingStorage) Get(key string) ([]byte, bool, error) {
	c.gets.Add(1)
	return c.Storage.Get(key)
}

func TestCacheAvoidsRedundantReads(t *testing.T) {
	cs := &countingStorage{Storage: NewMemoryStorage().Client()}
	s := New(cs, Options{})

	s.Get()
	s.Get()
	s.Record(item("a"))
	s.Get()

	assert.Equal(t, int64(1), cs.gets.Load())
}

func TestOtherClientWriteInvalidatesCache(t *testing.T) {
	mem := NewMemoryStorage()
	c1, c2 := mem.Client(), mem.Client()
	tab1 := New(c1, Options{Notifier: c1})
	tab2 := New(c2, Options{Notifier: c2})
	defer tab1.Close()
	defer tab2.Close()

	tab1.Record(item("a"))
	assert.Equal(t, []string{"a"}, ids(tab2.Get()))

	tab2.Record(item("b"))
	assert.Equal(t, []string{"b", "a"}, ids(tab1.Get()))
}

func TestWithoutNotifierCacheIsStale(t *testing.T) {
	mem := NewMemoryStorage()
	tab1 := New(mem.Client(), Options{})
	tab2 := New(mem.Client(), Options{})

	assert.Empty(t, tab1.Get())
	tab2.Record(item("b"))

	assert.Empty(t, tab1.Get())
}

type failingStorage struct{}

func (failingStorage) Get(string) ([]byte, bool, error) { return nil, false, errors.New("unavailable") }
func (failingStorage) Set(string, []byte) error        { return errors.New("quota exceeded") }

func TestStorageErrorsAreSwallowed(t *testing.T) {
	s := New(failingStorage{}, Options{})

	assert.Empty(t, s.Get())
	s.Record(item("a"))
	assert.Equal(t, []string{"a"}, ids(s.Get()))
}

func TestSetTruncates(t *testing.T) {
	s := New(NewMemoryStorage().Client(), Options{Key: "custom"})
	var items []search.Item
	for i := 0; i < 10; i++ {
		items = append(items, item(strconv.Itoa(i)))
	}

	s.Set(items)

	assert.Len(t, s.Get(), Limit)
}

func TestSQLiteBackedStoresSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	db1, err := store.OpenPath(path)
	require.NoError(t, err)
	defer db1.Close()
	db2, err := store.OpenPath(path)
	require.NoError(t, err)
	defer db2.Close()
	db1.PollInterval = 20 * time.Millisecond

	s1 := New(db1, Options{Notifier: db1})
	defer s1.Close()
	s2 := New(db2, Options{})

	assert.Empty(t, s1.Get())
	time.Sleep(60 * time.Millisecond)

	s2.Record(item("a"))

	assert.Eventually(t, func() bool {
		got := s1.Get()
		return len(got) == 1 && got[0].ID == "a"
	}, 2*time.Second, 20*time.Millisecond)
}
