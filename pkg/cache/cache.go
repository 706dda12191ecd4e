// Package cache provides an LRU cache of serialized analysis results
// with msgpack disk persistence. Keys are content-addressed, so a stale
// entry can only mean the source changed and the entry simply stops
// being asked for.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry is one cached payload with access metadata.
type Entry struct {
	Key        string    `msgpack:"key"`
	Payload    []byte    `msgpack:"payload"`
	CreatedAt  time.Time `msgpack:"created_at"`
	AccessedAt time.Time `msgpack:"accessed_at"`
}

// listItem is an item in the doubly-linked LRU list.
type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

// list is a doubly-linked list, most recently used at the front.
type list struct {
	head *listItem
	tail *listItem
	len  int
}

func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}
	if item.prev != nil {
		item.prev.next = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	}
	if item == l.tail {
		l.tail = item.prev
	}

	item.prev = nil
	item.next = l.head
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
}

func (l *list) pushFront(item *listItem) {
	item.prev = nil
	item.next = l.head
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
	l.len++
}

func (l *list) remove(item *listItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
	item.prev, item.next = nil, nil
	l.len--
}

// removeBack removes and returns the least recently used item.
func (l *list) removeBack() *listItem {
	if l.tail == nil {
		return nil
	}
	item := l.tail
	l.remove(item)
	return item
}

// Options configures cache limits. Zero values mean unlimited.
type Options struct {
	MaxEntries int
	MaxBytes   int64
}

// DefaultOptions returns the limits used by the CLI.
func DefaultOptions() Options {
	return Options{
		MaxEntries: 10000,
		MaxBytes:   64 << 20,
	}
}

// Cache is a thread-safe LRU cache of byte payloads.
type Cache struct {
	mu           sync.RWMutex
	items        map[string]*listItem
	lru          *list
	maxEntries   int
	maxBytes     int64
	currentBytes int64
}

// New creates a Cache with the given limits.
func New(opts Options) *Cache {
	return &Cache{
		items:      make(map[string]*listItem),
		lru:        &list{},
		maxEntries: opts.MaxEntries,
		maxBytes:   opts.MaxBytes,
	}
}

// Get retrieves a payload and marks it most recently used. The returned
// slice is shared; callers must not modify it.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	item.AccessedAt = time.Now()
	c.lru.moveToFront(item)
	return item.Payload, true
}

// Set stores a payload, evicting least recently used entries when the
// cache exceeds its limits.
func (c *Cache) Set(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if item, ok := c.items[key]; ok {
		c.currentBytes += int64(len(payload)) - int64(len(item.Payload))
		item.Payload = payload
		item.AccessedAt = now
		c.lru.moveToFront(item)
		c.evict()
		return
	}

	item := &listItem{Entry: Entry{
		Key:        key,
		Payload:    payload,
		CreatedAt:  now,
		AccessedAt: now,
	}}
	c.items[key] = item
	c.lru.pushFront(item)
	c.currentBytes += int64(len(payload))
	c.evict()
}

// Delete removes a key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return
	}
	c.lru.remove(item)
	delete(c.items, key)
	c.currentBytes -= int64(len(item.Payload))
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	c.currentBytes = 0
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.len
}

// CurrentBytes returns the total payload size held.
func (c *Cache) CurrentBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentBytes
}

func (c *Cache) evict() {
	for (c.maxEntries > 0 && c.lru.len > c.maxEntries) ||
		(c.maxBytes > 0 && c.currentBytes > c.maxBytes && c.lru.len > 1) {
		item := c.lru.removeBack()
		if item == nil {
			return
		}
		delete(c.items, item.Key)
		c.currentBytes -= int64(len(item.Payload))
	}
}

// snapshot is the on-disk representation.
type snapshot struct {
	Version int     `msgpack:"version"`
	Entries []Entry `msgpack:"entries"`
}

const snapshotVersion = 1

// Save writes every entry in LRU order, most recent first.
func (c *Cache) Save(w io.Writer) error {
	c.mu.RLock()
	snap := snapshot{Version: snapshotVersion}
	for item := c.lru.head; item != nil; item = item.next {
		snap.Entries = append(snap.Entries, item.Entry)
	}
	c.mu.RUnlock()

	if err := msgpack.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	return nil
}

// Load replaces the cache contents with a previously saved snapshot.
// Entries re-enter in saved order, so relative recency survives the
// round trip; limits apply as entries are inserted.
func (c *Cache) Load(r io.Reader) error {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("decoding cache: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported cache version %d", snap.Version)
	}

	c.Clear()
	// Insert least recent first so pushFront restores the order.
	for i := len(snap.Entries) - 1; i >= 0; i-- {
		c.Set(snap.Entries[i].Key, snap.Entries[i].Payload)
	}
	return nil
}

// PersistToFile saves the cache atomically via a temp file rename.
func (c *Cache) PersistToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := c.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFromFile restores the cache from disk. A missing file is not an
// error; the cache just starts empty.
func (c *Cache) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}
