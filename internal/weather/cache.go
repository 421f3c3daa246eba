package weather

import (
	"sync"
	"time"

	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/jonboulle/clockwork"
)

// DefaultTTL is how long a snapshot stays fresh.
const DefaultTTL = 30 * time.Minute

// Cache is a thread-safe TTL cache of weather snapshots with LRU eviction
// once maxEntries is reached. Expired entries are evicted lazily on read.
// Keys must be normalized with domain.NormalizeKey by every caller.
type Cache struct {
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key      string
	value    *domain.WeatherSnapshot
	storedAt time.Time
	prev     *entry
	next     *entry
}

// NewCache creates a cache. A nil clock uses real time; non-positive ttl and
// maxEntries fall back to DefaultTTL and an unbounded size respectively.
func NewCache(ttl time.Duration, maxEntries int, clock clockwork.Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

// Get returns the snapshot stored under key if it is still fresh.
func (c *Cache) Get(key string) (*domain.WeatherSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Since(e.storedAt) >= c.ttl {
		c.delete(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

// Has reports whether a fresh entry exists. Like Get, it evicts a stale one.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set stores a snapshot under key, replacing any previous value.
func (c *Cache) Set(key string, snapshot *domain.WeatherSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if e, ok := c.entries[key]; ok {
		e.value = snapshot
		e.storedAt = now
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: snapshot, storedAt: now}
	c.entries[key] = e
	c.addToFront(e)

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.delete(c.tail)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.head = nil
	c.tail = nil
}

// Len returns the number of stored entries, including ones that have expired
// but not been read since.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) delete(e *entry) {
	delete(c.entries, e.key)
	c.remove(e)
}

func (c *Cache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Cache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}
