package cache

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dd0wney/cluso-attackpath/pkg/algorithms"
)

const (
	// DefaultTTL is how long a scored result stays valid
	DefaultTTL = 5 * time.Minute
	// DefaultMaxEntries bounds the number of cached queries
	DefaultMaxEntries = 1024
)

// Clock supplies the current time; tests inject a fake one
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// Key identifies one attack-path query against one graph snapshot
type Key struct {
	Snapshot  string
	Target    string
	Algorithm algorithms.Algorithm
	MaxHops   int
	K         int
}

// String renders the key for logs
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", k.Snapshot, k.Target, k.Algorithm, k.MaxHops, k.K)
}

// Entry is a cached result with its creation time
type Entry struct {
	Paths     []algorithms.AttackPath
	CreatedAt time.Time
	TTL       time.Duration
}

func (e *Entry) expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > e.TTL
}

// Stats reports cache activity since creation
type Stats struct {
	Size        int
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
}

// ResultCache is a TTL cache of scored attack paths. Expired entries are
// purged when they are next read; there is no background sweep. When full,
// the least recently used entry is evicted.
type ResultCache struct {
	mu      sync.Mutex
	entries *lru.Cache[Key, *Entry]
	ttl     time.Duration
	clock   Clock
	stats   Stats
}

// New creates a cache. A non-positive ttl or maxEntries falls back to the
// default, and a nil clock uses the wall clock.
func New(ttl time.Duration, maxEntries int, clock Clock) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if clock == nil {
		clock = SystemClock{}
	}
	// Only fails for a non-positive size
	entries, _ := lru.New[Key, *Entry](maxEntries)
	return &ResultCache{
		entries: entries,
		ttl:     ttl,
		clock:   clock,
	}
}

// TTL returns the lifetime applied to new entries
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Get returns a copy of the cached paths for key. An entry older than its
// TTL is removed and reported as a miss.
func (c *ResultCache) Get(key Key) ([]algorithms.AttackPath, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(key)
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if entry.expired(c.clock.Now()) {
		c.entries.Remove(key)
		c.stats.Expirations++
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	return clonePaths(entry.Paths), true
}

// Put stores a copy of paths under key, replacing any existing entry
func (c *ResultCache) Put(key Key, paths []algorithms.AttackPath) {
	entry := &Entry{
		Paths:     clonePaths(paths),
		CreatedAt: c.clock.Now(),
		TTL:       c.ttl,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if evicted := c.entries.Add(key, entry); evicted {
		c.stats.Evictions++
	}
}

// Remove drops the entry for key, if any
func (c *ResultCache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(key)
}

// Clear drops every entry; counters are kept
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

// Len returns the number of stored entries, including expired ones not
// yet purged
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Stats returns a snapshot of the counters
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.entries.Len()
	return s
}

// clonePaths never returns nil so an empty cached result stays distinct
// from a miss
func clonePaths(paths []algorithms.AttackPath) []algorithms.AttackPath {
	if paths == nil {
		return []algorithms.AttackPath{}
	}
	return algorithms.ClonePaths(paths)
}
