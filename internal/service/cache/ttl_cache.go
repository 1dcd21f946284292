package cache

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds the in-process cache.
const DefaultMaxEntries = 10000

type entry struct {
	b   []byte
	exp time.Time
}

// TTLCache is an in-process BytesCache. When full, expired entries are
// dropped first, then the entry closest to expiry.
type TTLCache struct {
	mu  sync.Mutex
	m   map[string]entry
	max int
	now func() time.Time
}

func NewTTLCache() *TTLCache {
	return NewTTLCacheSize(DefaultMaxEntries)
}

// NewTTLCacheSize creates a cache holding at most max entries.
func NewTTLCacheSize(max int) *TTLCache {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &TTLCache{m: make(map[string]entry), max: max, now: time.Now}
}

func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	if c.expired(e, c.now()) {
		delete(c.m, key)
		return nil, false, nil
	}
	return e.b, true, nil
}

// SetBytes stores value; a non-positive ttl never expires.
func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	now := c.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[key]; !ok && len(c.m) >= c.max {
		c.sweep(now)
		if len(c.m) >= c.max {
			c.evictOne()
		}
	}
	c.m[key] = entry{b: value, exp: exp}
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (c *TTLCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweep(c.now())
}

// Len is the number of stored entries, expired ones included.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *TTLCache) sweep(now time.Time) int {
	n := 0
	for k, e := range c.m {
		if c.expired(e, now) {
			delete(c.m, k)
			n++
		}
	}
	return n
}

func (c *TTLCache) evictOne() {
	var (
		victim string
		soon   time.Time
		found  bool
	)
	for k, e := range c.m {
		if e.exp.IsZero() {
			if !found {
				victim, found = k, true
			}
			continue
		}
		if !found || soon.IsZero() || e.exp.Before(soon) {
			victim, soon, found = k, e.exp, true
		}
	}
	if found {
		delete(c.m, victim)
	}
}

func (c *TTLCache) expired(e entry, now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}
