// Package cache is the memo store owned by a single series.
//
// Entries are keyed by a digest of the canonical form of (algorithm, params)
// and live exactly as long as the owning series. There is no eviction, no TTL
// and no synchronisation: a Cache has one owner and is used from one goroutine.
package cache

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ErrCycle is returned when a computation re-enters its own key.
var ErrCycle = errors.New("cache: computation depends on itself")

// Key identifies one memoized computation.
type Key struct {
	Digest    uint64
	Canonical string
}

// NewKey digests the canonical representation of a computation.
func NewKey(canonical string) Key {
	return Key{
		Digest:    xxhash.Sum64String(canonical),
		Canonical: canonical,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%016x", k.Digest)
}

type entry struct {
	canonical string
	value     any
}

// Stats counts lookups served from and missed by the cache.
type Stats struct {
	Hits   int
	Misses int
}

// Cache maps keys to computed values.
type Cache struct {
	buckets  map[uint64][]entry
	inflight map[string]struct{}
	size     int
	stats    Stats
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		buckets:  make(map[uint64][]entry),
		inflight: make(map[string]struct{}),
	}
}

// Load returns the value stored under k.
// Entries sharing a digest are told apart by their canonical form.
func (c *Cache) Load(k Key) (any, bool) {
	for _, e := range c.buckets[k.Digest] {
		if e.canonical == k.Canonical {
			return e.value, true
		}
	}
	return nil, false
}

// Store sets the value for k, replacing any previous value.
func (c *Cache) Store(k Key, v any) {
	bucket := c.buckets[k.Digest]
	for i := range bucket {
		if bucket[i].canonical == k.Canonical {
			bucket[i].value = v
			return
		}
	}
	c.buckets[k.Digest] = append(bucket, entry{canonical: k.Canonical, value: v})
	c.size++
}

// LoadOrCompute returns the value for k, calling compute on a miss.
// A successful result is stored; errors are returned and never stored.
// compute may itself use the cache for other keys.
func (c *Cache) LoadOrCompute(k Key, compute func() (any, error)) (any, error) {
	if v, ok := c.Load(k); ok {
		c.stats.Hits++
		return v, nil
	}
	if _, busy := c.inflight[k.Canonical]; busy {
		return nil, fmt.Errorf("%w: %s", ErrCycle, k.Canonical)
	}
	c.stats.Misses++

	c.inflight[k.Canonical] = struct{}{}
	defer delete(c.inflight, k.Canonical)

	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Store(k, v)
	return v, nil
}

// Delete removes k and reports whether it was present.
func (c *Cache) Delete(k Key) bool {
	bucket := c.buckets[k.Digest]
	for i := range bucket {
		if bucket[i].canonical != k.Canonical {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(c.buckets, k.Digest)
		} else {
			c.buckets[k.Digest] = bucket
		}
		c.size--
		return true
	}
	return false
}

// Clear removes every entry. Statistics are kept.
func (c *Cache) Clear() {
	c.buckets = make(map[uint64][]entry)
	c.size = 0
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	return c.size
}

// Stats returns the hit/miss counters.
func (c *Cache) Stats() Stats {
	return c.stats
}
