package engine

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/hailam/pvschess/internal/board"
	"golang.org/x/sync/singleflight"
)

// Signature identifies a search call. PVS results depend on the window, so
// alpha and beta are part of the key alongside position, side and depth.
type Signature struct {
	Position board.Position
	Side     board.Side
	Depth    int
	Alpha    int
	Beta     int
}

// key encodes the signature for singleflight de-duplication.
func (s *Signature) key() string {
	var buf [64 + 1 + 3*binary.MaxVarintLen64]byte
	for i, pc := range s.Position {
		buf[i] = byte(pc)
	}
	buf[64] = byte(s.Side)
	n := 65
	n += binary.PutVarint(buf[n:], int64(s.Depth))
	n += binary.PutVarint(buf[n:], int64(s.Alpha))
	n += binary.PutVarint(buf[n:], int64(s.Beta))
	return string(buf[:n])
}

// cacheShard is one independently locked slice of the cache. Entries are
// evicted in insertion order once the shard exceeds its capacity.
type cacheShard struct {
	mu       sync.Mutex
	entries  map[Signature]int
	queue    []Signature
	capacity int
}

// Cache is a bounded, concurrency-safe memo of search scores keyed by
// Signature. Shards are picked by the position's Zobrist hash; the full
// signature is always compared, so the hash never affects correctness.
type Cache struct {
	shards []cacheShard
	mask   uint64
	flight singleflight.Group

	// Statistics
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Entries   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewCache creates a cache holding up to capacity entries spread over
// shards locks. shards is rounded down to a power of two.
func NewCache(capacity, shards int) *Cache {
	if shards < 1 {
		shards = 1
	}
	shards = int(roundDownToPowerOf2(uint64(shards)))
	if capacity < shards {
		capacity = shards
	}

	perShard := (capacity + shards - 1) / shards
	c := &Cache{
		shards: make([]cacheShard, shards),
		mask:   uint64(shards - 1),
	}
	for i := range c.shards {
		c.shards[i].entries = make(map[Signature]int)
		c.shards[i].capacity = perShard
	}
	return c
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (c *Cache) shard(sig *Signature) *cacheShard {
	return &c.shards[sig.Position.Hash()&c.mask]
}

// Probe returns the cached score for sig, if any.
func (c *Cache) Probe(sig Signature) (int, bool) {
	sh := c.shard(&sig)
	sh.mu.Lock()
	score, ok := sh.entries[sig]
	sh.mu.Unlock()
	return score, ok
}

// flightResult carries a computed score through singleflight.
type flightResult struct {
	score    int
	complete bool
}

// LookupOrCompute returns the cached score for sig or computes it. Concurrent
// callers with the same signature share one computation. compute reports
// whether its result is complete; incomplete results (cut short by the clock)
// are returned but never stored.
func (c *Cache) LookupOrCompute(sig Signature, compute func() (int, bool)) int {
	if score, ok := c.Probe(sig); ok {
		c.hits.Add(1)
		return score
	}

	v, _, _ := c.flight.Do(sig.key(), func() (any, error) {
		// Another flight may have stored it since the probe above
		if score, ok := c.Probe(sig); ok {
			c.hits.Add(1)
			return flightResult{score: score, complete: true}, nil
		}

		c.misses.Add(1)
		score, complete := compute()
		if complete {
			c.store(sig, score)
		}
		return flightResult{score: score, complete: complete}, nil
	})
	return v.(flightResult).score
}

// store inserts a score, evicting the shard's oldest entry when full.
func (c *Cache) store(sig Signature, score int) {
	sh := c.shard(&sig)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.entries[sig]; ok {
		sh.entries[sig] = score
		return
	}

	sh.entries[sig] = score
	sh.queue = append(sh.queue, sig)
	for len(sh.queue) > sh.capacity {
		oldest := sh.queue[0]
		sh.queue = sh.queue[1:]
		delete(sh.entries, oldest)
		c.evictions.Add(1)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	n := 0
	for i := range c.shards {
		sh := &c.shards[i]
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int {
	return c.shards[0].capacity * len(c.shards)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:   c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	hits := c.hits.Load()
	probes := hits + c.misses.Load()
	if probes == 0 {
		return 0
	}
	return float64(hits) / float64(probes) * 100
}

// Clear empties the cache and resets its statistics.
func (c *Cache) Clear() {
	for i := range c.shards {
		sh := &c.shards[i]
		sh.mu.Lock()
		sh.entries = make(map[Signature]int)
		sh.queue = nil
		sh.mu.Unlock()
	}
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
