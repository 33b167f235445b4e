// Package local provides the process-local revocation cache tier.
package local

import (
	"sync"
	"time"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/pkg/cmap"
)

// entryOverheadBytes approximates the fixed per-entry cost (map slot,
// entry struct, record struct) for memory estimation.
const entryOverheadBytes = 160

// entry is a cached revocation record with its eviction deadline.
type entry struct {
	record    *domain.RevocationRecord
	expiresAt int64 // Unix milliseconds
}

// expired reports whether the entry's TTL has elapsed.
func (e entry) expired(nowMs int64) bool {
	return nowMs >= e.expiresAt
}

// Cache is the process-local revocation tier.
//
// Entries auto-expire lazily on read and eagerly via the janitor sweep.
// The cache is only ever written through the tiered store; handlers and
// the gate never mutate it directly.
type Cache struct {
	entries *cmap.Map[entry]

	janitorInterval time.Duration

	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Option configures the Cache.
type Option func(*Cache)

// WithJanitorInterval sets the interval between janitor sweeps.
// A non-positive interval disables the janitor.
func WithJanitorInterval(interval time.Duration) Option {
	return func(c *Cache) {
		c.janitorInterval = interval
	}
}

// New creates a new local cache tier and starts its janitor.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:         cmap.New[entry](),
		janitorInterval: time.Minute,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.janitorInterval > 0 {
		go c.janitor()
	} else {
		close(c.doneCh)
	}
	return c
}

// Put stores a revocation record with the given TTL.
// A non-positive TTL is a no-op: the record would already be dead.
func (c *Cache) Put(tokenID string, record *domain.RevocationRecord, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.entries.Set(tokenID, entry{
		record:    record,
		expiresAt: time.Now().Add(ttl).UnixMilli(),
	})
}

// Get retrieves a revocation record if present and not expired.
// Expired entries are evicted lazily on access.
func (c *Cache) Get(tokenID string) (*domain.RevocationRecord, bool) {
	e, ok := c.entries.Get(tokenID)
	if !ok {
		return nil, false
	}
	if e.expired(time.Now().UnixMilli()) {
		c.entries.Delete(tokenID)
		return nil, false
	}
	return e.record, true
}

// Delete removes an entry.
func (c *Cache) Delete(tokenID string) {
	c.entries.Delete(tokenID)
}

// Count returns the number of live entries. Entries past their TTL that
// the janitor has not yet collected are excluded.
func (c *Cache) Count() int {
	nowMs := time.Now().UnixMilli()
	count := 0
	c.entries.Range(func(_ string, e entry) bool {
		if !e.expired(nowMs) {
			count++
		}
		return true
	})
	return count
}

// EstimatedBytes approximates the memory held by cached entries.
func (c *Cache) EstimatedBytes() int64 {
	var bytes int64
	c.entries.Range(func(key string, e entry) bool {
		bytes += entryOverheadBytes + int64(len(key)) + int64(len(e.record.Reason)) + int64(len(e.record.TokenID))
		return true
	})
	return bytes
}

// Sweep removes all expired entries and returns the count removed.
//
// Tiers auto-evict on read; the sweep reclaims entries nothing reads
// again, not a correctness requirement.
func (c *Cache) Sweep() int {
	nowMs := time.Now().UnixMilli()
	var stale []string
	c.entries.Range(func(key string, e entry) bool {
		if e.expired(nowMs) {
			stale = append(stale, key)
		}
		return true
	})
	for _, key := range stale {
		c.entries.Delete(key)
	}
	return len(stale)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.entries.Clear()
}

// Close stops the janitor. Safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCh)
	})
	<-c.doneCh
}

// janitor periodically sweeps expired entries until Close.
func (c *Cache) janitor() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stopCh:
			return
		}
	}
}
