package services

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"siuang/internal/aggregate"
	"siuang/internal/cache"
	"siuang/internal/core"
)

// SummaryCache memoizes aggregate.Summarize. Entries are keyed by a digest of
// the transactions plus granularity and order, so any ledger change produces
// a new key and stale entries simply age out.
type SummaryCache struct {
	lru   *cache.LRUCache[[]aggregate.Summary]
	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

func NewSummaryCache(size int, ttl time.Duration) *SummaryCache {
	return &SummaryCache{lru: cache.NewLRUCache[[]aggregate.Summary](size, ttl)}
}

// Summarize returns the ordered summaries for txs. Concurrent calls with the
// same key compute once. The returned slice is owned by the caller.
func (c *SummaryCache) Summarize(txs []core.Transaction, g aggregate.Granularity, o aggregate.SortOrder) ([]aggregate.Summary, bool, error) {
	key := SummaryKey(txs, g, o)
	if s, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return slices.Clone(s), true, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		s, err := aggregate.Summarize(txs, g, o)
		if err != nil {
			return nil, err
		}
		c.lru.Set(key, s)
		return s, nil
	})
	if err != nil {
		return nil, false, err
	}
	return slices.Clone(v.([]aggregate.Summary)), false, nil
}

// Purge drops every entry.
func (c *SummaryCache) Purge() {
	c.lru.Purge()
}

// Cleaner exposes the underlying cache to a cache.Manager.
func (c *SummaryCache) Cleaner() cache.Cleaner {
	return c.lru
}

func (c *SummaryCache) Stats() (hits, misses int64, size int) {
	return c.hits.Load(), c.misses.Load(), c.lru.Size()
}

// SummaryKey digests the fields that feed a summary, in input order, together
// with the granularity and sort order.
func SummaryKey(txs []core.Transaction, g aggregate.Granularity, o aggregate.SortOrder) string {
	h := xxhash.New()
	var buf [8]byte
	for _, tx := range txs {
		h.WriteString(tx.ID)
		h.Write([]byte{0})
		h.WriteString(tx.Date.String())
		binary.LittleEndian.PutUint64(buf[:], uint64(tx.Amount.Cents))
		h.Write(buf[:])
		if tx.IsIncome {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return fmt.Sprintf("%s:%s:%d:%016x", g, o, len(txs), h.Sum64())
}
