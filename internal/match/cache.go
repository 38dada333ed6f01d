package match

import (
	"context"
	"fmt"
	"sync"
	"time"

	"farmstand/internal/models"
	"farmstand/internal/store"
)

// DefaultCacheTTL bounds the staleness window of the taxonomy snapshot.
// Administrative writes do not invalidate the cache; taxonomy changes are
// rare and low-stakes relative to a store round-trip on every match.
const DefaultCacheTTL = 5 * time.Minute

// TaxonomyCache holds a time-bounded snapshot of all active taxonomy
// items, refreshed lazily on expiry. It is the only component that reaches
// into the taxonomy store during matching.
//
// Concurrent callers hitting an expired cache may race to refresh; both
// reload the same data and the second write wins. The reload is idempotent
// and cheap, so the race is left unguarded on purpose (only the snapshot
// swap itself is synchronized).
type TaxonomyCache struct {
	store store.TaxonomyStore
	ttl   time.Duration
	now   func() time.Time

	mu        sync.RWMutex
	items     []*models.ProduceItem
	expiresAt time.Time
}

// NewTaxonomyCache creates a cache over the given store. A nil clock
// defaults to time.Now; tests inject their own.
func NewTaxonomyCache(ts store.TaxonomyStore, ttl time.Duration, clock func() time.Time) *TaxonomyCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &TaxonomyCache{store: ts, ttl: ttl, now: clock}
}

// Load returns the cached active taxonomy items, querying the store only
// when the snapshot is expired or empty. A store failure propagates to the
// caller: an unreachable taxonomy must never look like an empty one.
func (c *TaxonomyCache) Load(ctx context.Context) ([]*models.ProduceItem, error) {
	now := c.now()

	c.mu.RLock()
	if now.Before(c.expiresAt) && len(c.items) > 0 {
		items := c.items
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	items, err := c.store.ListProduceItems(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load active taxonomy items: %w", err)
	}

	c.mu.Lock()
	c.items = items
	c.expiresAt = now.Add(c.ttl)
	c.mu.Unlock()
	return items, nil
}
