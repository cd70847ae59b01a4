package cache

import (
	"sync"
	"time"

	"github.com/epeers/tradingvision/internal/models"
)

// QuoteCache is an in-memory TTL cache for latest-quote snapshots, keyed by
// tracked symbol id. Snapshots are short-lived by nature, so a stale entry is
// simply a miss.
type QuoteCache struct {
	mu      sync.RWMutex
	entries map[int64]quoteEntry
	ttl     time.Duration
}

type quoteEntry struct {
	quote     *models.Quote
	fetchedAt time.Time
}

// NewQuoteCache creates a new quote cache with the given freshness window
func NewQuoteCache(ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		entries: make(map[int64]quoteEntry),
		ttl:     ttl,
	}
}

// Get retrieves a cached quote if still fresh
func (c *QuoteCache) Get(symbolID int64) (*models.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[symbolID]
	if !exists {
		return nil, false
	}
	if time.Since(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.quote, true
}

// Set caches a quote snapshot
func (c *QuoteCache) Set(symbolID int64, quote *models.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[symbolID] = quoteEntry{
		quote:     quote,
		fetchedAt: time.Now(),
	}
}

// Invalidate removes one symbol's entry
func (c *QuoteCache) Invalidate(symbolID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, symbolID)
}

// Clear removes all cached quotes
func (c *QuoteCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[int64]quoteEntry)
}
