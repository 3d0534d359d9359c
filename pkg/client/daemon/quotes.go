package daemon

import "sync"

// quoteCache holds the most recent publisher-submitted quote per price
// account key, cleared once the scheduler consumes it for a cycle, so
// that an un-refreshed entry naturally falls back to agg_price on the
// next round.
type quoteCache struct {
	mu     sync.Mutex
	quotes map[[32]byte]quoteEntry
}

type quoteEntry struct {
	price  int64
	conf   uint64
	status uint32
}

func newQuoteCache() *quoteCache {
	return &quoteCache{quotes: make(map[[32]byte]quoteEntry)}
}

func (c *quoteCache) set(key [32]byte, price int64, conf uint64, status uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[key] = quoteEntry{price: price, conf: conf, status: status}
}

func (c *quoteCache) takeAndClear(key [32]byte) (quoteEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.quotes[key]
	if ok {
		delete(c.quotes, key)
	}
	return e, ok
}
