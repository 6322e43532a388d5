package cache

// instrumentedCache records lookups of one group. Evictions are counted by the
// callback New installs on the inner cache.
type instrumentedCache struct {
	Cache
	group string
}

func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	trackEntries(group, inner.Len)
	return &instrumentedCache{Cache: inner, group: group}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.Cache.Get(key)
	result := "miss"
	if ok {
		result = "hit"
	}
	RequestsTotal.WithLabelValues(c.group, result).Inc()
	return val, ok
}

func (c *instrumentedCache) Close() error {
	untrackEntries(c.group)
	return c.Cache.Close()
}
