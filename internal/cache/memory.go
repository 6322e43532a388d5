package cache

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache holds video details and caption track lists in an in-process
// expirable LRU. It is the default provider and what the CLI uses, since its
// lifetime is a single command.
//
// Values are copied on the way in and out, so callers own the bytes they get,
// as they do with the redis provider.
type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	// zero means unbounded for the LRU
	if cfg.Size < 0 {
		return nil, fmt.Errorf("memory cache: size must not be negative, got %d", cfg.Size)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	var onEvict lru.EvictCallback[string, []byte]
	if cfg.OnEvict != nil {
		onEvict = lru.EvictCallback[string, []byte](cfg.OnEvict)
	}
	return &memoryCache{entries: lru.NewLRU(cfg.Size, onEvict, ttl)}, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) {
	val, ok := m.entries.Get(key)
	if !ok {
		return nil, false
	}
	return bytes.Clone(val), true
}

func (m *memoryCache) Set(key string, value []byte) {
	m.entries.Add(key, bytes.Clone(value))
}

func (m *memoryCache) Contains(key string) bool {
	return m.entries.Contains(key)
}

func (m *memoryCache) Len() int {
	return m.entries.Len()
}

// Close drops every entry. Eviction callbacks fire for them.
func (m *memoryCache) Close() error {
	m.entries.Purge()
	return nil
}
