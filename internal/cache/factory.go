package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ProviderConfig configures a cache instance.
type ProviderConfig struct {
	// Size is the maximum number of entries kept before LRU eviction.
	Size int

	// TTL bounds how long an entry stays valid.
	TTL time.Duration

	// OnEvict, if set, is told about evicted keys.
	OnEvict EvictCallback

	// Logger receives runtime errors. Nil discards them.
	Logger Logger

	// Redis connection settings, only read by the "redis" provider.
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Group names what the cache holds ("videos", "caption_lists"). A non-empty
	// group enables hit/miss/eviction metrics labelled with it and keeps the
	// redis keys of different groups apart.
	Group string
}

// defaultTTL applies when ProviderConfig.TTL is not positive.
const defaultTTL = time.Hour

// Provider builds a Cache from its configuration.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available to New under name. It panics on a nil
// provider or a duplicate name, like database/sql drivers.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New builds a cache with the named provider ("memory", "redis" or "none").
// With a Group set, the cache is wrapped with Prometheus instrumentation.
func New(name string, cfg ProviderConfig) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	onEvict := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if onEvict != nil {
			onEvict(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}

	return newInstrumentedCache(inner, group), nil
}

// RegisteredProviders returns the provider names in alphabetical order.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
