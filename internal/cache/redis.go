package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyPrefix namespaces every key this application writes.
	keyPrefix = "captionexport:"
	// opTimeout bounds every command issued after the initial ping.
	opTimeout = 2 * time.Second
	// dialTimeout bounds the ping done when the cache is built.
	dialTimeout = 5 * time.Second
)

func init() {
	Register("redis", newRedisCache)
}

// redisCache keeps each entry in its own string key ({prefix}e:{key}) expiring
// through PX, and an access index in a sorted set ({prefix}index) scored by last
// use in milliseconds. The scripts below keep both in step, so the size bound
// holds across processes sharing the server.
type redisCache struct {
	client      *redis.Client
	ttl         time.Duration
	maxSize     int
	onEvict     EvictCallback
	logger      Logger
	entryPrefix string
	indexKey    string
}

// lookup returns the entry and refreshes its score. An index member whose entry
// already expired is removed.
// KEYS: entry, index. ARGV: member, now.
var lookup = redis.NewScript(`
local val = redis.call('GET', KEYS[1])
if val then
    redis.call('ZADD', KEYS[2], ARGV[2], ARGV[1])
else
    redis.call('ZREM', KEYS[2], ARGV[1])
end
return val
`)

// store writes the entry, then drops the least recently used members beyond
// the size bound. Returns the dropped members.
// KEYS: entry, index. ARGV: member, value, ttl ms, now, max size, entry prefix.
var store = redis.NewScript(`
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[4], ARGV[1])

local dropped = {}
local excess = redis.call('ZCARD', KEYS[2]) - tonumber(ARGV[5])
if excess > 0 then
    local oldest = redis.call('ZPOPMIN', KEYS[2], excess)
    for i = 1, #oldest, 2 do
        redis.call('DEL', ARGV[6] .. oldest[i])
        table.insert(dropped, oldest[i])
    end
end
return dropped
`)

// count prunes index members whose entry expired and returns the live count.
// KEYS: index. ARGV: entry prefix.
var count = redis.NewScript(`
local members = redis.call('ZRANGE', KEYS[1], 0, -1)
for _, member in ipairs(members) do
    if redis.call('EXISTS', ARGV[1] .. member) == 0 then
        redis.call('ZREM', KEYS[1], member)
    end
end
return redis.call('ZCARD', KEYS[1])
`)

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("redis cache: size must be positive, got %d", cfg.Size)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", cfg.RedisAddress, err)
	}

	prefix := keyPrefix
	if cfg.Group != "" {
		prefix += cfg.Group + ":"
	}
	return &redisCache{
		client:      client,
		ttl:         cfg.TTL,
		maxSize:     cfg.Size,
		onEvict:     cfg.OnEvict,
		logger:      cfg.Logger,
		entryPrefix: prefix + "e:",
		indexKey:    prefix + "index",
	}, nil
}

func (r *redisCache) entryKey(key string) string {
	return r.entryPrefix + key
}

func (r *redisCache) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func nowMillis() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := lookup.Run(ctx, r.client, []string{r.entryKey(key), r.indexKey}, key, nowMillis()).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logError("redis cache lookup failed", err)
		}
		return nil, false
	}
	return []byte(val), true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ttl := r.ttl.Milliseconds()
	if ttl <= 0 {
		ttl = defaultTTL.Milliseconds()
	}

	dropped, err := store.Run(ctx, r.client, []string{r.entryKey(key), r.indexKey},
		key, value, ttl, nowMillis(), r.maxSize, r.entryPrefix,
	).StringSlice()
	if err != nil {
		r.logError("redis cache store failed", err)
		return
	}

	if r.onEvict != nil {
		for _, k := range dropped {
			r.onEvict(k, nil)
		}
	}
}

func (r *redisCache) Contains(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, r.entryKey(key)).Result()
	if err != nil {
		r.logError("redis cache exists failed", err)
		return false
	}
	return n == 1
}

func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := count.Run(ctx, r.client, []string{r.indexKey}, r.entryPrefix).Int()
	if err != nil {
		r.logError("redis cache count failed", err)
		return 0
	}
	return n
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
