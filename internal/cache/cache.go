package cache

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// EvictCallback is called when an entry is evicted. The redis provider passes a nil value.
type EvictCallback func(key string, value []byte)

// Cache is a byte-oriented key/value store with LRU eviction and a TTL.
// It only holds upstream metadata (video details, caption track lists), never
// caption payloads or rendered files.
type Cache interface {
	// Get returns the value stored under key and whether it was found.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Contains reports whether key is present without refreshing its LRU position.
	Contains(key string) bool

	// Len returns the number of live entries.
	Len() int

	// Close releases connections held by the provider.
	Close() error
}

// Logger receives errors from providers that can fail at runtime (redis).
type Logger interface {
	Error(msg string, err error)
}

type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger adapts a zerolog logger to the cache Logger interface.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return &zerologLogger{logger: logger}
}

func (z *zerologLogger) Error(msg string, err error) {
	z.logger.Error().Err(err).Msg(msg)
}

// GetJSON decodes the JSON value stored under key into a T.
// A value that no longer decodes is reported as a miss.
func GetJSON[T any](c Cache, key string) (T, bool) {
	var v T
	raw, ok := c.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false
	}
	return v, true
}

// SetJSON stores v under key as JSON.
func SetJSON(c Cache, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Set(key, raw)
	return nil
}
