package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Belphemur/CaptionExport/internal/apperrors"
	"github.com/Belphemur/CaptionExport/internal/cache"
	"github.com/Belphemur/CaptionExport/internal/config"
	"github.com/Belphemur/CaptionExport/internal/models"
)

// Client defines the interface for querying the YouTube Data API
type Client interface {
	// FetchVideo returns the metadata of a video, or ErrNotFound when the API knows no such video.
	FetchVideo(ctx context.Context, videoID string) (*models.Video, error)

	// FetchCaptionList returns the caption tracks of a video. A video without tracks is ErrNotFound.
	FetchCaptionList(ctx context.Context, videoID string) ([]models.CaptionDescriptor, error)

	// FetchCaptionPayload downloads the raw timed-text payload of one track, converted to UTF-8.
	FetchCaptionPayload(ctx context.Context, videoID, captionID string) (string, error)

	// Close releases the cache connections.
	Close() error
}

const (
	videosCacheGroup   = "videos"
	captionsCacheGroup = "caption_lists"
)

// client implements the Client interface
type client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	videoCache    cache.Cache
	captionsCache cache.Cache
}

// NewClient creates a client from the configuration. A missing API key is an
// ErrConfig; an unusable cache backend is reported as is.
func NewClient(cfg *config.Config) (Client, error) {
	logger := config.GetLogger()

	if strings.TrimSpace(cfg.YouTubeAPIKey) == "" {
		return nil, &apperrors.ErrConfig{Key: "youtube_api_key"}
	}

	baseURL := strings.TrimRight(cfg.YouTubeAPIBaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultAPIBaseURL
	}

	timeout := config.ParseDuration("client_timeout", cfg.ClientTimeout, 30*time.Second)

	// Clone DefaultTransport to keep its pooling and HTTP/2 settings
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	breakerDelay := config.ParseDuration("breaker.delay", cfg.Breaker.Delay, 30*time.Second)
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: newBreakerTransport(newCompressionTransport(baseTransport), cfg.Breaker.FailureThreshold, breakerDelay),
	}

	videoCache, err := newMetadataCache(cfg, videosCacheGroup)
	if err != nil {
		return nil, err
	}
	captionsCache, err := newMetadataCache(cfg, captionsCacheGroup)
	if err != nil {
		_ = videoCache.Close()
		return nil, err
	}

	return &client{
		httpClient:    httpClient,
		baseURL:       baseURL,
		apiKey:        cfg.YouTubeAPIKey,
		videoCache:    videoCache,
		captionsCache: captionsCache,
	}, nil
}

func newMetadataCache(cfg *config.Config, group string) (cache.Cache, error) {
	provider := cfg.Cache.Type
	if provider == "" {
		provider = "memory"
	}
	size := cfg.Cache.Size
	if size <= 0 {
		size = 500
	}

	c, err := cache.New(provider, cache.ProviderConfig{
		Size:          size,
		TTL:           config.ParseDuration("cache.ttl", cfg.Cache.TTL, time.Hour),
		Logger:        cache.NewZerologLogger(config.GetLogger()),
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Group:         group,
	})
	if err != nil {
		return nil, err
	}

	logger := config.GetLogger()
	logger.Debug().Str("provider", provider).Str("group", group).Int("size", size).Msg("Metadata cache ready")
	return c, nil
}

// Close releases the cache connections.
func (c *client) Close() error {
	videoErr := c.videoCache.Close()
	captionsErr := c.captionsCache.Close()
	if videoErr != nil {
		return videoErr
	}
	return captionsErr
}
