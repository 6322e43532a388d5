package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:147.0) Gecko/20100101 Firefox/147.0"

// DefaultAPIBaseURL is the YouTube Data API v3 root used when no override is configured.
const DefaultAPIBaseURL = "https://www.googleapis.com/youtube/v3"

type Config struct {
	YouTubeAPIKey         string `mapstructure:"youtube_api_key"`
	YouTubeAPIBaseURL     string `mapstructure:"youtube_api_base_url"`
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	OutputDir             string `mapstructure:"output_dir"`
	Server                struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`
	Batch    struct {
		FormatDelay   string `mapstructure:"format_delay"` // pause between two formats of the same item
		ItemDelay     string `mapstructure:"item_delay"`   // pause between two items
		BundleFormats bool   `mapstructure:"bundle_formats"`
	} `mapstructure:"batch"`
	Filename struct {
		Fallback      string `mapstructure:"fallback"`
		Transliterate bool   `mapstructure:"transliterate"`
	} `mapstructure:"filename"`
	Cache struct {
		Type  string `mapstructure:"type"` // "memory", "redis" or "none"
		Size  int    `mapstructure:"size"` // Maximum number of entries in the LRU cache
		TTL   string `mapstructure:"ttl"`  // Go duration string like "1h", "24h", etc.
		Redis struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
	Breaker struct {
		FailureThreshold uint   `mapstructure:"failure_threshold"`
		Delay            string `mapstructure:"delay"`
	} `mapstructure:"breaker"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("youtube_api_key", "APP_YOUTUBE_API_KEY", "YOUTUBE_API_KEY")

	v.SetDefault("youtube_api_base_url", DefaultAPIBaseURL)
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("output_dir", ".")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.address", "localhost")
	v.SetDefault("batch.format_delay", "300ms")
	v.SetDefault("batch.item_delay", "500ms")
	v.SetDefault("batch.bundle_formats", true)
	v.SetDefault("filename.fallback", "caption")
	v.SetDefault("filename.transliterate", false)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.size", 500)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.delay", "30s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}

// ParseDuration parses a Go duration string, falling back to def when the value is empty
// or invalid. Invalid values are logged so misconfiguration stays visible.
func ParseDuration(key, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}
