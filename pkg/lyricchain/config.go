package lyricchain

import (
	"fmt"
	"time"
)

// Config holds every knob the resolution engine recognizes. Validation
// runs once at service construction and rejects out-of-range values
// instead of clamping them.
type Config struct {
	ProviderBaseURL     string
	SimilarityThreshold float64
	MinTriggerLength    int
	MaxCacheSize        int
	MaxSearchResults    int
	CacheEnabled        bool
	CachePath           string
	HistoryDBPath       string // empty disables the history store
	RequestTimeout      time.Duration

	Logger   Logger
	Provider Provider
	Cache    Cache
}

type Option func(*Config)

func WithProviderBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.ProviderBaseURL = baseURL
	}
}

func WithSimilarityThreshold(threshold float64) Option {
	return func(c *Config) {
		c.SimilarityThreshold = threshold
	}
}

func WithMinTriggerLength(n int) Option {
	return func(c *Config) {
		c.MinTriggerLength = n
	}
}

func WithMaxCacheSize(n int) Option {
	return func(c *Config) {
		c.MaxCacheSize = n
	}
}

func WithMaxSearchResults(n int) Option {
	return func(c *Config) {
		c.MaxSearchResults = n
	}
}

func WithCacheEnabled(enabled bool) Option {
	return func(c *Config) {
		c.CacheEnabled = enabled
	}
}

func WithCachePath(path string) Option {
	return func(c *Config) {
		c.CachePath = path
	}
}

func WithHistoryDBPath(path string) Option {
	return func(c *Config) {
		c.HistoryDBPath = path
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithProvider(p Provider) Option {
	return func(c *Config) {
		c.Provider = p
	}
}

func WithCache(cache Cache) Option {
	return func(c *Config) {
		c.Cache = cache
	}
}

func defaultConfig() *Config {
	return &Config{
		ProviderBaseURL:     "https://music.api.example.com",
		SimilarityThreshold: 0.7,
		MinTriggerLength:    5,
		MaxCacheSize:        1000,
		MaxSearchResults:    5,
		CacheEnabled:        true,
		CachePath:           "lyrics_cache.json",
		RequestTimeout:      10 * time.Second,
	}
}

// Validate fails fast on contract violations; these are the only fatal
// conditions in the engine.
func (c *Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0,1], got %v", c.SimilarityThreshold)
	}
	if c.MinTriggerLength < 0 {
		return fmt.Errorf("min trigger length must be non-negative, got %d", c.MinTriggerLength)
	}
	if c.MaxCacheSize <= 0 {
		return fmt.Errorf("max cache size must be positive, got %d", c.MaxCacheSize)
	}
	if c.MaxSearchResults < 1 || c.MaxSearchResults > 50 {
		return fmt.Errorf("max search results must be in [1,50], got %d", c.MaxSearchResults)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.Provider == nil && c.ProviderBaseURL == "" {
		return fmt.Errorf("provider base URL is required")
	}
	if c.CacheEnabled && c.Cache == nil && c.CachePath == "" {
		return fmt.Errorf("cache path is required when the cache is enabled")
	}
	return nil
}
