package main

import (
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/azured/lyricchain/pkg/lyricchain"
)

// ServerConfig holds server configuration, populated from the environment.
type ServerConfig struct {
	Port            int           `env:"LYRICCHAIN_PORT" envDefault:"8080"`
	ProviderBaseURL string        `env:"LYRICCHAIN_PROVIDER_URL" envDefault:"https://music.api.example.com"`
	CachePath       string        `env:"LYRICCHAIN_CACHE_PATH" envDefault:"lyrics_cache.json"`
	CacheEnabled    bool          `env:"LYRICCHAIN_CACHE_ENABLED" envDefault:"true"`
	MaxCacheSize    int           `env:"LYRICCHAIN_MAX_CACHE_SIZE" envDefault:"1000"`
	HistoryDBPath   string        `env:"LYRICCHAIN_HISTORY_DB" envDefault:"lyricchain.sqlite3"`
	Threshold       float64       `env:"LYRICCHAIN_THRESHOLD" envDefault:"0.7"`
	MinTrigger      int           `env:"LYRICCHAIN_MIN_TRIGGER" envDefault:"5"`
	MaxResults      int           `env:"LYRICCHAIN_MAX_RESULTS" envDefault:"5"`
	RequestTimeout  time.Duration `env:"LYRICCHAIN_TIMEOUT" envDefault:"10s"`
	Origins         string        `env:"LYRICCHAIN_CORS_ORIGINS" envDefault:"*"`

	AllowedOrigins []string `env:"-"`
}

func main() {
	config := &ServerConfig{}
	if err := env.Parse(config); err != nil {
		log.Fatalf("Failed to parse configuration: %v", err)
	}

	config.AllowedOrigins = []string{"*"}
	if config.Origins != "*" {
		config.AllowedOrigins = strings.Split(config.Origins, ",")
		for i := range config.AllowedOrigins {
			config.AllowedOrigins[i] = strings.TrimSpace(config.AllowedOrigins[i])
		}
	}

	service, err := lyricchain.NewService(
		lyricchain.WithProviderBaseURL(config.ProviderBaseURL),
		lyricchain.WithCachePath(config.CachePath),
		lyricchain.WithCacheEnabled(config.CacheEnabled),
		lyricchain.WithMaxCacheSize(config.MaxCacheSize),
		lyricchain.WithHistoryDBPath(config.HistoryDBPath),
		lyricchain.WithSimilarityThreshold(config.Threshold),
		lyricchain.WithMinTriggerLength(config.MinTrigger),
		lyricchain.WithMaxSearchResults(config.MaxResults),
		lyricchain.WithRequestTimeout(config.RequestTimeout),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
