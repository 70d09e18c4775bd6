package lyricchain

import (
	"context"

	"github.com/azured/lyricchain/pkg/lyricchain/history"
	"github.com/azured/lyricchain/pkg/lyricchain/model"
	"github.com/azured/lyricchain/pkg/lyricchain/provider"
)

// Service resolves lyric fragments into next lines. A nil MatchResult with
// a nil error is the normal "no match" outcome, never a failure.
type Service interface {
	Resolve(ctx context.Context, text string) (*model.MatchResult, error)
	Stats() (Stats, error)
	History(limit int) ([]history.Resolution, error)
	ClearCache() error
	Close() error
}

// Provider is the remote lyric API consumed by the engine.
type Provider interface {
	Search(ctx context.Context, keyword string, limit int) ([]provider.Song, error)
	Lyric(ctx context.Context, songID int64) (string, error)
}

// Cache is the bounded, persisted lyric store.
type Cache interface {
	Get(key string) (*model.SongLyrics, bool)
	Put(key string, lyrics *model.SongLyrics) error
	Clear() error
	Len() int
	FileSize() int64
	FindMatch(query string, threshold float64) (*model.MatchResult, bool)
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Stats summarizes the engine's cache and resolution history.
type Stats struct {
	CachedSongs    int   `json:"cached_songs"`
	MaxCacheSize   int   `json:"max_cache_size"`
	CacheEnabled   bool  `json:"cache_enabled"`
	CacheFileBytes int64 `json:"cache_file_bytes"`
	Resolutions    int64 `json:"resolutions"`
	CacheHits      int64 `json:"cache_hits"`
}
