// Package lyricchain implements the lyric resolution engine: it decides
// whether a line of text is a song lyric fragment, locates the source song
// through a remote lyric provider, and returns the song's next line.
package lyricchain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/azured/lyricchain/pkg/logger"
	"github.com/azured/lyricchain/pkg/lyricchain/cache"
	"github.com/azured/lyricchain/pkg/lyricchain/history"
	"github.com/azured/lyricchain/pkg/lyricchain/lrc"
	"github.com/azured/lyricchain/pkg/lyricchain/model"
	"github.com/azured/lyricchain/pkg/lyricchain/provider"
	"github.com/azured/lyricchain/pkg/lyricchain/text"
)

// lyricService is the default implementation of the Service interface.
type lyricService struct {
	cfg      *Config
	provider Provider
	cache    Cache // nil when the cache is disabled
	hist     *history.DBClient
	log      Logger
}

// NewService builds a resolution engine from the given options, failing
// fast on invalid configuration.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	prov := cfg.Provider
	if prov == nil {
		prov = provider.NewClient(cfg.ProviderBaseURL, cfg.RequestTimeout)
	}

	var store Cache
	if cfg.CacheEnabled {
		if cfg.Cache != nil {
			store = cfg.Cache
		} else {
			var err error
			store, err = cache.NewStore(cfg.CachePath, cfg.MaxCacheSize)
			if err != nil {
				return nil, fmt.Errorf("failed to create cache store: %w", err)
			}
		}
	}

	var hist *history.DBClient
	if cfg.HistoryDBPath != "" {
		var err error
		hist, err = history.NewDBClient(cfg.HistoryDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open history db: %w", err)
		}
	}

	s := &lyricService{
		cfg:      cfg,
		provider: prov,
		cache:    store,
		hist:     hist,
		log:      cfg.Logger,
	}
	if store != nil {
		s.log.Infof("Lyric engine ready: %d cached songs, threshold %.2f", store.Len(), cfg.SimilarityThreshold)
	} else {
		s.log.Infof("Lyric engine ready: cache disabled, threshold %.2f", cfg.SimilarityThreshold)
	}
	return s, nil
}

// Resolve runs one full resolution: cache lookup, then remote search,
// fetch, parse, cache insert and rematch. Remote failures degrade to the
// next candidate and never surface to the caller; a nil result means the
// text is not a recognized lyric fragment.
func (s *lyricService) Resolve(ctx context.Context, rawText string) (*model.MatchResult, error) {
	query := strings.TrimSpace(rawText)

	// Command-style messages are never lyric fragments.
	if strings.HasPrefix(query, "/") {
		return nil, nil
	}
	if utf8.RuneCountInString(query) < s.cfg.MinTriggerLength {
		return nil, nil
	}

	s.log.Debugf("Resolving fragment: %s", snippet(query))

	// Cache first: no remote call when a cached song already chains.
	if s.cache != nil {
		if res, ok := s.cache.FindMatch(query, s.cfg.SimilarityThreshold); ok {
			s.log.Infof("Cache hit: %q chains to %s - %s", snippet(query), res.SongName, res.Artist)
			s.record(query, res)
			return res, nil
		}
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	songs, err := s.provider.Search(searchCtx, query, s.cfg.MaxSearchResults)
	cancel()
	if err != nil {
		s.log.Warnf("Search failed for %q: %v", snippet(query), err)
		return nil, nil
	}
	if len(songs) == 0 {
		s.log.Infof("No songs found for %q", snippet(query))
		return nil, nil
	}

	// Candidates are tried strictly in provider rank order.
	for _, song := range songs {
		if res := s.tryCandidate(ctx, query, song); res != nil {
			s.log.Infof("Resolved %q to %s - %s", snippet(query), res.SongName, res.Artist)
			s.record(query, res)
			return res, nil
		}
	}

	s.log.Infof("No candidate matched %q", snippet(query))
	return nil, nil
}

// tryCandidate fetches, parses, caches and rematches a single candidate
// song. Any failure makes the candidate unusable; the engine moves on.
func (s *lyricService) tryCandidate(ctx context.Context, query string, song provider.Song) *model.MatchResult {
	lyricCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	raw, err := s.provider.Lyric(lyricCtx, song.ID)
	cancel()
	if err != nil {
		s.log.Warnf("Lyric fetch failed for song %d (%s): %v", song.ID, song.Name, err)
		return nil
	}

	lines := lrc.Parse(raw)
	if len(lines) < 2 {
		// A single-line lyric cannot produce a next line.
		s.log.Debugf("Song %d (%s) has %d usable lines, skipping", song.ID, song.Name, len(lines))
		return nil
	}

	sl := model.NewSongLyrics(strconv.FormatInt(song.ID, 10), song.Name, song.Artist, lines)

	if s.cache != nil {
		if err := s.cache.Put(sl.SongID, sl); err != nil {
			s.log.Warnf("Failed to persist cache entry for song %s: %v", sl.SongID, err)
		}
	}

	return matchLines(query, sl, s.cfg.SimilarityThreshold)
}

// matchLines applies the matcher to every line but the last and returns
// the earliest match with its next line.
func matchLines(query string, sl *model.SongLyrics, threshold float64) *model.MatchResult {
	for i := 0; i < len(sl.Lines)-1; i++ {
		if text.IsMatch(query, sl.Lines[i].Text, threshold) {
			return &model.MatchResult{
				SongID:      sl.SongID,
				SongName:    sl.SongName,
				Artist:      sl.Artist,
				MatchedLine: sl.Lines[i].Text,
				NextLine:    sl.Lines[i+1].Text,
			}
		}
	}
	return nil
}

// record writes one resolution to the history store, if one is attached.
func (s *lyricService) record(query string, res *model.MatchResult) {
	if s.hist == nil {
		return
	}
	err := s.hist.Record(&history.Resolution{
		Query:       query,
		SongID:      res.SongID,
		SongName:    res.SongName,
		Artist:      res.Artist,
		MatchedLine: res.MatchedLine,
		NextLine:    res.NextLine,
		CacheHit:    res.FromCache,
	})
	if err != nil {
		s.log.Warnf("Failed to record resolution: %v", err)
	}
}

// Stats reports cache occupancy and resolution counters.
func (s *lyricService) Stats() (Stats, error) {
	st := Stats{
		MaxCacheSize: s.cfg.MaxCacheSize,
		CacheEnabled: s.cache != nil,
	}
	if s.cache != nil {
		st.CachedSongs = s.cache.Len()
		st.CacheFileBytes = s.cache.FileSize()
	}
	if s.hist != nil {
		total, hits, err := s.hist.Counts()
		if err != nil {
			return st, fmt.Errorf("reading history counts: %w", err)
		}
		st.Resolutions = total
		st.CacheHits = hits
	}
	return st, nil
}

// History returns recent resolutions, newest first. Without a history
// store it returns an empty list.
func (s *lyricService) History(limit int) ([]history.Resolution, error) {
	if s.hist == nil {
		return []history.Resolution{}, nil
	}
	return s.hist.Recent(limit)
}

// ClearCache removes all cached songs and persists the empty state.
func (s *lyricService) ClearCache() error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	s.log.Infof("Lyric cache cleared")
	return nil
}

// Close releases the history database connection.
func (s *lyricService) Close() error {
	return s.hist.Close()
}

// snippet shortens log output for long fragments.
func snippet(s string) string {
	const max = 30
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
