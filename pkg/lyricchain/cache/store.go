// Package cache implements the bounded, persisted lyric cache store: a
// mapping from cache key to a song's parsed lyric lines, capped at a
// configured size and mirrored to a JSON file after every mutation.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/azured/lyricchain/pkg/logger"
	"github.com/azured/lyricchain/pkg/lyricchain/model"
	"github.com/azured/lyricchain/pkg/lyricchain/text"
)

// entry is the persisted shape of one cached song.
type entry struct {
	SongID   string   `json:"song_id"`
	SongName string   `json:"song_name"`
	Artist   string   `json:"artist"`
	Lines    []string `json:"lines"`
}

// Store is a process-wide lyric cache. Reads run concurrently; mutations
// are serialized and flushed to the backing file before they return.
// Eviction is FIFO by insertion order: inserting past the maximum removes
// the oldest entries first.
type Store struct {
	mu      sync.RWMutex
	path    string
	maxSize int
	entries map[string]*model.SongLyrics
	order   []string // insertion order, oldest first
	log     *logger.Logger
}

// NewStore opens (or creates) a store backed by the JSON file at path.
// A missing, unreadable or corrupt file starts an empty cache rather than
// failing.
func NewStore(path string, maxSize int) (*Store, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("max cache size must be positive, got %d", maxSize)
	}
	s := &Store{
		path:    path,
		maxSize: maxSize,
		entries: make(map[string]*model.SongLyrics),
		log:     logger.GetLogger(),
	}
	s.load()
	return s, nil
}

// load restores persisted entries. Any failure degrades to an empty cache.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnf("Cache file %s unreadable, starting empty: %v", s.path, err)
		}
		return
	}

	var raw struct {
		Order   []string         `json:"order"`
		Entries map[string]entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.Warnf("Cache file %s corrupt, starting empty: %v", s.path, err)
		return
	}

	for _, key := range raw.Order {
		e, ok := raw.Entries[key]
		if !ok {
			continue
		}
		s.entries[key] = model.NewSongLyrics(e.SongID, e.SongName, e.Artist, e.Lines)
		s.order = append(s.order, key)
	}
	// Entries the order list missed (hand-edited file) still load.
	for key, e := range raw.Entries {
		if _, ok := s.entries[key]; ok {
			continue
		}
		s.entries[key] = model.NewSongLyrics(e.SongID, e.SongName, e.Artist, e.Lines)
		s.order = append(s.order, key)
	}
	s.truncateLocked()
	s.log.Infof("Loaded %d cached songs from %s", len(s.entries), s.path)
}

// Get returns the cached lyrics for key.
func (s *Store) Get(key string) (*model.SongLyrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.entries[key]
	return sl, ok
}

// Put inserts lyrics under key, evicts past the maximum size, and persists
// the full cache as part of the same operation.
func (s *Store) Put(key string, lyrics *model.SongLyrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = lyrics
	s.truncateLocked()
	return s.persistLocked()
}

// Clear removes all entries and synchronously persists the empty state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*model.SongLyrics)
	s.order = nil
	return s.persistLocked()
}

// Len returns the number of cached songs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// FileSize returns the size of the backing file in bytes, 0 if absent.
func (s *Store) FileSize() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// FindMatch scans all cached songs in insertion order, applying the
// matcher to every line except each song's last one (the last line has no
// next line). The first matching line wins.
func (s *Store) FindMatch(query string, threshold float64) (*model.MatchResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.order {
		sl, ok := s.entries[key]
		if !ok {
			continue
		}
		for i := 0; i < len(sl.Lines)-1; i++ {
			if text.IsMatch(query, sl.Lines[i].Text, threshold) {
				return &model.MatchResult{
					SongID:      sl.SongID,
					SongName:    sl.SongName,
					Artist:      sl.Artist,
					MatchedLine: sl.Lines[i].Text,
					NextLine:    sl.Lines[i+1].Text,
					FromCache:   true,
				}, true
			}
		}
	}
	return nil, false
}

// truncateLocked drops the oldest entries until the size bound holds.
func (s *Store) truncateLocked() {
	for len(s.order) > s.maxSize {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
}

// persistLocked serializes the cache to a temp file and renames it over
// the backing file, so a crash mid-write never leaves a torn cache.
func (s *Store) persistLocked() error {
	raw := struct {
		Order   []string         `json:"order"`
		Entries map[string]entry `json:"entries"`
	}{
		Order:   s.order,
		Entries: make(map[string]entry, len(s.entries)),
	}
	for key, sl := range s.entries {
		raw.Entries[key] = entry{
			SongID:   sl.SongID,
			SongName: sl.SongName,
			Artist:   sl.Artist,
			Lines:    sl.LineTexts(),
		}
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".lyrics_cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}
