package lyricchain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProvider is an httptest server speaking the netease-style API with
// call counters, so tests can assert which remote steps ran.
type fakeProvider struct {
	srv          *httptest.Server
	searchCalls  atomic.Int64
	lyricCalls   atomic.Int64
	songsByQuery map[string][]fakeSong
	lyricsByID   map[int64]string
}

type fakeSong struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"-"`
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	fp := &fakeProvider{
		songsByQuery: make(map[string][]fakeSong),
		lyricsByID:   make(map[int64]string),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fp.searchCalls.Add(1)
		keyword := r.URL.Query().Get("keywords")
		songs := make([]map[string]any, 0)
		for _, s := range fp.songsByQuery[keyword] {
			songs = append(songs, map[string]any{
				"id":      s.ID,
				"name":    s.Name,
				"artists": []map[string]string{{"name": s.Artist}},
			})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"songs": songs},
		})
	})
	mux.HandleFunc("/lyric", func(w http.ResponseWriter, r *http.Request) {
		fp.lyricCalls.Add(1)
		var id int64
		fmt.Sscanf(r.URL.Query().Get("id"), "%d", &id)
		json.NewEncoder(w).Encode(map[string]any{
			"lrc": map[string]string{"lyric": fp.lyricsByID[id]},
		})
	})
	fp.srv = httptest.NewServer(mux)
	t.Cleanup(fp.srv.Close)
	return fp
}

func setupTestService(t *testing.T, fp *fakeProvider, extra ...Option) Service {
	t.Helper()

	tmpDir := t.TempDir()
	opts := []Option{
		WithProviderBaseURL(fp.srv.URL),
		WithSimilarityThreshold(0.8),
		WithCachePath(filepath.Join(tmpDir, "lyrics_cache.json")),
		WithHistoryDBPath(filepath.Join(tmpDir, "history.sqlite3")),
		WithRequestTimeout(5 * time.Second),
	}
	opts = append(opts, extra...)

	svc, err := NewService(opts...)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	t.Cleanup(func() {
		svc.Close()
	})
	return svc
}

func TestResolveRemoteChain(t *testing.T) {
	fp := newFakeProvider(t)
	fp.songsByQuery["天青色等烟雨"] = []fakeSong{{ID: 186001, Name: "青花瓷", Artist: "周杰伦"}}
	fp.lyricsByID[186001] = "[00:01.00]天青色等烟雨\n[00:05.00]而我在等你"

	svc := setupTestService(t, fp)

	res, err := svc.Resolve(context.Background(), "天青色等烟雨")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res == nil {
		t.Fatal("Expected a match result")
	}
	if res.NextLine != "而我在等你" {
		t.Errorf("Expected next line 而我在等你, got %q", res.NextLine)
	}
	if res.MatchedLine != "天青色等烟雨" {
		t.Errorf("Expected matched line 天青色等烟雨, got %q", res.MatchedLine)
	}
	if res.SongName != "青花瓷" || res.Artist != "周杰伦" {
		t.Errorf("Unexpected song metadata: %+v", res)
	}
	if res.FromCache {
		t.Error("First resolution must not be a cache hit")
	}
}

func TestResolveNoSongsFound(t *testing.T) {
	fp := newFakeProvider(t)
	svc := setupTestService(t, fp)

	res, err := svc.Resolve(context.Background(), "xyzzy_no_such_song")
	if err != nil {
		t.Fatalf("No match must not be an error: %v", err)
	}
	if res != nil {
		t.Fatalf("Expected no result, got %+v", res)
	}

	// No cache mutation on a fruitless search.
	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.CachedSongs != 0 {
		t.Errorf("Expected empty cache, got %d songs", stats.CachedSongs)
	}
	if fp.lyricCalls.Load() != 0 {
		t.Errorf("Expected no lyric fetches, got %d", fp.lyricCalls.Load())
	}
}

func TestResolveCacheHitSkipsRemote(t *testing.T) {
	fp := newFakeProvider(t)
	fp.songsByQuery["天青色等烟雨"] = []fakeSong{{ID: 186001, Name: "青花瓷", Artist: "周杰伦"}}
	fp.lyricsByID[186001] = "[00:01.00]天青色等烟雨\n[00:05.00]而我在等你\n[00:09.00]炊烟袅袅升起"

	svc := setupTestService(t, fp)

	// Populate the cache via a first remote resolution.
	if _, err := svc.Resolve(context.Background(), "天青色等烟雨"); err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}
	searchesAfterFirst := fp.searchCalls.Load()

	// A different line of the same song now resolves from the cache.
	res, err := svc.Resolve(context.Background(), "而我在等你")
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}
	if res == nil {
		t.Fatal("Expected a cached match")
	}
	if !res.FromCache {
		t.Error("Expected result to come from the cache")
	}
	if res.NextLine != "炊烟袅袅升起" {
		t.Errorf("Expected cached next line, got %q", res.NextLine)
	}
	if fp.searchCalls.Load() != searchesAfterFirst {
		t.Errorf("Cache hit must not make remote calls: %d -> %d",
			searchesAfterFirst, fp.searchCalls.Load())
	}
}

func TestResolveSingleLineLyricUnusable(t *testing.T) {
	fp := newFakeProvider(t)
	fp.songsByQuery["lonely fragment line"] = []fakeSong{{ID: 7, Name: "One Liner", Artist: "Nobody"}}
	fp.lyricsByID[7] = "[00:01.00]lonely fragment line"

	svc := setupTestService(t, fp)

	res, err := svc.Resolve(context.Background(), "lonely fragment line")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res != nil {
		t.Fatalf("Single-line lyric must be unusable, got %+v", res)
	}
}

func TestResolveSkipsToNextCandidate(t *testing.T) {
	fp := newFakeProvider(t)
	fp.songsByQuery["shared lyric line here"] = []fakeSong{
		{ID: 1, Name: "No Lyric Song", Artist: "A"},
		{ID: 2, Name: "Right Song", Artist: "B"},
	}
	// Candidate 1 has no lyric payload; candidate 2 matches.
	fp.lyricsByID[2] = "[00:01.00]shared lyric line here\n[00:02.00]the chained answer"

	svc := setupTestService(t, fp)

	res, err := svc.Resolve(context.Background(), "shared lyric line here")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res == nil {
		t.Fatal("Expected second candidate to match")
	}
	if res.SongName != "Right Song" {
		t.Errorf("Expected Right Song, got %q", res.SongName)
	}
	if res.NextLine != "the chained answer" {
		t.Errorf("Unexpected next line %q", res.NextLine)
	}
}

func TestResolveShortTextIgnored(t *testing.T) {
	fp := newFakeProvider(t)
	svc := setupTestService(t, fp)

	res, err := svc.Resolve(context.Background(), "hi")
	if err != nil || res != nil {
		t.Fatalf("Short text must resolve to nothing, got %+v, %v", res, err)
	}
	if fp.searchCalls.Load() != 0 {
		t.Errorf("Short text must not trigger a search, got %d calls", fp.searchCalls.Load())
	}
}

func TestResolveCommandIgnored(t *testing.T) {
	fp := newFakeProvider(t)
	svc := setupTestService(t, fp)

	res, err := svc.Resolve(context.Background(), "/lyrics_stats please")
	if err != nil || res != nil {
		t.Fatalf("Command text must resolve to nothing, got %+v, %v", res, err)
	}
	if fp.searchCalls.Load() != 0 {
		t.Errorf("Command text must not trigger a search, got %d calls", fp.searchCalls.Load())
	}
}

func TestResolveProviderDown(t *testing.T) {
	fp := newFakeProvider(t)
	svc := setupTestService(t, fp)
	fp.srv.Close()

	res, err := svc.Resolve(context.Background(), "天青色等烟雨")
	if err != nil {
		t.Fatalf("Provider failure must not surface as an error: %v", err)
	}
	if res != nil {
		t.Fatalf("Expected no result from a dead provider, got %+v", res)
	}
}

func TestResolveCacheDisabled(t *testing.T) {
	fp := newFakeProvider(t)
	fp.songsByQuery["天青色等烟雨"] = []fakeSong{{ID: 186001, Name: "青花瓷", Artist: "周杰伦"}}
	fp.lyricsByID[186001] = "[00:01.00]天青色等烟雨\n[00:05.00]而我在等你"

	svc := setupTestService(t, fp, WithCacheEnabled(false))

	// Two identical resolutions both go remote.
	for i := 0; i < 2; i++ {
		res, err := svc.Resolve(context.Background(), "天青色等烟雨")
		if err != nil || res == nil {
			t.Fatalf("Resolve %d failed: %+v, %v", i, res, err)
		}
		if res.FromCache {
			t.Error("Disabled cache must never produce cache hits")
		}
	}
	if fp.searchCalls.Load() != 2 {
		t.Errorf("Expected 2 searches with cache disabled, got %d", fp.searchCalls.Load())
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.CacheEnabled {
		t.Error("Stats must report the cache as disabled")
	}
}

func TestStatsAndHistory(t *testing.T) {
	fp := newFakeProvider(t)
	fp.songsByQuery["天青色等烟雨"] = []fakeSong{{ID: 186001, Name: "青花瓷", Artist: "周杰伦"}}
	fp.lyricsByID[186001] = "[00:01.00]天青色等烟雨\n[00:05.00]而我在等你\n[00:09.00]炊烟袅袅升起"

	svc := setupTestService(t, fp)

	svc.Resolve(context.Background(), "天青色等烟雨") // remote
	svc.Resolve(context.Background(), "而我在等你") // cache hit

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.CachedSongs != 1 {
		t.Errorf("Expected 1 cached song, got %d", stats.CachedSongs)
	}
	if stats.Resolutions != 2 {
		t.Errorf("Expected 2 resolutions, got %d", stats.Resolutions)
	}
	if stats.CacheHits != 1 {
		t.Errorf("Expected 1 cache hit, got %d", stats.CacheHits)
	}
	if stats.CacheFileBytes <= 0 {
		t.Error("Expected a non-empty cache file")
	}

	rows, err := svc.History(10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 history rows, got %d", len(rows))
	}
}

func TestClearCache(t *testing.T) {
	fp := newFakeProvider(t)
	fp.songsByQuery["天青色等烟雨"] = []fakeSong{{ID: 186001, Name: "青花瓷", Artist: "周杰伦"}}
	fp.lyricsByID[186001] = "[00:01.00]天青色等烟雨\n[00:05.00]而我在等你"

	svc := setupTestService(t, fp)
	svc.Resolve(context.Background(), "天青色等烟雨")

	if err := svc.ClearCache(); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	stats, _ := svc.Stats()
	if stats.CachedSongs != 0 {
		t.Errorf("Expected empty cache after clear, got %d", stats.CachedSongs)
	}
}

func TestNewServiceRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"negative threshold", []Option{WithSimilarityThreshold(-0.1)}},
		{"threshold above one", []Option{WithSimilarityThreshold(1.5)}},
		{"zero cache size", []Option{WithMaxCacheSize(0)}},
		{"zero search results", []Option{WithMaxSearchResults(0)}},
		{"oversized search results", []Option{WithMaxSearchResults(100)}},
		{"negative trigger length", []Option{WithMinTriggerLength(-1)}},
		{"zero timeout", []Option{WithRequestTimeout(0)}},
		{"empty base url", []Option{WithProviderBaseURL("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewService(tt.opts...); err == nil {
				t.Error("Expected configuration error")
			}
		})
	}
}
