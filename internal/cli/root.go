// Package cli implements the lyricchain CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/azured/lyricchain/pkg/lyricchain"
)

var (
	providerURL string
	cachePath   string
	historyDB   string
	threshold   float64
	noCache     bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lyricchain",
	Short: "Resolve song lyric fragments to their next line",
	Long: "Detects whether a line of text is a song lyric, finds the song " +
		"through a remote lyric provider and prints the lyric's next line. " +
		"Resolved songs are kept in a local JSON cache.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&providerURL, "provider", "p", "", "Lyric provider base URL (default: $LYRICCHAIN_PROVIDER_URL)")
	RootCmd.PersistentFlags().StringVarP(&cachePath, "cache", "c", "", "Cache file path (default: $LYRICCHAIN_CACHE_PATH or ~/.lyricchain/lyrics_cache.json)")
	RootCmd.PersistentFlags().StringVar(&historyDB, "history-db", "", "History database path (default: $LYRICCHAIN_HISTORY_DB or ~/.lyricchain/history.sqlite3)")
	RootCmd.PersistentFlags().Float64VarP(&threshold, "threshold", "t", 0.7, "Similarity threshold in [0,1]")
	RootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Disable the lyric cache")
}

func dataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lyricchain")
}

func getProviderURL() string {
	if providerURL != "" {
		return providerURL
	}
	if env := os.Getenv("LYRICCHAIN_PROVIDER_URL"); env != "" {
		return env
	}
	return "https://music.api.example.com"
}

func getCachePath() string {
	if cachePath != "" {
		return cachePath
	}
	if env := os.Getenv("LYRICCHAIN_CACHE_PATH"); env != "" {
		return env
	}
	return filepath.Join(dataDir(), "lyrics_cache.json")
}

func getHistoryDBPath() string {
	if historyDB != "" {
		return historyDB
	}
	if env := os.Getenv("LYRICCHAIN_HISTORY_DB"); env != "" {
		return env
	}
	return filepath.Join(dataDir(), "history.sqlite3")
}

func openService() (lyricchain.Service, error) {
	if err := os.MkdirAll(dataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return lyricchain.NewService(
		lyricchain.WithProviderBaseURL(getProviderURL()),
		lyricchain.WithCachePath(getCachePath()),
		lyricchain.WithCacheEnabled(!noCache),
		lyricchain.WithHistoryDBPath(getHistoryDBPath()),
		lyricchain.WithSimilarityThreshold(threshold),
		lyricchain.WithRequestTimeout(10*time.Second),
	)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
