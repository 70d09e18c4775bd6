package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache and resolution statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	svc, err := openService()
	if err != nil {
		exitErr("open service", err)
	}
	defer svc.Close()

	stats, err := svc.Stats()
	if err != nil {
		exitErr("stats", err)
	}

	if stats.CacheEnabled {
		fmt.Printf("Cached songs:  %d / %d\n", stats.CachedSongs, stats.MaxCacheSize)
		fmt.Printf("Cache file:    %s\n", humanize.Bytes(uint64(stats.CacheFileBytes)))
	} else {
		fmt.Println("Cache:         disabled")
	}
	fmt.Printf("Resolutions:   %s\n", humanize.Comma(stats.Resolutions))
	fmt.Printf("Cache hits:    %s\n", humanize.Comma(stats.CacheHits))
}
