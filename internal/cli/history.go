package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent resolutions, newest first",
		Run:   runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	svc, err := openService()
	if err != nil {
		exitErr("open service", err)
	}
	defer svc.Close()

	rows, err := svc.History(limit)
	if err != nil {
		exitErr("history", err)
	}
	if len(rows) == 0 {
		fmt.Println("No resolutions yet.")
		return
	}

	for _, row := range rows {
		source := "remote"
		if row.CacheHit {
			source = "cache"
		}
		fmt.Printf("%s  %s - %s (%s)\n", humanize.Time(row.CreatedAt), row.SongName, row.Artist, source)
		fmt.Printf("    %q -> %q\n", row.MatchedLine, row.NextLine)
	}
}
