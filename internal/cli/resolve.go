package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "resolve <text>",
		Short: "Resolve a lyric fragment to its next line",
		Args:  cobra.MinimumNArgs(1),
		Run:   runResolve,
	}

	RootCmd.AddCommand(cmd)
}

func runResolve(cmd *cobra.Command, args []string) {
	text := strings.Join(args, " ")

	svc, err := openService()
	if err != nil {
		exitErr("open service", err)
	}
	defer svc.Close()

	res, err := svc.Resolve(cmd.Context(), text)
	if err != nil {
		exitErr("resolve", err)
	}
	if res == nil {
		fmt.Println("No match.")
		return
	}

	source := "remote"
	if res.FromCache {
		source = "cache"
	}
	fmt.Printf("%s - %s (%s)\n", res.SongName, res.Artist, source)
	fmt.Printf("  %s\n", res.MatchedLine)
	fmt.Printf("> %s\n", res.NextLine)
}
