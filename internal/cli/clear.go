package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the lyric cache",
		Run:   runClear,
	}

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	svc, err := openService()
	if err != nil {
		exitErr("open service", err)
	}
	defer svc.Close()

	if err := svc.ClearCache(); err != nil {
		exitErr("clear cache", err)
	}
	fmt.Println("Cache cleared.")
}
