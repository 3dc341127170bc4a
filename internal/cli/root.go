package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "punchclock",
	Short: "Employee time tracker",
	Long: `punchclock tracks employee work sessions, breaks and idle time.

It serves the tracker HTTP API polled by the desktop client and offers
commands to inspect trackers and daily summaries from the terminal.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
