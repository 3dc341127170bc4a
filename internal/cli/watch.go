package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/punchclock/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <employeeId>",
	Short: "Follow an employee's tracker live",
	Long: `Open a terminal view of an employee's tracker that refreshes on an
interval. Press 1, 2 and 3 to switch between status, recent sessions and
the current week.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchInterval time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", time.Second, "Refresh interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	model := tui.NewWatch(app.Tracker, args[0], tui.Options{
		Location: app.Tracker.Rules().Location,
		Interval: watchInterval,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}
