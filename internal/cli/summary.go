package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/util"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <employeeId>",
	Short: "Show daily summaries for a date range",
	Long: `Show one line per worked day between two dates, inclusive.

Examples:
  punchclock summary emp-42                                  # This week
  punchclock summary emp-42 --period month                   # This month
  punchclock summary emp-42 --from 2026-03-01 --to 2026-03-31`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

var (
	summaryFrom   string
	summaryTo     string
	summaryPeriod string
)

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&summaryFrom, "from", "", "First day (YYYY-MM-DD)")
	summaryCmd.Flags().StringVar(&summaryTo, "to", "", "Last day (YYYY-MM-DD)")
	summaryCmd.Flags().StringVarP(&summaryPeriod, "period", "p", "week", "Period when no dates are given: today, week, month")
}

func runSummary(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	from, to := summaryFrom, summaryTo
	if from == "" && to == "" {
		from, to, err = util.PeriodRange(summaryPeriod, time.Now(), app.Tracker.Rules().Location)
		if err != nil {
			return err
		}
	}

	summaries, err := app.Tracker.DateRange(cmd.Context(), args[0], from, to)
	if err != nil {
		return err
	}
	renderSummaries(cmd.OutOrStdout(), args[0], from, to, summaries)
	return nil
}

func renderSummaries(w io.Writer, employeeID, from, to string, summaries []domain.DailySummary) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Employee %s  %s to %s", employeeID, from, to)))
	if len(summaries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No work recorded for this period"))
		return
	}

	const format = "%-10s  %8s  %8s  %8s  %10s  %8s  %8s"
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(format, "Date", "Worked", "Break", "Idle", "Productive", "Activity", "Sessions")))

	var total domain.DailySummary
	for _, d := range summaries {
		fmt.Fprintf(w, format+"\n", d.Date,
			util.FormatMinutes(d.TotalWorkTime),
			util.FormatMinutes(d.TotalBreakTime),
			util.FormatMinutes(d.TotalIdleTime),
			util.FormatMinutes(d.TotalProductiveTime),
			util.FormatPercent(d.AverageActivityPercentage),
			fmt.Sprint(d.SessionsCount))
		total.TotalWorkTime += d.TotalWorkTime
		total.TotalBreakTime += d.TotalBreakTime
		total.TotalIdleTime += d.TotalIdleTime
		total.TotalProductiveTime += d.TotalProductiveTime
		total.SessionsCount += d.SessionsCount
	}

	activity := 0.0
	if total.TotalWorkTime > 0 {
		activity = total.TotalProductiveTime / total.TotalWorkTime * 100
	}
	fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("─", 72)))
	fmt.Fprintf(w, format+"\n", fmt.Sprintf("%d %s", len(summaries), plural(len(summaries), "day")),
		util.FormatMinutes(total.TotalWorkTime),
		util.FormatMinutes(total.TotalBreakTime),
		util.FormatMinutes(total.TotalIdleTime),
		util.FormatMinutes(total.TotalProductiveTime),
		util.FormatPercent(activity),
		fmt.Sprint(total.SessionsCount))
}
