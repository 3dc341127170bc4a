package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/util"
)

var statusCmd = &cobra.Command{
	Use:   "status <employeeId>",
	Short: "Show an employee's live status",
	Long: `Show whether an employee is on the clock, the open session measured
up to now, today's summary and overall stats.

Examples:
  punchclock status emp-42`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	status, err := app.Tracker.Status(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	renderStatus(cmd.OutOrStdout(), args[0], status, time.Now(), app.Tracker.Rules().Location)
	return nil
}

func since(t, now time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s (%s)", util.FormatClock(t, loc), humanize.RelTime(t, now, "ago", "from now"))
}

func renderStatus(w io.Writer, employeeID string, st domain.Status, now time.Time, loc *time.Location) {
	lines := []string{titleStyle.Render("Employee " + employeeID)}

	s := st.CurrentSession
	switch {
	case s != nil:
		lines = append(lines, row("Status", activeStyle.Render("● On the clock")+" since "+since(s.StartTime, now, loc)))
		lines = append(lines, row("Session", sessionLine(s)))
		lines = append(lines, row("Input", fmt.Sprintf("%s keystrokes  %s clicks",
			humanize.Comma(s.Keystrokes), humanize.Comma(s.MouseClicks))))
		if b := s.ActiveBreak(); b != nil {
			label := string(b.Type)
			if b.PlannedMinutes > 0 {
				label += fmt.Sprintf(" (%dm planned)", b.PlannedMinutes)
			}
			lines = append(lines, row("Break", warningStyle.Render(label)+" since "+since(b.StartTime, now, loc)))
		}
		if p := s.OpenIdle(); p != nil {
			lines = append(lines, row("Idle", warningStyle.Render("idle")+" since "+since(p.StartTime, now, loc)))
		}
	case st.LastActivity != nil:
		lines = append(lines, row("Status", mutedStyle.Render("○ Off the clock")+", last seen "+humanize.RelTime(*st.LastActivity, now, "ago", "from now")))
	default:
		lines = append(lines, row("Status", mutedStyle.Render("○ Never punched in")))
	}

	if d := st.TodaySummary; d != nil {
		lines = append(lines, row("Today", fmt.Sprintf("%s worked  %s productive  %d %s  %d %s  %s active",
			util.FormatMinutes(d.TotalWorkTime),
			util.FormatMinutes(d.TotalProductiveTime),
			d.SessionsCount, plural(d.SessionsCount, "session"),
			d.BreaksCount, plural(d.BreaksCount, "break"),
			util.FormatPercent(d.AverageActivityPercentage))))
	}

	if o := st.OverallStats; o.TotalDaysWorked > 0 {
		lines = append(lines, row("Overall", fmt.Sprintf("%d %s  %.1fh/day  %s productive",
			o.TotalDaysWorked, plural(o.TotalDaysWorked, "day"),
			o.AverageWorkHoursPerDay,
			util.FormatPercent(o.AverageProductivityPercentage))))
	}

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

func sessionLine(s *domain.WorkSession) string {
	return fmt.Sprintf("%s worked  %s break  %s idle  %s productive (%s)",
		util.FormatMinutes(s.Duration),
		util.FormatMinutes(s.TotalBreakTime),
		util.FormatMillis(s.IdleTimeMs),
		util.FormatMinutes(s.ProductiveTime),
		util.FormatPercent(s.ActivityPercentage))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
