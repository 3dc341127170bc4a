package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/util"
)

var sessionCmd = &cobra.Command{
	Use:   "session <sessionId>",
	Short: "Show one work session with its breaks",
	Args:  cobra.ExactArgs(1),
	RunE:  runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	employeeID, session, err := app.Tracker.LookupSession(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("session %q: %w", args[0], err)
	}
	renderSession(cmd.OutOrStdout(), employeeID, session, app.Tracker.Rules().Location)
	return nil
}

func renderSession(w io.Writer, employeeID string, s *domain.WorkSession, loc *time.Location) {
	fmt.Fprintln(w, titleStyle.Render("Session "+s.ID))
	fmt.Fprintln(w, row("Employee", employeeID))

	span := util.FormatClock(s.StartTime, loc) + " to "
	if s.EndTime != nil {
		span += util.FormatClock(*s.EndTime, loc)
	} else {
		span += activeStyle.Render("now")
	}
	fmt.Fprintln(w, row("Date", domain.DateKey(s.StartTime, loc)+"  "+span))
	fmt.Fprintln(w, row("Totals", sessionLine(s)))
	if s.GraceTimeMs > 0 {
		fmt.Fprintln(w, row("Grace", util.FormatMillis(s.GraceTimeMs)+" credited"))
	}

	for _, b := range s.Breaks {
		end := activeStyle.Render("ongoing")
		if b.EndTime != nil {
			end = util.FormatClock(*b.EndTime, loc)
		}
		line := fmt.Sprintf("%-9s %s to %s  %s", b.Type, util.FormatClock(b.StartTime, loc), end, util.FormatMinutes(b.Duration))
		if b.AutoEnded {
			line += warningStyle.Render("  auto-ended")
		}
		if b.Reason != "" {
			line += mutedStyle.Render("  " + b.Reason)
		}
		fmt.Fprintln(w, row("Break", line))
	}
}
