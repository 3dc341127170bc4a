// Package tui renders a live terminal view of one employee's tracker.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/util"
)

// Source is the read side of the tracking service.
type Source interface {
	Status(ctx context.Context, employeeID string) (domain.Status, error)
	Sessions(ctx context.Context, employeeID string, limit int) ([]domain.WorkSession, error)
	DateRange(ctx context.Context, employeeID, from, to string) ([]domain.DailySummary, error)
}

// Screen identifies the current screen
type Screen int

const (
	ScreenStatus Screen = iota
	ScreenSessions
	ScreenWeek
)

const recentSessions = 10

type tickMsg time.Time

type dataMsg struct {
	status   domain.Status
	sessions []domain.WorkSession
	week     []domain.DailySummary
	err      error
	at       time.Time
}

// Options configures a Watch.
type Options struct {
	Location *time.Location
	Interval time.Duration
	Now      func() time.Time
}

// Watch polls the tracker and redraws it.
type Watch struct {
	src        Source
	employeeID string
	loc        *time.Location
	interval   time.Duration
	now        func() time.Time

	screen Screen
	data   *dataMsg
	styles *Styles
	help   help.Model
	width  int
}

func NewWatch(src Source, employeeID string, o Options) *Watch {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &Watch{
		src:        src,
		employeeID: employeeID,
		loc:        o.Location,
		interval:   o.Interval,
		now:        o.Now,
		styles:     DefaultStyles(),
		help:       help.New(),
	}
}

// Init implements tea.Model
func (w *Watch) Init() tea.Cmd {
	return tea.Batch(w.load(), w.tick())
}

func (w *Watch) tick() tea.Cmd {
	return tea.Tick(w.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *Watch) load() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return w.fetch(ctx)
	}
}

func (w *Watch) fetch(ctx context.Context) dataMsg {
	msg := dataMsg{at: w.now()}
	if msg.status, msg.err = w.src.Status(ctx, w.employeeID); msg.err != nil {
		return msg
	}
	if msg.sessions, msg.err = w.src.Sessions(ctx, w.employeeID, recentSessions); msg.err != nil {
		return msg
	}
	from, to, err := util.PeriodRange("week", msg.at, w.loc)
	if err != nil {
		msg.err = err
		return msg
	}
	msg.week, msg.err = w.src.DateRange(ctx, w.employeeID, from, to)
	return msg
}

// Update implements tea.Model
func (w *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return w, tea.Quit
		case key.Matches(msg, keys.Status):
			w.screen = ScreenStatus
		case key.Matches(msg, keys.Sessions):
			w.screen = ScreenSessions
		case key.Matches(msg, keys.Week):
			w.screen = ScreenWeek
		case key.Matches(msg, keys.Refresh):
			return w, w.load()
		}

	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.help.Width = msg.Width

	case tickMsg:
		return w, tea.Batch(w.load(), w.tick())

	case dataMsg:
		w.data = &msg
	}
	return w, nil
}

// View implements tea.Model
func (w *Watch) View() string {
	sep := lipgloss.NewStyle().
		Foreground(DarkGray).
		Render(strings.Repeat("─", 64))

	return lipgloss.JoinVertical(lipgloss.Left,
		w.renderHeader(),
		w.renderNav(),
		sep,
		"",
		w.renderContent(),
		"",
		w.help.View(keys),
	)
}

func (w *Watch) renderHeader() string {
	title := w.styles.Title.Render("PUNCHCLOCK")
	tagline := w.styles.Muted.Render(w.employeeID)
	if w.data != nil {
		tagline += w.styles.Muted.Render("  updated " + util.FormatClock(w.data.at, w.loc))
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", tagline)
}

func (w *Watch) renderNav() string {
	return NewNavBar(w.styles, []NavItem{
		{Key: "1", Label: "Status", Active: w.screen == ScreenStatus},
		{Key: "2", Label: "Sessions", Active: w.screen == ScreenSessions},
		{Key: "3", Label: "Week", Active: w.screen == ScreenWeek},
	}).View()
}

func (w *Watch) renderContent() string {
	if w.data == nil {
		return w.styles.Muted.Render("Loading...")
	}
	if w.data.err != nil {
		return w.styles.Error.Render("Error: " + w.data.err.Error())
	}
	switch w.screen {
	case ScreenSessions:
		return w.renderSessions()
	case ScreenWeek:
		return w.renderWeek()
	default:
		return w.renderStatus()
	}
}

func (w *Watch) line(label, value string) string {
	return w.styles.Muted.Width(12).Render(label) + w.styles.Body.Render(value)
}

func (w *Watch) renderStatus() string {
	st := w.data.status
	s := st.CurrentSession
	if s == nil {
		state := "○ Off the clock"
		if st.LastActivity == nil {
			state = "○ Never punched in"
		}
		lines := []string{w.styles.Muted.Render(state)}
		if d := st.TodaySummary; d != nil {
			lines = append(lines, "", w.line("Today", util.FormatMinutes(d.TotalWorkTime)+" worked"))
		}
		return strings.Join(lines, "\n")
	}

	state := w.styles.Success.Render("● On the clock")
	if b := s.ActiveBreak(); b != nil {
		state = w.styles.Warning.Render("◐ On a " + string(b.Type) + " break")
	} else if s.OpenIdle() != nil {
		state = w.styles.Warning.Render("◌ Idle")
	}

	lines := []string{
		state + w.styles.Muted.Render("  since "+util.FormatClock(s.StartTime, w.loc)),
		"",
		w.line("Worked", util.FormatMinutes(s.Duration)),
		w.line("Productive", util.FormatMinutes(s.ProductiveTime)),
		w.line("Breaks", util.FormatMinutes(s.TotalBreakTime)),
		w.line("Idle", util.FormatMillis(s.IdleTimeMs)),
		w.line("Activity", NewBar(w.styles, 30, s.ActivityPercentage).View()+" "+util.FormatPercent(s.ActivityPercentage)),
	}
	if b := s.ActiveBreak(); b != nil && b.PlannedMinutes > 0 {
		elapsed := w.data.at.Sub(b.StartTime).Minutes()
		pct := elapsed / float64(b.PlannedMinutes) * 100
		lines = append(lines, w.line("Break", NewBar(w.styles, 30, pct).View()+
			fmt.Sprintf(" %s of %dm", util.FormatMinutes(elapsed), b.PlannedMinutes)))
	}
	if d := st.TodaySummary; d != nil {
		lines = append(lines, "", w.line("Today", fmt.Sprintf("%s worked in %d sessions",
			util.FormatMinutes(d.TotalWorkTime), d.SessionsCount)))
	}
	return w.styles.Card.Render(strings.Join(lines, "\n"))
}

func (w *Watch) renderSessions() string {
	if len(w.data.sessions) == 0 {
		return w.styles.Muted.Render("No finished sessions yet")
	}
	const format = "%-10s  %-13s  %8s  %10s  %8s"
	lines := []string{w.styles.Subtitle.Render(fmt.Sprintf(format, "Date", "Time", "Worked", "Productive", "Activity"))}
	for _, s := range w.data.sessions {
		end := "now"
		if s.EndTime != nil {
			end = util.FormatClock(*s.EndTime, w.loc)
		}
		lines = append(lines, fmt.Sprintf(format,
			domain.DateKey(s.StartTime, w.loc),
			util.FormatClock(s.StartTime, w.loc)+"-"+end,
			util.FormatMinutes(s.Duration),
			util.FormatMinutes(s.ProductiveTime),
			util.FormatPercent(s.ActivityPercentage)))
	}
	return strings.Join(lines, "\n")
}

func (w *Watch) renderWeek() string {
	if len(w.data.week) == 0 {
		return w.styles.Muted.Render("No work recorded this week")
	}
	lines := []string{w.styles.Subtitle.Render("This week")}
	for _, d := range w.data.week {
		bar := NewBar(w.styles, 24, d.TotalWorkTime/(8*60)*100).View()
		lines = append(lines, fmt.Sprintf("%s  %s %s", d.Date, bar, util.FormatMinutes(d.TotalWorkTime)))
	}
	return strings.Join(lines, "\n")
}
