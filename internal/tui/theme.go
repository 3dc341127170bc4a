package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Purple       = lipgloss.Color("#A855F7")
	BrightPurple = lipgloss.Color("#C084FC")

	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")
	DarkGray  = lipgloss.Color("#374151")

	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
)

// Styles contains the shared watch styles.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Card     lipgloss.Style

	ProgressActive   lipgloss.Style
	ProgressInactive lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(White),
		Subtitle: lipgloss.NewStyle().Foreground(Purple).Bold(true),
		Body:     lipgloss.NewStyle().Foreground(LightGray),
		Muted:    lipgloss.NewStyle().Foreground(DimGray),
		Bold:     lipgloss.NewStyle().Bold(true).Foreground(White),
		Active:   lipgloss.NewStyle().Foreground(BrightPurple).Bold(true),
		Inactive: lipgloss.NewStyle().Foreground(DimGray),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGray).
			Padding(0, 2),

		ProgressActive:   lipgloss.NewStyle().Foreground(Purple),
		ProgressInactive: lipgloss.NewStyle().Foreground(DimGray),

		Success: lipgloss.NewStyle().Foreground(Success),
		Warning: lipgloss.NewStyle().Foreground(Warning),
		Error:   lipgloss.NewStyle().Foreground(Error),
	}
}
