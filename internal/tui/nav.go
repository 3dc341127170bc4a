package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// NavItem represents a navigation item
type NavItem struct {
	Key    string
	Label  string
	Active bool
}

// NavBar renders a navigation bar
type NavBar struct {
	Items  []NavItem
	styles *Styles
}

func NewNavBar(styles *Styles, items []NavItem) NavBar {
	return NavBar{Items: items, styles: styles}
}

// View renders the navigation bar as toggle-style tabs
func (n NavBar) View() string {
	var items []string

	for _, item := range n.Items {
		var rendered string
		if item.Active {
			rendered = n.styles.Active.Render(item.Label)
		} else {
			key := lipgloss.NewStyle().
				Foreground(lipgloss.Color("#525252")).
				Render("[" + item.Key + "]")
			rendered = key + " " + n.styles.Inactive.Render(item.Label)
		}
		items = append(items, rendered)
	}

	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#404040")).
		Render("  /  ")

	return strings.Join(items, sep)
}
