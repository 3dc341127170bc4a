package tui

import (
	"math"
	"strings"
)

// Bar renders a percentage as a fixed-width bar.
type Bar struct {
	Width   int
	Percent float64
	styles  *Styles
}

func NewBar(styles *Styles, width int, percent float64) Bar {
	return Bar{Width: width, Percent: percent, styles: styles}
}

func (b Bar) View() string {
	if b.Width <= 0 {
		return ""
	}
	p := math.Max(0, math.Min(100, b.Percent))
	filled := int(math.Round(p / 100 * float64(b.Width)))

	var sb strings.Builder
	sb.WriteString(b.styles.ProgressActive.Render(strings.Repeat("█", filled)))
	sb.WriteString(b.styles.ProgressInactive.Render(strings.Repeat("░", b.Width-filled)))
	return sb.String()
}
