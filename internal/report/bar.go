package report

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// Bar is a horizontal gauge, e.g. a budget or a score.
type Bar struct {
	Label   string
	Percent float64 // 0..1, clamped
	Width   int     // total width including label and percentage
}

// View renders the bar. The fill turns orange past 75% and red when full,
// which suits spend gauges; scores use Score instead.
func (b Bar) View() string {
	return b.render(b.fillColor())
}

func (b Bar) render(fill color.Color) string {
	var out string
	if b.Label != "" {
		out = valueStyle.Render(b.Label) + "  "
	}

	const percentWidth = 6 // "  100%"
	barWidth := max(b.Width-lipgloss.Width(out)-percentWidth, 4)

	p := min(max(b.Percent, 0), 1)
	filled := int(float64(barWidth) * p)
	out += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	out += lipgloss.NewStyle().Background(Border).Render(strings.Repeat(" ", barWidth-filled))
	out += dimStyle.Render(fmt.Sprintf("  %d%%", int(p*100)))
	return out
}

func (b Bar) fillColor() color.Color {
	switch {
	case b.Percent >= 1:
		return Error
	case b.Percent >= 0.75:
		return Warning
	}
	return Secondary
}

// Score renders a 0..100 quiz score, green once it reaches pass.
func Score(score, pass, width int) string {
	fill := Warning
	if score >= pass {
		fill = Success
	}
	return Bar{Percent: float64(score) / 100, Width: width}.render(fill)
}
