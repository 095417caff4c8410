package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cflow/internal/tui/theme"
)

// ProgressBar renders a block progress bar with a percentage suffix.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := int(pct * float64(width))
	filled = max(0, min(filled, width))

	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))
	return b.String() + lipgloss.NewStyle().Background(t.Surface).Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForScore returns the health color for a 0-100 score using the same
// thresholds as the health labels.
func ColorForScore(score, healthy, watch int) lipgloss.Color {
	t := theme.Active
	switch {
	case score >= healthy:
		return t.Gain
	case score >= watch:
		return t.Warn
	default:
		return t.Loss
	}
}

// ScoreBar renders a health score as a solid bar followed by the score.
func ScoreBar(score, healthy, watch, barWidth int) string {
	t := theme.Active
	pct := float64(max(0, min(score, 100))) / 100
	color := ColorForScore(score, healthy, watch)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	scoreStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	return bar.ViewAs(pct) +
		lipgloss.NewStyle().Background(t.Surface).Render(" ") +
		scoreStyle.Render(fmt.Sprintf("%3d", score))
}
