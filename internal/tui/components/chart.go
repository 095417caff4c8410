package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cflow/internal/tui/theme"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values scaled between their min and max, so balances
// that dip below zero still show shape.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkBlocks)-1))
		}
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// Bar is one labeled row in SignedBars.
type Bar struct {
	Label     string
	Value     float64
	Text      string // formatted value shown after the bar
	Projected bool
}

// SignedBars renders one horizontal bar per row around a shared zero axis:
// negatives grow left in the loss color, positives grow right in the gain
// color. Projected rows are dimmed.
func SignedBars(bars []Bar, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(b.Text))
		peak = math.Max(peak, math.Abs(b.Value))
	}
	if peak == 0 {
		peak = 1
	}

	half := (width - labelW - textW - 4) / 2
	if half < 4 {
		half = 4
	}

	bg := lipgloss.NewStyle().Background(t.Surface)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var out strings.Builder
	for i, b := range bars {
		n := int(math.Round(math.Abs(b.Value) / peak * float64(half)))
		color := t.Gain
		if b.Value < 0 {
			color = t.Loss
		}
		fill := "█"
		if b.Projected {
			fill = "▒"
		}
		barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

		left := strings.Repeat(" ", half)
		right := strings.Repeat(" ", half)
		if b.Value < 0 {
			left = strings.Repeat(" ", half-n) + strings.Repeat(fill, n)
		} else {
			right = strings.Repeat(fill, n) + strings.Repeat(" ", half-n)
		}

		out.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, b.Label)))
		out.WriteString(bg.Render(" "))
		out.WriteString(barStyle.Render(left))
		out.WriteString(axisStyle.Render("│"))
		out.WriteString(barStyle.Render(right))
		out.WriteString(bg.Render(" "))
		out.WriteString(labelStyle.Render(fmt.Sprintf("%*s", textW, b.Text)))
		if i < len(bars)-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}
