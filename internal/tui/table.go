package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cflow/internal/tui/theme"
)

const colGap = 2

// column is one table column. A zero width marks the flex column, which
// takes whatever the fixed columns leave.
type column struct {
	title string
	width int
	right bool
}

// tableRow holds display cells. colors, when set, overrides the foreground
// per cell; an empty entry keeps the default.
type tableRow struct {
	cells  []string
	colors []lipgloss.Color
	dim    bool
}

func fitColumns(cols []column, innerW int) []column {
	fixed := 0
	flex := -1
	for i, c := range cols {
		if c.width == 0 && flex < 0 {
			flex = i
			continue
		}
		fixed += c.width
	}
	fixed += colGap * (len(cols) - 1)

	out := append([]column(nil), cols...)
	if flex >= 0 {
		out[flex].width = max(8, innerW-fixed)
	}
	return out
}

// visibleWindow returns the first row to draw so cursor stays on screen.
func visibleWindow(cursor, n, height int) int {
	if height <= 0 || n <= height {
		return 0
	}
	offset := cursor - height + 1
	if offset < 0 {
		offset = 0
	}
	if offset > n-height {
		offset = n - height
	}
	return offset
}

// renderTable draws a header plus at most height rows around cursor.
// cursor < 0 disables highlighting.
func renderTable(cols []column, rows []tableRow, cursor, height int) string {
	t := theme.Active

	headerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	ruleStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	var b strings.Builder
	total := 0
	for i, c := range cols {
		if i > 0 {
			b.WriteString(headerStyle.Render(strings.Repeat(" ", colGap)))
			total += colGap
		}
		b.WriteString(headerStyle.Render(pad(c.title, c.width, c.right)))
		total += c.width
	}
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", total)))

	offset := visibleWindow(cursor, len(rows), height)
	end := len(rows)
	if height > 0 && offset+height < end {
		end = offset + height
	}

	for ri := offset; ri < end; ri++ {
		row := rows[ri]
		bg := t.Surface
		if ri == cursor {
			bg = t.SurfaceHover
		}
		base := lipgloss.NewStyle().Background(bg).Foreground(t.TextPrimary)
		if row.dim {
			base = base.Foreground(t.TextDim)
		}
		if ri == cursor {
			base = base.Bold(true)
		}

		b.WriteString("\n")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(base.Render(strings.Repeat(" ", colGap)))
			}
			cell := ""
			if i < len(row.cells) {
				cell = row.cells[i]
			}
			style := base
			if i < len(row.colors) && row.colors[i] != "" && !row.dim {
				style = style.Foreground(row.colors[i])
			}
			b.WriteString(style.Render(pad(truncStr(cell, c.width), c.width, c.right)))
		}
	}

	if len(rows) > end-offset {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render(fmt.Sprintf("%d-%d of %d", offset+1, end, len(rows))))
	}
	return b.String()
}

func pad(s string, w int, right bool) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}
