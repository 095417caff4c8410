package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cflow/internal/tui/theme"
)

// StatusInfo is what the bottom bar reports.
type StatusInfo struct {
	Ledger      string // backend label
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
	Message     string // transient notice, e.g. an import result
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)

	left := muted.Render(" [?]help  [r]efresh  [i]mport  [q]uit")
	if info.Message != "" {
		left += muted.Render("  ") + warn.Render(info.Message)
	}

	var right []string
	if info.Ledger != "" {
		right = append(right, muted.Render(info.Ledger))
	}
	switch {
	case info.Refreshing:
		right = append(right, accent.Render("refreshing…"))
	case info.DataAge != "":
		right = append(right, muted.Render("loaded "+info.DataAge))
	}
	if info.AutoRefresh {
		right = append(right, accent.Render("auto"))
	}
	r := strings.Join(right, muted.Render(" · ")) + muted.Render(" ")

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(r))
	return left + muted.Render(strings.Repeat(" ", padding)) + r
}
