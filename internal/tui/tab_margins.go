package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/pipeline"
	"github.com/theirongolddev/cflow/internal/tui/components"
	"github.com/theirongolddev/cflow/internal/tui/theme"
)

// renderStatsTab draws the profitability table shared by the Margins
// (per project) and Clients tabs, plus a detail card for the selection.
func (a App) renderStatsTab(list []model.ProjectStats, cursor int, noun, relatedNoun string, cw, h int) string {
	if len(list) == 0 {
		return components.ContentCard(noun+"s",
			fmt.Sprintf("No %s-tagged entries in the lookback window.", strings.ToLower(noun)), cw)
	}

	cols := fitColumns([]column{
		{title: noun, width: 0},
		{title: "Revenue", width: 10, right: true},
		{title: "Direct", width: 10, right: true},
		{title: "Overhead", width: 10, right: true},
		{title: "Net", width: 10, right: true},
		{title: "Net %", width: 7, right: true},
		{title: "Trend", width: 7, right: true},
		{title: "Health", width: 9},
	}, components.CardInnerWidth(cw))

	rows := make([]tableRow, len(list))
	for i, ps := range list {
		rows[i] = tableRow{
			cells: []string{
				ps.Name,
				cli.FormatUSDCompact(ps.Revenue),
				cli.FormatUSDCompact(ps.DirectCost),
				cli.FormatUSDCompact(ps.AllocatedOverhead),
				cli.FormatUSDCompact(ps.NetMargin),
				cli.FormatPercent(ps.NetMarginPct),
				cli.FormatDelta(ps.RevenueTrendPct),
				string(ps.Health),
			},
			colors: []lipgloss.Color{"", "", "", "", signColor(ps.NetMargin), signColor(ps.NetMarginPct), signColor(ps.RevenueTrendPct), healthColor(ps)},
		}
	}

	var b strings.Builder
	b.WriteString(components.ContentCard(noun+" margins", renderTable(cols, rows, cursor, max(3, h-detailHeight-6)), cw))
	b.WriteString("\n")
	b.WriteString(renderStatsDetail(list[cursor], relatedNoun, cw))
	return b.String()
}

func renderStatsDetail(ps model.ProjectStats, relatedNoun string, cw int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	related := "-"
	if len(ps.Related) > 0 {
		related = strings.Join(ps.Related, ", ")
	}
	innerW := components.CardInnerWidth(cw)

	lines := []string{
		label.Render("Health       ") + components.ScoreBar(ps.HealthScore, pipeline.HealthyScore, pipeline.WatchScore, min(30, innerW/3)) +
			value.Render("  "+string(ps.Health)),
		label.Render("Gross margin ") + value.Render(fmt.Sprintf("%s (%s)", cli.FormatUSD(ps.GrossMargin), cli.FormatPercent(ps.GrossMarginPct))),
		label.Render("Net margin   ") + value.Render(fmt.Sprintf("%s (%s)", cli.FormatUSD(ps.NetMargin), cli.FormatPercent(ps.NetMarginPct))),
		label.Render("Rev. share   ") + value.Render(cli.FormatPercent(ps.RevenueShare)),
		label.Render("Budget cost  ") + value.Render(cli.FormatUSD(ps.BudgetCost)),
		label.Render("Investment   ") + value.Render(cli.FormatUSD(ps.Investment)),
		label.Render("Active       ") + value.Render(fmt.Sprintf("%d month(s)", ps.ActiveMonths)),
		label.Render(fmt.Sprintf("%-13s", relatedNoun)) + value.Render(truncStr(related, innerW-13)),
	}
	return components.ContentCard(ps.Name, strings.Join(lines, "\n"), cw)
}

func healthColor(ps model.ProjectStats) lipgloss.Color {
	if ps.Health == model.HealthUnknown {
		return theme.Active.TextDim
	}
	return components.ColorForScore(ps.HealthScore, pipeline.HealthyScore, pipeline.WatchScore)
}
