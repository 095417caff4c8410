package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/tui/components"
	"github.com/theirongolddev/cflow/internal/tui/theme"
)

// detailHeight is the number of lines the month detail card needs.
const detailHeight = 9

func (a App) renderProjectionTab(cw, h int) string {
	t := theme.Active
	months := a.report.Months
	if len(months) == 0 {
		return components.ContentCard("Projection", "Nothing to project yet.", cw)
	}
	cursor := a.cursors[components.TabProjection]

	cols := fitColumns([]column{
		{title: "Month", width: 8},
		{title: "Type", width: 9},
		{title: "Revenue", width: 10, right: true},
		{title: "Opex", width: 10, right: true},
		{title: "Overhead", width: 10, right: true},
		{title: "Invest", width: 10, right: true},
		{title: "Net", width: 10, right: true},
		{title: "Balance", width: 11, right: true},
		{title: "", width: 0},
	}, components.CardInnerWidth(cw))

	rows := make([]tableRow, len(months))
	for i, m := range months {
		typeColor := t.TextMuted
		if m.DataType == model.DataProjected {
			typeColor = t.Projected
		}
		rows[i] = tableRow{
			cells: []string{
				cli.FormatMonthShort(m.Month),
				string(m.DataType),
				cli.FormatUSDCompact(m.Revenue.Projected),
				cli.FormatUSDCompact(m.Opex.Projected),
				cli.FormatUSDCompact(m.Overhead.Projected),
				cli.FormatUSDCompact(m.Investment.Projected),
				cli.FormatUSDCompact(m.NetCash.Projected),
				cli.FormatUSDCompact(m.RunningBalance.Projected),
			},
			colors: []lipgloss.Color{"", typeColor, "", "", "", "", signColor(m.NetCash.Projected), signColor(m.RunningBalance.Projected)},
		}
	}

	tableH := max(3, h-detailHeight-6)
	var b strings.Builder
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Monthly projection · %s", scenarioOrBase(a.settings.Scenario)),
		renderTable(cols, rows, cursor, tableH), cw))
	b.WriteString("\n")
	b.WriteString(a.renderMonthDetail(months[cursor], cw))
	return b.String()
}

// renderMonthDetail shows the actual, budget, and blended legs of one month.
func (a App) renderMonthDetail(m model.MonthlyProjection, cw int) string {
	cols := fitColumns([]column{
		{title: "", width: 12},
		{title: "Actual", width: 12, right: true},
		{title: "Budget", width: 12, right: true},
		{title: "Blended", width: 12, right: true},
		{title: "", width: 0},
	}, components.CardInnerWidth(cw))

	triple := func(label string, tr model.Triple) tableRow {
		return tableRow{cells: []string{
			label, cli.FormatUSD(tr.Actual), cli.FormatUSD(tr.Budget), cli.FormatUSD(tr.Projected),
		}}
	}
	rows := []tableRow{
		triple("Revenue", m.Revenue),
		triple("Opex", m.Opex),
		triple("Overhead", m.Overhead),
		triple("Investment", m.Investment),
		triple("Net cash", m.NetCash),
		triple("Balance", m.RunningBalance),
	}
	title := cli.FormatMonth(m.Month)
	if m.Unassigned != 0 {
		title += fmt.Sprintf(" · %s unassigned", cli.FormatUSD(m.Unassigned))
	}
	return components.ContentCard(title, renderTable(cols, rows, -1, 0), cw)
}

func signColor(v float64) lipgloss.Color {
	t := theme.Active
	switch {
	case v > 0:
		return t.Gain
	case v < 0:
		return t.Loss
	}
	return ""
}
