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

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	k := a.report.KPIs
	var b strings.Builder

	if len(a.report.Months) == 0 || k.Months == 0 {
		return components.ContentCard("No data",
			"The ledger is empty. Run `cflow import <dir>` or press [i] to import CSV exports.", cw)
	}

	runwayTone := components.ToneGain
	switch {
	case k.Runway.Infinite:
	case k.Runway.Months < 3:
		runwayTone = components.ToneLoss
	case k.Runway.Months < 12:
		runwayTone = components.ToneWarn
	}
	burn := "not burning"
	if k.MonthlyBurn > 0 {
		burn = "burn " + cli.FormatUSDCompact(k.MonthlyBurn) + "/mo"
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Current balance", Value: cli.FormatUSD(k.CurrentBalance),
			Delta: "through " + cli.FormatMonth(model.MonthOf(a.asOf())), Tone: components.ToneFor(k.CurrentBalance)},
		{Label: "Ending balance", Value: cli.FormatUSD(k.EndingBalance),
			Delta: "at " + cli.FormatMonth(k.End), Tone: components.ToneFor(k.EndingBalance)},
		{Label: "Runway", Value: cli.FormatRunway(k.Runway), Delta: burn, Tone: runwayTone},
		{Label: "Gross margin", Value: cli.FormatPercent(k.GrossMarginPct),
			Delta: fmt.Sprintf("%d of %d months actual", k.ActualMonths, k.Months), Tone: components.ToneFor(k.GrossMarginPct)},
	}, cw))
	b.WriteString("\n")

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Revenue", Value: cli.FormatUSDCompact(k.TotalRevenue),
			Delta: "trend " + cli.FormatDelta(k.Trend.RevenuePct)},
		{Label: "Expenses", Value: cli.FormatUSDCompact(k.TotalExpenses),
			Delta: "trend " + cli.FormatDelta(k.Trend.OpexPct)},
		{Label: "Investment", Value: cli.FormatUSDCompact(k.TotalInvestment)},
		{Label: "Net cash", Value: cli.FormatUSDCompact(k.NetCash),
			Delta: "trend " + cli.FormatDelta(k.Trend.NetPct), Tone: components.ToneFor(k.NetCash)},
		{Label: "vs budget", Value: cli.FormatDelta(k.BudgetVariancePct),
			Delta: "actual net vs budgeted", Tone: components.ToneFor(k.BudgetVariancePct)},
	}, cw))
	b.WriteString("\n")

	balances := make([]float64, len(a.report.Months))
	for i, m := range a.report.Months {
		balances[i] = m.RunningBalance.Projected
	}
	first, last := a.report.Months[0], a.report.Months[len(a.report.Months)-1]
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spark := components.Sparkline(balances, t.Accent) + "\n" +
		muted.Render(fmt.Sprintf("%s %s  →  %s %s",
			cli.FormatMonthShort(first.Month), cli.FormatUSDCompact(first.RunningBalance.Projected),
			cli.FormatMonthShort(last.Month), cli.FormatUSDCompact(last.RunningBalance.Projected)))
	b.WriteString(components.ContentCard("Running balance", spark, cw))
	b.WriteString("\n")

	bars := a.netBars(a.isCompactLayout())
	b.WriteString(components.ContentCard("Monthly net cash (▒ projected)",
		components.SignedBars(bars, components.CardInnerWidth(cw)), cw))

	if a.report.SkippedAssumptions > 0 || a.report.SkippedEntries > 0 {
		b.WriteString("\n")
		warn := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Background)
		b.WriteString(warn.Render(fmt.Sprintf(" %d assumption(s) and %d entry(ies) skipped; see the Assumptions tab",
			a.report.SkippedAssumptions, a.report.SkippedEntries)))
	}
	return b.String()
}

// netBars returns one bar per month, centered on the cutoff when the full
// range would not fit.
func (a App) netBars(compact bool) []components.Bar {
	months := a.report.Months
	limit := 24
	if compact {
		limit = 12
	}
	if len(months) > limit {
		cut := 0
		for i, m := range months {
			if m.DataType == model.DataActual {
				cut = i
			}
		}
		start := max(0, min(cut-limit/2, len(months)-limit))
		months = months[start : start+limit]
	}

	bars := make([]components.Bar, len(months))
	for i, m := range months {
		bars[i] = components.Bar{
			Label:     cli.FormatMonthShort(m.Month),
			Value:     m.NetCash.Projected,
			Text:      cli.FormatUSDCompact(m.NetCash.Projected),
			Projected: m.DataType == model.DataProjected,
		}
	}
	return bars
}
