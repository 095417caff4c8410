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

// describeValue renders an assumption amount the way a user typed it.
func describeValue(as model.Assumption) string {
	if as.ValueType == model.ValuePercentage {
		return fmt.Sprintf("%g%% of %s", as.Amount, as.PercentOf)
	}
	return cli.FormatUSD(as.Amount)
}

func (a App) renderAssumptionsTab(cw, h int) string {
	t := theme.Active
	if len(a.assumptions) == 0 {
		return components.ContentCard("Assumptions",
			"No assumptions yet. Add one with `cflow assumptions add` or import a YAML file.", cw)
	}
	active := scenarioOrBase(a.settings.Scenario)

	cols := fitColumns([]column{
		{title: "Name", width: 0},
		{title: "Scenario", width: 10},
		{title: "Category", width: 10},
		{title: "Value", width: 18, right: true},
		{title: "Frequency", width: 10},
		{title: "Start", width: 7},
		{title: "End", width: 7},
		{title: "Project", width: 12},
	}, components.CardInnerWidth(cw))

	rows := make([]tableRow, len(a.assumptions))
	for i, as := range a.assumptions {
		end := "-"
		if as.End != nil {
			end = as.End.String()
		}
		project := as.Project
		if project == "" {
			project = "all"
		}
		rows[i] = tableRow{
			cells: []string{
				as.Name, as.Scenario(), string(as.Category), describeValue(as),
				string(as.Frequency), as.Start.String(), end, project,
			},
			dim: as.Scenario() != active,
		}
	}

	var b strings.Builder
	title := fmt.Sprintf("Assumptions · %d in %q (others dimmed)", countScenario(a.assumptions, active), active)
	b.WriteString(components.ContentCard(title, renderTable(cols, rows, a.cursors[components.TabAssumptions], max(3, h-10)), cw))

	if len(a.report.Warnings) > 0 {
		warn := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
		lines := make([]string, 0, len(a.report.Warnings))
		for _, w := range a.report.Warnings {
			lines = append(lines, warn.Render(truncStr(w.Error(), components.CardInnerWidth(cw))))
		}
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Skipped", strings.Join(lines, "\n"), cw))
	}
	return b.String()
}

func countScenario(list []model.Assumption, scenario string) int {
	n := 0
	for _, as := range list {
		if as.Scenario() == scenario {
			n++
		}
	}
	return n
}
