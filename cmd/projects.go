package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/pipeline"
	"github.com/theirongolddev/cflow/internal/projection"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project profitability and health ranking",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProfitability(cmd, "PROJECTS", pipeline.AggregateProjects)
	},
}

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Client profitability ranking",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProfitability(cmd, "CLIENTS", pipeline.AggregateClients)
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(clientsCmd)
}

type aggregateFunc func(entries []model.LedgerEntry, since, until model.YearMonth) []model.ProjectStats

func runProfitability(cmd *cobra.Command, title string, aggregate aggregateFunc) error {
	cfg := loadConfig()
	settings, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}
	entries, _, err := loadLedger(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	until := model.MonthOf(settings.AsOf)
	lookback := settings.LookbackMonths
	if lookback <= 0 {
		lookback = projection.DefaultLookbackMonths
	}
	since := until.AddMonths(-lookback)

	stats := aggregate(entries, since, until)
	if settings.Project != "" {
		stats = keepRelatedTo(stats, settings.Project)
	}
	if len(stats) == 0 {
		fmt.Println("\n  No tagged entries in the selected window.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s to %s", title, cli.FormatMonth(since), cli.FormatMonth(until))))
	fmt.Println()

	rows := make([][]string, 0, len(stats))
	for _, ps := range stats {
		rows = append(rows, []string{
			truncate(ps.Name, 20),
			cli.FormatUSDCompact(ps.Revenue),
			cli.FormatUSDCompact(ps.DirectCost),
			cli.FormatUSDCompact(ps.AllocatedOverhead),
			cli.Signed(ps.NetMargin, cli.FormatUSDCompact(ps.NetMargin)),
			cli.FormatPercent(ps.NetMarginPct),
			cli.FormatPercent(ps.RevenueShare),
			cli.Signed(ps.RevenueTrendPct, cli.FormatDelta(ps.RevenueTrendPct)),
			healthCell(ps),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Name", "Revenue", "Direct", "Overhead", "Net", "Net %", "Share", "Trend", "Health"},
		Rows:    rows,
	}))
	fmt.Println(cli.Muted("  Overhead: untagged costs allocated by revenue share."))
	return nil
}

func healthCell(ps model.ProjectStats) string {
	label := fmt.Sprintf("%3d %s", ps.HealthScore, ps.Health)
	switch ps.Health {
	case model.HealthGood:
		return cli.Signed(1, label)
	case model.HealthAtRisk:
		return cli.Signed(-1, label)
	case model.HealthWatch:
		return cli.Warn(label)
	}
	return cli.Muted(string(ps.Health))
}

// keepRelatedTo filters stats to the named row or rows related to it, so
// --project narrows the client view to that project's clients.
func keepRelatedTo(stats []model.ProjectStats, name string) []model.ProjectStats {
	out := stats[:0:0]
	for _, ps := range stats {
		if strings.EqualFold(ps.Name, name) {
			out = append(out, ps)
			continue
		}
		for _, r := range ps.Related {
			if strings.EqualFold(r, name) {
				out = append(out, ps)
				break
			}
		}
	}
	return out
}
