package cmd

import (
	"fmt"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/projection"

	"github.com/spf13/cobra"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Compare every scenario against base",
	RunE:  runScenarios,
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	settings, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}
	entries, assumptions, err := loadLedger(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	ids := projection.Scenarios(assumptions)
	counts := make(map[string]int, len(ids))
	for _, a := range assumptions {
		counts[a.Scenario()]++
	}

	reports := make([]projection.Report, len(ids))
	for i, id := range ids {
		s := settings
		s.Scenario = id
		reports[i] = projection.Run(entries, assumptions, s)
	}
	base := reports[0].KPIs // Scenarios puts base first

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCENARIOS  %s to %s", cli.FormatMonth(base.Start), cli.FormatMonth(base.End))))
	fmt.Println()

	rows := make([][]string, 0, len(ids))
	for i, id := range ids {
		k := reports[i].KPIs
		delta := k.EndingBalance - base.EndingBalance
		deltaStr := "-"
		if i > 0 {
			deltaStr = cli.Signed(delta, cli.FormatUSD(delta))
		}
		skipped := ""
		if n := reports[i].SkippedAssumptions; n > 0 {
			skipped = cli.Warn(fmt.Sprintf("%d skipped", n))
		}
		rows = append(rows, []string{
			id,
			fmt.Sprintf("%d", counts[id]),
			cli.Signed(k.NetCash, cli.FormatUSD(k.NetCash)),
			cli.Signed(k.EndingBalance, cli.FormatUSD(k.EndingBalance)),
			deltaStr,
			cli.FormatRunway(k.Runway),
			skipped,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Scenario", "Rules", "Net cash", "Ending balance", "vs base", "Runway", ""},
		Rows:    rows,
	}))
	return nil
}
