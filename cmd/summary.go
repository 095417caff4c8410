package cmd

import (
	"fmt"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/model"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Headline cash position, margin, and runway",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	rep, entries, _, err := runReport(cmd)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("\n  No ledger entries yet.")
		fmt.Println("  Import a CSV export with `cflow import <dir>` to get started.")
		return nil
	}

	k := rep.KPIs
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CASH FLOW  %s to %s · %s",
		cli.FormatMonth(k.Start), cli.FormatMonth(k.End), scenarioLabel(rep.Settings.Scenario))))
	fmt.Println()

	trend := func(pct float64) string {
		if k.ActualMonths < 2 {
			return "-"
		}
		return cli.Signed(pct, cli.FormatDelta(pct))
	}

	rows := [][]string{
		{"Revenue", cli.FormatUSD(k.TotalRevenue), trend(k.Trend.RevenuePct)},
		{"Expenses", cli.FormatUSD(k.TotalExpenses), trend(k.Trend.OpexPct)},
		{"Investment", cli.FormatUSD(k.TotalInvestment), ""},
		{"Net cash", cli.Signed(k.NetCash, cli.FormatUSD(k.NetCash)), trend(k.Trend.NetPct)},
		{"---"},
		{"Gross margin", cli.FormatPercent(k.GrossMarginPct), ""},
		{"Budget variance", cli.Signed(k.BudgetVariancePct, cli.FormatDelta(k.BudgetVariancePct)), ""},
		{"---"},
		{"Current balance", cli.Signed(k.CurrentBalance, cli.FormatUSD(k.CurrentBalance)), ""},
		{"Ending balance", cli.Signed(k.EndingBalance, cli.FormatUSD(k.EndingBalance)), cli.FormatMonth(k.End)},
		{"Monthly burn", cli.FormatUSD(k.MonthlyBurn), "trailing 3 mo"},
		{"Runway", cli.FormatRunway(k.Runway), ""},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value", "Trend"},
		Rows:    rows,
	}))

	balances := make([]float64, 0, len(rep.Months))
	for _, m := range rep.Months {
		balances = append(balances, m.RunningBalance.Projected)
	}
	if len(balances) > 1 {
		fmt.Printf("\n  Balance  %s\n", cli.RenderSparkline(balances))
	}

	var unassigned int
	for _, e := range entries {
		if e.Category == model.CategoryUnassigned {
			unassigned++
		}
	}
	if unassigned > 0 {
		fmt.Println()
		fmt.Println(cli.Warn(fmt.Sprintf("  %d unassigned entries are excluded; `cflow import --classify` can suggest categories.", unassigned)))
	}
	if notice := skippedNotice(rep); notice != "" {
		fmt.Println()
		fmt.Println(cli.Warn(notice + " Run `cflow projection` for details."))
	}
	return nil
}
