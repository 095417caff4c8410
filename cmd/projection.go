package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/model"

	"github.com/spf13/cobra"
)

var projectionCmd = &cobra.Command{
	Use:     "projection",
	Aliases: []string{"proj"},
	Short:   "Month-by-month cash flow, actuals then forecast",
	RunE:    runProjection,
}

var flagProjectionDetail bool

func init() {
	projectionCmd.Flags().BoolVar(&flagProjectionDetail, "detail", false, "Show actual and budget legs beside the blended figure")
	rootCmd.AddCommand(projectionCmd)
}

func runProjection(cmd *cobra.Command, _ []string) error {
	rep, _, _, err := runReport(cmd)
	if err != nil {
		return err
	}
	if len(rep.Months) == 0 {
		fmt.Println("\n  Nothing to project.")
		return nil
	}

	project := rep.Settings.Project
	if project == "" {
		project = "all projects"
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PROJECTION  %s · %s · %d mo",
		scenarioLabel(rep.Settings.Scenario), project, rep.Settings.HorizonMonths)))
	fmt.Println()

	var rows [][]string
	var headers []string
	if flagProjectionDetail {
		headers = []string{"Month", "Actual net", "Budget net", "Net", "Balance"}
	} else {
		headers = []string{"Month", "Revenue", "Opex", "Overhead", "Invest", "Net", "Balance"}
	}

	prevType := model.DataActual
	for _, m := range rep.Months {
		if m.DataType != prevType {
			rows = append(rows, []string{"---"})
			prevType = m.DataType
		}
		label := cli.FormatMonthShort(m.Month)
		if m.DataType == model.DataProjected {
			label += " *"
		}
		net := cli.Signed(m.NetCash.Projected, cli.FormatUSD(m.NetCash.Projected))
		balance := cli.Signed(m.RunningBalance.Projected, cli.FormatUSD(m.RunningBalance.Projected))

		if flagProjectionDetail {
			rows = append(rows, []string{
				label,
				cli.FormatUSD(m.NetCash.Actual),
				cli.FormatUSD(m.NetCash.Budget),
				net,
				balance,
			})
			continue
		}
		rows = append(rows, []string{
			label,
			cli.FormatUSD(m.Revenue.Projected),
			cli.FormatUSD(m.Opex.Projected),
			cli.FormatUSD(m.Overhead.Projected),
			cli.FormatUSD(m.Investment.Projected),
			net,
			balance,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{Headers: headers, Rows: rows}))
	fmt.Println(cli.Muted("  * projected"))

	k := rep.KPIs
	fmt.Printf("\n  Ending balance %s  ·  Runway %s\n",
		cli.Signed(k.EndingBalance, cli.FormatUSD(k.EndingBalance)), cli.FormatRunway(k.Runway))

	if notice := skippedNotice(rep); notice != "" {
		fmt.Println(cli.Warn(notice))
	}
	if !flagQuiet {
		for _, w := range rep.Warnings {
			fmt.Fprintf(os.Stderr, "  skipped: %v\n", w)
		}
	}
	return nil
}
