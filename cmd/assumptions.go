package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/cflow/internal/assumptions"
	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/projection"
	"github.com/theirongolddev/cflow/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagAsmName      string
	flagAsmCategory  string
	flagAsmAmount    float64
	flagAsmPercentOf string
	flagAsmFrequency string
	flagAsmStart     string
	flagAsmEnd       string
)

var assumptionsCmd = &cobra.Command{
	Use:     "assumptions",
	Aliases: []string{"asm"},
	Short:   "Manage forward-looking assumptions",
	RunE:    runAssumptionsList,
}

var assumptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assumptions (all scenarios unless --scenario is set)",
	RunE:  runAssumptionsList,
}

var assumptionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an assumption",
	Example: `  cflow assumptions add --name "New hire" --category opex --amount 8000 --start 2025-03
  cflow assumptions add -s growth --name "Price rise" --category revenue \
      --amount 10 --percent-of baseline --start 2025-06`,
	RunE: runAssumptionsAdd,
}

var assumptionsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an assumption by ID or unique ID prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssumptionsRm,
}

var assumptionsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load assumptions from a YAML file (same ID replaces)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssumptionsImport,
}

var assumptionsExportCmd = &cobra.Command{
	Use:   "export [file.yaml]",
	Short: "Write assumptions as YAML (stdout if no file)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAssumptionsExport,
}

func init() {
	f := assumptionsAddCmd.Flags()
	f.StringVar(&flagAsmName, "name", "", "Display name")
	f.StringVar(&flagAsmCategory, "category", "", "revenue, opex, overhead, or investment")
	f.Float64Var(&flagAsmAmount, "amount", 0, "Dollar amount, or percent with --percent-of")
	f.StringVar(&flagAsmPercentOf, "percent-of", "", "Make this a percentage of baseline, previous, or a category")
	f.StringVar(&flagAsmFrequency, "frequency", string(model.FreqMonthly), "monthly, quarterly, annually, or one-time")
	f.StringVar(&flagAsmStart, "start", "", "First month, YYYY-MM")
	f.StringVar(&flagAsmEnd, "end", "", "Last month, YYYY-MM (open-ended if empty)")
	_ = assumptionsAddCmd.MarkFlagRequired("name")
	_ = assumptionsAddCmd.MarkFlagRequired("category")
	_ = assumptionsAddCmd.MarkFlagRequired("start")

	assumptionsCmd.AddCommand(assumptionsListCmd, assumptionsAddCmd, assumptionsRmCmd,
		assumptionsImportCmd, assumptionsExportCmd)
	rootCmd.AddCommand(assumptionsCmd)
}

func runAssumptionsList(cmd *cobra.Command, _ []string) error {
	_, list, err := loadLedger(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("scenario") {
		want := scenarioLabel(flagScenario)
		kept := list[:0:0]
		for _, a := range list {
			if a.Scenario() == want {
				kept = append(kept, a)
			}
		}
		list = kept
	}
	if len(list) == 0 {
		fmt.Println("\n  No assumptions. Add one with `cflow assumptions add`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ASSUMPTIONS  %d", len(list))))
	fmt.Println()

	rows := make([][]string, 0, len(list))
	for _, a := range list {
		value := cli.FormatUSD(a.Amount)
		if a.ValueType == model.ValuePercentage {
			value = fmt.Sprintf("%g%% of %s", a.Amount, a.PercentOf)
		}
		end := "-"
		if a.End != nil {
			end = a.End.String()
		}
		project := a.Project
		if project == "" {
			project = "all"
		}
		status := ""
		if err := projection.Validate(a); err != nil {
			status = cli.Warn("invalid")
		}
		rows = append(rows, []string{
			shortID(a.ID),
			truncate(a.Name, 24),
			a.Scenario(),
			string(a.Category),
			value,
			string(a.Frequency),
			a.Start.String(),
			end,
			project,
			status,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Name", "Scenario", "Category", "Value", "Every", "Start", "End", "Project", ""},
		Rows:    rows,
	}))
	return nil
}

func runAssumptionsAdd(cmd *cobra.Command, _ []string) error {
	a := model.Assumption{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(flagAsmName),
		Category:  model.Category(strings.ToLower(flagAsmCategory)),
		Amount:    flagAsmAmount,
		ValueType: model.ValueFixed,
		Frequency: model.Frequency(strings.ToLower(flagAsmFrequency)),
		Project:   flagProject,
	}
	if cmd.Flags().Changed("scenario") && flagScenario != model.DefaultScenario {
		a.ScenarioID = flagScenario
	}
	if flagAsmPercentOf != "" {
		a.ValueType = model.ValuePercentage
		a.PercentOf = model.Reference(strings.ToLower(flagAsmPercentOf))
	}

	start, err := model.ParseYearMonth(flagAsmStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	a.Start = start
	if flagAsmEnd != "" {
		end, err := model.ParseYearMonth(flagAsmEnd)
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}
		if end.Before(start) {
			return fmt.Errorf("--end %s is before --start %s", end, start)
		}
		a.End = &end
	}

	if err := projection.Validate(a); err != nil {
		return err
	}

	st, _, err := openStore(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveAssumption(cmd.Context(), a); err != nil {
		return fmt.Errorf("saving assumption: %w", err)
	}
	fmt.Printf("  Added %q (%s) to scenario %s\n", a.Name, shortID(a.ID), a.Scenario())
	return nil
}

func runAssumptionsRm(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := st.LoadAssumptions(cmd.Context())
	if err != nil {
		return err
	}
	id, err := matchID(args[0], list, func(a model.Assumption) string { return a.ID })
	if err != nil {
		return err
	}

	if err := st.DeleteAssumption(cmd.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no assumption %s", args[0])
		}
		return err
	}
	fmt.Printf("  Removed assumption %s\n", shortID(id))
	return nil
}

func runAssumptionsImport(cmd *cobra.Command, args []string) error {
	list, warnings, err := assumptions.ReadFile(args[0])
	if err != nil {
		return err
	}

	st, _, err := openStore(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	for _, a := range list {
		if err := st.SaveAssumption(cmd.Context(), a); err != nil {
			return fmt.Errorf("saving %q: %w", a.Name, err)
		}
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  skipped %v\n", w)
	}
	fmt.Printf("  Imported %d assumption(s) from %s\n", len(list), args[0])
	return nil
}

func runAssumptionsExport(cmd *cobra.Command, args []string) error {
	_, list, err := loadLedger(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return assumptions.Encode(os.Stdout, list)
	}
	if err := assumptions.WriteFile(args[0], list); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	fmt.Printf("  Wrote %d assumption(s) to %s\n", len(list), args[0])
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// matchID resolves an exact ID or a unique prefix against items.
func matchID[T any](prefix string, items []T, id func(T) string) (string, error) {
	var found []string
	for _, it := range items {
		v := id(it)
		if v == prefix {
			return v, nil
		}
		if strings.HasPrefix(v, prefix) {
			found = append(found, v)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no match for %q", prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous (%d matches)", prefix, len(found))
	}
}
