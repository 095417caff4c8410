package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/config"
	"github.com/theirongolddev/cflow/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagImportClassify bool
	flagImportPrune    bool
)

var importCmd = &cobra.Command{
	Use:   "import [dir-or-file]",
	Short: "Import CSV ledger exports into the store",
	Long: "Import discovers *.csv exports under a directory (or a single file), " +
		"reparses only files that changed since the last import, and replaces " +
		"their entries. With no argument the configured import_dir is used.",
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportClassify, "classify", false, "Suggest categories for unassigned rows")
	importCmd.Flags().BoolVar(&flagImportPrune, "prune", false, "Drop entries from files that were deleted")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	root := cfg.General.ImportDir
	if len(args) == 1 {
		root = args[0]
	}
	if root == "" {
		return fmt.Errorf("no import path given and import_dir is not configured")
	}

	st, label, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	logf("  Scanning %s...\n", root)
	progressFn := func(current, total int) {
		logf("\r  Parsing %s", cli.RenderProgressBar(current, total, 24))
	}

	res, err := pipeline.ImportWithStore(cmd.Context(), root, st, pipeline.ImportOptions{
		Classify: flagImportClassify,
		Prune:    flagImportPrune,
	}, progressFn)
	if err != nil {
		return err
	}
	if res.Reparsed > 0 {
		logf("\n")
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("IMPORT  " + label))
	fmt.Println()

	rows := [][]string{
		{"Files found", cli.FormatNumber(int64(res.TotalFiles))},
		{"Unchanged", cli.FormatNumber(int64(res.Unchanged))},
		{"Reparsed", cli.FormatNumber(int64(res.Reparsed))},
		{"Entries imported", cli.FormatNumber(int64(len(res.Entries)))},
	}
	if flagImportPrune {
		rows = append(rows, []string{"Files pruned", cli.FormatNumber(int64(res.Removed))})
	}
	if flagImportClassify {
		rows = append(rows, []string{"Categories suggested", cli.FormatNumber(int64(res.Classified))})
	}
	rows = append(rows, []string{"---"},
		[]string{"Bad rows", cli.FormatNumber(int64(res.RowErrors))},
		[]string{"Failed files", cli.FormatNumber(int64(res.FileErrors))},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Import", "Count"},
		Rows:    rows,
	}))

	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", e)
	}

	if cfg.General.ImportDir == "" && len(args) == 1 && !config.Exists() {
		fmt.Println(cli.Muted("  Tip: run `cflow setup` to remember this import directory."))
	}
	return nil
}
