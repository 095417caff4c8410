package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/pipeline"
	"github.com/theirongolddev/cflow/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagEntriesClient   string
	flagEntriesCategory string
	flagEntriesKind     string
	flagEntriesSince    string
	flagEntriesUntil    string
	flagEntriesSearch   string
	flagEntriesLimit    int
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Browse and edit ledger entries",
	RunE:  runEntriesList,
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	RunE:  runEntriesList,
}

var entriesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an entry by ID or unique ID prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntriesRm,
}

func init() {
	for _, c := range []*cobra.Command{entriesCmd, entriesListCmd} {
		f := c.Flags()
		f.StringVar(&flagEntriesClient, "client", "", "Only this client")
		f.StringVar(&flagEntriesCategory, "category", "", "Only this category (revenue, opex, overhead, investment, unassigned)")
		f.StringVar(&flagEntriesKind, "kind", "", "actual or budget")
		f.StringVar(&flagEntriesSince, "since", "", "First month, YYYY-MM")
		f.StringVar(&flagEntriesUntil, "until", "", "Last month, YYYY-MM")
		f.StringVar(&flagEntriesSearch, "search", "", "Description contains")
		f.IntVarP(&flagEntriesLimit, "limit", "l", 30, "Number of entries to show (0 = all)")
	}
	entriesCmd.AddCommand(entriesListCmd, entriesRmCmd)
	rootCmd.AddCommand(entriesCmd)
}

func entryFilter() (pipeline.EntryFilter, error) {
	f := pipeline.EntryFilter{
		Project: flagProject,
		Client:  flagEntriesClient,
		Search:  flagEntriesSearch,
	}
	if flagEntriesCategory != "" {
		c := model.Category(strings.ToLower(flagEntriesCategory))
		if !c.Valid() && c != model.CategoryUnassigned {
			return f, fmt.Errorf("unknown category %q", flagEntriesCategory)
		}
		f.Category = c
	}
	if flagEntriesKind != "" {
		f.Kind = model.ParseKind(flagEntriesKind)
	}
	var err error
	if flagEntriesSince != "" {
		if f.Since, err = model.ParseYearMonth(flagEntriesSince); err != nil {
			return f, fmt.Errorf("--since: %w", err)
		}
	}
	if flagEntriesUntil != "" {
		if f.Until, err = model.ParseYearMonth(flagEntriesUntil); err != nil {
			return f, fmt.Errorf("--until: %w", err)
		}
	}
	return f, nil
}

func runEntriesList(cmd *cobra.Command, _ []string) error {
	filter, err := entryFilter()
	if err != nil {
		return err
	}
	entries, _, err := loadLedger(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}

	rows := append([]model.LedgerEntry(nil), pipeline.Filter(entries, filter)...)
	if len(rows) == 0 {
		fmt.Println("\n  No matching entries.")
		return nil
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })

	total := len(rows)
	if flagEntriesLimit > 0 && len(rows) > flagEntriesLimit {
		rows = rows[:flagEntriesLimit]
	}

	var sums model.CategoryTotals
	for _, e := range rows {
		if e.Category.Valid() && e.Kind == model.KindActual {
			sums.Add(e.Category, e.Amount)
		}
	}
	net := sums.Normalized().Sum()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("ENTRIES  showing %d of %s", len(rows), cli.FormatNumber(int64(total)))))
	fmt.Println()

	out := make([][]string, 0, len(rows)+2)
	for _, e := range rows {
		amount := e.Amount
		if e.Category.Valid() {
			amount = e.Category.Normalize(e.Amount)
		}
		category := string(e.Category)
		if e.Category == model.CategoryUnassigned {
			category = cli.Warn(category)
		}
		out = append(out, []string{
			shortID(e.ID),
			e.Date.Format("2006-01-02"),
			category,
			string(e.Kind),
			cli.Signed(amount, cli.FormatUSD(amount)),
			truncate(e.Project, 14),
			truncate(e.Client, 14),
			truncate(e.Description, 32),
		})
	}
	out = append(out, []string{"---"}, []string{"", "", "", "net actual", cli.Signed(net, cli.FormatUSD(net)), "", "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Date", "Category", "Kind", "Amount", "Project", "Client", "Description"},
		Rows:    out,
	}))
	return nil
}

func runEntriesRm(cmd *cobra.Command, args []string) error {
	st, _, err := openStore(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.LoadEntries(cmd.Context())
	if err != nil {
		return err
	}
	id, err := matchID(args[0], entries, func(e model.LedgerEntry) string { return e.ID })
	if err != nil {
		return err
	}

	if err := st.DeleteEntry(cmd.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no entry %s", args[0])
		}
		return err
	}
	fmt.Printf("  Removed entry %s\n", shortID(id))
	fmt.Println(cli.Muted("  Re-importing its source file will bring it back."))
	return nil
}
