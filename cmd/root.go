// Package cmd implements the cflow CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/config"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/pipeline"
	"github.com/theirongolddev/cflow/internal/projection"
	"github.com/theirongolddev/cflow/internal/store"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	flagDB       string
	flagScenario string
	flagProject  string
	flagHorizon  int
	flagBaseline int
	flagBalance  float64
	flagAsOf     string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "cflow",
	Short: "Cash flow projections and project margins",
	Long: "Import ledger exports, model forward-looking assumptions, and project " +
		"monthly cash flow, runway, and per-project profitability.",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return config.LoadEnv()
	},
	RunE: runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDB, "db", "", "SQLite ledger path (default: config, then data dir)")
	pf.StringVarP(&flagScenario, "scenario", "s", "", "Scenario to project (default: config, then base)")
	pf.StringVarP(&flagProject, "project", "p", "", "Restrict to one project")
	pf.IntVarP(&flagHorizon, "horizon", "H", 1, "Projection horizon in years (1-3)")
	pf.IntVarP(&flagBaseline, "baseline", "b", 6, "Baseline window in months (0 = all history, 3, 6, 12)")
	pf.Float64Var(&flagBalance, "balance", 0, "Beginning cash balance")
	pf.StringVar(&flagAsOf, "as-of", "", "Last month of actuals, YYYY-MM (default: current month)")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig returns the saved config or defaults. A broken config file is
// reported, not fatal.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		logf("  Warning: %v (using defaults)\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

// progressEnabled reports whether progress lines should go to stderr.
func progressEnabled() bool {
	if flagQuiet {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func logf(format string, args ...any) {
	if progressEnabled() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// openStore opens the configured ledger backend. --db always selects SQLite.
func openStore(ctx context.Context, cfg config.Config) (store.Store, string, error) {
	opts := store.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		URL:    config.DatabaseURL(cfg),
	}
	if flagDB != "" {
		opts.Driver = store.DriverSQLite
		opts.Path = flagDB
	}
	if opts.Driver == "" || opts.Driver == store.DriverSQLite {
		opts.Driver = store.DriverSQLite
		if opts.Path == "" {
			opts.Path = pipeline.DBPath()
		}
	}
	if opts.Driver == store.DriverPostgres && opts.URL == "" {
		return nil, "", fmt.Errorf("postgres driver selected but no URL configured (set CFLOW_DATABASE_URL)")
	}

	st, err := store.New(ctx, opts)
	if err != nil {
		return nil, "", fmt.Errorf("opening ledger: %w", err)
	}

	label := opts.Path
	if opts.Driver == store.DriverPostgres {
		label = "postgres"
	}
	return st, label, nil
}

// loadLedger opens the store and reads everything the projection needs.
func loadLedger(ctx context.Context, cfg config.Config) ([]model.LedgerEntry, []model.Assumption, error) {
	st, _, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	entries, err := st.LoadEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading entries: %w", err)
	}
	assumptions, err := st.LoadAssumptions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading assumptions: %w", err)
	}
	logf("  Loaded %s entries and %d assumptions\n", cli.FormatNumber(int64(len(entries))), len(assumptions))
	return entries, assumptions, nil
}

// parseAsOf reads --as-of. The wall clock is consulted only when it is unset.
func parseAsOf() (time.Time, error) {
	s := strings.TrimSpace(flagAsOf)
	if s == "" {
		return time.Now(), nil
	}
	if ym, err := model.ParseYearMonth(s); err == nil {
		return ym.Start(), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q (want YYYY-MM)", s)
	}
	return d, nil
}

// resolveSettings merges config defaults with any flags the user set.
func resolveSettings(cmd *cobra.Command, cfg config.Config) (projection.Settings, error) {
	flags := cmd.Flags()

	horizon := cfg.General.HorizonYears
	if flags.Changed("horizon") {
		horizon = flagHorizon
	}
	baseline := cfg.General.BaselineMonths
	if flags.Changed("baseline") {
		baseline = flagBaseline
	}
	balance := cfg.General.BeginningBalance
	if flags.Changed("balance") {
		balance = flagBalance
	}
	scenario := cfg.General.Scenario
	if flags.Changed("scenario") {
		scenario = flagScenario
	}

	check := cfg
	check.General.HorizonYears = horizon
	check.General.BaselineMonths = baseline
	if err := check.Validate(); err != nil {
		return projection.Settings{}, err
	}

	asOf, err := parseAsOf()
	if err != nil {
		return projection.Settings{}, err
	}

	return projection.Settings{
		AsOf:             asOf,
		BaselineMonths:   baseline,
		HorizonMonths:    horizon * 12,
		LookbackMonths:   cfg.General.LookbackMonths,
		BeginningBalance: balance,
		Scenario:         scenario,
		Project:          flagProject,
	}, nil
}

// runReport is the shared path for the reporting commands.
func runReport(cmd *cobra.Command) (projection.Report, []model.LedgerEntry, []model.Assumption, error) {
	cfg := loadConfig()
	settings, err := resolveSettings(cmd, cfg)
	if err != nil {
		return projection.Report{}, nil, nil, err
	}
	entries, assumptions, err := loadLedger(cmd.Context(), cfg)
	if err != nil {
		return projection.Report{}, nil, nil, err
	}
	return projection.Run(entries, assumptions, settings), entries, assumptions, nil
}

// skippedNotice describes what the projection left out, or "" when nothing
// was. Reports print it on stdout so it survives pipes and --quiet.
func skippedNotice(rep projection.Report) string {
	if rep.SkippedEntries == 0 && rep.SkippedAssumptions == 0 {
		return ""
	}
	return fmt.Sprintf("  Skipped %d malformed entries and %d invalid assumptions.",
		rep.SkippedEntries, rep.SkippedAssumptions)
}

func scenarioLabel(s string) string {
	if s == "" {
		return model.DefaultScenario
	}
	return s
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
