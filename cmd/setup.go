package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/cflow/internal/config"
	"github.com/theirongolddev/cflow/internal/source"
	"github.com/theirongolddev/cflow/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	var (
		horizon   = cfg.General.HorizonYears
		baseline  = cfg.General.BaselineMonths
		balance   = strconv.FormatFloat(cfg.General.BeginningBalance, 'f', -1, 64)
		importDir = cfg.General.ImportDir
		driver    = cfg.Database.Driver
		dbURL     = cfg.Database.URL
		themeName = cfg.Appearance.Theme
	)
	if driver == "" {
		driver = "sqlite"
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cflow").
				Description("Projection defaults. Every value can be overridden per command."),
			huh.NewSelect[int]().
				Title("Projection horizon").
				Options(
					huh.NewOption("1 year", 1),
					huh.NewOption("2 years", 2),
					huh.NewOption("3 years", 3),
				).
				Value(&horizon),
			huh.NewSelect[int]().
				Title("Baseline window").
				Options(
					huh.NewOption("All history", 0),
					huh.NewOption("Last 3 months", 3),
					huh.NewOption("Last 6 months", 6),
					huh.NewOption("Last 12 months", 12),
				).
				Value(&baseline),
			huh.NewInput().
				Title("Beginning cash balance").
				Validate(func(s string) error {
					_, err := parseDollars(s)
					return err
				}).
				Value(&balance),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Import directory").
				Description("Where your CSV exports land. Leave blank to pass a path to `cflow import`.").
				Value(&importDir),
			huh.NewSelect[string]().
				Title("Ledger database").
				Options(
					huh.NewOption("SQLite (local file)", "sqlite"),
					huh.NewOption("Postgres", "postgres"),
				).
				Value(&driver),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Postgres URL").
				Description("CFLOW_DATABASE_URL overrides this. Leave blank to rely on the environment.").
				Placeholder("postgres://user@localhost:5432/cflow").
				Value(&dbURL),
		).WithHideFunc(func() bool { return driver != "postgres" }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeName),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return err
	}

	amount, err := parseDollars(balance)
	if err != nil {
		return err
	}
	cfg.General.HorizonYears = horizon
	cfg.General.BaselineMonths = baseline
	cfg.General.BeginningBalance = amount
	cfg.General.ImportDir = strings.TrimSpace(importDir)
	cfg.Database.Driver = driver
	cfg.Database.URL = strings.TrimSpace(dbURL)
	cfg.Appearance.Theme = themeName

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	if cfg.General.ImportDir != "" {
		if files, err := source.ScanDir(cfg.General.ImportDir); err == nil {
			fmt.Printf("  Found %d CSV export(s) in %s. Run `cflow import` to load them.\n",
				len(files), cfg.General.ImportDir)
		}
	}
	fmt.Println("  Run `cflow setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func parseDollars(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a dollar amount: %q", s)
	}
	return v, nil
}
