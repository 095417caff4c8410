package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/cflow/internal/config"
	"github.com/theirongolddev/cflow/internal/tui/theme"
)

// setupValues holds the first-run form answers. huh writes into these
// through pointers, so the struct must live on the App, not the stack.
type setupValues struct {
	horizonYears int
	baseline     int
	balance      string
	importDir    string
	theme        string
}

func defaultSetupValues(cfg config.Config, importDir string) setupValues {
	if importDir == "" {
		importDir = cfg.General.ImportDir
	}
	return setupValues{
		horizonYears: cfg.General.HorizonYears,
		baseline:     cfg.General.BaselineMonths,
		balance:      strconv.FormatFloat(cfg.General.BeginningBalance, 'f', -1, 64),
		importDir:    importDir,
		theme:        cfg.Appearance.Theme,
	}
}

func parseBalance(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a dollar amount: %q", s)
	}
	return f, nil
}

func newSetupForm(entryCount int, label string, vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	welcome := "Let's set up a few defaults."
	if entryCount > 0 {
		welcome = fmt.Sprintf("Found %d ledger entries in %s.\n%s", entryCount, label, welcome)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to cflow").
				Description(welcome),

			huh.NewSelect[int]().
				Title("Projection horizon").
				Options(
					huh.NewOption("1 year", 1),
					huh.NewOption("2 years", 2),
					huh.NewOption("3 years", 3),
				).
				Value(&vals.horizonYears),

			huh.NewSelect[int]().
				Title("Baseline window").
				Description("History averaged to fill months with no budget.").
				Options(
					huh.NewOption("All history", 0),
					huh.NewOption("Last 3 months", 3),
					huh.NewOption("Last 6 months", 6),
					huh.NewOption("Last 12 months", 12),
				).
				Value(&vals.baseline),

			huh.NewInput().
				Title("Beginning cash balance").
				Placeholder("0").
				Validate(func(s string) error {
					_, err := parseBalance(s)
					return err
				}).
				Value(&vals.balance),

			huh.NewInput().
				Title("Import directory").
				Description("CSV exports re-imported on launch. Leave blank to skip.").
				Value(&vals.importDir),

			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(true)
}

// saveSetupConfig persists the form answers and applies them to the
// running dashboard.
func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	vals := a.setupVals

	balance, err := parseBalance(vals.balance)
	if err != nil {
		return err
	}

	cfg.General.HorizonYears = vals.horizonYears
	cfg.General.BaselineMonths = vals.baseline
	cfg.General.BeginningBalance = balance
	cfg.General.ImportDir = strings.TrimSpace(vals.importDir)
	cfg.Appearance.Theme = vals.theme

	a.settings.HorizonMonths = cfg.HorizonMonths()
	a.settings.BaselineMonths = vals.baseline
	a.settings.BeginningBalance = balance
	a.opts.ImportDir = cfg.General.ImportDir
	theme.SetActive(vals.theme)

	return config.Save(cfg)
}
