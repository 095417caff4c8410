package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/cflow/internal/tui"
	"github.com/theirongolddev/cflow/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagTUINoImport bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagTUINoImport, "no-import", false, "Skip importing the configured import_dir on launch")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	settings, err := resolveSettings(cmd, cfg)
	if err != nil {
		return err
	}
	if flagAsOf == "" {
		// Zero AsOf lets the dashboard follow the clock across refreshes.
		settings.AsOf = time.Time{}
	}

	st, label, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	importDir := cfg.General.ImportDir
	if flagTUINoImport {
		importDir = ""
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Store:     st,
		Label:     label,
		ImportDir: importDir,
		Settings:  settings,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
