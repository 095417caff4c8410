package cmd

import (
	"fmt"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/config"
	"github.com/theirongolddev/cflow/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("  " + cli.Warn("Invalid: "+err.Error()))
	}
	fmt.Println()

	baseline := "all history"
	if cfg.General.BaselineMonths > 0 {
		baseline = fmt.Sprintf("%d months", cfg.General.BaselineMonths)
	}
	fmt.Println("  [General]")
	fmt.Printf("    Horizon:           %d year(s)\n", cfg.General.HorizonYears)
	fmt.Printf("    Baseline:          %s\n", baseline)
	fmt.Printf("    Lookback:          %d months\n", cfg.General.LookbackMonths)
	fmt.Printf("    Beginning balance: %s\n", cli.FormatUSD(cfg.General.BeginningBalance))
	fmt.Printf("    Scenario:          %s\n", scenarioLabel(cfg.General.Scenario))
	if cfg.General.ImportDir != "" {
		fmt.Printf("    Import directory:  %s\n", cfg.General.ImportDir)
	}
	fmt.Println()

	fmt.Println("  [Database]")
	driver := cfg.Database.Driver
	if driver == "" {
		driver = "sqlite"
	}
	fmt.Printf("    Driver: %s\n", driver)
	if driver == "postgres" {
		if config.DatabaseURL(cfg) != "" {
			fmt.Println("    URL:    configured")
		} else {
			fmt.Println("    URL:    not configured (set CFLOW_DATABASE_URL)")
		}
	} else {
		path := cfg.Database.Path
		if path == "" {
			path = pipeline.DBPath()
		}
		fmt.Printf("    Path:   %s\n", path)
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:    %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:   %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Rate limit: %.1f req/s (burst %d)\n", cfg.Daemon.RateLimit, cfg.Daemon.Burst)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v (every %ds)\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  Run `cflow setup` to reconfigure.")
	return nil
}
