// Package config loads and saves cflow settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all cflow configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Database   DatabaseConfig   `toml:"database"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds projection defaults.
type GeneralConfig struct {
	HorizonYears     int     `toml:"horizon_years"`
	BaselineMonths   int     `toml:"baseline_months"` // 0 = all history
	LookbackMonths   int     `toml:"lookback_months"`
	BeginningBalance float64 `toml:"beginning_balance"`
	Scenario         string  `toml:"scenario"`
	ImportDir        string  `toml:"import_dir,omitempty"`
}

// DatabaseConfig selects the ledger backend.
type DatabaseConfig struct {
	Driver string `toml:"driver"`         // sqlite | postgres
	Path   string `toml:"path,omitempty"` // sqlite file; empty = data dir default
	URL    string `toml:"url,omitempty"`  // postgres; env overrides
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr         string  `toml:"addr"`
	IntervalSec  int     `toml:"interval_sec"`
	EventsBuffer int     `toml:"events_buffer"`
	RateLimit    float64 `toml:"rate_limit"` // requests per second across the API
	Burst        int     `toml:"burst"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard behavior.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// ValidHorizons and ValidBaselines are the accepted option values.
var (
	ValidHorizons  = []int{1, 2, 3}
	ValidBaselines = []int{0, 3, 6, 12}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			HorizonYears:   1,
			BaselineMonths: 6,
			LookbackMonths: 12,
			Scenario:       "base",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  30,
			EventsBuffer: 200,
			RateLimit:    20,
			Burst:        40,
		},
		Appearance: AppearanceConfig{
			Theme: "ledger-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 30,
		},
	}
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	if !contains(ValidHorizons, c.General.HorizonYears) {
		return fmt.Errorf("horizon_years must be one of %v, got %d", ValidHorizons, c.General.HorizonYears)
	}
	if !contains(ValidBaselines, c.General.BaselineMonths) {
		return fmt.Errorf("baseline_months must be one of %v, got %d", ValidBaselines, c.General.BaselineMonths)
	}
	if c.General.LookbackMonths < 0 {
		return fmt.Errorf("lookback_months must not be negative, got %d", c.General.LookbackMonths)
	}
	switch c.Database.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("database driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	return nil
}

// HorizonMonths converts the configured horizon to months.
func (c Config) HorizonMonths() int {
	return c.General.HorizonYears * 12
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cflow")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cflow")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// LoadEnv reads KEY=value pairs from the given files (default ".env") into
// the environment without overriding variables that are already set. Missing
// files are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// DatabaseURL returns the Postgres URL from CFLOW_DATABASE_URL, DATABASE_URL,
// or the config, in that order.
func DatabaseURL(cfg Config) string {
	if u := os.Getenv("CFLOW_DATABASE_URL"); u != "" {
		return u
	}
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return u
	}
	return cfg.Database.URL
}
