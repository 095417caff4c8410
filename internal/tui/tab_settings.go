package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/config"
	"github.com/theirongolddev/cflow/internal/tui/components"
	"github.com/theirongolddev/cflow/internal/tui/theme"
)

const (
	settingsFieldTheme = iota
	settingsFieldHorizon
	settingsFieldBaseline
	settingsFieldLookback
	settingsFieldBalance
	settingsFieldScenario
	settingsFieldImportDir
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state. The cursor lives in
// App.cursors like every other tab.
type settingsState struct {
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settingsTab.editing = true
	a.settingsTab.saved = false

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	switch a.cursors[components.TabSettings] {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldHorizon:
		ti.Placeholder = "1, 2, or 3 (years)"
		ti.SetValue(strconv.Itoa(cfg.General.HorizonYears))
	case settingsFieldBaseline:
		ti.Placeholder = "0 (all history), 3, 6, or 12"
		ti.SetValue(strconv.Itoa(cfg.General.BaselineMonths))
	case settingsFieldLookback:
		ti.Placeholder = "months of history shown before the cutoff"
		ti.SetValue(strconv.Itoa(cfg.General.LookbackMonths))
	case settingsFieldBalance:
		ti.Placeholder = "cash on hand before the first month"
		ti.SetValue(strconv.FormatFloat(cfg.General.BeginningBalance, 'f', -1, 64))
	case settingsFieldScenario:
		ti.Placeholder = "base"
		ti.SetValue(cfg.General.Scenario)
	case settingsFieldImportDir:
		ti.Placeholder = "directory of CSV exports (empty disables [i])"
		ti.SetValue(cfg.General.ImportDir)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "30 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	}

	ti.Focus()
	a.settingsTab.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settingsTab.editing = false
		a.settingsTab.saved = a.settingsTab.saveErr == nil
		return a, nil
	case "esc":
		a.settingsTab.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settingsTab.input, cmd = a.settingsTab.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited value, applies it to the live
// dashboard, and persists it. Invalid values are reported and not saved.
func (a *App) settingsSave() {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settingsTab.input.Value())
	invalid := func(what string) {
		a.settingsTab.saveErr = fmt.Errorf("invalid %s %q", what, val)
	}

	switch a.cursors[components.TabSettings] {
	case settingsFieldTheme:
		if theme.ByName(val).Name != val {
			invalid("theme")
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldHorizon:
		n, err := strconv.Atoi(val)
		if err != nil || !slices.Contains(config.ValidHorizons, n) {
			invalid("horizon")
			return
		}
		cfg.General.HorizonYears = n
		a.settings.HorizonMonths = n * 12
	case settingsFieldBaseline:
		n, err := strconv.Atoi(val)
		if err != nil || !slices.Contains(config.ValidBaselines, n) {
			invalid("baseline")
			return
		}
		cfg.General.BaselineMonths = n
		a.settings.BaselineMonths = n
	case settingsFieldLookback:
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			invalid("lookback")
			return
		}
		cfg.General.LookbackMonths = n
		a.settings.LookbackMonths = n
	case settingsFieldBalance:
		f, err := parseBalance(val)
		if err != nil {
			invalid("balance")
			return
		}
		cfg.General.BeginningBalance = f
		a.settings.BeginningBalance = f
	case settingsFieldScenario:
		cfg.General.Scenario = val
		a.settings.Scenario = val
	case settingsFieldImportDir:
		cfg.General.ImportDir = val
		a.opts.ImportDir = val
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			invalid("auto refresh")
			return
		}
		cfg.TUI.AutoRefresh = b
		a.autoRefresh = b
	case settingsFieldRefreshInterval:
		n, err := strconv.Atoi(val)
		if err != nil || n < 10 {
			invalid("refresh interval")
			return
		}
		cfg.TUI.RefreshIntervalSec = n
		a.refreshInterval = time.Duration(n) * time.Second
	}

	a.settingsTab.saveErr = config.Save(cfg)
	a.recompute()
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)

	baseline := "all history"
	if cfg.General.BaselineMonths > 0 {
		baseline = fmt.Sprintf("%d months", cfg.General.BaselineMonths)
	}
	importDir := cfg.General.ImportDir
	if importDir == "" {
		importDir = "(not set)"
	}

	fields := []struct{ label, value string }{
		{"Theme", cfg.Appearance.Theme},
		{"Horizon", fmt.Sprintf("%d year(s)", cfg.General.HorizonYears)},
		{"Baseline", baseline},
		{"Lookback", fmt.Sprintf("%d months", cfg.General.LookbackMonths)},
		{"Beginning balance", cli.FormatUSD(cfg.General.BeginningBalance)},
		{"Default scenario", scenarioOrBase(cfg.General.Scenario)},
		{"Import directory", importDir},
		{"Auto refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
	}

	cursor := a.cursors[components.TabSettings]
	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		switch {
		case a.settingsTab.editing && i == cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(selectedLabelStyle.Render(fmt.Sprintf("%-19s ", f.label)))
			form.WriteString(a.settingsTab.input.View())
		case i == cursor:
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-19s ", f.label+":")) +
				selectedStyle.Render(f.value)
			form.WriteString(line)
			if padLen := innerW - lipgloss.Width(line); padLen > 0 {
				form.WriteString(selectedStyle.Render(strings.Repeat(" ", padLen)))
			}
		default:
			form.WriteString(valueStyle.Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-19s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settingsTab.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Loss).Background(t.Surface).
			Render("Not saved: " + a.settingsTab.saveErr.Error()))
	} else if a.settingsTab.saved {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Gain).Background(t.Surface).Render("Saved"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var info strings.Builder
	info.WriteString(labelStyle.Render("Ledger:       ") + valueStyle.Render(a.opts.Label) + "\n")
	info.WriteString(labelStyle.Render("Entries:      ") + valueStyle.Render(cli.FormatNumber(int64(len(a.entries)))) + "\n")
	info.WriteString(labelStyle.Render("Assumptions:  ") + valueStyle.Render(cli.FormatNumber(int64(len(a.assumptions)))) + "\n")
	info.WriteString(labelStyle.Render("Load time:    ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())) + "\n")
	info.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", info.String(), cw))
	return b.String()
}
