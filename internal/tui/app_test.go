package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/cflow/internal/config"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/projection"
	"github.com/theirongolddev/cflow/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Errorf("past the last tab: got %d, want -1", got)
		}
	}
}

func TestCycle(t *testing.T) {
	list := []string{"base", "growth", "lean"}
	tests := []struct{ cur, want string }{
		{"base", "growth"},
		{"lean", "base"},
		{"missing", "base"},
	}
	for _, tt := range tests {
		if got := cycle(list, tt.cur); got != tt.want {
			t.Errorf("cycle(%q) = %q, want %q", tt.cur, got, tt.want)
		}
	}
	if got := cycle(nil, "x"); got != "x" {
		t.Errorf("cycle(nil) = %q, want x", got)
	}
	if got := cycleInt(config.ValidHorizons, 3); got != 1 {
		t.Errorf("cycleInt wrap = %d, want 1", got)
	}
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func newTestApp(t *testing.T) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	a := NewApp(Options{
		Label: "test.db",
		Settings: projection.Settings{
			AsOf:           date("2025-01-15"),
			HorizonMonths:  3,
			LookbackMonths: 2,
		},
	})
	a.needSetup = false

	entries := []model.LedgerEntry{
		{ID: "1", Date: date("2025-01-05"), Category: model.CategoryRevenue, Amount: 10000, Kind: model.KindActual, Project: "alpha", Client: "acme", Description: "invoice 1"},
		{ID: "2", Date: date("2025-01-10"), Category: model.CategoryOpex, Amount: -4000, Kind: model.KindActual, Project: "alpha", Description: "contractor"},
		{ID: "3", Date: date("2024-12-10"), Category: model.CategoryRevenue, Amount: 3000, Kind: model.KindActual, Project: "beta", Client: "globex", Description: "retainer"},
	}
	assumptions := []model.Assumption{
		{ID: "g1", Name: "hire", Category: model.CategoryOpex, ScenarioID: "growth", Amount: 2000,
			ValueType: model.ValueFixed, Frequency: model.FreqMonthly, Start: model.YearMonth{Year: 2025, Month: time.February}},
	}

	m, _ := a.Update(DataLoadedMsg{Entries: entries, Assumptions: assumptions})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m.(App)
}

func press(t *testing.T, a App, key string) App {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, _ := a.Update(msg)
	return m.(App)
}

func TestDataLoadedComputesReport(t *testing.T) {
	a := newTestApp(t)
	if !a.loaded {
		t.Fatal("app not marked loaded")
	}
	// 2 lookback + cutoff + 3 horizon
	if got := len(a.report.Months); got != 6 {
		t.Errorf("months = %d, want 6", got)
	}
	if got := len(a.projects); got != 2 {
		t.Errorf("projects = %d, want 2", got)
	}
	if got := len(a.ledgerRows); got != 3 {
		t.Errorf("ledger rows = %d, want 3", got)
	}
	if !a.ledgerRows[0].Date.After(a.ledgerRows[2].Date) {
		t.Error("ledger rows not sorted newest first")
	}
}

func TestScenarioAndProjectKeys(t *testing.T) {
	a := newTestApp(t)
	baseEnd := a.report.KPIs.EndingBalance

	a = press(t, a, "s")
	if a.settings.Scenario != "growth" {
		t.Fatalf("scenario = %q, want growth", a.settings.Scenario)
	}
	if a.report.KPIs.EndingBalance >= baseEnd {
		t.Errorf("growth ending balance %v should be below base %v", a.report.KPIs.EndingBalance, baseEnd)
	}

	a = press(t, a, "f")
	if a.settings.Project != "alpha" {
		t.Fatalf("project = %q, want alpha", a.settings.Project)
	}
	if got := len(a.ledgerRows); got != 2 {
		t.Errorf("filtered ledger rows = %d, want 2", got)
	}

	a = press(t, a, "h")
	if a.settings.HorizonMonths != 12 {
		t.Errorf("horizon after cycling from 0 years = %d, want 12", a.settings.HorizonMonths)
	}
}

func TestCursorClampsToList(t *testing.T) {
	a := newTestApp(t)
	a = press(t, a, "m")
	if a.activeTab != components.TabMargins {
		t.Fatalf("activeTab = %d, want margins", a.activeTab)
	}
	for range 5 {
		a = press(t, a, "j")
	}
	if got := a.cursors[components.TabMargins]; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
	a = press(t, a, "g")
	if got := a.cursors[components.TabMargins]; got != 0 {
		t.Errorf("cursor after g = %d, want 0", got)
	}
}

func TestSettingsEditSaves(t *testing.T) {
	a := newTestApp(t)
	a = press(t, a, "x")
	a.cursors[components.TabSettings] = settingsFieldHorizon

	a = press(t, a, "enter")
	if !a.settingsTab.editing {
		t.Fatal("enter did not start editing")
	}
	a.settingsTab.input.SetValue("2")
	a = press(t, a, "enter")

	if a.settingsTab.saveErr != nil {
		t.Fatalf("save: %v", a.settingsTab.saveErr)
	}
	if a.settings.HorizonMonths != 24 {
		t.Errorf("HorizonMonths = %d, want 24", a.settings.HorizonMonths)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.HorizonYears != 2 {
		t.Errorf("saved HorizonYears = %d, want 2", cfg.General.HorizonYears)
	}
}

func TestSettingsRejectsInvalidValue(t *testing.T) {
	a := newTestApp(t)
	a.activeTab = components.TabSettings
	a.cursors[components.TabSettings] = settingsFieldBaseline

	a = press(t, a, "enter")
	a.settingsTab.input.SetValue("5")
	a = press(t, a, "enter")

	if a.settingsTab.saveErr == nil {
		t.Fatal("expected an error for baseline 5")
	}
	if config.Exists() {
		t.Error("invalid value should not write the config")
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := newTestApp(t)
	for i := range components.Tabs {
		a.activeTab = i
		out := a.View()
		if out == "" {
			t.Fatalf("tab %d rendered nothing", i)
		}
		if !strings.Contains(out, "scenario") {
			t.Errorf("tab %d missing the filter line", i)
		}
		if got := strings.Count(out, "\n") + 1; got < a.height {
			t.Errorf("tab %d height = %d, want at least %d", i, got, a.height)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := newTestApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if out := m.(App).View(); !strings.Contains(out, "too narrow") {
		t.Errorf("narrow view = %q", out)
	}
}
