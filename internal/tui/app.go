// Package tui provides the interactive Bubble Tea dashboard for cflow.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/config"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/pipeline"
	"github.com/theirongolddev/cflow/internal/projection"
	"github.com/theirongolddev/cflow/internal/store"
	"github.com/theirongolddev/cflow/internal/tui/components"
	"github.com/theirongolddev/cflow/internal/tui/theme"
)

// Options configures the dashboard.
type Options struct {
	Store     store.Store
	Label     string // backend description for the status bar
	ImportDir string // re-imported on load and on [i]; empty disables import
	Settings  projection.Settings
}

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Entries     []model.LedgerEntry
	Assumptions []model.Assumption
	Import      *pipeline.ImportResult
	LoadTime    time.Duration
	Err         error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background refresh or import completes.
type RefreshDataMsg DataLoadedMsg

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	entries     []model.LedgerEntry
	assumptions []model.Assumption
	loaded      bool
	loadTime    time.Duration
	loadErr     error
	notice      string

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Pre-computed for the current settings
	settings     projection.Settings
	report       projection.Report
	projects     []model.ProjectStats
	clients      []model.ProjectStats
	scenarios    []string
	projectNames []string
	ledgerRows   []model.LedgerEntry

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	cursors   [7]int // per-tab list cursor, indexed like components.Tabs

	// Ledger search
	searching   bool
	searchInput textinput.Model
	searchQuery string

	settingsTab settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	// Loading; progress and completion arrive on loadSub
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	cfg := loadConfigOrDefault()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refreshInterval := time.Duration(cfg.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < 10*time.Second {
		refreshInterval = 30 * time.Second
	}

	return App{
		opts:            opts,
		settings:        opts.Settings,
		needSetup:       !config.Exists(),
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// asOf is the actuals cutoff: the configured date, or now.
func (a App) asOf() time.Time {
	if !a.opts.Settings.AsOf.IsZero() {
		return a.opts.Settings.AsOf
	}
	return time.Now()
}

func (a *App) recompute() {
	s := a.settings
	s.AsOf = a.asOf()
	a.report = projection.Run(a.entries, a.assumptions, s)
	a.scenarios = projection.Scenarios(a.assumptions)
	a.projectNames = pipeline.Projects(a.entries)

	cutoff := model.MonthOf(s.AsOf)
	lookback := s.LookbackMonths
	if lookback <= 0 {
		lookback = projection.DefaultLookbackMonths
	}
	since := cutoff.AddMonths(-lookback)
	a.projects = pipeline.AggregateProjects(a.entries, since, cutoff)
	a.clients = pipeline.AggregateClients(a.entries, since, cutoff)

	// Filter may return a.entries itself; sort a copy.
	a.ledgerRows = append([]model.LedgerEntry(nil), pipeline.Filter(a.entries, pipeline.EntryFilter{
		Project: s.Project,
		Search:  a.searchQuery,
	})...)
	sort.SliceStable(a.ledgerRows, func(i, j int) bool {
		return a.ledgerRows[i].Date.After(a.ledgerRows[j].Date)
	})

	for tab := range a.cursors {
		n := a.listLen(tab)
		if a.cursors[tab] >= n {
			a.cursors[tab] = n - 1
		}
		if a.cursors[tab] < 0 {
			a.cursors[tab] = 0
		}
	}
}

// listLen is the number of selectable rows on a tab.
func (a App) listLen(tab int) int {
	switch tab {
	case components.TabProjection:
		return len(a.report.Months)
	case components.TabMargins:
		return len(a.projects)
	case components.TabClients:
		return len(a.clients)
	case components.TabAssumptions:
		return len(a.assumptions)
	case components.TabLedger:
		return len(a.ledgerRows)
	case components.TabSettings:
		return settingsFieldCount
	}
	return 0
}

func (a *App) applyData(msg DataLoadedMsg) {
	a.loadTime = msg.LoadTime
	a.lastRefresh = time.Now()
	a.loadErr = msg.Err
	if msg.Err != nil {
		return
	}
	a.entries = msg.Entries
	a.assumptions = msg.Assumptions
	a.notice = importNotice(msg.Import)
	a.recompute()
}

func importNotice(res *pipeline.ImportResult) string {
	if res == nil || (res.Reparsed == 0 && res.Removed == 0 && res.RowErrors == 0) {
		return ""
	}
	msg := fmt.Sprintf("imported %d file(s)", res.Reparsed)
	if res.Removed > 0 {
		msg += fmt.Sprintf(", pruned %d", res.Removed)
	}
	if res.RowErrors > 0 {
		msg += fmt.Sprintf(", %d bad row(s)", res.RowErrors)
	}
	return msg
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.applyData(msg)
		if a.needSetup {
			a.setupVals = defaultSetupValues(loadConfigOrDefault(), a.opts.ImportDir)
			a.setupForm = newSetupForm(len(a.entries), a.opts.Label, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshDataCmd(a.opts.Store, ""))
		}
		return a, tea.Batch(cmds...)

	case RefreshDataMsg:
		a.refreshing = false
		a.applyData(DataLoadedMsg(msg))
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == components.TabSettings && a.settingsTab.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == components.TabLedger && a.searching {
		return a.updateLedgerSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	case "g":
		a.cursors[a.activeTab] = 0
		return a, nil
	case "G":
		a.cursors[a.activeTab] = max(0, a.listLen(a.activeTab)-1)
		return a, nil
	case "enter":
		if a.activeTab == components.TabSettings {
			return a.settingsStartEdit()
		}
		return a, nil
	case "/":
		if a.activeTab == components.TabLedger {
			a.searching = true
			a.searchInput = newSearchInput(a.searchQuery)
			a.searchInput.Focus()
			return a, a.searchInput.Cursor.BlinkCmd()
		}
		return a, nil
	case "esc":
		if a.activeTab == components.TabLedger && a.searchQuery != "" {
			a.searchQuery = ""
			a.recompute()
		}
		return a, nil

	case "s":
		a.settings.Scenario = cycle(a.scenarios, scenarioOrBase(a.settings.Scenario))
		a.recompute()
		return a, nil
	case "f":
		a.settings.Project = cycle(append([]string{""}, a.projectNames...), a.settings.Project)
		a.recompute()
		return a, nil
	case "h":
		years := cycleInt(config.ValidHorizons, a.settings.HorizonMonths/12)
		a.settings.HorizonMonths = years * 12
		a.recompute()
		return a, nil
	case "b":
		a.settings.BaselineMonths = cycleInt(config.ValidBaselines, a.settings.BaselineMonths)
		a.recompute()
		return a, nil

	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.opts.Store, "")
		}
		return a, nil
	case "i":
		if !a.refreshing && a.opts.ImportDir != "" {
			a.refreshing = true
			return a, refreshDataCmd(a.opts.Store, a.opts.ImportDir)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		cfg := loadConfigOrDefault()
		cfg.TUI.AutoRefresh = a.autoRefresh
		_ = config.Save(cfg)
		return a, nil

	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if runes := []rune(key); len(runes) == 1 {
		if tab := components.TabIdxByKey(runes[0]); tab >= 0 {
			a.activeTab = tab
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	n := a.listLen(a.activeTab)
	c := a.cursors[a.activeTab] + delta
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	a.cursors[a.activeTab] = c
}

func scenarioOrBase(s string) string {
	if s == "" {
		return model.DefaultScenario
	}
	return s
}

// cycle returns the element after cur in list, wrapping around.
func cycle(list []string, cur string) string {
	if len(list) == 0 {
		return cur
	}
	for i, v := range list {
		if v == cur {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

func cycleInt(list []int, cur int) int {
	for i, v := range list {
		if v == cur {
			return list[(i+1)%len(list)]
		}
	}
	return list[0]
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			a.notice = "config not saved: " + err.Error()
		}
		a.recompute()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  cflow needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("$ cflow"))
	b.WriteString(subtitleStyle.Render(" · cash flow projections"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Importing ledger exports\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
		b.WriteString(subtitleStyle.Render(" files"))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Loading ledger..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o p m c a l x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k  g G", "Move through lists"},
			{"/  Esc", "Search ledger / clear"},
		}},
		{"Projection", [][2]string{
			{"s", "Next scenario"},
			{"f", "Next project filter"},
			{"h", "Cycle horizon (1-3 years)"},
			{"b", "Cycle baseline window"},
		}},
		{"Data", [][2]string{
			{"r", "Reload from the store"},
			{"i", "Import CSV exports, then reload"},
			{"R", "Toggle auto-refresh"},
			{"?  q", "Help / Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, kb := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-14s", kb[0])),
				descStyle.Render(kb[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// filterLine summarizes the settings every tab is computed with.
func (a App) filterLine() string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	sep := dim.Render(" │ ")

	project := a.settings.Project
	if project == "" {
		project = "all projects"
	}
	baseline := "all history"
	if a.settings.BaselineMonths > 0 {
		baseline = fmt.Sprintf("%d mo", a.settings.BaselineMonths)
	}

	parts := []string{
		dim.Render(" scenario ") + accent.Render(scenarioOrBase(a.settings.Scenario)),
		dim.Render("project ") + accent.Render(project),
		dim.Render("horizon ") + accent.Render(fmt.Sprintf("%d mo", a.settings.HorizonMonths)),
		dim.Render("baseline ") + accent.Render(baseline),
		dim.Render("actuals through ") + accent.Render(cli.FormatMonth(model.MonthOf(a.asOf()))),
	}
	return strings.Join(parts, sep)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	filterRow := lipgloss.NewStyle().Background(t.Surface).Width(w).Render(a.filterLine())
	header := components.RenderTabBar(a.activeTab, w) + "\n" + filterRow

	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		Ledger:      a.opts.Label,
		DataAge:     fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Message:     a.notice,
	})

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil:
		content = components.ContentCard("Load failed", a.loadErr.Error(), cw)
	default:
		switch a.activeTab {
		case components.TabOverview:
			content = a.renderOverviewTab(cw)
		case components.TabProjection:
			content = a.renderProjectionTab(cw, contentH)
		case components.TabMargins:
			content = a.renderStatsTab(a.projects, a.cursors[components.TabMargins], "Project", "Clients", cw, contentH)
		case components.TabClients:
			content = a.renderStatsTab(a.clients, a.cursors[components.TabClients], "Client", "Projects", cw, contentH)
		case components.TabAssumptions:
			content = a.renderAssumptionsTab(cw, contentH)
		case components.TabLedger:
			content = a.renderLedgerTab(cw, contentH)
		case components.TabSettings:
			content = a.renderSettingsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Data loading ───────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDataCmd imports opts.ImportDir (when set) and loads the store in a
// background goroutine, streaming ProgressMsg updates and a final
// DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			sub <- loadData(opts.Store, opts.ImportDir, progressFn)
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads in the background with no progress UI.
func refreshDataCmd(st store.Store, importDir string) tea.Cmd {
	return func() tea.Msg {
		return RefreshDataMsg(loadData(st, importDir, nil))
	}
}

func loadData(st store.Store, importDir string, progressFn pipeline.ProgressFunc) DataLoadedMsg {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if st == nil {
		return DataLoadedMsg{Err: fmt.Errorf("no ledger store configured")}
	}

	var msg DataLoadedMsg
	if importDir != "" {
		res, err := pipeline.ImportWithStore(ctx, importDir, st, pipeline.ImportOptions{Classify: true}, progressFn)
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		msg.Import = res
	}

	var err error
	if msg.Entries, err = st.LoadEntries(ctx); err != nil {
		return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
	}
	if msg.Assumptions, err = st.LoadAssumptions(ctx); err != nil {
		return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
	}
	msg.LoadTime = time.Since(start)
	return msg
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
