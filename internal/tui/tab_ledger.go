package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cflow/internal/cli"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/tui/components"
	"github.com/theirongolddev/cflow/internal/tui/theme"
)

func newSearchInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "description contains..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.SetValue(value)
	return ti
}

// updateLedgerSearch handles key events while the search box is focused.
func (a App) updateLedgerSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.searchQuery = strings.TrimSpace(a.searchInput.Value())
		a.searching = false
		a.cursors[components.TabLedger] = 0
		a.recompute()
		return a, nil
	case "esc":
		a.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderLedgerTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)

	var b strings.Builder
	switch {
	case a.searching:
		b.WriteString(muted.Render(" / ") + a.searchInput.View())
	case a.searchQuery != "":
		b.WriteString(muted.Render(fmt.Sprintf(" matching %q · [Esc] clear", a.searchQuery)))
	default:
		b.WriteString(muted.Render(" [/] search descriptions"))
	}
	b.WriteString("\n")

	if len(a.ledgerRows) == 0 {
		b.WriteString(components.ContentCard("Ledger", "No matching entries.", cw))
		return b.String()
	}

	cols := fitColumns([]column{
		{title: "Date", width: 10},
		{title: "Category", width: 10},
		{title: "Kind", width: 6},
		{title: "Amount", width: 11, right: true},
		{title: "Project", width: 12},
		{title: "Client", width: 12},
		{title: "Description", width: 0},
	}, components.CardInnerWidth(cw))

	rows := make([]tableRow, len(a.ledgerRows))
	for i, e := range a.ledgerRows {
		amount := e.Amount
		if e.Category.Valid() {
			amount = e.Category.Normalize(e.Amount)
		}
		catColor := lipgloss.Color("")
		if e.Category == model.CategoryUnassigned {
			catColor = t.Warn
		}
		rows[i] = tableRow{
			cells: []string{
				e.Date.Format("2006-01-02"), string(e.Category), string(e.Kind),
				cli.FormatUSD(amount), e.Project, e.Client, e.Description,
			},
			colors: []lipgloss.Color{"", catColor, "", signColor(amount)},
			dim:    e.Kind == model.KindBudget,
		}
	}

	title := fmt.Sprintf("Ledger · %s entries (budget rows dimmed)", cli.FormatNumber(int64(len(a.ledgerRows))))
	b.WriteString(components.ContentCard(title, renderTable(cols, rows, a.cursors[components.TabLedger], max(3, h-6)), cw))
	return b.String()
}
