package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/cflow/internal/model"
)

func le(date, project, client string, c model.Category, amount float64) model.LedgerEntry {
	d, _ := time.Parse("2006-01-02", date)
	return model.LedgerEntry{Date: d, Project: project, Client: client, Category: c, Amount: amount, Kind: model.KindActual}
}

func TestAggregateProjects_OverheadAllocation(t *testing.T) {
	entries := []model.LedgerEntry{
		le("2025-01-05", "apollo", "Acme", model.CategoryRevenue, 30000),
		le("2025-01-09", "apollo", "", model.CategoryOpex, -10000),
		le("2025-01-05", "zephyr", "Globex", model.CategoryRevenue, 10000),
		le("2025-01-20", "zephyr", "", model.CategoryOpex, -2000),
		le("2025-01-31", "", "", model.CategoryOverhead, -4000), // shared
		le("2025-01-31", "", "", model.CategoryRevenue, 999),    // unallocated revenue is ignored
	}
	budget := le("2025-01-01", "apollo", "", model.CategoryOpex, 8000)
	budget.Kind = model.KindBudget
	entries = append(entries, budget)

	got := AggregateProjects(entries, model.YearMonth{}, model.YearMonth{})
	if len(got) != 2 {
		t.Fatalf("projects = %d, want 2", len(got))
	}

	apollo := got[0]
	if apollo.Name != "apollo" {
		t.Fatalf("first project = %s, want apollo (highest revenue)", apollo.Name)
	}
	if apollo.AllocatedOverhead != 3000 {
		t.Errorf("apollo AllocatedOverhead = %.2f, want 3000", apollo.AllocatedOverhead)
	}
	if apollo.GrossMargin != 20000 || apollo.NetMargin != 17000 {
		t.Errorf("apollo margins = %.0f/%.0f, want 20000/17000", apollo.GrossMargin, apollo.NetMargin)
	}
	if apollo.RevenueShare != 75 {
		t.Errorf("apollo RevenueShare = %.2f, want 75", apollo.RevenueShare)
	}
	if apollo.BudgetCost != 8000 {
		t.Errorf("apollo BudgetCost = %.0f, want 8000", apollo.BudgetCost)
	}
	if len(apollo.Related) != 1 || apollo.Related[0] != "Acme" {
		t.Errorf("apollo Related = %v, want [Acme]", apollo.Related)
	}

	zephyr := got[1]
	if zephyr.AllocatedOverhead != 1000 {
		t.Errorf("zephyr AllocatedOverhead = %.2f, want 1000", zephyr.AllocatedOverhead)
	}
	if math.Abs(zephyr.NetMarginPct-70) > 1e-9 {
		t.Errorf("zephyr NetMarginPct = %.2f, want 70", zephyr.NetMarginPct)
	}
}

func TestAggregateProjects_RefundsNet(t *testing.T) {
	entries := []model.LedgerEntry{
		le("2025-01-05", "apollo", "", model.CategoryRevenue, 5000),
		le("2025-01-20", "apollo", "", model.CategoryRevenue, -500),
		le("2025-01-09", "apollo", "", model.CategoryOpex, -1000),
		le("2025-01-15", "apollo", "", model.CategoryOpex, 200),
		le("2025-01-31", "", "", model.CategoryOverhead, -400),
		le("2025-01-31", "", "", model.CategoryOverhead, 100),
	}
	got := AggregateProjects(entries, model.YearMonth{}, model.YearMonth{})
	if len(got) != 1 {
		t.Fatalf("projects = %d, want 1", len(got))
	}
	ps := got[0]
	if ps.Revenue != 4500 || ps.DirectCost != 800 || ps.AllocatedOverhead != 300 {
		t.Errorf("revenue/cost/overhead = %.0f/%.0f/%.0f, want 4500/800/300",
			ps.Revenue, ps.DirectCost, ps.AllocatedOverhead)
	}

	months := AggregateMonths(entries, model.YearMonth{}, model.YearMonth{})
	if len(months) != 1 || months[0].Actual.Opex != -800 || months[0].Actual.Revenue != 4500 {
		t.Errorf("months = %+v, want opex -800 revenue 4500", months)
	}
}

func TestAggregateClients(t *testing.T) {
	entries := []model.LedgerEntry{
		le("2025-01-05", "apollo", "Acme", model.CategoryRevenue, 100),
		le("2025-02-05", "zephyr", "Acme", model.CategoryRevenue, 300),
		le("2025-02-05", "zephyr", "", model.CategoryOpex, -50),
	}
	got := AggregateClients(entries, model.YearMonth{}, model.YearMonth{})
	if len(got) != 1 {
		t.Fatalf("clients = %d, want 1", len(got))
	}
	acme := got[0]
	if acme.Revenue != 400 || acme.AllocatedOverhead != 50 {
		t.Errorf("Acme revenue/overhead = %.0f/%.0f, want 400/50", acme.Revenue, acme.AllocatedOverhead)
	}
	if len(acme.Related) != 2 {
		t.Errorf("Acme Related = %v, want two projects", acme.Related)
	}
	if acme.ActiveMonths != 2 || acme.RevenueTrendPct != 200 {
		t.Errorf("Acme months/trend = %d/%.0f, want 2/200", acme.ActiveMonths, acme.RevenueTrendPct)
	}
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name  string
		ps    model.ProjectStats
		score int
		label model.HealthLabel
	}{
		{"no data", model.ProjectStats{}, 0, model.HealthUnknown},
		{"strong", model.ProjectStats{Revenue: 1, NetMarginPct: 45, RevenueTrendPct: 25, DirectCost: 90, BudgetCost: 100}, 100, model.HealthGood},
		{"flat no budget", model.ProjectStats{Revenue: 1, NetMarginPct: 20, RevenueTrendPct: 0}, 50, model.HealthWatch},
		{"losing", model.ProjectStats{Revenue: 1, NetMarginPct: -10, RevenueTrendPct: -30, DirectCost: 200, BudgetCost: 100}, 0, model.HealthAtRisk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, label := HealthScore(tt.ps)
			if score != tt.score || label != tt.label {
				t.Errorf("HealthScore = %d %s, want %d %s", score, label, tt.score, tt.label)
			}
		})
	}
}

func TestAggregateMonths_FillsGaps(t *testing.T) {
	entries := []model.LedgerEntry{
		le("2025-01-05", "", "", model.CategoryRevenue, 100),
		le("2025-03-05", "", "", model.CategoryOpex, 40),
		le("2025-03-06", "", "", model.CategoryUnassigned, 7),
	}
	since := model.YearMonth{Year: 2025, Month: time.January}
	until := model.YearMonth{Year: 2025, Month: time.March}

	got := AggregateMonths(entries, since, until)
	if len(got) != 3 {
		t.Fatalf("months = %d, want 3", len(got))
	}
	if got[0].Month != until {
		t.Errorf("first month = %s, want most recent", got[0].Month)
	}
	if got[0].Actual.Opex != -40 || got[0].Unassigned != 7 || got[0].Entries != 2 {
		t.Errorf("March = %+v", got[0])
	}
	if got[1].Entries != 0 {
		t.Errorf("February should be an empty gap, got %+v", got[1])
	}
}

func TestFilter(t *testing.T) {
	entries := []model.LedgerEntry{
		le("2025-01-05", "Apollo", "Acme", model.CategoryRevenue, 100),
		le("2025-02-05", "zephyr", "Acme", model.CategoryRevenue, 300),
	}
	entries[1].Description = "Retainer for Q1"

	if n := len(Filter(entries, EntryFilter{Project: "apollo"})); n != 1 {
		t.Errorf("project filter = %d, want 1", n)
	}
	if n := len(Filter(entries, EntryFilter{Since: model.YearMonth{Year: 2025, Month: time.February}})); n != 1 {
		t.Errorf("since filter = %d, want 1", n)
	}
	if n := len(Filter(entries, EntryFilter{Search: "retainer"})); n != 1 {
		t.Errorf("search filter = %d, want 1", n)
	}
	if got := Projects(entries); len(got) != 2 || got[0] != "Apollo" {
		t.Errorf("Projects = %v", got)
	}
	if got := Clients(entries); len(got) != 1 {
		t.Errorf("Clients = %v", got)
	}
}
