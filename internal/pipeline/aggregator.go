// Package pipeline orchestrates CSV import, store sync, and ledger aggregation.
package pipeline

import (
	"math"
	"sort"
	"strings"

	"github.com/theirongolddev/cflow/internal/model"
)

// Health thresholds on the 0-100 score.
const (
	HealthyScore = 70
	WatchScore   = 40
)

// EntryFilter narrows a ledger. Zero fields match everything.
type EntryFilter struct {
	Project  string // exact, case-insensitive
	Client   string // exact, case-insensitive
	Category model.Category
	Kind     model.Kind
	Since    model.YearMonth // inclusive
	Until    model.YearMonth // inclusive
	Search   string          // substring of the description
}

// Filter returns the entries matching f.
func Filter(entries []model.LedgerEntry, f EntryFilter) []model.LedgerEntry {
	if f == (EntryFilter{}) {
		return entries
	}

	var result []model.LedgerEntry
	for _, e := range entries {
		if f.Project != "" && !strings.EqualFold(e.Project, f.Project) {
			continue
		}
		if f.Client != "" && !strings.EqualFold(e.Client, f.Client) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		m := e.Month()
		if !f.Since.IsZero() && m.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && m.After(f.Until) {
			continue
		}
		if f.Search != "" && !containsIgnoreCase(e.Description, f.Search) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Projects returns the distinct non-empty project names, sorted.
func Projects(entries []model.LedgerEntry) []string {
	return distinct(entries, func(e model.LedgerEntry) string { return e.Project })
}

// Clients returns the distinct non-empty client names, sorted.
func Clients(entries []model.LedgerEntry) []string {
	return distinct(entries, func(e model.LedgerEntry) string { return e.Client })
}

func distinct(entries []model.LedgerEntry, key func(model.LedgerEntry) string) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		if k := key(e); k != "" {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AggregateMonths computes per-month category sums, most recent first. Every
// month in [since, until] is present so charts show gaps as zeros.
func AggregateMonths(entries []model.LedgerEntry, since, until model.YearMonth) []model.MonthlyCategoryStats {
	filtered := Filter(entries, EntryFilter{Since: since, Until: until})

	monthMap := make(map[model.YearMonth]*model.MonthlyCategoryStats)
	for _, e := range filtered {
		if !e.Valid() {
			continue
		}
		m := e.Month()
		ms, ok := monthMap[m]
		if !ok {
			ms = &model.MonthlyCategoryStats{Month: m}
			monthMap[m] = ms
		}
		ms.Entries++
		if !e.Category.Valid() {
			ms.Unassigned += e.Amount
			continue
		}
		if e.Kind == model.KindBudget {
			ms.Budget.Add(e.Category, e.Amount)
		} else {
			ms.Actual.Add(e.Category, e.Amount)
		}
	}
	for _, ms := range monthMap {
		ms.Actual = ms.Actual.Normalized()
		ms.Budget = ms.Budget.Normalized()
	}

	if !since.IsZero() && !until.IsZero() {
		for m := since; !m.After(until); m = m.AddMonths(1) {
			if _, ok := monthMap[m]; !ok {
				monthMap[m] = &model.MonthlyCategoryStats{Month: m}
			}
		}
	}

	months := make([]model.MonthlyCategoryStats, 0, len(monthMap))
	for _, ms := range monthMap {
		months = append(months, *ms)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month.After(months[j].Month)
	})
	return months
}

// AggregateProjects computes profitability per project. Company-wide opex and
// overhead (entries with no project) are allocated to projects in proportion
// to their share of project revenue.
func AggregateProjects(entries []model.LedgerEntry, since, until model.YearMonth) []model.ProjectStats {
	return aggregateBy(entries, since, until,
		func(e model.LedgerEntry) string { return e.Project },
		func(e model.LedgerEntry) string { return e.Client },
	)
}

// AggregateClients computes profitability per client, allocating costs with
// no client the same way AggregateProjects allocates company-wide costs.
func AggregateClients(entries []model.LedgerEntry, since, until model.YearMonth) []model.ProjectStats {
	return aggregateBy(entries, since, until,
		func(e model.LedgerEntry) string { return e.Client },
		func(e model.LedgerEntry) string { return e.Project },
	)
}

type groupAcc struct {
	stats   model.ProjectStats
	related map[string]struct{}
	actual  model.CategoryTotals // raw signed sums
	budget  model.CategoryTotals
	revenue map[model.YearMonth]float64
	active  map[model.YearMonth]struct{}
}

func aggregateBy(entries []model.LedgerEntry, since, until model.YearMonth, key, related func(model.LedgerEntry) string) []model.ProjectStats {
	filtered := Filter(entries, EntryFilter{Since: since, Until: until})

	groups := make(map[string]*groupAcc)
	var shared model.CategoryTotals

	for _, e := range filtered {
		if !e.Valid() || !e.Category.Valid() {
			continue
		}
		k := key(e)

		if k == "" {
			if e.Kind == model.KindActual {
				shared.Add(e.Category, e.Amount)
			}
			continue
		}

		g, ok := groups[k]
		if !ok {
			g = &groupAcc{
				stats:   model.ProjectStats{Name: k},
				related: make(map[string]struct{}),
				revenue: make(map[model.YearMonth]float64),
				active:  make(map[model.YearMonth]struct{}),
			}
			groups[k] = g
		}
		if r := related(e); r != "" {
			g.related[r] = struct{}{}
		}

		if e.Kind == model.KindBudget {
			g.budget.Add(e.Category, e.Amount)
			continue
		}
		g.actual.Add(e.Category, e.Amount)
		g.active[e.Month()] = struct{}{}
		if e.Category == model.CategoryRevenue {
			g.revenue[e.Month()] += e.Amount
		}
	}

	sharedMag := shared.Magnitudes()
	sharedCost := sharedMag.Opex + sharedMag.Overhead

	for _, g := range groups {
		actual := g.actual.Magnitudes()
		budget := g.budget.Magnitudes()
		g.stats.Revenue = actual.Revenue
		g.stats.DirectCost = actual.Opex + actual.Overhead
		g.stats.Investment = actual.Investment
		g.stats.BudgetCost = budget.Opex + budget.Overhead
		for m, v := range g.revenue {
			g.revenue[m] = math.Abs(v)
		}
	}

	var totalRevenue float64
	for _, g := range groups {
		totalRevenue += g.stats.Revenue
	}

	out := make([]model.ProjectStats, 0, len(groups))
	for _, g := range groups {
		ps := g.stats
		if totalRevenue > 0 {
			ps.RevenueShare = ps.Revenue / totalRevenue * 100
			ps.AllocatedOverhead = sharedCost * ps.Revenue / totalRevenue
		}
		ps.GrossMargin = ps.Revenue - ps.DirectCost
		ps.NetMargin = ps.GrossMargin - ps.AllocatedOverhead
		if ps.Revenue != 0 {
			ps.GrossMarginPct = ps.GrossMargin / ps.Revenue * 100
			ps.NetMarginPct = ps.NetMargin / ps.Revenue * 100
		}
		ps.ActiveMonths = len(g.active)
		ps.RevenueTrendPct = revenueTrend(g.revenue, g.active)

		for r := range g.related {
			ps.Related = append(ps.Related, r)
		}
		sort.Strings(ps.Related)

		ps.HealthScore, ps.Health = HealthScore(ps)
		out = append(out, ps)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// revenueTrend compares the second half of the active months to the first.
func revenueTrend(revenue map[model.YearMonth]float64, active map[model.YearMonth]struct{}) float64 {
	if len(active) < 2 {
		return 0
	}
	months := make([]model.YearMonth, 0, len(active))
	for m := range active {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	mid := len(months) / 2
	var first, second float64
	for i, m := range months {
		if i < mid {
			first += revenue[m]
		} else {
			second += revenue[m]
		}
	}
	return model.PctChange(first, second)
}

// HealthScore rates a project 0-100 from three parts:
//
//	net margin     50 pts, full at 40% or better
//	revenue trend  25 pts, linear from -20% (0) to +20% (25)
//	budget         25 pts, full within budget, zero at 50% over
//
// Groups with no budgeted costs get half the budget points.
func HealthScore(ps model.ProjectStats) (int, model.HealthLabel) {
	if ps.Revenue == 0 && ps.DirectCost == 0 {
		return 0, model.HealthUnknown
	}

	margin := clamp(ps.NetMarginPct/40, 0, 1) * 50
	trend := clamp((ps.RevenueTrendPct+20)/40, 0, 1) * 25

	budget := 12.5
	if ps.BudgetCost > 0 {
		overrun := ps.DirectCost/ps.BudgetCost - 1
		budget = clamp(1-overrun/0.5, 0, 1) * 25
	}

	score := int(math.Round(margin + trend + budget))
	switch {
	case score >= HealthyScore:
		return score, model.HealthGood
	case score >= WatchScore:
		return score, model.HealthWatch
	default:
		return score, model.HealthAtRisk
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
