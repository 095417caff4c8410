package projection

import (
	"time"

	"github.com/theirongolddev/cflow/internal/model"
)

// Settings are the user-facing knobs for one dashboard computation.
type Settings struct {
	AsOf             time.Time // cutoff month and baseline anchor
	BaselineMonths   int       // 0 = all history
	HorizonMonths    int
	LookbackMonths   int // 0 = DefaultLookbackMonths
	BeginningBalance float64
	Scenario         string
	Project          string
	Range            DateRange // KPI range; zero = whole simulated range
}

// Report bundles everything a view needs from one run.
type Report struct {
	Settings Settings
	Baseline model.CategoryTotals
	Result
	KPIs model.SummaryKPIs
}

// Run computes the baseline, simulates, and derives KPIs in one pass.
func Run(entries []model.LedgerEntry, assumptions []model.Assumption, s Settings) Report {
	scoped := entries
	if s.Project != "" {
		scoped = make([]model.LedgerEntry, 0, len(entries))
		for _, e := range entries {
			if e.Project == s.Project {
				scoped = append(scoped, e)
			}
		}
	}

	window := AllHistory
	if s.BaselineMonths > 0 {
		window = LastMonths(s.BaselineMonths)
	}
	baseline := ComputeBaseline(scoped, window, s.AsOf)

	cutoff := model.MonthOf(s.AsOf)
	lookback := s.LookbackMonths
	if lookback <= 0 {
		lookback = DefaultLookbackMonths
	}

	res := Simulate(entries, assumptions, Params{
		BeginningBalance: s.BeginningBalance,
		Cutoff:           cutoff,
		Start:            cutoff.AddMonths(-lookback),
		HorizonMonths:    s.HorizonMonths,
		Baseline:         baseline,
		Scenario:         s.Scenario,
		Project:          s.Project,
	})

	return Report{
		Settings: s,
		Baseline: baseline,
		Result:   res,
		KPIs:     DeriveKPIs(res.Months, s.Range),
	}
}

// Scenarios returns the distinct scenario IDs in assumptions, base first.
func Scenarios(assumptions []model.Assumption) []string {
	seen := map[string]bool{model.DefaultScenario: true}
	out := []string{model.DefaultScenario}
	for _, a := range assumptions {
		id := a.Scenario()
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
