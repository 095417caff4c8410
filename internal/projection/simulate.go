package projection

import (
	"github.com/theirongolddev/cflow/internal/model"
)

// DefaultLookbackMonths is how far before the cutoff a simulation starts
// when Params.Start is not set.
const DefaultLookbackMonths = 12

// Params configures one simulation run.
type Params struct {
	BeginningBalance float64
	Cutoff           model.YearMonth // last month whose actuals are authoritative
	Start            model.YearMonth // zero = Cutoff - DefaultLookbackMonths
	HorizonMonths    int             // months simulated past the cutoff

	// Baseline seeds every month's modeled totals (magnitudes, as returned by
	// ComputeBaseline). The zero value means no seed.
	Baseline model.CategoryTotals

	Scenario string // "" = model.DefaultScenario
	Project  string // "" = company-wide; otherwise entries are filtered to it
}

// Result is the simulator output plus what had to be left out.
type Result struct {
	Months []model.MonthlyProjection

	SkippedEntries     int
	SkippedAssumptions int
	Warnings           []error // one *SkipError per skipped assumption
}

// accumulator is the state carried from one month to the next.
type accumulator struct {
	balance  model.Triple
	previous model.CategoryTotals
}

type monthBucket struct {
	actual     model.CategoryTotals
	budget     model.CategoryTotals
	unassigned float64
}

// SimulateMonths runs the simulator with no baseline seed and the default
// lookback. It is the bare engine contract; Simulate exposes every knob.
func SimulateMonths(
	entries []model.LedgerEntry,
	assumptions []model.Assumption,
	beginningBalance float64,
	cutoff model.YearMonth,
	horizonMonths int,
) []model.MonthlyProjection {
	return Simulate(entries, assumptions, Params{
		BeginningBalance: beginningBalance,
		Cutoff:           cutoff,
		HorizonMonths:    horizonMonths,
	}).Months
}

// Simulate produces one MonthlyProjection per month from p.Start through
// p.Cutoff + p.HorizonMonths. Months are folded strictly in calendar order
// because both the running balance and "previous" percentages depend on the
// month before.
func Simulate(entries []model.LedgerEntry, assumptions []model.Assumption, p Params) Result {
	var res Result

	start := p.Start
	if start.IsZero() {
		start = p.Cutoff.AddMonths(-DefaultLookbackMonths)
	}
	horizon := p.HorizonMonths
	if horizon < 0 {
		horizon = 0
	}
	end := p.Cutoff.AddMonths(horizon)
	if start.After(end) {
		return res
	}

	buckets, skipped := bucketEntries(entries, p.Project)
	res.SkippedEntries = skipped

	byCategory, warnings := prepareAssumptions(assumptions, p.Scenario)
	res.Warnings = warnings
	res.SkippedAssumptions = len(warnings)

	var seed model.CategoryTotals
	for _, c := range model.Categories {
		seed.Set(c, c.Sign()*p.Baseline.Get(c))
	}

	acc := accumulator{
		balance: model.Triple{
			Actual:    p.BeginningBalance,
			Budget:    p.BeginningBalance,
			Projected: p.BeginningBalance,
		},
	}

	res.Months = make([]model.MonthlyProjection, 0, end.MonthsSince(start)+1)
	for month := start; !month.After(end); month = month.AddMonths(1) {
		var mp model.MonthlyProjection
		mp, acc = step(acc, month, buckets[month], byCategory, seed, p)
		res.Months = append(res.Months, mp)
	}
	return res
}

// step advances the fold by one month.
func step(
	acc accumulator,
	month model.YearMonth,
	b *monthBucket,
	byCategory map[model.Category][]model.Assumption,
	seed model.CategoryTotals,
	p Params,
) (model.MonthlyProjection, accumulator) {
	if b == nil {
		b = &monthBucket{}
	}
	inWindow := !month.After(p.Cutoff)

	mp := model.MonthlyProjection{Month: month, DataType: model.DataProjected, Unassigned: b.unassigned}
	if inWindow {
		mp.DataType = model.DataActual
	}

	// Categories resolve in fixed order. A percentage that references a
	// category later in the order sees that category's seed value.
	running := seed
	for _, c := range model.Categories {
		modeled := seed.Get(c)
		for _, a := range byCategory[c] {
			r, err := ResolveAssumption(a, month, p.Project, References{
				Baseline: p.Baseline,
				Previous: acc.previous,
				Current:  running,
			})
			if err == nil && r.Applies {
				modeled += r.Delta
			}
		}

		actual := b.actual.Get(c)
		budget := b.budget.Get(c)
		final := blend(inWindow, actual, modeled, budget)

		running.Set(c, final)
		mp.SetCategory(c, model.Triple{Actual: actual, Budget: budget, Projected: final})
	}

	for _, c := range model.Categories {
		mp.NetCash = mp.NetCash.Plus(mp.Category(c))
	}

	if inWindow {
		acc.balance.Actual += mp.NetCash.Actual
	}
	acc.balance.Budget += mp.NetCash.Budget
	acc.balance.Projected += mp.NetCash.Projected
	mp.RunningBalance = acc.balance

	acc.previous = running
	return mp, acc
}

// blend applies the fallback order. Inside the actuals window: actual, then
// modeled, then budget. After it: modeled, then budget.
func blend(inWindow bool, actual, modeled, budget float64) float64 {
	if inWindow && actual != 0 {
		return actual
	}
	if modeled != 0 {
		return modeled
	}
	return budget
}

// bucketEntries sums entries per month, kind, and category. Raw signed
// amounts are summed first and normalized per bucket, so a refund reduces
// its category. Malformed entries are counted and dropped.
func bucketEntries(entries []model.LedgerEntry, project string) (map[model.YearMonth]*monthBucket, int) {
	buckets := make(map[model.YearMonth]*monthBucket)
	skipped := 0
	for _, e := range entries {
		if !e.Valid() {
			skipped++
			continue
		}
		if project != "" && e.Project != project {
			continue
		}
		m := e.Month()
		b, ok := buckets[m]
		if !ok {
			b = &monthBucket{}
			buckets[m] = b
		}
		if !e.Category.Valid() {
			b.unassigned += e.Amount
			continue
		}
		if e.Kind == model.KindBudget {
			b.budget.Add(e.Category, e.Amount)
		} else {
			b.actual.Add(e.Category, e.Amount)
		}
	}
	for _, b := range buckets {
		b.actual = b.actual.Normalized()
		b.budget = b.budget.Normalized()
	}
	return buckets, skipped
}

// prepareAssumptions keeps the scenario's valid assumptions, grouped by
// category in input order.
func prepareAssumptions(assumptions []model.Assumption, scenario string) (map[model.Category][]model.Assumption, []error) {
	if scenario == "" {
		scenario = model.DefaultScenario
	}
	byCategory := make(map[model.Category][]model.Assumption)
	var warnings []error
	for _, a := range assumptions {
		if a.Scenario() != scenario {
			continue
		}
		if err := Validate(a); err != nil {
			warnings = append(warnings, err)
			continue
		}
		byCategory[a.Category] = append(byCategory[a.Category], a)
	}
	return byCategory, warnings
}
