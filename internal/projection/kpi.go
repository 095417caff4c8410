package projection

import (
	"math"

	"github.com/theirongolddev/cflow/internal/model"
)

// RunwayWindow is how many trailing actual months the burn rate averages.
const RunwayWindow = 3

// DateRange bounds a KPI computation. Zero ends are open.
type DateRange struct {
	Start model.YearMonth
	End   model.YearMonth
}

func (r DateRange) contains(m model.YearMonth) bool {
	if !r.Start.IsZero() && m.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && m.After(r.End) {
		return false
	}
	return true
}

// DeriveKPIs reduces the months inside rng to headline figures. Every ratio
// with a zero denominator reports 0; runway reports Infinite when the
// trailing average net cash is not negative.
func DeriveKPIs(months []model.MonthlyProjection, rng DateRange) model.SummaryKPIs {
	k := model.SummaryKPIs{Start: rng.Start, End: rng.End}

	var (
		actual      []model.MonthlyProjection
		actualNet   float64
		budgetNet   float64
		haveEnd     bool
		lastInRange model.MonthlyProjection
	)

	for _, m := range months {
		if !rng.contains(m.Month) {
			continue
		}
		if k.Months == 0 {
			if k.Start.IsZero() {
				k.Start = m.Month
			}
		}
		k.Months++
		lastInRange = m
		haveEnd = true

		k.TotalRevenue += m.Revenue.Projected
		k.TotalExpenses += math.Abs(m.Opex.Projected) + math.Abs(m.Overhead.Projected)
		k.TotalInvestment += math.Abs(m.Investment.Projected)
		k.NetCash += m.NetCash.Projected

		if m.DataType == model.DataActual {
			actual = append(actual, m)
			actualNet += m.NetCash.Actual
			budgetNet += m.NetCash.Budget
		}
	}
	if haveEnd {
		if k.End.IsZero() {
			k.End = lastInRange.Month
		}
		k.EndingBalance = lastInRange.RunningBalance.Projected
	}
	k.ActualMonths = len(actual)

	if k.TotalRevenue != 0 {
		k.GrossMarginPct = (k.TotalRevenue - k.TotalExpenses) / k.TotalRevenue * 100
	}
	if budgetNet != 0 {
		k.BudgetVariancePct = (actualNet - budgetNet) / math.Abs(budgetNet) * 100
	}

	k.Trend = halfOverHalf(actual)
	k.CurrentBalance, k.MonthlyBurn, k.Runway = runway(actual)
	if len(actual) == 0 && haveEnd {
		k.CurrentBalance = lastInRange.RunningBalance.Actual
	}
	return k
}

// halfOverHalf splits the actual months at their midpoint and compares the
// aggregate revenue, opex, and net of the two halves.
func halfOverHalf(actual []model.MonthlyProjection) model.TrendDeltas {
	if len(actual) < 2 {
		return model.TrendDeltas{}
	}
	mid := len(actual) / 2

	var first, second struct{ revenue, opex, net float64 }
	for i, m := range actual {
		half := &first
		if i >= mid {
			half = &second
		}
		half.revenue += m.Revenue.Actual
		half.opex += math.Abs(m.Opex.Actual)
		half.net += m.NetCash.Actual
	}

	return model.TrendDeltas{
		RevenuePct: model.PctChange(first.revenue, second.revenue),
		OpexPct:    model.PctChange(first.opex, second.opex),
		NetPct:     model.PctChange(first.net, second.net),
	}
}

// runway divides the latest actual balance by the trailing average burn.
func runway(actual []model.MonthlyProjection) (balance, burn float64, r model.Runway) {
	if len(actual) == 0 {
		return 0, 0, model.Runway{Infinite: true}
	}
	balance = actual[len(actual)-1].RunningBalance.Actual

	trail := actual
	if len(trail) > RunwayWindow {
		trail = trail[len(trail)-RunwayWindow:]
	}
	var net float64
	for _, m := range trail {
		net += m.NetCash.Actual
	}
	avgNet := net / float64(len(trail))

	// burn is expenses minus revenue, i.e. negated net cash
	burn = -avgNet
	if burn <= 0 {
		return balance, burn, model.Runway{Infinite: true}
	}
	months := balance / burn
	if months < 0 {
		months = 0
	}
	return balance, burn, model.Runway{Months: months}
}
