// Package projection computes monthly cash-flow forecasts from ledger history
// and forward-looking assumptions. Every function here is a pure function of
// its arguments: the current date is always passed in, never read.
package projection

import (
	"time"

	"github.com/theirongolddev/cflow/internal/model"
)

// Window selects the history a baseline is averaged over.
// Months > 0 takes the N calendar months ending with the asOf month; otherwise
// a non-zero Start is used; with neither set the whole history counts.
type Window struct {
	Months int
	Start  time.Time
}

// AllHistory is the window covering every entry up to asOf.
var AllHistory = Window{}

// LastMonths returns a window over the n months ending with the asOf month.
func LastMonths(n int) Window {
	return Window{Months: n}
}

func (w Window) start(asOf model.YearMonth) time.Time {
	if w.Months > 0 {
		return asOf.AddMonths(-(w.Months - 1)).Start()
	}
	return w.Start
}

// ComputeBaseline reduces actual entries in the window to one average
// monthly magnitude per category. Signed amounts are netted before the
// magnitude is taken, so refunds reduce their category. The divisor is the number of
// distinct months that have at least one matching entry, not the calendar
// span, so sparse history is not diluted.
func ComputeBaseline(entries []model.LedgerEntry, w Window, asOf time.Time) model.CategoryTotals {
	asOfMonth := model.MonthOf(asOf)
	from := w.start(asOfMonth)
	until := asOfMonth.End()

	var sums model.CategoryTotals
	months := make(map[model.YearMonth]struct{})

	for _, e := range entries {
		if e.Kind != model.KindActual || !e.Category.Valid() || !e.Valid() {
			continue
		}
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !e.Date.Before(until) {
			continue
		}
		sums.Add(e.Category, e.Amount)
		months[e.Month()] = struct{}{}
	}

	divisor := float64(len(months))
	if divisor == 0 {
		divisor = 1
	}

	mags := sums.Magnitudes()
	var avg model.CategoryTotals
	for _, c := range model.Categories {
		avg.Set(c, mags.Get(c)/divisor)
	}
	return avg
}
