// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/cflow/internal/model"
)

// FormatUSD formats a dollar amount with thousands separators. Amounts of
// $100 or more are rounded to whole dollars.
// e.g., 1234567.8 -> "$1,234,568", -42.5 -> "-$42.50"
func FormatUSD(v float64) string {
	if v == 0 {
		return "$0"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v >= 100 {
		return sign + "$" + humanize.FormatFloat("#,###.", math.Round(v))
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatUSDCompact formats a dollar amount with K/M/B suffixes.
// e.g., 1234 -> "$1.2K", -2500000 -> "-$2.5M"
func FormatUSDCompact(v float64) string {
	sign := ""
	abs := v
	if v < 0 {
		sign = "-"
		abs = -v
	}

	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%s$%.1fB", sign, abs/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, abs/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, abs/1_000)
	default:
		return fmt.Sprintf("%s$%.0f", sign, abs)
	}
}

// FormatNumber adds comma separators to an integer.
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a value that is already in percent.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats a percent change with an explicit sign.
func FormatDelta(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	if pct < 0 {
		return fmt.Sprintf("%.1f%%", pct)
	}
	return "0.0%"
}

// FormatRunway renders months of cash left.
func FormatRunway(r model.Runway) string {
	if r.Infinite {
		return "∞ (profitable)"
	}
	if r.Months >= 120 {
		return "10+ yrs"
	}
	return fmt.Sprintf("%.1f mo", r.Months)
}

// FormatMonth renders a month as "Jan 2025".
func FormatMonth(m model.YearMonth) string {
	if m.IsZero() {
		return "-"
	}
	return m.Start().Format("Jan 2006")
}

// FormatMonthShort renders a month as "Jan 25".
func FormatMonthShort(m model.YearMonth) string {
	if m.IsZero() {
		return "-"
	}
	return m.Start().Format("Jan 06")
}
