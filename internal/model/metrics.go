package model

import "math"

// Runway is months of cash left at the trailing burn rate.
type Runway struct {
	Months   float64 `json:"months"`
	Infinite bool    `json:"infinite"` // not burning: profitable or flat
}

// TrendDeltas compares the second half of the actual months to the first.
// Values are percent changes; 0 when there is nothing to compare.
type TrendDeltas struct {
	RevenuePct float64 `json:"revenue_pct"`
	OpexPct    float64 `json:"opex_pct"`
	NetPct     float64 `json:"net_pct"`
}

// SummaryKPIs holds the headline figures for a date range.
type SummaryKPIs struct {
	Start YearMonth `json:"start"`
	End   YearMonth `json:"end"`

	Months       int `json:"months"`
	ActualMonths int `json:"actual_months"`

	TotalRevenue    float64 `json:"total_revenue"`
	TotalExpenses   float64 `json:"total_expenses"` // opex + overhead magnitude
	TotalInvestment float64 `json:"total_investment"`
	NetCash         float64 `json:"net_cash"`

	GrossMarginPct    float64 `json:"gross_margin_pct"`
	BudgetVariancePct float64 `json:"budget_variance_pct"`

	Trend TrendDeltas `json:"trend"`

	CurrentBalance float64 `json:"current_balance"`
	EndingBalance  float64 `json:"ending_balance"`
	MonthlyBurn    float64 `json:"monthly_burn"`
	Runway         Runway  `json:"runway"`
}

// HealthLabel buckets a project health score.
type HealthLabel string

const (
	HealthGood    HealthLabel = "healthy"
	HealthWatch   HealthLabel = "watch"
	HealthAtRisk  HealthLabel = "at-risk"
	HealthUnknown HealthLabel = "no-data"
)

// ProjectStats holds profitability metrics for one project or client.
// Money fields are magnitudes; margins may be negative.
type ProjectStats struct {
	Name    string
	Related []string // clients of a project, or projects of a client

	Revenue           float64
	DirectCost        float64 // magnitude of opex/overhead tagged to the project
	Investment        float64
	AllocatedOverhead float64
	BudgetCost        float64 // magnitude of budgeted costs tagged to the project

	GrossMargin    float64
	GrossMarginPct float64
	NetMargin      float64
	NetMarginPct   float64
	RevenueShare   float64 // percent of total project revenue

	RevenueTrendPct float64 // second half vs first half of active months
	ActiveMonths    int

	HealthScore int
	Health      HealthLabel
}

// MonthlyCategoryStats holds actual/budget sums for one calendar month.
type MonthlyCategoryStats struct {
	Month      YearMonth
	Actual     CategoryTotals
	Budget     CategoryTotals
	Unassigned float64
	Entries    int
}

// PctChange returns (curr-prev)/|prev|*100, or 0 when prev is 0.
func PctChange(prev, curr float64) float64 {
	if prev == 0 {
		return 0
	}
	return (curr - prev) / math.Abs(prev) * 100
}
