package model

// DataType tags a month as on/before the actuals cutoff or after it.
type DataType string

const (
	DataActual    DataType = "actual"
	DataProjected DataType = "projected"
)

// Triple holds the actual, budget, and projected legs of one figure.
// Projected is the blended value: actual, else modeled, else budget.
type Triple struct {
	Actual    float64 `json:"actual"`
	Budget    float64 `json:"budget"`
	Projected float64 `json:"projected"`
}

// Plus returns the leg-wise sum of t and o.
func (t Triple) Plus(o Triple) Triple {
	return Triple{
		Actual:    t.Actual + o.Actual,
		Budget:    t.Budget + o.Budget,
		Projected: t.Projected + o.Projected,
	}
}

// MonthlyProjection is one month of engine output.
type MonthlyProjection struct {
	Month          YearMonth `json:"month"`
	DataType       DataType  `json:"data_type"`
	Revenue        Triple    `json:"revenue"`
	Opex           Triple    `json:"opex"`
	Overhead       Triple    `json:"overhead"`
	Investment     Triple    `json:"investment"`
	NetCash        Triple    `json:"net_cash"`
	RunningBalance Triple    `json:"running_balance"`
	Unassigned     float64   `json:"unassigned,omitempty"`
}

// Category returns the triple for c.
func (m MonthlyProjection) Category(c Category) Triple {
	switch c {
	case CategoryRevenue:
		return m.Revenue
	case CategoryOpex:
		return m.Opex
	case CategoryOverhead:
		return m.Overhead
	case CategoryInvestment:
		return m.Investment
	}
	return Triple{}
}

// SetCategory stores tr under c.
func (m *MonthlyProjection) SetCategory(c Category, tr Triple) {
	switch c {
	case CategoryRevenue:
		m.Revenue = tr
	case CategoryOpex:
		m.Opex = tr
	case CategoryOverhead:
		m.Overhead = tr
	case CategoryInvestment:
		m.Investment = tr
	}
}

// Projected returns the blended per-category totals for the month.
func (m MonthlyProjection) Projected() CategoryTotals {
	return CategoryTotals{
		Revenue:    m.Revenue.Projected,
		Opex:       m.Opex.Projected,
		Overhead:   m.Overhead.Projected,
		Investment: m.Investment.Projected,
	}
}
