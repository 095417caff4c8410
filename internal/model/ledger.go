// Package model defines domain types for cflow ledgers, assumptions, and projections.
package model

import (
	"math"
	"strings"
	"time"
)

// Category is the ledger bucket an entry or assumption belongs to.
type Category string

// Recognized categories. Unassigned rows are kept for display but never
// enter projection math.
const (
	CategoryRevenue    Category = "revenue"
	CategoryOpex       Category = "opex"
	CategoryOverhead   Category = "overhead"
	CategoryInvestment Category = "investment"
	CategoryUnassigned Category = "unassigned"
)

// Categories lists the projection categories in resolution order.
var Categories = []Category{CategoryRevenue, CategoryOpex, CategoryOverhead, CategoryInvestment}

// ParseCategory normalizes a raw category label. Unknown labels map to
// CategoryUnassigned.
func ParseCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c.Valid() {
		return c
	}
	return CategoryUnassigned
}

// Valid reports whether c is one of the four projection categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRevenue, CategoryOpex, CategoryOverhead, CategoryInvestment:
		return true
	}
	return false
}

// Sign is +1 for revenue and -1 for the expense categories.
func (c Category) Sign() float64 {
	if c == CategoryRevenue {
		return 1
	}
	return -1
}

// Normalize applies the category's sign convention to a raw amount.
// Storage may carry expenses as positive or negative; the magnitude wins.
// Apply it to a summed total, not to single entries, so refunds net out.
func (c Category) Normalize(amount float64) float64 {
	return c.Sign() * math.Abs(amount)
}

// Kind distinguishes real transactions from manually entered expectations.
type Kind string

const (
	KindActual Kind = "actual"
	KindBudget Kind = "budget"
)

// ParseKind maps a raw label to a Kind, defaulting to KindActual.
func ParseKind(raw string) Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "budget", "budgeted", "plan", "planned", "forecast":
		return KindBudget
	default:
		return KindActual
	}
}

// LedgerEntry is a single dated financial movement.
type LedgerEntry struct {
	ID          string
	Date        time.Time
	Category    Category
	Amount      float64
	Kind        Kind
	Project     string // empty = company-wide
	Client      string
	Description string
	Source      string // file the entry was imported from
}

// Month returns the calendar month the entry falls in.
func (e LedgerEntry) Month() YearMonth {
	return MonthOf(e.Date)
}

// Valid reports whether the entry can take part in aggregation.
func (e LedgerEntry) Valid() bool {
	return !e.Date.IsZero() && !math.IsNaN(e.Amount) && !math.IsInf(e.Amount, 0)
}

// CategoryTotals holds one value per projection category.
type CategoryTotals struct {
	Revenue    float64 `json:"revenue"`
	Opex       float64 `json:"opex"`
	Overhead   float64 `json:"overhead"`
	Investment float64 `json:"investment"`
}

// Get returns the value for c, or 0 for unassigned/unknown categories.
func (t CategoryTotals) Get(c Category) float64 {
	switch c {
	case CategoryRevenue:
		return t.Revenue
	case CategoryOpex:
		return t.Opex
	case CategoryOverhead:
		return t.Overhead
	case CategoryInvestment:
		return t.Investment
	}
	return 0
}

// Set stores v under c. Unknown categories are ignored.
func (t *CategoryTotals) Set(c Category, v float64) {
	switch c {
	case CategoryRevenue:
		t.Revenue = v
	case CategoryOpex:
		t.Opex = v
	case CategoryOverhead:
		t.Overhead = v
	case CategoryInvestment:
		t.Investment = v
	}
}

// Add accumulates v into c.
func (t *CategoryTotals) Add(c Category, v float64) {
	t.Set(c, t.Get(c)+v)
}

// Normalized applies each category's sign convention to raw signed sums.
func (t CategoryTotals) Normalized() CategoryTotals {
	var out CategoryTotals
	for _, c := range Categories {
		out.Set(c, c.Normalize(t.Get(c)))
	}
	return out
}

// Magnitudes returns the absolute value of each raw signed sum.
func (t CategoryTotals) Magnitudes() CategoryTotals {
	var out CategoryTotals
	for _, c := range Categories {
		out.Set(c, math.Abs(t.Get(c)))
	}
	return out
}

// Sum is the pure sum of all four categories.
func (t CategoryTotals) Sum() float64 {
	return t.Revenue + t.Opex + t.Overhead + t.Investment
}
