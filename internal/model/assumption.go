package model

// DefaultScenario is the scenario ID assumptions without one belong to.
const DefaultScenario = "base"

// ValueType says how an assumption's Amount is interpreted.
type ValueType string

const (
	ValueFixed      ValueType = "fixed"
	ValuePercentage ValueType = "percentage"
)

// Reference names the series a percentage assumption is computed against.
type Reference string

const (
	RefBaseline   Reference = "baseline"
	RefPrevious   Reference = "previous"
	RefRevenue    Reference = Reference(CategoryRevenue)
	RefOpex       Reference = Reference(CategoryOpex)
	RefOverhead   Reference = Reference(CategoryOverhead)
	RefInvestment Reference = Reference(CategoryInvestment)
)

// Valid reports whether r is a known reference series.
func (r Reference) Valid() bool {
	switch r {
	case RefBaseline, RefPrevious, RefRevenue, RefOpex, RefOverhead, RefInvestment:
		return true
	}
	return false
}

// Frequency controls which months an assumption fires in.
type Frequency string

const (
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqAnnually  Frequency = "annually"
	FreqOneTime   Frequency = "one-time"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FreqMonthly, FreqQuarterly, FreqAnnually, FreqOneTime:
		return true
	}
	return false
}

// Assumption is a forward-looking adjustment rule. Amount is a magnitude in
// the category's natural direction; a negative Amount reverses it.
type Assumption struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Category   Category   `json:"category"`
	ScenarioID string     `json:"scenario_id,omitempty"`
	Amount     float64    `json:"amount"`
	ValueType  ValueType  `json:"value_type"`
	PercentOf  Reference  `json:"percent_of,omitempty"`
	Frequency  Frequency  `json:"frequency"`
	Start      YearMonth  `json:"start"`
	End        *YearMonth `json:"end,omitempty"`
	Project    string     `json:"project,omitempty"`
}

// Scenario returns the assumption's scenario, defaulting to DefaultScenario.
func (a Assumption) Scenario() string {
	if a.ScenarioID == "" {
		return DefaultScenario
	}
	return a.ScenarioID
}
