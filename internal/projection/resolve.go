package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/theirongolddev/cflow/internal/model"
)

// Validation failures. Assumptions that hit one are skipped, never fatal.
var (
	ErrMissingPercentOf = errors.New("percentage assumption has no percent_of reference")
	ErrMissingStart     = errors.New("assumption has no start month")
	ErrBadCategory      = errors.New("assumption category is not a projection category")
	ErrBadValueType     = errors.New("unknown value type")
	ErrBadFrequency     = errors.New("unknown frequency")
	ErrBadAmount        = errors.New("amount is not a finite number")
)

// SkipError reports why an assumption was left out of a projection.
type SkipError struct {
	AssumptionID string
	Name         string
	Err          error
}

func (e *SkipError) Error() string {
	label := e.Name
	if label == "" {
		label = e.AssumptionID
	}
	return fmt.Sprintf("skipping assumption %q: %v", label, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// References are the values a percentage assumption can be computed against.
type References struct {
	Baseline model.CategoryTotals // magnitudes from ComputeBaseline
	Previous model.CategoryTotals // blended totals of the previous simulated month
	Current  model.CategoryTotals // running totals of the month being resolved
}

// Resolution is the outcome of applying one assumption to one month.
type Resolution struct {
	Applies  bool
	Category model.Category
	Delta    float64 // signed, ready to add to the category total
}

// Validate checks the fields ResolveAssumption depends on.
func Validate(a model.Assumption) error {
	var err error
	switch {
	case !a.Category.Valid():
		err = ErrBadCategory
	case a.Start.IsZero():
		err = ErrMissingStart
	case math.IsNaN(a.Amount) || math.IsInf(a.Amount, 0):
		err = ErrBadAmount
	case a.Frequency != "" && !a.Frequency.Valid():
		err = ErrBadFrequency
	case a.ValueType == model.ValuePercentage && a.PercentOf == "":
		err = ErrMissingPercentOf
	case a.ValueType == model.ValuePercentage && !a.PercentOf.Valid():
		err = fmt.Errorf("%w: %q", ErrMissingPercentOf, a.PercentOf)
	case a.ValueType != model.ValueFixed && a.ValueType != model.ValuePercentage && a.ValueType != "":
		err = ErrBadValueType
	}
	if err != nil {
		return &SkipError{AssumptionID: a.ID, Name: a.Name, Err: err}
	}
	return nil
}

// Fires reports whether a is active in target: inside [Start, End] and on a
// month its frequency selects.
func Fires(a model.Assumption, target model.YearMonth) bool {
	if target.Before(a.Start) {
		return false
	}
	if a.End != nil && !a.End.IsZero() && target.After(*a.End) {
		return false
	}

	since := target.MonthsSince(a.Start)
	switch a.Frequency {
	case model.FreqQuarterly:
		return since%3 == 0
	case model.FreqAnnually:
		return since%12 == 0
	case model.FreqOneTime:
		return since == 0
	default: // monthly, or unset
		return true
	}
}

// ResolveAssumption decides whether a applies to target and computes its
// contribution. project is the caller's project filter; an assumption scoped
// to a different project does not apply. A *SkipError is returned for
// assumptions that fail validation.
func ResolveAssumption(a model.Assumption, target model.YearMonth, project string, refs References) (Resolution, error) {
	if err := Validate(a); err != nil {
		return Resolution{}, err
	}

	res := Resolution{Category: a.Category}
	if a.Project != "" && project != "" && a.Project != project {
		return res, nil
	}
	if !Fires(a, target) {
		return res, nil
	}

	res.Applies = true
	sign := a.Category.Sign()

	if a.ValueType != model.ValuePercentage {
		res.Delta = sign * a.Amount
		return res, nil
	}

	var ref float64
	switch a.PercentOf {
	case model.RefBaseline:
		ref = refs.Baseline.Get(a.Category)
	case model.RefPrevious:
		ref = refs.Previous.Get(a.Category)
	default:
		ref = refs.Current.Get(model.Category(a.PercentOf))
	}
	res.Delta = sign * a.Amount / 100 * math.Abs(ref)
	return res, nil
}
