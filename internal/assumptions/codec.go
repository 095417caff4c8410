// Package assumptions reads and writes assumption sets as YAML files.
package assumptions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"

	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/projection"
)

// File is the on-disk layout.
type File struct {
	Assumptions []Record `yaml:"assumptions"`
}

// Record is one assumption as written by hand. Months are YYYY-MM strings.
type Record struct {
	ID        string  `yaml:"id,omitempty"`
	Name      string  `yaml:"name"`
	Category  string  `yaml:"category"`
	Scenario  string  `yaml:"scenario,omitempty"`
	Amount    float64 `yaml:"amount"`
	ValueType string  `yaml:"value_type,omitempty"`
	PercentOf string  `yaml:"percent_of,omitempty"`
	Frequency string  `yaml:"frequency,omitempty"`
	Start     string  `yaml:"start"`
	End       string  `yaml:"end,omitempty"`
	Project   string  `yaml:"project,omitempty"`
}

// Decode parses a YAML assumption file. Records without an ID get a fresh
// UUID. Records that fail validation are returned as warnings and left out.
func Decode(r io.Reader) ([]model.Assumption, []error, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parsing assumptions: %w", err)
	}

	var (
		out      []model.Assumption
		warnings []error
	)
	for i, rec := range f.Assumptions {
		a, err := rec.toModel()
		if err == nil {
			err = projection.Validate(a)
		}
		if err != nil {
			warnings = append(warnings, fmt.Errorf("assumption #%d: %w", i+1, err))
			continue
		}
		out = append(out, a)
	}
	return out, warnings, nil
}

// Encode writes assumptions in the same layout Decode reads.
func Encode(w io.Writer, list []model.Assumption) error {
	f := File{Assumptions: make([]Record, 0, len(list))}
	for _, a := range list {
		f.Assumptions = append(f.Assumptions, FromModel(a))
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadFile decodes the YAML file at path.
func ReadFile(path string) ([]model.Assumption, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// WriteFile encodes list to path, replacing any existing file.
func WriteFile(path string, list []model.Assumption) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, list); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// FromModel converts an assumption to its file record.
func FromModel(a model.Assumption) Record {
	rec := Record{
		ID:        a.ID,
		Name:      a.Name,
		Category:  string(a.Category),
		Amount:    a.Amount,
		ValueType: string(a.ValueType),
		PercentOf: string(a.PercentOf),
		Frequency: string(a.Frequency),
		Start:     a.Start.String(),
		Project:   a.Project,
	}
	if a.Scenario() != model.DefaultScenario {
		rec.Scenario = a.ScenarioID
	}
	if a.End != nil && !a.End.IsZero() {
		rec.End = a.End.String()
	}
	return rec
}

func (r Record) toModel() (model.Assumption, error) {
	a := model.Assumption{
		ID:         r.ID,
		Name:       r.Name,
		Category:   model.Category(strings.ToLower(strings.TrimSpace(r.Category))),
		ScenarioID: strings.TrimSpace(r.Scenario),
		Amount:     r.Amount,
		ValueType:  model.ValueType(strings.ToLower(r.ValueType)),
		PercentOf:  model.Reference(strings.ToLower(r.PercentOf)),
		Frequency:  model.Frequency(strings.ToLower(r.Frequency)),
		Project:    r.Project,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.ValueType == "" {
		a.ValueType = model.ValueFixed
	}
	if a.Frequency == "" {
		a.Frequency = model.FreqMonthly
	}
	if r.Start != "" {
		start, err := model.ParseYearMonth(r.Start)
		if err != nil {
			return a, fmt.Errorf("start: %w", err)
		}
		a.Start = start
	}
	if r.End != "" {
		end, err := model.ParseYearMonth(r.End)
		if err != nil {
			return a, fmt.Errorf("end: %w", err)
		}
		a.End = &end
	}
	return a, nil
}
