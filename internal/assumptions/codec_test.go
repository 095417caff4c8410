package assumptions

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/projection"
)

const sample = `
assumptions:
  - id: hire-1
    name: Senior engineer
    category: opex
    amount: 12000
    start: 2025-07
    end: 2026-06
    project: apollo
  - name: Price increase
    category: revenue
    scenario: bull
    amount: 5
    value_type: percentage
    percent_of: previous
    frequency: quarterly
    start: 2025-04
  - name: Broken
    category: overhead
    amount: 10
    value_type: percentage
    start: 2025-01
  - name: Bad month
    category: opex
    amount: 1
    start: July
`

func TestDecode(t *testing.T) {
	list, warnings, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("assumptions = %d, want 2", len(list))
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %d, want 2: %v", len(warnings), warnings)
	}
	if !errors.Is(warnings[0], projection.ErrMissingPercentOf) {
		t.Errorf("warnings[0] = %v, want missing percent_of", warnings[0])
	}

	hire := list[0]
	if hire.ID != "hire-1" || hire.ValueType != model.ValueFixed || hire.Frequency != model.FreqMonthly {
		t.Errorf("hire defaults = %+v", hire)
	}
	if hire.End == nil || *hire.End != (model.YearMonth{Year: 2026, Month: time.June}) {
		t.Errorf("hire end = %v, want 2026-06", hire.End)
	}

	growth := list[1]
	if growth.ID == "" {
		t.Error("missing ID was not generated")
	}
	if growth.Scenario() != "bull" || growth.PercentOf != model.RefPrevious {
		t.Errorf("growth = %+v", growth)
	}
}

func TestDecode_UnknownField(t *testing.T) {
	_, _, err := Decode(strings.NewReader("assumptions:\n  - nmae: typo\n"))
	if err == nil {
		t.Fatal("Decode accepted an unknown field")
	}
}

func TestWriteReadFile(t *testing.T) {
	list, _, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := WriteFile(path, list); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, warnings, err := ReadFile(path)
	if err != nil || len(warnings) != 0 {
		t.Fatalf("ReadFile: %v %v", err, warnings)
	}
	if len(back) != len(list) || back[1].ID != list[1].ID || back[0].Project != "apollo" {
		t.Fatalf("reread = %+v", back)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, list[:1]); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "scenario:") {
		t.Errorf("base scenario should be omitted:\n%s", buf.String())
	}
}
