package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/cflow/internal/model"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{42.5, "$42.50"},
		{1234567.8, "$1,234,568"},
		{-80000, "-$80,000"},
		{-3.25, "-$3.25"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatUSDCompact(t *testing.T) {
	tests := map[float64]string{
		999:        "$999",
		1234:       "$1.2K",
		-2_500_000: "-$2.5M",
		3e9:        "$3.0B",
	}
	for in, want := range tests {
		if got := FormatUSDCompact(in); got != want {
			t.Errorf("FormatUSDCompact(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDeltaAndRunway(t *testing.T) {
	if got := FormatDelta(12.34); got != "+12.3%" {
		t.Errorf("FormatDelta(12.34) = %q", got)
	}
	if got := FormatDelta(-4); got != "-4.0%" {
		t.Errorf("FormatDelta(-4) = %q", got)
	}
	if got := FormatDelta(0); got != "0.0%" {
		t.Errorf("FormatDelta(0) = %q", got)
	}
	if got := FormatRunway(model.Runway{Infinite: true}); !strings.Contains(got, "profitable") {
		t.Errorf("FormatRunway(infinite) = %q", got)
	}
	if got := FormatRunway(model.Runway{Months: 7.25}); got != "7.2 mo" && got != "7.3 mo" {
		t.Errorf("FormatRunway(7.25) = %q", got)
	}
}

func TestFormatMonth(t *testing.T) {
	m := model.YearMonth{Year: 2025, Month: time.March}
	if got := FormatMonth(m); got != "Mar 2025" {
		t.Errorf("FormatMonth = %q", got)
	}
	if got := FormatMonthShort(m); got != "Mar 25" {
		t.Errorf("FormatMonthShort = %q", got)
	}
	if got := FormatMonth(model.YearMonth{}); got != "-" {
		t.Errorf("FormatMonth(zero) = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]float64{-10, 0, 10}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Errorf("RenderSparkline = %q", string(got))
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty sparkline should be empty")
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Months",
		Headers: []string{"Month", "Net"},
		Rows:    [][]string{{"Jan 2025", "$30,000"}, {"---"}, {"Total", "$30,000"}},
	})
	if !strings.Contains(out, "Months") || !strings.Contains(out, "Jan 2025") {
		t.Fatalf("table missing content:\n%s", out)
	}
	if n := strings.Count(out, "\n"); n != 8 {
		t.Errorf("table lines = %d, want 8", n)
	}
}
