package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/cflow/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	widths := LayoutRow(10, 3)
	if len(widths) != 3 || widths[0] != 4 || widths[1] != 3 || widths[2] != 3 {
		t.Fatalf("LayoutRow(10, 3) = %v, want [4 3 3]", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowPadsShortCards(t *testing.T) {
	theme.SetActive("ledger-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no ANSI codes; padding would render unstyled", i)
		}
	}
	if w := lipgloss.Width(lines[0]); w != 44 {
		t.Errorf("row width = %d, want 44", w)
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Balance", Value: "$12k", Tone: ToneGain},
		{Label: "Runway", Value: "8.0 mo", Delta: "burn $1.5k/mo", Tone: ToneWarn},
		{Label: "Margin", Value: "-4.0%", Tone: ToneLoss},
	}, 61)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 61 {
			t.Errorf("line %d width = %d, want 61", i, w)
		}
	}
}

func TestToneFor(t *testing.T) {
	if ToneFor(1) != ToneGain || ToneFor(-1) != ToneLoss || ToneFor(0) != ToneNeutral {
		t.Fatal("ToneFor sign mapping is wrong")
	}
}

func TestSparklineHandlesNegatives(t *testing.T) {
	got := stripANSI(Sparkline([]float64{-10, 0, 10}, theme.Active.Accent))
	if got != "▁▄█" {
		t.Fatalf("Sparkline = %q, want %q", got, "▁▄█")
	}
	flat := stripANSI(Sparkline([]float64{5, 5}, theme.Active.Accent))
	if flat != "▁▁" {
		t.Fatalf("flat Sparkline = %q, want %q", flat, "▁▁")
	}
}

func TestSignedBarsWidth(t *testing.T) {
	out := SignedBars([]Bar{
		{Label: "Jan", Value: 100, Text: "$100"},
		{Label: "Feb", Value: -50, Text: "-$50", Projected: true},
	}, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lipgloss.Width(lines[0]) != lipgloss.Width(lines[1]) {
		t.Errorf("bar rows differ in width: %d vs %d", lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
	}
	if !strings.Contains(stripANSI(lines[1]), "▒") {
		t.Error("projected row should use the shaded fill")
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)
		want := len(Tabs) - 1 // separators
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		if got := lipgloss.Width(bar); got != want {
			t.Errorf("active=%d: bar width = %d, want %d", active, got, want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('x'); got != TabSettings {
		t.Errorf("TabIdxByKey('x') = %d, want %d", got, TabSettings)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
