package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/cflow/internal/config"
	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/projection"
	"github.com/theirongolddev/cflow/internal/store"

	"github.com/spf13/cobra"
)

// settingsCmd builds a throwaway command wired to the package flag vars.
func settingsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	flagHorizon, flagBaseline, flagBalance = 1, 6, 0
	flagScenario, flagProject, flagAsOf = "", "", ""

	c := &cobra.Command{Use: "test"}
	f := c.Flags()
	f.IntVarP(&flagHorizon, "horizon", "H", 1, "")
	f.IntVarP(&flagBaseline, "baseline", "b", 6, "")
	f.Float64Var(&flagBalance, "balance", 0, "")
	f.StringVarP(&flagScenario, "scenario", "s", "", "")
	f.StringVarP(&flagProject, "project", "p", "", "")
	f.StringVar(&flagAsOf, "as-of", "", "")
	if err := c.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestResolveSettings_ConfigDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.HorizonYears = 3
	cfg.General.BaselineMonths = 12
	cfg.General.BeginningBalance = 5000
	cfg.General.Scenario = "lean"

	s, err := resolveSettings(settingsCmd(t, "--as-of", "2025-03"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.HorizonMonths != 36 {
		t.Errorf("HorizonMonths = %d, want 36", s.HorizonMonths)
	}
	if s.BaselineMonths != 12 || s.BeginningBalance != 5000 || s.Scenario != "lean" {
		t.Errorf("settings = %+v, want config values", s)
	}
	if got := model.MonthOf(s.AsOf); got != (model.YearMonth{Year: 2025, Month: time.March}) {
		t.Errorf("AsOf month = %v, want 2025-03", got)
	}
}

func TestResolveSettings_FlagsOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	s, err := resolveSettings(settingsCmd(t, "-H", "2", "-b", "0", "--balance=-250", "-s", "growth", "-p", "alpha"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.HorizonMonths != 24 || s.BaselineMonths != 0 || s.BeginningBalance != -250 {
		t.Errorf("settings = %+v", s)
	}
	if s.Scenario != "growth" || s.Project != "alpha" {
		t.Errorf("Scenario/Project = %q/%q, want growth/alpha", s.Scenario, s.Project)
	}
}

func TestResolveSettings_Rejects(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := [][]string{
		{"-H", "5"},
		{"-b", "4"},
		{"--as-of", "March"},
	}
	for _, args := range tests {
		if _, err := resolveSettings(settingsCmd(t, args...), cfg); err == nil {
			t.Errorf("resolveSettings(%v) succeeded, want error", args)
		}
	}
}

func TestMatchID(t *testing.T) {
	ids := []string{"a1b2c3", "a1ffff", "b00000"}
	self := func(s string) string { return s }

	tests := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{"a1b2c3", "a1b2c3", false},
		{"b0", "b00000", false},
		{"a1", "", true}, // ambiguous
		{"zz", "", true},
	}
	for _, tt := range tests {
		got, err := matchID(tt.prefix, ids, self)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("matchID(%q) = %q, %v; want %q, err=%v", tt.prefix, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestKeepRelatedTo(t *testing.T) {
	stats := []model.ProjectStats{
		{Name: "acme", Related: []string{"alpha", "beta"}},
		{Name: "globex", Related: []string{"gamma"}},
		{Name: "alpha"},
	}
	got := keepRelatedTo(stats, "Alpha")
	var names []string
	for _, ps := range got {
		names = append(names, ps.Name)
	}
	if want := []string{"acme", "alpha"}; !reflect.DeepEqual(names, want) {
		t.Errorf("keepRelatedTo = %v, want %v", names, want)
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", "x", "--detach=true"})
	if want := []string{"daemon", "--addr", "x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestPIDFileClaimRelease(t *testing.T) {
	pf := pidFile(filepath.Join(t.TempDir(), "run", "cflowd.pid"))
	want := daemonRuntimeState{PID: 4242, Addr: "127.0.0.1:9999", Ledger: "test.db"}
	if err := pf.claim(want); err != nil {
		t.Fatal(err)
	}

	pid, err := pf.pid()
	if err != nil {
		t.Fatal(err)
	}
	if pid != 4242 {
		t.Errorf("pid = %d, want 4242", pid)
	}
	st, err := pf.state()
	if err != nil {
		t.Fatal(err)
	}
	if st.Addr != want.Addr || st.Ledger != want.Ledger {
		t.Errorf("state = %+v, want %+v", st, want)
	}

	pf.release()
	if _, err := pf.pid(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("pid after release: err = %v, want not exist", err)
	}
	if err := pf.ensureFree(); err != nil {
		t.Errorf("ensureFree on missing file: %v", err)
	}
}

func TestParseDollars(t *testing.T) {
	tests := map[string]float64{"": 0, "$1,250.50": 1250.5, "-300": -300}
	for in, want := range tests {
		got, err := parseDollars(in)
		if err != nil || got != want {
			t.Errorf("parseDollars(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parseDollars("ten"); err == nil {
		t.Error("parseDollars(ten) succeeded, want error")
	}
}

// captureStdout returns what fn printed to os.Stdout.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := os.Stdout
	os.Stdout = w
	done := make(chan []byte)
	go func() {
		b, _ := io.ReadAll(r)
		done <- b
	}()
	runErr := fn()
	os.Stdout = old
	_ = w.Close()
	out := <-done
	if runErr != nil {
		t.Fatal(runErr)
	}
	return string(out)
}

func TestSummaryReportsSkippedWhenQuiet(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	d := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	if err := st.SaveEntries(ctx, []model.LedgerEntry{
		{ID: "e1", Date: d, Category: model.CategoryRevenue, Amount: 1000, Kind: model.KindActual},
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveAssumption(ctx, model.Assumption{
		ID: "a1", Name: "broken", Category: model.CategoryOpex, Amount: 10,
		ValueType: model.ValuePercentage, Frequency: model.FreqMonthly,
		Start: model.YearMonth{Year: 2025, Month: time.January},
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	c := settingsCmd(t, "--as-of", "2025-01")
	c.SetContext(ctx)
	flagDB, flagQuiet = dbPath, true
	t.Cleanup(func() { flagDB, flagQuiet = "", false })

	out := captureStdout(t, func() error { return runSummary(c, nil) })
	if !strings.Contains(out, "Skipped 0 malformed entries and 1 invalid assumptions") {
		t.Errorf("summary output does not report the skipped assumption:\n%s", out)
	}
}

func TestSkippedNoticeEmptyWhenClean(t *testing.T) {
	if got := skippedNotice(projection.Report{}); got != "" {
		t.Errorf("skippedNotice = %q, want empty", got)
	}
}
