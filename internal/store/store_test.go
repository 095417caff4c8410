package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/cflow/internal/model"
)

func openTemp(t *testing.T) *Local {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "cflow.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestReplaceSource(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	first := []model.LedgerEntry{
		{ID: "a", Date: day, Category: model.CategoryRevenue, Amount: 100, Kind: model.KindActual, Source: "x.csv", Project: "apollo"},
		{ID: "b", Date: day, Category: model.CategoryOpex, Amount: -40, Kind: model.KindBudget, Source: "x.csv"},
	}
	if err := s.ReplaceSource(ctx, "x.csv", first, FileInfo{MtimeNs: 1, SizeBytes: 10}); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}
	other := []model.LedgerEntry{
		{ID: "c", Date: day, Category: model.CategoryRevenue, Amount: 5, Source: "y.csv"},
	}
	if err := s.ReplaceSource(ctx, "y.csv", other, FileInfo{MtimeNs: 2, SizeBytes: 20}); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}

	second := first[:1]
	if err := s.ReplaceSource(ctx, "x.csv", second, FileInfo{MtimeNs: 3, SizeBytes: 30}); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}

	entries, err := s.LoadEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ID != "a" || !entries[0].Date.Equal(day) || entries[0].Project != "apollo" {
		t.Errorf("entries[0] = %+v", entries[0])
	}

	tracked, err := s.TrackedFiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tracked["x.csv"] != (FileInfo{MtimeNs: 3, SizeBytes: 30}) {
		t.Errorf("tracked x.csv = %+v, want {3 30}", tracked["x.csv"])
	}

	if err := s.DeleteSource(ctx, "y.csv"); err != nil {
		t.Fatal(err)
	}
	c, err := s.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if c.Entries != 1 || c.Files != 1 {
		t.Errorf("Counts = %+v, want 1 entry 1 file", c)
	}
}

func TestEntryDelete(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	e := model.LedgerEntry{ID: "z", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Category: model.CategoryOverhead, Amount: 9}
	if err := s.SaveEntries(ctx, []model.LedgerEntry{e}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntry(ctx, "z"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if err := s.DeleteEntry(ctx, "z"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteEntry = %v, want ErrNotFound", err)
	}
}

func TestAssumptionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	end := model.YearMonth{Year: 2026, Month: time.June}
	a := model.Assumption{
		ID: "hire", Name: "New hire", Category: model.CategoryOpex, Amount: 8000,
		ValueType: model.ValueFixed, Frequency: model.FreqMonthly,
		Start: model.YearMonth{Year: 2025, Month: time.July}, End: &end, Project: "apollo",
	}
	b := model.Assumption{
		ID: "growth", Category: model.CategoryRevenue, ScenarioID: "bull", Amount: 5,
		ValueType: model.ValuePercentage, PercentOf: model.RefPrevious, Frequency: model.FreqQuarterly,
		Start: model.YearMonth{Year: 2025, Month: time.January},
	}
	for _, x := range []model.Assumption{a, b} {
		if err := s.SaveAssumption(ctx, x); err != nil {
			t.Fatalf("SaveAssumption(%s): %v", x.ID, err)
		}
	}

	a.Amount = 9000
	if err := s.SaveAssumption(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadAssumptions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("assumptions = %d, want 2", len(got))
	}
	if got[0].ID != "hire" {
		t.Fatalf("order = %s first, want hire (creation order kept on update)", got[0].ID)
	}
	if got[0].Amount != 9000 || got[0].End == nil || *got[0].End != end || got[0].Scenario() != model.DefaultScenario {
		t.Errorf("hire = %+v", got[0])
	}
	if got[1].PercentOf != model.RefPrevious || got[1].End != nil || got[1].ScenarioID != "bull" {
		t.Errorf("growth = %+v", got[1])
	}

	if err := s.DeleteAssumption(ctx, "growth"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAssumption(ctx, "growth"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteAssumption = %v, want ErrNotFound", err)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), Options{Driver: "oracle"}); err == nil {
		t.Fatal("New accepted an unknown driver")
	}
	if _, err := New(context.Background(), Options{Driver: DriverPostgres}); err == nil {
		t.Fatal("New accepted postgres without a URL")
	}
}
