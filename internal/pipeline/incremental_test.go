package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/cflow/internal/model"
	"github.com/theirongolddev/cflow/internal/store"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "a.csv", 10)
	if err := os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("nothing,useful\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var calls int
	result, err := Load(dir, func(current, total int) { calls++ })
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalFiles != 2 || result.ParsedFiles != 1 || result.FileErrors != 1 {
		t.Fatalf("files total/parsed/errors = %d/%d/%d, want 2/1/1",
			result.TotalFiles, result.ParsedFiles, result.FileErrors)
	}
	if len(result.Entries) != 10 {
		t.Errorf("Entries = %d, want 10", len(result.Entries))
	}
	if calls != 2 {
		t.Errorf("progress calls = %d, want 2", calls)
	}
}

func TestImportWithStore_Incremental(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := writeLedger(t, dir, "a.csv", 10)
	writeLedger(t, dir, "b.csv", 5)

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = st.Close() }()

	first, err := ImportWithStore(ctx, dir, st, ImportOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.Reparsed != 2 || first.Unchanged != 0 {
		t.Fatalf("first import reparsed/unchanged = %d/%d, want 2/0", first.Reparsed, first.Unchanged)
	}

	second, err := ImportWithStore(ctx, dir, st, ImportOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.Reparsed != 0 || second.Unchanged != 2 {
		t.Fatalf("second import reparsed/unchanged = %d/%d, want 0/2", second.Reparsed, second.Unchanged)
	}

	// Shrink a.csv; its old rows must not linger.
	writeLedger(t, dir, "a.csv", 3)
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(a, future, future); err != nil {
		t.Fatal(err)
	}
	third, err := ImportWithStore(ctx, dir, st, ImportOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if third.Reparsed != 1 {
		t.Fatalf("third import reparsed = %d, want 1", third.Reparsed)
	}

	entries, err := st.LoadEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 8 {
		t.Fatalf("stored entries = %d, want 8", len(entries))
	}

	if err := os.Remove(a); err != nil {
		t.Fatal(err)
	}
	pruned, err := ImportWithStore(ctx, dir, st, ImportOptions{Prune: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if pruned.Removed != 1 {
		t.Fatalf("Removed = %d, want 1", pruned.Removed)
	}
	c, _ := st.Counts(ctx)
	if c.Entries != 5 {
		t.Errorf("entries after prune = %d, want 5", c.Entries)
	}
}

func TestImportWithStore_Classify(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	body := "date,category,amount,memo\n" +
		"2025-01-01,revenue,100,invoice paid acme\n" +
		"2025-01-02,revenue,100,invoice paid globex\n" +
		"2025-01-03,opex,50,aws hosting\n" +
		"2025-01-04,opex,50,aws compute\n" +
		"2025-01-05,,75,invoice paid initech\n"
	if err := os.WriteFile(filepath.Join(dir, "x.csv"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = st.Close() }()

	res, err := ImportWithStore(ctx, dir, st, ImportOptions{Classify: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Classified != 1 {
		t.Fatalf("Classified = %d, want 1", res.Classified)
	}
	entries, _ := st.LoadEntries(ctx)
	for _, e := range entries {
		if e.Description == "invoice paid initech" && e.Category != model.CategoryRevenue {
			t.Errorf("classified category = %s, want revenue", e.Category)
		}
	}
}

func TestWithin(t *testing.T) {
	if !within("/data", "/data/x/a.csv") || within("/data", "/other/a.csv") || within("/data", "/data2/a.csv") {
		t.Fatal("within misclassified paths")
	}
}
