package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/cflow/internal/model"
)

// writeCSV creates a temp CSV file and returns a DiscoveredFile for it.
func writeCSV(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Name: "ledger"}
}

func TestParseFile_Basic(t *testing.T) {
	df := writeCSV(t,
		`Date,Category,Amount,Kind,Project,Client,Memo`,
		`2025-01-15,revenue,"$45,000.00",actual,apollo,Acme,Invoice 1001`,
		`01/20/2025,expense,(15000),,apollo,,AWS`,
		`2025-02-01,capex,2500,budget,,,Laptops`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.RowErrors) != 0 {
		t.Fatalf("RowErrors = %v, want none", result.RowErrors)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("Entries = %d, want 3", len(result.Entries))
	}

	rev := result.Entries[0]
	if rev.Category != model.CategoryRevenue || rev.Amount != 45000 {
		t.Errorf("entry 0 = %s %.2f, want revenue 45000", rev.Category, rev.Amount)
	}
	if rev.Project != "apollo" || rev.Client != "Acme" || rev.Description != "Invoice 1001" {
		t.Errorf("entry 0 tags = %q/%q/%q", rev.Project, rev.Client, rev.Description)
	}
	if rev.Source != df.Path {
		t.Errorf("Source = %q, want %q", rev.Source, df.Path)
	}

	opex := result.Entries[1]
	if opex.Category != model.CategoryOpex || opex.Amount != -15000 {
		t.Errorf("entry 1 = %s %.2f, want opex -15000", opex.Category, opex.Amount)
	}
	wantDate := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	if !opex.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", opex.Date, wantDate)
	}
	if opex.Kind != model.KindActual {
		t.Errorf("Kind = %s, want actual", opex.Kind)
	}

	inv := result.Entries[2]
	if inv.Category != model.CategoryInvestment || inv.Kind != model.KindBudget {
		t.Errorf("entry 2 = %s/%s, want investment/budget", inv.Category, inv.Kind)
	}
}

func TestParseFile_RowErrors(t *testing.T) {
	df := writeCSV(t,
		`date,amount,category`,
		`2025-01-01,100,revenue`,
		`yesterday,100,revenue`,
		`2025-01-03,lots,revenue`,
		`2025-01-04,-20,mystery`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(result.Entries))
	}
	if len(result.RowErrors) != 2 {
		t.Fatalf("RowErrors = %d, want 2", len(result.RowErrors))
	}
	if !errors.Is(result.RowErrors[0], ErrBadDate) || result.RowErrors[0].Line != 3 {
		t.Errorf("RowErrors[0] = %v, want bad date on line 3", result.RowErrors[0])
	}
	if !errors.Is(result.RowErrors[1], ErrBadAmount) {
		t.Errorf("RowErrors[1] = %v, want bad amount", result.RowErrors[1])
	}
	if result.Entries[1].Category != model.CategoryUnassigned {
		t.Errorf("unknown category = %s, want unassigned", result.Entries[1].Category)
	}
}

func TestParseFile_MissingColumn(t *testing.T) {
	df := writeCSV(t, `date,category`, `2025-01-01,revenue`)
	result := ParseFile(df)
	if !errors.Is(result.Err, ErrMissingColumn) {
		t.Fatalf("Err = %v, want ErrMissingColumn", result.Err)
	}

	empty := Parse(strings.NewReader(""), DiscoveredFile{})
	if !errors.Is(empty.Err, ErrNoHeader) {
		t.Fatalf("Err = %v, want ErrNoHeader", empty.Err)
	}
}

func TestParse_DeterministicIDs(t *testing.T) {
	body := "date,amount\n2025-01-01,10\n2025-01-02,20\n"
	df := DiscoveredFile{Path: "/data/a.csv", Project: "apollo"}

	a := Parse(strings.NewReader(body), df)
	b := Parse(strings.NewReader(body), df)
	if a.Entries[0].ID != b.Entries[0].ID {
		t.Fatalf("IDs differ across parses: %s vs %s", a.Entries[0].ID, b.Entries[0].ID)
	}
	if a.Entries[0].ID == a.Entries[1].ID {
		t.Fatal("distinct rows share an ID")
	}
	if a.Entries[0].Project != "apollo" {
		t.Errorf("Project = %q, want directory default apollo", a.Entries[0].Project)
	}

	withID := Parse(strings.NewReader("id,date,amount\ntx-9,2025-01-01,10\n"), df)
	if withID.Entries[0].ID != "tx-9" {
		t.Errorf("ID = %q, want tx-9 from column", withID.Entries[0].ID)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1200.50", "1200.5", true},
		{"$1,200.50", "1200.5", true},
		{"(300)", "-300", true},
		{"($1,000.10)", "-1000.1", true},
		{"(-300)", "", false},
		{"(+300)", "", false},
		{"()", "", false},
		{"(", "", false},
		{"-45 USD", "-45", true},
		{"  7 ", "7", true},
		{"", "", false},
		{"$", "", false},
		{"abc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseAmount(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			}
			if tt.ok && got.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCategory_Synonyms(t *testing.T) {
	tests := map[string]model.Category{
		"Revenue":   model.CategoryRevenue,
		"income":    model.CategoryRevenue,
		"COGS":      model.CategoryOpex,
		"G&A":       model.CategoryOverhead,
		"capex":     model.CategoryInvestment,
		"":          model.CategoryUnassigned,
		"transfers": model.CategoryUnassigned,
	}
	for in, want := range tests {
		if got := ParseCategory(in); got != want {
			t.Errorf("ParseCategory(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(rel string) {
		t.Helper()
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("date,amount\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("company.csv")
	mustWrite("apollo/jan.CSV")
	mustWrite("zephyr/feb.csv")
	mustWrite("notes.txt")
	mustWrite(".hidden/x.csv")

	files, err := ScanDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %d, want 3", len(files))
	}
	if n := CountProjects(files); n != 2 {
		t.Errorf("CountProjects = %d, want 2", n)
	}

	single, err := ScanDir(filepath.Join(root, "company.csv"))
	if err != nil || len(single) != 1 || single[0].Name != "company" {
		t.Fatalf("single file scan = %v, %v", single, err)
	}

	missing, err := ScanDir(filepath.Join(root, "nope"))
	if err != nil || missing != nil {
		t.Fatalf("missing dir = %v, %v; want nil, nil", missing, err)
	}
}

func TestClassifier(t *testing.T) {
	train := []model.LedgerEntry{
		{Category: model.CategoryRevenue, Description: "Invoice payment Acme consulting"},
		{Category: model.CategoryRevenue, Description: "Invoice payment Globex retainer"},
		{Category: model.CategoryOpex, Description: "AWS hosting bill"},
		{Category: model.CategoryOpex, Description: "AWS compute bill"},
		{Category: model.CategoryOverhead, Description: "Office rent"},
	}
	c := TrainClassifier(train)
	if c == nil {
		t.Fatal("TrainClassifier returned nil with three trained categories")
	}

	if got, ok := c.Suggest("aws storage bill"); !ok || got != model.CategoryOpex {
		t.Errorf("Suggest(aws) = %s, %v; want opex", got, ok)
	}
	if _, ok := c.Suggest("zzz qqq"); ok {
		t.Error("Suggest(unknown words) should not be confident")
	}

	entries := []model.LedgerEntry{
		{Category: model.CategoryUnassigned, Description: "Invoice payment Initech"},
		{Category: model.CategoryOpex, Description: "Invoice payment"},
	}
	if n := c.Apply(entries); n != 1 {
		t.Fatalf("Apply changed %d, want 1", n)
	}
	if entries[0].Category != model.CategoryRevenue {
		t.Errorf("entries[0] = %s, want revenue", entries[0].Category)
	}

	if TrainClassifier(train[:2]) != nil {
		t.Error("single-category training should yield nil")
	}
}
