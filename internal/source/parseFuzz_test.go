package source

import (
	"strings"
	"testing"

	"github.com/theirongolddev/cflow/internal/model"
)

func FuzzParseAmount(f *testing.F) {
	for _, s := range []string{"1200.50", "$1,200.50", "(300)", "($1,000.10)", "(-300)", "-45 USD", "", "()", "(", "abc", "1e3"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		d, err := ParseAmount(s)
		if err != nil {
			return
		}
		again, err := ParseAmount(d.String())
		if err != nil {
			t.Fatalf("ParseAmount(%q) rejected its own output %q: %v", s, d.String(), err)
		}
		if !again.Equal(d) {
			t.Errorf("ParseAmount(%q) = %s, reparsed as %s", s, d, again)
		}
	})
}

func FuzzParse(f *testing.F) {
	f.Add("date,category,amount\n2025-01-15,revenue,100\n")
	f.Add("Date,Type,Amount,Kind\n01/20/2025,expense,(15000),budget\n2025-02-30,opex,1\n")
	f.Add("amount,date\n\"$1,000\",2025/03/01\n")
	f.Fuzz(func(t *testing.T, s string) {
		res := Parse(strings.NewReader(s), DiscoveredFile{Path: "fuzz.csv"})
		for _, e := range res.Entries {
			if e.Date.IsZero() {
				t.Errorf("entry %s has a zero date", e.ID)
			}
			if e.ID == "" {
				t.Error("entry with empty ID")
			}
			if e.Category != model.CategoryUnassigned && !e.Category.Valid() {
				t.Errorf("entry %s has category %q", e.ID, e.Category)
			}
		}
	})
}
