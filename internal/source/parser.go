// Package source discovers and parses CSV ledger exports.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cflow/internal/model"
)

// Header-level failures. Row-level failures are collected in ParseResult.RowErrors.
var (
	ErrNoHeader      = errors.New("csv has no header row")
	ErrMissingColumn = errors.New("required column missing")
	ErrBadDate       = errors.New("unrecognized date")
	ErrBadAmount     = errors.New("unrecognized amount")
)

// dateLayouts are tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"1/2/2006",
	time.RFC3339,
}

// columnAliases maps lowercase header names to canonical columns.
var columnAliases = map[string]string{
	"date":             "date",
	"transaction date": "date",
	"posted":           "date",
	"category":         "category",
	"type":             "category",
	"amount":           "amount",
	"value":            "amount",
	"kind":             "kind",
	"status":           "kind",
	"project":          "project",
	"client":           "client",
	"customer":         "client",
	"description":      "description",
	"memo":             "description",
	"payee":            "description",
	"id":               "id",
}

// categorySynonyms extends model.ParseCategory with common bookkeeping labels.
var categorySynonyms = map[string]model.Category{
	"income":    model.CategoryRevenue,
	"sales":     model.CategoryRevenue,
	"expense":   model.CategoryOpex,
	"expenses":  model.CategoryOpex,
	"cogs":      model.CategoryOpex,
	"operating": model.CategoryOpex,
	"g&a":       model.CategoryOverhead,
	"admin":     model.CategoryOverhead,
	"rent":      model.CategoryOverhead,
	"capex":     model.CategoryInvestment,
	"investing": model.CategoryInvestment,
	"equipment": model.CategoryInvestment,
}

// ParseFile reads one CSV export. Rows that cannot be parsed are skipped and
// reported in RowErrors; only an unreadable file or header sets Err.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	return Parse(f, df)
}

// Parse reads CSV rows from r. df supplies the default project and the path
// that deterministic entry IDs are derived from.
func Parse(r io.Reader, df DiscoveredFile) ParseResult {
	result := ParseResult{File: df}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		result.Err = ErrNoHeader
		return result
	}
	if err != nil {
		result.Err = fmt.Errorf("reading header: %w", err)
		return result
	}

	cols := mapColumns(header)
	for _, required := range []string{"date", "amount"} {
		if _, ok := cols[required]; !ok {
			result.Err = fmt.Errorf("%w: %s", ErrMissingColumn, required)
			return result
		}
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				result.RowErrors = append(result.RowErrors, RowError{Line: perr.StartLine, Err: err})
				continue
			}
			result.Err = fmt.Errorf("reading rows: %w", err)
			break
		}
		line, _ := cr.FieldPos(0)

		e, err := parseRow(record, cols, df, line)
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{Line: line, Err: err})
			continue
		}
		result.Entries = append(result.Entries, e)
	}

	return result
}

func mapColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canon, ok := columnAliases[name]; ok {
			if _, dup := cols[canon]; !dup {
				cols[canon] = i
			}
		}
	}
	return cols
}

func parseRow(record []string, cols map[string]int, df DiscoveredFile, line int) (model.LedgerEntry, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := ParseDate(field("date"))
	if err != nil {
		return model.LedgerEntry{}, err
	}
	amount, err := ParseAmount(field("amount"))
	if err != nil {
		return model.LedgerEntry{}, err
	}

	e := model.LedgerEntry{
		ID:          field("id"),
		Date:        date,
		Category:    ParseCategory(field("category")),
		Amount:      amount.InexactFloat64(),
		Kind:        model.ParseKind(field("kind")),
		Project:     field("project"),
		Client:      field("client"),
		Description: field("description"),
		Source:      df.Path,
	}
	if e.Project == "" {
		e.Project = df.Project
	}
	if e.ID == "" {
		e.ID = EntryID(df.Path, line)
	}
	return e, nil
}

// EntryID derives a stable ID from the file and line an entry came from, so
// re-importing an unchanged file replaces rows instead of duplicating them.
func EntryID(path string, line int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("cflow:"+path+"#"+strconv.Itoa(line))).String()
}

// ParseDate accepts ISO dates and the common US bank-export layouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, raw)
}

// ParseAmount parses a money string exactly. Currency symbols, thousands
// separators and accounting-style parentheses are accepted:
//
//	"$1,200.50" -> 1200.50
//	"(300)"     -> -300
//	"-45 USD"   -> -45
//
// A sign inside parentheses, as in "(-300)", is rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "USD")
	s = strings.TrimSpace(s)

	negative := false
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" || (negative && (s[0] == '-' || s[0] == '+')) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrBadAmount, raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrBadAmount, raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ParseCategory maps a raw label, including bookkeeping synonyms, to a Category.
func ParseCategory(raw string) model.Category {
	key := strings.ToLower(strings.TrimSpace(raw))
	if c, ok := categorySynonyms[key]; ok {
		return c
	}
	return model.ParseCategory(key)
}
