package source

import (
	"fmt"

	"github.com/theirongolddev/cflow/internal/model"
)

// DiscoveredFile is a CSV ledger export found during scanning.
type DiscoveredFile struct {
	Path    string
	Name    string // base name without extension
	Project string // from a <project>/<file>.csv layout; empty at the top level
}

// RowError describes one CSV row that could not be turned into an entry.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ParseResult holds the output of parsing a single CSV file.
type ParseResult struct {
	File      DiscoveredFile
	Entries   []model.LedgerEntry
	RowErrors []RowError
	Err       error
}
