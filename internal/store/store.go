// Package store persists ledger entries, assumptions, and import tracking.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/cflow/internal/model"
)

// Drivers accepted by New.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a delete targets a row that does not exist.
var ErrNotFound = errors.New("not found")

// FileInfo holds the tracked mtime and size for an imported file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// Counts summarizes store contents.
type Counts struct {
	Entries     int
	Assumptions int
	Files       int
}

// Store is the ledger persistence contract shared by the SQLite and Postgres
// backends. The projection engine never writes through it.
type Store interface {
	// ReplaceSource swaps every entry imported from path for entries and
	// records fi as the file's tracked state, atomically.
	ReplaceSource(ctx context.Context, path string, entries []model.LedgerEntry, fi FileInfo) error
	// DeleteSource removes a file's entries and its tracker row.
	DeleteSource(ctx context.Context, path string) error
	SaveEntries(ctx context.Context, entries []model.LedgerEntry) error
	LoadEntries(ctx context.Context) ([]model.LedgerEntry, error)
	DeleteEntry(ctx context.Context, id string) error

	SaveAssumption(ctx context.Context, a model.Assumption) error
	LoadAssumptions(ctx context.Context) ([]model.Assumption, error)
	DeleteAssumption(ctx context.Context, id string) error

	TrackedFiles(ctx context.Context) (map[string]FileInfo, error)
	Counts(ctx context.Context) (Counts, error)
	Close() error
}

// Options select and locate a backend.
type Options struct {
	Driver string // DriverSQLite (default) or DriverPostgres
	Path   string // SQLite file
	URL    string // Postgres connection string
}

// New opens the backend named by opts.Driver.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return Open(opts.Path)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.URL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

const dateLayout = "2006-01-02"

func formatEnd(end *model.YearMonth) *string {
	if end == nil || end.IsZero() {
		return nil
	}
	s := end.String()
	return &s
}

func parseEnd(s *string) (*model.YearMonth, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	ym, err := model.ParseYearMonth(*s)
	if err != nil {
		return nil, err
	}
	return &ym, nil
}
