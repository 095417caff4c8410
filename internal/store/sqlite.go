package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/cflow/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Local is the SQLite-backed store used by default.
type Local struct {
	db *sql.DB
}

var _ Store = (*Local)(nil)

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Local, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Local{db: db}, nil
}

// Close closes the database.
func (l *Local) Close() error {
	return l.db.Close()
}

// TrackedFiles returns a map of file_path -> FileInfo for all imported files.
func (l *Local) TrackedFiles(ctx context.Context) (map[string]FileInfo, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// ReplaceSource swaps a file's entries and updates its tracker row in one tx.
func (l *Local) ReplaceSource(ctx context.Context, path string, entries []model.LedgerEntry, fi FileInfo) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE source = ?", path); err != nil {
		return fmt.Errorf("clearing %s: %w", path, err)
	}
	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, path, fi.MtimeNs, fi.SizeBytes)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteSource removes a file's entries and its tracker row.
func (l *Local) DeleteSource(ctx context.Context, path string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE source = ?", path); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveEntries upserts entries by ID.
func (l *Local) SaveEntries(ctx context.Context, entries []model.LedgerEntry) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []model.LedgerEntry) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO entries
		(id, entry_date, category, amount, kind, project, client, description, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.ID, e.Date.UTC().Format(dateLayout), string(e.Category), e.Amount, string(e.Kind),
			e.Project, e.Client, e.Description, e.Source,
		)
		if err != nil {
			return fmt.Errorf("saving entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// LoadEntries reads every entry, oldest first.
func (l *Local) LoadEntries(ctx context.Context) ([]model.LedgerEntry, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT
		id, entry_date, category, amount, kind, project, client, description, source
		FROM entries ORDER BY entry_date, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var date, category, kind string
		err := rows.Scan(&e.ID, &date, &category, &e.Amount, &kind,
			&e.Project, &e.Client, &e.Description, &e.Source)
		if err != nil {
			return nil, err
		}
		// unparseable dates load as zero and are skipped by the engine
		e.Date, _ = time.Parse(dateLayout, date)
		e.Category = model.ParseCategory(category)
		e.Kind = model.ParseKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes one entry.
func (l *Local) DeleteEntry(ctx context.Context, id string) error {
	return execOne(ctx, l.db, "DELETE FROM entries WHERE id = ?", id)
}

// SaveAssumption upserts an assumption by ID.
func (l *Local) SaveAssumption(ctx context.Context, a model.Assumption) error {
	_, err := l.db.ExecContext(ctx, `INSERT OR REPLACE INTO assumptions
		(id, name, category, scenario_id, amount, value_type, percent_of, frequency,
		 start_month, end_month, project, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		 COALESCE((SELECT seq FROM assumptions WHERE id = ?),
		          (SELECT COALESCE(MAX(seq), 0) + 1 FROM assumptions)))`,
		a.ID, a.Name, string(a.Category), a.Scenario(), a.Amount, string(a.ValueType),
		string(a.PercentOf), string(a.Frequency), a.Start.String(), formatEnd(a.End), a.Project,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("saving assumption %s: %w", a.ID, err)
	}
	return nil
}

// LoadAssumptions reads every assumption in creation order.
func (l *Local) LoadAssumptions(ctx context.Context) ([]model.Assumption, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT
		id, name, category, scenario_id, amount, value_type, percent_of, frequency,
		start_month, end_month, project
		FROM assumptions ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Assumption
	for rows.Next() {
		var (
			a                                           model.Assumption
			category, valueType, percentOf, freq, start string
			end                                         sql.NullString
		)
		err := rows.Scan(&a.ID, &a.Name, &category, &a.ScenarioID, &a.Amount, &valueType,
			&percentOf, &freq, &start, &end, &a.Project)
		if err != nil {
			return nil, err
		}
		a.Category = model.Category(category)
		a.ValueType = model.ValueType(valueType)
		a.PercentOf = model.Reference(percentOf)
		a.Frequency = model.Frequency(freq)
		// a bad stored month leaves Start zero; the resolver skips it with a warning
		a.Start, _ = model.ParseYearMonth(start)
		if end.Valid {
			a.End, _ = parseEnd(&end.String)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAssumption removes one assumption.
func (l *Local) DeleteAssumption(ctx context.Context, id string) error {
	return execOne(ctx, l.db, "DELETE FROM assumptions WHERE id = ?", id)
}

// Counts returns row counts for the status views.
func (l *Local) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := l.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM entries),
		(SELECT COUNT(*) FROM assumptions),
		(SELECT COUNT(*) FROM file_tracker)`).Scan(&c.Entries, &c.Assumptions, &c.Files)
	return c, err
}

func execOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
