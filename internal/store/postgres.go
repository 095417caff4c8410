package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/theirongolddev/cflow/internal/model"
)

// Postgres is the hosted backend, for teams sharing one ledger.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects to dbURL and ensures the schema exists.
func OpenPostgres(ctx context.Context, dbURL string) (*Postgres, error) {
	if dbURL == "" {
		return nil, errors.New("postgres store: database url not set")
	}

	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// TrackedFiles returns a map of file_path -> FileInfo for all imported files.
func (p *Postgres) TrackedFiles(ctx context.Context) (map[string]FileInfo, error) {
	rows, err := p.pool.Query(ctx, "SELECT file_path, mtime_ns, size_bytes FROM cflow_file_tracker")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
func (p *Postgres) ReplaceSource(ctx context.Context, path string, entries []model.LedgerEntry, fi FileInfo) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM cflow_entries WHERE source = $1", path); err != nil {
			return fmt.Errorf("clearing %s: %w", path, err)
		}
		if err := sendEntries(ctx, tx, entries); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO cflow_file_tracker (file_path, mtime_ns, size_bytes)
			VALUES ($1, $2, $3)
			ON CONFLICT (file_path) DO UPDATE SET
				mtime_ns = EXCLUDED.mtime_ns,
				size_bytes = EXCLUDED.size_bytes`,
			path, fi.MtimeNs, fi.SizeBytes)
		return err
	})
}

// DeleteSource removes a file's entries and its tracker row.
func (p *Postgres) DeleteSource(ctx context.Context, path string) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM cflow_entries WHERE source = $1", path); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "DELETE FROM cflow_file_tracker WHERE file_path = $1", path)
		return err
	})
}

// SaveEntries upserts entries by ID.
func (p *Postgres) SaveEntries(ctx context.Context, entries []model.LedgerEntry) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		return sendEntries(ctx, tx, entries)
	})
}

func sendEntries(ctx context.Context, tx pgx.Tx, entries []model.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO cflow_entries (
			id, entry_date, category, amount, kind, project, client, description, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			entry_date = EXCLUDED.entry_date,
			category = EXCLUDED.category,
			amount = EXCLUDED.amount,
			kind = EXCLUDED.kind,
			project = EXCLUDED.project,
			client = EXCLUDED.client,
			description = EXCLUDED.description,
			source = EXCLUDED.source
	`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query,
			e.ID, e.Date.UTC(), string(e.Category), e.Amount, string(e.Kind),
			e.Project, e.Client, e.Description, e.Source,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save entries: %w", err)
	}
	return nil
}

// LoadEntries reads every entry, oldest first.
func (p *Postgres) LoadEntries(ctx context.Context) ([]model.LedgerEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, entry_date, category, amount, kind, project, client, description, source
		FROM cflow_entries ORDER BY entry_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var date time.Time
		var category, kind string
		err := rows.Scan(&e.ID, &date, &category, &e.Amount, &kind,
			&e.Project, &e.Client, &e.Description, &e.Source)
		if err != nil {
			return nil, err
		}
		e.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		e.Category = model.ParseCategory(category)
		e.Kind = model.ParseKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes one entry.
func (p *Postgres) DeleteEntry(ctx context.Context, id string) error {
	return p.execOne(ctx, "DELETE FROM cflow_entries WHERE id = $1", id)
}

// SaveAssumption upserts an assumption by ID.
func (p *Postgres) SaveAssumption(ctx context.Context, a model.Assumption) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO cflow_assumptions (
			id, name, category, scenario_id, amount, value_type, percent_of,
			frequency, start_month, end_month, project
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			scenario_id = EXCLUDED.scenario_id,
			amount = EXCLUDED.amount,
			value_type = EXCLUDED.value_type,
			percent_of = EXCLUDED.percent_of,
			frequency = EXCLUDED.frequency,
			start_month = EXCLUDED.start_month,
			end_month = EXCLUDED.end_month,
			project = EXCLUDED.project`,
		a.ID, a.Name, string(a.Category), a.Scenario(), a.Amount, string(a.ValueType),
		string(a.PercentOf), string(a.Frequency), a.Start.String(), formatEnd(a.End), a.Project,
	)
	if err != nil {
		return fmt.Errorf("failed to save assumption %s: %w", a.ID, err)
	}
	return nil
}

// LoadAssumptions reads every assumption in creation order.
func (p *Postgres) LoadAssumptions(ctx context.Context) ([]model.Assumption, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, category, scenario_id, amount, value_type, percent_of,
			frequency, start_month, end_month, project
		FROM cflow_assumptions ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Assumption
	for rows.Next() {
		var (
			a                                           model.Assumption
			category, valueType, percentOf, freq, start string
			end                                         *string
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
		a.Start, _ = model.ParseYearMonth(start)
		a.End, _ = parseEnd(end)
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAssumption removes one assumption.
func (p *Postgres) DeleteAssumption(ctx context.Context, id string) error {
	return p.execOne(ctx, "DELETE FROM cflow_assumptions WHERE id = $1", id)
}

// Counts returns row counts for the status views.
func (p *Postgres) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := p.pool.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM cflow_entries),
		(SELECT COUNT(*) FROM cflow_assumptions),
		(SELECT COUNT(*) FROM cflow_file_tracker)`).Scan(&c.Entries, &c.Assumptions, &c.Files)
	return c, err
}

func (p *Postgres) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
