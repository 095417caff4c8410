package store

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
    id                   TEXT PRIMARY KEY,
    entry_date           TEXT NOT NULL,
    category             TEXT NOT NULL,
    amount               REAL NOT NULL,
    kind                 TEXT NOT NULL DEFAULT 'actual',
    project              TEXT NOT NULL DEFAULT '',
    client               TEXT NOT NULL DEFAULT '',
    description          TEXT NOT NULL DEFAULT '',
    source               TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS assumptions (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    category             TEXT NOT NULL,
    scenario_id          TEXT NOT NULL DEFAULT 'base',
    amount               REAL NOT NULL,
    value_type           TEXT NOT NULL,
    percent_of           TEXT NOT NULL DEFAULT '',
    frequency            TEXT NOT NULL DEFAULT 'monthly',
    start_month          TEXT NOT NULL,
    end_month            TEXT,
    project              TEXT NOT NULL DEFAULT '',
    seq                  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(entry_date);
CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source);
CREATE INDEX IF NOT EXISTS idx_entries_project ON entries(project);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS cflow_entries (
    id                   TEXT PRIMARY KEY,
    entry_date           DATE NOT NULL,
    category             TEXT NOT NULL,
    amount               DOUBLE PRECISION NOT NULL,
    kind                 TEXT NOT NULL DEFAULT 'actual',
    project              TEXT NOT NULL DEFAULT '',
    client               TEXT NOT NULL DEFAULT '',
    description          TEXT NOT NULL DEFAULT '',
    source               TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS cflow_assumptions (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    category             TEXT NOT NULL,
    scenario_id          TEXT NOT NULL DEFAULT 'base',
    amount               DOUBLE PRECISION NOT NULL,
    value_type           TEXT NOT NULL,
    percent_of           TEXT NOT NULL DEFAULT '',
    frequency            TEXT NOT NULL DEFAULT 'monthly',
    start_month          TEXT NOT NULL,
    end_month            TEXT,
    project              TEXT NOT NULL DEFAULT '',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS cflow_file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             BIGINT NOT NULL,
    size_bytes           BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cflow_entries_date ON cflow_entries(entry_date);
CREATE INDEX IF NOT EXISTS idx_cflow_entries_source ON cflow_entries(source);
`
