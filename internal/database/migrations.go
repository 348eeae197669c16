package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1ResponseCache,
	2: migrationV2RefreshRuns,
}

// migrationV1ResponseCache stores raw calendar API bodies with the
// validators needed for conditional requests.
//
// cache_key identifies one request: calendar scope, year, year type, locale
// and the movable-feast settings. The body is kept verbatim so a 304 can be
// decoded exactly as the original 200 was.
const migrationV1ResponseCache = `
-- Migration 001: response cache
CREATE TABLE IF NOT EXISTS calendar_responses (
    cache_key TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    body BLOB NOT NULL,
    etag TEXT NOT NULL DEFAULT '',
    last_modified TEXT NOT NULL DEFAULT '',
    fetched_at TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_calendar_responses_fetched_at
    ON calendar_responses(fetched_at);
`

// migrationV2RefreshRuns records every scheduled refresh.
const migrationV2RefreshRuns = `
-- Migration 002: refresh history
CREATE TABLE IF NOT EXISTS refresh_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    cache_key TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('ok', 'not_modified', 'cached', 'error')),
    events INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_refresh_runs_started_at
    ON refresh_runs(started_at);
`
