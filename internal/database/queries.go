package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Helper Functions
// =============================================================================

// timestampLayout is fixed-width so stored timestamps compare as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp renders t in UTC using timestampLayout.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns the zero time if parsing fails.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	// RFC3339 first (what we write)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}

	// SQLite datetime('now') format (no timezone)
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}

	return time.Time{}
}

// execer is satisfied by both *DB and *Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// Calendar Response Queries
// =============================================================================

// GetCalendarResponse retrieves the cached response for key.
// Returns ErrNotFound if nothing is cached.
func (db *DB) GetCalendarResponse(ctx context.Context, key string) (*CalendarResponse, error) {
	query := `
		SELECT cache_key, url, body, etag, last_modified, fetched_at
		FROM calendar_responses
		WHERE cache_key = ?
	`

	var r CalendarResponse
	var fetchedAt string
	err := db.QueryRowContext(ctx, query, key).Scan(
		&r.CacheKey, &r.URL, &r.Body, &r.ETag, &r.LastModified, &fetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar response: %w", err)
	}
	r.FetchedAt = parseTimestamp(fetchedAt)

	return &r, nil
}

// PutCalendarResponse inserts or replaces the cached response for r.CacheKey.
func (db *DB) PutCalendarResponse(ctx context.Context, r *CalendarResponse) error {
	if r.CacheKey == "" {
		return errors.New("cache key is required")
	}
	if r.FetchedAt.IsZero() {
		r.FetchedAt = time.Now()
	}

	query := `
		INSERT INTO calendar_responses (cache_key, url, body, etag, last_modified, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			url = excluded.url,
			body = excluded.body,
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			fetched_at = excluded.fetched_at
	`
	_, err := db.ExecContext(ctx, query,
		r.CacheKey, r.URL, r.Body, r.ETag, r.LastModified, formatTimestamp(r.FetchedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert calendar response: %w", err)
	}
	return nil
}

// TouchCalendarResponse moves the fetch time of a cached response forward,
// as after a 304.
func (db *DB) TouchCalendarResponse(ctx context.Context, key string, fetchedAt time.Time) error {
	res, err := db.ExecContext(ctx,
		"UPDATE calendar_responses SET fetched_at = ? WHERE cache_key = ?",
		formatTimestamp(fetchedAt), key,
	)
	if err != nil {
		return fmt.Errorf("touch calendar response: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCalendarResponsesBefore removes responses fetched before cutoff and
// returns how many were removed.
func (db *DB) DeleteCalendarResponsesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return deleteCalendarResponsesBefore(ctx, db, cutoff)
}

// DeleteCalendarResponsesBefore is DB.DeleteCalendarResponsesBefore within tx.
func (tx *Tx) DeleteCalendarResponsesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return deleteCalendarResponsesBefore(ctx, tx, cutoff)
}

func deleteCalendarResponsesBefore(ctx context.Context, q execer, cutoff time.Time) (int64, error) {
	res, err := q.ExecContext(ctx,
		"DELETE FROM calendar_responses WHERE fetched_at < ?",
		formatTimestamp(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("delete calendar responses: %w", err)
	}
	return res.RowsAffected()
}

// CountCalendarResponses returns the number of cached responses.
func (db *DB) CountCalendarResponses(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calendar_responses").Scan(&n); err != nil {
		return 0, fmt.Errorf("count calendar responses: %w", err)
	}
	return n, nil
}

// =============================================================================
// Refresh History Queries
// =============================================================================

// RecordRefreshRun appends run to the refresh history and sets its ID.
func (db *DB) RecordRefreshRun(ctx context.Context, run *RefreshRun) error {
	return recordRefreshRun(ctx, db, run)
}

// RecordRefreshRun is DB.RecordRefreshRun within tx.
func (tx *Tx) RecordRefreshRun(ctx context.Context, run *RefreshRun) error {
	return recordRefreshRun(ctx, tx, run)
}

func recordRefreshRun(ctx context.Context, q execer, run *RefreshRun) error {
	if !run.Status.IsValid() {
		return fmt.Errorf("invalid run status %q", run.Status)
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO refresh_runs (cache_key, started_at, finished_at, status, events, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.CacheKey, formatTimestamp(run.StartedAt), formatTimestamp(run.FinishedAt),
		string(run.Status), run.Events, run.Error,
	)
	if err != nil {
		return fmt.Errorf("insert refresh run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get refresh run id: %w", err)
	}
	run.ID = id
	return nil
}

// RecentRefreshRuns returns up to limit runs, newest first.
func (db *DB) RecentRefreshRuns(ctx context.Context, limit int) ([]RefreshRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, cache_key, started_at, finished_at, status, events, error
		FROM refresh_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query refresh runs: %w", err)
	}
	defer rows.Close()

	var runs []RefreshRun
	for rows.Next() {
		var r RefreshRun
		var started, finished, status string
		if err := rows.Scan(&r.ID, &r.CacheKey, &started, &finished, &status, &r.Events, &r.Error); err != nil {
			return nil, fmt.Errorf("scan refresh run: %w", err)
		}
		r.StartedAt = parseTimestamp(started)
		r.FinishedAt = parseTimestamp(finished)
		r.Status = RunStatus(status)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refresh runs: %w", err)
	}

	return runs, nil
}

// PruneRefreshRuns deletes runs that started before cutoff.
func (db *DB) PruneRefreshRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	return pruneRefreshRuns(ctx, db, cutoff)
}

// PruneRefreshRuns is DB.PruneRefreshRuns within tx.
func (tx *Tx) PruneRefreshRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	return pruneRefreshRuns(ctx, tx, cutoff)
}

func pruneRefreshRuns(ctx context.Context, q execer, cutoff time.Time) (int64, error) {
	res, err := q.ExecContext(ctx,
		"DELETE FROM refresh_runs WHERE started_at < ?",
		formatTimestamp(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("prune refresh runs: %w", err)
	}
	return res.RowsAffected()
}

// Pruned counts the rows removed by RecordRefresh.
type Pruned struct {
	Responses int64
	Runs      int64
}

// RecordRefresh appends run to the history and removes cached responses and
// runs older than cutoff, in one transaction. On error nothing is written
// and run.ID is left unset.
func (db *DB) RecordRefresh(ctx context.Context, run *RefreshRun, cutoff time.Time) (Pruned, error) {
	var pruned Pruned
	err := db.WithTx(ctx, func(tx *Tx) error {
		if err := tx.RecordRefreshRun(ctx, run); err != nil {
			return err
		}
		var err error
		if pruned.Responses, err = tx.DeleteCalendarResponsesBefore(ctx, cutoff); err != nil {
			return err
		}
		pruned.Runs, err = tx.PruneRefreshRuns(ctx, cutoff)
		return err
	})
	if err != nil {
		run.ID = 0
		return Pruned{}, fmt.Errorf("record refresh: %w", err)
	}
	return pruned, nil
}
