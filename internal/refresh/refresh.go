// Package refresh refetches the configured calendar on a cron schedule.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zapponejosh/litcal-webcalendar/internal/database"
	"github.com/zapponejosh/litcal-webcalendar/internal/litcalapi"
	applog "github.com/zapponejosh/litcal-webcalendar/internal/logger"
)

// DefaultRetention is how long cached responses and run history are kept.
const DefaultRetention = 30 * 24 * time.Hour

// Fetcher retrieves a calendar. *litcalapi.Client implements it; the client
// notifies its own listeners.
type Fetcher interface {
	Fetch(ctx context.Context, req litcalapi.Request) (*litcalapi.Result, error)
}

// Store records a run and prunes cache rows and runs older than cutoff
// together. *database.DB implements it.
type Store interface {
	RecordRefresh(ctx context.Context, run *database.RefreshRun, cutoff time.Time) (database.Pruned, error)
}

var (
	_ Fetcher = (*litcalapi.Client)(nil)
	_ Store   = (*database.DB)(nil)
)

// Config configures a Refresher.
type Config struct {
	Schedule  string            // standard cron expression or descriptor
	Request   litcalapi.Request // a zero Year follows the clock, so the calendar rolls over
	Retention time.Duration     // default DefaultRetention
}

// Refresher runs Fetch on a schedule and records every run.
type Refresher struct {
	cfg     Config
	fetcher Fetcher
	store   Store
	logger  *slog.Logger
	cron    *cron.Cron
	entry   cron.EntryID

	mu      sync.Mutex
	ctx     context.Context
	last    database.RefreshRun
	hasLast bool
}

// New validates the schedule and builds a stopped Refresher. store may be nil.
func New(cfg Config, fetcher Fetcher, store Store, logger *slog.Logger) (*Refresher, error) {
	if fetcher == nil {
		return nil, errors.New("refresh: fetcher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	logger = applog.Component(logger, "refresh")

	cl := cronLogger{logger}
	r := &Refresher{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		ctx:     context.Background(),
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}

	id, err := r.cron.AddFunc(cfg.Schedule, r.scheduled)
	if err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", cfg.Schedule, err)
	}
	r.entry = id
	return r, nil
}

// Start runs one refresh immediately and then starts the schedule. The
// initial run's error is returned, but the schedule starts regardless so a
// transient outage at boot heals on the next tick.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	r.ctx = ctx
	r.mu.Unlock()

	_, err := r.RunOnce(ctx)
	r.cron.Start()
	r.logger.Info("refresh scheduled", "schedule", r.cfg.Schedule, "next", r.Next())
	return err
}

// Stop stops the schedule and waits for a running refresh to finish, or for
// ctx to end.
func (r *Refresher) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		r.logger.Warn("refresh still running at shutdown")
	}
}

// Next returns the time of the next scheduled run, or the zero time if the
// schedule is not running.
func (r *Refresher) Next() time.Time {
	return r.cron.Entry(r.entry).Next
}

// LastRun returns the most recent run.
func (r *Refresher) LastRun() (database.RefreshRun, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.hasLast
}

func (r *Refresher) scheduled() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()

	if _, err := r.RunOnce(ctx); err != nil {
		r.logger.Error("scheduled refresh failed", "error", err)
	}
}

// RunOnce fetches the calendar, records the run and prunes old cache rows.
func (r *Refresher) RunOnce(ctx context.Context) (database.RefreshRun, error) {
	run := database.RefreshRun{StartedAt: time.Now()}

	res, fetchErr := r.fetcher.Fetch(ctx, r.cfg.Request)
	run.FinishedAt = time.Now()
	switch {
	case res == nil:
		run.Status = database.RunError
		run.CacheKey = r.cfg.Request.CacheKey()
	default:
		run.Status = res.Status
		run.CacheKey = res.CacheKey
		run.Events = len(res.Dataset.Events)
	}
	// A listener error comes back alongside a valid result.
	if fetchErr != nil {
		run.Status = database.RunError
		run.Error = fetchErr.Error()
	}

	r.logger.Info("refresh finished",
		"status", run.Status,
		"events", run.Events,
		"duration", run.Duration(),
	)

	if r.store != nil {
		r.record(ctx, &run)
	}

	r.mu.Lock()
	r.last, r.hasLast = run, true
	r.mu.Unlock()

	return run, fetchErr
}

func (r *Refresher) record(ctx context.Context, run *database.RefreshRun) {
	cutoff := run.StartedAt.Add(-r.cfg.Retention)
	pruned, err := r.store.RecordRefresh(ctx, run, cutoff)
	if err != nil {
		r.logger.Error("record refresh run failed", "error", err)
		return
	}
	if pruned.Responses > 0 || pruned.Runs > 0 {
		r.logger.Debug("pruned cache", "responses", pruned.Responses, "runs", pruned.Runs, "cutoff", cutoff)
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
