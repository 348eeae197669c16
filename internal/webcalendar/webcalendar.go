// Package webcalendar lays out liturgical calendar data as a table with
// merged month, season, date and psalter week cells, and renders it.
package webcalendar

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	applog "github.com/zapponejosh/litcal-webcalendar/internal/logger"
)

// ErrNoData is returned by BuildTable before any calendar has been received.
var ErrNoData = errors.New("no calendar data received")

// Target receives each successfully built table.
type Target interface {
	Mount(t *Table) error
}

// WebCalendar holds a presentation configuration and the last calendar
// received from the API client, and rebuilds the table whenever either
// changes hands.
type WebCalendar struct {
	mu      sync.Mutex
	opts    Options
	locales *LocaleCache
	target  Target
	data    *Dataset
	logger  *slog.Logger
}

// New returns a calendar with the default options plus opts.
func New(logger *slog.Logger, locales *LocaleCache, opts ...Option) (*WebCalendar, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if locales == nil {
		locales = NewLocaleCache()
	}
	o, err := DefaultOptions().Apply(opts...)
	if err != nil {
		return nil, err
	}
	return &WebCalendar{
		opts:    o,
		locales: locales,
		logger:  applog.Component(logger, "webcalendar"),
	}, nil
}

// Configure applies opts. Either every option applies or none does.
func (wc *WebCalendar) Configure(opts ...Option) error {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	o, err := wc.opts.Apply(opts...)
	if err != nil {
		return err
	}
	wc.opts = o
	return nil
}

// Options returns a copy of the current configuration.
func (wc *WebCalendar) Options() Options {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return wc.opts
}

// AttachTo sets where tables are mounted after each successful build.
func (wc *WebCalendar) AttachTo(target Target) {
	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.target = target
}

// OnCalendarFetched receives a dataset from the API client. The dataset is
// checked against the input contract before it replaces the current one;
// a table is then built and mounted on the attached target, if any.
func (wc *WebCalendar) OnCalendarFetched(ds *Dataset) error {
	if err := ds.Validate(); err != nil {
		wc.logger.Warn("rejected calendar data", "error", err)
		return err
	}

	wc.mu.Lock()
	defer wc.mu.Unlock()

	wc.data = ds
	t, err := wc.build()
	if err != nil {
		return err
	}
	if wc.target == nil {
		return nil
	}
	if err := wc.target.Mount(t); err != nil {
		return fmt.Errorf("mount table: %w", err)
	}
	return nil
}

// BuildTable lays out the last received dataset with the current options.
func (wc *WebCalendar) BuildTable() (*Table, error) {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	if wc.data == nil {
		return nil, ErrNoData
	}
	return wc.build()
}

func (wc *WebCalendar) build() (*Table, error) {
	start := time.Now()
	t, err := NewTableBuilder(wc.opts, wc.locales.Get(wc.opts.Locale)).Build(wc.data)
	if err != nil {
		wc.logger.Error("build table", "error", err)
		return nil, err
	}
	wc.logger.Debug("built table",
		"events", len(wc.data.Events),
		"rows", len(t.Body),
		"locale", wc.opts.Locale,
		"duration", time.Since(start),
	)
	return t, nil
}

// WriterTarget mounts tables by writing their HTML to W.
type WriterTarget struct {
	W io.Writer
}

func (wt WriterTarget) Mount(t *Table) error {
	return t.WriteHTML(wt.W)
}

// SnapshotTarget keeps the most recently mounted table in memory.
type SnapshotTarget struct {
	mu      sync.RWMutex
	table   *Table
	html    string
	mounted time.Time
}

func (s *SnapshotTarget) Mount(t *Table) error {
	var b strings.Builder
	if err := t.WriteHTML(&b); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
	s.html = b.String()
	s.mounted = time.Now()
	return nil
}

// Snapshot returns the last mounted table, its HTML and the mount time.
// ok is false until the first mount.
func (s *SnapshotTarget) Snapshot() (t *Table, html string, mounted time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table, s.html, s.mounted, s.table != nil
}
