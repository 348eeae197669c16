package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/litcal-webcalendar/internal/database"
	"github.com/zapponejosh/litcal-webcalendar/internal/export"
	"github.com/zapponejosh/litcal-webcalendar/internal/litcalapi"
	"github.com/zapponejosh/litcal-webcalendar/internal/logger"
	"github.com/zapponejosh/litcal-webcalendar/internal/webcalendar"
)

// CalendarSource retrieves calendars on demand. *litcalapi.Client implements it.
type CalendarSource interface {
	Get(ctx context.Context, req litcalapi.Request) (*litcalapi.Result, error)
}

// Store is the persistence the handlers read. *database.DB implements it.
type Store interface {
	Health(ctx context.Context) error
	RecentRefreshRuns(ctx context.Context, limit int) ([]database.RefreshRun, error)
}

// Snapshotter exposes the table mounted by the scheduled refresh.
// *webcalendar.SnapshotTarget implements it.
type Snapshotter interface {
	Snapshot() (t *webcalendar.Table, html string, mounted time.Time, ok bool)
}

var (
	_ CalendarSource = (*litcalapi.Client)(nil)
	_ Store          = (*database.DB)(nil)
	_ Snapshotter    = (*webcalendar.SnapshotTarget)(nil)
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Store        Store
	Source       CalendarSource
	Snapshot     Snapshotter          // optional
	Locales      *webcalendar.LocaleCache
	Request      litcalapi.Request    // configured calendar scope and settings
	TableOptions []webcalendar.Option // applied before query-string options
	Logger       *slog.Logger
}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	store    Store
	source   CalendarSource
	snapshot Snapshotter
	locales  *webcalendar.LocaleCache
	request  litcalapi.Request
	options  []webcalendar.Option
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Locales == nil {
		deps.Locales = webcalendar.NewLocaleCache()
	}
	return &Handlers{
		store:    deps.Store,
		source:   deps.Source,
		snapshot: deps.Snapshot,
		locales:  deps.Locales,
		request:  deps.Request,
		options:  deps.TableOptions,
		logger:   deps.Logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check database health
	if err := h.store.Health(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	status := map[string]any{"status": "healthy"}
	if h.snapshot != nil {
		if _, _, mounted, ok := h.snapshot.Snapshot(); ok {
			status["calendar_mounted_at"] = mounted.UTC().Format(time.RFC3339)
		}
	}
	WriteSuccess(w, status)
}

// GetSnapshot handles GET /calendar
func (h *Handlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshot == nil {
		WriteUnavailable(w, "No scheduled calendar", "NOT_CONFIGURED")
		return
	}
	t, html, mounted, ok := h.snapshot.Snapshot()
	if !ok {
		WriteUnavailable(w, "Calendar not loaded yet", "NOT_READY")
		return
	}

	w.Header().Set("Last-Modified", mounted.UTC().Format(http.TimeFormat))
	h.writePage(w, r, t.Caption, html)
}

// GetCalendarPage handles GET /calendar/{year}
func (h *Handlers) GetCalendarPage(w http.ResponseWriter, r *http.Request) {
	t, ok := h.buildTable(w, r)
	if !ok {
		return
	}
	h.writePage(w, r, t.Caption, t.HTML())
}

// GetCalendarTable handles GET /api/v1/calendar/{year}/table
func (h *Handlers) GetCalendarTable(w http.ResponseWriter, r *http.Request) {
	t, ok := h.buildTable(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, t)
}

// GetCalendarICS handles GET /api/v1/calendar/{year}/events.ics
func (h *Handlers) GetCalendarICS(w http.ResponseWriter, r *http.Request) {
	req, opts, err := h.parseCalendarQuery(r)
	if err != nil {
		h.writeCalendarError(w, r, err)
		return
	}
	o, err := webcalendar.DefaultOptions().Apply(opts...)
	if err != nil {
		h.writeCalendarError(w, r, err)
		return
	}

	res, err := h.source.Get(r.Context(), req)
	if err != nil {
		h.writeCalendarError(w, r, err)
		return
	}

	cal, err := export.BuildICS(res.Dataset, export.ICSOptions{
		Name:         export.CalendarName(res.Dataset),
		Locale:       h.locales.Get(o.Locale),
		GradeDisplay: o.GradeDisplay,
	})
	if err != nil {
		h.writeCalendarError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="litcal-%d.ics"`, req.Year))
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		logger.Error(r.Context(), "write ics", err)
	}
}

// ListRefreshRuns handles GET /api/v1/refresh/runs?limit=N
func (h *Handlers) ListRefreshRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			WriteBadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	runs, err := h.store.RecentRefreshRuns(r.Context(), limit)
	if err != nil {
		logger.Error(r.Context(), "list refresh runs", err)
		WriteInternalError(w, "Failed to retrieve refresh runs")
		return
	}
	if runs == nil {
		runs = []database.RefreshRun{}
	}
	WriteSuccess(w, runs)
}

// =============================================================================
// Helpers
// =============================================================================

// requestKeys are query parameters that select the calendar rather than
// configure the table. Keys are compared after lowercasing and removing
// "_" and "-".
var requestKeys = map[string]func(*litcalapi.Request, string){
	"yeartype":      func(r *litcalapi.Request, v string) { r.YearType = v },
	"nation":        func(r *litcalapi.Request, v string) { r.Nation, r.Diocese = v, "" },
	"diocese":       func(r *litcalapi.Request, v string) { r.Diocese, r.Nation = v, "" },
	"epiphany":      func(r *litcalapi.Request, v string) { r.Epiphany = v },
	"ascension":     func(r *litcalapi.Request, v string) { r.Ascension = v },
	"corpuschristi": func(r *litcalapi.Request, v string) { r.CorpusChristi = v },
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(k))
}

// parseCalendarQuery reads the {year} path value and the query string.
// The locale selects both the API language and the table locale.
func (h *Handlers) parseCalendarQuery(r *http.Request) (litcalapi.Request, []webcalendar.Option, error) {
	req := h.request

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return req, nil, fmt.Errorf("%w: year must be a number, got %q", litcalapi.ErrInvalidRequest, chi.URLParam(r, "year"))
	}
	req.Year = year

	var opts []webcalendar.Option
	if req.Locale != "" {
		opts = append(opts, webcalendar.WithLocale(req.Locale))
	}
	opts = append(opts, h.options...)

	query := r.URL.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v := query.Get(k)
		if set, ok := requestKeys[normalizeKey(k)]; ok {
			set(&req, v)
			continue
		}
		opt, err := webcalendar.ParseOption(k, v)
		if err != nil {
			return req, nil, err
		}
		if normalizeKey(k) == "locale" {
			req.Locale = v
		}
		opts = append(opts, opt)
	}
	return req, opts, nil
}

// buildTable fetches the requested calendar and lays it out. On failure the
// error response has been written and ok is false.
func (h *Handlers) buildTable(w http.ResponseWriter, r *http.Request) (*webcalendar.Table, bool) {
	req, opts, err := h.parseCalendarQuery(r)
	if err != nil {
		h.writeCalendarError(w, r, err)
		return nil, false
	}
	// Options are checked before any upstream request is made.
	o, err := webcalendar.DefaultOptions().Apply(opts...)
	if err != nil {
		h.writeCalendarError(w, r, err)
		return nil, false
	}

	res, err := h.source.Get(r.Context(), req)
	if err != nil {
		h.writeCalendarError(w, r, err)
		return nil, false
	}

	t, err := webcalendar.NewTableBuilder(o, h.locales.Get(o.Locale)).Build(res.Dataset)
	if err != nil {
		h.writeCalendarError(w, r, err)
		return nil, false
	}
	return t, true
}

// writeCalendarError maps the error taxonomy onto HTTP statuses: bad
// options or requests are the caller's fault, bad payloads the upstream's.
func (h *Handlers) writeCalendarError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *litcalapi.StatusError
	switch {
	case webcalendar.IsConfigurationError(err), errors.Is(err, litcalapi.ErrInvalidRequest):
		WriteBadRequest(w, err.Error())
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
		WriteNotFound(w, "Calendar not found")
	case webcalendar.IsInputContractError(err), errors.Is(err, webcalendar.ErrLayoutInvariant):
		logger.Warn(r.Context(), "calendar data rejected", "error", err)
		WriteError(w, http.StatusBadGateway, err.Error(), "UPSTREAM_INVALID")
	case errors.Is(err, context.Canceled):
		// Client went away.
	default:
		logger.Error(r.Context(), "calendar request failed", err)
		WriteBadGateway(w, "Calendar API unavailable")
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Table}}
</body>
</html>
`))

// writePage wraps a rendered table in a minimal HTML document.
func (h *Handlers) writePage(w http.ResponseWriter, r *http.Request, title, tableHTML string) {
	lang := "en"
	if l := r.URL.Query().Get("locale"); l != "" {
		lang = l
	} else if h.request.Locale != "" {
		lang = h.request.Locale
	}
	if title == "" {
		title = "Liturgical Calendar"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, struct {
		Lang, Title string
		Table       template.HTML
	}{lang, title, template.HTML(tableHTML)})
	if err != nil {
		logger.Error(r.Context(), "write page", err)
	}
}
