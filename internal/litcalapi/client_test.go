package litcalapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zapponejosh/litcal-webcalendar/internal/database"
	"github.com/zapponejosh/litcal-webcalendar/internal/webcalendar"
)

// =============================================================================
// Test Helpers
// =============================================================================

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCache(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.DefaultConfig(":memory:"), quietLogger())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate cache: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func payload(year int) string {
	return fmt.Sprintf(`{
  "litcal": [
    {"event_key":"MotherGod","name":"Mary, Mother of God","date":"%[1]d-01-01T00:00:00+00:00",
     "color":["white"],"color_lcl":["white"],"grade":6,"grade_lcl":"SOLEMNITY",
     "liturgical_season":"CHRISTMAS","psalter_week":0},
    {"event_key":"Easter","name":"Easter Sunday","date":"%[1]d-04-20T00:00:00+00:00",
     "color":["white"],"color_lcl":["white"],"grade":7,"grade_lcl":"",
     "liturgical_season":"EASTER","psalter_week":1}
  ],
  "settings": {"year": %[1]d, "year_type": "CIVIL", "locale": "en"},
  "metadata": {"version": "v5"},
  "messages": []
}`, year)
}

type fakeAPI struct {
	mu       sync.Mutex
	hits     atomic.Int32
	status   int
	etag     string
	lastReq  *http.Request
	body     string
	requests []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	f.mu.Lock()
	f.lastReq = r.Clone(context.Background())
	f.requests = append(f.requests, r.URL.String())
	status, etag, body := f.status, f.etag, f.body
	f.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	if etag != "" && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func (f *fakeAPI) set(status int, etag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.etag = status, etag
}

func newTestClient(t *testing.T, api http.Handler, cache Cache, ttl time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/api/v5/", TTL: ttl}, cache, quietLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

// =============================================================================
// Request Tests
// =============================================================================

func TestRequest_URL(t *testing.T) {
	c, err := New(Config{BaseURL: "https://example.test/api/v5"}, nil, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return time.Date(2025, time.December, 7, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "general calendar defaults to current civil year",
			req:  Request{},
			want: "https://example.test/api/v5/calendar/2025?year_type=CIVIL",
		},
		{
			name: "liturgical year after Advent",
			req:  Request{YearType: "liturgical"},
			want: "https://example.test/api/v5/calendar/2026?year_type=LITURGICAL",
		},
		{
			name: "national calendar with settings",
			req:  Request{Year: 2024, Nation: "IT", Epiphany: "jan6", Ascension: "sunday"},
			want: "https://example.test/api/v5/calendar/nation/IT/2024?ascension=SUNDAY&epiphany=JAN6&year_type=CIVIL",
		},
		{
			name: "diocesan calendar",
			req:  Request{Year: 2025, Diocese: "romamo_it", CorpusChristi: "THURSDAY"},
			want: "https://example.test/api/v5/calendar/diocese/romamo_it/2025?corpus_christi=THURSDAY&year_type=CIVIL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.URL(tt.req)
			if err != nil {
				t.Fatalf("URL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("URL() = %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestRequest_Invalid(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		req  Request
	}{
		{"bad year type", Request{YearType: "FISCAL"}},
		{"year too early", Request{Year: 1900}},
		{"year too late", Request{Year: 10000}},
		{"nation and diocese", Request{Nation: "IT", Diocese: "romamo_it"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.req.normalize(now); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("normalize() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestRequest_CacheKey(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	a, _ := Request{Year: 2025, Locale: "it"}.normalize(now)
	b, _ := Request{Year: 2025, Locale: "en"}.normalize(now)
	c, _ := Request{Year: 2025, Locale: "it", Nation: "IT"}.normalize(now)
	if a.CacheKey() == b.CacheKey() || a.CacheKey() == c.CacheKey() {
		t.Errorf("cache keys collide: %q %q %q", a.CacheKey(), b.CacheKey(), c.CacheKey())
	}
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "/api", "ftp://example.test"} {
		if _, err := New(Config{BaseURL: base}, nil, nil); err == nil {
			t.Errorf("New(%q) succeeded", base)
		}
	}
}

// =============================================================================
// Fetch Tests
// =============================================================================

func TestFetch_DecodesAndNotifies(t *testing.T) {
	api := &fakeAPI{body: payload(2025)}
	c := newTestClient(t, api, nil, 0)

	var order []string
	c.OnCalendarFetched(func(ds *webcalendar.Dataset) error {
		order = append(order, "first")
		return nil
	})
	c.OnCalendarFetched(func(ds *webcalendar.Dataset) error {
		order = append(order, "second")
		return errors.New("boom")
	})
	c.OnCalendarFetched(func(ds *webcalendar.Dataset) error {
		order = append(order, "third")
		return nil
	})

	res, err := c.Fetch(context.Background(), Request{Year: 2025, Locale: "it"})
	if err == nil || !strings.Contains(err.Error(), "boom") || res == nil {
		t.Fatalf("Fetch() = %v, %v; want result and listener error", res, err)
	}
	if len(res.Dataset.Events) != 2 || res.Status != database.RunOK {
		t.Errorf("result = %+v", res)
	}
	if fmt.Sprint(order) != "[first second third]" {
		t.Errorf("listener order = %v", order)
	}
	if got := api.lastReq.Header.Get("Accept-Language"); got != "it" {
		t.Errorf("Accept-Language = %q", got)
	}
	if got := api.lastReq.URL.Path; got != "/api/v5/calendar/2025" {
		t.Errorf("path = %q", got)
	}
}

func TestFetch_FreshCacheSkipsRequest(t *testing.T) {
	api := &fakeAPI{body: payload(2025), etag: `"v1"`}
	c := newTestClient(t, api, testCache(t), time.Hour)

	ctx := context.Background()
	if _, err := c.Fetch(ctx, Request{Year: 2025}); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}
	res, err := c.Fetch(ctx, Request{Year: 2025})
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if res.Status != database.RunCached {
		t.Errorf("Status = %q, want %q", res.Status, database.RunCached)
	}
	if n := api.hits.Load(); n != 1 {
		t.Errorf("API hit %d times, want 1", n)
	}
}

func TestFetch_ConditionalRequest(t *testing.T) {
	api := &fakeAPI{body: payload(2025), etag: `"v1"`}
	cache := testCache(t)
	c := newTestClient(t, api, cache, 0)

	ctx := context.Background()
	if _, err := c.Fetch(ctx, Request{Year: 2025}); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}

	later := time.Now().Add(time.Hour)
	c.now = func() time.Time { return later }

	res, err := c.Fetch(ctx, Request{Year: 2025})
	if err != nil {
		t.Fatalf("second Fetch() error = %v", err)
	}
	if res.Status != database.RunNotModified {
		t.Errorf("Status = %q, want %q", res.Status, database.RunNotModified)
	}
	if got := api.lastReq.Header.Get("If-None-Match"); got != `"v1"` {
		t.Errorf("If-None-Match = %q", got)
	}
	if len(res.Dataset.Events) != 2 {
		t.Errorf("events = %d, want 2", len(res.Dataset.Events))
	}

	entry, err := cache.GetCalendarResponse(ctx, res.CacheKey)
	if err != nil {
		t.Fatal(err)
	}
	if entry.FetchedAt.Before(later.Add(-time.Second)) {
		t.Errorf("cache entry not touched: %s", entry.FetchedAt)
	}
}

func TestFetch_FallsBackToCache(t *testing.T) {
	api := &fakeAPI{body: payload(2025)}
	c := newTestClient(t, api, testCache(t), 0)

	ctx := context.Background()
	if _, err := c.Fetch(ctx, Request{Year: 2025}); err != nil {
		t.Fatal(err)
	}

	api.set(http.StatusServiceUnavailable, "")
	res, err := c.Fetch(ctx, Request{Year: 2025})
	if err != nil {
		t.Fatalf("Fetch() error = %v, want cached fallback", err)
	}
	if res.Status != database.RunCached {
		t.Errorf("Status = %q", res.Status)
	}
}

func TestFetch_Errors(t *testing.T) {
	t.Run("status without cache", func(t *testing.T) {
		api := &fakeAPI{status: http.StatusNotFound}
		c := newTestClient(t, api, nil, 0)
		_, err := c.Fetch(context.Background(), Request{Year: 2025})
		var se *StatusError
		if !errors.As(err, &se) || se.Code != http.StatusNotFound {
			t.Errorf("Fetch() error = %v, want StatusError 404", err)
		}
	})

	t.Run("contract violation", func(t *testing.T) {
		api := &fakeAPI{body: `{"litcal":[],"settings":{},"metadata":{}}`}
		c := newTestClient(t, api, nil, 0)
		_, err := c.Fetch(context.Background(), Request{Year: 2025})
		if !webcalendar.IsInputContractError(err) {
			t.Errorf("Fetch() error = %v, want input contract error", err)
		}
	})

	t.Run("listeners not called on failure", func(t *testing.T) {
		api := &fakeAPI{status: http.StatusInternalServerError}
		c := newTestClient(t, api, nil, 0)
		called := false
		c.OnCalendarFetched(func(*webcalendar.Dataset) error { called = true; return nil })
		if _, err := c.Fetch(context.Background(), Request{Year: 2025}); err == nil {
			t.Fatal("Fetch() succeeded")
		}
		if called {
			t.Error("listener called after failed fetch")
		}
	})
}

func TestGet_DoesNotNotify(t *testing.T) {
	api := &fakeAPI{body: payload(2024)}
	c := newTestClient(t, api, nil, 0)
	called := false
	c.OnCalendarFetched(func(*webcalendar.Dataset) error { called = true; return nil })

	res, err := c.Get(context.Background(), Request{Year: 2024})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if res.Dataset.Settings.Year != 2024 {
		t.Errorf("Settings.Year = %d", res.Dataset.Settings.Year)
	}
	if called {
		t.Error("Get() notified listeners")
	}
}

func TestFetch_WebCalendarListener(t *testing.T) {
	api := &fakeAPI{body: payload(2025)}
	c := newTestClient(t, api, nil, 0)

	wc, err := webcalendar.New(quietLogger(), nil)
	if err != nil {
		t.Fatal(err)
	}
	snap := &webcalendar.SnapshotTarget{}
	wc.AttachTo(snap)
	c.OnCalendarFetched(wc.OnCalendarFetched)

	if _, err := c.Fetch(context.Background(), Request{Year: 2025}); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, html, _, ok := snap.Snapshot(); !ok || html == "" {
		t.Error("snapshot not mounted after fetch")
	}
}
