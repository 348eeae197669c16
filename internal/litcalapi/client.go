// Package litcalapi fetches calendars from the Liturgical Calendar API,
// caches the raw payloads and hands decoded datasets to subscribers.
package litcalapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zapponejosh/litcal-webcalendar/internal/database"
	applog "github.com/zapponejosh/litcal-webcalendar/internal/logger"
	"github.com/zapponejosh/litcal-webcalendar/internal/webcalendar"
)

const (
	defaultUserAgent = "litcal-webcalendar/1.0"
	defaultTimeout   = 15 * time.Second

	// maxBodySize bounds one calendar payload; a full year is well under this.
	maxBodySize = 16 << 20
)

// Cache stores raw responses between fetches. *database.DB implements it.
type Cache interface {
	GetCalendarResponse(ctx context.Context, key string) (*database.CalendarResponse, error)
	PutCalendarResponse(ctx context.Context, r *database.CalendarResponse) error
	TouchCalendarResponse(ctx context.Context, key string, fetchedAt time.Time) error
}

var _ Cache = (*database.DB)(nil)

// Listener receives every dataset the client fetches.
// (*webcalendar.WebCalendar).OnCalendarFetched is a Listener.
type Listener func(ds *webcalendar.Dataset) error

// StatusError is a non-OK answer from the API with nothing cached to fall back on.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("calendar api %s: %s", e.URL, e.Status)
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration // per request, default 15s
	TTL       time.Duration // cache entries younger than this are served without a request
	UserAgent string
}

// Client talks to the Liturgical Calendar API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	cache     Cache
	ttl       time.Duration
	userAgent string
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	listeners []Listener
}

// Result describes how a fetch was satisfied.
type Result struct {
	Dataset   *webcalendar.Dataset
	URL       string
	CacheKey  string
	Status    database.RunStatus
	FetchedAt time.Time
}

// New builds a Client. cache may be nil, in which case every fetch hits the API.
func New(cfg Config, cache Cache, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) URL", cfg.BaseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		cache:     cache,
		ttl:       cfg.TTL,
		userAgent: ua,
		logger:    applog.Component(logger, "litcalapi"),
		now:       time.Now,
	}, nil
}

// OnCalendarFetched subscribes fn to every successful fetch. Listeners are
// called in subscription order.
func (c *Client) OnCalendarFetched(fn Listener) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// URL returns the full request URL for req after defaults are applied.
func (c *Client) URL(req Request) (string, error) {
	req, err := req.normalize(c.now())
	if err != nil {
		return "", err
	}
	return c.resolve(req), nil
}

func (c *Client) resolve(req Request) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + req.path()
	u.RawQuery = req.query().Encode()
	return u.String()
}

// Get retrieves and decodes the calendar for req without notifying listeners.
func (c *Client) Get(ctx context.Context, req Request) (*Result, error) {
	req, err := req.normalize(c.now())
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, req)
}

// Fetch retrieves the calendar for req, decodes it and notifies every
// listener. Listener errors are joined and returned with the result; the
// result is still valid in that case.
func (c *Client) Fetch(ctx context.Context, req Request) (*Result, error) {
	res, err := c.Get(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	var errs []error
	for i, fn := range listeners {
		if err := fn(res.Dataset); err != nil {
			errs = append(errs, fmt.Errorf("listener %d: %w", i, err))
		}
	}
	return res, errors.Join(errs...)
}

// fetch resolves one request through the cache and the network.
func (c *Client) fetch(ctx context.Context, req Request) (*Result, error) {
	key := req.CacheKey()
	target := c.resolve(req)
	now := c.now()

	cached := c.lookup(ctx, key)
	if cached != nil && cached.Fresh(now, c.ttl) {
		ds, err := webcalendar.DecodeDataset(cached.Body)
		if err == nil {
			c.logger.Debug("calendar served from cache", "url", target, "age", now.Sub(cached.FetchedAt))
			return &Result{Dataset: ds, URL: target, CacheKey: key, Status: database.RunCached, FetchedAt: cached.FetchedAt}, nil
		}
		// A cached body that no longer decodes is refetched unconditionally.
		c.logger.Warn("cached calendar is invalid, refetching", "url", target, "error", err)
		cached = nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Accept-Language", req.Locale)
	httpReq.Header.Set("User-Agent", c.userAgent)

	// Conditional headers from the cached entry
	if cached != nil {
		if cached.ETag != "" {
			httpReq.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			httpReq.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if cached != nil {
			c.logger.Warn("calendar fetch failed, using cached body", "url", target, "error", err)
			return c.fromCache(key, target, cached, database.RunCached)
		}
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("read calendar body: %w", err)
		}
		ds, err := webcalendar.DecodeDataset(body)
		if err != nil {
			return nil, fmt.Errorf("decode calendar from %s: %w", target, err)
		}

		entry := &database.CalendarResponse{
			CacheKey:     key,
			URL:          target,
			Body:         body,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			FetchedAt:    now,
		}
		if c.cache != nil {
			if err := c.cache.PutCalendarResponse(ctx, entry); err != nil {
				// The fresh body is still usable.
				c.logger.Error("calendar cache save failed", "url", target, "error", err)
			}
		}

		c.logger.Info("calendar fetched",
			"url", target,
			"events", len(ds.Events),
			"bytes", len(body),
			"duration", time.Since(start),
		)
		return &Result{Dataset: ds, URL: target, CacheKey: key, Status: database.RunOK, FetchedAt: now}, nil

	case http.StatusNotModified:
		if cached == nil {
			return nil, fmt.Errorf("fetch calendar: %s returned 304 but nothing is cached", target)
		}
		if c.cache != nil {
			if err := c.cache.TouchCalendarResponse(ctx, key, now); err != nil {
				c.logger.Error("calendar cache touch failed", "url", target, "error", err)
			}
		}
		c.logger.Info("calendar not modified", "url", target)
		cached.FetchedAt = now
		return c.fromCache(key, target, cached, database.RunNotModified)

	default:
		if cached != nil {
			c.logger.Warn("calendar fetch non-OK, using cached body", "url", target, "status", resp.StatusCode)
			return c.fromCache(key, target, cached, database.RunCached)
		}
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: target}
	}
}

func (c *Client) lookup(ctx context.Context, key string) *database.CalendarResponse {
	if c.cache == nil {
		return nil
	}
	cached, err := c.cache.GetCalendarResponse(ctx, key)
	if err != nil {
		if !database.IsNotFound(err) {
			c.logger.Error("calendar cache read failed", "key", key, "error", err)
		}
		return nil
	}
	return cached
}

func (c *Client) fromCache(key, target string, cached *database.CalendarResponse, status database.RunStatus) (*Result, error) {
	ds, err := webcalendar.DecodeDataset(cached.Body)
	if err != nil {
		return nil, fmt.Errorf("decode cached calendar for %s: %w", target, err)
	}
	return &Result{Dataset: ds, URL: target, CacheKey: key, Status: status, FetchedAt: cached.FetchedAt}, nil
}
