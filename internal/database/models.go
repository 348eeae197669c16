package database

import "time"

// CalendarResponse is one cached calendar API response.
type CalendarResponse struct {
	CacheKey     string    `json:"cache_key"`
	URL          string    `json:"url"`
	Body         []byte    `json:"-"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Fresh reports whether the response was fetched less than ttl before now.
func (r *CalendarResponse) Fresh(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(r.FetchedAt) < ttl
}

// RunStatus is the outcome of one refresh.
type RunStatus string

const (
	RunOK          RunStatus = "ok"           // fetched a new body
	RunNotModified RunStatus = "not_modified" // server answered 304
	RunCached      RunStatus = "cached"       // cache entry still fresh, no request made
	RunError       RunStatus = "error"
)

// IsValid checks if a run status is valid.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunOK, RunNotModified, RunCached, RunError:
		return true
	}
	return false
}

// RefreshRun is one entry of the refresh history.
type RefreshRun struct {
	ID         int64     `json:"id"`
	CacheKey   string    `json:"cache_key"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     RunStatus `json:"status"`
	Events     int       `json:"events"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r *RefreshRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
