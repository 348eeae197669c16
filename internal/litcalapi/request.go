package litcalapi

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zapponejosh/litcal-webcalendar/internal/calendar"
)

// Year types accepted by the API.
const (
	YearTypeCivil      = "CIVIL"
	YearTypeLiturgical = "LITURGICAL"
)

// ErrInvalidRequest is matched by every error from a malformed Request.
var ErrInvalidRequest = errors.New("invalid calendar request")

// Request selects one calendar: a scope (general, national or diocesan),
// a year and the settings that move feasts around.
type Request struct {
	Year          int
	YearType      string // CIVIL or LITURGICAL, default CIVIL
	Locale        string // sent as Accept-Language, default "en"
	Nation        string // national calendar id
	Diocese       string // diocesan calendar id
	Epiphany      string // JAN6 or SUNDAY_JAN2_JAN8
	Ascension     string // THURSDAY or SUNDAY
	CorpusChristi string // THURSDAY or SUNDAY
}

// normalize fills defaults and checks the request. A zero year becomes the
// year containing now: the civil year, or for a liturgical year type the
// liturgical year.
func (r Request) normalize(now time.Time) (Request, error) {
	r.YearType = strings.ToUpper(strings.TrimSpace(r.YearType))
	if r.YearType == "" {
		r.YearType = YearTypeCivil
	}
	if r.YearType != YearTypeCivil && r.YearType != YearTypeLiturgical {
		return r, fmt.Errorf("%w: year type must be %s or %s, got %q", ErrInvalidRequest, YearTypeCivil, YearTypeLiturgical, r.YearType)
	}

	if r.Year == 0 {
		r.Year = now.Year()
		if r.YearType == YearTypeLiturgical {
			r.Year = calendar.LiturgicalYear(now)
		}
	}
	// The API serves 1970 through 9999.
	if r.Year < 1970 || r.Year > 9999 {
		return r, fmt.Errorf("%w: year %d out of range 1970-9999", ErrInvalidRequest, r.Year)
	}

	r.Locale = strings.TrimSpace(r.Locale)
	if r.Locale == "" {
		r.Locale = "en"
	}
	r.Nation = strings.TrimSpace(r.Nation)
	r.Diocese = strings.TrimSpace(r.Diocese)
	if r.Nation != "" && r.Diocese != "" {
		return r, fmt.Errorf("%w: nation %q and diocese %q are mutually exclusive", ErrInvalidRequest, r.Nation, r.Diocese)
	}
	r.Epiphany = strings.ToUpper(strings.TrimSpace(r.Epiphany))
	r.Ascension = strings.ToUpper(strings.TrimSpace(r.Ascension))
	r.CorpusChristi = strings.ToUpper(strings.TrimSpace(r.CorpusChristi))
	return r, nil
}

// path returns the request path below the base URL.
func (r Request) path() string {
	var b strings.Builder
	b.WriteString("/calendar")
	switch {
	case r.Nation != "":
		b.WriteString("/nation/" + url.PathEscape(r.Nation))
	case r.Diocese != "":
		b.WriteString("/diocese/" + url.PathEscape(r.Diocese))
	}
	b.WriteString("/" + strconv.Itoa(r.Year))
	return b.String()
}

// query returns the query string parameters.
func (r Request) query() url.Values {
	values := url.Values{}
	values.Set("year_type", r.YearType)
	if r.Epiphany != "" {
		values.Set("epiphany", r.Epiphany)
	}
	if r.Ascension != "" {
		values.Set("ascension", r.Ascension)
	}
	if r.CorpusChristi != "" {
		values.Set("corpus_christi", r.CorpusChristi)
	}
	return values
}

// CacheKey identifies the response to r in the payload cache.
func (r Request) CacheKey() string {
	scope := "general"
	switch {
	case r.Nation != "":
		scope = "nation:" + r.Nation
	case r.Diocese != "":
		scope = "diocese:" + r.Diocese
	}
	return strings.Join([]string{
		scope, strconv.Itoa(r.Year), r.YearType, r.Locale,
		r.Epiphany, r.Ascension, r.CorpusChristi,
	}, "|")
}
