package webcalendar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Year types understood by the calendar API.
const (
	YearTypeCivil      = "CIVIL"
	YearTypeLiturgical = "LITURGICAL"
)

// Event is a single liturgical celebration as delivered by the calendar API.
// The engine never mutates events.
type Event struct {
	EventKey            string    `json:"event_key"`
	Name                string    `json:"name"`
	Date                time.Time `json:"date"`
	Color               []string  `json:"color"`
	ColorLcl            []string  `json:"color_lcl"`
	Grade               int       `json:"grade"`
	GradeLcl            string    `json:"grade_lcl"`
	GradeAbbr           string    `json:"grade_abbr"`
	GradeDisplay        *string   `json:"grade_display"`
	Common              []string  `json:"common"`
	CommonLcl           string    `json:"common_lcl"`
	Type                string    `json:"type,omitempty"`
	LiturgicalSeason    Season    `json:"liturgical_season,omitempty"`
	LiturgicalSeasonLcl string    `json:"liturgical_season_lcl,omitempty"`
	PsalterWeek         int       `json:"psalter_week"`
	LiturgicalYear      string    `json:"liturgical_year,omitempty"`
}

// UnmarshalJSON decodes an event, normalizing its date to a UTC midnight.
func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	aux := struct {
		*alias
		Date json.RawMessage `json:"date"`
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	date, err := ParseDate(aux.Date)
	if err != nil {
		return fmt.Errorf("event %q: %w", e.EventKey, err)
	}
	e.Date = date
	return nil
}

// Settings echoes the request parameters the API used to produce a calendar.
type Settings struct {
	Year              int    `json:"year"`
	YearType          string `json:"year_type"`
	Locale            string `json:"locale"`
	Epiphany          string `json:"epiphany,omitempty"`
	Ascension         string `json:"ascension,omitempty"`
	CorpusChristi     string `json:"corpus_christi,omitempty"`
	EternalHighPriest bool   `json:"eternal_high_priest,omitempty"`
	NationalCalendar  string `json:"national_calendar,omitempty"`
	DiocesanCalendar  string `json:"diocesan_calendar,omitempty"`
}

// Metadata carries descriptive information about the response.
type Metadata struct {
	Version         string `json:"version,omitempty"`
	Timestamp       int64  `json:"timestamp,omitempty"`
	DioceseName     string `json:"diocese_name,omitempty"`
	NationalCalName string `json:"national_calendar_name,omitempty"`
}

// Dataset is one parsed API response. Events are sorted ascending by date.
type Dataset struct {
	Events   []Event  `json:"litcal"`
	Settings Settings `json:"settings"`
	Metadata Metadata `json:"metadata"`
	Messages []string `json:"messages"`
}

// requiredKeys are the top-level members every payload must carry.
var requiredKeys = []string{"litcal", "settings", "metadata", "messages"}

// DecodeDataset parses an API response and checks the input contract:
// a JSON object with a non-empty litcal array plus settings, metadata and
// messages. Nothing is rendered from a payload that fails these checks.
func DecodeDataset(data []byte) (*Dataset, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, &InputContractError{Reason: "payload must be a JSON object"}
	}

	for _, key := range requiredKeys {
		if _, ok := top[key]; !ok {
			return nil, &InputContractError{Field: key, Reason: "missing"}
		}
	}

	if !isJSONArray(top["litcal"]) {
		return nil, &InputContractError{Field: "litcal", Reason: "must be an array"}
	}
	if !isJSONArray(top["messages"]) {
		return nil, &InputContractError{Field: "messages", Reason: "must be an array"}
	}
	for _, key := range []string{"settings", "metadata"} {
		if !isJSONObject(top[key]) {
			return nil, &InputContractError{Field: key, Reason: "must be an object"}
		}
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, &InputContractError{Reason: err.Error()}
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks the contract on a dataset that may have been built in code:
// at least one event, every event dated, dates ascending.
func (ds *Dataset) Validate() error {
	if ds == nil {
		return &InputContractError{Reason: "dataset is nil"}
	}
	if len(ds.Events) == 0 {
		return &InputContractError{Field: "litcal", Reason: "must not be empty"}
	}
	for i := range ds.Events {
		if ds.Events[i].Date.IsZero() {
			return &InputContractError{
				Field:  fmt.Sprintf("litcal[%d].date", i),
				Reason: "missing date",
			}
		}
	}
	return checkSorted(ds.Events)
}

// checkSorted verifies the ordering precondition of the grouping passes.
// Events are never re-sorted here.
func checkSorted(events []Event) error {
	for i := 1; i < len(events); i++ {
		if events[i].Date.Before(events[i-1].Date) {
			return &InputContractError{
				Field: fmt.Sprintf("litcal[%d].date", i),
				Reason: fmt.Sprintf("%s precedes %s: events must be sorted ascending by date",
					events[i].Date.Format(time.DateOnly), events[i-1].Date.Format(time.DateOnly)),
			}
		}
	}
	return nil
}

// IsLiturgicalYear reports whether the dataset spans a liturgical year.
func (ds *Dataset) IsLiturgicalYear() bool {
	return strings.EqualFold(ds.Settings.YearType, YearTypeLiturgical)
}

// ParseDate accepts the encodings the API has used for dates: epoch seconds
// (as a number or numeric string) or an ISO-8601 string. The result is the
// UTC midnight of that day.
func ParseDate(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, fmt.Errorf("parse date: %w", err)
		}
	} else {
		s = string(raw)
	}
	s = strings.TrimSpace(s)

	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return DayOf(time.Unix(epoch, 0)), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return DayOf(time.Unix(int64(f), 0)), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			// The written calendar day wins over the offset.
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date: unsupported format %q", s)
}

// DayOf returns the UTC midnight of t's UTC calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
