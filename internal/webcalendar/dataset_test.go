package webcalendar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

const samplePayload = `{
  "litcal": [
    {"event_key": "MaryMotherOfGod", "name": "Mary, Mother of God", "date": 1735689600,
     "color": ["white"], "color_lcl": ["white"], "grade": 6, "grade_lcl": "SOLEMNITY",
     "grade_display": null, "common": [], "common_lcl": "", "liturgical_season": "CHRISTMAS",
     "psalter_week": 0},
    {"event_key": "StBasil", "name": "Saints Basil and Gregory", "date": "2025-01-02T00:00:00+00:00",
     "color": ["white"], "color_lcl": ["white"], "grade": 3, "grade_lcl": "MEMORIAL",
     "grade_display": null, "common": ["Pastors"], "common_lcl": "Common of Pastors",
     "psalter_week": 0}
  ],
  "settings": {"year": 2025, "year_type": "CIVIL", "locale": "en"},
  "metadata": {"version": "v5"},
  "messages": ["computed"]
}`

func TestDecodeDataset(t *testing.T) {
	ds, err := DecodeDataset([]byte(samplePayload))
	if err != nil {
		t.Fatalf("DecodeDataset: %v", err)
	}

	if len(ds.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(ds.Events))
	}
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !ds.Events[0].Date.Equal(want) {
		t.Errorf("epoch date = %v, want %v", ds.Events[0].Date, want)
	}
	if !ds.Events[1].Date.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("ISO date = %v", ds.Events[1].Date)
	}
	if ds.Events[1].LiturgicalSeason != "" {
		t.Errorf("absent season decoded as %q", ds.Events[1].LiturgicalSeason)
	}
	if ds.Settings.Year != 2025 || ds.IsLiturgicalYear() {
		t.Errorf("settings = %+v", ds.Settings)
	}
	if len(ds.Messages) != 1 {
		t.Errorf("messages = %v", ds.Messages)
	}
}

func TestDecodeDatasetContract(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantField string
	}{
		{"not an object", `[1,2]`, ""},
		{"not json", `<html>`, ""},
		{"missing litcal", `{"settings":{},"metadata":{},"messages":[]}`, "litcal"},
		{"missing settings", `{"litcal":[],"metadata":{},"messages":[]}`, "settings"},
		{"missing metadata", `{"litcal":[],"settings":{},"messages":[]}`, "metadata"},
		{"missing messages", `{"litcal":[],"settings":{},"metadata":{}}`, "messages"},
		{"litcal not array", `{"litcal":{},"settings":{},"metadata":{},"messages":[]}`, "litcal"},
		{"messages not array", `{"litcal":[],"settings":{},"metadata":{},"messages":"x"}`, "messages"},
		{"settings null", `{"litcal":[],"settings":null,"metadata":{},"messages":[]}`, "settings"},
		{"settings array", `{"litcal":[],"settings":[],"metadata":{},"messages":[]}`, "settings"},
		{"metadata number", `{"litcal":[],"settings":{},"metadata":5,"messages":[]}`, "metadata"},
		{"metadata string", `{"litcal":[],"settings":{},"metadata":"x","messages":[]}`, "metadata"},
		{"empty litcal", `{"litcal":[],"settings":{},"metadata":{},"messages":[]}`, "litcal"},
		{
			"unsorted",
			`{"litcal":[{"event_key":"b","date":"2025-01-03"},{"event_key":"a","date":"2025-01-02"}],
			  "settings":{},"metadata":{},"messages":[]}`,
			"litcal[1].date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataset([]byte(tt.payload))
			if !IsInputContractError(err) {
				t.Fatalf("error = %v, want input contract error", err)
			}
			var ice *InputContractError
			if !errors.As(err, &ice) {
				t.Fatalf("error type = %T", err)
			}
			if ice.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ice.Field, tt.wantField)
			}
		})
	}
}

func TestDecodeDatasetBadDate(t *testing.T) {
	payload := `{"litcal":[{"event_key":"a","date":"yesterday"}],"settings":{},"metadata":{},"messages":[]}`
	if _, err := DecodeDataset([]byte(payload)); !IsInputContractError(err) {
		t.Fatalf("error = %v, want input contract error", err)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"epoch", `1745107200`},
		{"epoch float", `1745107200.0`},
		{"epoch string", `"1745107200"`},
		{"epoch with time of day", `1745150400`},
		{"date only", `"2025-04-20"`},
		{"rfc3339", `"2025-04-20T00:00:00+00:00"`},
		{"rfc3339 with offset keeps the written day", `"2025-04-20T00:00:00+02:00"`},
		{"local datetime", `"2025-04-20T18:30:00"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("ParseDate(%s): %v", tt.raw, err)
			}
			if !got.Equal(want) || got.Location() != time.UTC {
				t.Errorf("ParseDate(%s) = %v, want %v", tt.raw, got, want)
			}
		})
	}

	if _, err := ParseDate(json.RawMessage(`"20/04/2025"`)); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestValidate(t *testing.T) {
	var nilDS *Dataset
	if err := nilDS.Validate(); !IsInputContractError(err) {
		t.Errorf("nil dataset: %v", err)
	}

	ds := dataset(event(t, "a", "2025-01-02", SeasonChristmas))
	ds.Events = append(ds.Events, Event{EventKey: "undated"})
	if err := ds.Validate(); !IsInputContractError(err) {
		t.Errorf("undated event: %v", err)
	}
}
