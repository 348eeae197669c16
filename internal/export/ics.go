// Package export renders calendar datasets in formats other than the table.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/zapponejosh/litcal-webcalendar/internal/webcalendar"
)

const productID = "-//litcal-webcalendar//Liturgical Calendar//EN"

// ICSOptions controls an ICS export.
type ICSOptions struct {
	Name         string              // calendar name, X-WR-CALNAME
	Locale       *webcalendar.Locale // season names; English when nil
	GradeDisplay webcalendar.GradeDisplay
	Domain       string    // UID suffix, default "litcal"
	Stamp        time.Time // DTSTAMP of every event, default now
}

// UID returns the stable identifier of ev: its key and date at domain.
func UID(ev *webcalendar.Event, domain string) string {
	if domain == "" {
		domain = "litcal"
	}
	return fmt.Sprintf("%s-%s@%s", ev.EventKey, ev.Date.UTC().Format("20060102"), domain)
}

// CalendarName names ds for feed readers: the diocese or nation when the
// calendar has one, and the year.
func CalendarName(ds *webcalendar.Dataset) string {
	name := "General Roman Calendar"
	switch {
	case ds.Metadata.DioceseName != "":
		name = ds.Metadata.DioceseName
	case ds.Metadata.NationalCalName != "":
		name = ds.Metadata.NationalCalName
	}
	if ds.Settings.Year == 0 {
		return name
	}
	return fmt.Sprintf("%s %d", name, ds.Settings.Year)
}

// BuildICS returns one all-day VEVENT per event of ds.
func BuildICS(ds *webcalendar.Dataset, opts ICSOptions) (*ics.Calendar, error) {
	if ds == nil {
		return nil, &webcalendar.InputContractError{Reason: "dataset is nil"}
	}
	if opts.Locale == nil {
		opts.Locale = webcalendar.NewLocaleCache().Get("en")
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetName(opts.Name)
		cal.SetXWRCalName(opts.Name)
	}

	resolver := webcalendar.NewSeasonResolver(ds)
	for i := range ds.Events {
		ev := &ds.Events[i]
		if ev.EventKey == "" {
			return nil, &webcalendar.InputContractError{
				Field:  fmt.Sprintf("litcal[%d].event_key", i),
				Reason: "required for export",
			}
		}

		day := webcalendar.DayOf(ev.Date)
		vevent := cal.AddEvent(UID(ev, opts.Domain))
		vevent.SetDtStampTime(opts.Stamp)
		vevent.SetAllDayStartAt(day)
		vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))
		vevent.SetSummary(ev.Name)
		if desc := description(ev, opts.GradeDisplay); desc != "" {
			vevent.SetDescription(desc)
		}
		if category := seasonCategory(resolver, ev, opts.Locale); category != "" {
			vevent.AddProperty(ics.ComponentPropertyCategories, category)
		}
	}

	return cal, nil
}

// WriteICS writes the ICS export of ds to w.
func WriteICS(w io.Writer, ds *webcalendar.Dataset, opts ICSOptions) error {
	cal, err := BuildICS(ds, opts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

// description is the grade label and the localized colors, one per line.
func description(ev *webcalendar.Event, display webcalendar.GradeDisplay) string {
	var lines []string
	if grade := webcalendar.GradeLabel(ev, display); grade != "" {
		lines = append(lines, grade)
	}
	colors := ev.ColorLcl
	if len(colors) == 0 {
		colors = ev.Color
	}
	if len(colors) > 0 {
		lines = append(lines, strings.Join(colors, ", "))
	}
	return strings.Join(lines, "\n")
}

// seasonCategory names the event's season. Events whose season cannot be
// inferred get no category rather than failing the export.
func seasonCategory(r *webcalendar.SeasonResolver, ev *webcalendar.Event, loc *webcalendar.Locale) string {
	if ev.LiturgicalSeason != "" && ev.LiturgicalSeasonLcl != "" {
		return ev.LiturgicalSeasonLcl
	}
	season, err := r.Resolve(ev)
	if err != nil {
		return ""
	}
	return loc.SeasonName(season)
}
