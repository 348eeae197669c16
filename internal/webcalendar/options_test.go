package webcalendar

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.FirstColumnGrouping != GroupByLiturgicalSeason || o.ColumnOrder != EventDetailsFirst {
		t.Errorf("defaults = %+v", o)
	}
	if o.EventColor.Mode != ColorIndicator || !o.EventColor.Columns.Has(ColumnEventDetails) {
		t.Errorf("event color = %+v", o.EventColor)
	}
	if o.SeasonColor.Mode != ColorBackground || !o.SeasonColor.Columns.Has(ColumnLiturgicalSeason) {
		t.Errorf("season color = %+v", o.SeasonColor)
	}
}

func TestOptionsApplyIsAtomic(t *testing.T) {
	base := DefaultOptions()
	_, err := base.Apply(
		WithMonthHeader(true),
		WithDateFormat(DateFormat(42)),
	)
	if !IsConfigurationError(err) {
		t.Fatalf("error = %v, want configuration error", err)
	}
	if base.MonthHeader {
		t.Error("failed Apply modified the receiver")
	}

	got, err := base.Apply(WithMonthHeader(true), WithGradeDisplay(GradeAbbreviated))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !got.MonthHeader || got.GradeDisplay != GradeAbbreviated {
		t.Errorf("applied = %+v", got)
	}
}

func TestOptionValidation(t *testing.T) {
	tests := []struct {
		name   string
		opt    Option
		option string
	}{
		{"grouping", WithFirstColumnGrouping(Grouping(9)), "firstColumnGrouping"},
		{"column order", WithColumnOrder(ColumnOrder(-1)), "columnOrder"},
		{"grade display", WithGradeDisplay(GradeDisplay(2)), "gradeDisplay"},
		{"event color", WithEventColor(ColorMode(7)), "eventColor"},
		{"season color", WithSeasonColor(ColorMode(-2)), "seasonColor"},
		{"event columns", WithEventColorColumns(1 << 8), "eventColorColumns"},
		{"season columns", WithSeasonColorColumns(ColumnDate | 1<<6), "seasonColorColumns"},
		{"locale", WithLocale("not a tag!"), "locale"},
		{"table id", WithTableID("two words"), "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultOptions().Apply(tt.opt)
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want *ConfigurationError", err)
			}
			if ce.Option != tt.option {
				t.Errorf("option = %q, want %q", ce.Option, tt.option)
			}
		})
	}
}

func TestWithLocaleCanonicalizes(t *testing.T) {
	o, err := DefaultOptions().Apply(WithLocale("pt_BR"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if o.Locale != "pt-BR" {
		t.Errorf("locale = %q, want pt-BR", o.Locale)
	}
}

func TestParseOption(t *testing.T) {
	tests := []struct {
		name, value string
		check       func(Options) bool
	}{
		{"firstColumnGrouping", "BY_MONTH", func(o Options) bool { return o.FirstColumnGrouping == GroupByMonth }},
		{"column_order", "grade-first", func(o Options) bool { return o.ColumnOrder == GradeFirst }},
		{"dateFormat", "day_only", func(o Options) bool { return o.DateFormat == DateDayOnly }},
		{"gradeDisplay", "abbreviated", func(o Options) bool { return o.GradeDisplay == GradeAbbreviated }},
		{"eventColor", "css_class", func(o Options) bool { return o.EventColor.Mode == ColorCSSClass }},
		{"seasonColor", "none", func(o Options) bool { return o.SeasonColor.Mode == ColorNone }},
		{"seasonColorColumns", "date|month", func(o Options) bool {
			return o.SeasonColor.Columns.Get() == ColumnDate|ColumnMonth
		}},
		{"eventColorColumns", "12", func(o Options) bool {
			return o.EventColor.Columns.Get() == ColumnDate|ColumnEventDetails
		}},
		{"monthHeader", "true", func(o Options) bool { return o.MonthHeader }},
		{"psalter-week-column", "1", func(o Options) bool { return o.PsalterWeekColumn }},
		{"removeCaption", "TRUE", func(o Options) bool { return o.RemoveCaption }},
		{"removeHeaderRow", "t", func(o Options) bool { return o.RemoveHeaderRow }},
		{"locale", "la", func(o Options) bool { return o.Locale == "la" }},
		{"id", "calendar", func(o Options) bool { return o.TableID == "calendar" }},
		{"class", "table table-sm", func(o Options) bool { return o.TableClass == "table table-sm" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := ParseOption(tt.name, tt.value)
			if err != nil {
				t.Fatalf("ParseOption(%q, %q): %v", tt.name, tt.value, err)
			}
			o, err := DefaultOptions().Apply(opt)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !tt.check(o) {
				t.Errorf("option %s=%s not applied: %+v", tt.name, tt.value, o)
			}
		})
	}
}

func TestParseOptionErrors(t *testing.T) {
	tests := []struct{ name, value string }{
		{"firstColumnGrouping", "BY_WEEK"},
		{"dateFormat", ""},
		{"eventColor", "rainbow"},
		{"seasonColorColumns", "date|weekday"},
		{"monthHeader", "sometimes"},
		{"locale", "!!"},
		{"id", "has space"},
		{"fontSize", "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOption(tt.name, tt.value)
			if !IsConfigurationError(err) {
				t.Fatalf("ParseOption(%q, %q) error = %v, want configuration error", tt.name, tt.value, err)
			}
			if !strings.Contains(err.Error(), tt.name) {
				t.Errorf("error %q does not name the option", err)
			}
		})
	}
}

func TestEnumStrings(t *testing.T) {
	if GroupByMonth.String() != "BY_MONTH" || DateShort.String() != "SHORT" {
		t.Error("unexpected enum names")
	}
	if got := Grouping(5).String(); got != "5" {
		t.Errorf("unknown grouping String() = %q", got)
	}
}
