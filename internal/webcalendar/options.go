package webcalendar

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Grouping selects what the first column merges.
type Grouping int

const (
	GroupByLiturgicalSeason Grouping = iota
	GroupByMonth
)

var groupingNames = map[Grouping]string{
	GroupByLiturgicalSeason: "BY_LITURGICAL_SEASON",
	GroupByMonth:            "BY_MONTH",
}

func (g Grouping) String() string { return enumString(g, groupingNames) }

// ColumnOrder selects the order of the event details and grade columns.
type ColumnOrder int

const (
	EventDetailsFirst ColumnOrder = iota
	GradeFirst
)

var columnOrderNames = map[ColumnOrder]string{
	EventDetailsFirst: "EVENT_DETAILS_FIRST",
	GradeFirst:        "GRADE_FIRST",
}

func (o ColumnOrder) String() string { return enumString(o, columnOrderNames) }

// DateFormat selects how the date column is written.
type DateFormat int

const (
	DateFull DateFormat = iota
	DateLong
	DateMedium
	DateShort
	DateDayOnly
)

var dateFormatNames = map[DateFormat]string{
	DateFull:    "FULL",
	DateLong:    "LONG",
	DateMedium:  "MEDIUM",
	DateShort:   "SHORT",
	DateDayOnly: "DAY_ONLY",
}

func (f DateFormat) String() string { return enumString(f, dateFormatNames) }

// GradeDisplay selects the full or abbreviated grade label.
type GradeDisplay int

const (
	GradeFull GradeDisplay = iota
	GradeAbbreviated
)

var gradeDisplayNames = map[GradeDisplay]string{
	GradeFull:        "FULL",
	GradeAbbreviated: "ABBREVIATED",
}

func (g GradeDisplay) String() string { return enumString(g, gradeDisplayNames) }

// Options is the full presentation configuration of a calendar table.
type Options struct {
	FirstColumnGrouping Grouping
	ColumnOrder         ColumnOrder
	DateFormat          DateFormat
	GradeDisplay        GradeDisplay
	EventColor          ColorPolicy
	SeasonColor         ColorPolicy
	RemoveCaption       bool
	RemoveHeaderRow     bool
	MonthHeader         bool
	PsalterWeekColumn   bool
	Locale              string
	TableID             string
	TableClass          string
}

// DefaultOptions returns the configuration used when nothing is set:
// season grouping, season colors as backgrounds on the season column,
// event colors as indicators on the event details column.
func DefaultOptions() Options {
	return Options{
		FirstColumnGrouping: GroupByLiturgicalSeason,
		ColumnOrder:         EventDetailsFirst,
		DateFormat:          DateFull,
		GradeDisplay:        GradeFull,
		EventColor: ColorPolicy{
			Mode:    ColorIndicator,
			Columns: ColumnSet{v: ColumnEventDetails},
		},
		SeasonColor: ColorPolicy{
			Mode:    ColorBackground,
			Columns: ColumnSet{v: ColumnLiturgicalSeason},
		},
		Locale:     "en",
		TableClass: "liturgical-calendar",
	}
}

// Option changes one setting. Options validate their input and return a
// *ConfigurationError for values outside the allowed set.
type Option func(*Options) error

// Apply runs opts against a copy of o and returns the result. o is left
// untouched when any option fails.
func (o Options) Apply(opts ...Option) (Options, error) {
	next := o
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&next); err != nil {
			return o, err
		}
	}
	return next, nil
}

func WithFirstColumnGrouping(g Grouping) Option {
	return func(o *Options) error {
		if _, ok := groupingNames[g]; !ok {
			return &ConfigurationError{Option: "firstColumnGrouping", Value: int(g), Reason: "unknown grouping"}
		}
		o.FirstColumnGrouping = g
		return nil
	}
}

func WithColumnOrder(c ColumnOrder) Option {
	return func(o *Options) error {
		if _, ok := columnOrderNames[c]; !ok {
			return &ConfigurationError{Option: "columnOrder", Value: int(c), Reason: "unknown column order"}
		}
		o.ColumnOrder = c
		return nil
	}
}

func WithDateFormat(f DateFormat) Option {
	return func(o *Options) error {
		if _, ok := dateFormatNames[f]; !ok {
			return &ConfigurationError{Option: "dateFormat", Value: int(f), Reason: "unknown date format"}
		}
		o.DateFormat = f
		return nil
	}
}

func WithGradeDisplay(g GradeDisplay) Option {
	return func(o *Options) error {
		if _, ok := gradeDisplayNames[g]; !ok {
			return &ConfigurationError{Option: "gradeDisplay", Value: int(g), Reason: "unknown grade display"}
		}
		o.GradeDisplay = g
		return nil
	}
}

func WithEventColor(m ColorMode) Option {
	return func(o *Options) error {
		if !m.Valid() {
			return &ConfigurationError{Option: "eventColor", Value: int(m), Reason: "unknown color mode"}
		}
		o.EventColor.Mode = m
		return nil
	}
}

func WithSeasonColor(m ColorMode) Option {
	return func(o *Options) error {
		if !m.Valid() {
			return &ConfigurationError{Option: "seasonColor", Value: int(m), Reason: "unknown color mode"}
		}
		o.SeasonColor.Mode = m
		return nil
	}
}

func WithEventColorColumns(cols Column) Option {
	return func(o *Options) error {
		if err := o.EventColor.Columns.Set(cols); err != nil {
			return renameOption(err, "eventColorColumns")
		}
		return nil
	}
}

func WithSeasonColorColumns(cols Column) Option {
	return func(o *Options) error {
		if err := o.SeasonColor.Columns.Set(cols); err != nil {
			return renameOption(err, "seasonColorColumns")
		}
		return nil
	}
}

func WithRemoveCaption(v bool) Option {
	return func(o *Options) error { o.RemoveCaption = v; return nil }
}

func WithRemoveHeaderRow(v bool) Option {
	return func(o *Options) error { o.RemoveHeaderRow = v; return nil }
}

func WithMonthHeader(v bool) Option {
	return func(o *Options) error { o.MonthHeader = v; return nil }
}

func WithPsalterWeekColumn(v bool) Option {
	return func(o *Options) error { o.PsalterWeekColumn = v; return nil }
}

// WithLocale sets the display locale from a BCP-47 tag.
func WithLocale(tag string) Option {
	return func(o *Options) error {
		t, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
		if err != nil {
			return &ConfigurationError{Option: "locale", Value: tag, Reason: err.Error()}
		}
		o.Locale = t.String()
		return nil
	}
}

func WithTableID(id string) Option {
	return func(o *Options) error {
		if strings.ContainsAny(id, " \t\n") {
			return &ConfigurationError{Option: "id", Value: id, Reason: "must not contain whitespace"}
		}
		o.TableID = id
		return nil
	}
}

func WithTableClass(class string) Option {
	return func(o *Options) error { o.TableClass = strings.TrimSpace(class); return nil }
}

// ParseOption builds an Option from a textual name and value, as found in
// query strings, CLI flags and option files. Names are matched ignoring case,
// "_" and "-", so "firstColumnGrouping" and "first_column_grouping" agree.
func ParseOption(name, value string) (Option, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(strings.TrimSpace(name)))

	bad := func(err error) error {
		return &ConfigurationError{Option: name, Value: value, Reason: err.Error()}
	}

	switch key {
	case "firstcolumngrouping", "grouping":
		g, err := parseEnum(value, groupingNames)
		if err != nil {
			return nil, bad(err)
		}
		return WithFirstColumnGrouping(g), nil
	case "columnorder":
		c, err := parseEnum(value, columnOrderNames)
		if err != nil {
			return nil, bad(err)
		}
		return WithColumnOrder(c), nil
	case "dateformat":
		f, err := parseEnum(value, dateFormatNames)
		if err != nil {
			return nil, bad(err)
		}
		return WithDateFormat(f), nil
	case "gradedisplay":
		g, err := parseEnum(value, gradeDisplayNames)
		if err != nil {
			return nil, bad(err)
		}
		return WithGradeDisplay(g), nil
	case "eventcolor":
		m, err := ParseColorMode(value)
		if err != nil {
			return nil, bad(err)
		}
		return WithEventColor(m), nil
	case "seasoncolor":
		m, err := ParseColorMode(value)
		if err != nil {
			return nil, bad(err)
		}
		return WithSeasonColor(m), nil
	case "eventcolorcolumns":
		cols, err := parseColumnsValue(value)
		if err != nil {
			return nil, bad(err)
		}
		return WithEventColorColumns(cols), nil
	case "seasoncolorcolumns":
		cols, err := parseColumnsValue(value)
		if err != nil {
			return nil, bad(err)
		}
		return WithSeasonColorColumns(cols), nil
	case "removecaption", "removeheaderrow", "monthheader", "psalterweekcolumn":
		v, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, bad(err)
		}
		switch key {
		case "removecaption":
			return WithRemoveCaption(v), nil
		case "removeheaderrow":
			return WithRemoveHeaderRow(v), nil
		case "monthheader":
			return WithMonthHeader(v), nil
		default:
			return WithPsalterWeekColumn(v), nil
		}
	case "locale":
		return checked(WithLocale(value))
	case "id", "tableid":
		return checked(WithTableID(value))
	case "class", "tableclass":
		return WithTableClass(value), nil
	}

	return nil, &ConfigurationError{Option: name, Value: value, Reason: "unknown option"}
}

// checked runs opt against scratch options so a bad value fails at parse time.
func checked(opt Option) (Option, error) {
	scratch := DefaultOptions()
	if err := opt(&scratch); err != nil {
		return nil, err
	}
	return opt, nil
}

// parseColumnsValue accepts column names or a raw integer bitfield.
func parseColumnsValue(value string) (Column, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return Column(n), nil
	}
	return ParseColumns(value)
}

func renameOption(err error, option string) error {
	if ce, ok := err.(*ConfigurationError); ok {
		return &ConfigurationError{Option: option, Value: ce.Value, Reason: ce.Reason}
	}
	return err
}

func enumString[T ~int](v T, names map[T]string) string {
	if name, ok := names[v]; ok {
		return name
	}
	return strconv.Itoa(int(v))
}
