package webcalendar

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys used by the table builder.
const (
	msgOr               = "or"
	msgMonth            = "Month"
	msgLiturgicalSeason = "Liturgical Season"
	msgDate             = "Date"
	msgEventDetails     = "Event Details"
	msgGrade            = "Grade"
	msgPsalter          = "Psalter"
	msgCaption          = "Liturgical Calendar %s"
	msgGeneralCalendar  = "General Roman Calendar"
)

// localeData holds the calendar vocabulary of one language. Dates are
// formatted by monday from Go layouts, except in Latin, which monday lacks:
// Latin uses its own name tables and patterns with {W} weekday, {D} day,
// {M} month, {m} short month, {n} month number and {Y} year.
type localeData struct {
	tag      language.Tag
	monday   monday.Locale
	layouts  map[DateFormat]string
	latin    *latinNames
	messages map[string]string
	seasons  map[Season]string
}

type latinNames struct {
	months      [12]string
	monthsShort [12]string
	weekdays    [7]string
	patterns    map[DateFormat]string
}

var latinTag = language.MustParse("la")

var supportedLocales = []localeData{
	{
		tag:    language.English,
		monday: monday.LocaleEnUS,
		layouts: map[DateFormat]string{
			DateFull: "Monday, January 2, 2006", DateLong: "January 2, 2006", DateMedium: "Jan 2, 2006",
			DateShort: "1/2/06", DateDayOnly: "Monday 2",
		},
		messages: map[string]string{
			msgOr: "or", msgMonth: "Month", msgLiturgicalSeason: "Liturgical Season", msgDate: "Date",
			msgEventDetails: "Event Details", msgGrade: "Grade", msgPsalter: "Psalter",
			msgCaption: "Liturgical Calendar %s", msgGeneralCalendar: "General Roman Calendar",
		},
		seasons: map[Season]string{
			SeasonAdvent: "Advent", SeasonChristmas: "Christmas", SeasonOrdinaryTime: "Ordinary Time",
			SeasonLent: "Lent", SeasonEasterTriduum: "Easter Triduum", SeasonEaster: "Easter",
		},
	},
	{
		tag:    language.Italian,
		monday: monday.LocaleItIT,
		layouts: map[DateFormat]string{
			DateFull: "Monday 2 January 2006", DateLong: "2 January 2006", DateMedium: "2 Jan 2006",
			DateShort: "02/01/06", DateDayOnly: "Monday 2",
		},
		messages: map[string]string{
			msgOr: "o", msgMonth: "Mese", msgLiturgicalSeason: "Tempo liturgico", msgDate: "Data",
			msgEventDetails: "Dettagli della celebrazione", msgGrade: "Grado", msgPsalter: "Salterio",
			msgCaption: "Calendario liturgico %s", msgGeneralCalendar: "Calendario Romano Generale",
		},
		seasons: map[Season]string{
			SeasonAdvent: "Avvento", SeasonChristmas: "Natale", SeasonOrdinaryTime: "Tempo Ordinario",
			SeasonLent: "Quaresima", SeasonEasterTriduum: "Triduo Pasquale", SeasonEaster: "Pasqua",
		},
	},
	{
		tag:    language.Spanish,
		monday: monday.LocaleEsES,
		layouts: map[DateFormat]string{
			DateFull: "Monday, 2 de January de 2006", DateLong: "2 de January de 2006", DateMedium: "2 Jan 2006",
			DateShort: "2/1/06", DateDayOnly: "Monday 2",
		},
		messages: map[string]string{
			msgOr: "o", msgMonth: "Mes", msgLiturgicalSeason: "Tiempo litúrgico", msgDate: "Fecha",
			msgEventDetails: "Detalles de la celebración", msgGrade: "Grado", msgPsalter: "Salterio",
			msgCaption: "Calendario litúrgico %s", msgGeneralCalendar: "Calendario Romano General",
		},
		seasons: map[Season]string{
			SeasonAdvent: "Adviento", SeasonChristmas: "Navidad", SeasonOrdinaryTime: "Tiempo Ordinario",
			SeasonLent: "Cuaresma", SeasonEasterTriduum: "Triduo Pascual", SeasonEaster: "Pascua",
		},
	},
	{
		tag:    language.French,
		monday: monday.LocaleFrFR,
		layouts: map[DateFormat]string{
			DateFull: "Monday 2 January 2006", DateLong: "2 January 2006", DateMedium: "2 Jan 2006",
			DateShort: "02/01/2006", DateDayOnly: "Monday 2",
		},
		messages: map[string]string{
			msgOr: "ou", msgMonth: "Mois", msgLiturgicalSeason: "Temps liturgique", msgDate: "Date",
			msgEventDetails: "Détails de la célébration", msgGrade: "Degré", msgPsalter: "Psautier",
			msgCaption: "Calendrier liturgique %s", msgGeneralCalendar: "Calendrier romain général",
		},
		seasons: map[Season]string{
			SeasonAdvent: "Avent", SeasonChristmas: "Temps de Noël", SeasonOrdinaryTime: "Temps ordinaire",
			SeasonLent: "Carême", SeasonEasterTriduum: "Triduum pascal", SeasonEaster: "Temps pascal",
		},
	},
	{
		tag:    language.German,
		monday: monday.LocaleDeDE,
		layouts: map[DateFormat]string{
			DateFull: "Monday, 2. January 2006", DateLong: "2. January 2006", DateMedium: "02.01.2006",
			DateShort: "02.01.06", DateDayOnly: "Monday, 2.",
		},
		messages: map[string]string{
			msgOr: "oder", msgMonth: "Monat", msgLiturgicalSeason: "Liturgische Zeit", msgDate: "Datum",
			msgEventDetails: "Feier", msgGrade: "Rang", msgPsalter: "Psalter",
			msgCaption: "Liturgischer Kalender %s", msgGeneralCalendar: "Allgemeiner Römischer Kalender",
		},
		seasons: map[Season]string{
			SeasonAdvent: "Advent", SeasonChristmas: "Weihnachtszeit", SeasonOrdinaryTime: "Zeit im Jahreskreis",
			SeasonLent: "Fastenzeit", SeasonEasterTriduum: "Österliches Triduum", SeasonEaster: "Osterzeit",
		},
	},
	{
		tag:    language.Portuguese,
		monday: monday.LocalePtPT,
		layouts: map[DateFormat]string{
			DateFull: "Monday, 2 de January de 2006", DateLong: "2 de January de 2006", DateMedium: "2 de Jan de 2006",
			DateShort: "02/01/2006", DateDayOnly: "Monday 2",
		},
		messages: map[string]string{
			msgOr: "ou", msgMonth: "Mês", msgLiturgicalSeason: "Tempo litúrgico", msgDate: "Data",
			msgEventDetails: "Detalhes da celebração", msgGrade: "Grau", msgPsalter: "Saltério",
			msgCaption: "Calendário litúrgico %s", msgGeneralCalendar: "Calendário Romano Geral",
		},
		seasons: map[Season]string{
			SeasonAdvent: "Advento", SeasonChristmas: "Natal", SeasonOrdinaryTime: "Tempo Comum",
			SeasonLent: "Quaresma", SeasonEasterTriduum: "Tríduo Pascal", SeasonEaster: "Páscoa",
		},
	},
	{
		tag:    language.Dutch,
		monday: monday.LocaleNlNL,
		layouts: map[DateFormat]string{
			DateFull: "Monday 2 January 2006", DateLong: "2 January 2006", DateMedium: "2 Jan 2006",
			DateShort: "02-01-2006", DateDayOnly: "Monday 2",
		},
		messages: map[string]string{
			msgOr: "of", msgMonth: "Maand", msgLiturgicalSeason: "Liturgische tijd", msgDate: "Datum",
			msgEventDetails: "Viering", msgGrade: "Rang", msgPsalter: "Psalter",
			msgCaption: "Liturgische kalender %s", msgGeneralCalendar: "Algemene Romeinse kalender",
		},
		seasons: map[Season]string{
			SeasonAdvent: "Advent", SeasonChristmas: "Kersttijd", SeasonOrdinaryTime: "Door het jaar",
			SeasonLent: "Veertigdagentijd", SeasonEasterTriduum: "Paastriduüm", SeasonEaster: "Paastijd",
		},
	},
	{
		tag:   latinTag,
		latin: &latinNames{
			months:      [12]string{"Ianuarius", "Februarius", "Martius", "Aprilis", "Maius", "Iunius", "Iulius", "Augustus", "September", "October", "November", "December"},
			monthsShort: [12]string{"Ian", "Feb", "Mar", "Apr", "Mai", "Iun", "Iul", "Aug", "Sep", "Oct", "Nov", "Dec"},
			weekdays:    [7]string{"Dominica", "Feria II", "Feria III", "Feria IV", "Feria V", "Feria VI", "Sabbato"},
			patterns: map[DateFormat]string{
				DateFull: "{W}, {D} {M} {Y}", DateLong: "{D} {M} {Y}", DateMedium: "{D} {m} {Y}",
				DateShort: "{D}.{n}.{Y}", DateDayOnly: "{W} {D}",
			},
		},
		messages: map[string]string{
			msgOr: "vel", msgMonth: "Mensis", msgLiturgicalSeason: "Tempus liturgicum", msgDate: "Dies",
			msgEventDetails: "Celebratio", msgGrade: "Gradus", msgPsalter: "Psalterium",
			msgCaption: "Calendarium liturgicum %s", msgGeneralCalendar: "Calendarium Romanum Generale",
		},
		seasons: map[Season]string{
			SeasonAdvent: "Tempus Adventus", SeasonChristmas: "Tempus Nativitatis", SeasonOrdinaryTime: "Tempus per annum",
			SeasonLent: "Tempus Quadragesimae", SeasonEasterTriduum: "Triduum Paschale", SeasonEaster: "Tempus Paschale",
		},
	},
}

// Locale renders dates and labels in one language.
type Locale struct {
	Tag  language.Tag
	data *localeData
	cat  catalog.Catalog
}

// IsLatin reports whether the locale uses the fixed Latin tables.
func (l *Locale) IsLatin() bool {
	return l.data.latin != nil
}

// MonthName returns the month name as it appears inside a date.
func (l *Locale) MonthName(m time.Month) string {
	if l.IsLatin() {
		return l.data.latin.months[m-1]
	}
	return monday.Format(time.Date(2001, m, 1, 0, 0, 0, 0, time.UTC), "January", l.data.monday)
}

// MonthLabel returns the capitalized month name used as a cell label.
func (l *Locale) MonthLabel(m time.Month) string {
	return cases.Title(l.data.tag, cases.NoLower).String(l.MonthName(m))
}

// WeekdayName returns the name of the weekday.
func (l *Locale) WeekdayName(d time.Weekday) string {
	if l.IsLatin() {
		return l.data.latin.weekdays[d]
	}
	// 2001-01-07 is a Sunday.
	return monday.Format(time.Date(2001, time.January, 7+int(d), 0, 0, 0, 0, time.UTC), "Monday", l.data.monday)
}

// FormatDate writes t with the locale's pattern for format.
func (l *Locale) FormatDate(t time.Time, format DateFormat) string {
	if !l.IsLatin() {
		layout, ok := l.data.layouts[format]
		if !ok {
			layout = l.data.layouts[DateFull]
		}
		return monday.Format(t, layout, l.data.monday)
	}

	names := l.data.latin
	pattern, ok := names.patterns[format]
	if !ok {
		pattern = names.patterns[DateFull]
	}
	r := strings.NewReplacer(
		"{W}", names.weekdays[t.Weekday()],
		"{D}", strconv.Itoa(t.Day()),
		"{M}", names.months[t.Month()-1],
		"{m}", names.monthsShort[t.Month()-1],
		"{n}", strconv.Itoa(int(t.Month())),
		"{Y}", strconv.Itoa(t.Year()),
	)
	return r.Replace(pattern)
}

// SeasonName returns the localized name of a season.
func (l *Locale) SeasonName(s Season) string {
	if name, ok := l.data.seasons[s]; ok {
		return name
	}
	return string(s)
}

// NewPrinter returns a message printer for the locale's UI strings.
// Printers are not safe for concurrent use; take one per build.
func (l *Locale) NewPrinter() *message.Printer {
	return message.NewPrinter(l.data.tag, message.Catalog(l.cat))
}

// LocaleCache resolves BCP-47 tags to locales and keeps them for the life of
// the cache. Share one per application; tests can take a fresh one.
type LocaleCache struct {
	mu      sync.Mutex
	byTag   map[string]*Locale
	matcher language.Matcher
	cat     *catalog.Builder
}

// NewLocaleCache builds the message catalog of every supported language.
func NewLocaleCache() *LocaleCache {
	tags := make([]language.Tag, len(supportedLocales))
	cat := catalog.NewBuilder(catalog.Fallback(language.English))
	for i := range supportedLocales {
		ld := &supportedLocales[i]
		tags[i] = ld.tag
		for key, msg := range ld.messages {
			// Keys and messages are static; SetString only fails on malformed input.
			_ = cat.SetString(ld.tag, key, msg)
		}
	}
	return &LocaleCache{
		byTag:   make(map[string]*Locale),
		matcher: language.NewMatcher(tags),
		cat:     cat,
	}
}

// Get returns the best supported locale for tag, falling back to English.
func (c *LocaleCache) Get(tag string) *Locale {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))

	c.mu.Lock()
	defer c.mu.Unlock()

	if loc, ok := c.byTag[key]; ok {
		return loc
	}

	requested, err := language.Parse(key)
	if err != nil {
		requested = language.English
	}
	_, idx, conf := c.matcher.Match(requested)
	if conf == language.No {
		idx = 0
	}

	loc := &Locale{
		Tag:  requested,
		data: &supportedLocales[idx],
		cat:  c.cat,
	}
	c.byTag[key] = loc
	return loc
}
