package webcalendar

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/message"
)

// Cell and column classes.
const (
	classRotate      = "rotate"
	classMonthHeader = "month-header"
)

var columnClasses = map[Column]string{
	ColumnLiturgicalSeason: "liturgical-season",
	ColumnMonth:            "month",
	ColumnDate:             "date",
	ColumnEventDetails:     "event-details",
	ColumnGrade:            "grade",
	ColumnPsalterWeek:      "psalter-week",
}

var columnLabels = map[Column]string{
	ColumnLiturgicalSeason: msgLiturgicalSeason,
	ColumnMonth:            msgMonth,
	ColumnDate:             msgDate,
	ColumnEventDetails:     msgEventDetails,
	ColumnGrade:            msgGrade,
	ColumnPsalterWeek:      msgPsalter,
}

var psalterLabels = [...]string{"", "I", "II", "III", "IV"}

// movableFeastKey matches the Sundays whose rank is implied by the season.
var movableFeastKey = regexp.MustCompile(`^(OrdSunday\d+|Advent\d|Lent\d|Easter\d)(_vigil)?$`)

// GradeLabel returns the text of the grade column for ev. An explicit
// grade_display always wins; otherwise ferias and the seasonal Sundays get
// no label.
func GradeLabel(ev *Event, display GradeDisplay) string {
	if ev.GradeDisplay != nil {
		return *ev.GradeDisplay
	}
	if ev.Grade == 0 || movableFeastKey.MatchString(ev.EventKey) {
		return ""
	}
	if display == GradeAbbreviated {
		return ev.GradeAbbr
	}
	return ev.GradeLcl
}

// PsalterLabel returns the roman numeral of a psalter week, or "".
func PsalterLabel(week int) string {
	if week < 0 || week >= len(psalterLabels) {
		return ""
	}
	return psalterLabels[week]
}

// TableBuilder lays a dataset out as a Table. A builder holds no state
// between builds and may be reused.
type TableBuilder struct {
	opts Options
	loc  *Locale
}

func NewTableBuilder(opts Options, loc *Locale) *TableBuilder {
	return &TableBuilder{opts: opts, loc: loc}
}

// Build walks the events once and returns the table. Events must already be
// sorted by date; unsorted input is rejected, never re-sorted. An empty event
// list yields a table with no body rows.
func (b *TableBuilder) Build(ds *Dataset) (*Table, error) {
	if ds == nil {
		return nil, &InputContractError{Reason: "dataset is nil"}
	}
	if err := checkSorted(ds.Events); err != nil {
		return nil, err
	}

	p := b.loc.NewPrinter()
	t := &Table{
		ID:      b.opts.TableID,
		Classes: strings.Fields(b.opts.TableClass),
		Body:    []*Row{},
	}

	layout := b.layout()
	for _, col := range layout {
		t.Cols = append(t.Cols, Col{Column: col, Class: columnClasses[col]})
	}
	if !b.opts.RemoveCaption {
		t.Caption = b.caption(ds, p)
	}
	if !b.opts.RemoveHeaderRow {
		header := &Row{}
		for _, col := range layout {
			header.Cells = append(header.Cells, &Cell{
				Header:  true,
				Column:  col,
				Classes: []string{columnClasses[col]},
				Content: []Node{TextNode(p.Sprintf(columnLabels[col]))},
			})
		}
		t.Header = header
	}

	w := &walker{
		b:        b,
		p:        p,
		table:    t,
		events:   ds.Events,
		resolver: NewSeasonResolver(ds),
	}
	if err := w.walk(); err != nil {
		return nil, err
	}
	return t, nil
}

// layout returns the columns in display order.
func (b *TableBuilder) layout() []Column {
	first := ColumnLiturgicalSeason
	if b.opts.FirstColumnGrouping == GroupByMonth {
		first = ColumnMonth
	}
	cols := []Column{first, ColumnDate}
	if b.opts.ColumnOrder == GradeFirst {
		cols = append(cols, ColumnGrade, ColumnEventDetails)
	} else {
		cols = append(cols, ColumnEventDetails, ColumnGrade)
	}
	if b.opts.PsalterWeekColumn {
		cols = append(cols, ColumnPsalterWeek)
	}
	return cols
}

func (b *TableBuilder) caption(ds *Dataset, p *message.Printer) string {
	name := ds.Metadata.DioceseName
	if name == "" {
		name = ds.Metadata.NationalCalName
	}
	if name == "" {
		name = ds.Settings.NationalCalendar
	}
	if name == "" {
		name = p.Sprintf(msgGeneralCalendar)
	}

	year := ds.Settings.Year
	if year == 0 && len(ds.Events) > 0 {
		year = ds.Events[0].Date.Year()
	}
	if year == 0 {
		return name
	}
	return name + " - " + p.Sprintf(msgCaption, strconv.Itoa(year))
}

// walker is the bookkeeping of a single build. The open season and psalter
// cells stay reachable so an interposed month header row can extend them.
type walker struct {
	b        *TableBuilder
	p        *message.Printer
	table    *Table
	events   []Event
	resolver *SeasonResolver

	lastMonth  time.Month
	lastSeason Season

	monthCount   int
	seasonCount  int
	psalterCount int

	openSeason  *Cell
	openPsalter *Cell
}

func (w *walker) walk() error {
	for i := 0; i < len(w.events); {
		sameDay := CountSameDay(w.events, i)
		for ev := 0; ev <= sameDay; ev++ {
			dayIndex := -1
			if sameDay > 0 {
				dayIndex = ev
			}
			if err := w.emit(i+ev, dayIndex, sameDay); err != nil {
				return err
			}
		}
		i += sameDay + 1
	}
	return nil
}

// emit writes the row of events[idx], preceded by a month header row when
// one is due. dayIndex is -1 for a date with a single event, otherwise the
// position of the event within its day.
func (w *walker) emit(idx, dayIndex, sameDay int) error {
	opts := &w.b.opts
	ev := &w.events[idx]

	season, err := w.resolver.Resolve(ev)
	if err != nil {
		return err
	}

	newMonth := ev.Date.Month() != w.lastMonth
	if newMonth {
		w.lastMonth = ev.Date.Month()
		w.monthCount = CountSameMonth(w.events, idx)
	}

	newSeason := season != w.lastSeason
	if newSeason {
		w.lastSeason = season
		if w.seasonCount, err = CountSameSeason(w.events, idx, w.resolver); err != nil {
			return err
		}
	}

	newPsalter := false
	if opts.PsalterWeekColumn {
		newPsalter = idx == 0 || !continuesPsalterWeek(&w.events[idx-1], ev)
		if newPsalter {
			w.psalterCount = CountSamePsalterWeek(w.events, idx)
		}
	}

	var header *Row
	if opts.MonthHeader && newMonth {
		header = &Row{Classes: []string{classMonthHeader}}
		w.table.Body = append(w.table.Body, header)
	}
	row := &Row{}

	// place puts a merged cell in the header row when there is one, where it
	// occupies an extra row of its span.
	place := func(cell *Cell) {
		if header != nil {
			cell.RowSpan++
			header.Cells = append(header.Cells, cell)
			return
		}
		row.Cells = append(row.Cells, cell)
	}

	switch opts.FirstColumnGrouping {
	case GroupByMonth:
		if newMonth {
			place(w.monthCell(ev, season))
		}
	default:
		if newSeason {
			w.openSeason = w.seasonCell(ev, season)
			place(w.openSeason)
		} else if header != nil && w.openSeason != nil {
			w.openSeason.RowSpan++
		}
	}

	if header != nil {
		header.Cells = append(header.Cells, w.monthHeaderCell(ev, season))
	}

	var psalter *Cell
	if opts.PsalterWeekColumn {
		if newPsalter {
			w.openPsalter = w.psalterCell(ev, season)
			if header != nil {
				place(w.openPsalter)
			} else {
				psalter = w.openPsalter
			}
		} else if header != nil && w.openPsalter != nil {
			w.openPsalter.RowSpan++
		}
	}

	if dayIndex <= 0 {
		date := &Cell{Column: ColumnDate, Classes: []string{columnClasses[ColumnDate]}}
		if dayIndex == 0 {
			date.RowSpan = sameDay + 1
		}
		date.Append(TextNode(w.b.loc.FormatDate(ev.Date, opts.DateFormat)))
		w.colorize(date, ev, season)
		row.Cells = append(row.Cells, date)
	}

	details, grade := w.detailsCell(ev, season), w.gradeCell(ev, season)
	if opts.ColumnOrder == GradeFirst {
		row.Cells = append(row.Cells, grade, details)
	} else {
		row.Cells = append(row.Cells, details, grade)
	}

	if psalter != nil {
		row.Cells = append(row.Cells, psalter)
	}

	w.table.Body = append(w.table.Body, row)
	return nil
}

// colorize applies the season policy, then the event policy, to cell.
func (w *walker) colorize(cell *Cell, ev *Event, season Season) {
	w.b.opts.SeasonColor.Apply([]string{season.Color()}, cell, cell.Column)
	w.b.opts.EventColor.Apply(ev.Color, cell, cell.Column)
}

func (w *walker) monthCell(ev *Event, season Season) *Cell {
	cell := &Cell{
		Column:  ColumnMonth,
		Classes: []string{columnClasses[ColumnMonth], classRotate},
		RowSpan: w.monthCount + 1,
	}
	cell.Append(TextNode(w.b.loc.MonthLabel(ev.Date.Month())))
	w.colorize(cell, ev, season)
	return cell
}

func (w *walker) seasonCell(ev *Event, season Season) *Cell {
	label := ev.LiturgicalSeasonLcl
	if label == "" || ev.LiturgicalSeason == "" {
		label = w.b.loc.SeasonName(season)
	}
	cell := &Cell{
		Column:  ColumnLiturgicalSeason,
		Classes: []string{columnClasses[ColumnLiturgicalSeason], classRotate},
		RowSpan: w.seasonCount + 1,
	}
	cell.Append(TextNode(label))
	w.colorize(cell, ev, season)
	return cell
}

func (w *walker) monthHeaderCell(ev *Event, season Season) *Cell {
	cell := &Cell{
		Header:  true,
		Column:  ColumnMonth,
		Classes: []string{classMonthHeader},
		ColSpan: 3,
	}
	cell.Append(TextNode(w.b.loc.MonthLabel(ev.Date.Month())))
	w.b.opts.SeasonColor.Apply([]string{season.Color()}, cell, ColumnMonth)
	return cell
}

func (w *walker) psalterCell(ev *Event, season Season) *Cell {
	cell := &Cell{
		Column:  ColumnPsalterWeek,
		Classes: []string{columnClasses[ColumnPsalterWeek]},
		RowSpan: w.psalterCount + 1,
	}
	cell.Append(TextNode(PsalterLabel(ev.PsalterWeek)))
	w.colorize(cell, ev, season)
	return cell
}

func (w *walker) detailsCell(ev *Event, season Season) *Cell {
	cell := &Cell{Column: ColumnEventDetails, Classes: []string{columnClasses[ColumnEventDetails]}}

	name := ev.Name
	if ev.LiturgicalYear != "" {
		name += " (" + ev.LiturgicalYear + ")"
	}
	cell.Append(TextNode(name))

	colors := ev.ColorLcl
	if len(colors) == 0 {
		colors = ev.Color
	}
	if len(colors) > 0 {
		cell.Append(LineBreakNode(), EmphasisNode(strings.Join(colors, " "+w.p.Sprintf(msgOr)+" ")))
	}
	if ev.CommonLcl != "" {
		cell.Append(LineBreakNode(), EmphasisNode(ev.CommonLcl))
	}

	w.colorize(cell, ev, season)
	return cell
}

func (w *walker) gradeCell(ev *Event, season Season) *Cell {
	cell := &Cell{Column: ColumnGrade, Classes: []string{columnClasses[ColumnGrade]}}
	if label := GradeLabel(ev, w.b.opts.GradeDisplay); label != "" {
		cell.Append(TextNode(label))
	}
	w.colorize(cell, ev, season)
	return cell
}
