package webcalendar

import (
	"slices"
	"testing"
	"time"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func event(t *testing.T, key, date string, season Season) Event {
	t.Helper()
	return Event{
		EventKey:         key,
		Name:             key,
		Date:             day(t, date),
		Color:            []string{season.Color()},
		ColorLcl:         []string{season.Color()},
		Grade:            3,
		GradeLcl:         "memorial",
		GradeAbbr:        "m",
		LiturgicalSeason: season,
		PsalterWeek:      1,
	}
}

// sentinels2025 are the reference events of the 2025 civil year.
func sentinels2025(t *testing.T) []Event {
	t.Helper()
	dates := []struct{ key, date string }{
		{KeyBaptismLord, "2025-01-12"},
		{KeyAshWednesday, "2025-03-05"},
		{KeyHolyThursday, "2025-04-17"},
		{KeyEaster, "2025-04-20"},
		{KeyPentecost, "2025-06-08"},
		{KeyChristKing, "2025-11-23"},
		{KeyAdvent1Vigil, "2025-11-29"},
		{KeyAdvent1, "2025-11-30"},
		{KeyChristmas, "2025-12-25"},
	}
	events := make([]Event, 0, len(dates))
	for _, d := range dates {
		events = append(events, Event{EventKey: d.key, Name: d.key, Date: day(t, d.date), Grade: 6})
	}
	return events
}

// dataset sorts events by date, keeping the given order within a day.
func dataset(events ...Event) *Dataset {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int { return a.Date.Compare(b.Date) })
	return &Dataset{
		Events:   sorted,
		Settings: Settings{Year: 2025, YearType: YearTypeCivil, Locale: "en"},
		Messages: []string{},
	}
}

func buildTable(t *testing.T, ds *Dataset, opts ...Option) *Table {
	t.Helper()
	o, err := DefaultOptions().Apply(opts...)
	if err != nil {
		t.Fatalf("apply options: %v", err)
	}
	tbl, err := NewTableBuilder(o, NewLocaleCache().Get(o.Locale)).Build(ds)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return tbl
}

// checkGrid lays the body out the way a browser would and fails unless every
// row is covered exactly once in every column and no span runs past the end.
func checkGrid(t *testing.T, tbl *Table) {
	t.Helper()
	width := len(tbl.Cols)
	pending := make([]int, width)

	for r, row := range tbl.Body {
		col := 0
		for _, cell := range row.Cells {
			for col < width && pending[col] > 0 {
				col++
			}
			span := max(cell.ColSpan, 1)
			rows := max(cell.RowSpan, 1)
			if col+span > width {
				t.Fatalf("row %d: cell %q overflows %d columns", r, cell.Text(), width)
			}
			for k := col; k < col+span; k++ {
				if pending[k] > 0 {
					t.Fatalf("row %d: cell %q overlaps a span in column %d", r, cell.Text(), k)
				}
				pending[k] = rows
			}
			col += span
		}
		for k := range pending {
			if pending[k] == 0 {
				t.Fatalf("row %d: column %d not covered", r, k)
			}
			pending[k]--
		}
	}
	for k, left := range pending {
		if left != 0 {
			t.Fatalf("column %d: span runs %d rows past the table", k, left)
		}
	}
}

// cellsOf returns the body cells for column col, in document order.
func cellsOf(tbl *Table, col Column) []*Cell {
	var out []*Cell
	for _, row := range tbl.Body {
		for _, cell := range row.Cells {
			if cell.Column == col && !cell.HasClass(classMonthHeader) {
				out = append(out, cell)
			}
		}
	}
	return out
}

func countRows(tbl *Table, class string) int {
	n := 0
	for _, row := range tbl.Body {
		if slices.Contains(row.Classes, class) {
			n++
		}
	}
	return n
}

func sumSpans(cells []*Cell) int {
	total := 0
	for _, c := range cells {
		total += max(c.RowSpan, 1)
	}
	return total
}
