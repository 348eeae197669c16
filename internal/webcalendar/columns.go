package webcalendar

import (
	"fmt"
	"strings"
)

// Column identifies one column of the calendar table. Values are bit flags
// and can be combined with |.
type Column int

const (
	ColumnNone             Column = 0
	ColumnLiturgicalSeason Column = 1 << 0
	ColumnMonth            Column = 1 << 1
	ColumnDate             Column = 1 << 2
	ColumnEventDetails     Column = 1 << 3
	ColumnGrade            Column = 1 << 4
	ColumnPsalterWeek      Column = 1 << 5

	// ColumnAll is the mask of every valid flag.
	ColumnAll Column = ColumnLiturgicalSeason | ColumnMonth | ColumnDate |
		ColumnEventDetails | ColumnGrade | ColumnPsalterWeek
)

var columnNames = []struct {
	col  Column
	name string
}{
	{ColumnLiturgicalSeason, "liturgical_season"},
	{ColumnMonth, "month"},
	{ColumnDate, "date"},
	{ColumnEventDetails, "event_details"},
	{ColumnGrade, "grade"},
	{ColumnPsalterWeek, "psalter_week"},
}

// String returns the flags joined with "|", e.g. "month|date".
func (c Column) String() string {
	switch c {
	case ColumnNone:
		return "none"
	case ColumnAll:
		return "all"
	}
	var parts []string
	for _, cn := range columnNames {
		if c&cn.col != 0 {
			parts = append(parts, cn.name)
		}
	}
	if rest := c &^ ColumnAll; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", int(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseColumns parses a list of column names separated by "|" or ",".
// "none" and "all" are accepted as whole values.
func ParseColumns(s string) (Column, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none":
		return ColumnNone, nil
	case "all":
		return ColumnAll, nil
	}

	var out Column
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.ReplaceAll(strings.TrimSpace(part), "-", "_")
		found := false
		for _, cn := range columnNames {
			if cn.name == part {
				out |= cn.col
				found = true
				break
			}
		}
		if !found {
			return ColumnNone, fmt.Errorf("unknown column %q", part)
		}
	}
	return out, nil
}

// ColumnSet is a bitfield over the table columns. The stored value is always
// ColumnNone or a combination of valid flags.
type ColumnSet struct {
	v Column
}

// NewColumnSet returns a set holding cols. Invalid bits are rejected.
func NewColumnSet(cols Column) (ColumnSet, error) {
	var cs ColumnSet
	err := cs.Set(cols)
	return cs, err
}

// Add sets the bits of flag.
func (cs *ColumnSet) Add(flag Column) {
	cs.v |= flag & ColumnAll
}

// Remove clears the bits of flag.
func (cs *ColumnSet) Remove(flag Column) {
	cs.v &^= flag & ColumnAll
}

// Toggle flips the bits of flag.
func (cs *ColumnSet) Toggle(flag Column) {
	cs.v ^= flag & ColumnAll
}

// Clear empties the set.
func (cs *ColumnSet) Clear() {
	cs.v = ColumnNone
}

// SetAll enables every column.
func (cs *ColumnSet) SetAll() {
	cs.v = ColumnAll
}

// Set replaces the stored value. Anything other than ColumnNone must consist
// only of valid column bits.
func (cs *ColumnSet) Set(flag Column) error {
	if flag != ColumnNone && (flag < 0 || flag&^ColumnAll != 0) {
		return &ConfigurationError{
			Option: "columns",
			Value:  int(flag),
			Reason: fmt.Sprintf("bits outside the valid column mask 0x%x", int(ColumnAll)),
		}
	}
	cs.v = flag
	return nil
}

// Has reports whether every bit of flag is in the set.
func (cs ColumnSet) Has(flag Column) bool {
	return cs.v&flag == flag
}

// Get returns the raw bitfield.
func (cs ColumnSet) Get() Column {
	return cs.v
}

func (cs ColumnSet) String() string {
	return cs.v.String()
}
