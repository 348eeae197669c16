package webcalendar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OptionsFile is the YAML form of the table options. Unset fields keep their
// current value.
//
//	first_column_grouping: BY_MONTH
//	season_color: BACKGROUND
//	season_color_columns: [date, month]
//	month_header: true
//	locale: it
type OptionsFile struct {
	FirstColumnGrouping string     `yaml:"first_column_grouping,omitempty"`
	ColumnOrder         string     `yaml:"column_order,omitempty"`
	DateFormat          string     `yaml:"date_format,omitempty"`
	GradeDisplay        string     `yaml:"grade_display,omitempty"`
	EventColor          string     `yaml:"event_color,omitempty"`
	SeasonColor         string     `yaml:"season_color,omitempty"`
	EventColorColumns   ColumnList `yaml:"event_color_columns,omitempty"`
	SeasonColorColumns  ColumnList `yaml:"season_color_columns,omitempty"`
	RemoveCaption       *bool      `yaml:"remove_caption,omitempty"`
	RemoveHeaderRow     *bool      `yaml:"remove_header_row,omitempty"`
	MonthHeader         *bool      `yaml:"month_header,omitempty"`
	PsalterWeekColumn   *bool      `yaml:"psalter_week_column,omitempty"`
	Locale              string     `yaml:"locale,omitempty"`
	ID                  string     `yaml:"id,omitempty"`
	Class               string     `yaml:"class,omitempty"`
}

// ColumnList is a set of column names written either as one scalar
// ("date|month", "all", or a bitfield integer) or as a sequence of names.
// A nil list means the field was not set.
type ColumnList []string

func (cl *ColumnList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*cl = ColumnList{node.Value}
		return nil
	case yaml.SequenceNode:
		out := make(ColumnList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: column names must be scalars", item.Line)
			}
			out = append(out, item.Value)
		}
		*cl = out
		return nil
	}
	return fmt.Errorf("line %d: columns must be a name, a number or a list of names", node.Line)
}

// value joins the list into the form ParseOption accepts.
func (cl ColumnList) value() string {
	if len(cl) == 0 {
		return "none"
	}
	return strings.Join(cl, "|")
}

// Options converts the file into options, validating every value.
func (f *OptionsFile) Options() ([]Option, error) {
	var (
		opts []Option
		errs []error
	)
	add := func(name, value string) {
		opt, err := ParseOption(name, value)
		if err != nil {
			errs = append(errs, err)
			return
		}
		opts = append(opts, opt)
	}
	addString := func(name, value string) {
		if value != "" {
			add(name, value)
		}
	}
	addBool := func(name string, value *bool) {
		if value != nil {
			add(name, strconv.FormatBool(*value))
		}
	}
	addColumns := func(name string, value ColumnList) {
		if value != nil {
			add(name, value.value())
		}
	}

	addString("firstColumnGrouping", f.FirstColumnGrouping)
	addString("columnOrder", f.ColumnOrder)
	addString("dateFormat", f.DateFormat)
	addString("gradeDisplay", f.GradeDisplay)
	addString("eventColor", f.EventColor)
	addString("seasonColor", f.SeasonColor)
	addColumns("eventColorColumns", f.EventColorColumns)
	addColumns("seasonColorColumns", f.SeasonColorColumns)
	addBool("removeCaption", f.RemoveCaption)
	addBool("removeHeaderRow", f.RemoveHeaderRow)
	addBool("monthHeader", f.MonthHeader)
	addBool("psalterWeekColumn", f.PsalterWeekColumn)
	addString("locale", f.Locale)
	addString("id", f.ID)
	addString("class", f.Class)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return opts, nil
}

// DecodeOptionsFile reads YAML options from r. Unknown keys are rejected.
func DecodeOptionsFile(r io.Reader) (*OptionsFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f OptionsFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return &f, nil
}

// LoadOptionsFile reads and validates the options file at path.
func LoadOptionsFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}
	f, err := DecodeOptionsFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts, err := f.Options()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}
