package webcalendar

import (
	"fmt"
	"slices"
	"strings"
)

// ColorMode selects how a color is shown in a cell.
type ColorMode int

const (
	ColorBackground ColorMode = iota
	ColorCSSClass
	ColorIndicator
	ColorNone
)

var colorModeNames = map[ColorMode]string{
	ColorBackground: "BACKGROUND",
	ColorCSSClass:   "CSS_CLASS",
	ColorIndicator:  "INDICATOR",
	ColorNone:       "NONE",
}

func (m ColorMode) String() string {
	if name, ok := colorModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

// Valid reports whether m is a defined mode.
func (m ColorMode) Valid() bool {
	_, ok := colorModeNames[m]
	return ok
}

// ParseColorMode parses a mode name such as "background" or "CSS_CLASS".
func ParseColorMode(s string) (ColorMode, error) {
	return parseEnum(s, colorModeNames)
}

// highContrast are the background colors that need white text.
var highContrast = map[string]bool{
	"purple": true,
	"red":    true,
	"green":  true,
}

// Indicator swatch geometry.
const (
	swatchSize   = "10px"
	swatchRadius = "5px"
)

// ColorPolicy applies one color treatment to a chosen set of columns.
type ColorPolicy struct {
	Mode    ColorMode
	Columns ColumnSet
}

// Apply decorates cell with colors when col is enabled for the policy.
// Only the first color is used for backgrounds and classes; indicators are
// drawn for every color.
func (p ColorPolicy) Apply(colors []string, cell *Cell, col Column) {
	if !p.Columns.Has(col) || len(colors) == 0 {
		return
	}

	switch p.Mode {
	case ColorBackground:
		primary := strings.ToLower(colors[0])
		cell.SetStyle("background-color", primary)
		if highContrast[primary] {
			cell.SetStyle("color", "white")
		}
	case ColorCSSClass:
		cell.AddClass(strings.ToLower(colors[0]))
	case ColorIndicator:
		swatches := make([]Node, 0, len(colors))
		for _, color := range colors {
			swatches = append(swatches, swatchNode(strings.ToLower(color)))
		}
		cell.Prepend(swatches...)
	case ColorNone:
	}
}

func swatchNode(color string) Node {
	return Node{
		Kind: NodeSwatch,
		Text: color,
		Styles: []Style{
			{Property: "background-color", Value: color},
			{Property: "width", Value: swatchSize},
			{Property: "height", Value: swatchSize},
			{Property: "display", Value: "inline-block"},
			{Property: "border", Value: "1px solid black"},
			{Property: "border-radius", Value: swatchRadius},
			{Property: "margin-right", Value: "5px"},
		},
	}
}

// parseEnum looks a value up by name, case-insensitively; "-" and " " are
// treated as "_".
func parseEnum[T comparable](s string, names map[T]string) (T, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for v, name := range names {
		if name == norm {
			return v, nil
		}
	}
	var zero T
	valid := make([]string, 0, len(names))
	for _, name := range names {
		valid = append(valid, name)
	}
	slices.Sort(valid)
	return zero, fmt.Errorf("unknown value %q (valid: %s)", s, strings.Join(valid, ", "))
}
