package webcalendar

import (
	"bufio"
	"html"
	"io"
	"strconv"
	"strings"
)

// Table is the abstract output of a build. It carries everything needed to
// render the calendar (rows, spans, classes, inline styles) and nothing tied
// to a particular document model.
type Table struct {
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classes,omitempty"`
	Cols    []Col    `json:"cols"`
	Caption string   `json:"caption,omitempty"`
	Header  *Row     `json:"header,omitempty"`
	Body    []*Row   `json:"body"`
}

// Col is one <col> of the column group.
type Col struct {
	Column Column `json:"column"`
	Class  string `json:"class"`
}

// Row is a table row.
type Row struct {
	Classes []string `json:"classes,omitempty"`
	Cells   []*Cell  `json:"cells"`
}

// Style is one inline CSS declaration.
type Style struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// Cell is a table cell. A RowSpan or ColSpan of 0 means "not set".
type Cell struct {
	Header  bool     `json:"header,omitempty"`
	Column  Column   `json:"column"`
	Classes []string `json:"classes,omitempty"`
	Styles  []Style  `json:"styles,omitempty"`
	RowSpan int      `json:"rowspan,omitempty"`
	ColSpan int      `json:"colspan,omitempty"`
	Content []Node   `json:"content,omitempty"`
}

// AddClass appends a class unless already present.
func (c *Cell) AddClass(class string) {
	for _, existing := range c.Classes {
		if existing == class {
			return
		}
	}
	c.Classes = append(c.Classes, class)
}

// SetStyle sets a CSS property, replacing an earlier value for it.
func (c *Cell) SetStyle(property, value string) {
	for i := range c.Styles {
		if c.Styles[i].Property == property {
			c.Styles[i].Value = value
			return
		}
	}
	c.Styles = append(c.Styles, Style{Property: property, Value: value})
}

// Style returns the value of a CSS property, or "".
func (c *Cell) Style(property string) string {
	for _, s := range c.Styles {
		if s.Property == property {
			return s.Value
		}
	}
	return ""
}

// HasClass reports whether the cell carries class.
func (c *Cell) HasClass(class string) bool {
	for _, existing := range c.Classes {
		if existing == class {
			return true
		}
	}
	return false
}

// Append adds nodes after the existing content.
func (c *Cell) Append(nodes ...Node) {
	c.Content = append(c.Content, nodes...)
}

// Prepend inserts nodes, in order, before the existing content.
func (c *Cell) Prepend(nodes ...Node) {
	c.Content = append(append([]Node{}, nodes...), c.Content...)
}

// Text returns the concatenated text of the cell, ignoring markup.
func (c *Cell) Text() string {
	var b strings.Builder
	for _, n := range c.Content {
		switch n.Kind {
		case NodeText, NodeEmphasis:
			b.WriteString(n.Text)
		case NodeLineBreak:
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// NodeKind enumerates cell content fragments.
type NodeKind string

const (
	NodeText      NodeKind = "text"
	NodeLineBreak NodeKind = "br"
	NodeEmphasis  NodeKind = "em"
	NodeSwatch    NodeKind = "swatch"
)

// Node is a fragment of cell content.
type Node struct {
	Kind   NodeKind `json:"kind"`
	Text   string   `json:"text,omitempty"`
	Styles []Style  `json:"styles,omitempty"`
}

// TextNode returns a plain text fragment.
func TextNode(s string) Node { return Node{Kind: NodeText, Text: s} }

// EmphasisNode returns an italic fragment.
func EmphasisNode(s string) Node { return Node{Kind: NodeEmphasis, Text: s} }

// LineBreakNode returns a line break.
func LineBreakNode() Node { return Node{Kind: NodeLineBreak} }

// Rows returns every row in document order: header first, then body.
func (t *Table) Rows() []*Row {
	rows := make([]*Row, 0, len(t.Body)+1)
	if t.Header != nil {
		rows = append(rows, t.Header)
	}
	return append(rows, t.Body...)
}

// WriteHTML renders the table as an HTML fragment.
func (t *Table) WriteHTML(w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("<table")
	writeAttr(bw, "id", t.ID)
	writeAttr(bw, "class", strings.Join(t.Classes, " "))
	bw.WriteString(">\n")

	bw.WriteString("<colgroup>")
	for _, col := range t.Cols {
		bw.WriteString("<col")
		writeAttr(bw, "class", col.Class)
		bw.WriteString(">")
	}
	bw.WriteString("</colgroup>\n")

	if t.Caption != "" {
		bw.WriteString("<caption>" + html.EscapeString(t.Caption) + "</caption>\n")
	}

	if t.Header != nil {
		bw.WriteString("<thead>\n")
		writeRow(bw, t.Header)
		bw.WriteString("</thead>\n")
	}

	bw.WriteString("<tbody>\n")
	for _, row := range t.Body {
		writeRow(bw, row)
	}
	bw.WriteString("</tbody>\n</table>\n")

	return bw.Flush()
}

// HTML returns the rendered table as a string.
func (t *Table) HTML() string {
	var b strings.Builder
	_ = t.WriteHTML(&b)
	return b.String()
}

func writeRow(bw *bufio.Writer, row *Row) {
	bw.WriteString("<tr")
	writeAttr(bw, "class", strings.Join(row.Classes, " "))
	bw.WriteString(">")
	for _, cell := range row.Cells {
		tag := "td"
		if cell.Header {
			tag = "th"
		}
		bw.WriteString("<" + tag)
		writeAttr(bw, "class", strings.Join(cell.Classes, " "))
		if cell.RowSpan > 0 {
			writeAttr(bw, "rowspan", strconv.Itoa(cell.RowSpan))
		}
		if cell.ColSpan > 0 {
			writeAttr(bw, "colspan", strconv.Itoa(cell.ColSpan))
		}
		writeAttr(bw, "style", styleAttr(cell.Styles))
		bw.WriteString(">")
		for _, n := range cell.Content {
			writeNode(bw, n)
		}
		bw.WriteString("</" + tag + ">")
	}
	bw.WriteString("</tr>\n")
}

func writeNode(bw *bufio.Writer, n Node) {
	switch n.Kind {
	case NodeText:
		bw.WriteString(html.EscapeString(n.Text))
	case NodeEmphasis:
		bw.WriteString("<i>" + html.EscapeString(n.Text) + "</i>")
	case NodeLineBreak:
		bw.WriteString("<br>")
	case NodeSwatch:
		bw.WriteString("<span")
		writeAttr(bw, "class", "color-indicator")
		writeAttr(bw, "style", styleAttr(n.Styles))
		bw.WriteString("></span>")
	}
}

func writeAttr(bw *bufio.Writer, name, value string) {
	if value == "" {
		return
	}
	bw.WriteString(" " + name + `="` + html.EscapeString(value) + `"`)
}

func styleAttr(styles []Style) string {
	parts := make([]string, 0, len(styles))
	for _, s := range styles {
		parts = append(parts, s.Property+": "+s.Value+";")
	}
	return strings.Join(parts, " ")
}
