// Package format renders sprintlens tables as terminal text or Markdown.
package format

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects the table renderer.
type Mode int

const (
	ASCII    Mode = iota // box-drawn terminal table
	Markdown             // GitHub-flavoured Markdown
)

// ModeFor maps the --markdown flag to a Mode.
func ModeFor(markdown bool) Mode {
	if markdown {
		return Markdown
	}
	return ASCII
}

// Align is a column's horizontal alignment.
type Align int

const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Column configures one column by its 1-based position.
type Column struct {
	Number   int
	Align    Align
	MaxWidth int // 0 means unlimited
}

// Table accumulates rows and renders them in the Mode it was created with.
type Table interface {
	Title(title string)
	Header(cols ...string)
	Row(vals ...any)
	Footer(vals ...any)
	Columns(cols ...Column)
	Len() int
	String() string
}

// NewTable returns an empty Table.
func NewTable(m Mode) Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &prettyTable{w: w, mode: m}
}

type prettyTable struct {
	w    table.Writer
	mode Mode
	rows int
}

func (t *prettyTable) Title(title string) { t.w.SetTitle(title) }

func (t *prettyTable) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.w.AppendHeader(row)
}

func (t *prettyTable) Row(vals ...any) {
	t.w.AppendRow(append(table.Row(nil), vals...))
	t.rows++
}

func (t *prettyTable) Footer(vals ...any) {
	t.w.AppendFooter(append(table.Row(nil), vals...))
}

func (t *prettyTable) Columns(cols ...Column) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c.Number, Align: c.Align.text(), WidthMax: c.MaxWidth}
	}
	t.w.SetColumnConfigs(cfgs)
}

func (t *prettyTable) Len() int { return t.rows }

func (t *prettyTable) String() string {
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}

func (a Align) text() text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignCenter:
		return text.AlignCenter
	case AlignRight:
		return text.AlignRight
	}
	return text.AlignDefault
}
