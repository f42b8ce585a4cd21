package outwriter

import (
	"strings"
	"unicode/utf8"
)

// Justify says how a cell is padded to the width of its column.
type Justify int

// Justification modes. JustifyNone keeps the grid default, which aligns right.
const (
	JustifyNone Justify = iota
	JustifyLeft
	JustifyRight
	JustifyCenter
)

// Cell is one grid cell with its justification fixed at construction.
type Cell struct {
	Text    string
	Justify Justify

	paint func(string) string
}

// Left creates a left-justified cell.
func Left(text string) Cell { return Cell{Text: text, Justify: JustifyLeft} }

// Right creates a right-justified cell.
func Right(text string) Cell { return Cell{Text: text, Justify: JustifyRight} }

// Center creates a centered cell.
func Center(text string) Cell { return Cell{Text: text, Justify: JustifyCenter} }

// Plain creates a cell without explicit justification.
func Plain(text string) Cell { return Cell{Text: text} }

// Painted returns a copy of the cell whose padded text is passed through paint.
// Escape codes added by paint do not count towards the column width.
func (c Cell) Painted(paint func(string) string) Cell {
	c.paint = paint
	return c
}

// Width is the display width of the cell text.
func (c Cell) Width() int {
	return utf8.RuneCountInString(c.Text)
}

// pad returns the cell text padded to width.
func (c Cell) pad(width int) string {
	gap := max(width-c.Width(), 0)
	var out string
	switch c.Justify {
	case JustifyLeft:
		out = c.Text + strings.Repeat(" ", gap)
	case JustifyCenter:
		left := gap / 2
		out = strings.Repeat(" ", left) + c.Text + strings.Repeat(" ", gap-left)
	default:
		out = strings.Repeat(" ", gap) + c.Text
	}
	if c.paint != nil {
		return c.paint(out)
	}
	return out
}

// RenderGrid lays out rows as aligned columns separated by one space.
// Every column is as wide as its widest cell; short rows are padded with empty cells.
func RenderGrid(rows [][]Cell) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], cell.Width())
		}
	}

	var sb strings.Builder
	for _, row := range rows {
		for i, width := range widths {
			if i > 0 {
				sb.WriteByte(' ')
			}
			cell := Plain("")
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(cell.pad(width))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
