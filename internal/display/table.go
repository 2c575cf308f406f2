package display

import (
	"strings"
	"unicode/utf8"
)

// Table renders an aligned text table.
type Table struct {
	headers []string
	rows    [][]string
	// highlightRow is the 0-based row to accent, typically today. -1 means none.
	highlightRow int
	// muted cells are rendered dim; prayer tables pass the unavailable marker.
	muted string
	right map[int]bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:      headers,
		highlightRow: -1,
		right:        map[int]bool{},
	}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// SetHighlightRow sets which row index (0-based) is accented.
func (t *Table) SetHighlightRow(idx int) {
	t.highlightRow = idx
}

// SetMuted dims every cell whose value equals v.
func (t *Table) SetMuted(v string) {
	t.muted = v
}

// AlignRight right-aligns column col, for numbers.
func (t *Table) AlignRight(col int) {
	t.right[col] = true
}

// Render produces the table with a two-space indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder

	sb.WriteString("  " + Bold(t.formatRow(t.headers, widths, false)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for i, row := range t.rows {
		if i == t.highlightRow {
			sb.WriteString("  " + Accent(t.formatRow(row, widths, false)) + "\n")
		} else {
			sb.WriteString("  " + t.formatRow(row, widths, true) + "\n")
		}
	}

	return sb.String()
}

// formatRow pads each cell to its column width. Padding is computed on the
// plain text so colour codes never shift alignment.
func (t *Table) formatRow(cells []string, widths []int, styled bool) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", w-utf8.RuneCountInString(cell))
		text := cell
		if styled && t.muted != "" && cell == t.muted {
			text = Muted(cell)
		}
		if t.right[i] {
			parts[i] = pad + text
		} else {
			parts[i] = text + pad
		}
	}
	return strings.Join(parts, "  ")
}
