// Package table holds the tabular results the shell prints, exports and
// caches. A Frame is presentation data: typed analytics live in the vol
// package and are rendered into frames at the edge.
package table

import (
	"fmt"
	"strings"

	"github.com/guregu/null/v6"
)

// Meta tags a frame with the three fields export tooling builds default
// filenames from. The field set and its ticker/period/datatype meaning is
// a compatibility contract.
type Meta struct {
	Ticker   string
	Period   string
	Datatype string
}

// DefaultFilename returns the conventional export name for the frame.
func (m Meta) DefaultFilename() string {
	return fmt.Sprintf("%s_%s_%s", m.Ticker, m.Datatype, m.Period)
}

// Frame is an ordered table of string cells with column headers and
// export metadata. Undefined values are empty cells.
type Frame struct {
	Meta    Meta
	Columns []string
	Rows    [][]string
}

// New creates an empty frame with the given metadata and columns.
func New(meta Meta, columns ...string) *Frame {
	return &Frame{Meta: meta, Columns: columns}
}

// Append adds one row. Short rows are padded with empty cells, long rows
// truncated to the column count.
func (f *Frame) Append(cells ...string) {
	row := make([]string, len(f.Columns))
	copy(row, cells)
	f.Rows = append(f.Rows, row)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool {
	return len(f.Rows) == 0
}

// Column returns the values of the named column and whether it exists.
func (f *Frame) Column(name string) ([]string, bool) {
	idx := -1
	for i, c := range f.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false
	}
	vals := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		vals[i] = row[idx]
	}
	return vals, true
}

// Render formats the frame as an aligned text table. maxRows caps the
// printed body, 0 means unlimited; elided rows are replaced by a single
// ellipsis line.
func (f *Frame) Render(maxRows int) string {
	widths := make([]int, len(f.Columns))
	for i, c := range f.Columns {
		widths[i] = len(c)
	}
	for _, row := range f.Rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
		}
		b.WriteByte('\n')
	}

	writeRow(f.Columns)
	sep := make([]string, len(f.Columns))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeRow(sep)

	rows := f.Rows
	elided := 0
	if maxRows > 0 && len(rows) > maxRows {
		head := maxRows / 2
		tail := maxRows - head
		elided = len(rows) - maxRows
		for _, row := range rows[:head] {
			writeRow(row)
		}
		b.WriteString(fmt.Sprintf("... (%d rows elided)\n", elided))
		rows = rows[len(f.Rows)-tail:]
	}
	for _, row := range rows {
		writeRow(row)
	}

	b.WriteString(fmt.Sprintf("\n[%d rows x %d columns]", len(f.Rows), len(f.Columns)))
	return b.String()
}

// FormatFloat renders a float cell with a fixed precision.
func FormatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// FormatNullFloat renders an optional float cell, empty when undefined.
func FormatNullFloat(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return FormatFloat(v.Float64)
}
