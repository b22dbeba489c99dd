// Package table provides the in-memory tabular input consumed by the chart
// pipeline.
//
// A [Table] is an ordered header of unique column names plus rows of string
// cells. Cells stay strings: the transformer decides per axis whether a
// column is numeric or categorical, so the table never guesses types.
//
// Tables are built with [New] from already-split records, or read from CSV
// with [ReadCSV]. Both report malformed input (duplicate or empty headers,
// ragged rows) as SCHEMA_ERROR before any resolution happens.
package table

import (
	"strings"

	gerrors "github.com/williamcotton/gramgraph/pkg/errors"
)

// Table is an immutable, header-indexed set of string rows.
// It is safe for concurrent reads.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// New builds a table from a header and rows. The header and rows are copied.
//
// New returns a SCHEMA_ERROR if the header is empty, contains an empty or
// duplicate column name, or if any row has a different number of cells
// than the header.
func New(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, gerrors.New(gerrors.ErrCodeSchema, "table has no columns")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			return nil, gerrors.New(gerrors.ErrCodeSchema, "column %d has an empty name", i+1)
		}
		if prev, dup := index[name]; dup {
			return nil, gerrors.New(gerrors.ErrCodeSchema,
				"duplicate column %q (columns %d and %d)", name, prev+1, i+1)
		}
		index[name] = i
	}

	t := &Table{
		header: append([]string(nil), header...),
		index:  index,
		rows:   make([][]string, len(rows)),
	}
	for i, r := range rows {
		if len(r) != len(header) {
			return nil, gerrors.New(gerrors.ErrCodeSchema,
				"row %d has %d cells, header has %d", i+1, len(r), len(header))
		}
		t.rows[i] = append([]string(nil), r...)
	}
	return t, nil
}

// Header returns the ordered column names. The returned slice must not be modified.
func (t *Table) Header() []string { return t.header }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the table has a column with exactly this name.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Value returns the cell at row for the named column.
// The second result is false if the column does not exist or row is out of range.
func (t *Table) Value(row int, col string) (string, bool) {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	return t.rows[row][i], true
}

// Column returns every cell of the named column in row order, or nil if the
// column does not exist.
func (t *Table) Column(col string) []string {
	i, ok := t.index[col]
	if !ok {
		return nil
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out
}
