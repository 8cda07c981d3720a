// Package sheet loads excelize worksheets into header-addressed tables.
package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellState distinguishes "column absent" from "value blank" from
// "value present" when reading a row.
type CellState int

const (
	// ColumnAbsent means the table has no column with that name.
	ColumnAbsent CellState = iota
	// Blank means the column exists but the cell is empty.
	Blank
	// Present means the cell holds a non-empty value.
	Present
)

// HeaderTransform rewrites a raw header label into the name a column
// is addressed by.
type HeaderTransform func(string) string

// TrimHeader strips surrounding whitespace and keeps case.
func TrimHeader(s string) string {
	return strings.TrimSpace(s)
}

// LowerHeader strips surrounding whitespace and lowercases.
func LowerHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Table is one worksheet read with a header row. Rows are aligned to
// Columns; trailing cells excelize omits are treated as blank.
type Table struct {
	File    string
	Sheet   string
	Columns []string
	index   map[string]int
	rows    [][]string
}

// Load reads sheetName from f, using the first row as headers rewritten
// by transform. Duplicate headers keep the first occurrence.
func Load(f *excelize.File, file, sheetName string, transform HeaderTransform) (*Table, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	t := &Table{File: file, Sheet: sheetName, index: make(map[string]int)}
	if len(rows) == 0 {
		return t, nil
	}
	for i, h := range rows[0] {
		name := transform(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		t.Columns = append(t.Columns, name)
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	t.rows = rows[1:]
	return t, nil
}

// HasColumn reports whether a column with that name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// Row returns the i-th data row.
func (t *Table) Row(i int) Row {
	return Row{table: t, cells: t.rows[i]}
}

// Row is one data row of a Table.
type Row struct {
	table *Table
	cells []string
}

// Lookup returns the cell under the named column together with its
// state. The value is whitespace-trimmed.
func (r Row) Lookup(name string) (string, CellState) {
	idx, ok := r.table.index[name]
	if !ok {
		return "", ColumnAbsent
	}
	if idx >= len(r.cells) {
		return "", Blank
	}
	v := strings.TrimSpace(r.cells[idx])
	if v == "" {
		return "", Blank
	}
	return v, Present
}

// Get returns the cell value, or "" when the column is absent or the
// cell blank.
func (r Row) Get(name string) string {
	v, _ := r.Lookup(name)
	return v
}

// ParseInt parses a cell as an integer, tolerating whole-valued
// floating representations such as "3.0" that spreadsheet programs
// produce for numeric cells.
func ParseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

// ParseFloat parses a cell as a floating-point number.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}
