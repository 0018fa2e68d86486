// Package source loads the fixed-schema tabular extracts the pipeline
// consumes: zip archives wrapping a single CSV payload, plain CSV files,
// and the gzip TSV staging tables written between stages.
package source

// Table is an in-memory tabular extract with named-column access.
// A column that is absent from the source is a typed miss, not an empty
// value: Value reports ok=false for it on every row.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
	dropped int
}

func newTable(columns []string) *Table {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}
	return &Table{columns: columns, index: index}
}

// Columns returns the header in source order.
func (t *Table) Columns() []string {
	return t.columns
}

// Len returns the number of body rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Dropped reports how many malformed rows were discarded at load time.
func (t *Table) Dropped() int {
	return t.dropped
}

// HasColumn reports whether the named column exists in this table.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell at (row, column). ok is false when the column
// does not exist in this table; an existing column always yields a value,
// possibly empty.
func (t *Table) Value(row int, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok {
		return "", false
	}
	return t.rows[row][i], true
}

// Merge appends all rows of other, aligning columns by name. Columns
// unique to other are added to this table; cells absent from either side
// are filled with empty values. Used to fold per-fiscal-year extracts
// into one table.
func (t *Table) Merge(other *Table) {
	for _, name := range other.columns {
		if _, ok := t.index[name]; !ok {
			t.index[name] = len(t.columns)
			t.columns = append(t.columns, name)
			for i := range t.rows {
				t.rows[i] = append(t.rows[i], "")
			}
		}
	}

	for _, row := range other.rows {
		merged := make([]string, len(t.columns))
		for i, name := range other.columns {
			merged[t.index[name]] = row[i]
		}
		t.rows = append(t.rows, merged)
	}
	t.dropped += other.dropped
}

func (t *Table) appendRow(row []string) {
	t.rows = append(t.rows, row)
}
