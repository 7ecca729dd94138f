package tabular

import (
	"fmt"
	"os"
)

// Table is an in-memory rectangular dataset with a header row.
// Rows are stored as strings; callers parse values as needed.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// DropDuplicates returns a copy of t keeping only the first row seen for
// each distinct value of column.
func DropDuplicates(t *Table, column string) (*Table, error) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("column not found: %s", column)
	}
	seen := make(map[string]bool, len(t.Rows))
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		key := row[idx]
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Rename moves a dataset file. Used to stage generated files under their
// final names (train/valid splits).
func Rename(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename dataset: %w", err)
	}
	return nil
}
