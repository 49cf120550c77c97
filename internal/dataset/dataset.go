package dataset

import "sort"

// Row maps column names to cell values. A cell is null when its column key is
// absent or the value is the empty string; the two forms are equivalent and
// both serialize to an empty CSV cell.
type Row map[string]string

// Value returns the cell value for column, or "" when the cell is null.
func (r Row) Value(column string) string {
	return r[column]
}

// IsNull reports whether the cell for column is null.
func (r Row) IsNull(column string) bool {
	return r[column] == ""
}

// Dataset is an ordered table: a column list plus rows. Rows may carry values
// only for a subset of Columns; missing entries read as null.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether name is one of the dataset's columns.
func (d Dataset) HasColumn(name string) bool {
	for _, column := range d.Columns {
		if column == name {
			return true
		}
	}
	return false
}

// KeyValues returns the distinct values of the key column in first-seen row
// order. Null cells contribute the empty string once.
func (d Dataset) KeyValues(keyColumn string) []string {
	seen := make(map[string]struct{}, len(d.Rows))
	values := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		value := row.Value(keyColumn)
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}

// Reindex returns a dataset with the provided column list and the same rows.
// Rows are shared, not copied: columns added by the reindex read as null and
// values for removed columns simply stop being visible.
func (d Dataset) Reindex(columns []string) Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Dataset{Columns: cols, Rows: d.Rows}
}

// SortedColumnUnion returns the union of two column lists in lexicographic
// order.
func SortedColumnUnion(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	union := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, column := range list {
			if _, ok := seen[column]; ok {
				continue
			}
			seen[column] = struct{}{}
			union = append(union, column)
		}
	}
	sort.Strings(union)
	return union
}
