package domain

import "slices"

// Table is an immutable, in-memory copy of the source rows. Every operation
// that reshapes it returns a new Table.
type Table struct {
	records []Record
}

// NewTable copies records into a Table.
func NewTable(records []Record) *Table {
	return &Table{records: slices.Clone(records)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of the rows in load order.
func (t *Table) Records() []Record {
	return slices.Clone(t.records)
}

// Filter returns the rows for which keep reports true.
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &Table{records: out}
}
