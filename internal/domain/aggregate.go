package domain

import (
	"slices"

	"github.com/samber/lo"
)

// Dedup keeps the first row of every distinct combination of cols.
// Blank values take part in the comparison like any other value.
func Dedup(t *Table, cols []Column) *Table {
	seen := make(map[Key]struct{}, len(t.records))
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		k := keyOf(r, cols)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return &Table{records: out}
}

// CountByKey counts distinct entity occurrences per group.
//
// Rows with a blank value in any entity or group column are excluded. The
// remaining rows are deduplicated on entity ∪ group and counted per group.
// Groups with no rows are absent from the result, so callers choose their own
// default. The result does not depend on row order.
func CountByKey(t *Table, entity, group []Column) map[Key]int {
	all := lo.Uniq(append(slices.Clone(entity), group...))
	present := t.Filter(func(r Record) bool { return !hasBlank(r, all) })

	counts := make(map[Key]int)
	for _, r := range Dedup(present, all).records {
		counts[keyOf(r, group)]++
	}
	return counts
}

// BlankRows counts the rows CountByKey would exclude for cols.
func BlankRows(t *Table, cols []Column) int {
	return lo.CountBy(t.records, func(r Record) bool { return hasBlank(r, cols) })
}

// GeoKeys returns every geography of the level present in the table.
func GeoKeys(t *Table, level Level) map[Key]struct{} {
	cols := level.Columns()
	keys := make(map[Key]struct{})
	for _, r := range t.records {
		if hasBlank(r, cols) {
			continue
		}
		keys[keyOf(r, cols)] = struct{}{}
	}
	return keys
}

// StaticAttributes maps a geography to its census figures.
type StaticAttributes map[Key]Attributes

// StateAttributes returns the first-seen state figures per state.
func StateAttributes(t *Table) StaticAttributes {
	return firstAttributes(t, LevelState, func(r Record) *Attributes { return r.StateAttrs })
}

// CityAttributes returns the first-seen city figures per (city, state).
func CityAttributes(t *Table) StaticAttributes {
	return firstAttributes(t, LevelCity, func(r Record) *Attributes { return r.CityAttrs })
}

func firstAttributes(t *Table, level Level, pick func(Record) *Attributes) StaticAttributes {
	cols := level.Columns()
	attrs := make(StaticAttributes)
	for _, r := range t.records {
		a := pick(r)
		if a == nil || hasBlank(r, cols) {
			continue
		}
		k := keyOf(r, cols)
		if _, ok := attrs[k]; !ok {
			attrs[k] = *a
		}
	}
	return attrs
}

// Aggregates holds the per-geography counts of one level.
type Aggregates struct {
	Level    Level
	Events   map[Key]int
	Airports map[Key]int
	Geos     map[Key]struct{} // every geography present, with or without counts
}

// Aggregate counts distinct events and airports per geography of the level.
func Aggregate(t *Table, level Level) Aggregates {
	group := level.Columns()
	return Aggregates{
		Level:    level,
		Events:   CountByKey(t, []Column{ColumnEventID}, group),
		Airports: CountByKey(t, []Column{ColumnIATA}, group),
		Geos:     GeoKeys(t, level),
	}
}

func keyOf(r Record, cols []Column) Key {
	values := make([]string, len(cols))
	for i, c := range cols {
		values[i] = c.value(r)
	}
	return NewKey(values...)
}

func hasBlank(r Record, cols []Column) bool {
	for _, c := range cols {
		if c.value(r) == "" {
			return true
		}
	}
	return false
}
