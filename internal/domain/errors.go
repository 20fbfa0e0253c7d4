package domain

import "fmt"

// MalformedValueError reports a numeric cell that is not a number once its
// currency and thousands formatting is removed.
type MalformedValueError struct {
	Value  string
	Column string // empty when the value was not read from the table
	Line   int    // 0 when unknown
}

func (e *MalformedValueError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("line %d: column %q: malformed numeric value %q", e.Line, e.Column, e.Value)
	case e.Column != "":
		return fmt.Sprintf("column %q: malformed numeric value %q", e.Column, e.Value)
	default:
		return fmt.Sprintf("malformed numeric value %q", e.Value)
	}
}

// MissingStaticAttributeError reports a geography that appears in the table
// but has no population and income row. This is an upstream join defect,
// not an empty result.
type MissingStaticAttributeError struct {
	Geo GeoKey
}

func (e *MissingStaticAttributeError) Error() string {
	return fmt.Sprintf("no population/income attributes for %s %q", e.Geo.Level, e.Geo)
}

// UnknownGeoKeyError reports a selection that does not exist in the loaded
// table. Callers should refresh their key lists from the current dataset.
type UnknownGeoKeyError struct {
	Geo GeoKey
}

func (e *UnknownGeoKeyError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Geo.Level, e.Geo)
}
