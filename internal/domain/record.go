package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RawRecord is one row of the source CSV as text. Field tags match the
// upstream header names exactly.
type RawRecord struct {
	EventID         string `csv:"Event Number"`
	City            string `csv:"City"`
	State           string `csv:"State"`
	IATA            string `csv:"IATA"`
	StatePopulation string `csv:"Population_state"`
	StateIncome     string `csv:"Median Household Income_state"`
	CityPopulation  string `csv:"Population_city"`
	CityIncome      string `csv:"Median Household Income_city"`

	Line int `csv:"-"` // 1-based line in the source file, header is line 1
}

// RequiredColumns lists the header names the source table must provide.
var RequiredColumns = []string{
	"Event Number",
	"City",
	"State",
	"IATA",
	"Population_state",
	"Median Household Income_state",
	"Population_city",
	"Median Household Income_city",
}

// Attributes are the census figures attached to one geography.
type Attributes struct {
	Population int64           `json:"population"`
	Income     decimal.Decimal `json:"income"`
}

// Record is a normalized row. StateAttrs and CityAttrs are nil when the row
// does not carry both figures for that geography.
type Record struct {
	EventID    string
	City       string
	State      string
	IATA       string
	StateAttrs *Attributes
	CityAttrs  *Attributes
}

// Column names a key column of the table.
type Column int

const (
	ColumnEventID Column = iota
	ColumnCity
	ColumnState
	ColumnIATA
)

func (c Column) String() string {
	switch c {
	case ColumnEventID:
		return "Event Number"
	case ColumnCity:
		return "City"
	case ColumnState:
		return "State"
	case ColumnIATA:
		return "IATA"
	default:
		return fmt.Sprintf("Column(%d)", int(c))
	}
}

func (c Column) value(r Record) string {
	switch c {
	case ColumnEventID:
		return r.EventID
	case ColumnCity:
		return r.City
	case ColumnState:
		return r.State
	case ColumnIATA:
		return r.IATA
	default:
		return ""
	}
}

// keySep separates tuple members inside a Key. The unit separator never
// appears in normalized names.
const keySep = "\x1f"

// Key is an ordered tuple of column values used as a map key.
type Key string

// NewKey builds a Key from values in column order.
func NewKey(values ...string) Key {
	return Key(strings.Join(values, keySep))
}

// Parts returns the tuple members in column order.
func (k Key) Parts() []string {
	return strings.Split(string(k), keySep)
}

func (k Key) String() string {
	return strings.Join(k.Parts(), ", ")
}

// Level is the geographic granularity of a report.
type Level int

const (
	LevelState Level = iota + 1
	LevelCity
)

// ParseLevel accepts "state" or "city" in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "state":
		return LevelState, nil
	case "city":
		return LevelCity, nil
	default:
		return 0, fmt.Errorf("unknown level %q: want state or city", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelState:
		return "state"
	case LevelCity:
		return "city"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Columns returns the group-key columns for the level, in key order.
func (l Level) Columns() []Column {
	if l == LevelCity {
		return []Column{ColumnCity, ColumnState}
	}
	return []Column{ColumnState}
}

// GeoKey identifies a state, or a city within a state.
type GeoKey struct {
	Level Level  `json:"level"`
	City  string `json:"city,omitempty"`
	State string `json:"state"`
}

// StateKey builds a normalized state-level key.
func StateKey(state string) GeoKey {
	return GeoKey{Level: LevelState, State: NormalizeState(state)}
}

// CityKey builds a normalized city-level key.
func CityKey(city, state string) GeoKey {
	return GeoKey{Level: LevelCity, City: NormalizeCity(city), State: NormalizeState(state)}
}

// Key returns the tuple matching [Level.Columns].
func (g GeoKey) Key() Key {
	if g.Level == LevelCity {
		return NewKey(g.City, g.State)
	}
	return NewKey(g.State)
}

func (g GeoKey) blank() bool {
	if g.State == "" {
		return true
	}
	return g.Level == LevelCity && g.City == ""
}

func (g GeoKey) String() string {
	if g.Level == LevelCity {
		return g.City + ", " + g.State
	}
	return g.State
}

// geoFromKey is the inverse of GeoKey.Key.
func geoFromKey(level Level, k Key) GeoKey {
	parts := k.Parts()
	if level == LevelCity && len(parts) == 2 {
		return GeoKey{Level: LevelCity, City: parts[0], State: parts[1]}
	}
	return GeoKey{Level: LevelState, State: parts[0]}
}

// compareGeo orders by state, then city.
func compareGeo(a, b GeoKey) int {
	if c := strings.Compare(a.State, b.State); c != 0 {
		return c
	}
	return strings.Compare(a.City, b.City)
}
