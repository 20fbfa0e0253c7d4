package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Result is what a search for one geography returns.
type Result struct {
	Geo          GeoKey          `json:"geo"`
	EventCount   int             `json:"event_count"`
	AirportCount int             `json:"airport_count"`
	Population   int64           `json:"population"`
	Income       decimal.Decimal `json:"median_household_income"`
}

// Lookup returns the counts and census figures for geo.
//
// A geography without events or airports is valid and reports zero. A
// geography missing from agg.Geos is an *UnknownGeoKeyError. A geography
// present in the table without census figures is a
// *MissingStaticAttributeError.
func Lookup(geo GeoKey, agg Aggregates, attrs StaticAttributes) (Result, error) {
	if geo.Level != agg.Level {
		return Result{}, fmt.Errorf("lookup %s %q against %s aggregates", geo.Level, geo, agg.Level)
	}

	k := geo.Key()
	if _, ok := agg.Geos[k]; !ok || geo.blank() {
		return Result{}, &UnknownGeoKeyError{Geo: geo}
	}

	a, ok := attrs[k]
	if !ok {
		return Result{}, &MissingStaticAttributeError{Geo: geo}
	}

	return Result{
		Geo:          geo,
		EventCount:   agg.Events[k],
		AirportCount: agg.Airports[k],
		Population:   a.Population,
		Income:       a.Income,
	}, nil
}
