package domain

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// Overview summarizes the loaded table.
type Overview struct {
	Rows     int `json:"rows"`
	Events   int `json:"events"`
	Airports int `json:"airports"`
	States   int `json:"states"`
	Cities   int `json:"cities"`

	// Rows left out of event and airport counts by the blank-key rule.
	RowsWithoutEvent   int `json:"rows_without_event"`
	RowsWithoutAirport int `json:"rows_without_airport"`
}

// Dataset is everything derived from one loaded Table. It holds no
// reference to the table and is never mutated after NewDataset returns.
type Dataset struct {
	states     Aggregates
	cities     Aggregates
	stateAttrs StaticAttributes
	cityAttrs  StaticAttributes

	citiesByState map[string][]string
	overview      Overview

	LoadedAt time.Time
}

// NewDataset derives the aggregates and census lookups for both levels.
func NewDataset(t *Table) *Dataset {
	d := &Dataset{
		states:     Aggregate(t, LevelState),
		cities:     Aggregate(t, LevelCity),
		stateAttrs: StateAttributes(t),
		cityAttrs:  CityAttributes(t),
		LoadedAt:   clock.Now(),
	}

	d.citiesByState = make(map[string][]string)
	for k := range d.cities.Geos {
		g := geoFromKey(LevelCity, k)
		d.citiesByState[g.State] = append(d.citiesByState[g.State], g.City)
	}
	for _, cities := range d.citiesByState {
		slices.Sort(cities)
	}

	d.overview = Overview{
		Rows:               t.Len(),
		Events:             distinct(t, ColumnEventID),
		Airports:           distinct(t, ColumnIATA),
		States:             len(d.states.Geos),
		Cities:             len(d.cities.Geos),
		RowsWithoutEvent:   BlankRows(t, []Column{ColumnEventID}),
		RowsWithoutAirport: BlankRows(t, []Column{ColumnIATA}),
	}
	return d
}

func distinct(t *Table, c Column) int {
	values := lo.Map(t.records, func(r Record, _ int) string { return c.value(r) })
	return len(lo.Uniq(lo.Compact(values)))
}

// Overview returns table-wide distinct counts.
func (d *Dataset) Overview() Overview {
	return d.overview
}

// Aggregates returns the counts for a level.
func (d *Dataset) Aggregates(level Level) Aggregates {
	if level == LevelCity {
		return d.cities
	}
	return d.states
}

// Attributes returns the census figures for a level.
func (d *Dataset) Attributes(level Level) StaticAttributes {
	if level == LevelCity {
		return d.cityAttrs
	}
	return d.stateAttrs
}

// Lookup resolves one geography against this dataset. See [Lookup].
func (d *Dataset) Lookup(geo GeoKey) (Result, error) {
	return Lookup(geo, d.Aggregates(geo.Level), d.Attributes(geo.Level))
}

// States returns the sorted state keys present in the table.
func (d *Dataset) States() []string {
	states := lo.MapToSlice(d.states.Geos, func(k Key, _ struct{}) string {
		return geoFromKey(LevelState, k).State
	})
	slices.Sort(states)
	return states
}

// Cities returns the sorted cities of a state.
func (d *Dataset) Cities(state string) ([]string, error) {
	geo := StateKey(state)
	if _, ok := d.states.Geos[geo.Key()]; !ok {
		return nil, &UnknownGeoKeyError{Geo: geo}
	}
	return slices.Clone(d.citiesByState[geo.State]), nil
}

// Geos returns every geography of a level ordered by state, then city.
func (d *Dataset) Geos(level Level) []GeoKey {
	agg := d.Aggregates(level)
	geos := make([]GeoKey, 0, len(agg.Geos))
	for k := range agg.Geos {
		geos = append(geos, geoFromKey(level, k))
	}
	slices.SortFunc(geos, compareGeo)
	return geos
}

// Summaries looks up every geography of a level. Geographies without census
// figures are returned separately instead of failing the whole batch.
func (d *Dataset) Summaries(level Level) ([]Result, []GeoKey) {
	var results []Result
	var missing []GeoKey
	for _, geo := range d.Geos(level) {
		r, err := d.Lookup(geo)
		if err != nil {
			missing = append(missing, geo)
			continue
		}
		results = append(results, r)
	}
	return results, missing
}
