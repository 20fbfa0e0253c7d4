package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataset(t *testing.T) {
	loadedAt := time.Date(2024, time.November, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(loadedAt))
	defer SetClock(nil)

	ds := NewDataset(fixtureTable())

	assert.Equal(t, loadedAt, ds.LoadedAt)
	assert.Equal(t, Overview{
		Rows:               10,
		Events:             6,
		Airports:           4,
		States:             2,
		Cities:             4,
		RowsWithoutEvent:   0,
		RowsWithoutAirport: 1,
	}, ds.Overview())
}

func TestDataset_StatesAndCities(t *testing.T) {
	ds := NewDataset(fixtureTable())

	assert.Equal(t, []string{"NV", "WI"}, ds.States())

	cities, err := ds.Cities("Wisconsin")
	require.NoError(t, err)
	assert.Equal(t, []string{"Eau Claire", "Madison"}, cities)

	_, err = ds.Cities("TX")
	var unknown *UnknownGeoKeyError
	assert.ErrorAs(t, err, &unknown)
}

func TestDataset_Lookup(t *testing.T) {
	ds := NewDataset(fixtureTable())

	r, err := ds.Lookup(CityKey("Las Vegas", "Nevada"))
	require.NoError(t, err)
	assert.Equal(t, 2, r.EventCount)
	assert.Equal(t, 2, r.AirportCount)

	r, err = ds.Lookup(StateKey("WI"))
	require.NoError(t, err)
	assert.Equal(t, 3, r.EventCount)
	assert.Equal(t, 1, r.AirportCount)
}

func TestDataset_Geos(t *testing.T) {
	ds := NewDataset(fixtureTable())

	assert.Equal(t, []GeoKey{
		{Level: LevelCity, City: "Las Vegas", State: "NV"},
		{Level: LevelCity, City: "Reno", State: "NV"},
		{Level: LevelCity, City: "Eau Claire", State: "WI"},
		{Level: LevelCity, City: "Madison", State: "WI"},
	}, ds.Geos(LevelCity))
}

func TestDataset_Summaries(t *testing.T) {
	bare := row("E9", "Elko", "NV", "EKO")
	bare.CityAttrs = nil
	records := append(fixtureTable().Records(), bare)

	ds := NewDataset(NewTable(records))
	results, missing := ds.Summaries(LevelCity)

	assert.Len(t, results, 4)
	require.Len(t, missing, 1)
	assert.Equal(t, "Elko", missing[0].City)

	states, missing := ds.Summaries(LevelState)
	assert.Len(t, states, 2)
	assert.Empty(t, missing)
}
