// Package analysis turns a loaded dataset into the rankings and regressions
// shown on the state and city report pages.
package analysis

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/couchcryptid/music-event-insights/internal/domain"
	"github.com/samber/lo"
)

// Factor is the explanatory variable of a regression.
type Factor string

const (
	FactorPopulation Factor = "population"
	FactorIncome     Factor = "income"
	FactorAirports   Factor = "airports"
)

// Factors lists every supported factor in report order.
var Factors = []Factor{FactorPopulation, FactorIncome, FactorAirports}

// ParseFactor accepts a factor name in any case.
func ParseFactor(s string) (Factor, error) {
	f := Factor(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Factors, f) {
		return "", fmt.Errorf("unknown factor %q: want population, income or airports", s)
	}
	return f, nil
}

// Point is one geography in a regression series.
type Point struct {
	Geo domain.GeoKey `json:"geo"`
	X   float64       `json:"x"`
	Y   float64       `json:"y"` // distinct events
}

// Series pairs each geography that hosts at least one event with the factor
// value. Geographies without census figures are left out, as an inner join on
// the census table would. The airport factor defaults to zero.
func Series(ds *domain.Dataset, level domain.Level, factor Factor) []Point {
	agg := ds.Aggregates(level)
	attrs := ds.Attributes(level)

	var points []Point
	for _, geo := range ds.Geos(level) {
		k := geo.Key()
		events := agg.Events[k]
		a, ok := attrs[k]
		if events == 0 || !ok {
			continue
		}

		var x float64
		switch factor {
		case FactorPopulation:
			x = float64(a.Population)
		case FactorIncome:
			x = a.Income.InexactFloat64()
		case FactorAirports:
			x = float64(agg.Airports[k])
		}
		points = append(points, Point{Geo: geo, X: x, Y: float64(events)})
	}
	return points
}

// Regression is the fit of distinct events on one factor at one level.
type Regression struct {
	Level  domain.Level `json:"level"`
	Factor Factor       `json:"factor"`
	Fit
}

// Regress fits distinct events per geography on the factor.
func Regress(ds *domain.Dataset, level domain.Level, factor Factor) (Regression, error) {
	points := Series(ds, level, factor)
	xs := lo.Map(points, func(p Point, _ int) float64 { return p.X })
	ys := lo.Map(points, func(p Point, _ int) float64 { return p.Y })

	fit, err := FitOLS(xs, ys)
	if err != nil {
		return Regression{}, fmt.Errorf("regress %s events on %s: %w", level, factor, err)
	}
	return Regression{Level: level, Factor: factor, Fit: fit}, nil
}

// Ranked is one row of an event-count ranking.
type Ranked struct {
	Rank   int           `json:"rank"`
	Geo    domain.GeoKey `json:"geo"`
	Events int           `json:"events"`
}

// Rank orders geographies with events by distinct event count, most first.
// Ties are ordered by state, then city. A limit of zero or less returns all.
func Rank(ds *domain.Dataset, level domain.Level, limit int) []Ranked {
	agg := ds.Aggregates(level)

	ranked := make([]Ranked, 0, len(agg.Events))
	for _, geo := range ds.Geos(level) {
		if n := agg.Events[geo.Key()]; n > 0 {
			ranked = append(ranked, Ranked{Geo: geo, Events: n})
		}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Events, a.Events)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
