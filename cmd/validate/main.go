// Command validate performs data integrity checks on an event CSV before it
// is served: header presence, numeric cell formats, census figure
// consistency per geography, and census coverage of every geography that
// hosts events.
//
// Usage:
//
//	go run ./cmd/validate -data data/events.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/music-event-insights/internal/adapter/csvsource"
	"github.com/couchcryptid/music-event-insights/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/jedib0t/go-pretty/v6/table"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	errors  []string
	skipped bool
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (p *phase) status() string {
	switch {
	case p.skipped:
		return "\033[33mSKIP\033[0m"
	case p.passed():
		return "\033[32mPASS\033[0m"
	default:
		return fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
	}
}

// row is a normalized record with its source line.
type row struct {
	domain.Record
	line int
}

func main() {
	dataPath := flag.String("data", sharedcfg.EnvOrDefault("DATA_PATH", "data/events.csv"), "path to the event CSV")
	flag.Parse()

	os.Exit(run(os.Stdout, *dataPath))
}

func run(w io.Writer, path string) int {
	fmt.Fprintln(w, "=== Event Data Integrity Validation ===")
	fmt.Fprintln(w)

	header := &phase{name: "Header"}
	numeric := &phase{name: "Numeric normalization"}
	consistency := &phase{name: "Census figure consistency"}
	coverage := &phase{name: "Census coverage of event geographies"}
	phases := []*phase{header, numeric, consistency, coverage}

	raws, err := csvsource.ReadFile(path)
	var missing *csvsource.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		header.errorf("%v", missing)
		numeric.skipped, consistency.skipped, coverage.skipped = true, true, true
	case err != nil:
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	default:
		rows := validateNumeric(numeric, raws)
		validateConsistency(consistency, rows)
		validateCoverage(coverage, rows)
	}

	report(w, phases, len(raws))

	for _, p := range phases {
		if !p.passed() {
			fmt.Fprintln(w, "\nValidation FAILED.")
			return 1
		}
	}
	fmt.Fprintln(w, "\nAll validations passed.")
	return 0
}

// validateNumeric reports every malformed census cell and returns the rows
// that normalized cleanly.
func validateNumeric(p *phase, raws []domain.RawRecord) []row {
	rows := make([]row, 0, len(raws))
	for _, raw := range raws {
		cells := []struct {
			column, value string
			parse         func(string) error
		}{
			{"Population_state", raw.StatePopulation, parseCount},
			{"Median Household Income_state", raw.StateIncome, parseAmount},
			{"Population_city", raw.CityPopulation, parseCount},
			{"Median Household Income_city", raw.CityIncome, parseAmount},
		}
		ok := true
		for _, c := range cells {
			if strings.TrimSpace(c.value) == "" {
				continue
			}
			if err := c.parse(strings.TrimSpace(c.value)); err != nil {
				p.errorf("line %d: %s: malformed value %q", raw.Line, c.column, c.value)
				ok = false
			}
		}
		if !ok {
			continue
		}

		normalized, err := domain.Normalize([]domain.RawRecord{raw})
		if err != nil {
			p.errorf("line %d: %v", raw.Line, err)
			continue
		}
		rows = append(rows, row{Record: normalized.Records()[0], line: raw.Line})
	}
	return rows
}

func parseCount(s string) error {
	_, err := domain.NormalizeCount(s)
	return err
}

func parseAmount(s string) error {
	_, err := domain.NormalizeAmount(s)
	return err
}

type firstSeen struct {
	attrs domain.Attributes
	line  int
}

// validateConsistency checks that every row carrying census figures for a
// geography carries the same figures.
func validateConsistency(p *phase, rows []row) {
	states := make(map[domain.Key]firstSeen)
	cities := make(map[domain.Key]firstSeen)

	check := func(seen map[domain.Key]firstSeen, geo domain.GeoKey, a *domain.Attributes, line int) {
		if a == nil {
			return
		}
		k := geo.Key()
		first, ok := seen[k]
		if !ok {
			seen[k] = firstSeen{attrs: *a, line: line}
			return
		}
		if first.attrs.Population != a.Population {
			p.errorf("%s %s: population %d on line %d, %d on line %d",
				geo.Level, geo, first.attrs.Population, first.line, a.Population, line)
		}
		if !first.attrs.Income.Equal(a.Income) {
			p.errorf("%s %s: income %s on line %d, %s on line %d",
				geo.Level, geo, first.attrs.Income, first.line, a.Income, line)
		}
	}

	for _, r := range rows {
		check(states, domain.StateKey(r.State), r.StateAttrs, r.line)
		check(cities, domain.CityKey(r.City, r.State), r.CityAttrs, r.line)
	}
}

// validateCoverage checks that every geography hosting an event has census
// figures somewhere in the file.
func validateCoverage(p *phase, rows []row) {
	records := make([]domain.Record, len(rows))
	for i, r := range rows {
		records[i] = r.Record
	}
	ds := domain.NewDataset(domain.NewTable(records))

	for _, level := range []domain.Level{domain.LevelState, domain.LevelCity} {
		agg := ds.Aggregates(level)
		_, missing := ds.Summaries(level)
		for _, geo := range missing {
			if agg.Events[geo.Key()] > 0 {
				p.errorf("%s %s hosts %d events but has no census figures", level, geo, agg.Events[geo.Key()])
			}
		}
	}
}

func report(w io.Writer, phases []*phase, rows int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Phase", "Result"})
	for _, p := range phases {
		t.AppendRow(table.Row{p.name, p.status()})
	}
	t.AppendFooter(table.Row{"Rows", rows})
	t.Render()

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}
}
