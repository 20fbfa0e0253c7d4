// Command insights answers dataset questions from the terminal: overview,
// per-geography search, event rankings, regressions, and summary export.
//
// Usage:
//
//	go run ./cmd/insights --data data/events.csv search --level city --state WI --city "Eau Claire"
//	go run ./cmd/insights rank --level state --limit 5
//	go run ./cmd/insights regress --level city
package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/music-event-insights/internal/observability"
)

func main() {
	app := newApp(observability.NewMetrics())
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
