package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/music-event-insights/internal/adapter/csvsource"
	kafkaadapter "github.com/couchcryptid/music-event-insights/internal/adapter/kafka"
	"github.com/couchcryptid/music-event-insights/internal/analysis"
	"github.com/couchcryptid/music-event-insights/internal/config"
	"github.com/couchcryptid/music-event-insights/internal/domain"
	"github.com/couchcryptid/music-event-insights/internal/observability"
	"github.com/couchcryptid/music-event-insights/internal/pipeline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"
)

const (
	outputPlain = "plain"
	outputJSON  = "json"
)

// env is shared by every command once Before has run.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

func newApp(metrics *observability.Metrics) *cli.App {
	e := &env{metrics: metrics}

	return &cli.App{
		Name:  "insights",
		Usage: "Explore live music events against city and state demographics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				EnvVars: []string{"DATA_PATH"},
				Value:   "data/events.csv",
				Usage:   "path to the event CSV",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   outputPlain,
				Usage:   "the output type, possible values are: plain, json",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.DataPath = c.String("data")
			e.cfg = cfg
			e.logger = observability.NewLoggerTo(c.App.ErrWriter, cfg)
			return nil
		},
		Commands: []*cli.Command{
			overviewCmd(e),
			searchCmd(e),
			rankCmd(e),
			regressCmd(e),
			exportCmd(e),
		},
	}
}

func levelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "level",
		Aliases: []string{"l"},
		Value:   "state",
		Usage:   "geography level, possible values are: state, city",
	}
}

func (e *env) load(c *cli.Context) (*domain.Dataset, error) {
	return csvsource.NewSource(e.cfg.DataPath, e.logger, e.metrics).Load(c.Context)
}

func overviewCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "overview",
		Usage: "Show table-wide distinct counts",
		Action: func(c *cli.Context) error {
			ds, err := e.load(c)
			if err != nil {
				return err
			}
			ov := ds.Overview()
			if c.String("output") == outputJSON {
				return writeJSON(c.App.Writer, ov)
			}

			t := newTable(c.App.Writer)
			t.AppendHeader(table.Row{"Measure", "Value"})
			t.AppendRows([]table.Row{
				{"Rows", ov.Rows},
				{"Events", ov.Events},
				{"Airports", ov.Airports},
				{"States", ov.States},
				{"Cities", ov.Cities},
			})
			t.AppendSeparator()
			t.AppendRows([]table.Row{
				{"Rows without event", ov.RowsWithoutEvent},
				{"Rows without airport", ov.RowsWithoutAirport},
			})
			t.Render()
			return nil
		},
	}
}

func searchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Look up event and airport counts with census figures for one geography",
		Flags: []cli.Flag{
			levelFlag(),
			&cli.StringFlag{Name: "state", Aliases: []string{"s"}, Required: true, Usage: "state code or name"},
			&cli.StringFlag{Name: "city", Aliases: []string{"c"}, Usage: "city name, required for --level city"},
		},
		Action: func(c *cli.Context) error {
			level, err := domain.ParseLevel(c.String("level"))
			if err != nil {
				return err
			}
			geo := domain.StateKey(c.String("state"))
			if level == domain.LevelCity {
				if c.String("city") == "" {
					return errors.New("--city is required for --level city")
				}
				geo = domain.CityKey(c.String("city"), c.String("state"))
			}

			ds, err := e.load(c)
			if err != nil {
				return err
			}
			r, err := ds.Lookup(geo)
			if err != nil {
				return err
			}
			if c.String("output") == outputJSON {
				return writeJSON(c.App.Writer, r)
			}

			t := newTable(c.App.Writer)
			t.AppendHeader(table.Row{"Geography", "Events", "Airports", "Population", "Median Household Income"})
			t.AppendRow(table.Row{r.Geo.String(), r.EventCount, r.AirportCount, r.Population, "$" + r.Income.StringFixed(0)})
			t.Render()
			return nil
		},
	}
}

func rankCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "rank",
		Usage: "Rank geographies by distinct event count",
		Flags: []cli.Flag{
			levelFlag(),
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "rows to show, 0 for all"},
		},
		Action: func(c *cli.Context) error {
			level, err := domain.ParseLevel(c.String("level"))
			if err != nil {
				return err
			}
			if c.Int("limit") < 0 {
				return fmt.Errorf("invalid --limit %d", c.Int("limit"))
			}

			ds, err := e.load(c)
			if err != nil {
				return err
			}
			ranked := analysis.Rank(ds, level, c.Int("limit"))
			if c.String("output") == outputJSON {
				return writeJSON(c.App.Writer, ranked)
			}

			t := newTable(c.App.Writer)
			t.AppendHeader(table.Row{"#", "Geography", "Events"})
			for _, r := range ranked {
				t.AppendRow(table.Row{r.Rank, r.Geo.String(), r.Events})
			}
			t.Render()
			return nil
		},
	}
}

func regressCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "regress",
		Usage: "Fit event counts on population, income, or airports",
		Flags: []cli.Flag{
			levelFlag(),
			&cli.StringFlag{Name: "factor", Aliases: []string{"f"}, Usage: "population, income or airports; all when empty"},
		},
		Action: func(c *cli.Context) error {
			level, err := domain.ParseLevel(c.String("level"))
			if err != nil {
				return err
			}
			factors := analysis.Factors
			if v := c.String("factor"); v != "" {
				f, err := analysis.ParseFactor(v)
				if err != nil {
					return err
				}
				factors = []analysis.Factor{f}
			}

			ds, err := e.load(c)
			if err != nil {
				return err
			}
			regs := make([]analysis.Regression, 0, len(factors))
			for _, f := range factors {
				reg, err := analysis.Regress(ds, level, f)
				if err != nil {
					return err
				}
				regs = append(regs, reg)
			}
			if c.String("output") == outputJSON {
				return writeJSON(c.App.Writer, regs)
			}

			t := newTable(c.App.Writer)
			t.AppendHeader(table.Row{"Factor", "N", "Slope", "Intercept", "R²", "Slope p-value"})
			for _, r := range regs {
				t.AppendRow(table.Row{
					r.Factor, r.N,
					fmt.Sprintf("%.6g", r.Slope),
					fmt.Sprintf("%.4f", r.Intercept),
					fmt.Sprintf("%.4f", r.RSquared),
					fmt.Sprintf("%.4f", r.SlopePValue),
				})
			}
			t.SetColumnConfigs([]table.ColumnConfig{
				{Number: 3, Align: text.AlignRight},
				{Number: 4, Align: text.AlignRight},
			})
			t.Render()
			return nil
		},
	}
}

func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Publish every state and city summary to Kafka",
		Action: func(c *cli.Context) error {
			if !e.cfg.ExportEnabled() {
				return errors.New("KAFKA_BROKERS is not set")
			}
			ds, err := e.load(c)
			if err != nil {
				return err
			}

			writer := kafkaadapter.NewWriter(e.cfg, e.logger)
			defer writer.Close()

			exporter := pipeline.New(writer, e.logger, e.metrics, e.cfg.BatchSize, e.cfg.ExportMaxAttempts)
			report, err := exporter.Export(c.Context, ds)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "published %d summaries to %s in %d batches\n",
				report.Published, e.cfg.KafkaSummaryTopic, report.Batches)
			for _, geo := range report.Missing {
				fmt.Fprintf(c.App.Writer, "skipped %s %s: no census figures\n", geo.Level, geo.String())
			}
			return nil
		},
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
