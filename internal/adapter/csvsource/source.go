package csvsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/music-event-insights/internal/domain"
	"github.com/couchcryptid/music-event-insights/internal/observability"
)

// ErrNotLoaded is returned by readiness checks before the first load.
var ErrNotLoaded = errors.New("dataset not loaded")

// Source loads the event file and holds the current dataset. Reloads swap
// the dataset atomically; readers never see a partial load.
type Source struct {
	path    string
	logger  *slog.Logger
	metrics *observability.Metrics

	current atomic.Pointer[domain.Dataset]
}

// NewSource creates a Source for the CSV file at path.
func NewSource(path string, logger *slog.Logger, metrics *observability.Metrics) *Source {
	return &Source{path: path, logger: logger, metrics: metrics}
}

// Load reads, normalizes, and aggregates the file, then publishes the new
// dataset. On error the previous dataset stays in place.
func (s *Source) Load(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	raws, err := ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	table, err := domain.Normalize(raws)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", s.path, err)
	}
	ds := domain.NewDataset(table)
	s.current.Store(ds)

	ov := ds.Overview()
	s.metrics.RowsLoaded.Add(float64(ov.Rows))
	s.metrics.RowsSkipped.WithLabelValues("no_event").Add(float64(ov.RowsWithoutEvent))
	s.metrics.RowsSkipped.WithLabelValues("no_airport").Add(float64(ov.RowsWithoutAirport))
	s.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	s.metrics.DatasetReady.Set(1)

	s.logger.Info("dataset loaded",
		"path", s.path,
		"rows", ov.Rows,
		"events", ov.Events,
		"airports", ov.Airports,
		"states", ov.States,
		"cities", ov.Cities,
		"duration", time.Since(start),
	)
	if ov.RowsWithoutEvent > 0 || ov.RowsWithoutAirport > 0 {
		s.logger.Debug("blank keys excluded from counts",
			"rows_without_event", ov.RowsWithoutEvent,
			"rows_without_airport", ov.RowsWithoutAirport,
		)
	}
	return ds, nil
}

// Dataset returns the most recently loaded dataset, or nil.
func (s *Source) Dataset() *domain.Dataset {
	return s.current.Load()
}

// CheckReadiness reports ready once a dataset has been loaded.
func (s *Source) CheckReadiness(_ context.Context) error {
	if s.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}
