package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/music-event-insights/internal/domain"
	"github.com/couchcryptid/music-event-insights/internal/observability"
	"github.com/samber/lo"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// SummaryLoader writes a batch of summaries to the destination.
type SummaryLoader interface {
	LoadBatch(ctx context.Context, summaries []domain.Summary) error
}

// Report describes one export run.
type Report struct {
	Published int
	Batches   int
	// Geographies left out because they have no census figures.
	Missing []domain.GeoKey
}

// Exporter publishes a summary for every state and city of a dataset.
type Exporter struct {
	loader      SummaryLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
	maxAttempts int
}

// New creates an Exporter. Each batch is attempted at most maxAttempts times.
func New(l SummaryLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize, maxAttempts int) *Exporter {
	return &Exporter{
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   max(batchSize, 1),
		maxAttempts: max(maxAttempts, 1),
	}
}

// Export publishes state summaries, then city summaries. It stops at the
// first batch that fails every attempt or when ctx is cancelled.
func (e *Exporter) Export(ctx context.Context, ds *domain.Dataset) (Report, error) {
	var report Report
	e.logger.Info("summary export started", "batch_size", e.batchSize, "max_attempts", e.maxAttempts)

	for _, level := range []domain.Level{domain.LevelState, domain.LevelCity} {
		results, missing := ds.Summaries(level)
		for _, geo := range missing {
			e.logger.Warn("skipping geography without census figures", "level", level, "geo", geo.String())
		}
		report.Missing = append(report.Missing, missing...)

		for _, batch := range lo.Chunk(domain.Summarize(results), e.batchSize) {
			if err := e.loadWithRetry(ctx, batch); err != nil {
				return report, fmt.Errorf("export %s summaries: %w", level, err)
			}
			report.Published += len(batch)
			report.Batches++
		}
	}

	e.logger.Info("summary export complete",
		"published", report.Published,
		"batches", report.Batches,
		"missing", len(report.Missing),
	)
	return report, nil
}

// loadWithRetry writes one batch, backing off between failed attempts.
func (e *Exporter) loadWithRetry(ctx context.Context, batch []domain.Summary) error {
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := e.loader.LoadBatch(ctx, batch)
		if err == nil {
			e.metrics.SummariesPublished.Add(float64(len(batch)))
			e.metrics.ExportBatchDuration.Observe(time.Since(start).Seconds())
			return nil
		}

		e.metrics.ExportErrors.Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Error("load batch failed", "error", err, "batch_size", len(batch), "attempt", attempt)
		if attempt >= e.maxAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		if !backoffOrStop(ctx, &backoff) {
			return ctx.Err()
		}
	}
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if ctx ends first.
func backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
