// Package pipeline orchestrates the load-normalize-aggregate-summarize run
// and holds the latest snapshot for the HTTP layer.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aleyanazifa/hfmd-analytics-service/internal/domain"
	"github.com/aleyanazifa/hfmd-analytics-service/internal/observability"
)

// Fetcher retrieves the raw dataset table for a source URI.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (domain.RawTable, error)
}

// SnapshotPublisher delivers a refreshed snapshot to an external sink.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Pipeline runs the dataset through the domain stages and keeps the latest
// snapshot. Stages execute strictly in order with no shared mutable state;
// the only synchronization is around the published snapshot.
type Pipeline struct {
	fetcher   Fetcher
	publisher SnapshotPublisher // nil disables publication
	source    string
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu          sync.RWMutex
	snapshot    domain.Snapshot
	hasSnapshot bool
}

// New creates a Pipeline for the given source. Pass a nil publisher to
// disable snapshot publication.
func New(fetcher Fetcher, source string, interval time.Duration, publisher SnapshotPublisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		publisher: publisher,
		source:    source,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// Snapshot returns the latest snapshot and whether one exists yet.
func (p *Pipeline) Snapshot() (domain.Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot, p.hasSnapshot
}

// CheckReadiness returns nil once at least one refresh has succeeded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if _, ok := p.Snapshot(); !ok {
		return errors.New("pipeline has not produced a snapshot yet")
	}
	return nil
}

// Refresh executes one synchronous pipeline run. Structural failures
// (fetch, schema, data quality) abort the run and leave the previous
// snapshot in place; there is no partial success for the monthly table.
func (p *Pipeline) Refresh(ctx context.Context) (domain.Snapshot, error) {
	runID := uuid.NewString()
	log := p.logger.With("run_id", runID, "source", p.source)
	start := time.Now()

	fetchStart := time.Now()
	table, err := p.fetcher.Fetch(ctx, p.source)
	p.metrics.StageDuration.WithLabelValues("fetch").Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		return p.fail(log, err)
	}

	normalizeStart := time.Now()
	daily, err := domain.Normalize(table)
	p.metrics.StageDuration.WithLabelValues("normalize").Observe(time.Since(normalizeStart).Seconds())
	if err != nil {
		return p.fail(log, err)
	}

	aggregateStart := time.Now()
	monthly, err := domain.Aggregate(daily)
	p.metrics.StageDuration.WithLabelValues("aggregate").Observe(time.Since(aggregateStart).Seconds())
	if err != nil {
		return p.fail(log, err)
	}

	summarizeStart := time.Now()
	summary, err := domain.Summarize(monthly)
	p.metrics.StageDuration.WithLabelValues("summarize").Observe(time.Since(summarizeStart).Seconds())
	if err != nil {
		return p.fail(log, err)
	}

	snap := domain.BuildSnapshot(runID, p.source, len(table.Rows), len(daily), monthly, summary)

	p.mu.Lock()
	p.snapshot = snap
	p.hasSnapshot = true
	p.mu.Unlock()

	p.metrics.RefreshTotal.Inc()
	p.metrics.RowsFetched.Set(float64(snap.RawRows))
	p.metrics.RowsDropped.Set(float64(snap.DroppedRows))
	p.metrics.MonthlyRows.Set(float64(len(snap.Monthly)))
	p.metrics.SnapshotTimestamp.Set(float64(snap.GeneratedAt.Unix()))

	log.Info("snapshot refreshed",
		"raw_rows", snap.RawRows,
		"daily_rows", snap.DailyRows,
		"dropped_rows", snap.DroppedRows,
		"monthly_rows", len(snap.Monthly),
		"duration", time.Since(start),
	)

	p.publish(ctx, log, snap)
	return snap, nil
}

// fail records a refresh failure against the stage that produced it.
func (p *Pipeline) fail(log *slog.Logger, err error) (domain.Snapshot, error) {
	stage := stageOf(err)
	p.metrics.RefreshFailures.WithLabelValues(stage).Inc()
	log.Error("refresh failed", "stage", stage, "error", err)
	return domain.Snapshot{}, err
}

// publish delivers the snapshot to the configured sink. Publication is
// best-effort: a failure is counted and logged but never fails the refresh.
func (p *Pipeline) publish(ctx context.Context, log *slog.Logger, snap domain.Snapshot) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, snap); err != nil {
		p.metrics.PublishErrors.Inc()
		log.Warn("snapshot publish failed", "error", err)
		return
	}
	p.metrics.SnapshotsPublished.Inc()
}

// Exponential backoff: start at 200ms, double each retry, cap at 5s. Keeps
// retry storms short while avoiding tight loops during source outages.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Run refreshes on the configured interval until the context is cancelled,
// backing off exponentially after failed refreshes.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "refresh_interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if _, err := p.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = initialBackoff
		if !sleepWithContext(ctx, p.interval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// stageOf maps an error to the pipeline stage it belongs to.
func stageOf(err error) string {
	var fetchErr *domain.FetchError
	var schemaErr *domain.SchemaError
	var qualityErr *domain.DataQualityError
	switch {
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &qualityErr):
		return "data_quality"
	default:
		return "internal"
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
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
