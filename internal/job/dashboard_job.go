package job

import (
	"context"
	"errors"
	"time"

	"daily-btc/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type DatasetReader interface {
	Dataset(ctx context.Context) (*domain.Dataset, error)
}

type VersionFeed interface {
	Current() (uint64, time.Time)
	Subscribe() <-chan uint64
}

type DashboardRefresher interface {
	Refresh(ctx context.Context, dataset *domain.Dataset) (*domain.DashboardReport, error)
}

// DashboardJob rebuilds the report whenever the ingestion side publishes a
// newer dataset version. It wakes on the version feed and, as a fallback, on
// a poll tick. The first run always refreshes so a process that starts on
// an already populated store renders immediately.
type DashboardJob struct {
	tracer       trace.Tracer
	reader       DatasetReader
	versions     VersionFeed
	dashboard    DashboardRefresher
	pollInterval time.Duration
	logger       *zap.Logger

	started  bool
	lastSeen uint64
}

func NewDashboardJob(tracer trace.Tracer, reader DatasetReader, versions VersionFeed, dashboard DashboardRefresher, pollInterval time.Duration, logger *zap.Logger) *DashboardJob {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardJob{
		tracer:       tracer,
		reader:       reader,
		versions:     versions,
		dashboard:    dashboard,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

func (j *DashboardJob) Start(ctx context.Context) {
	notify := j.versions.Subscribe()

	j.runOnce(ctx)
	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
			j.runOnce(ctx)
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

// runOnce reports whether a refresh was attempted.
func (j *DashboardJob) runOnce(ctx context.Context) bool {
	version, _ := j.versions.Current()
	if j.started && version <= j.lastSeen {
		return false
	}

	ctx, span := j.tracer.Start(ctx, "dashboard-job.run-once")
	defer span.End()
	span.SetAttributes(attribute.Int64("dataset.version", int64(version)))

	dataset, err := j.reader.Dataset(ctx)
	if err != nil {
		span.RecordError(err)
		j.logger.Error("read dataset", zap.Error(err))
		return true
	}

	_, err = j.dashboard.Refresh(ctx, dataset)
	if err != nil && !errors.Is(err, domain.ErrNoSnapshots) {
		return true
	}
	j.started = true
	j.lastSeen = dataset.Version
	return true
}
