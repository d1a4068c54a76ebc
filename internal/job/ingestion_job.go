package job

import (
	"context"
	"fmt"
	"time"

	"daily-btc/internal/domain"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Ingester interface {
	Refresh(ctx context.Context) (domain.IngestionResult, error)
}

// IngestionJob runs one ingestion cycle immediately and then on a fixed
// interval. Overlapping ticks are skipped while a cycle is still running.
type IngestionJob struct {
	tracer   trace.Tracer
	ingester Ingester
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewIngestionJob(tracer trace.Tracer, ingester Ingester, intervalSecs int, logger *zap.Logger) *IngestionJob {
	if intervalSecs <= 0 {
		intervalSecs = 3600
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLog := cronLogger{logger.Sugar()}
	return &IngestionJob{
		tracer:   tracer,
		ingester: ingester,
		interval: time.Duration(intervalSecs) * time.Second,
		logger:   logger,
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
	}
}

func (j *IngestionJob) Spec() string {
	return fmt.Sprintf("@every %s", j.interval)
}

// Start blocks until ctx is cancelled.
func (j *IngestionJob) Start(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.Spec(), func() { j.runOnce(ctx) }); err != nil {
		return fmt.Errorf("register ingestion job: %w", err)
	}

	j.logger.Info("ingestion job starting", zap.String("spec", j.Spec()))
	j.runOnce(ctx)
	j.cron.Start()

	<-ctx.Done()
	<-j.cron.Stop().Done()
	j.logger.Info("ingestion job stopped")
	return nil
}

func (j *IngestionJob) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, span := j.tracer.Start(ctx, "ingestion-job.run-once")
	defer span.End()

	result, err := j.ingester.Refresh(ctx)
	if err != nil {
		span.RecordError(err)
		j.logger.Error("ingestion cycle failed", zap.String("run_id", result.RunID), zap.Error(err))
		return
	}
	span.SetAttributes(attribute.Int64("dataset.version", int64(result.Version)))
}

// cronLogger routes cron's own logging into zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
